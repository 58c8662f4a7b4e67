package siser

import "time"

func serializableOnLine(s string) bool {
	for i := 0; i < len(s); i++ {
		if b := s[i]; b < 32 || b > 127 {
			return false
		}
	}
	return true
}

// TimeToUnixMillisecond converts t to Unix epoch milliseconds
func TimeToUnixMillisecond(t time.Time) int64 {
	return t.UnixNano() / 1e6
}

// TimeFromUnixMillisecond is the inverse of TimeToUnixMillisecond
func TimeFromUnixMillisecond(unixMs int64) time.Time {
	return time.Unix(0, unixMs*1e6)
}
