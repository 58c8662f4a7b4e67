package siser

import (
	"bytes"
	"fmt"
	"strconv"
	"time"
)

/*
A record is a list of key/value pairs serialized one per line:

	key: value

Values that are empty, longer than 120 bytes or contain bytes outside of
printable ASCII (newlines, UTF-8 text) are written with an explicit size:

	key:+$len
	value

Catalog items are mostly Turkish text so the sized form is common.
*/

// Entry is a single key/value pair
type Entry struct {
	Key   string
	Value string
}

var zeroTime time.Time

// Record accumulates key/value pairs for writing
type Record struct {
	buf  bytes.Buffer
	Name string
	// when writing, zero Timestamp means "now" unless Writer.NoTimestamp
	Timestamp time.Time
}

// ReadRecord is a Record decoded from serialized data
type ReadRecord struct {
	Record
	Entries []Entry
}

// Write appends key/value pairs. args must come in pairs; non-string
// values are formatted with %v
func (r *Record) Write(args ...any) error {
	n := len(args)
	if n == 0 || n%2 != 0 {
		return fmt.Errorf("invalid number of args: %d. Should be multiple of 2", n)
	}
	for i := 0; i < n; i += 2 {
		r.marshalKeyVal(toStr(args[i]), toStr(args[i+1]))
	}
	return nil
}

func toStr(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	}
	return fmt.Sprintf("%v", v)
}

// Reset prepares the record for re-use. Name is kept because
// a writer usually emits many records of the same kind
func (r *Record) Reset() {
	r.Timestamp = zeroTime
	r.buf.Reset()
}

func (r *ReadRecord) Reset() {
	r.Record.Reset()
	r.Name = ""
	r.Entries = r.Entries[:0]
}

// Get returns the first value for key
func (r *ReadRecord) Get(key string) (string, bool) {
	for _, e := range r.Entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return "", false
}

func needsSizedFormat(s string) bool {
	return len(s) == 0 || len(s) > 120 || !serializableOnLine(s)
}

func (r *Record) marshalKeyVal(key, val string) {
	r.buf.WriteString(key)
	if !needsSizedFormat(val) {
		r.buf.WriteString(": ")
		r.buf.WriteString(val)
		r.buf.WriteByte('\n')
		return
	}
	r.buf.WriteString(":+")
	r.buf.WriteString(strconv.Itoa(len(val)))
	r.buf.WriteByte('\n')
	r.buf.WriteString(val)
	// keep the next key on its own line
	if n := len(val); n == 0 || val[n-1] != '\n' {
		r.buf.WriteByte('\n')
	}
}

// Marshal returns serialized record, valid until the next Reset()
func (r *Record) Marshal() []byte {
	return r.buf.Bytes()
}

func (r *ReadRecord) Marshal() []byte {
	r.buf.Reset()
	for _, e := range r.Entries {
		r.marshalKeyVal(e.Key, e.Value)
	}
	return r.buf.Bytes()
}

// UnmarshalRecord decodes data created with Record.Marshal.
// Re-uses r if not nil.
func UnmarshalRecord(d []byte, r *ReadRecord) (*ReadRecord, error) {
	if r == nil {
		r = &ReadRecord{}
	} else {
		r.Reset()
	}

	for len(d) > 0 {
		idx := bytes.IndexByte(d, '\n')
		if idx == -1 {
			return nil, fmt.Errorf("missing '\\n' at the end of '%s'", string(d))
		}
		line := d[:idx]
		d = d[idx+1:]
		idx = bytes.IndexByte(line, ':')
		if idx == -1 || idx+1 >= len(line) {
			return nil, fmt.Errorf("line in unrecognized format: '%s'", line)
		}
		key := string(line[:idx])
		kind, val := line[idx+1], line[idx+2:]
		switch kind {
		case ' ':
			r.Entries = append(r.Entries, Entry{Key: key, Value: string(val)})
			continue
		case '+':
		default:
			return nil, fmt.Errorf("line in unrecognized format: '%s'", line)
		}

		n, err := strconv.Atoi(string(val))
		if err != nil {
			return nil, err
		}
		if n < 0 || n > len(d) {
			return nil, fmt.Errorf("invalid value size %d, remaining data: %d", n, len(d))
		}
		r.Entries = append(r.Entries, Entry{Key: key, Value: string(d[:n])})
		d = d[n:]
		if len(d) > 0 && d[0] == '\n' {
			d = d[1:]
		}
	}
	return r, nil
}

// Unmarshal resets r and decodes d into it
func (r *ReadRecord) Unmarshal(d []byte) error {
	_, err := UnmarshalRecord(d, r)
	return err
}
