package siser

import (
	"bytes"
	"io"
	"strconv"
	"sync"
	"time"
)

var hdrPrefix = []byte("--- ")

// Writer writes framed records:
//
//	--- ${size} ${timestamp_ms} ${name}\n
//	${data}
//
// timestamp is omitted when zero (see NoTimestamp), name when empty.
type Writer struct {
	w io.Writer
	// NoTimestamp makes output independent of when it was written.
	// Snapshot files use it so that saving unchanged data is a no-op diff.
	NoTimestamp bool

	writeBuf bytes.Buffer
	mu       sync.Mutex
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteRecord writes r and resets it
func (w *Writer) WriteRecord(r *Record) (int, error) {
	n, err := w.Write(r.Marshal(), r.Timestamp, r.Name)
	r.Reset()
	return n, err
}

// Write writes a block of data. Returns number of bytes written
// including the header.
func (w *Writer) Write(d []byte, t time.Time, name string) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.NoTimestamp {
		t = zeroTime
	} else if t.IsZero() {
		t = time.Now()
	}
	return w.w.Write(MarshalLine(name, t, d, &w.writeBuf))
}

// MarshalLine frames d with a header. Zero t is not written.
func MarshalLine(name string, t time.Time, d []byte, wb *bytes.Buffer) []byte {
	if wb == nil {
		wb = &bytes.Buffer{}
	} else {
		wb.Reset()
	}
	wb.Grow(len(hdrPrefix) + len(name) + len(d) + 32)

	wb.Write(hdrPrefix)
	wb.WriteString(strconv.Itoa(len(d)))
	if !t.IsZero() {
		wb.WriteByte(' ')
		wb.WriteString(strconv.FormatInt(TimeToUnixMillisecond(t), 10))
	}
	if name != "" {
		wb.WriteByte(' ')
		wb.WriteString(name)
	}
	wb.WriteByte('\n')
	if n := len(d); n > 0 {
		wb.Write(d)
		if d[n-1] != '\n' {
			wb.WriteByte('\n')
		}
	}
	return wb.Bytes()
}
