package siser

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"time"
)

// records up to this size are read straight into Data; anything larger
// is read incrementally
const maxPrealloc = 1024 * 1024

// Reader reads records written by Writer
type Reader struct {
	r *bufio.Reader

	// NoTimestamp must match Writer.NoTimestamp so that
	// "--- ${size} ${name}" is not mistaken for a timestamp
	NoTimestamp bool

	// valid after ReadNextRecord(), over-written by the next read
	Record *ReadRecord

	// valid after ReadNextData(), over-written by the next read
	Data      []byte
	Name      string
	Timestamp time.Time

	CurrRecordPos int64
	NextRecordPos int64

	err  error
	done bool
}

func NewReader(r *bufio.Reader) *Reader {
	return &Reader{
		r:      r,
		Record: &ReadRecord{},
	}
}

// Done returns true after an error or io.EOF
func (r *Reader) Done() bool {
	return r.err != nil || r.done
}

// Err returns the first error. io.EOF is not an error.
func (r *Reader) Err() error {
	return r.err
}

func (r *Reader) fail(hdr []byte) bool {
	r.err = fmt.Errorf("unexpected header '%s'", string(bytes.TrimSpace(hdr)))
	return false
}

// readLarge reads a record bigger than maxPrealloc. The size comes from
// the header and is not trusted, so the buffer grows only as far as the
// input actually goes.
func (r *Reader) readLarge(hdr []byte, size int64) bool {
	var buf bytes.Buffer
	buf.Grow(maxPrealloc)
	n, err := io.CopyN(&buf, r.r, size)
	if err == io.EOF {
		r.err = fmt.Errorf("unexpected header '%s': got %d of %d bytes", string(hdr[:len(hdr)-1]), n, size)
		return false
	}
	if err != nil {
		r.err = err
		return false
	}
	r.Data = buf.Bytes()
	return true
}

// ReadNextData reads the next framed block. Returns false at the end
// of data or on error; check Err().
func (r *Reader) ReadNextData() bool {
	if r.Done() {
		return false
	}
	r.Name = ""
	r.Timestamp = zeroTime
	r.CurrRecordPos = r.NextRecordPos

	hdr, err := r.r.ReadBytes('\n')
	if err != nil {
		if err == io.EOF && len(hdr) == 0 {
			r.done = true
		} else if err == io.EOF {
			r.err = fmt.Errorf("truncated header '%s'", string(hdr))
		} else {
			r.err = err
		}
		return false
	}
	recSize := len(hdr)

	rest := bytes.TrimPrefix(hdr[:len(hdr)-1], hdrPrefix)
	parts := bytes.SplitN(rest, []byte{' '}, 3)
	size, err := strconv.ParseInt(string(parts[0]), 10, 64)
	if err != nil || size < 0 {
		return r.fail(hdr)
	}
	parts = parts[1:]
	if !r.NoTimestamp {
		if len(parts) == 0 {
			return r.fail(hdr)
		}
		ms, err := strconv.ParseInt(string(parts[0]), 10, 64)
		if err != nil {
			return r.fail(hdr)
		}
		r.Timestamp = TimeFromUnixMillisecond(ms)
		parts = parts[1:]
	}
	if len(parts) > 0 {
		r.Name = string(bytes.Join(parts, []byte{' '}))
	}

	if size > maxPrealloc {
		if !r.readLarge(hdr, size) {
			return false
		}
	} else {
		if size > int64(cap(r.Data)) || cap(r.Data) > maxPrealloc {
			r.Data = make([]byte, size)
		} else {
			r.Data = r.Data[:size]
		}
		if _, err = io.ReadFull(r.r, r.Data); err != nil {
			r.err = err
			return false
		}
	}
	recSize += int(size)

	// writer pads data that doesn't end with a newline
	if size > 0 && r.Data[size-1] != '\n' {
		if _, err = r.r.Discard(1); err != nil {
			r.err = err
			return false
		}
		recSize++
	}
	r.NextRecordPos += int64(recSize)
	return true
}

// ReadNextRecord reads the next key/value record into r.Record
func (r *Reader) ReadNextRecord() bool {
	if !r.ReadNextData() {
		return false
	}
	if _, r.err = UnmarshalRecord(r.Data, r.Record); r.err != nil {
		return false
	}
	r.Record.Name = r.Name
	r.Record.Timestamp = r.Timestamp
	return true
}
