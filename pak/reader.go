package pak

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/kjk/catalog/siser"
)

var (
	// ErrNoPath is returned when path is not provided
	ErrNoPath = errors.New("no Path provided")
)

// Entry represents a single file in the archive
type Entry struct {
	// Metadata is arbitrary metadata.
	// Has at least Size, Path and Sha1 values
	Metadata Metadata

	// Path of the file. Recomended to use '/' for path separator
	Path string

	// offset within the archive
	Offset int64

	// size of the entry, in bytes
	Size int64

	// sha1 of content, in hex format
	Sha1 string

	// only used when writing
	data []byte
}

// ModTime returns modification time of a file added with AddFile,
// zero time otherwise
func (e *Entry) ModTime() time.Time {
	v, ok := e.Metadata.Get(MetaKeyModTime)
	if !ok {
		return time.Time{}
	}
	ms, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return siser.TimeFromUnixMillisecond(ms)
}

// Archive represents an archive
type Archive struct {
	// Path is set by ReadArchive
	Path    string
	Entries []*Entry
	Created time.Time

	// if true, will disable validating sha1 on reading
	DisableValidateSha1 bool

	// set by ReadArchiveFromBytes
	data []byte
}

// ReadArchive reads archive index from a file. Content is read lazily
// by ReadEntry.
func ReadArchive(path string) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	a, err := ReadArchiveFromReader(f)
	if err != nil {
		return nil, err
	}
	a.Path = path
	return a, nil
}

// ReadArchiveFromBytes reads archive held in memory, e.g. after
// decompression
func ReadArchiveFromBytes(d []byte) (*Archive, error) {
	a, err := ReadArchiveFromReader(bytes.NewReader(d))
	if err != nil {
		return nil, err
	}
	a.data = d
	for _, e := range a.Entries {
		if e.Offset+e.Size > int64(len(d)) {
			return nil, fmt.Errorf("entry '%s' extends past the end of archive", e.Path)
		}
	}
	return a, nil
}

// ReadArchiveFromReader reads archive entries. The result can't read
// content unless Path is set.
func ReadArchiveFromReader(r io.Reader) (*Archive, error) {
	sr := siser.NewReader(bufio.NewReader(r))

	// the header is a siser block containing siser records for entries
	if !sr.ReadNextData() {
		if sr.Err() != nil {
			return nil, sr.Err()
		}
		return nil, errors.New("empty archive")
	}
	if sr.Name != archiveName {
		return nil, fmt.Errorf("expected header named '%s', got '%s'", archiveName, sr.Name)
	}
	created := sr.Timestamp
	// content starts right after the header
	currOffset := sr.NextRecordPos
	sr = siser.NewReader(bufio.NewReader(bytes.NewReader(sr.Data)))
	sr.NoTimestamp = true

	var entries []*Entry
	for sr.ReadNextRecord() {
		meta := metadataFromEntries(sr.Record.Entries)

		sizeStr, ok := meta.Get(MetaKeySize)
		if !ok {
			return nil, fmt.Errorf("missing '%s' value", MetaKeySize)
		}
		size, err := strconv.ParseInt(sizeStr, 10, 64)
		if err != nil || size < 0 {
			return nil, fmt.Errorf("value '%s' for 'Size' is not a valid number", sizeStr)
		}
		path, ok := meta.Get(MetaKeyPath)
		if !ok {
			return nil, fmt.Errorf("missing '%s' value", MetaKeyPath)
		}
		sha1, ok := meta.Get(MetaKeySha1)
		if !ok {
			return nil, fmt.Errorf("missing '%s' value", MetaKeySha1)
		}

		e := &Entry{
			Metadata: meta,
			Path:     path,
			Offset:   currOffset,
			Size:     size,
			Sha1:     sha1,
		}
		entries = append(entries, e)
		currOffset += size
	}
	if sr.Err() != nil {
		return nil, sr.Err()
	}
	return &Archive{
		Entries: entries,
		Created: created,
	}, nil
}

// reads a part of a file of a given size at an offset
func readFileChunk(path string, offset, size int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	d := make([]byte, int(size))
	_, err = f.ReadAt(d, offset)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// ReadEntry returns content of e, verifying its sha1
func (a *Archive) ReadEntry(e *Entry) ([]byte, error) {
	var d []byte
	switch {
	case a.data != nil:
		d = a.data[e.Offset : e.Offset+e.Size]
	case a.Path != "":
		var err error
		if d, err = readFileChunk(a.Path, e.Offset, e.Size); err != nil {
			return nil, err
		}
	default:
		return nil, ErrNoPath
	}
	if !a.DisableValidateSha1 {
		sha1Got := sha1HexOfBytes(d)
		if e.Sha1 != sha1Got {
			return nil, fmt.Errorf("mismatched sha1 for file '%s'. Expected: %s, got: %s", e.Path, e.Sha1, sha1Got)
		}
	}
	return d, nil
}

// FindEntry returns entry with a given path, nil if not found
func (a *Archive) FindEntry(path string) *Entry {
	for _, e := range a.Entries {
		if e.Path == path {
			return e
		}
	}
	return nil
}
