package pak

import (
	"bytes"
	"crypto/sha1"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/kjk/catalog/atomicfile"
	"github.com/kjk/catalog/siser"
)

const (
	// MetaKeyPath is name of mandatory "Path" meta-value
	MetaKeyPath = "Path"
	// MetaKeySize is name of mandatory "Size" meta-value
	MetaKeySize = "Size"
	// MetaKeySha1 is name of mandatory "Sha1" meta-value
	MetaKeySha1 = "Sha1"
	// MetaKeyModTime is optional modification time, unix milliseconds
	MetaKeyModTime = "ModTime"

	archiveName      = "pak-archive2"
	archiveEntryName = "pak-entry"
)

// Writer is for creating an archive. Content of all entries is kept
// in memory until Write.
type Writer struct {
	// Entries is exposed so that we can re-arrange (e.g. sort)
	// them before calling Write
	Entries []*Entry
}

// NewWriter creates a new archive writer
func NewWriter() *Writer {
	return &Writer{}
}

func sha1HexOfBytes(d []byte) string {
	h := sha1.New()
	h.Write(d)
	return fmt.Sprintf("%x", h.Sum(nil))
}

// AddFile adds a file from disk to the archive. If meta has "Path"
// value, it'll over-write path of the file in meta-data
func (w *Writer) AddFile(path string, meta Metadata) error {
	fi, err := os.Stat(path)
	if err != nil {
		return err
	}
	d, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if v, ok := meta.Get(MetaKeyPath); ok {
		if v == "" {
			return ErrNoPath
		}
		path = v
	}
	meta.Set(MetaKeyModTime, strconv.FormatInt(siser.TimeToUnixMillisecond(fi.ModTime()), 10))
	return w.AddData(d, path, meta)
}

// AddData adds in-memory content to the archive
func (w *Writer) AddData(d []byte, path string, meta Metadata) error {
	if path == "" {
		return ErrNoPath
	}
	e := &Entry{
		data:     d,
		Path:     path,
		Size:     int64(len(d)),
		Sha1:     sha1HexOfBytes(d),
		Metadata: meta,
	}
	w.Entries = append(w.Entries, e)
	return nil
}

func serializeHeader(entries []*Entry) ([]byte, error) {
	var buf bytes.Buffer
	sw := siser.NewWriter(&buf)
	sw.NoTimestamp = true

	var r siser.Record
	r.Name = archiveEntryName
	for _, e := range entries {
		meta := e.Metadata
		meta.Set(MetaKeyPath, e.Path)
		meta.Set(MetaKeySize, strconv.FormatInt(e.Size, 10))
		meta.Set(MetaKeySha1, e.Sha1)
		for _, kv := range meta.Meta {
			r.Write(kv.Key, kv.Value)
		}
		if _, err := sw.WriteRecord(&r); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// WriteToFile atomically writes an archive to a file
func (w *Writer) WriteToFile(path string) error {
	f, err := atomicfile.New(path)
	if err != nil {
		return err
	}
	defer f.RemoveIfNotClosed()
	if err = w.Write(f); err != nil {
		return err
	}
	return f.Close()
}

// Write writes an archive to a writer: a siser header block listing
// entries followed by concatenated content of the entries
func (w *Writer) Write(wr io.Writer) error {
	if wr == nil {
		return errors.New("must provide io.Writer")
	}
	if len(w.Entries) == 0 {
		return errors.New("there are 0 entries to write")
	}

	hdr, err := serializeHeader(w.Entries)
	if err != nil {
		return err
	}
	sw := siser.NewWriter(wr)
	if _, err = sw.Write(hdr, time.Now(), archiveName); err != nil {
		return err
	}
	for _, e := range w.Entries {
		if len(e.data) == 0 {
			continue
		}
		if _, err = wr.Write(e.data); err != nil {
			return err
		}
	}
	return nil
}
