package store

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/kjk/catalog/atomicfile"
	"github.com/kjk/catalog/record"
	"github.com/kjk/catalog/siser"
)

/*
The store file is a siser stream without timestamps:

	--- 11 catalog
	version: 1
	--- 120 book
	id: 3f0c...
	title: Tutunamayanlar
	author:+10
	Oğuz Atay
	...

One record per item, named after its kind, fields in schema order.
*/

const (
	headerName    = "catalog"
	formatVersion = "1"
	keyID         = "id"
	keyVersion    = "version"
)

// Snapshot is the unit of persistence: all three collections
type Snapshot struct {
	Books     []*record.Record
	Articles  []*record.Record
	Magazines []*record.Record
}

// Collection returns a pointer to the collection of a given kind,
// nil for invalid kind
func (s *Snapshot) Collection(kind record.Kind) *[]*record.Record {
	switch kind {
	case record.KindBook:
		return &s.Books
	case record.KindArticle:
		return &s.Articles
	case record.KindMagazine:
		return &s.Magazines
	}
	return nil
}

// Len returns the total number of records
func (s *Snapshot) Len() int {
	return len(s.Books) + len(s.Articles) + len(s.Magazines)
}

// Clone returns a deep copy
func (s *Snapshot) Clone() *Snapshot {
	res := &Snapshot{}
	for _, kind := range record.Kinds {
		src := *s.Collection(kind)
		dst := res.Collection(kind)
		*dst = make([]*record.Record, len(src))
		for i, r := range src {
			(*dst)[i] = r.Clone()
		}
	}
	return res
}

// WriteSnapshot serializes snap to w
func WriteSnapshot(w io.Writer, snap *Snapshot) error {
	sw := siser.NewWriter(w)
	sw.NoTimestamp = true

	var rec siser.Record
	rec.Name = headerName
	rec.Write(keyVersion, formatVersion)
	if _, err := sw.WriteRecord(&rec); err != nil {
		return err
	}
	for _, kind := range record.Kinds {
		names := kind.FieldNames()
		for _, r := range *snap.Collection(kind) {
			rec.Name = string(kind)
			rec.Write(keyID, r.ID)
			for i, v := range r.Values() {
				rec.Write(names[i], v)
			}
			if _, err := sw.WriteRecord(&rec); err != nil {
				return err
			}
		}
	}
	return nil
}

// ReadSnapshot parses data written by WriteSnapshot. Records without
// an id are returned with empty ID.
func ReadSnapshot(r io.Reader) (*Snapshot, error) {
	sr := siser.NewReader(bufio.NewReader(r))
	sr.NoTimestamp = true
	snap := &Snapshot{}

	if !sr.ReadNextRecord() {
		if sr.Err() != nil {
			return nil, sr.Err()
		}
		// empty file
		return snap, nil
	}
	if sr.Record.Name != headerName {
		return nil, fmt.Errorf("expected '%s' header record, got '%s'", headerName, sr.Record.Name)
	}
	if v, _ := sr.Record.Get(keyVersion); v != formatVersion {
		return nil, fmt.Errorf("unsupported format version '%s'", v)
	}

	for sr.ReadNextRecord() {
		kind := record.Kind(sr.Record.Name)
		coll := snap.Collection(kind)
		if coll == nil {
			return nil, fmt.Errorf("unknown record kind '%s' at offset %d", sr.Record.Name, sr.CurrRecordPos)
		}
		fields := record.Fields{}
		id := ""
		for _, e := range sr.Record.Entries {
			if e.Key == keyID {
				id = e.Value
				continue
			}
			fields[e.Key] = e.Value
		}
		rec, err := record.New(kind, fields)
		if err != nil {
			return nil, err
		}
		rec.ID = id
		*coll = append(*coll, rec)
	}
	if sr.Err() != nil {
		return nil, sr.Err()
	}
	return snap, nil
}

// SaveSnapshot atomically replaces the file at path
func SaveSnapshot(path string, snap *Snapshot) error {
	var buf bytes.Buffer
	if err := WriteSnapshot(&buf, snap); err != nil {
		return &PersistenceError{Op: "save", Path: path, Err: err}
	}
	if err := atomicfile.WriteFile(path, buf.Bytes()); err != nil {
		return &PersistenceError{Op: "save", Path: path, Err: err}
	}
	return nil
}

// LoadSnapshot reads the file at path. Unlike Store.Load it returns
// all errors, including os.ErrNotExist.
func LoadSnapshot(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &PersistenceError{Op: "load", Path: path, Err: err}
	}
	defer f.Close()
	snap, err := ReadSnapshot(f)
	if err != nil {
		return nil, &PersistenceError{Op: "load", Path: path, Err: err}
	}
	return snap, nil
}
