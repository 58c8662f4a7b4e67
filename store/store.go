// Package store keeps the catalog's three collections in memory and
// persists all of them to a single file after every change.
//
// A Store has exactly one mutator. Every mutating call re-writes the
// whole file through atomicfile (write to a temp file, rename over the
// original) and rolls back the in-memory change if that fails, so memory
// and disk never disagree. Multiple processes sharing a file must
// serialize read-modify-write cycles themselves.
package store

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kjk/catalog/log"
	"github.com/kjk/catalog/record"
	"github.com/kjk/catalog/u"
)

type Store struct {
	path   string
	genres record.GenreSet

	mu      sync.Mutex
	snap    *Snapshot
	loadErr error

	// NewID generates record ids, uuid v4 by default
	NewID func() string
}

// New creates an empty store persisted to path. genres is consulted
// by Add; nil disables genre checks.
func New(path string, genres record.GenreSet) *Store {
	return &Store{
		path:   path,
		genres: genres,
		snap:   &Snapshot{},
		NewID:  uuid.NewString,
	}
}

// Open is New followed by Load
func Open(path string, genres record.GenreSet) *Store {
	s := New(path, genres)
	s.Load()
	return s
}

func (s *Store) Path() string {
	return s.path
}

// Load replaces in-memory state with the content of the store file and
// returns a copy of it. It never fails: a missing file is an empty
// catalog, an unreadable one is logged, moved aside and treated as
// empty (see LoadError). Records without an id get one and the file is
// re-written.
func (s *Store) Load() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loadErr = nil
	snap, err := LoadSnapshot(s.path)
	if err != nil {
		s.snap = &Snapshot{}
		if errors.Is(err, os.ErrNotExist) {
			log.Verbosef("store.Load: '%s' doesn't exist, starting empty\n", s.path)
			return s.snap.Clone()
		}
		s.loadErr = err
		log.Errorf("store.Load: %s\n", err)
		s.quarantine()
		return s.snap.Clone()
	}
	s.snap = snap

	if n := s.assignMissingIDs(); n > 0 {
		log.Logf("store.Load: assigned ids to %d records\n", n)
		log.IfErrf(SaveSnapshot(s.path, s.snap))
	}
	return s.snap.Clone()
}

// quarantine moves an unparsable store file aside so that the next
// save doesn't destroy it
func (s *Store) quarantine() {
	if _, err := os.Stat(s.path); err != nil {
		return
	}
	dst := s.path + ".corrupt-" + time.Now().UTC().Format("20060102-150405")
	if err := os.Rename(s.path, dst); err != nil {
		log.Errorf("store.Load: failed to move '%s' aside: %s\n", s.path, err)
		return
	}
	log.Logf("store.Load: moved unreadable '%s' to '%s'\n", s.path, dst)
}

// LoadError returns the error that made the last Load start empty,
// nil if the file was read or didn't exist
func (s *Store) LoadError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadErr
}

func (s *Store) assignMissingIDs() int {
	n := 0
	for _, kind := range record.Kinds {
		coll := *s.snap.Collection(kind)
		for _, r := range coll {
			if r.ID == "" {
				r.ID = s.uniqueID(coll)
				n++
			}
		}
	}
	return n
}

func (s *Store) uniqueID(coll []*record.Record) string {
	for {
		id := s.NewID()
		taken := false
		for _, r := range coll {
			if r.ID == id {
				taken = true
				break
			}
		}
		if !taken {
			return id
		}
	}
}

// Save persists the current state
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SaveSnapshot(s.path, s.snap)
}

// Snapshot returns a copy of all collections
func (s *Store) Snapshot() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Clone()
}

// Records returns a copy of the collection of a given kind
func (s *Store) Records(kind record.Kind) []*record.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	coll := s.snap.Collection(kind)
	if coll == nil {
		return nil
	}
	res := make([]*record.Record, len(*coll))
	for i, r := range *coll {
		res[i] = r.Clone()
	}
	return res
}

// Counts returns number of records per kind
func (s *Store) Counts() map[record.Kind]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := map[record.Kind]int{}
	for _, kind := range record.Kinds {
		res[kind] = len(*s.snap.Collection(kind))
	}
	return res
}

// mutate applies fn to the collection of kind and persists. If saving
// fails the collection is restored. Must be called with s.mu held.
func (s *Store) mutate(kind record.Kind, fn func(coll []*record.Record) []*record.Record) error {
	coll := s.snap.Collection(kind)
	u.PanicIf(coll == nil, "invalid record kind '%s'", kind)
	prev := append([]*record.Record(nil), (*coll)...)
	*coll = fn(*coll)
	if err := SaveSnapshot(s.path, s.snap); err != nil {
		*coll = prev
		return err
	}
	return nil
}

// Add validates fields, assigns a new id, appends the record to its
// collection and persists. Returns the id.
// Validation failures are *record.ValidationError and change nothing.
func (s *Store) Add(kind record.Kind, fields record.Fields) (string, error) {
	if err := record.Validate(kind, fields, s.genres); err != nil {
		return "", err
	}
	rec, err := record.New(kind, fields)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rec.ID = s.uniqueID(*s.snap.Collection(kind))
	err = s.mutate(kind, func(coll []*record.Record) []*record.Record {
		return append(coll, rec)
	})
	if err != nil {
		return "", err
	}
	log.Event("record.add", "kind", string(kind), "id", rec.ID)
	log.Verbosef("store.Add: %s\n", rec)
	return rec.ID, nil
}

func (s *Store) checkIndex(kind record.Kind, index int) error {
	coll := s.snap.Collection(kind)
	if coll == nil {
		return fmt.Errorf("invalid record kind '%s'", kind)
	}
	if index < 0 || index >= len(*coll) {
		return &IndexError{Kind: kind, Index: index, Len: len(*coll)}
	}
	return nil
}

// Delete removes the record at index and persists.
// An out of range index is *IndexError (errors.Is ErrNotFound).
func (s *Store) Delete(kind record.Kind, index int) error {
	return s.DeleteMany(kind, []int{index})
}

// DeleteMany removes records at the given positions, in any order,
// duplicates ignored. All indices are checked before anything is
// removed. Deletion goes from the highest index down so that earlier
// removals don't shift later ones.
func (s *Store) DeleteMany(kind record.Kind, indices []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	uniq := map[int]bool{}
	for _, idx := range indices {
		if err := s.checkIndex(kind, idx); err != nil {
			return err
		}
		uniq[idx] = true
	}
	if len(uniq) == 0 {
		return nil
	}
	sorted := make([]int, 0, len(uniq))
	for idx := range uniq {
		sorted = append(sorted, idx)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))

	var ids []string
	err := s.mutate(kind, func(coll []*record.Record) []*record.Record {
		for _, idx := range sorted {
			ids = append(ids, coll[idx].ID)
			coll = append(coll[:idx], coll[idx+1:]...)
		}
		return coll
	})
	if err != nil {
		return err
	}
	for _, id := range ids {
		log.Event("record.delete", "kind", string(kind), "id", id)
	}
	return nil
}

// IndexOf returns position of the record with a given id, -1 if not found
func (s *Store) IndexOf(kind record.Kind, id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	coll := s.snap.Collection(kind)
	if coll == nil {
		return -1
	}
	for i, r := range *coll {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// Replace swaps in-memory state for snap and persists it. Records
// without an id get one. Backup restore goes through here.
func (s *Store) Replace(snap *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.snap
	s.snap = snap.Clone()
	s.assignMissingIDs()
	if err := SaveSnapshot(s.path, s.snap); err != nil {
		s.snap = prev
		return err
	}
	s.loadErr = nil
	return nil
}
