// Package genre keeps the set of genres books and articles may be
// filed under. The set is persisted to a JSON file (sorted array of
// strings) and changes are pushed to subscribers.
package genre

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/kjk/catalog/atomicfile"
	"github.com/kjk/catalog/log"
	"github.com/tidwall/pretty"
)

// Defaults is used when the genre file is missing or unreadable
var Defaults = []string{
	"Anı", "Askeri", "Bilim", "Dil", "Din",
	"Ekonomi", "Eleştiri", "Felsefe", "Günce Yazılar",
	"Hikaye/Öykü", "Roman", "Sanat", "Senaryo",
	"Siyaset", "Şiir", "Tarih", "Tiyatro", "Edebiyat",
}

// Registry is a persisted, observable set of genres.
// Names are matched exactly (case-sensitive).
type Registry struct {
	path string

	mu          sync.Mutex
	genres      []string // sorted, unique
	subscribers map[int]func(genres []string)
	nextSubID   int
}

// Open reads the genre file at path. If the file is missing or not a
// JSON array of strings, defaults are used and written to path.
func Open(path string, defaults []string) (*Registry, error) {
	r := &Registry{
		path:        path,
		subscribers: map[int]func([]string){},
	}
	genres, err := readFile(path)
	if err == nil {
		r.genres = normalize(genres)
		return r, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		log.Errorf("genre.Open: ignoring '%s': %s\n", path, err)
	}
	r.genres = normalize(defaults)
	if err = r.save(r.genres); err != nil {
		return nil, err
	}
	return r, nil
}

func readFile(path string) ([]string, error) {
	d, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var genres []string
	if err = json.Unmarshal(d, &genres); err != nil {
		return nil, err
	}
	return genres, nil
}

// normalize trims, drops empty strings, sorts and de-duplicates
func normalize(genres []string) []string {
	res := make([]string, 0, len(genres))
	seen := map[string]bool{}
	for _, g := range genres {
		g = strings.TrimSpace(g)
		if g == "" || seen[g] {
			continue
		}
		seen[g] = true
		res = append(res, g)
	}
	sort.Strings(res)
	return res
}

func marshal(genres []string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	// keep "Hikaye/Öykü" readable
	enc.SetEscapeHTML(false)
	if err := enc.Encode(genres); err != nil {
		return nil, err
	}
	opts := &pretty.Options{Indent: "  "}
	return pretty.PrettyOptions(buf.Bytes(), opts), nil
}

func (r *Registry) save(genres []string) error {
	d, err := marshal(genres)
	if err != nil {
		return err
	}
	if err = atomicfile.WriteFile(r.path, d); err != nil {
		return fmt.Errorf("saving genres to '%s': %w", r.path, err)
	}
	return nil
}

// Path returns the file the registry persists to
func (r *Registry) Path() string {
	return r.path
}

// List returns a sorted copy of the genres
func (r *Registry) List() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.genres...)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.genres)
}

func (r *Registry) indexOf(name string) (int, bool) {
	i := sort.SearchStrings(r.genres, name)
	return i, i < len(r.genres) && r.genres[i] == name
}

// Has implements record.GenreSet
func (r *Registry) Has(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.indexOf(name)
	return ok
}

// Add adds a genre. Returns false if name is blank or already present.
// On success the file is re-written and subscribers notified before
// Add returns.
func (r *Registry) Add(name string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, nil
	}
	r.mu.Lock()
	i, ok := r.indexOf(name)
	if ok {
		r.mu.Unlock()
		return false, nil
	}
	genres := make([]string, 0, len(r.genres)+1)
	genres = append(genres, r.genres[:i]...)
	genres = append(genres, name)
	genres = append(genres, r.genres[i:]...)
	return r.commit(genres, "genre.add", name)
}

// Delete removes a genre. Returns false if the registry is empty or
// name is not present. Records filed under the genre are not touched.
func (r *Registry) Delete(name string) (bool, error) {
	r.mu.Lock()
	i, ok := r.indexOf(name)
	if len(r.genres) == 0 || !ok {
		r.mu.Unlock()
		return false, nil
	}
	genres := make([]string, 0, len(r.genres)-1)
	genres = append(genres, r.genres[:i]...)
	genres = append(genres, r.genres[i+1:]...)
	return r.commit(genres, "genre.delete", name)
}

// commit must be called with r.mu held; it releases it
func (r *Registry) commit(genres []string, event string, name string) (bool, error) {
	if err := r.save(genres); err != nil {
		r.mu.Unlock()
		return false, err
	}
	r.genres = genres
	subs := make([]func([]string), 0, len(r.subscribers))
	ids := make([]int, 0, len(r.subscribers))
	for id := range r.subscribers {
		ids = append(ids, id)
	}
	// notify in subscription order
	sort.Ints(ids)
	for _, id := range ids {
		subs = append(subs, r.subscribers[id])
	}
	r.mu.Unlock()

	log.Event(event, "name", name)
	for _, fn := range subs {
		fn(append([]string(nil), genres...))
	}
	return true, nil
}

// Subscribe registers fn to be called with the new genre list after
// every successful Add or Delete. Call the returned func to unsubscribe.
func (r *Registry) Subscribe(fn func(genres []string)) (unsubscribe func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextSubID
	r.nextSubID++
	r.subscribers[id] = fn
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.subscribers, id)
	}
}
