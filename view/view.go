// Package view derives the displayed list from a collection: an
// optional genre filter and a case-insensitive free text search.
package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/kjk/catalog/record"
)

// AllGenres disables genre filtering
const AllGenres = "all"

// Match is a record that passed the filter together with its position
// in the source collection. Positions are what Store.Delete takes.
type Match struct {
	Index  int
	Record *record.Record
}

// Query describes a filter
type Query struct {
	Kind   record.Kind
	Genre  string
	Search string
}

func (q Query) allGenres() bool {
	return q.Genre == "" || q.Genre == AllGenres
}

// Matches reports whether r passes the genre filter and the search
func (q Query) Matches(r *record.Record) bool {
	if !q.allGenres() {
		// magazines have no genre so never match a specific one
		if !r.Kind.HasGenre() || r.Genre() != q.Genre {
			return false
		}
	}
	if q.Search == "" {
		return true
	}
	needle := strings.ToLower(q.Search)
	// id and kind tag are string values of a record too
	vals := append([]string{r.ID, string(r.Kind)}, r.Values()...)
	for _, v := range vals {
		if strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}
	return false
}

// Describe returns a subheader like "Books – Roman – 18/10/2026"
func (q Query) Describe(now time.Time) string {
	filter := "All genres"
	if !q.allGenres() {
		filter = q.Genre
	}
	if q.Search != "" {
		filter += fmt.Sprintf(" – search: %q", q.Search)
	}
	return fmt.Sprintf("%s – %s – %s", q.Kind.Plural(), filter, now.Format("02/01/2006"))
}

// ApplyIndexed is Apply that also returns source positions
func ApplyIndexed(coll []*record.Record, q Query) []Match {
	var res []Match
	for i, r := range coll {
		if q.Matches(r) {
			res = append(res, Match{Index: i, Record: r})
		}
	}
	return res
}

// Apply keeps records of coll matching genreFilter and searchText, in
// their original order. genreFilter "all" or "" keeps every genre.
// Never returns an error; no match is an empty list.
func Apply(coll []*record.Record, genreFilter string, searchText string) []*record.Record {
	q := Query{Genre: genreFilter, Search: searchText}
	res := []*record.Record{}
	for _, r := range coll {
		if q.Matches(r) {
			res = append(res, r)
		}
	}
	return res
}
