package view

import (
	"testing"
	"time"

	"github.com/kjk/catalog/assert"
	"github.com/kjk/catalog/record"
)

func book(title, author, genre string) *record.Record {
	r, _ := record.New(record.KindBook, record.Fields{
		record.FieldTitle:     title,
		record.FieldAuthor:    author,
		record.FieldGenre:     genre,
		record.FieldStartDate: "01/01/2023",
		record.FieldEndDate:   "02/01/2023",
	})
	r.ID = "id-" + title
	return r
}

func titles(recs []*record.Record) []string {
	res := []string{}
	for _, r := range recs {
		res = append(res, r.Get(record.FieldTitle))
	}
	return res
}

var books = []*record.Record{
	book("A", "Ayşe Kulin", "Roman"),
	book("B", "Orhan Pamuk", "Tarih"),
	book("C", "Yaşar Kemal", "Roman"),
}

func TestApply(t *testing.T) {
	tests := []struct {
		genre  string
		search string
		exp    []string
	}{
		{AllGenres, "", []string{"A", "B", "C"}},
		{"", "", []string{"A", "B", "C"}},
		{"Roman", "", []string{"A", "C"}},
		{"roman", "", []string{}},
		{AllGenres, "ayşe", []string{"A"}},
		{AllGenres, "AYŞE", []string{"A"}},
		{"Roman", "pamuk", []string{}},
		{"Tarih", "pamuk", []string{"B"}},
		{AllGenres, "2023", []string{"A", "B", "C"}},
		{AllGenres, "id-", []string{"A", "B", "C"}},
		{AllGenres, "ID-B", []string{"B"}},
		{AllGenres, "book", []string{"A", "B", "C"}},
		{"Tarih", "book", []string{"B"}},
		{AllGenres, "nothing", []string{}},
	}
	for _, tc := range tests {
		got := Apply(books, tc.genre, tc.search)
		assert.Equal(t, tc.exp, titles(got), "genre: %q search: %q", tc.genre, tc.search)
	}
}

func TestApplyMagazinesNeverMatchGenre(t *testing.T) {
	m, _ := record.New(record.KindMagazine, record.Fields{
		record.FieldName:  "Roman",
		record.FieldIssue: "1",
	})
	coll := []*record.Record{m}
	assert.Len(t, Apply(coll, "Roman", ""), 0)
	assert.Len(t, Apply(coll, AllGenres, "roman"), 1)
}

func TestApplyIndexed(t *testing.T) {
	got := ApplyIndexed(books, Query{Genre: "Roman"})
	assert.Len(t, got, 2)
	assert.Equal(t, 0, got[0].Index)
	assert.Equal(t, 2, got[1].Index)
	assert.Equal(t, "C", got[1].Record.Book.Title)
}

func TestDescribe(t *testing.T) {
	now := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	q := Query{Kind: record.KindBook, Genre: "Roman"}
	assert.Equal(t, "Books – Roman – 05/03/2024", q.Describe(now))
	q = Query{Kind: record.KindMagazine, Genre: AllGenres, Search: "var"}
	assert.Equal(t, `Magazines – All genres – search: "var" – 05/03/2024`, q.Describe(now))
}
