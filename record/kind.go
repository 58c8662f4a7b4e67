package record

import (
	"fmt"
	"strings"
)

type Kind string

const (
	KindBook     Kind = "book"
	KindArticle  Kind = "article"
	KindMagazine Kind = "magazine"
)

// Kinds lists all kinds in display order
var Kinds = []Kind{KindBook, KindArticle, KindMagazine}

const (
	FieldTitle     = "title"
	FieldAuthor    = "author"
	FieldGenre     = "genre"
	FieldStartDate = "start_date"
	FieldEndDate   = "end_date"
	FieldName      = "name"
	FieldIssue     = "issue"
	FieldVolume    = "volume"
	FieldDate      = "date"
)

var (
	bookFields     = []string{FieldTitle, FieldAuthor, FieldGenre, FieldStartDate, FieldEndDate}
	magazineFields = []string{FieldName, FieldIssue, FieldVolume, FieldDate, FieldStartDate, FieldEndDate}
)

// kindAliases maps user input to a kind. Turkish names come from
// spreadsheets made for the original desktop app.
var kindAliases = map[string]Kind{
	"book":      KindBook,
	"books":     KindBook,
	"kitap":     KindBook,
	"article":   KindArticle,
	"articles":  KindArticle,
	"makale":    KindArticle,
	"magazine":  KindMagazine,
	"magazines": KindMagazine,
	"dergi":     KindMagazine,
}

// ParseKind accepts singular, plural and Turkish kind names, any case
func ParseKind(s string) (Kind, error) {
	k, ok := kindAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("unknown record kind '%s' (expected book, article or magazine)", s)
	}
	return k, nil
}

func (k Kind) Valid() bool {
	switch k {
	case KindBook, KindArticle, KindMagazine:
		return true
	}
	return false
}

// FieldNames returns the kind's fields in schema order. Don't modify.
func (k Kind) FieldNames() []string {
	switch k {
	case KindBook, KindArticle:
		return bookFields
	case KindMagazine:
		return magazineFields
	}
	return nil
}

// HasGenre is true for kinds whose genre must come from the registry
func (k Kind) HasGenre() bool {
	return k == KindBook || k == KindArticle
}

// HasField returns true if field is part of the kind's schema
func (k Kind) HasField(field string) bool {
	for _, f := range k.FieldNames() {
		if f == field {
			return true
		}
	}
	return false
}

// Plural is used in headers e.g. "Books"
func (k Kind) Plural() string {
	switch k {
	case KindBook:
		return "Books"
	case KindArticle:
		return "Articles"
	case KindMagazine:
		return "Magazines"
	}
	return string(k)
}

var labels = map[string]string{
	FieldTitle:     "Title",
	FieldAuthor:    "Author",
	FieldGenre:     "Genre",
	FieldStartDate: "Start Date",
	FieldEndDate:   "End Date",
	FieldName:      "Magazine",
	FieldIssue:     "Issue",
	FieldVolume:    "Volume",
	FieldDate:      "Date",
}

// Label returns a column header for a field
func Label(field string) string {
	if s, ok := labels[field]; ok {
		return s
	}
	return field
}
