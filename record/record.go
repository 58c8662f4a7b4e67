package record

import (
	"fmt"
	"strings"
)

type Book struct {
	Title     string
	Author    string
	Genre     string
	StartDate string
	EndDate   string
}

type Article struct {
	Title     string
	Author    string
	Genre     string
	StartDate string
	EndDate   string
}

type Magazine struct {
	Name      string
	Issue     string
	Volume    string
	Date      string // MM/YYYY
	StartDate string
	EndDate   string
}

// Fields is an untyped field set keyed by Field* names, as entered in
// a form or read from a spreadsheet row
type Fields map[string]string

// Record is one catalog item. ID is assigned by the store and never
// changes afterwards.
type Record struct {
	ID       string
	Kind     Kind
	Book     *Book
	Article  *Article
	Magazine *Magazine
}

// New builds a record of a given kind from fields. Missing fields are
// empty, fields not in the kind's schema are ignored. Values are
// whitespace-trimmed. It doesn't validate; see Validate.
func New(kind Kind, f Fields) (*Record, error) {
	get := func(name string) string {
		return strings.TrimSpace(f[name])
	}
	r := &Record{Kind: kind}
	switch kind {
	case KindBook:
		r.Book = &Book{
			Title:     get(FieldTitle),
			Author:    get(FieldAuthor),
			Genre:     get(FieldGenre),
			StartDate: get(FieldStartDate),
			EndDate:   get(FieldEndDate),
		}
	case KindArticle:
		r.Article = &Article{
			Title:     get(FieldTitle),
			Author:    get(FieldAuthor),
			Genre:     get(FieldGenre),
			StartDate: get(FieldStartDate),
			EndDate:   get(FieldEndDate),
		}
	case KindMagazine:
		r.Magazine = &Magazine{
			Name:      get(FieldName),
			Issue:     get(FieldIssue),
			Volume:    get(FieldVolume),
			Date:      get(FieldDate),
			StartDate: get(FieldStartDate),
			EndDate:   get(FieldEndDate),
		}
	default:
		return nil, fmt.Errorf("invalid record kind '%s'", kind)
	}
	return r, nil
}

// fieldPtrs returns pointers to the variant's fields in schema order
func (r *Record) fieldPtrs() []*string {
	switch {
	case r.Book != nil:
		b := r.Book
		return []*string{&b.Title, &b.Author, &b.Genre, &b.StartDate, &b.EndDate}
	case r.Article != nil:
		a := r.Article
		return []*string{&a.Title, &a.Author, &a.Genre, &a.StartDate, &a.EndDate}
	case r.Magazine != nil:
		m := r.Magazine
		return []*string{&m.Name, &m.Issue, &m.Volume, &m.Date, &m.StartDate, &m.EndDate}
	}
	return nil
}

// Values returns field values in Kind.FieldNames() order
func (r *Record) Values() []string {
	ptrs := r.fieldPtrs()
	res := make([]string, len(ptrs))
	for i, p := range ptrs {
		res[i] = *p
	}
	return res
}

// Get returns the value of a named field, "" if the kind doesn't have it
func (r *Record) Get(field string) string {
	names := r.Kind.FieldNames()
	for i, p := range r.fieldPtrs() {
		if i < len(names) && names[i] == field {
			return *p
		}
	}
	return ""
}

// Set updates a named field. Returns false if the kind doesn't have it.
func (r *Record) Set(field string, v string) bool {
	names := r.Kind.FieldNames()
	for i, p := range r.fieldPtrs() {
		if i < len(names) && names[i] == field {
			*p = v
			return true
		}
	}
	return false
}

// Fields returns a copy of the record's fields
func (r *Record) Fields() Fields {
	res := Fields{}
	names := r.Kind.FieldNames()
	for i, v := range r.Values() {
		res[names[i]] = v
	}
	return res
}

// Genre returns "" for magazines
func (r *Record) Genre() string {
	return r.Get(FieldGenre)
}

// Clone returns a deep copy
func (r *Record) Clone() *Record {
	c := &Record{ID: r.ID, Kind: r.Kind}
	if r.Book != nil {
		b := *r.Book
		c.Book = &b
	}
	if r.Article != nil {
		a := *r.Article
		c.Article = &a
	}
	if r.Magazine != nil {
		m := *r.Magazine
		c.Magazine = &m
	}
	return c
}

func (r *Record) String() string {
	return fmt.Sprintf("%s %s %s", r.Kind, r.ID, strings.Join(r.Values(), " | "))
}
