package store

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kjk/catalog/log"
	"github.com/kjk/catalog/record"
)

// columnAliases maps normalized spreadsheet column names to fields.
// Turkish headers are what the original spreadsheets use.
var columnAliases = map[record.Kind]map[string][]string{
	record.KindBook: {
		record.FieldTitle:     {"kitap", "title", "book"},
		record.FieldAuthor:    {"yazar", "author"},
		record.FieldGenre:     {"tür", "tur", "genre"},
		record.FieldStartDate: {"başlama tarihi", "start date", "start_date"},
		record.FieldEndDate:   {"bitirme tarihi", "end date", "end_date"},
	},
	record.KindArticle: {
		record.FieldTitle:     {"makale", "title", "article"},
		record.FieldAuthor:    {"yazar", "author"},
		record.FieldGenre:     {"tür", "tur", "genre"},
		record.FieldStartDate: {"başlama tarihi", "start date", "start_date"},
		record.FieldEndDate:   {"bitirme tarihi", "end date", "end_date"},
	},
	record.KindMagazine: {
		record.FieldName:      {"dergi", "name", "magazine"},
		record.FieldIssue:     {"sayı", "sayi", "issue"},
		record.FieldVolume:    {"cilt", "volume"},
		record.FieldDate:      {"tarih", "date"},
		record.FieldStartDate: {"başlama tarihi", "start date", "start_date"},
		record.FieldEndDate:   {"bitirme tarihi", "end date", "end_date"},
	},
}

// NormalizeColumn lower-cases and trims a column name
func NormalizeColumn(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ImportReport summarizes ImportRows
type ImportReport struct {
	Kind    record.Kind
	Added   int
	Skipped int // blank rows
	Errors  []*ImportRowError
}

func (r *ImportReport) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "imported %d %s", r.Added, strings.ToLower(r.Kind.Plural()))
	if r.Skipped > 0 {
		fmt.Fprintf(&sb, ", skipped %d blank rows", r.Skipped)
	}
	if len(r.Errors) == 0 {
		return sb.String()
	}
	fmt.Fprintf(&sb, ", %d rows failed:", len(r.Errors))
	for _, e := range r.Errors {
		sb.WriteString("\n  ")
		sb.WriteString(e.Error())
	}
	return sb.String()
}

// rowFields maps one spreadsheet row to record fields. Missing columns
// become empty strings, dates are reformatted.
func rowFields(kind record.Kind, row map[string]string) record.Fields {
	norm := make(map[string]string, len(row))
	for k, v := range row {
		norm[NormalizeColumn(k)] = v
	}
	aliases := columnAliases[kind]
	f := record.Fields{}
	for _, name := range kind.FieldNames() {
		v := ""
		for _, col := range aliases[name] {
			if s, ok := norm[col]; ok {
				v = strings.TrimSpace(s)
				break
			}
		}
		switch {
		case name == record.FieldDate && kind == record.KindMagazine:
			v = record.NormalizeMonthYear(v)
		case record.IsDateField(name):
			v = record.NormalizeDate(v)
		}
		f[name] = v
	}
	return f
}

func isBlank(f record.Fields) bool {
	for _, v := range f {
		if v != "" {
			return false
		}
	}
	return true
}

// ImportRows adds records built from spreadsheet rows. rows[0] is the
// first data row, i.e. spreadsheet line 2. Genre is not checked against
// the registry so that old spreadsheets import as-is. A bad row is
// recorded in the report and doesn't stop the batch. Valid rows are
// persisted once at the end; the returned error is a save failure, in
// which case nothing was added.
func (s *Store) ImportRows(kind record.Kind, rows []map[string]string) (*ImportReport, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("invalid record kind '%s'", kind)
	}
	timeStart := time.Now()
	report := &ImportReport{Kind: kind}
	var recs []*record.Record
	for i, row := range rows {
		line := i + 2
		f := rowFields(kind, row)
		if isBlank(f) {
			report.Skipped++
			continue
		}
		if err := record.Validate(kind, f, nil); err != nil {
			report.Errors = append(report.Errors, &ImportRowError{Row: line, Err: err})
			continue
		}
		rec, err := record.New(kind, f)
		if err != nil {
			report.Errors = append(report.Errors, &ImportRowError{Row: line, Err: err})
			continue
		}
		recs = append(recs, rec)
	}
	if len(recs) == 0 {
		return report, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.mutate(kind, func(coll []*record.Record) []*record.Record {
		for _, rec := range recs {
			rec.ID = s.uniqueID(coll)
			coll = append(coll, rec)
		}
		return coll
	})
	if err != nil {
		return report, err
	}
	report.Added = len(recs)
	log.EventWithDuration("import", time.Since(timeStart), "kind", string(kind), "added", report.Added, "failed", len(report.Errors))
	return report, nil
}

// Err joins all row errors, nil if every row was imported. Each
// joined error is an *ImportRowError.
func (r *ImportReport) Err() error {
	errs := make([]error, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = e
	}
	return errors.Join(errs...)
}
