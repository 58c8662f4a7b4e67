package record

import (
	"fmt"
	"strings"
)

// GenreSet is what validation needs from the genre registry
type GenreSet interface {
	Has(name string) bool
}

// ValidationError lists every offending field. Empty and Malformed are
// reported separately, both in schema order.
type ValidationError struct {
	Kind      Kind
	Empty     []string
	Malformed []string
	// UnknownGenre is set when genre is non-empty but not registered.
	// The field is also listed in Malformed.
	UnknownGenre string
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Empty) > 0 {
		parts = append(parts, "missing fields: "+strings.Join(e.Empty, ", "))
	}
	if len(e.Malformed) > 0 {
		var a []string
		for _, f := range e.Malformed {
			a = append(a, f+" ("+e.hint(f)+")")
		}
		parts = append(parts, "malformed fields: "+strings.Join(a, ", "))
	}
	return fmt.Sprintf("invalid %s: %s", e.Kind, strings.Join(parts, "; "))
}

func (e *ValidationError) hint(field string) string {
	switch {
	case field == FieldGenre:
		return fmt.Sprintf("unknown genre '%s'", e.UnknownGenre)
	case field == FieldDate:
		return "expected " + MonthYearFormat
	case IsDateField(field):
		return "expected " + DateFormat
	}
	return "invalid"
}

// Validate checks that every field of kind is non-empty after trimming,
// that dates are well formed and, if genres is not nil, that the genre
// is registered. Returns *ValidationError or nil.
func Validate(kind Kind, f Fields, genres GenreSet) error {
	if !kind.Valid() {
		return fmt.Errorf("invalid record kind '%s'", kind)
	}
	verr := &ValidationError{Kind: kind}
	for _, name := range kind.FieldNames() {
		v := strings.TrimSpace(f[name])
		if v == "" {
			verr.Empty = append(verr.Empty, name)
			continue
		}
		switch {
		case name == FieldDate && kind == KindMagazine:
			if !IsValidMonthYear(v) {
				verr.Malformed = append(verr.Malformed, name)
			}
		case IsDateField(name):
			if !IsValidDate(v) {
				verr.Malformed = append(verr.Malformed, name)
			}
		case name == FieldGenre && genres != nil:
			if !genres.Has(v) {
				verr.Malformed = append(verr.Malformed, name)
				verr.UnknownGenre = v
			}
		}
	}
	if len(verr.Empty) == 0 && len(verr.Malformed) == 0 {
		return nil
	}
	return verr
}
