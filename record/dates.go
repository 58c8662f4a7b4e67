package record

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DateFormat is how start and end dates are entered and stored
	DateFormat = "DD/MM/YYYY"
	// MonthYearFormat is how a magazine issue date is entered and stored
	MonthYearFormat = "MM/YYYY"

	dateLayout      = "02/01/2006"
	monthYearLayout = "01/2006"
)

// day and month may have one or two digits, as typed in a form
var (
	dateInputLayout      = "2/1/2006"
	monthYearInputLayout = "1/2006"
)

// importDateLayouts are tried in order when importing spreadsheets,
// first match wins. Intentionally lenient: spreadsheets in the wild mix
// ISO, dotted and dashed dates.
var importDateLayouts = []string{
	"2006-1-2",
	"2.1.2006",
	"2/1/2006",
	"2006/1/2",
	"2-1-2006",
	"2006.1.2",
	// how some tools stringify a date cell
	"2006-1-2 15:04:05",
	"2006-01-02T15:04:05Z07:00",
}

var importMonthYearLayouts = []string{
	"1/2006",
	"1.2006",
	"1-2006",
	"2006-1",
	"2006/1",
	"2006.1",
}

// IsValidDate reports whether s is a DD/MM/YYYY date
func IsValidDate(s string) bool {
	_, err := time.Parse(dateInputLayout, s)
	return err == nil
}

// IsValidMonthYear reports whether s is a MM/YYYY month
func IsValidMonthYear(s string) bool {
	_, err := time.Parse(monthYearInputLayout, s)
	return err == nil
}

func parseFirst(s string, layouts []string) (time.Time, bool) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NormalizeDate reformats a date in any of the import layouts to
// DD/MM/YYYY. Values it can't parse are returned trimmed but otherwise
// unchanged.
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	if t, ok := parseFirst(s, importDateLayouts); ok {
		return t.Format(dateLayout)
	}
	return s
}

// NormalizeMonthYear reformats a month to MM/YYYY. Full dates are
// reduced to their month.
func NormalizeMonthYear(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	if t, ok := parseFirst(s, importMonthYearLayouts); ok {
		return t.Format(monthYearLayout)
	}
	if t, ok := parseFirst(s, importDateLayouts); ok {
		return t.Format(monthYearLayout)
	}
	return s
}

var turkishMonths = [...]string{
	"Ocak", "Şubat", "Mart", "Nisan", "Mayıs", "Haziran",
	"Temmuz", "Ağustos", "Eylül", "Ekim", "Kasım", "Aralık",
}

// FormatMonthYear returns a MM/YYYY value as "<Turkish month> YYYY",
// e.g. "05/2023" as "Mayıs 2023". Other values are returned unchanged.
func FormatMonthYear(s string) string {
	t, err := time.Parse(monthYearInputLayout, strings.TrimSpace(s))
	if err != nil {
		return s
	}
	return fmt.Sprintf("%s %d", turkishMonths[t.Month()-1], t.Year())
}

// IsDateField is true for fields holding a DD/MM/YYYY date
func IsDateField(field string) bool {
	return field == FieldStartDate || field == FieldEndDate
}
