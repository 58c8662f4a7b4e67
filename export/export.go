// Package export renders a filtered list of records as a document with
// a title, a subheader describing the filter and a table.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/tidwall/pretty"
	"github.com/toon-format/toon-go"

	"github.com/kjk/catalog/record"
	"github.com/kjk/catalog/view"
)

// Title is the fixed document header
const Title = "Library Catalog"

type Format string

const (
	FormatText Format = "text"
	FormatTOON Format = "toon"
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

var Formats = []Format{FormatText, FormatTOON, FormatJSON, FormatCSV}

// ParseFormat accepts a format name
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown export format '%s'", s)
}

// FormatFromPath guesses format from file extension, text if unknown
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toon":
		return FormatTOON
	case ".json":
		return FormatJSON
	case ".csv":
		return FormatCSV
	}
	return FormatText
}

// Document is what gets exported
type Document struct {
	Title    string
	Subtitle string
	Kind     record.Kind
	// Fields are machine names, Columns their labels
	Fields  []string
	Columns []string
	Rows    [][]string
	// Numbers label rows, 1..len(Rows) unless set otherwise e.g. to
	// positions in the unfiltered collection
	Numbers []int
}

func (doc *Document) number(i int) int {
	if i < len(doc.Numbers) {
		return doc.Numbers[i]
	}
	return i + 1
}

// NewDocument builds a document for records that passed query q
func NewDocument(q view.Query, recs []*record.Record, now time.Time) *Document {
	doc := &Document{
		Title:    Title,
		Subtitle: q.Describe(now),
		Kind:     q.Kind,
		Fields:   q.Kind.FieldNames(),
	}
	for _, f := range doc.Fields {
		doc.Columns = append(doc.Columns, record.Label(f))
	}
	for i, r := range recs {
		doc.Rows = append(doc.Rows, r.Values())
		doc.Numbers = append(doc.Numbers, i+1)
	}
	return doc
}

// Write renders doc in a given format
func Write(w io.Writer, format Format, doc *Document) error {
	switch format {
	case FormatText:
		return writeText(w, doc)
	case FormatTOON:
		return writeTOON(w, doc)
	case FormatJSON:
		return writeJSON(w, doc)
	case FormatCSV:
		return writeCSV(w, doc)
	}
	return fmt.Errorf("unknown export format '%s'", format)
}

func writeText(w io.Writer, doc *Document) error {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s\n%s\n\n", doc.Title, doc.Subtitle)
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "#\t%s\n", strings.Join(doc.Columns, "\t"))
	for i, row := range doc.Rows {
		fmt.Fprintf(tw, "%d\t%s\n", doc.number(i), strings.Join(oneLine(doc.display(row)), "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(doc.Rows) == 0 {
		buf.WriteString("(no records)\n")
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// display formats values for reading: a magazine's issue month is
// shown by name
func (doc *Document) display(row []string) []string {
	res := make([]string, len(row))
	for i, s := range row {
		if i < len(doc.Fields) && doc.Fields[i] == record.FieldDate {
			s = record.FormatMonthYear(s)
		}
		res[i] = s
	}
	return res
}

// oneLine keeps multi-line values from breaking table layout
func oneLine(row []string) []string {
	res := make([]string, len(row))
	for i, s := range row {
		res[i] = strings.ReplaceAll(s, "\n", " ")
	}
	return res
}

// rowMaps returns rows as field name => value, plus a 1-based "no"
func (doc *Document) rowMaps() []map[string]any {
	res := []map[string]any{}
	for i, row := range doc.Rows {
		m := map[string]any{"no": doc.number(i)}
		for j, v := range row {
			m[doc.Fields[j]] = v
		}
		res = append(res, m)
	}
	return res
}

func (doc *Document) asMap() map[string]any {
	return map[string]any{
		"title":    doc.Title,
		"subtitle": doc.Subtitle,
		"kind":     string(doc.Kind),
		"columns":  doc.Columns,
		"rows":     doc.rowMaps(),
	}
}

func writeTOON(w io.Writer, doc *Document) error {
	d, err := toon.Marshal(doc.asMap())
	if err != nil {
		return err
	}
	if _, err = w.Write(d); err != nil {
		return err
	}
	if len(d) > 0 && d[len(d)-1] != '\n' {
		_, err = w.Write([]byte{'\n'})
	}
	return err
}

func writeJSON(w io.Writer, doc *Document) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc.asMap()); err != nil {
		return err
	}
	d := pretty.PrettyOptions(buf.Bytes(), &pretty.Options{Indent: "  ", SortKeys: true})
	_, err := w.Write(d)
	return err
}

func writeCSV(w io.Writer, doc *Document) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{"#"}, doc.Columns...)); err != nil {
		return err
	}
	for i, row := range doc.Rows {
		if err := cw.Write(append([]string{strconv.Itoa(doc.number(i))}, row...)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
