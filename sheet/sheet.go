// Package sheet reads the first table of a spreadsheet as rows keyed
// by normalized column header.
package sheet

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Row maps normalized header to cell value
type Row = map[string]string

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

// date cells are emitted in the catalog's DD/MM/YYYY form
const dateLayout = "02/01/2006"

// NormalizeHeader lower-cases and trims a column name
func NormalizeHeader(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Read reads .xlsx / .xlsm (first sheet) or .csv. The first row is the
// header; every other row becomes a Row. Cells beyond the header are
// dropped, missing trailing cells are absent from the Row.
func Read(path string) ([]Row, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xltx":
		return ReadXLSX(path)
	case ".csv", ".txt":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return ReadCSV(f)
	}
	return nil, fmt.Errorf("unsupported spreadsheet '%s' (expected .xlsx or .csv)", path)
}

// ReadXLSX reads the first sheet of an Excel workbook
func ReadXLSX(path string) ([]Row, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("'%s' has no sheets", path)
	}
	// raw values so date cells come back as serials, not as whatever
	// display format the workbook happens to use
	cells, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	formatDateCells(f, sheets[0], cells)
	return toRows(cells), nil
}

// formatDateCells replaces serial numbers in date-formatted cells with
// DD/MM/YYYY
func formatDateCells(f *excelize.File, sheet string, cells [][]string) {
	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}
	isDateStyle := map[int]bool{}
	for i, line := range cells {
		for j, v := range line {
			serial, err := strconv.ParseFloat(v, 64)
			if err != nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				continue
			}
			// text that happens to look like a number stays as typed
			typ, err := f.GetCellType(sheet, cell)
			if err != nil || (typ != excelize.CellTypeUnset && typ != excelize.CellTypeNumber) {
				continue
			}
			styleID, err := f.GetCellStyle(sheet, cell)
			if err != nil || styleID == 0 {
				continue
			}
			isDate, ok := isDateStyle[styleID]
			if !ok {
				style, err := f.GetStyle(styleID)
				isDate = err == nil && isDateNumFmt(style)
				isDateStyle[styleID] = isDate
			}
			if !isDate {
				continue
			}
			if t, err := excelize.ExcelDateToTime(serial, date1904); err == nil {
				line[j] = t.Format(dateLayout)
			}
		}
	}
}

func isDateNumFmt(style *excelize.Style) bool {
	if style.CustomNumFmt != nil {
		return isDateFormatCode(*style.CustomNumFmt)
	}
	// built-in date formats; 18-21 and 45-47 are time only
	switch n := style.NumFmt; {
	case n >= 14 && n <= 17, n == 22, n >= 27 && n <= 36, n >= 50 && n <= 58:
		return true
	}
	return false
}

// isDateFormatCode reports whether a custom number format has a day or
// year part. Quoted literals and [color]/[locale] sections are skipped.
// A lone "m" could be minutes so it doesn't count.
func isDateFormatCode(code string) bool {
	inQuote, inBracket := false, false
	for _, c := range strings.ToLower(code) {
		switch {
		case c == '"':
			inQuote = !inQuote
		case inQuote:
		case c == '[':
			inBracket = true
		case c == ']':
			inBracket = false
		case inBracket:
		case c == 'd' || c == 'y':
			return true
		}
	}
	return false
}

// ReadCSV reads comma or semicolon separated values; the separator is
// guessed from the header line
func ReadCSV(r io.Reader) ([]Row, error) {
	br := bufio.NewReader(r)
	if bom, _ := br.Peek(3); bytes.Equal(bom, utf8BOM) {
		br.Discard(3)
	}
	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	if first, _ := br.Peek(br.Size()); guessSemicolon(first) {
		cr.Comma = ';'
	}
	cells, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	return toRows(cells), nil
}

func guessSemicolon(d []byte) bool {
	if idx := bytes.IndexByte(d, '\n'); idx >= 0 {
		d = d[:idx]
	}
	return bytes.Count(d, []byte{';'}) > bytes.Count(d, []byte{','})
}

func toRows(cells [][]string) []Row {
	if len(cells) == 0 {
		return nil
	}
	header := make([]string, len(cells[0]))
	for i, s := range cells[0] {
		header[i] = NormalizeHeader(s)
	}
	res := make([]Row, 0, len(cells)-1)
	for _, line := range cells[1:] {
		row := Row{}
		for i, v := range line {
			if i >= len(header) || header[i] == "" {
				continue
			}
			row[header[i]] = v
		}
		res = append(res, row)
	}
	return res
}
