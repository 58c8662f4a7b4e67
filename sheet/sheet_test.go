package sheet

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kjk/catalog/assert"
	"github.com/kjk/catalog/require"
)

var table = [][]interface{}{
	{" Kitap ", "YAZAR", "Tür", "Başlama Tarihi", "Bitirme Tarihi"},
	{"İnce Memed", "Yaşar Kemal", "Roman", "2023-12-31", "31.12.2023"},
	{"Short", "X"},
}

func expectedRows() []Row {
	return []Row{
		{"kitap": "İnce Memed", "yazar": "Yaşar Kemal", "tür": "Roman", "başlama tarihi": "2023-12-31", "bitirme tarihi": "31.12.2023"},
		{"kitap": "Short", "yazar": "X"},
	}
}

func TestReadXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range table {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	path := filepath.Join(t.TempDir(), "books.xlsx")
	require.NoError(t, f.SaveAs(path))

	rows, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, expectedRows(), rows)
}

func TestReadCSV(t *testing.T) {
	var lines []string
	for _, row := range table {
		var cells []string
		for _, v := range row {
			cells = append(cells, v.(string))
		}
		lines = append(lines, strings.Join(cells, ","))
	}
	path := filepath.Join(t.TempDir(), "books.csv")
	d := append([]byte{0xef, 0xbb, 0xbf}, []byte(strings.Join(lines, "\n")+"\n")...)
	require.NoError(t, os.WriteFile(path, d, 0644))

	rows, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, expectedRows(), rows)
}

func TestReadCSVSemicolon(t *testing.T) {
	s := "Dergi;Sayı;Cilt\nVarlık;12;3\n"
	rows, err := ReadCSV(strings.NewReader(s))
	require.NoError(t, err)
	assert.Equal(t, []Row{{"dergi": "Varlık", "sayı": "12", "cilt": "3"}}, rows)
}

func TestReadEmpty(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestReadUnsupported(t *testing.T) {
	_, err := Read("books.ods")
	assert.Error(t, err)
}

func TestReadXLSXDates(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	header := []interface{}{"Kitap", "Başlama Tarihi", "Bitirme Tarihi", "Sayı", "Saat", "Not"}
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &header))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "Tutunamayanlar"))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)))

	dotted := "dd.mm.yyyy"
	style, err := f.NewStyle(&excelize.Style{CustomNumFmt: &dotted})
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Sheet1", "C2", 45292))
	require.NoError(t, f.SetCellStyle("Sheet1", "C2", "C2", style))

	require.NoError(t, f.SetCellValue("Sheet1", "D2", 12))

	clock := "hh:mm"
	style, err = f.NewStyle(&excelize.Style{CustomNumFmt: &clock})
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Sheet1", "E2", 0.5))
	require.NoError(t, f.SetCellStyle("Sheet1", "E2", "E2", style))

	// text in a date-formatted cell is left alone
	require.NoError(t, f.SetCellValue("Sheet1", "F2", "45292"))
	require.NoError(t, f.SetCellStyle("Sheet1", "F2", "F2", style))

	path := filepath.Join(t.TempDir(), "dates.xlsx")
	require.NoError(t, f.SaveAs(path))

	rows, err := Read(path)
	require.NoError(t, err)
	exp := []Row{{
		"kitap":          "Tutunamayanlar",
		"başlama tarihi": "31/12/2023",
		"bitirme tarihi": "01/01/2024",
		"sayı":           "12",
		"saat":           "0.5",
		"not":            "45292",
	}}
	assert.Equal(t, exp, rows)
}

func TestIsDateFormatCode(t *testing.T) {
	tests := []struct {
		code string
		exp  bool
	}{
		{"dd/mm/yyyy", true},
		{"mmm yy", true},
		{"[$-41F]d mmmm yyyy", true},
		{"hh:mm:ss", false},
		{"mm:ss", false},
		{`0.00 "days"`, false},
		{"[Red]0.00", false},
		{"#,##0", false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.exp, isDateFormatCode(tc.code), tc.code)
	}
}
