package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kjk/catalog/assert"
	"github.com/kjk/catalog/backup"
	"github.com/kjk/catalog/record"
	"github.com/kjk/catalog/require"
	"github.com/kjk/catalog/store"
)

type testEnv struct {
	t       *testing.T
	dataDir string
}

func newTestEnv(t *testing.T) *testEnv {
	// keep a config file on the machine from leaking into tests
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	return &testEnv{t: t, dataDir: t.TempDir()}
}

func (te *testEnv) run(args ...string) (string, error) {
	var out bytes.Buffer
	cmd, a := newRoot(&out, BuildInfo{Version: "1.2.3", Commit: "abc", BuildTime: "now"})
	defer a.close()
	cmd.SetArgs(append([]string{"--data-dir", te.dataDir}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (te *testEnv) mustRun(args ...string) string {
	out, err := te.run(args...)
	require.NoError(te.t, err, "args: %v out: %s", args, out)
	return out
}

func (te *testEnv) records(kind record.Kind) []*record.Record {
	return store.Open(filepath.Join(te.dataDir, "catalog.txt"), nil).Records(kind)
}

func addBook(te *testEnv, title, genre string) string {
	return te.mustRun("add", "book", "--title", title, "--author", "Sabahattin Ali",
		"--genre", genre, "--start-date", "01/01/2023", "--end-date", "31/12/2023")
}

func TestVersion(t *testing.T) {
	te := newTestEnv(t)
	out := te.mustRun("version")
	assert.Equal(t, "version=1.2.3 commit=abc build_time=now\n", out)

	out = te.mustRun("version", "--json")
	var b BuildInfo
	require.NoError(t, json.Unmarshal([]byte(out), &b))
	assert.Equal(t, "1.2.3", b.Version)
}

func TestAddListDelete(t *testing.T) {
	te := newTestEnv(t)
	out := addBook(te, "Kuyucaklı Yusuf", "Roman")
	assert.True(t, strings.HasPrefix(out, "added book "), out)
	addBook(te, "Kürk Mantolu Madonna", "Roman")
	addBook(te, "Sırça Köşk", "Hikaye/Öykü")

	out = te.mustRun("list", "book", "--genre", "Roman")
	assert.Contains(t, out, "Library Catalog")
	assert.Contains(t, out, "Books – Roman – ")
	assert.Contains(t, out, "Kürk Mantolu Madonna")
	assert.NotContains(t, out, "Sırça Köşk")

	// positions shown are positions in the whole collection
	out = te.mustRun("list", "kitap", "--search", "KÖŞK")
	assert.Contains(t, out, "3  Sırça Köşk")

	out = te.mustRun("delete", "book", "3", "1")
	assert.Equal(t, "deleted 2 books\n", out)
	recs := te.records(record.KindBook)
	require.Len(t, recs, 1)
	assert.Equal(t, "Kürk Mantolu Madonna", recs[0].Book.Title)

	_, err := te.run("delete", "book", "5")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = te.run("delete", "book", "zero")
	assert.Error(t, err)
}

func TestAddValidation(t *testing.T) {
	te := newTestEnv(t)
	_, err := te.run("add", "book", "--title", "x", "--genre", "Uydurma", "--start-date", "2023-01-01")
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "missing fields: author, end_date")
	assert.Contains(t, msg, "genre (unknown genre 'Uydurma')")
	assert.Contains(t, msg, "start_date (expected DD/MM/YYYY)")
	assert.Empty(t, te.records(record.KindBook))

	_, err = te.run("add", "magazine", "--name", "Varlık", "--issue", "1", "--volume", "2",
		"--date", "05/2023", "--start-date", "01/05/2023", "--end-date", "02/05/2023")
	require.NoError(t, err)
	assert.Len(t, te.records(record.KindMagazine), 1)
}

func TestGenreCommands(t *testing.T) {
	te := newTestEnv(t)
	out := te.mustRun("genre", "list")
	assert.Contains(t, out, "Roman\n")

	out = te.mustRun("genre", "add", "Polisiye")
	assert.True(t, strings.HasPrefix(out, "genres: "), out)
	assert.Contains(t, out, "Polisiye")
	out = te.mustRun("genre", "add", "Polisiye")
	assert.Contains(t, out, "already exists")

	addBook(te, "Şeytan", "Polisiye")
	te.mustRun("genre", "delete", "Polisiye")
	out = te.mustRun("genre", "delete", "Polisiye")
	assert.Contains(t, out, "doesn't exist")
	// deleting a genre keeps records
	assert.Len(t, te.records(record.KindBook), 1)
	_, err := te.run("add", "book", "--title", "x", "--author", "y", "--genre", "Polisiye",
		"--start-date", "01/01/2023", "--end-date", "01/01/2023")
	assert.Error(t, err)
}

func TestImportCSVAndXLSX(t *testing.T) {
	header := []string{"Kitap", "Yazar", "Tür", "Başlama Tarihi", "Bitirme Tarihi"}
	rows := [][]string{
		{"İçimizdeki Şeytan", "Sabahattin Ali", "Roman", "2023-12-31", "31-12-2023"},
		{"Eksik", "", "", "", ""},
	}

	csvPath := filepath.Join(t.TempDir(), "books.csv")
	var lines []string
	for _, r := range append([][]string{header}, rows...) {
		lines = append(lines, strings.Join(r, ","))
	}
	require.NoError(t, os.WriteFile(csvPath, []byte(strings.Join(lines, "\n")+"\n"), 0644))

	f := excelize.NewFile()
	for i, r := range append([][]string{header}, rows...) {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		vals := make([]interface{}, len(r))
		for j, v := range r {
			vals[j] = v
		}
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &vals))
	}
	xlsxPath := filepath.Join(t.TempDir(), "books.xlsx")
	require.NoError(t, f.SaveAs(xlsxPath))
	require.NoError(t, f.Close())

	var imported [][]string
	for _, path := range []string{csvPath, xlsxPath} {
		te := newTestEnv(t)
		out, err := te.run("import", "book", path)
		require.Error(t, err)
		assert.Equal(t, "1 of 2 rows failed to import", err.Error())
		assert.Contains(t, out, "imported 1 books, 1 rows failed:")
		assert.Contains(t, out, "row 3: ")
		recs := te.records(record.KindBook)
		require.Len(t, recs, 1)
		assert.Equal(t, "31/12/2023", recs[0].Book.StartDate)
		imported = append(imported, recs[0].Values())
	}
	assert.Equal(t, imported[0], imported[1])
}

func TestImportXLSXDateCells(t *testing.T) {
	f := excelize.NewFile()
	header := []interface{}{"Kitap", "Yazar", "Tür", "Başlama Tarihi", "Bitirme Tarihi"}
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &header))
	row := []interface{}{
		"Kürk Mantolu Madonna", "Sabahattin Ali", "Roman",
		time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &row))
	path := filepath.Join(t.TempDir(), "books.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	te := newTestEnv(t)
	out := te.mustRun("import", "book", path)
	assert.Contains(t, out, "imported 1 books")
	assert.NotContains(t, out, "failed")
	recs := te.records(record.KindBook)
	require.Len(t, recs, 1)
	assert.Equal(t, "01/12/2023", recs[0].Book.StartDate)
	assert.Equal(t, "31/12/2023", recs[0].Book.EndDate)
}

func TestExport(t *testing.T) {
	te := newTestEnv(t)
	addBook(te, "Kuyucaklı Yusuf", "Roman")
	addBook(te, "Sırça Köşk", "Hikaye/Öykü")

	out := te.mustRun("export", "book", "--format", "csv", "--genre", "Roman")
	assert.Equal(t, "#,Title,Author,Genre,Start Date,End Date\n1,Kuyucaklı Yusuf,Sabahattin Ali,Roman,01/01/2023,31/12/2023\n", out)

	path := filepath.Join(t.TempDir(), "books.json")
	out = te.mustRun("export", "book", "--output", path)
	assert.Equal(t, "exported 2 books to "+path+"\n", out)
	d, err := os.ReadFile(path)
	require.NoError(t, err)
	var v map[string]any
	require.NoError(t, json.Unmarshal(d, &v))
	assert.Equal(t, "Library Catalog", v["title"])

	_, err = te.run("export", "book", "--format", "pdf")
	assert.Error(t, err)
}

func TestBackupRestore(t *testing.T) {
	te := newTestEnv(t)
	addBook(te, "Kuyucaklı Yusuf", "Roman")
	dst := filepath.Join(t.TempDir(), "b.pak.zst")
	out := te.mustRun("backup", "create", dst)
	assert.Contains(t, out, "backed up 2 files to "+dst)

	out = te.mustRun("backup", "list", dst)
	assert.Contains(t, out, "catalog.txt\t")
	assert.Contains(t, out, "genres.json\t")

	te.mustRun("delete", "book", "1")
	assert.Empty(t, te.records(record.KindBook))

	out = te.mustRun("backup", "restore", dst)
	assert.Contains(t, out, "restored "+filepath.Join(te.dataDir, "catalog.txt"))
	assert.Contains(t, out, "catalog has 1 records")
	assert.Len(t, te.records(record.KindBook), 1)

	// a backup with an unreadable catalog changes nothing
	badDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(badDir, "catalog.txt"), []byte("garbage\n"), 0644))
	bad := filepath.Join(t.TempDir(), "bad.pak")
	_, err := backup.Create(bad, filepath.Join(badDir, "catalog.txt"))
	require.NoError(t, err)
	_, err = te.run("backup", "restore", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unreadable catalog")
	assert.Len(t, te.records(record.KindBook), 1)

	out = te.mustRun("backup", "create")
	assert.Contains(t, out, filepath.Join(te.dataDir, "backups"))
}

func TestStatsWithCorruptStore(t *testing.T) {
	te := newTestEnv(t)
	require.NoError(t, os.WriteFile(filepath.Join(te.dataDir, "catalog.txt"), []byte("garbage\n"), 0644))
	out := te.mustRun("stats")
	assert.Contains(t, out, "books: 0")
	assert.Contains(t, out, "load error: ")
}

func TestUnknownKind(t *testing.T) {
	te := newTestEnv(t)
	_, err := te.run("list", "comic")
	assert.Error(t, err)
}

func TestExecuteExitCode(t *testing.T) {
	var out bytes.Buffer
	code := Execute([]string{"list", "comic"}, &out, BuildInfo{})
	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "error: unknown record kind")
}
