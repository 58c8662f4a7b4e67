package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/kjk/catalog/assert"
	"github.com/kjk/catalog/record"
	"github.com/kjk/catalog/require"
	"github.com/kjk/catalog/view"
)

var now = time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)

func testDoc(t *testing.T) *Document {
	var recs []*record.Record
	for _, title := range []string{"İnce Memed", "Yer Demir Gök Bakır"} {
		r, err := record.New(record.KindBook, record.Fields{
			record.FieldTitle:     title,
			record.FieldAuthor:    "Yaşar Kemal",
			record.FieldGenre:     "Roman",
			record.FieldStartDate: "01/01/2024",
			record.FieldEndDate:   "02/02/2024",
		})
		require.NoError(t, err)
		recs = append(recs, r)
	}
	q := view.Query{Kind: record.KindBook, Genre: "Roman"}
	return NewDocument(q, recs, now)
}

func TestNewDocument(t *testing.T) {
	doc := testDoc(t)
	assert.Equal(t, Title, doc.Title)
	assert.Equal(t, "Books – Roman – 05/03/2024", doc.Subtitle)
	assert.Equal(t, []string{"Title", "Author", "Genre", "Start Date", "End Date"}, doc.Columns)
	assert.Len(t, doc.Rows, 2)
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatText, testDoc(t)))
	s := buf.String()
	assert.True(t, strings.HasPrefix(s, "Library Catalog\nBooks – Roman – 05/03/2024\n"), s)
	assert.Contains(t, s, "Start Date")
	assert.Contains(t, s, "Yer Demir Gök Bakır")

	buf.Reset()
	empty := NewDocument(view.Query{Kind: record.KindMagazine}, nil, now)
	require.NoError(t, Write(&buf, FormatText, empty))
	assert.Contains(t, buf.String(), "(no records)")
}

func TestWriteTextMagazineMonth(t *testing.T) {
	m, err := record.New(record.KindMagazine, record.Fields{
		record.FieldName:      "Varlık",
		record.FieldIssue:     "12",
		record.FieldVolume:    "3",
		record.FieldDate:      "05/2023",
		record.FieldStartDate: "01/06/2023",
		record.FieldEndDate:   "02/06/2023",
	})
	require.NoError(t, err)
	doc := NewDocument(view.Query{Kind: record.KindMagazine}, []*record.Record{m}, now)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatText, doc))
	assert.Contains(t, buf.String(), "Mayıs 2023")
	assert.NotContains(t, buf.String(), "05/2023")

	// machine formats keep the stored value
	buf.Reset()
	require.NoError(t, Write(&buf, FormatCSV, doc))
	assert.Contains(t, buf.String(), ",05/2023,")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, testDoc(t)))
	assert.Contains(t, buf.String(), "İnce Memed")
	var v struct {
		Title    string           `json:"title"`
		Subtitle string           `json:"subtitle"`
		Kind     string           `json:"kind"`
		Rows     []map[string]any `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &v))
	assert.Equal(t, Title, v.Title)
	assert.Equal(t, "book", v.Kind)
	require.Len(t, v.Rows, 2)
	assert.Equal(t, float64(2), v.Rows[1]["no"])
	assert.Equal(t, "Yer Demir Gök Bakır", v.Rows[1]["title"])
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, testDoc(t)))
	lines, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"#", "Title", "Author", "Genre", "Start Date", "End Date"}, lines[0])
	assert.Equal(t, []string{"1", "İnce Memed", "Yaşar Kemal", "Roman", "01/01/2024", "02/02/2024"}, lines[1])
}

func TestWriteTOON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatTOON, testDoc(t)))
	s := buf.String()
	assert.Contains(t, s, "Library Catalog")
	assert.Contains(t, s, "Yer Demir Gök Bakır")
}

func TestFormats(t *testing.T) {
	f, err := ParseFormat(" JSON ")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)
	_, err = ParseFormat("pdf")
	assert.Error(t, err)
	assert.Equal(t, FormatCSV, FormatFromPath("out.CSV"))
	assert.Equal(t, FormatTOON, FormatFromPath("out.toon"))
	assert.Equal(t, FormatText, FormatFromPath("out"))
	assert.Error(t, Write(&bytes.Buffer{}, Format("pdf"), testDoc(t)))
}
