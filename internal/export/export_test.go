package export

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdaehl/PaperStream/internal/domain"
)

func sampleRecords() []*domain.PaperRecord {
	return []*domain.PaperRecord{
		{
			Title:    "Paper A",
			Authors:  []string{"Jane Doe", "John Smith"},
			Abstract: "First abstract.",
			URL:      "https://a.example/1",
			Venue:    "CVPR",
			Year:     2023,
		},
		{
			Title: "Paper B",
			URL:   "https://a.example/2",
		},
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleRecords()))

	var decoded []domain.PaperRecord
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "Paper A", decoded[0].Title)
	assert.Equal(t, []string{"Jane Doe", "John Smith"}, decoded[0].Authors)
	assert.Equal(t, 2023, decoded[0].Year)

	t.Run("nil records encode as an empty array", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteJSON(&buf, nil))
		assert.Equal(t, "[]", strings.TrimSpace(buf.String()))
	})
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleRecords()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "title,authors,abstract,url,venue,year", lines[0])
	assert.Contains(t, lines[1], "Jane Doe; John Smith")
	assert.Contains(t, lines[1], "2023")
	assert.Contains(t, lines[2], "Paper B")
}

func TestWriteAtom(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteAtom(&buf, "cvpr_2023", sampleRecords()))
	out := buf.String()

	assert.Contains(t, out, `<feed xmlns="http://www.w3.org/2005/Atom">`)
	assert.Contains(t, out, "<title>cvpr_2023</title>")
	assert.Contains(t, out, "<title>Paper A</title>")
	assert.Contains(t, out, `<link rel="alternate" href="https://a.example/1">`)
	assert.Contains(t, out, "<name>Jane Doe</name>")
	assert.Contains(t, out, "<summary>First abstract.</summary>")
	assert.NotContains(t, out, "<summary></summary>", "empty abstracts are omitted")
}

func TestWrite_UnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, "yaml", "t", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown export format")
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "cvpr_2023.json", Filename("CVPR", 2023, "json"))
	assert.Equal(t, "neurips_2022.csv", Filename("NeurIPS", 2022, "CSV"))
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteFile(dir+"/out", Filename("CVPR", 2023, "json"), "json", sampleRecords())
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "cvpr_2023.json"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded []domain.PaperRecord
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Len(t, decoded, 2)
}
