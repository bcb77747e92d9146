// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadStripsBOM(t *testing.T) {
	path := writeFile(t, "in.csv",
		"\uFEFFtitle,authors,conference,year\nPaper A,Alice; Bob,ISCA,2023\n")

	ds, err := Load(path)
	require.NoError(t, err)
	require.Len(t, ds.Records, 1)

	r := ds.Records[0]
	assert.Equal(t, "Paper A", r.Title)
	assert.Equal(t, "Alice; Bob", r.Authors)
	assert.Equal(t, "ISCA", r.Conference)
	assert.Equal(t, "2023", r.Year)
	assert.Empty(t, r.Abstract)
	assert.Zero(t, r.CitationCount)
}

func TestLoadStripsBOMBeforeQuotedHeader(t *testing.T) {
	path := writeFile(t, "in.csv",
		"\uFEFF\"title\",authors,conference,year\nPaper A,Alice,ISCA,2023\n")

	ds, err := Load(path)
	require.NoError(t, err)
	require.Len(t, ds.Records, 1)
	assert.Equal(t, "Paper A", ds.Records[0].Title)
}

func TestLoadWithoutBOM(t *testing.T) {
	path := writeFile(t, "in.csv",
		"title,authors,conference,year\nPaper A,Alice,ISCA,2023\n")

	ds, err := Load(path)
	require.NoError(t, err)
	require.Len(t, ds.Records, 1)
}

func TestLoadMissingRequiredColumn(t *testing.T) {
	path := writeFile(t, "in.csv", "title,authors,year\nA,B,2023\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "conference")
}

func TestLoadCoercesCitationCells(t *testing.T) {
	path := writeFile(t, "in.csv",
		"title,authors,conference,year,abstract,citationCount,affiliations\n"+
			"A,x,C,2020,,17,\n"+
			"B,x,C,2020,,,\n"+
			"C,x,C,2020,,garbage,\n"+
			"D,x,C,2020,, 42 ,\n"+
			"E,x,C,2020,,-3,\n")

	ds, err := Load(path)
	require.NoError(t, err)
	require.Len(t, ds.Records, 5)
	assert.Equal(t, []int{17, 0, 0, 42, 0}, []int{
		ds.Records[0].CitationCount,
		ds.Records[1].CitationCount,
		ds.Records[2].CitationCount,
		ds.Records[3].CitationCount,
		ds.Records[4].CitationCount,
	})
}

func TestCoerceCountTotality(t *testing.T) {
	tests := []struct {
		cell string
		want int
	}{
		{"", 0},
		{"  ", 0},
		{"abc", 0},
		{"12.5", 0},
		{"0", 0},
		{"7", 7},
		{"-1", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CoerceCount(tt.cell), "cell %q", tt.cell)
	}
}

func TestStoreRoundTripPreservesExtras(t *testing.T) {
	path := writeFile(t, "in.csv",
		"\uFEFFtitle,authors,conference,year,track,session\n"+
			"Paper A,Alice,ISCA,2023,ML,Morning\n")

	ds, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"track", "session"}, ds.ExtraColumns)
	assert.Equal(t, "ML", ds.Records[0].Extra["track"])

	out := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, Store(out, ds))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	text := string(data)

	assert.True(t, strings.HasPrefix(text, "\uFEFF"), "output missing BOM")
	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(text, "\uFEFF")), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "title,authors,conference,year,abstract,citationCount,affiliations,track,session", lines[0])
	assert.Equal(t, "Paper A,Alice,ISCA,2023,,0,,ML,Morning", lines[1])
}

func TestStoreThenLoadIsByteStable(t *testing.T) {
	path := writeFile(t, "in.csv",
		"\uFEFFtitle,authors,conference,year,abstract,citationCount,affiliations\n"+
			"A,Alice; Bob,ISCA,2023,An abstract.,12,Alice: MIT | Bob\n")

	ds, err := Load(path)
	require.NoError(t, err)

	out1 := filepath.Join(t.TempDir(), "out1.csv")
	require.NoError(t, Store(out1, ds))

	ds2, err := Load(out1)
	require.NoError(t, err)
	out2 := filepath.Join(t.TempDir(), "out2.csv")
	require.NoError(t, Store(out2, ds2))

	b1, err := os.ReadFile(out1)
	require.NoError(t, err)
	b2, err := os.ReadFile(out2)
	require.NoError(t, err)
	assert.Equal(t, b1, b2, "second round trip changed bytes")
}

func TestStoreLeavesNoTempFileBehind(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.csv")
	require.NoError(t, Store(out, &Dataset{}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "out.csv", entries[0].Name())
}
