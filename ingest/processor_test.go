package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSourceUsesFallback(t *testing.T) {
	dir := t.TempDir()
	fallback := writeFile(t, dir, "fallback.csv", "x,2026-01-01,10\nx,2026-01-01,oops\n")

	res, err := LoadSource(Source{
		ID:    "realmeye",
		Paths: []string{filepath.Join(dir, "missing.csv"), fallback},
	})
	require.NoError(t, err)

	assert.Equal(t, fallback, res.Path)
	assert.Len(t, res.Samples, 1)
	assert.Equal(t, 1, res.Dropped)
}

func TestLoadSourceMissingIsEmpty(t *testing.T) {
	res, err := LoadSource(Source{ID: "realmstock", Paths: []string{filepath.Join(t.TempDir(), "nope.csv")}})
	require.NoError(t, err)
	assert.Empty(t, res.Path)
	assert.Empty(t, res.Samples)
}

func TestProcessorRun(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.csv", "name,date,players\nA,2026-01-01,100\nA,2026-01-01,90\nA,2026-01-02,130\n")
	b := writeFile(t, dir, "b.csv", "B,2026-01-02,20\nB,2026-01-03,22\n")

	p := NewProcessor(nil,
		Source{ID: "realmeye", Paths: []string{a}},
		Source{ID: "realmstock", Paths: []string{b}},
		Source{ID: "absent", Paths: []string{filepath.Join(dir, "absent.csv")}},
	)

	res, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, res.RowCount("realmeye"))
	assert.Equal(t, 2, res.RowCount("realmstock"))
	assert.Zero(t, res.RowCount("absent"))

	require.Len(t, res.Points, 3)
	first := res.Points[0]
	assert.Equal(t, int64(100), *first.Max("realmeye"))
	assert.Equal(t, int64(90), *first.Min("realmeye"))
	assert.Nil(t, first.Max("realmstock"))
	assert.Contains(t, first.Sources, "absent")
}

func TestProcessorRunAllMissing(t *testing.T) {
	p := NewProcessor(nil, Source{ID: "a", Paths: []string{filepath.Join(t.TempDir(), "x.csv")}})

	res, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Points)
}

func TestProcessorRunWithoutSources(t *testing.T) {
	_, err := NewProcessor(nil).Run(context.Background())
	assert.ErrorIs(t, err, ErrNoSource)
}

func TestProcessorRunRejectsDuplicateIDs(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.csv", "A,2026-01-01,100\n")
	b := writeFile(t, dir, "b.csv", "B,2026-01-01,5\n")

	_, err := NewProcessor(nil,
		Source{ID: "realmeye", Paths: []string{a}},
		Source{ID: "realmeye", Paths: []string{b}},
	).Run(context.Background())
	assert.ErrorIs(t, err, ErrDuplicateSource)
}

func TestLoadSourceKeepsRowsAroundOversizedLine(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "big.csv",
		"A,2026-01-01,100\njunk,"+strings.Repeat("x", 2*1024*1024)+"\nA,2026-01-02,130\n")

	res, err := LoadSource(Source{ID: "realmeye", Paths: []string{path}})
	require.NoError(t, err)
	assert.Len(t, res.Samples, 2)
	assert.Equal(t, 1, res.Dropped)
}
