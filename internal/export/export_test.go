package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jackzampolin/pdfsplit/internal/outdir"
	"github.com/jackzampolin/pdfsplit/internal/toc"
)

// fakeExtractor writes a text marker for the requested range and fails for
// any range starting at a page listed in failAt.
type fakeExtractor struct {
	failAt map[int]bool
	calls  [][2]int
}

func (f *fakeExtractor) Extract(start, end int, w io.Writer) error {
	f.calls = append(f.calls, [2]int{start, end})
	if f.failAt[start] {
		fmt.Fprint(w, "partial")
		return errors.New("boom")
	}
	_, err := fmt.Fprintf(w, "pages %d-%d", start, end)
	return err
}

func sections() []toc.Section {
	return []toc.Section{
		{ID: 1, Title: "Intro", StartPage: 0, EndPage: 2, Depth: 1},
		{ID: 2, Title: "Chapter 1", StartPage: 3, EndPage: 9, Depth: 1},
		{ID: 3, Title: "Chapter 2", StartPage: 10, EndPage: 14, Depth: 1},
	}
}

func TestPlan(t *testing.T) {
	dir := outdir.New("/out")
	secs := []toc.Section{
		{ID: 1, Title: "Notes", StartPage: 0, EndPage: 0},
		{ID: 2, Title: "Notes?", StartPage: 1, EndPage: 1},
		{ID: 3, Title: "???", StartPage: 2, EndPage: 2},
	}

	items := Plan(dir, secs)
	require.Len(t, items, 3)
	assert.Equal(t, "Notes", items[0].Name)
	assert.Equal(t, "Notes_2", items[1].Name)
	assert.Equal(t, "section_3", items[2].Name)
	assert.Equal(t, filepath.Join("/out", "001_Notes.pdf"), items[0].Path)
	assert.Equal(t, filepath.Join("/out", "002_Notes_2.pdf"), items[1].Path)
	assert.NotEqual(t, items[0].Path, items[1].Path)
}

func TestExport(t *testing.T) {
	dir := outdir.New(filepath.Join(t.TempDir(), "out"))
	src := &fakeExtractor{}
	e := &Exporter{Dir: dir}

	results, err := e.Export(context.Background(), src, Plan(dir, sections()))
	require.NoError(t, err)
	require.Len(t, results, 3)

	for _, r := range results {
		assert.True(t, r.OK(), "section %d: %v", r.Section.ID, r.Err)
	}
	assert.Equal(t, [][2]int{{0, 2}, {3, 9}, {10, 14}}, src.calls)

	names, err := dir.PDFs()
	require.NoError(t, err)
	assert.Equal(t, []string{"001_Intro.pdf", "002_Chapter_1.pdf", "003_Chapter_2.pdf"}, names)

	data, err := os.ReadFile(results[1].Path)
	require.NoError(t, err)
	assert.Equal(t, "pages 3-9", string(data))
}

func TestExport_ContinuesAfterFailure(t *testing.T) {
	dir := outdir.New(t.TempDir())
	src := &fakeExtractor{failAt: map[int]bool{3: true}}
	e := &Exporter{Dir: dir}

	results, err := e.Export(context.Background(), src, Plan(dir, sections()))
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.True(t, results[0].OK())
	assert.ErrorIs(t, results[1].Err, ErrExtraction)
	assert.True(t, results[2].OK())

	// Only successful sections are left behind, with no temp files.
	entries, err := os.ReadDir(dir.Path())
	require.NoError(t, err)
	var all []string
	for _, e := range entries {
		all = append(all, e.Name())
	}
	assert.Equal(t, []string{"001_Intro.pdf", "003_Chapter_2.pdf"}, all)
}

func TestExport_WriteFailure(t *testing.T) {
	dir := outdir.New(t.TempDir())
	items := Plan(dir, sections()[:1])
	items[0].Path = filepath.Join(dir.Path(), "missing", "001_Intro.pdf")

	results, err := (&Exporter{Dir: dir}).Export(context.Background(), &fakeExtractor{}, items)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, ErrWrite)

	names, err := dir.PDFs()
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestExport_NoItemsStillCreatesDir(t *testing.T) {
	dir := outdir.New(filepath.Join(t.TempDir(), "out"))

	results, err := (&Exporter{Dir: dir}).Export(context.Background(), &fakeExtractor{}, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.True(t, dir.Exists())
}

func TestExport_Cancelled(t *testing.T) {
	dir := outdir.New(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &fakeExtractor{}
	results, err := (&Exporter{Dir: dir}).Export(ctx, src, Plan(dir, sections()))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
	assert.Empty(t, src.calls)
}

func TestExport_OutputIsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	dir := outdir.New(path)

	_, err := (&Exporter{Dir: dir}).Export(context.Background(), &fakeExtractor{}, Plan(dir, sections()))
	assert.ErrorIs(t, err, ErrWrite)
}
