package split

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jackzampolin/pdfsplit/internal/export"
	"github.com/jackzampolin/pdfsplit/internal/filter"
	"github.com/jackzampolin/pdfsplit/internal/outdir"
	"github.com/jackzampolin/pdfsplit/internal/pdf"
	"github.com/jackzampolin/pdfsplit/internal/testutil"
	"github.com/jackzampolin/pdfsplit/internal/toc"
)

// fakeSource is an in-memory document.
type fakeSource struct {
	entries []toc.Entry
	pages   int
	title   string
	tocErr  error
	failAt  int // start page whose extraction fails; -1 for none
}

func (f *fakeSource) TOC() ([]toc.Entry, error) { return f.entries, f.tocErr }
func (f *fakeSource) PageCount() int { return f.pages }
func (f *fakeSource) Title() string { return f.title }

func (f *fakeSource) Extract(start, end int, w io.Writer) error {
	if start == f.failAt {
		return errors.New("corrupt page")
	}
	_, err := fmt.Fprintf(w, "%d-%d", start, end)
	return err
}

func threeChapters() *fakeSource {
	return &fakeSource{
		entries: []toc.Entry{
			{Level: 1, Title: "Intro", Page: 0},
			{Level: 1, Title: "Chapter 1", Page: 3},
			{Level: 1, Title: "Chapter 2", Page: 10},
		},
		pages:  15,
		failAt: -1,
	}
}

func outputFiles(t *testing.T, dir string) []string {
	t.Helper()
	names, err := outdir.New(dir).PDFs()
	require.NoError(t, err)
	return names
}

func TestRun_ExcludeFirstSection(t *testing.T) {
	out := filepath.Join(t.TempDir(), "output")

	res, err := Run(context.Background(), threeChapters(), Request{
		InputPath: "book.pdf",
		OutputDir: out,
		Exclude:   "1",
	})
	require.NoError(t, err)

	require.Len(t, res.Sections, 3)
	assert.Equal(t, toc.Section{ID: 1, Title: "Intro", StartPage: 0, EndPage: 2, Depth: 1}, res.Sections[0])
	assert.Equal(t, toc.Section{ID: 2, Title: "Chapter 1", StartPage: 3, EndPage: 9, Depth: 1}, res.Sections[1])
	assert.Equal(t, toc.Section{ID: 3, Title: "Chapter 2", StartPage: 10, EndPage: 14, Depth: 1}, res.Sections[2])

	assert.Equal(t, []int{1}, res.Excluded)
	assert.Equal(t, 2, res.Written())
	assert.Equal(t, 0, res.Failed())
	assert.Equal(t, []string{"002_Chapter_1.pdf", "003_Chapter_2.pdf"}, outputFiles(t, out))

	data, err := os.ReadFile(filepath.Join(out, "002_Chapter_1.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "3-9", string(data))
}

func TestRun_ExcludeAll(t *testing.T) {
	out := filepath.Join(t.TempDir(), "output")

	res, err := Run(context.Background(), threeChapters(), Request{OutputDir: out, Exclude: "1,2,3"})
	require.NoError(t, err)
	assert.Empty(t, res.Planned)
	assert.Empty(t, res.Exports)
	assert.Equal(t, 0, res.Failed())
	assert.Empty(t, outputFiles(t, out))
}

func TestRun_OutOfRangeExclusion(t *testing.T) {
	src := threeChapters()
	src.entries = append(src.entries,
		toc.Entry{Level: 1, Title: "Chapter 3", Page: 12},
		toc.Entry{Level: 1, Title: "Index", Page: 14},
	)
	out := t.TempDir()

	res, err := Run(context.Background(), src, Request{OutputDir: out, Exclude: "99, 2"})
	require.NoError(t, err)

	require.Len(t, res.Warnings, 1)
	assert.ErrorIs(t, res.Warnings[0], filter.ErrInvalidExclusionID)
	assert.Equal(t, []int{2}, res.Excluded)
	assert.Equal(t, 4, res.Written())
	assert.NotContains(t, outputFiles(t, out), "002_Chapter_1.pdf")
}

func TestRun_EmptyTOC(t *testing.T) {
	out := t.TempDir()
	src := &fakeSource{pages: 5, failAt: -1}

	res, err := Run(context.Background(), src, Request{InputPath: "/docs/annual-report.pdf", OutputDir: out})
	require.NoError(t, err)

	require.Len(t, res.Sections, 1)
	assert.Equal(t, 0, res.Sections[0].StartPage)
	assert.Equal(t, 4, res.Sections[0].EndPage)
	assert.Equal(t, "annual-report", res.Sections[0].Title)
	assert.Equal(t, []string{"001_annual-report.pdf"}, outputFiles(t, out))
}

func TestRun_EmptyTOCUsesMetadataTitle(t *testing.T) {
	src := &fakeSource{pages: 5, title: "Annual Report 2025", failAt: -1}

	res, err := Run(context.Background(), src, Request{InputPath: "scan.pdf", OutputDir: t.TempDir(), DryRun: true})
	require.NoError(t, err)
	require.Len(t, res.Planned, 1)
	assert.Equal(t, "Annual_Report_2025", res.Planned[0].Name)
}

func TestRun_DuplicateTitles(t *testing.T) {
	src := &fakeSource{
		entries: []toc.Entry{
			{Level: 1, Title: "Notes", Page: 0},
			{Level: 1, Title: "Notes", Page: 2},
		},
		pages:  4,
		failAt: -1,
	}

	res, err := Run(context.Background(), src, Request{OutputDir: t.TempDir(), DryRun: true})
	require.NoError(t, err)
	require.Len(t, res.Planned, 2)
	assert.NotEqual(t, res.Planned[0].Path, res.Planned[1].Path)
	assert.NotEqual(t, res.Planned[0].Name, res.Planned[1].Name)
}

func TestRun_PartialFailure(t *testing.T) {
	src := threeChapters()
	src.failAt = 3
	out := t.TempDir()

	res, err := Run(context.Background(), src, Request{OutputDir: out})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Written())
	assert.Equal(t, 1, res.Failed())
	assert.ErrorIs(t, res.Exports[1].Err, export.ErrExtraction)
	assert.Equal(t, []string{"001_Intro.pdf", "003_Chapter_2.pdf"}, outputFiles(t, out))
}

func TestRun_WarnsBeforeReplacingFiles(t *testing.T) {
	out := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(out, "002_Chapter_1.pdf"), []byte("old"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(out, "unrelated.pdf"), []byte("old"), 0o644))

	var logs bytes.Buffer
	_, err := Run(context.Background(), threeChapters(), Request{
		InputPath: "book.pdf",
		OutputDir: out,
		Logger:    slog.New(slog.NewTextHandler(&logs, nil)),
	})
	require.NoError(t, err)

	assert.Contains(t, logs.String(), "replacing existing files")
	assert.Contains(t, logs.String(), "count=1")
	assert.Equal(t, 0, overwriteCount(outdir.New(filepath.Join(out, "missing")), nil))
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	out := filepath.Join(t.TempDir(), "output")

	res, err := Run(context.Background(), threeChapters(), Request{OutputDir: out, DryRun: true})
	require.NoError(t, err)
	assert.True(t, res.DryRun)
	assert.Len(t, res.Planned, 3)
	assert.Empty(t, res.Exports)
	assert.False(t, outdir.New(out).Exists())
}

func TestRun_InvalidTOC(t *testing.T) {
	src := threeChapters()
	src.entries[2].Page = 40

	_, err := Run(context.Background(), src, Request{OutputDir: t.TempDir()})
	assert.ErrorIs(t, err, toc.ErrInvalidToc)

	src = threeChapters()
	src.tocErr = errors.New("broken outline")
	_, err = Run(context.Background(), src, Request{OutputDir: t.TempDir()})
	assert.ErrorIs(t, err, toc.ErrInvalidToc)
}

func TestRun_Selector(t *testing.T) {
	var shown []toc.Section
	sel := func(ctx context.Context, sections []toc.Section) (string, error) {
		shown = sections
		return "3", nil
	}

	res, err := Run(context.Background(), threeChapters(), Request{OutputDir: t.TempDir(), Select: sel, DryRun: true})
	require.NoError(t, err)
	assert.Len(t, shown, 3)
	require.Len(t, res.Planned, 2)
	assert.Equal(t, []int{1, 2}, []int{res.Planned[0].Section.ID, res.Planned[1].Section.ID})

	t.Run("explicit exclusions skip the selector", func(t *testing.T) {
		called := false
		sel := func(context.Context, []toc.Section) (string, error) {
			called = true
			return "", nil
		}
		_, err := Run(context.Background(), threeChapters(), Request{OutputDir: t.TempDir(), Exclude: "1", Select: sel, DryRun: true})
		require.NoError(t, err)
		assert.False(t, called)
	})

	t.Run("selector error aborts", func(t *testing.T) {
		sel := func(context.Context, []toc.Section) (string, error) {
			return "", filter.ErrPromptCancelled
		}
		_, err := Run(context.Background(), threeChapters(), Request{OutputDir: t.TempDir(), Select: sel})
		assert.ErrorIs(t, err, filter.ErrPromptCancelled)
	})
}

func TestLineSelector(t *testing.T) {
	var out bytes.Buffer
	sel := LineSelector(strings.NewReader("2\n"), &out)

	res, err := Run(context.Background(), threeChapters(), Request{OutputDir: t.TempDir(), Select: sel, DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, []int{2}, res.Excluded)
	assert.Contains(t, out.String(), "2: Chapter 1 (pages 4-10)")
}

func TestRun_RealPDF(t *testing.T) {
	path := testutil.WritePDF(t, "sample.pdf", testutil.Fixture{
		Pages: 15,
		Outline: []testutil.OutlineItem{
			{Title: "Intro", Page: 0},
			{Title: "Chapter 1", Page: 3, Kids: []testutil.OutlineItem{{Title: "Section 1.1", Page: 5}}},
			{Title: "Chapter 2", Page: 10},
		},
	})

	doc, err := pdf.Open(path, nil)
	require.NoError(t, err)
	defer doc.Close()

	out := filepath.Join(t.TempDir(), "output")
	res, err := Run(context.Background(), doc, Request{InputPath: path, OutputDir: out, Exclude: "1"})
	require.NoError(t, err)
	require.Equal(t, 2, res.Written())

	assert.Equal(t, []string{"002_Chapter_1.pdf", "003_Chapter_2.pdf"}, outputFiles(t, out))

	for name, want := range map[string]int{"002_Chapter_1.pdf": 7, "003_Chapter_2.pdf": 5} {
		f, err := os.Open(filepath.Join(out, name))
		require.NoError(t, err)
		n, err := pdfapi.PageCount(f, nil)
		f.Close()
		require.NoError(t, err)
		assert.Equal(t, want, n, name)
	}
}
