// Package export writes each section's pages to its own PDF file.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jackzampolin/pdfsplit/internal/filename"
	"github.com/jackzampolin/pdfsplit/internal/outdir"
	"github.com/jackzampolin/pdfsplit/internal/toc"
)

var (
	// ErrExtraction is returned when pages cannot be cut from the source.
	ErrExtraction = errors.New("page extraction failed")

	// ErrWrite is returned when an output file cannot be written.
	ErrWrite = errors.New("write failed")
)

// Extractor produces a standalone PDF for a 0-indexed, inclusive page range.
type Extractor interface {
	Extract(start, end int, w io.Writer) error
}

// Item is a section paired with the file it will be written to.
type Item struct {
	Section toc.Section
	Name    string // Sanitized, unique base name
	Path    string // Full output path
}

// Result is the outcome of exporting one section.
type Result struct {
	Section toc.Section
	Path    string
	Err     error
}

// OK reports whether the section was written.
func (r Result) OK() bool {
	return r.Err == nil
}

// Plan assigns every section a sanitized, unique file name in dir.
func Plan(dir *outdir.Dir, sections []toc.Section) []Item {
	names := make([]string, len(sections))
	for i, s := range sections {
		names[i] = filename.Sanitize(s.Title, s.ID)
	}
	names = filename.Uniquify(names)

	items := make([]Item, len(sections))
	for i, s := range sections {
		items[i] = Item{
			Section: s,
			Name:    names[i],
			Path:    dir.SectionPath(s.ID, names[i]),
		}
	}
	return items
}

// Exporter writes planned items to the output directory.
type Exporter struct {
	Dir    *outdir.Dir
	Logger *slog.Logger
}

// Export writes every item, continuing past per-section failures, and
// returns one Result per item attempted. The output directory is created
// first even when items is empty. A non-nil error means the run stopped
// early: the directory could not be created or ctx was cancelled.
func (e *Exporter) Export(ctx context.Context, src Extractor, items []Item) ([]Result, error) {
	log := e.Logger
	if log == nil {
		log = slog.Default()
	}

	if err := e.Dir.EnsureExists(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWrite, err)
	}

	results := make([]Result, 0, len(items))
	for _, it := range items {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		s := it.Section
		log.Info("extracting section",
			"id", s.ID,
			"title", s.Title,
			"pages", fmt.Sprintf("%d-%d", s.StartPage+1, s.EndPage+1),
			"page_count", s.PageCount(),
		)

		err := e.writeSection(src, it)
		if err != nil {
			log.Error("section failed", "id", s.ID, "title", s.Title, "error", err)
		} else {
			log.Debug("wrote section", "id", s.ID, "path", it.Path)
		}
		results = append(results, Result{Section: s, Path: it.Path, Err: err})
	}
	return results, nil
}

// writeSection stages the extracted pages in a temp file and renames it
// into place, so a failed section never leaves a partial file behind.
func (e *Exporter) writeSection(src Extractor, it Item) error {
	tmp := e.Dir.TempPath()
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}

	if err := src.Extract(it.Section.StartPage, it.Section.EndPage, f); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	if err := os.Rename(tmp, it.Path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}
