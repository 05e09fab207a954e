// Package pdf reads outlines from PDF files and cuts page ranges out of them.
package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/jackzampolin/pdfsplit/internal/toc"
)

// ErrInvalidInputPath is returned when the input is missing, unreadable, or
// not a PDF.
var ErrInvalidInputPath = errors.New("invalid input path")

// Document is an open PDF held in memory.
type Document struct {
	path      string
	data      []byte
	conf      *model.Configuration
	pageCount int
	title     string
	logger    *slog.Logger
	closed    bool
}

// Open reads the PDF at path and validates it enough to count its pages.
// The caller must Close the document.
func Open(path string, logger *slog.Logger) (*Document, error) {
	if logger == nil {
		logger = slog.Default()
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidInputPath, path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrInvalidInputPath, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidInputPath, path, err)
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not a readable PDF: %v", ErrInvalidInputPath, path, err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("%w: failed to get page count for %s: %v", ErrInvalidInputPath, path, err)
	}

	d := &Document{
		path:      path,
		data:      data,
		conf:      conf,
		pageCount: ctx.PageCount,
		title:     strings.TrimSpace(ctx.Title),
		logger:    logger.With("file", filepath.Base(path)),
	}
	d.logger.Debug("opened PDF", "pages", d.pageCount, "title", d.title)
	return d, nil
}

// Path returns the file the document was read from.
func (d *Document) Path() string {
	return d.path
}

// PageCount returns the number of pages in the document.
func (d *Document) PageCount() int {
	return d.pageCount
}

// Title returns the document metadata title, or "" if none is set.
func (d *Document) Title() string {
	return d.title
}

// TOC returns the document outline flattened in document order, with
// 0-indexed pages. A document without an outline yields no entries.
func (d *Document) TOC() ([]toc.Entry, error) {
	if d.closed {
		return nil, errClosed
	}

	bookmarks, err := api.Bookmarks(bytes.NewReader(d.data), d.conf)
	if err != nil {
		if errors.Is(err, api.ErrNoOutlines) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read outline: %w", err)
	}

	var entries []toc.Entry
	flatten(bookmarks, 1, &entries)
	d.logger.Debug("read outline", "entries", len(entries))
	return entries, nil
}

// flatten walks the bookmark tree depth-first. pdfcpu reports pages
// 1-indexed; unresolvable destinations come back as 0 and map to -1, which
// the resolver rejects as out of bounds.
func flatten(bookmarks []pdfcpu.Bookmark, level int, out *[]toc.Entry) {
	for _, bm := range bookmarks {
		*out = append(*out, toc.Entry{
			Level: level,
			Title: strings.TrimSpace(bm.Title),
			Page:  bm.PageFrom - 1,
		})
		flatten(bm.Kids, level+1, out)
	}
}

// Extract writes a standalone PDF containing pages start..end (0-indexed,
// inclusive) to w.
func (d *Document) Extract(start, end int, w io.Writer) error {
	if d.closed {
		return errClosed
	}
	if start < 0 || end >= d.pageCount || start > end {
		return fmt.Errorf("page range %d-%d outside document (0-%d)", start, end, d.pageCount-1)
	}

	sel := strconv.Itoa(start+1) + "-" + strconv.Itoa(end+1)
	if err := api.Trim(bytes.NewReader(d.data), w, []string{sel}, d.conf); err != nil {
		return fmt.Errorf("failed to extract pages %s: %w", sel, err)
	}
	return nil
}

var errClosed = errors.New("document is closed")

// Close releases the document's buffer. It is safe to call more than once.
func (d *Document) Close() error {
	d.data = nil
	d.closed = true
	return nil
}
