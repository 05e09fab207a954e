// Package toc turns a document outline into page ranges that can be split out
// as separate files.
package toc

import "errors"

// ErrInvalidToc is returned when outline entries cannot be mapped onto the
// document's pages (out of bounds, or out of order).
var ErrInvalidToc = errors.New("invalid table of contents")

const (
	// DefaultMaxDepth splits on top-level outline entries only.
	DefaultMaxDepth = 1

	// DefaultTitle is used for a whole-document section when neither the
	// outline nor the document metadata supplies one.
	DefaultTitle = "Document"

	// FrontMatterTitle names the pages that precede the first outline entry.
	FrontMatterTitle = "Front Matter"
)

// Entry is a single outline item in document order.
type Entry struct {
	Level int    // 1 for top-level entries
	Title string // Heading text as stored in the outline
	Page  int    // 0-indexed page the heading points at
}

// Section is a contiguous page range that becomes one output file.
// StartPage and EndPage are 0-indexed and inclusive.
type Section struct {
	ID        int    `json:"id" yaml:"id"` // 1-based, stable across display and filtering
	Title     string `json:"title" yaml:"title"`
	StartPage int    `json:"start_page" yaml:"start_page"`
	EndPage   int    `json:"end_page" yaml:"end_page"`
	Depth     int    `json:"depth" yaml:"depth"`
}

// PageCount returns the number of pages covered by the section.
func (s Section) PageCount() int {
	return s.EndPage - s.StartPage + 1
}

// Options controls how outline entries are resolved into sections.
type Options struct {
	// MaxDepth is the deepest outline level that starts its own section.
	// Deeper entries are folded into their parent. Zero means DefaultMaxDepth.
	MaxDepth int

	// FallbackTitle names the single section produced for a document
	// without a usable outline. Empty means DefaultTitle.
	FallbackTitle string

	// SkipFrontMatter drops the pages before the first outline entry
	// instead of emitting them as a FrontMatterTitle section.
	SkipFrontMatter bool
}
