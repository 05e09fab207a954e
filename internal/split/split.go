// Package split runs the whole pipeline: read the outline, resolve sections,
// let the user drop some, and export the rest.
package split

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/jackzampolin/pdfsplit/internal/export"
	"github.com/jackzampolin/pdfsplit/internal/filter"
	"github.com/jackzampolin/pdfsplit/internal/outdir"
	"github.com/jackzampolin/pdfsplit/internal/toc"
)

// Source is the document being split.
type Source interface {
	TOC() ([]toc.Entry, error)
	PageCount() int
	Title() string
	export.Extractor
}

// Selector picks the ids to exclude once sections are known. It returns the
// raw comma-separated answer; parsing and validation happen in Run.
type Selector func(ctx context.Context, sections []toc.Section) (string, error)

// Request contains the parameters for one split run.
type Request struct {
	InputPath string // Used for the fallback title and the summary
	OutputDir string // Created if missing; empty means outdir.DefaultDirName

	MaxDepth        int  // Deepest outline level that starts a section
	SkipFrontMatter bool // Drop pages before the first outline entry

	// Exclude is a comma-separated id list applied without prompting.
	Exclude string
	// Select is called when Exclude is empty. Nil means exclude nothing.
	Select Selector

	DryRun bool         // Resolve and name sections without writing
	Logger *slog.Logger // Optional logger for progress updates
}

// Result describes a finished run.
type Result struct {
	InputPath string
	OutputDir string
	PageCount int
	Sections  []toc.Section   // Every resolved section, before exclusion
	Excluded  []int           // Ids the user excluded, ascending
	Warnings  []error         // Ignored exclusion tokens
	Planned   []export.Item   // Sections selected for export, with file names
	Exports   []export.Result // Empty on a dry run
	DryRun    bool
}

// Written returns the number of files written.
func (r *Result) Written() int {
	n := 0
	for _, e := range r.Exports {
		if e.OK() {
			n++
		}
	}
	return n
}

// Failed returns the number of sections that could not be written.
func (r *Result) Failed() int {
	return len(r.Exports) - r.Written()
}

// Run splits src according to req. Errors returned from Run are fatal for
// the whole run; per-section failures are reported in Result.Exports.
func Run(ctx context.Context, src Source, req Request) (*Result, error) {
	log := req.Logger
	if log == nil {
		log = slog.Default()
	}

	entries, err := src.TOC()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", toc.ErrInvalidToc, err)
	}

	pageCount := src.PageCount()
	log.Info("loaded document", "pages", pageCount, "toc_entries", len(entries))
	if len(entries) == 0 {
		log.Warn("no table of contents found, exporting the whole document as one section")
	}

	sections, err := toc.Resolve(entries, pageCount, toc.Options{
		MaxDepth:        req.MaxDepth,
		FallbackTitle:   fallbackTitle(src, req.InputPath),
		SkipFrontMatter: req.SkipFrontMatter,
	}, log)
	if err != nil {
		return nil, err
	}
	log.Info("resolved sections", "count", len(sections))

	answer := req.Exclude
	if answer == "" && req.Select != nil {
		answer, err = req.Select(ctx, sections)
		if err != nil {
			return nil, err
		}
	}

	excluded, warnings := filter.Parse(answer, sections)
	for _, w := range warnings {
		log.Warn("ignoring exclusion", "error", w)
	}
	kept := filter.Apply(sections, excluded)
	if len(excluded) > 0 {
		log.Info("excluded sections", "ids", excluded.IDs(), "remaining", len(kept))
	}

	dir := outdir.New(req.OutputDir)
	res := &Result{
		InputPath: req.InputPath,
		OutputDir: dir.Path(),
		PageCount: pageCount,
		Sections:  sections,
		Excluded:  excluded.IDs(),
		Warnings:  warnings,
		Planned:   export.Plan(dir, kept),
		DryRun:    req.DryRun,
	}
	if req.DryRun {
		return res, nil
	}

	if n := overwriteCount(dir, res.Planned); n > 0 {
		log.Warn("replacing existing files in output directory", "count", n, "output_dir", dir.Path())
	}

	exporter := &export.Exporter{Dir: dir, Logger: log}
	res.Exports, err = exporter.Export(ctx, src, res.Planned)
	if err != nil {
		return res, err
	}

	log.Info("split complete", "written", res.Written(), "failed", res.Failed(), "output_dir", dir.Path())
	return res, nil
}

// overwriteCount reports how many planned files already exist in dir.
func overwriteCount(dir *outdir.Dir, items []export.Item) int {
	if !dir.Exists() {
		return 0
	}
	existing, err := dir.PDFs()
	if err != nil {
		return 0
	}
	have := make(map[string]bool, len(existing))
	for _, name := range existing {
		have[name] = true
	}
	n := 0
	for _, it := range items {
		if have[filepath.Base(it.Path)] {
			n++
		}
	}
	return n
}

// fallbackTitle names the single section of a document without an outline:
// the metadata title if set, else the input file name without extension.
func fallbackTitle(src Source, inputPath string) string {
	if t := strings.TrimSpace(src.Title()); t != "" {
		return t
	}
	if inputPath == "" {
		return ""
	}
	base := filepath.Base(inputPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// LineSelector returns a Selector that shows sections on out and reads one
// answer line from in.
func LineSelector(in io.Reader, out io.Writer) Selector {
	p := filter.Prompter{In: in, Out: out}
	return p.Ask
}
