package report

import (
	"github.com/jackzampolin/pdfsplit/internal/split"
)

// Section statuses.
const (
	StatusWritten  = "written"
	StatusFailed   = "failed"
	StatusExcluded = "excluded"
	StatusPlanned  = "planned"
	StatusSkipped  = "skipped"
)

// Summary is the serializable view of a split run. Page numbers are 1-based.
type Summary struct {
	Input     string    `json:"input" yaml:"input"`
	OutputDir string    `json:"output_dir" yaml:"output_dir"`
	Pages     int       `json:"pages" yaml:"pages"`
	DryRun    bool      `json:"dry_run,omitempty" yaml:"dry_run,omitempty"`
	Sections  []Section `json:"sections" yaml:"sections"`
	Warnings  []string  `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Written   int       `json:"written" yaml:"written"`
	Failed    int       `json:"failed" yaml:"failed"`
	Excluded  int       `json:"excluded" yaml:"excluded"`
}

// Section is one row of the summary.
type Section struct {
	ID        int    `json:"id" yaml:"id"`
	Title     string `json:"title" yaml:"title"`
	FirstPage int    `json:"first_page" yaml:"first_page"`
	LastPage  int    `json:"last_page" yaml:"last_page"`
	Pages     int    `json:"pages" yaml:"pages"`
	Status    string `json:"status" yaml:"status"`
	File      string `json:"file,omitempty" yaml:"file,omitempty"`
	Error     string `json:"error,omitempty" yaml:"error,omitempty"`
}

// FromResult builds a Summary from a run result. Sections that were planned
// but never attempted (the run was interrupted) are reported as skipped.
func FromResult(r *split.Result) Summary {
	s := Summary{
		Input:     r.InputPath,
		OutputDir: r.OutputDir,
		Pages:     r.PageCount,
		DryRun:    r.DryRun,
		Written:   r.Written(),
		Failed:    r.Failed(),
		Excluded:  len(r.Excluded),
		Sections:  make([]Section, 0, len(r.Sections)),
	}
	for _, w := range r.Warnings {
		s.Warnings = append(s.Warnings, w.Error())
	}

	excluded := make(map[int]bool, len(r.Excluded))
	for _, id := range r.Excluded {
		excluded[id] = true
	}
	planned := make(map[int]string, len(r.Planned))
	for _, it := range r.Planned {
		planned[it.Section.ID] = it.Path
	}
	exported := make(map[int]error, len(r.Exports))
	attempted := make(map[int]bool, len(r.Exports))
	for _, e := range r.Exports {
		exported[e.Section.ID] = e.Err
		attempted[e.Section.ID] = true
	}

	for _, sec := range r.Sections {
		row := Section{
			ID:        sec.ID,
			Title:     sec.Title,
			FirstPage: sec.StartPage + 1,
			LastPage:  sec.EndPage + 1,
			Pages:     sec.PageCount(),
		}
		switch {
		case excluded[sec.ID]:
			row.Status = StatusExcluded
		case r.DryRun:
			row.Status = StatusPlanned
			row.File = planned[sec.ID]
		case !attempted[sec.ID]:
			row.Status = StatusSkipped
			row.File = planned[sec.ID]
		case exported[sec.ID] != nil:
			row.Status = StatusFailed
			row.Error = exported[sec.ID].Error()
		default:
			row.Status = StatusWritten
			row.File = planned[sec.ID]
		}
		s.Sections = append(s.Sections, row)
	}
	return s
}
