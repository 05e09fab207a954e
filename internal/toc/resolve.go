package toc

import (
	"fmt"
	"log/slog"
	"strings"
)

// Resolve converts outline entries into an ordered list of sections.
//
// Only entries with Level <= opts.MaxDepth start a section. A section ends on
// the page before the next section starts, and the last one ends on the
// document's last page, so the result always partitions the pages it covers.
// When two entries point at the same page the later one wins and the earlier,
// now empty, range is dropped. IDs are assigned after dropping, starting at 1.
func Resolve(entries []Entry, pageCount int, opts Options, logger *slog.Logger) ([]Section, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if pageCount < 1 {
		return nil, fmt.Errorf("%w: document has no pages", ErrInvalidToc)
	}

	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	lastPage := pageCount - 1

	for i, e := range entries {
		if e.Page < 0 || e.Page > lastPage {
			return nil, fmt.Errorf("%w: entry %d %q points at page %d, document has pages 0-%d",
				ErrInvalidToc, i+1, e.Title, e.Page, lastPage)
		}
	}

	if err := checkLevelOrder(entries); err != nil {
		return nil, err
	}

	var splittable []Entry
	for _, e := range entries {
		if e.Level <= maxDepth {
			splittable = append(splittable, e)
		}
	}

	if len(splittable) == 0 {
		title := strings.TrimSpace(opts.FallbackTitle)
		if title == "" {
			title = DefaultTitle
		}
		return []Section{{ID: 1, Title: title, StartPage: 0, EndPage: lastPage, Depth: 1}}, nil
	}

	for i := 1; i < len(splittable); i++ {
		if splittable[i].Page < splittable[i-1].Page {
			return nil, fmt.Errorf("%w: %q (page %d) comes after %q (page %d)",
				ErrInvalidToc, splittable[i].Title, splittable[i].Page,
				splittable[i-1].Title, splittable[i-1].Page)
		}
	}

	var sections []Section
	if first := splittable[0].Page; first > 0 && !opts.SkipFrontMatter {
		sections = append(sections, Section{
			Title:     FrontMatterTitle,
			StartPage: 0,
			EndPage:   first - 1,
			Depth:     1,
		})
	}

	for i, e := range splittable {
		end := lastPage
		if i+1 < len(splittable) {
			end = splittable[i+1].Page - 1
		}
		if end < e.Page {
			logger.Warn("dropping empty section",
				"title", e.Title,
				"page", e.Page,
				"superseded_by", splittable[i+1].Title,
			)
			continue
		}
		sections = append(sections, Section{
			Title:     e.Title,
			StartPage: e.Page,
			EndPage:   end,
			Depth:     e.Level,
		})
	}

	for i := range sections {
		sections[i].ID = i + 1
	}
	return sections, nil
}

// checkLevelOrder verifies that pages never decrease among entries of the
// same level. Siblings are compared only within one parent: a shallower
// entry resets the tracking for every level below it.
func checkLevelOrder(entries []Entry) error {
	type seen struct {
		title string
		page  int
	}
	last := make(map[int]seen)
	for _, e := range entries {
		for lvl := range last {
			if lvl > e.Level {
				delete(last, lvl)
			}
		}
		if prev, ok := last[e.Level]; ok && e.Page < prev.page {
			return fmt.Errorf("%w: %q (page %d) comes after %q (page %d) at level %d",
				ErrInvalidToc, e.Title, e.Page, prev.title, prev.page, e.Level)
		}
		last[e.Level] = seen{title: e.Title, page: e.Page}
	}
	return nil
}
