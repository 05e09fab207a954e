// Package filter lets the user drop sections before they are exported.
package filter

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jackzampolin/pdfsplit/internal/toc"
)

// ErrInvalidExclusionID marks an exclusion token that was ignored.
var ErrInvalidExclusionID = errors.New("invalid exclusion id")

// ExclusionSet holds the ids of sections to skip.
type ExclusionSet map[int]struct{}

// Has reports whether id is excluded.
func (s ExclusionSet) Has(id int) bool {
	_, ok := s[id]
	return ok
}

// IDs returns the excluded ids in ascending order.
func (s ExclusionSet) IDs() []int {
	ids := make([]int, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Parse reads a comma-separated list of section ids to exclude.
// Tokens may be single ids ("3") or inclusive ranges ("2-4"). Tokens that
// are malformed, out of range, or repeat an id already excluded are skipped
// and reported as warnings wrapping ErrInvalidExclusionID; the remaining ids
// still apply. An empty input excludes nothing.
func Parse(input string, sections []toc.Section) (ExclusionSet, []error) {
	valid := make(map[int]bool, len(sections))
	for _, s := range sections {
		valid[s.ID] = true
	}

	set := make(ExclusionSet)
	var warnings []error
	for _, tok := range strings.Split(input, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}

		lo, hi, err := parseToken(tok)
		if err != nil {
			warnings = append(warnings, fmt.Errorf("%w: %q: %v", ErrInvalidExclusionID, tok, err))
			continue
		}

		// Count offsets rather than ids so a range ending at MaxInt terminates.
		for off := 0; off <= hi-lo; off++ {
			id := lo + off
			switch {
			case !valid[id]:
				warnings = append(warnings, fmt.Errorf("%w: %d is out of range (1-%d)",
					ErrInvalidExclusionID, id, len(sections)))
			case set.Has(id):
				warnings = append(warnings, fmt.Errorf("%w: %d listed more than once",
					ErrInvalidExclusionID, id))
			default:
				set[id] = struct{}{}
			}
		}
	}
	return set, warnings
}

// maxRangeSpan bounds a single "a-b" token so a typo cannot expand into
// millions of warnings.
const maxRangeSpan = 10000

func parseToken(tok string) (int, int, error) {
	if lo, hi, ok := strings.Cut(tok, "-"); ok {
		a, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return 0, 0, fmt.Errorf("not a number")
		}
		b, err := strconv.Atoi(strings.TrimSpace(hi))
		if err != nil {
			return 0, 0, fmt.Errorf("not a number")
		}
		if b < a {
			return 0, 0, fmt.Errorf("range end before start")
		}
		if b-a >= maxRangeSpan {
			return 0, 0, fmt.Errorf("range too large")
		}
		return a, b, nil
	}

	id, err := strconv.Atoi(tok)
	if err != nil {
		return 0, 0, fmt.Errorf("not a number")
	}
	return id, id, nil
}

// Apply returns the sections whose ids are not in set, keeping their
// original ids and order.
func Apply(sections []toc.Section, set ExclusionSet) []toc.Section {
	kept := make([]toc.Section, 0, len(sections))
	for _, s := range sections {
		if !set.Has(s.ID) {
			kept = append(kept, s)
		}
	}
	return kept
}

// Line formats a section for display. Page numbers are shown 1-based.
func Line(s toc.Section) string {
	return fmt.Sprintf("%d: %s (pages %d-%d)", s.ID, s.Title, s.StartPage+1, s.EndPage+1)
}
