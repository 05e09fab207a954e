// Package filename turns section titles into names that are safe to use on
// common filesystems.
package filename

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// MaxLength is the maximum size in bytes of a sanitized name.
const MaxLength = 150

// illegal holds characters rejected by at least one common filesystem.
const illegal = `/\:*?"<>|`

// trimSet is stripped from both ends of a name.
const trimSet = "_.- "

// Sanitize returns a filesystem-safe base name for title.
// The result is never empty (it falls back to "section_<id>"), never longer
// than MaxLength bytes, and Sanitize(Sanitize(x, id), id) == Sanitize(x, id).
func Sanitize(title string, id int) string {
	var b strings.Builder
	b.Grow(len(title))
	pendingSpace := false
	for _, r := range title {
		switch {
		case r == utf8.RuneError:
			continue
		case unicode.IsSpace(r):
			pendingSpace = true
			continue
		case strings.ContainsRune(illegal, r), unicode.IsControl(r):
			continue
		}
		if pendingSpace && b.Len() > 0 {
			b.WriteByte('_')
		}
		pendingSpace = false
		b.WriteRune(r)
	}

	name := norm.NFC.String(b.String())
	name = truncate(strings.Trim(name, trimSet), MaxLength)
	name = strings.Trim(name, trimSet)
	if name == "" {
		return fallback(id)
	}
	return name
}

// fallback names a section whose title has no usable characters.
func fallback(id int) string {
	return fmt.Sprintf("section_%d", id)
}

// truncate cuts s to at most max bytes without splitting a rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// Uniquify makes names unique, comparing case-insensitively so the result is
// also safe on case-insensitive filesystems. The first occurrence keeps its
// name; later ones get "_2", "_3", ... in input order, skipping any suffixed
// name that is already in the input. The input is not modified.
func Uniquify(names []string) []string {
	reserved := make(map[string]bool, len(names))
	for _, n := range names {
		reserved[strings.ToLower(n)] = true
	}

	used := make(map[string]bool, len(names))
	out := make([]string, len(names))
	for i, n := range names {
		key := strings.ToLower(n)
		if !used[key] {
			used[key] = true
			out[i] = n
			continue
		}
		for k := 2; ; k++ {
			suffix := "_" + strconv.Itoa(k)
			candidate := truncate(n, MaxLength-len(suffix)) + suffix
			ck := strings.ToLower(candidate)
			if used[ck] || reserved[ck] {
				continue
			}
			used[ck] = true
			out[i] = candidate
			break
		}
	}
	return out
}

// File returns the output file name for a section: "<id>_<name>.pdf" with
// the id zero-padded to three digits.
func File(id int, name string) string {
	return fmt.Sprintf("%03d_%s.pdf", id, name)
}
