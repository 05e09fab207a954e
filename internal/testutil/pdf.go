// Package testutil builds small PDF fixtures for tests.
package testutil

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// TestingT is the subset of testing.T the helpers need.
type TestingT interface {
	Helper()
	TempDir() string
	Fatalf(format string, args ...any)
}

// OutlineItem is one bookmark in a fixture. Page is 0-indexed.
type OutlineItem struct {
	Title string
	Page  int
	Kids  []OutlineItem
}

// Fixture describes a generated PDF.
type Fixture struct {
	Pages   int
	Title   string // Info dictionary title; omitted when empty
	Outline []OutlineItem
}

// WritePDF renders f into a file under a fresh temp dir and returns its path.
func WritePDF(t TestingT, name string, f Fixture) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, BuildPDF(f), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

// BuildPDF renders a minimal PDF 1.4 document with blank pages, an optional
// Info title, and an outline whose items point at whole pages.
func BuildPDF(f Fixture) []byte {
	const (
		catalogObj  = 1
		pagesObj    = 2
		outlinesObj = 3
		infoObj     = 4
		firstPage   = 5
	)

	objs := map[int]string{}
	next := firstPage + f.Pages

	pageRef := func(i int) string { return fmt.Sprintf("%d 0 R", firstPage+i) }

	kids := make([]string, f.Pages)
	for i := 0; i < f.Pages; i++ {
		kids[i] = pageRef(i)
		objs[firstPage+i] = fmt.Sprintf(
			"<< /Type /Page /Parent %d 0 R /MediaBox [0 0 612 792] /Resources << >> >>", pagesObj)
	}
	objs[pagesObj] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), f.Pages)

	// addItems allocates object numbers for siblings, writes them, and
	// returns the first and last object numbers and the visible count.
	var addItems func(items []OutlineItem, parent int) (int, int, int)
	addItems = func(items []OutlineItem, parent int) (int, int, int) {
		if len(items) == 0 {
			return 0, 0, 0
		}
		nums := make([]int, len(items))
		for i := range items {
			nums[i] = next
			next++
		}
		count := 0
		for i, it := range items {
			var b strings.Builder
			fmt.Fprintf(&b, "<< /Title %s /Parent %d 0 R /Dest [%s /Fit]", pdfString(it.Title), parent, pageRef(it.Page))
			if i > 0 {
				fmt.Fprintf(&b, " /Prev %d 0 R", nums[i-1])
			}
			if i < len(items)-1 {
				fmt.Fprintf(&b, " /Next %d 0 R", nums[i+1])
			}
			if first, last, n := addItems(it.Kids, nums[i]); first != 0 {
				fmt.Fprintf(&b, " /First %d 0 R /Last %d 0 R /Count %d", first, last, n)
				count += n
			}
			b.WriteString(" >>")
			objs[nums[i]] = b.String()
			count++
		}
		return nums[0], nums[len(nums)-1], count
	}

	catalog := fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R", pagesObj)
	if first, last, n := addItems(f.Outline, outlinesObj); first != 0 {
		objs[outlinesObj] = fmt.Sprintf("<< /Type /Outlines /First %d 0 R /Last %d 0 R /Count %d >>", first, last, n)
		catalog += fmt.Sprintf(" /Outlines %d 0 R /PageMode /UseOutlines", outlinesObj)
	} else {
		objs[outlinesObj] = "<< /Type /Outlines /Count 0 >>"
	}
	objs[catalogObj] = catalog + " >>"

	info := "<< /Producer (pdfsplit tests) >>"
	if f.Title != "" {
		info = fmt.Sprintf("<< /Title %s /Producer (pdfsplit tests) >>", pdfString(f.Title))
	}
	objs[infoObj] = info

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")

	offsets := make([]int, next)
	for n := 1; n < next; n++ {
		offsets[n] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", n, objs[n])
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", next)
	buf.WriteString("0000000000 65535 f\r\n")
	for n := 1; n < next; n++ {
		fmt.Fprintf(&buf, "%010d 00000 n\r\n", offsets[n])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root %d 0 R /Info %d 0 R >>\n", next, catalogObj, infoObj)
	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF\n", xref)
	return buf.Bytes()
}

// pdfString encodes s as a literal string, escaping delimiters.
func pdfString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return "(" + r.Replace(s) + ")"
}
