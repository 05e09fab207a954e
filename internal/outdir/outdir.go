// Package outdir manages the directory split files are written to.
package outdir

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/jackzampolin/pdfsplit/internal/filename"
)

// DefaultDirName is the output directory used when none is given.
const DefaultDirName = "output"

// tempPrefix marks in-progress writes so they are never mistaken for output.
const tempPrefix = ".pdfsplit-"

// Dir represents the output directory.
type Dir struct {
	path string
}

// New returns the output directory at path, falling back to ./output
// when path is empty. Nothing is created until EnsureExists.
func New(path string) *Dir {
	if path == "" {
		path = DefaultDirName
	}
	return &Dir{path: filepath.Clean(path)}
}

// Path returns the directory path.
func (d *Dir) Path() string {
	return d.path
}

// EnsureExists creates the directory and any missing parents.
func (d *Dir) EnsureExists() error {
	info, err := os.Stat(d.path)
	if err == nil && !info.IsDir() {
		return fmt.Errorf("output path %s exists and is not a directory", d.path)
	}
	if err := os.MkdirAll(d.path, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}

// Exists returns true if the directory exists.
func (d *Dir) Exists() bool {
	info, err := os.Stat(d.path)
	return err == nil && info.IsDir()
}

// SectionPath returns the output path for a section with the given id and
// sanitized name.
func (d *Dir) SectionPath(id int, name string) string {
	return filepath.Join(d.path, filename.File(id, name))
}

// TempPath returns a unique hidden path inside the directory for staging a
// write before it is renamed into place.
func (d *Dir) TempPath() string {
	return filepath.Join(d.path, tempPrefix+uuid.New().String()+".tmp")
}

// PDFs returns the names of the PDF files in the directory, sorted.
func (d *Dir) PDFs() ([]string, error) {
	entries, err := os.ReadDir(d.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read output directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), tempPrefix) {
			continue
		}
		if strings.HasSuffix(strings.ToLower(entry.Name()), ".pdf") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
