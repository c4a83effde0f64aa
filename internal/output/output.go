// Package output writes a crawled meme collection to disk: JSON, tab
// separated CSV, Markdown, SQLite, downloaded images, or a console table.
package output

import (
	"errors"
	"os"
	"path/filepath"
)

var (
	// ErrNoRecords is returned by outputs that cannot describe an empty collection.
	ErrNoRecords = errors.New("no memes to write")
	// ErrOutputExists is returned when an output directory is already present.
	ErrOutputExists = errors.New("output already exists")
)

// Filename returns "<slug><ext>" inside dir.
func Filename(dir, slug, ext string) string {
	return filepath.Join(dir, slug+ext)
}

// create opens path for writing, truncating any previous file and creating
// missing parent directories.
func create(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.Create(path)
}
