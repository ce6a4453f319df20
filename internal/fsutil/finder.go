// Package fsutil discovers input documents on disk.
package fsutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultPattern matches every document file under a directory tree.
const DefaultPattern = "**/*.nif.{yaml,yml,yaml.zst,yml.zst}"

// ErrBadPattern is returned for patterns doublestar cannot parse.
var ErrBadPattern = errors.New("invalid input pattern")

// FindDocuments returns every file under root matching pattern, sorted. A
// root that names a regular file is returned as-is whatever the pattern.
func FindDocuments(root, pattern string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{root}, nil
	}
	if pattern == "" {
		pattern = DefaultPattern
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("%w: %q", ErrBadPattern, pattern)
	}

	var files []string
	err = doublestar.GlobWalk(os.DirFS(root), pattern, func(path string, d fs.DirEntry) error {
		if !d.IsDir() {
			files = append(files, filepath.Join(root, filepath.FromSlash(path)))
		}
		return nil
	}, doublestar.WithFilesOnly(), doublestar.WithNoFollow())
	if err != nil {
		return nil, fmt.Errorf("searching %s: %w", root, err)
	}
	sort.Strings(files)
	return slices.Compact(files), nil
}

// Rel returns path relative to root, or the base name when root is the
// path itself.
func Rel(root, path string) string {
	if root == path {
		return filepath.Base(path)
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.Base(path)
	}
	return rel
}
