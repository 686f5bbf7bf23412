package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultExcludeDirs lists directory names that never contain course
// material and are pruned during the walk.
var DefaultExcludeDirs = []string{
	".git", "__pycache__", "node_modules", "venv", ".venv", "env",
	".tox", ".mypy_cache", ".pytest_cache", "build", "dist", ".eggs",
	".ipynb_checkpoints", ".DS_Store",
}

// Options controls a scan.
type Options struct {
	// ExcludeDirs are directory names pruned from the walk. Nil means
	// DefaultExcludeDirs.
	ExcludeDirs []string

	// MaxDepth limits how deep the walk descends below the root.
	// Depth 1 means only files directly under the root. Zero or
	// negative means unlimited.
	MaxDepth int
}

// ListRelativePaths walks root and returns every regular file as a
// forward-slash relative path, sorted. Hidden files and excluded
// directories are skipped.
func ListRelativePaths(root string, opts Options) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root is not a directory: %s", root)
	}

	excluded := make(map[string]bool)
	names := opts.ExcludeDirs
	if names == nil {
		names = DefaultExcludeDirs
	}
	for _, name := range names {
		excluded[name] = true
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel == "." {
				return nil
			}
			if excluded[d.Name()] || strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			if opts.MaxDepth > 0 && pathDepth(rel) >= opts.MaxDepth {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		if opts.MaxDepth > 0 && pathDepth(rel) > opts.MaxDepth {
			return nil
		}

		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	sort.Strings(paths)
	return paths, nil
}

// pathDepth counts the segments of a forward-slash relative path.
func pathDepth(rel string) int {
	return strings.Count(rel, "/") + 1
}
