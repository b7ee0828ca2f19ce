// Package discover finds build reports among files and directory trees.
package discover

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultIgnoreDirs are common directories to skip during traversal
var DefaultIgnoreDirs = []string{"node_modules", ".git", "vendor"}

// DefaultPatterns match report files by base name.
var DefaultPatterns = []string{"*.json"}

// Options configures report discovery
type Options struct {
	IgnoreDirs    []string // Directories to skip (default: DefaultIgnoreDirs)
	Patterns      []string // Report file name patterns (default: DefaultPatterns)
	IncludeHidden bool     // Include hidden files/dirs (default: false)
}

// Walk traverses a directory tree, skipping ignored and hidden
// directories, and calls visitor for every regular file.
func Walk(rootPath string, opts Options, visitor func(path string, info os.FileInfo) error) error {
	ignoreDirs := opts.IgnoreDirs
	if len(ignoreDirs) == 0 {
		ignoreDirs = DefaultIgnoreDirs
	}

	return filepath.Walk(rootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		// Skip hidden files/directories unless explicitly included
		if !opts.IncludeHidden && strings.HasPrefix(info.Name(), ".") && path != rootPath {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() {
			for _, ignore := range ignoreDirs {
				if info.Name() == ignore && path != rootPath {
					return filepath.SkipDir
				}
			}
			return nil
		}

		return visitor(path, info)
	})
}

// Reports expands paths into report files. Files are taken as given;
// directories are walked for files matching the patterns. The result is
// sorted and free of duplicates.
func Reports(paths []string, opts Options) ([]string, error) {
	patterns := opts.Patterns
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}

	found := make(map[string]bool)

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("failed to discover reports: %w", err)
		}

		if !info.IsDir() {
			found[filepath.Clean(root)] = true
			continue
		}

		err = Walk(root, opts, func(path string, info os.FileInfo) error {
			if matches(patterns, info.Name()) {
				found[path] = true
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to discover reports: %w", err)
		}
	}

	result := make([]string, 0, len(found))
	for path := range found {
		result = append(result, path)
	}
	sort.Strings(result)

	return result, nil
}

func matches(patterns []string, name string) bool {
	for _, pattern := range patterns {
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
	}
	return false
}
