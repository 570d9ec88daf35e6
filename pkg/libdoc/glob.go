package libdoc

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// Expand resolves input arguments to concrete spec file paths.
// Plain paths are passed through after an existence check; patterns support
// single-level (*) and recursive (**) wildcards. Matches of one pattern are
// sorted, patterns keep their argument order, and duplicates are dropped.
func Expand(patterns []string) ([]string, error) {
	var paths []string
	seen := make(map[string]bool)

	add := func(path string) {
		clean := filepath.Clean(path)
		if seen[clean] {
			return
		}
		seen[clean] = true
		paths = append(paths, clean)
	}

	for _, pattern := range patterns {
		if !hasMeta(pattern) {
			info, err := os.Stat(pattern)
			if err != nil {
				return nil, fmt.Errorf("spec not found: %w", err)
			}
			if info.IsDir() {
				return nil, fmt.Errorf("spec path is a directory: %s (use a pattern like '%s')", pattern, filepath.Join(pattern, "*.json"))
			}
			add(pattern)
			continue
		}

		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob error: %w", err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no spec files match pattern: %s", pattern)
		}

		sort.Strings(matches)
		for _, m := range matches {
			add(m)
		}
	}

	return paths, nil
}

// Match reports whether path matches any of the patterns (plain paths match themselves).
func Match(patterns []string, path string) bool {
	clean := filepath.Clean(path)
	for _, pattern := range patterns {
		if !hasMeta(pattern) {
			if filepath.Clean(pattern) == clean {
				return true
			}
			continue
		}
		if ok, err := doublestar.PathMatch(filepath.Clean(pattern), clean); err == nil && ok {
			return true
		}
	}
	return false
}

func hasMeta(pattern string) bool {
	for _, c := range pattern {
		switch c {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}
