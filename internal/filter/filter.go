// Package filter selects the files of a directory tree by include/exclude globs.
package filter

import (
	"fmt"
)

// Filter selects files by their slash-separated path relative to the tree root.
// Without includes every file is selected. Excludes always win.
type Filter struct {
	includes []pattern
	excludes []pattern
}

// New compiles include/exclude patterns into a reusable filter.
func New(includes, excludes []string) (*Filter, error) {
	inc, err := compileAll(includes)
	if err != nil {
		return nil, fmt.Errorf("compiling include patterns: %w", err)
	}

	exc, err := compileAll(excludes)
	if err != nil {
		return nil, fmt.Errorf("compiling exclude patterns: %w", err)
	}

	return &Filter{includes: inc, excludes: exc}, nil
}

// Patterns merges CLI patterns with those read from the optional JSONC pattern files.
// The inputs are not modified.
func Patterns(includes, excludes []string, includeFrom, excludeFrom string) (inc, exc []string, err error) {
	inc = append([]string{}, includes...)
	exc = append([]string{}, excludes...)

	if includeFrom != "" {
		patterns, err := LoadPatterns(includeFrom)
		if err != nil {
			return nil, nil, fmt.Errorf("loading include patterns: %w", err)
		}

		inc = append(inc, patterns...)
	}

	if excludeFrom != "" {
		patterns, err := LoadPatterns(excludeFrom)
		if err != nil {
			return nil, nil, fmt.Errorf("loading exclude patterns: %w", err)
		}

		exc = append(exc, patterns...)
	}

	return inc, exc, nil
}

// Load compiles the patterns merged by Patterns. It returns nil when no pattern is given at all.
func Load(includes, excludes []string, includeFrom, excludeFrom string) (*Filter, error) {
	includes, excludes, err := Patterns(includes, excludes, includeFrom, excludeFrom)
	if err != nil {
		return nil, err
	}

	if len(includes) == 0 && len(excludes) == 0 {
		return nil, nil //nolint:nilnil // no filtering requested
	}

	return New(includes, excludes)
}

// Match reports whether the relative path should be processed.
// A nil filter matches everything.
func (f *Filter) Match(rel string) bool {
	if f == nil {
		return true
	}

	included := len(f.includes) == 0 || matchAny(f.includes, rel)

	return included && !matchAny(f.excludes, rel)
}

// String summarizes the filter for log output.
func (f *Filter) String() string {
	return fmt.Sprintf("%d include(s), %d exclude(s)", len(f.includes), len(f.excludes))
}

func compileAll(globs []string) ([]pattern, error) {
	patterns := make([]pattern, 0, len(globs))

	for _, glob := range globs {
		p, err := compilePattern(glob)
		if err != nil {
			return nil, err
		}

		patterns = append(patterns, p)
	}

	return patterns, nil
}

func matchAny(patterns []pattern, rel string) bool {
	for _, p := range patterns {
		if p.match(rel) {
			return true
		}
	}

	return false
}
