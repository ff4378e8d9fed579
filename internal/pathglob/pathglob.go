// Package pathglob matches slash-separated relative paths against glob patterns.
package pathglob

import (
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

type compiledPattern struct {
	pattern string
	glob    glob.Glob
	// rootGlob matches root-level paths for patterns starting with "**/".
	rootGlob glob.Glob
}

// Set is a compiled list of patterns. The zero value matches nothing.
type Set struct {
	patterns []compiledPattern
}

// Compile compiles patterns with '/' as the separator.
func Compile(patterns []string) (*Set, error) {
	s := &Set{}
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, err
		}
		cp := compiledPattern{pattern: pattern, glob: g}

		// "**/*.md" should match both "README.md" and "docs/guide.md", and
		// "**/test/**" should match "test/a.py".
		if strings.HasPrefix(pattern, "**/") {
			rg, err := glob.Compile(strings.TrimPrefix(pattern, "**/"), '/')
			if err != nil {
				return nil, err
			}
			cp.rootGlob = rg
		}
		s.patterns = append(s.patterns, cp)
	}
	return s, nil
}

// MustCompile is like Compile but panics on a malformed pattern.
func MustCompile(patterns []string) *Set {
	s, err := Compile(patterns)
	if err != nil {
		panic(err)
	}
	return s
}

// Match reports whether path matches any pattern. OS separators are normalized.
func (s *Set) Match(path string) bool {
	if s == nil {
		return false
	}
	path = filepath.ToSlash(path)
	for _, cp := range s.patterns {
		if cp.glob.Match(path) {
			return true
		}
		if cp.rootGlob != nil && cp.rootGlob.Match(path) {
			return true
		}
	}
	return false
}

// MatchDir reports whether a directory path is covered by a "dir/**" style pattern.
func (s *Set) MatchDir(dir string) bool {
	return s.Match(strings.TrimSuffix(filepath.ToSlash(dir), "/") + "/**")
}

// Len returns the number of patterns.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.patterns)
}
