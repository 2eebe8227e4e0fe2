// Package ignore decides which discovered paths are dropped before they reach a sink.
package ignore

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
)

// DefaultPatterns drop the cache's own temporary files and common backup suffixes.
var DefaultPatterns = []string{"*.bkp", "*.dtmp", "*.part"}

type Filter interface {
	// Ignored reports whether the file at path must not be emitted.
	Ignored(path string) bool
}

// GlobFilter matches case-insensitive doublestar patterns. A pattern without
// a slash is tested against the file name, any other pattern against the
// whole slash-separated path.
type GlobFilter struct {
	namePatterns []string
	pathPatterns []string
}

var _ Filter = (*GlobFilter)(nil)

func New(patterns []string) (*GlobFilter, error) {
	f := &GlobFilter{}
	for _, p := range patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if !doublestar.ValidatePattern(p) {
			return nil, errors.Errorf("invalid ignore pattern %q", p)
		}
		if strings.Contains(p, "/") {
			f.pathPatterns = append(f.pathPatterns, p)
		} else {
			f.namePatterns = append(f.namePatterns, p)
		}
	}
	return f, nil
}

// Default returns the filter for DefaultPatterns.
func Default() *GlobFilter {
	f, err := New(DefaultPatterns)
	if err != nil {
		panic(err)
	}
	return f
}

func (f *GlobFilter) Ignored(path string) bool {
	if len(f.namePatterns) > 0 {
		name := strings.ToLower(filepath.Base(path))
		for _, p := range f.namePatterns {
			if ok, _ := doublestar.Match(p, name); ok {
				return true
			}
		}
	}

	if len(f.pathPatterns) > 0 {
		slashed := strings.ToLower(filepath.ToSlash(path))
		for _, p := range f.pathPatterns {
			if ok, _ := doublestar.Match(p, slashed); ok {
				return true
			}
		}
	}

	return false
}
