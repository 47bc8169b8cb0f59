// Package pathfilter decides which paths of a repository are noise.
package pathfilter

import (
	"runtime"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/firefly-engineering/repolens/internal/catalog"
)

// Filter matches path segments against ignore rules. It is immutable and
// safe for concurrent use.
type Filter struct {
	dirRules  []catalog.IgnoreRule
	fileRules []catalog.IgnoreRule
	fold      bool
}

// Option configures a Filter.
type Option func(*Filter)

// WithRules appends rules after the catalog's own rules.
func WithRules(rules ...catalog.IgnoreRule) Option {
	return func(f *Filter) {
		f.addRules(rules)
	}
}

// WithCaseFold overrides the platform default for case-insensitive matching.
func WithCaseFold(fold bool) Option {
	return func(f *Filter) {
		f.fold = fold
	}
}

// New creates a filter from the catalog's ignore rules.
func New(c *catalog.Catalog, opts ...Option) *Filter {
	f := &Filter{
		fold: runtime.GOOS == "darwin" || runtime.GOOS == "windows",
	}
	f.addRules(c.IgnoreRules())
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Filter) addRules(rules []catalog.IgnoreRule) {
	for _, r := range rules {
		switch r.Kind {
		case catalog.KindDir:
			f.dirRules = append(f.dirRules, r)
		case catalog.KindFile:
			f.fileRules = append(f.fileRules, r)
		}
	}
}

// ShouldIgnore reports whether the slash-separated, root-relative path rel
// is ignored and which rule matched. Directory rules are tried against every
// directory segment in order, file rules against the last segment of a file.
func (f *Filter) ShouldIgnore(rel string, isDir bool) (catalog.IgnoreRule, bool) {
	if rel == "" || rel == "." {
		return catalog.IgnoreRule{}, false
	}

	segments := strings.Split(rel, "/")
	dirs := segments
	if !isDir {
		dirs = segments[:len(segments)-1]
	}

	for _, seg := range dirs {
		if r, ok := f.match(f.dirRules, seg); ok {
			return r, true
		}
	}
	if !isDir {
		if r, ok := f.match(f.fileRules, segments[len(segments)-1]); ok {
			return r, true
		}
	}
	return catalog.IgnoreRule{}, false
}

func (f *Filter) match(rules []catalog.IgnoreRule, segment string) (catalog.IgnoreRule, bool) {
	if f.fold {
		segment = strings.ToLower(segment)
	}
	for _, r := range rules {
		pattern := r.Pattern
		if f.fold {
			pattern = strings.ToLower(pattern)
		}
		if ok, _ := doublestar.Match(pattern, segment); ok {
			return r, true
		}
	}
	return catalog.IgnoreRule{}, false
}
