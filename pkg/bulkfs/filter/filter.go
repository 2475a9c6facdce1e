package filter

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// ErrInvalidPattern wraps a glob that failed to compile.
var ErrInvalidPattern = errors.New("invalid exclude pattern")

// Filter holds visibility rules. The zero value keeps everything.
type Filter struct {
	hideHidden     bool
	ignoreSuffixes []string
	exclude        []compiled
}

type compiled struct {
	pattern string
	glob    glob.Glob
	// byName patterns have no separator and are matched against the base name.
	byName bool
}

// Option configures a Filter.
type Option func(*Filter) error

// WithHideHidden drops entries whose name starts with a dot.
func WithHideHidden(hide bool) Option {
	return func(f *Filter) error {
		f.hideHidden = hide
		return nil
	}
}

// WithIgnoreSuffixes drops entries whose name ends with any suffix,
// compared case-insensitively.
func WithIgnoreSuffixes(suffixes ...string) Option {
	return func(f *Filter) error {
		for _, s := range suffixes {
			if s = strings.TrimSpace(s); s != "" {
				f.ignoreSuffixes = append(f.ignoreSuffixes, strings.ToLower(s))
			}
		}
		return nil
	}
}

// WithExclude drops entries matching any glob. A pattern without a "/" is
// matched against the entry name, otherwise against the full path.
func WithExclude(patterns ...string) Option {
	return func(f *Filter) error {
		for _, p := range patterns {
			if strings.TrimSpace(p) == "" {
				continue
			}
			g, err := glob.Compile(p, '/')
			if err != nil {
				return fmt.Errorf("%w %q: %w", ErrInvalidPattern, p, err)
			}
			f.exclude = append(f.exclude, compiled{
				pattern: p,
				glob:    g,
				byName:  !strings.Contains(p, "/"),
			})
		}
		return nil
	}
}

// New builds a Filter. It fails only on an invalid exclude pattern.
func New(opts ...Option) (*Filter, error) {
	f := &Filter{}
	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Keep reports whether the entry at path should be shown.
func (f *Filter) Keep(path string) bool {
	if f == nil {
		return true
	}

	name := filepath.Base(path)

	if f.hideHidden && strings.HasPrefix(name, ".") {
		return false
	}

	if len(f.ignoreSuffixes) > 0 {
		lower := strings.ToLower(name)
		for _, s := range f.ignoreSuffixes {
			if strings.HasSuffix(lower, s) {
				return false
			}
		}
	}

	slashed := filepath.ToSlash(path)
	for _, c := range f.exclude {
		target := slashed
		if c.byName {
			target = name
		}
		if c.glob.Match(target) {
			return false
		}
	}
	return true
}

// Patterns returns the exclude patterns in the order given.
func (f *Filter) Patterns() []string {
	out := make([]string, 0, len(f.exclude))
	for _, c := range f.exclude {
		out = append(out, c.pattern)
	}
	return out
}
