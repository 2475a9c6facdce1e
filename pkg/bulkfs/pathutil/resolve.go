// Package pathutil turns user-supplied path strings into absolute filesystem paths.
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Resolver normalises possibly-relative, possibly ~-prefixed paths.
// Resolution is purely syntactic; it never checks that the result exists.
type Resolver struct {
	base string
	wd   func() (string, error)
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithWorkingDir overrides how the working directory is obtained for relative paths.
func WithWorkingDir(fn func() (string, error)) Option {
	return func(r *Resolver) {
		r.wd = fn
	}
}

// New creates a Resolver anchored at base. An empty base means the user's home directory.
func New(base string, opts ...Option) (*Resolver, error) {
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		base = home
	}

	r := &Resolver{wd: os.Getwd}
	for _, opt := range opts {
		opt(r)
	}

	abs, err := r.absolute(base)
	if err != nil {
		return nil, fmt.Errorf("resolving base directory: %w", err)
	}
	r.base = abs

	return r, nil
}

// Base returns the absolute base directory.
func (r *Resolver) Base() string {
	return r.base
}

// Resolve returns the absolute form of input.
//
//   - "" resolves to the base directory.
//   - "~", "~/rest" and "~\rest" replace the tilde prefix with the base directory.
//   - anything else is cleaned and, if relative, anchored at the working directory.
func (r *Resolver) Resolve(input string) (string, error) {
	if input == "" {
		return r.base, nil
	}

	if input == "~" || strings.HasPrefix(input, "~/") || strings.HasPrefix(input, `~\`) {
		rest := ""
		if len(input) > 2 {
			rest = input[2:]
		}
		return filepath.Join(r.base, rest), nil
	}

	return r.absolute(input)
}

func (r *Resolver) absolute(p string) (string, error) {
	if filepath.IsAbs(p) {
		return filepath.Clean(p), nil
	}

	wd, err := r.wd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}
	return filepath.Join(wd, p), nil
}
