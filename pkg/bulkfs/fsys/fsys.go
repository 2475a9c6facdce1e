// Package fsys defines the filesystem primitives the bulk engines consume and
// an implementation backed by afero.
package fsys

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Entry is a child discovered while listing a directory.
// Entries are created fresh on every listing and never cached.
type Entry struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	IsDir bool   `json:"is_dir"`
}

// Info is the subset of stat data the engines need.
type Info struct {
	IsDir bool
}

// FS is the set of filesystem operations used by the walker and engines.
// Every method reports failure as an error; none of them panic or return partial data.
type FS interface {
	// ListChildren returns the immediate children of dir in lexical order.
	ListChildren(dir string) ([]Entry, error)

	// Stat follows symlinks. Missing paths satisfy errors.Is(err, fs.ErrNotExist).
	Stat(path string) (Info, error)

	// Exists reports whether anything, including a dangling symlink, occupies path.
	Exists(path string) (bool, error)

	// SameFile reports whether a and b name the same underlying file.
	SameFile(a, b string) bool

	Rename(from, to string) error
	RemoveFile(path string) error
	RemoveAll(path string) error
}

// Afero adapts an afero.Fs to FS.
type Afero struct {
	fs afero.Fs
}

// New wraps an afero filesystem.
func New(fs afero.Fs) *Afero {
	return &Afero{fs: fs}
}

// OS returns an FS backed by the real operating system filesystem.
func OS() *Afero {
	return New(afero.NewOsFs())
}

// Afero returns the wrapped afero filesystem.
func (a *Afero) Afero() afero.Fs {
	return a.fs
}

// ListChildren lists dir. Symbolic links are reported as non-directories.
func (a *Afero) ListChildren(dir string) ([]Entry, error) {
	infos, err := afero.ReadDir(a.fs, dir)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, Entry{
			Name:  info.Name(),
			Path:  filepath.Join(dir, info.Name()),
			IsDir: info.IsDir(),
		})
	}
	return entries, nil
}

// Stat returns type information for path.
func (a *Afero) Stat(path string) (Info, error) {
	info, err := a.fs.Stat(path)
	if err != nil {
		return Info{}, err
	}
	return Info{IsDir: info.IsDir()}, nil
}

// Exists checks path without following a final symlink.
func (a *Afero) Exists(path string) (bool, error) {
	_, err := a.lstat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("checking %s: %w", path, err)
}

// SameFile compares the identity of two paths.
func (a *Afero) SameFile(x, y string) bool {
	xi, err := a.lstat(x)
	if err != nil {
		return false
	}
	yi, err := a.lstat(y)
	if err != nil {
		return false
	}
	return os.SameFile(xi, yi)
}

// Rename moves from to to.
func (a *Afero) Rename(from, to string) error {
	return a.fs.Rename(from, to)
}

// RemoveFile removes a single non-directory entry.
func (a *Afero) RemoveFile(path string) error {
	return a.fs.Remove(path)
}

// RemoveAll removes path and everything below it.
func (a *Afero) RemoveAll(path string) error {
	return a.fs.RemoveAll(path)
}

func (a *Afero) lstat(path string) (os.FileInfo, error) {
	if l, ok := a.fs.(afero.Lstater); ok {
		info, _, err := l.LstatIfPossible(path)
		return info, err
	}
	return a.fs.Stat(path)
}

// Ensure Afero implements FS.
var _ FS = (*Afero)(nil)
