// Package listing produces sorted, filtered snapshots of a single directory.
package listing

import (
	"cmp"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/jamesainslie/bulkfs/pkg/bulkfs/filter"
	"github.com/jamesainslie/bulkfs/pkg/bulkfs/pathutil"
	"github.com/spf13/afero"
)

// MsgNotDir is the snapshot error for a path that is not a directory.
const MsgNotDir = "Target path is not a directory"

// Entry is one listed child.
type Entry struct {
	Name    string    `json:"name" yaml:"name"`
	Path    string    `json:"path" yaml:"path"`
	IsDir   bool      `json:"is_dir" yaml:"is_dir"`
	Size    int64     `json:"size" yaml:"size"`
	ModTime time.Time `json:"modified" yaml:"modified"`
}

// Snapshot is the state of a directory at the time it was listed.
// A path that cannot be listed yields Exists false and an Error message.
type Snapshot struct {
	Path    string  `json:"path" yaml:"path"`
	Entries []Entry `json:"entries" yaml:"entries"`
	Exists  bool    `json:"exists" yaml:"exists"`
	Error   string  `json:"error,omitempty" yaml:"error,omitempty"`
}

// Options control filtering and order.
type Options struct {
	Filter     *filter.Filter
	SortBy     filter.SortField
	Descending bool
}

// Lister lists directories on a filesystem.
type Lister struct {
	fs       afero.Fs
	resolver *pathutil.Resolver
}

// New creates a Lister.
func New(fs afero.Fs, resolver *pathutil.Resolver) *Lister {
	return &Lister{fs: fs, resolver: resolver}
}

// List resolves input and lists it. The error is non-nil only when input
// cannot be resolved; filesystem problems are reported in the snapshot.
func (l *Lister) List(input string, opts Options) (*Snapshot, error) {
	path, err := l.resolver.Resolve(input)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{Path: path, Entries: []Entry{}}

	info, err := l.fs.Stat(path)
	if err != nil {
		snap.Error = err.Error()
		return snap, nil
	}
	if !info.IsDir() {
		snap.Error = MsgNotDir
		return snap, nil
	}

	infos, err := afero.ReadDir(l.fs, path)
	if err != nil {
		snap.Error = err.Error()
		return snap, nil
	}

	for _, fi := range infos {
		entryPath := filepath.Join(path, fi.Name())
		if !opts.Filter.Keep(entryPath) {
			continue
		}
		e := Entry{
			Name:    fi.Name(),
			Path:    entryPath,
			IsDir:   fi.IsDir(),
			ModTime: fi.ModTime(),
		}
		if !e.IsDir {
			e.Size = fi.Size()
		}
		snap.Entries = append(snap.Entries, e)
	}

	Sort(snap.Entries, opts.SortBy, opts.Descending)
	snap.Exists = true
	return snap, nil
}

// Sort orders entries in place: directories first, then by field.
// Descending reverses the order within each group. Ties fall back to name.
func Sort(entries []Entry, by filter.SortField, descending bool) {
	slices.SortStableFunc(entries, func(a, b Entry) int {
		if a.IsDir != b.IsDir {
			if a.IsDir {
				return -1
			}
			return 1
		}

		var c int
		switch by {
		case filter.SortSize:
			c = cmp.Compare(a.Size, b.Size)
		case filter.SortModified:
			c = a.ModTime.Compare(b.ModTime)
		}
		if c == 0 {
			c = compareNames(a.Name, b.Name)
		}
		if descending {
			return -c
		}
		return c
	})
}

// compareNames orders case-insensitively, breaking ties by exact name.
func compareNames(a, b string) int {
	if c := strings.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}
