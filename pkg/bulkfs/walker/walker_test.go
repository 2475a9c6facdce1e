package walker

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jamesainslie/bulkfs/pkg/bulkfs/fsys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// brokenFS fails to list the directories in deny and delegates everything else.
type brokenFS struct {
	fsys.FS
	deny map[string]error
}

func (b brokenFS) ListChildren(dir string) ([]fsys.Entry, error) {
	if err, ok := b.deny[dir]; ok {
		return nil, err
	}
	return b.FS.ListChildren(dir)
}

func mkTree(t *testing.T, root string, paths ...string) {
	t.Helper()
	for _, p := range paths {
		full := filepath.Join(root, filepath.FromSlash(p))
		if p[len(p)-1] == '/' {
			require.NoError(t, os.MkdirAll(full, 0o755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(p), 0o644))
	}
}

// walkAll descends into every directory child and returns visited dirs relative to root.
func walkAll(w *Walker, root string) []string {
	var visited []string
	for v := range w.Visits() {
		rel, _ := filepath.Rel(root, v.Dir)
		visited = append(visited, filepath.ToSlash(rel))
		for _, c := range v.Children {
			if c.IsDir {
				w.Descend(c.Path)
			}
		}
	}
	return visited
}

func TestWalker_BreadthFirstOrder(t *testing.T) {
	root := t.TempDir()
	mkTree(t, root,
		"a/deep/deeper/f.txt",
		"a/x.txt",
		"b/y.txt",
		"c.txt",
	)

	w := New(fsys.OS(), root, true)
	visited := walkAll(w, root)

	assert.Equal(t, []string{".", "a", "b", "a/deep", "a/deep/deeper"}, visited)

	stats := w.Stats()
	assert.Equal(t, 5, stats.DirsVisited)
	assert.Equal(t, 0, stats.DirsFailed)
	assert.Equal(t, 8, stats.EntriesSeen)
	assert.Equal(t, 0, w.Pending())
}

func TestWalker_NonRecursiveVisitsRootOnly(t *testing.T) {
	root := t.TempDir()
	mkTree(t, root, "a/f.txt", "b/")

	w := New(fsys.OS(), root, false)
	assert.False(t, w.Recursive())

	visited := walkAll(w, root)
	assert.Equal(t, []string{"."}, visited)
}

func TestWalker_DescendAtMostOnce(t *testing.T) {
	root := t.TempDir()
	mkTree(t, root, "a/")

	w := New(fsys.OS(), root, true)
	sub := filepath.Join(root, "a")

	assert.True(t, w.Descend(sub))
	assert.False(t, w.Descend(sub))
	assert.False(t, w.Descend(root), "root is already enqueued")
	assert.Equal(t, 2, w.Pending())
}

func TestWalker_ListingFailureDoesNotAbort(t *testing.T) {
	root := t.TempDir()
	mkTree(t, root, "locked/secret.txt", "open/file.txt")

	locked := filepath.Join(root, "locked")
	fs := brokenFS{FS: fsys.OS(), deny: map[string]error{locked: os.ErrPermission}}

	w := New(fs, root, true)

	var failed []Visit
	var listed []string
	for v := range w.Visits() {
		if v.Err != nil {
			failed = append(failed, v)
			continue
		}
		listed = append(listed, v.Dir)
		for _, c := range v.Children {
			if c.IsDir {
				w.Descend(c.Path)
			}
		}
	}

	require.Len(t, failed, 1)
	assert.Equal(t, locked, failed[0].Dir)
	assert.True(t, errors.Is(failed[0].Err, os.ErrPermission))
	assert.Nil(t, failed[0].Children)
	assert.Equal(t, []string{root, filepath.Join(root, "open")}, listed)
	assert.Equal(t, 1, w.Stats().DirsFailed)
}

func TestWalker_DirectoryReplacedBeforeVisit(t *testing.T) {
	root := t.TempDir()
	mkTree(t, root, "sub/")

	w := New(fsys.OS(), root, true)

	v, ok := w.Next()
	require.True(t, ok)
	require.Len(t, v.Children, 1)
	require.True(t, w.Descend(v.Children[0].Path))

	// The directory turns into a file between discovery and visitation.
	sub := filepath.Join(root, "sub")
	require.NoError(t, os.Remove(sub))
	require.NoError(t, os.WriteFile(sub, nil, 0o644))

	v, ok = w.Next()
	require.True(t, ok)
	assert.Equal(t, sub, v.Dir)
	assert.Error(t, v.Err)

	_, ok = w.Next()
	assert.False(t, ok)
}

func TestWalker_StopRangingEarly(t *testing.T) {
	root := t.TempDir()
	mkTree(t, root, "a/", "b/")

	w := New(fsys.OS(), root, true)
	for v := range w.Visits() {
		for _, c := range v.Children {
			w.Descend(c.Path)
		}
		break
	}
	assert.Equal(t, 2, w.Pending())
}
