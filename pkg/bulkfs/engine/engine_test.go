package engine

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jamesainslie/bulkfs/pkg/bulkfs/fsys"
	"github.com/jamesainslie/bulkfs/pkg/bulkfs/pathutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// faultyFS injects listing and existence-check failures and delegates
// everything else.
type faultyFS struct {
	fsys.FS
	listErr   map[string]error
	existsErr map[string]error
}

func (f faultyFS) ListChildren(dir string) ([]fsys.Entry, error) {
	if err, ok := f.listErr[dir]; ok {
		return nil, err
	}
	return f.FS.ListChildren(dir)
}

func (f faultyFS) Exists(path string) (bool, error) {
	if err, ok := f.existsErr[path]; ok {
		return false, err
	}
	return f.FS.Exists(path)
}

// mkTree creates files under root; a trailing "/" creates a directory.
func mkTree(t *testing.T, root string, paths ...string) {
	t.Helper()
	for _, p := range paths {
		full := filepath.Join(root, filepath.FromSlash(p))
		if strings.HasSuffix(p, "/") {
			require.NoError(t, os.MkdirAll(full, 0o755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte("content of "+p), 0o644))
	}
}

// snapshot maps every path under root to its content; directories map to "/".
func snapshot(t *testing.T, root string) map[string]string {
	t.Helper()
	out := make(map[string]string)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(root, path)
		if d.IsDir() {
			out[filepath.ToSlash(rel)] = "/"
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		out[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	require.NoError(t, err)
	return out
}

func exists(t *testing.T, path string) bool {
	t.Helper()
	_, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false
	}
	require.NoError(t, err)
	return true
}

// newEngine returns an engine whose base and working directory are root.
func newEngine(t *testing.T, root string, opts ...Option) *Engine {
	t.Helper()
	r, err := pathutil.New(root, pathutil.WithWorkingDir(func() (string, error) { return root, nil }))
	require.NoError(t, err)

	eng, err := New(append([]Option{WithResolver(r)}, opts...)...)
	require.NoError(t, err)
	return eng
}

func TestNew_Defaults(t *testing.T) {
	root := t.TempDir()
	eng := newEngine(t, root)

	assert.NotNil(t, eng.FS())
	assert.Equal(t, root, eng.Resolver().Base())
	assert.IsType(t, FSRemover{}, eng.remover)
}

func TestPreconditions(t *testing.T) {
	root := t.TempDir()
	mkTree(t, root, "file.txt", "foo.txt")
	file := filepath.Join(root, "file.txt")
	missing := filepath.Join(root, "missing")

	_, statErr := os.Stat(missing)
	require.Error(t, statErr)

	eng := newEngine(t, root)

	tests := []struct {
		name    string
		rename  RenameRequest
		del     DeleteRequest
		wantRen string
		wantDel string
		// wantRoot defaults to the request root.
		wantRoot string
	}{
		{
			name:    "empty pattern",
			rename:  RenameRequest{RootPath: root},
			del:     DeleteRequest{RootPath: root},
			wantRen: MsgFindTextRequired,
			wantDel: MsgKeywordRequired,
		},
		{
			name:    "whitespace pattern",
			rename:  RenameRequest{RootPath: root, FindText: " \t", ReplaceText: "x"},
			del:     DeleteRequest{RootPath: root, Keyword: "  "},
			wantRen: MsgFindTextRequired,
			wantDel: MsgKeywordRequired,
		},
		{
			name:     "blank pattern with relative root",
			rename:   RenameRequest{RootPath: "rel", FindText: " "},
			del:      DeleteRequest{RootPath: "rel", Keyword: " "},
			wantRen:  MsgFindTextRequired,
			wantDel:  MsgKeywordRequired,
			wantRoot: filepath.Join(root, "rel"),
		},
		{
			name:    "missing root",
			rename:  RenameRequest{RootPath: missing, FindText: "foo", ReplaceText: "bar"},
			del:     DeleteRequest{RootPath: missing, Keyword: "foo"},
			wantRen: statErr.Error(),
			wantDel: statErr.Error(),
		},
		{
			name:    "root is a file",
			rename:  RenameRequest{RootPath: file, FindText: "foo", ReplaceText: "bar"},
			del:     DeleteRequest{RootPath: file, Keyword: "foo"},
			wantRen: MsgRootNotDir,
			wantDel: MsgRootNotDir,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := snapshot(t, root)

			wantRoot := tt.wantRoot
			if wantRoot == "" {
				wantRoot = tt.rename.RootPath
			}

			ren := eng.RenameBulk(tt.rename)
			assert.Equal(t, tt.wantRen, ren.Error)
			assert.Equal(t, wantRoot, ren.Root)
			assert.True(t, filepath.IsAbs(ren.Root), "root %q not resolved", ren.Root)
			assert.Zero(t, ren.Renamed+ren.Skipped+ren.Failed)
			assert.NotNil(t, ren.Details)
			assert.Empty(t, ren.Details)
			assert.False(t, ren.OK())

			del := eng.DeleteBulk(tt.del)
			assert.Equal(t, tt.wantDel, del.Error)
			assert.Equal(t, wantRoot, del.Root)
			assert.Zero(t, del.Matched+del.Deleted+del.Failed)
			assert.NotNil(t, del.Details)
			assert.Empty(t, del.Details)
			assert.False(t, del.OK())

			assert.Equal(t, before, snapshot(t, root))
		})
	}
}

func TestRootPathResolution(t *testing.T) {
	root := t.TempDir()
	mkTree(t, root, "sub/foo.txt")

	eng := newEngine(t, root)

	tests := []struct {
		input string
		want  string
	}{
		{"", root},
		{"~", root},
		{"~/sub", filepath.Join(root, "sub")},
		{"sub", filepath.Join(root, "sub")},
		{filepath.Join(root, "sub", ".."), root},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			res := eng.RenameBulk(RenameRequest{RootPath: tt.input, FindText: "zzz", ReplaceText: "y", DryRun: true})
			require.Empty(t, res.Error)
			assert.Equal(t, tt.want, res.Root)

			del := eng.DeleteBulk(DeleteRequest{RootPath: tt.input, Keyword: "zzz", DryRun: true})
			require.Empty(t, del.Error)
			assert.Equal(t, tt.want, del.Root)
		})
	}
}

func TestAggregate(t *testing.T) {
	agg := NewAggregate[string]()
	assert.NotNil(t, agg.Details())
	assert.Empty(t, agg.Details())

	agg.Add(CounterSkipped)
	agg.Add(CounterSkipped)
	agg.Record("a", CounterRenamed)
	agg.Record("b", CounterMatched, CounterFailed)
	agg.Record("c")

	assert.Equal(t, 2, agg.Count(CounterSkipped))
	assert.Equal(t, 1, agg.Count(CounterRenamed))
	assert.Equal(t, 1, agg.Count(CounterMatched))
	assert.Equal(t, 1, agg.Count(CounterFailed))
	assert.Equal(t, 0, agg.Count(CounterDeleted))
	assert.Equal(t, []string{"a", "b", "c"}, agg.Details())
}

func TestFSRemover(t *testing.T) {
	root := t.TempDir()
	mkTree(t, root, "f.txt", "d/inner/x.txt")

	r := FSRemover{FS: fsys.OS()}
	require.NoError(t, r.Remove(filepath.Join(root, "f.txt"), false))
	require.NoError(t, r.Remove(filepath.Join(root, "d"), true))

	assert.Equal(t, map[string]string{".": "/"}, snapshot(t, root))
}
