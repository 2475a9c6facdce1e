package trash

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jamesainslie/bulkfs/pkg/bulkfs/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ engine.Remover = (*Trasher)(nil)

type recorder struct {
	calls [][]string
	fail  map[string]bool
}

func (r *recorder) run(_ context.Context, name string, args ...string) error {
	r.calls = append(r.calls, append([]string{name}, args...))
	if r.fail[name] {
		return errors.New("exit status 1")
	}
	return nil
}

func lookPathFor(available ...string) func(string) (string, error) {
	return func(name string) (string, error) {
		for _, a := range available {
			if a == name {
				return "/usr/bin/" + name, nil
			}
		}
		return "", errors.New(name + ": executable file not found in $PATH")
	}
}

func writeFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("test"), 0o644))
	return path
}

func TestRemove_MacOSUsesFinder(t *testing.T) {
	path := writeFile(t, t.TempDir(), "note.txt")
	rec := &recorder{}

	tr := New(WithGOOS("darwin"), WithRunner(rec.run))
	require.NoError(t, tr.Remove(path, false))

	require.Len(t, rec.calls, 1)
	assert.Equal(t, "osascript", rec.calls[0][0])
	assert.True(t, strings.Contains(rec.calls[0][2], path))
	// The recorder does not actually trash anything.
	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestRemove_LinuxPrefersGio(t *testing.T) {
	path := writeFile(t, t.TempDir(), "note.txt")
	rec := &recorder{}

	tr := New(WithGOOS("linux"), WithRunner(rec.run), WithLookPath(lookPathFor("gio", "trash-put")))
	require.NoError(t, tr.Remove(path, false))

	assert.Equal(t, [][]string{{"/usr/bin/gio", "trash", path}}, rec.calls)
}

func TestRemove_LinuxFallsBackToTrashPut(t *testing.T) {
	path := writeFile(t, t.TempDir(), "note.txt")
	rec := &recorder{fail: map[string]bool{"/usr/bin/gio": true}}

	tr := New(WithGOOS("linux"), WithRunner(rec.run), WithLookPath(lookPathFor("gio", "trash-put")))
	require.NoError(t, tr.Remove(path, false))

	assert.Equal(t, [][]string{
		{"/usr/bin/gio", "trash", path},
		{"/usr/bin/trash-put", path},
	}, rec.calls)
}

func TestRemove_NoTrashDeletesPermanently(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "note.txt")
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.MkdirAll(filepath.Join(sub, "deep"), 0o755))
	writeFile(t, sub, "inner.txt")

	rec := &recorder{}
	tr := New(WithGOOS("linux"), WithRunner(rec.run), WithLookPath(lookPathFor()))

	require.NoError(t, tr.Remove(file, false))
	require.NoError(t, tr.Remove(sub, true))

	assert.Empty(t, rec.calls)
	for _, p := range []string{file, sub} {
		_, err := os.Stat(p)
		assert.True(t, os.IsNotExist(err))
	}
}

func TestRemove_UnsupportedPlatform(t *testing.T) {
	path := writeFile(t, t.TempDir(), "note.txt")
	rec := &recorder{}

	tr := New(WithGOOS("plan9"), WithRunner(rec.run))
	require.NoError(t, tr.Remove(path, false))

	assert.Empty(t, rec.calls)
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestRemove_MacOSFailureFallsBack(t *testing.T) {
	path := writeFile(t, t.TempDir(), "note.txt")
	rec := &recorder{fail: map[string]bool{"osascript": true}}

	tr := New(WithGOOS("darwin"), WithRunner(rec.run))
	require.NoError(t, tr.Remove(path, false))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestRemove_Nonexistent(t *testing.T) {
	rec := &recorder{}
	tr := New(WithGOOS("linux"), WithRunner(rec.run))

	err := tr.Remove(filepath.Join(t.TempDir(), "missing.txt"), false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Empty(t, rec.calls)
}

func TestRemove_AsEngineRemover(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "temp.txt")
	writeFile(t, root, "keep.txt")

	rec := &recorder{}
	tr := New(WithGOOS("darwin"), WithRunner(rec.run))

	eng, err := engine.New(engine.WithRemover(tr))
	require.NoError(t, err)

	res := eng.DeleteBulk(engine.DeleteRequest{RootPath: root, Keyword: "temp"})
	require.Empty(t, res.Error)
	assert.Equal(t, 1, res.Deleted)
	require.Len(t, rec.calls, 1)
	assert.Contains(t, rec.calls[0][2], filepath.Join(root, "temp.txt"))
}
