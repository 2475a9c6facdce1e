package oplock

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquire_Exclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "bulkfs.lock")

	first, err := Acquire(path)
	require.NoError(t, err)
	assert.Equal(t, path, first.Path())

	_, err = Acquire(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBusy))

	require.NoError(t, first.Release())

	again, err := Acquire(path)
	require.NoError(t, err)
	require.NoError(t, again.Release())
}

func TestAcquire_UnwritableDirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	first, err := Acquire(file)
	require.NoError(t, err)
	defer first.Release()

	// A path below a regular file cannot be created.
	_, err = Acquire(filepath.Join(file, "sub", "bulkfs.lock"))
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrBusy))
}
