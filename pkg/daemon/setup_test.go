package daemon_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bulkfsv1 "github.com/jamesainslie/bulkfs/pkg/api/bulkfs/v1"
	"github.com/jamesainslie/bulkfs/pkg/bulkfs/config"
	"github.com/jamesainslie/bulkfs/pkg/bulkfs/engine"
	"github.com/jamesainslie/bulkfs/pkg/bulkfs/journal"
	"github.com/jamesainslie/bulkfs/pkg/daemon"
)

func TestNewServiceFromConfig(t *testing.T) {
	base := t.TempDir()
	mkTree(t, base, "IMG_1.jpg", "sub/")

	cfg := config.Default()
	cfg.BaseDir = base
	cfg.Journal.Path = filepath.Join(t.TempDir(), "journal")

	svc, err := daemon.NewServiceFromConfig(cfg, "1.2.3")
	require.NoError(t, err)

	ctx := context.Background()
	st, err := svc.Status(ctx, &bulkfsv1.StatusRequest{})
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", st.Version)
	assert.Equal(t, base, st.BaseDir)

	snap, err := svc.List(ctx, &bulkfsv1.ListRequest{Path: "~"})
	require.NoError(t, err)
	assert.True(t, snap.Exists)
	assert.Len(t, snap.Entries, 2)

	summary, err := svc.RenameBulk(ctx, &engine.RenameRequest{RootPath: "~", FindText: "IMG_", ReplaceText: "photo-"})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Count("renamed"))
	assert.FileExists(t, filepath.Join(base, "photo-1.jpg"))

	j, err := journal.New(cfg.Journal.Path)
	require.NoError(t, err)
	entries, err := j.List(0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestNewServiceFromConfigJournalDisabled(t *testing.T) {
	base := t.TempDir()
	mkTree(t, base, "a.txt")

	cfg := config.Default()
	cfg.BaseDir = base
	cfg.Journal.Enabled = false
	cfg.Journal.Path = filepath.Join(t.TempDir(), "journal")

	svc, err := daemon.NewServiceFromConfig(cfg, "dev")
	require.NoError(t, err)

	_, err = svc.RenameBulk(context.Background(), &engine.RenameRequest{RootPath: base, FindText: "a", ReplaceText: "b"})
	require.NoError(t, err)
	assert.NoDirExists(t, cfg.Journal.Path)
}
