// Package trash moves deleted entries to the system trash where one is
// available, falling back to permanent removal.
package trash

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/jamesainslie/bulkfs/pkg/bulkfs/fsys"
	"github.com/jamesainslie/bulkfs/pkg/bulkfs/logging"
)

var logger = logging.Get("trash")

// commandTimeout bounds each external trash command.
const commandTimeout = 30 * time.Second

// errNoTrash is returned by a platform backend that found no usable tool.
var errNoTrash = errors.New("no trash facility available")

// Runner executes an external command.
type Runner func(ctx context.Context, name string, args ...string) error

func runCommand(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

// Trasher moves entries to the trash. It satisfies engine.Remover.
type Trasher struct {
	fs       fsys.FS
	goos     string
	lookPath func(string) (string, error)
	run      Runner
}

// Option configures a Trasher.
type Option func(*Trasher)

// WithFS sets the filesystem used for the existence check and the
// permanent-removal fallback.
func WithFS(fs fsys.FS) Option {
	return func(t *Trasher) {
		t.fs = fs
	}
}

// WithRunner replaces external command execution.
func WithRunner(r Runner) Option {
	return func(t *Trasher) {
		t.run = r
	}
}

// WithLookPath replaces the executable lookup.
func WithLookPath(fn func(string) (string, error)) Option {
	return func(t *Trasher) {
		t.lookPath = fn
	}
}

// WithGOOS overrides the platform backend selection.
func WithGOOS(goos string) Option {
	return func(t *Trasher) {
		t.goos = goos
	}
}

// New creates a Trasher for the current platform.
func New(opts ...Option) *Trasher {
	t := &Trasher{
		fs:       fsys.OS(),
		goos:     runtime.GOOS,
		lookPath: exec.LookPath,
		run:      runCommand,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Remove moves path to the trash, or deletes it permanently when the
// platform has no trash facility.
// On macOS Finder is asked through osascript; on Linux gio or trash-put is used.
func (t *Trasher) Remove(path string, isDir bool) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("cannot resolve absolute path for %q: %w", path, err)
	}

	ok, err := t.fs.Exists(abs)
	if err != nil {
		return fmt.Errorf("cannot trash %q: %w", path, err)
	}
	if !ok {
		return fmt.Errorf("cannot trash %q: %w", path, os.ErrNotExist)
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	switch t.goos {
	case "darwin":
		err = t.trashMacOS(ctx, abs)
	case "linux":
		err = t.trashLinux(ctx, abs)
	default:
		err = errNoTrash
	}
	if err == nil {
		logger.Debug("moved to trash", "path", abs)
		return nil
	}

	logger.Debug("trash unavailable, deleting permanently", "path", abs, "reason", err)
	return t.fallbackDelete(abs, isDir)
}

// trashMacOS uses Finder so that "Put Back" works.
func (t *Trasher) trashMacOS(ctx context.Context, path string) error {
	script := fmt.Sprintf(`tell application "Finder" to delete POSIX file %q`, path)
	return t.run(ctx, "osascript", "-e", script)
}

func (t *Trasher) trashLinux(ctx context.Context, path string) error {
	if gio, err := t.lookPath("gio"); err == nil {
		if err := t.run(ctx, gio, "trash", path); err == nil {
			return nil
		}
	}
	if put, err := t.lookPath("trash-put"); err == nil {
		if err := t.run(ctx, put, path); err == nil {
			return nil
		}
	}
	return errNoTrash
}

func (t *Trasher) fallbackDelete(path string, isDir bool) error {
	var err error
	if isDir {
		err = t.fs.RemoveAll(path)
	} else {
		err = t.fs.RemoveFile(path)
	}
	if err != nil {
		return fmt.Errorf("failed to delete %q: %w", path, err)
	}
	return nil
}
