package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/bulkfs/cmd/bulkfs/tui"
	"github.com/jamesainslie/bulkfs/pkg/bulkfs/config"
	"github.com/jamesainslie/bulkfs/pkg/bulkfs/engine"
	"github.com/jamesainslie/bulkfs/pkg/bulkfs/oplock"
	"github.com/jamesainslie/bulkfs/pkg/bulkfs/output"
)

// confirm shows the interactive preview. Tests replace it.
var confirm = tui.Confirm

// lockPath is the operation lock shared by all bulkfs processes.
var lockPath = config.DefaultLockPath

// stdinIsTerminal reports whether the confirmation screen can read keys.
var stdinIsTerminal = func() bool {
	return output.IsTerminal(os.Stdin)
}

// runFunc executes one rename or delete against b.
type runFunc func(ctx context.Context, b backend, dryRun bool) (*engine.Summary, error)

// mutation describes a rename or delete invocation.
type mutation struct {
	action      string
	dryRun      bool
	interactive bool
	run         runFunc
}

// runMutation holds the operation lock, optionally confirms a dry-run
// preview, executes the operation and prints its summary.
func runMutation(cmd *cobra.Command, m mutation) error {
	ctx := cmd.Context()

	if m.interactive && !m.dryRun && !stdinIsTerminal() {
		return errors.New("--interactive needs a terminal")
	}

	lock, err := oplock.Acquire(lockPath())
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			cliLog.Warn("failed to release operation lock", "error", err)
		}
	}()

	b, err := openBackend(ctx, appCfg)
	if err != nil {
		return err
	}
	defer b.Close()

	if m.interactive && !m.dryRun {
		preview, err := m.run(ctx, b, true)
		if err != nil {
			return err
		}
		if preview.Error != "" || len(preview.Details) == 0 {
			return printSummary(cmd, preview)
		}

		ok, err := confirm(tui.Options{Preview: preview, Action: m.action})
		if err != nil {
			return fmt.Errorf("confirmation failed: %w", err)
		}
		if !ok {
			printInfo("Cancelled, nothing was changed.")
			return nil
		}
	}

	summary, err := m.run(ctx, b, m.dryRun)
	if err != nil {
		return err
	}
	return printSummary(cmd, summary)
}

// printSummary renders s and converts its outcome to an exit status. In
// quiet mode a fully successful summary prints nothing.
func printSummary(cmd *cobra.Command, s *engine.Summary) error {
	if !quiet || s.Failed() {
		if err := render(cmd, output.FromSummary(s)); err != nil {
			return err
		}
	}
	return summaryExit(s)
}

// rootArg returns the path argument at index i, defaulting to the current
// directory, resolved to an absolute path.
func rootArg(args []string, i int) (string, error) {
	path := "."
	if len(args) > i {
		path = args[i]
	}
	return resolvePath(appCfg, path)
}

// boolFlagOr returns the flag value when it was set explicitly, otherwise
// the configured default.
func boolFlagOr(cmd *cobra.Command, name string, value, configured bool) bool {
	if cmd.Flags().Changed(name) {
		return value
	}
	return configured
}
