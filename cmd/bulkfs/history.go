package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/bulkfs/pkg/bulkfs/config"
	"github.com/jamesainslie/bulkfs/pkg/bulkfs/journal"
	"github.com/jamesainslie/bulkfs/pkg/bulkfs/output"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View operation history",
	Long: `View completed rename and delete operations.

Every live (non dry-run) operation is recorded in the journal with its
parameters and outcome, whether it ran in-process or in the daemon.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show details of a specific operation",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove entries older than the retention period",
	Args:  cobra.NoArgs,
	RunE:  runHistoryClean,
}

var historyLimit int

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "maximum number of entries to show (0 for all)")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyCleanCmd)
	rootCmd.AddCommand(historyCmd)
}

// openJournal opens the configured journal directory.
func openJournal() (*journal.Journal, error) {
	j, err := journal.New(appCfg.JournalDir())
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	return j, nil
}

func runHistory(cmd *cobra.Command, _ []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}

	entries, err := j.List(historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}
	return render(cmd, output.FromHistory(entries, time.Now()))
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}

	entry, err := j.Get(args[0])
	if errors.Is(err, journal.ErrNotFound) {
		return fmt.Errorf("no history entry %q (see 'bulkfs history')", args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to read history entry: %w", err)
	}
	return render(cmd, output.FromEntry(entry))
}

func runHistoryClean(_ *cobra.Command, _ []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}

	days := appCfg.Journal.RetentionDays
	if days <= 0 {
		days = config.DefaultRetentionDays
	}

	removed, err := j.Cleanup(days)
	if err != nil {
		return fmt.Errorf("failed to clean history: %w", err)
	}
	printInfo("Removed %d history entries older than %d days.", removed, days)
	return nil
}
