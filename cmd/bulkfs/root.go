package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/bulkfs/pkg/bulkfs/config"
	"github.com/jamesainslie/bulkfs/pkg/bulkfs/engine"
	"github.com/jamesainslie/bulkfs/pkg/bulkfs/logging"
)

var cliLog = logging.Get("cli")

// Exit codes.
const (
	exitFailure = 1
	exitPartial = 2
)

var (
	cfgFile      string
	outputFormat string
	templateStr  string
	quiet        bool
	verbose      bool
	noDaemon     bool

	// appCfg is loaded by initializeLogging before any command runs.
	appCfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "bulkfs",
		Short: "Bulk rename and delete files by name",
		Long: `bulkfs renames and deletes files and directories in bulk, matching on names.

Renames replace the first occurrence of the find text in each name. Deletes
remove every entry whose name contains the keyword. Both can preview their
effect with --dry-run, or show the preview and ask first with --interactive.

When the bulkfsd daemon is running, operations are sent to it; otherwise they
run in-process.

Examples:
  bulkfs rename IMG_ trip_ ~/Pictures -r -d   # Preview a recursive rename
  bulkfs delete .DS_Store . -r                # Delete every .DS_Store below .
  bulkfs delete cache ~/proj -r --trash -i    # Confirm, then move to trash
  bulkfs ls ~/Downloads --sort size --reverse # List a directory
  bulkfs search invoice ~/Documents           # Find names containing "invoice"
  bulkfs history                              # Review completed operations`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: initializeLogging,
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = logging.Close()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/bulkfs/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "", "output format: pretty, plain, json, jsonl, yaml, tsv, csv, markdown, template, paths, null")
	rootCmd.PersistentFlags().StringVar(&templateStr, "template", "", "Go template for -o template")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "minimal output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug output")
	rootCmd.PersistentFlags().BoolVar(&noDaemon, "no-daemon", false, "run in-process even if bulkfsd is running")
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command
// context; an operation already in progress still runs to completion.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// exitError carries the exit status of a command whose outcome has already
// been printed.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// exitCode prints err unless it is an exitError and maps it to a process
// exit status.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	printError("%v", err)
	return exitFailure
}

// summaryExit reports 1 when the operation could not start and 2 when some
// entries failed.
func summaryExit(s *engine.Summary) error {
	switch {
	case s.Error != "":
		return &exitError{code: exitFailure}
	case s.Count(string(engine.CounterFailed)) > 0:
		return &exitError{code: exitPartial}
	}
	return nil
}

// printVerbose prints a message if verbose mode is enabled.
func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}

// printInfo prints a message if quiet mode is not enabled.
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Printf(format+"\n", args...)
	}
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
