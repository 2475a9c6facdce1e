package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/bulkfs/pkg/bulkfs/engine"
)

var renameCmd = &cobra.Command{
	Use:   "rename <find> <replace> [path]",
	Short: "Replace text in file and directory names",
	Long: `Replace the first occurrence of <find> in the name of every entry below
[path] (default: the current directory). <replace> may be empty to strip the
text.

Only names change; entries never move between directories. A rename whose
target name already exists fails for that entry and the rest continue. So
does one whose new name would be empty, ".", ".." or contain a path
separator; it is reported as "invalid target name".

Exit status is 1 when the rename could not start and 2 when some entries failed.`,
	Example: `  bulkfs rename IMG_ trip_ ~/Pictures -d
  bulkfs rename " (copy)" "" . -r`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runRename,
}

var (
	renameRecursive   bool
	renameDryRun      bool
	renameInteractive bool
)

func init() {
	renameCmd.Flags().BoolVarP(&renameRecursive, "recursive", "r", false, "descend into subdirectories (default from tools.rename.recursive)")
	renameCmd.Flags().BoolVarP(&renameDryRun, "dry-run", "d", false, "preview without renaming")
	renameCmd.Flags().BoolVarP(&renameInteractive, "interactive", "i", false, "show the preview and ask before renaming")
	rootCmd.AddCommand(renameCmd)
}

func runRename(cmd *cobra.Command, args []string) error {
	root, err := rootArg(args, 2)
	if err != nil {
		return err
	}

	req := engine.RenameRequest{
		RootPath:    root,
		FindText:    args[0],
		ReplaceText: args[1],
		Recursive:   boolFlagOr(cmd, "recursive", renameRecursive, appCfg.Tools.Rename.Recursive),
	}
	cliLog.Debug("rename requested", "root", req.RootPath, "find", req.FindText, "replace", req.ReplaceText, "recursive", req.Recursive)

	return runMutation(cmd, mutation{
		action:      "Rename",
		dryRun:      renameDryRun,
		interactive: renameInteractive,
		run: func(ctx context.Context, b backend, dryRun bool) (*engine.Summary, error) {
			r := req
			r.DryRun = dryRun
			return b.RenameBulk(ctx, r)
		},
	})
}
