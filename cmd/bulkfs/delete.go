package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/bulkfs/pkg/bulkfs/engine"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <keyword> [path]",
	Short: "Delete entries whose names contain a keyword",
	Long: `Delete every file and directory below [path] (default: the current
directory) whose name contains <keyword>. Matching is case-sensitive. A
matched directory is removed with its whole subtree and is not searched
further.

With --trash, matches go to the system trash where one is available.

Exit status is 1 when the delete could not start and 2 when some entries failed.`,
	Example: `  bulkfs delete .DS_Store ~ -r -d
  bulkfs delete node_modules ~/src -r --trash -i`,
	Aliases: []string{"rm"},
	Args:    cobra.RangeArgs(1, 2),
	RunE:    runDelete,
}

var (
	deleteRecursive   bool
	deleteDryRun      bool
	deleteTrash       bool
	deleteInteractive bool
)

func init() {
	deleteCmd.Flags().BoolVarP(&deleteRecursive, "recursive", "r", false, "descend into subdirectories (default from tools.delete.recursive)")
	deleteCmd.Flags().BoolVarP(&deleteDryRun, "dry-run", "d", false, "preview without deleting")
	deleteCmd.Flags().BoolVar(&deleteTrash, "trash", false, "move matches to the system trash (default from tools.delete.trash)")
	deleteCmd.Flags().BoolVarP(&deleteInteractive, "interactive", "i", false, "show the preview and ask before deleting")
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	root, err := rootArg(args, 1)
	if err != nil {
		return err
	}

	req := engine.DeleteRequest{
		RootPath:  root,
		Keyword:   args[0],
		Recursive: boolFlagOr(cmd, "recursive", deleteRecursive, appCfg.Tools.Delete.Recursive),
	}
	useTrash := boolFlagOr(cmd, "trash", deleteTrash, appCfg.Tools.Delete.Trash)
	cliLog.Debug("delete requested", "root", req.RootPath, "keyword", req.Keyword, "recursive", req.Recursive, "trash", useTrash)

	action := "Delete"
	if useTrash {
		action = "Move to trash"
	}

	return runMutation(cmd, mutation{
		action:      action,
		dryRun:      deleteDryRun,
		interactive: deleteInteractive,
		run: func(ctx context.Context, b backend, dryRun bool) (*engine.Summary, error) {
			r := req
			r.DryRun = dryRun
			return b.DeleteBulk(ctx, r, useTrash)
		},
	})
}
