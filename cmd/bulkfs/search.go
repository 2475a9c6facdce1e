package main

import (
	"github.com/spf13/cobra"

	"github.com/jamesainslie/bulkfs/pkg/bulkfs/filter"
	"github.com/jamesainslie/bulkfs/pkg/bulkfs/output"
	"github.com/jamesainslie/bulkfs/pkg/bulkfs/search"
)

var searchCmd = &cobra.Command{
	Use:   "search <keyword> [scope]",
	Short: "Find entries whose names contain a keyword",
	Long: `Search [scope] (default: the current directory) for files and directories
whose names contain <keyword>, ignoring case.

On macOS the Spotlight index is used when available; elsewhere the tree is
walked in parallel. Search never modifies anything.`,
	Example: `  bulkfs search invoice ~/Documents
  bulkfs search .log / --limit 50 --exclude '**/node_modules/**'`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSearch,
}

var (
	searchLimit   int
	searchExclude []string
	searchAll     bool
)

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "maximum results (default from search.limit)")
	searchCmd.Flags().StringSliceVarP(&searchExclude, "exclude", "e", nil, "glob patterns to exclude (can be repeated)")
	searchCmd.Flags().BoolVarP(&searchAll, "all", "a", false, "include hidden entries")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	scope, err := rootArg(args, 1)
	if err != nil {
		return err
	}

	exclude := append(append([]string{}, appCfg.Search.Exclude...), searchExclude...)
	f, err := filter.New(
		filter.WithHideHidden(appCfg.HideHidden && !searchAll),
		filter.WithExclude(exclude...),
	)
	if err != nil {
		return err
	}

	limit := appCfg.Search.Limit
	if searchLimit > 0 {
		limit = searchLimit
	}

	res := search.New(search.WithFilter(f)).Search(cmd.Context(), search.Request{
		Keyword:   args[0],
		Directory: scope,
		Limit:     limit,
	})
	cliLog.Debug("search finished", "scope", scope, "engine", res.Engine, "matches", len(res.Entries))

	if err := render(cmd, output.FromSearch(args[0], res)); err != nil {
		return err
	}
	if res.Error != "" {
		return &exitError{code: exitFailure}
	}
	return nil
}
