package main

import (
	"fmt"

	"github.com/spf13/cobra"

	bulkfsv1 "github.com/jamesainslie/bulkfs/pkg/api/bulkfs/v1"
	"github.com/jamesainslie/bulkfs/pkg/bulkfs/config"
	"github.com/jamesainslie/bulkfs/pkg/bulkfs/filter"
	"github.com/jamesainslie/bulkfs/pkg/bulkfs/output"
)

var lsCmd = &cobra.Command{
	Use:   "ls [path]",
	Short: "List a directory",
	Long: `List the entries of a directory, directories first.

Without [path], start_path from the configuration is listed (default: the
base directory). Hidden entries and ignored suffixes are filtered as
configured; --all shows everything.`,
	Aliases: []string{"list"},
	Args:    cobra.MaximumNArgs(1),
	RunE:    runList,
}

// listFlags holds the ls flag values.
type listFlags struct {
	all        bool
	ignore     string
	ignoreSet  bool
	sort       string
	reverse    bool
	pathArgSet bool
	path       string
}

var lsOpts listFlags

func init() {
	lsCmd.Flags().BoolVarP(&lsOpts.all, "all", "a", false, "show hidden entries and ignored suffixes")
	lsCmd.Flags().StringVar(&lsOpts.ignore, "ignore", "", "comma-separated suffixes to hide, e.g. .tmp,.log (default from ignore_suffixes)")
	lsCmd.Flags().StringVar(&lsOpts.sort, "sort", "", "sort by name, size or modified (default from sort.field)")
	lsCmd.Flags().BoolVar(&lsOpts.reverse, "reverse", false, "reverse the configured sort order")
	rootCmd.AddCommand(lsCmd)
}

// buildListRequest combines flags with configuration. The path is left
// unresolved.
func buildListRequest(cfg *config.Config, f listFlags) (bulkfsv1.ListRequest, error) {
	req := bulkfsv1.ListRequest{
		Path:       cfg.StartPath,
		HideHidden: cfg.HideHidden && !f.all,
	}
	if f.pathArgSet {
		req.Path = f.path
	}

	switch {
	case f.all:
		req.IgnoreSuffixes = nil
	case f.ignoreSet:
		req.IgnoreSuffixes = filter.ParseSuffixes(f.ignore)
	default:
		req.IgnoreSuffixes = cfg.IgnoreSuffixes
	}

	sortBy := cfg.Sort.Field
	if f.sort != "" {
		sortBy = f.sort
	}
	field, err := filter.ParseSortField(sortBy)
	if err != nil {
		return req, err
	}
	req.SortBy = field.String()

	desc, err := filter.ParseDescending(cfg.Sort.Order)
	if err != nil {
		return req, err
	}
	req.Descending = desc != f.reverse

	return req, nil
}

func runList(cmd *cobra.Command, args []string) error {
	f := lsOpts
	f.ignoreSet = cmd.Flags().Changed("ignore")
	if len(args) > 0 {
		f.pathArgSet = true
		f.path = args[0]
	}

	req, err := buildListRequest(appCfg, f)
	if err != nil {
		return err
	}
	if req.Path, err = resolvePath(appCfg, req.Path); err != nil {
		return err
	}

	b, err := openBackend(cmd.Context(), appCfg)
	if err != nil {
		return err
	}
	defer b.Close()

	snap, err := b.List(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", req.Path, err)
	}

	cols := output.ListColumns{
		Type:     appCfg.Columns.ShowType,
		Size:     appCfg.Columns.ShowSize,
		Modified: appCfg.Columns.ShowModified,
	}
	if err := render(cmd, output.FromSnapshot(snap, cols)); err != nil {
		return err
	}
	if !snap.Exists {
		return &exitError{code: exitFailure}
	}
	return nil
}
