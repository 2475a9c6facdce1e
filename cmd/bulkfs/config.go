package main

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/bulkfs/pkg/bulkfs/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage bulkfs configuration settings.

Configuration is loaded from:
  1. --config, when given
  2. $XDG_CONFIG_HOME/bulkfs/config.yaml (if set)
  3. ~/.config/bulkfs/config.yaml

Environment variables override file settings using the BULKFS_ prefix:
  BULKFS_BASE_DIR=/srv/data
  BULKFS_OUTPUT=json
  BULKFS_TOOLS_DELETE_TRASH=true`,
}

var configShowCmd = &cobra.Command{
	Use:         "show",
	Short:       "Show current configuration",
	Annotations: map[string]string{annotationTolerant: "true"},
	RunE:        runConfigShow,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit configuration file",
	Long: `Open the configuration file in your default editor.

The editor is $VISUAL, then $EDITOR, then vi. A default file is created
first if none exists.`,
	Annotations: map[string]string{annotationTolerant: "true"},
	RunE:        runConfigEdit,
}

var configInitCmd = &cobra.Command{
	Use:         "init",
	Short:       "Create default configuration file",
	Annotations: map[string]string{annotationTolerant: "true"},
	RunE:        runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:         "path",
	Short:       "Show configuration file path",
	Annotations: map[string]string{annotationTolerant: "true"},
	RunE:        runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// configFilePath is the file "config init" and "config edit" operate on.
func configFilePath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	return config.DefaultConfigPath()
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()
	if appCfg.File != "" {
		fmt.Fprintf(w, "Config file: %s\n\n", appCfg.File)
	} else {
		fmt.Fprintln(w, "Config file: (using defaults, no file found)")
		fmt.Fprintln(w)
	}

	writeConfig(w, appCfg)

	fmt.Fprintln(w, "\nEnvironment Overrides:")
	fmt.Fprintln(w, "----------------------")
	overrides := environmentOverrides(os.Environ())
	if len(overrides) == 0 {
		fmt.Fprintln(w, "(none)")
	}
	for _, kv := range overrides {
		fmt.Fprintln(w, kv)
	}
	return nil
}

// writeConfig prints the effective settings one per line.
func writeConfig(w io.Writer, cfg *config.Config) {
	orDefault := func(v, def string) string {
		if v == "" {
			return def + " (default)"
		}
		return v
	}

	fmt.Fprintln(w, "Current Configuration:")
	fmt.Fprintln(w, "----------------------")
	fmt.Fprintf(w, "base_dir:                %s\n", orDefault(cfg.BaseDir, "~"))
	fmt.Fprintf(w, "start_path:              %s\n", orDefault(cfg.StartPath, "base_dir"))
	fmt.Fprintf(w, "output:                  %s\n", cfg.Output)
	fmt.Fprintf(w, "hide_hidden:             %t\n", cfg.HideHidden)
	fmt.Fprintf(w, "ignore_suffixes:         %v\n", cfg.IgnoreSuffixes)
	fmt.Fprintf(w, "columns:                 type=%t size=%t modified=%t\n", cfg.Columns.ShowType, cfg.Columns.ShowSize, cfg.Columns.ShowModified)
	fmt.Fprintf(w, "sort:                    %s %s\n", cfg.Sort.Field, cfg.Sort.Order)
	fmt.Fprintf(w, "tools.rename.recursive:  %t\n", cfg.Tools.Rename.Recursive)
	fmt.Fprintf(w, "tools.delete.recursive:  %t\n", cfg.Tools.Delete.Recursive)
	fmt.Fprintf(w, "tools.delete.trash:      %t\n", cfg.Tools.Delete.Trash)
	fmt.Fprintf(w, "search.limit:            %d\n", cfg.Search.Limit)
	fmt.Fprintf(w, "search.exclude:          %v\n", cfg.Search.Exclude)
	fmt.Fprintf(w, "journal.enabled:         %t\n", cfg.Journal.Enabled)
	fmt.Fprintf(w, "journal.path:            %s\n", cfg.JournalDir())
	fmt.Fprintf(w, "journal.retention_days:  %d\n", cfg.Journal.RetentionDays)
	fmt.Fprintf(w, "logging.level:           %s\n", cfg.Logging.Level)
	fmt.Fprintf(w, "logging.path:            %s\n", orDefault(cfg.Logging.Path, config.DefaultLogPath()))
	fmt.Fprintf(w, "daemon.socket_path:      %s\n", cfg.SocketPath())
	fmt.Fprintf(w, "daemon.pid_path:         %s\n", cfg.PIDPath())
}

// environmentOverrides returns the BULKFS_ variables in env, sorted.
func environmentOverrides(env []string) []string {
	var out []string
	for _, kv := range env {
		if strings.HasPrefix(kv, "BULKFS_") {
			out = append(out, kv)
		}
	}
	sort.Strings(out)
	return out
}

func runConfigEdit(_ *cobra.Command, _ []string) error {
	path, err := configFilePath()
	if err != nil {
		return err
	}
	if _, _, err := config.WriteDefault(path); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	editor := os.Getenv("VISUAL")
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}
	if editor == "" {
		editor = "vi"
	}

	printVerbose("opening %s with %s", path, editor)

	editorCmd := exec.Command(editor, path) //nolint:gosec // user's editor
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	if err := editorCmd.Run(); err != nil {
		return fmt.Errorf("editor command failed: %w", err)
	}
	return nil
}

func runConfigInit(_ *cobra.Command, _ []string) error {
	path, err := configFilePath()
	if err != nil {
		return err
	}

	written, created, err := config.WriteDefault(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	if !created {
		printInfo("Config file already exists: %s", written)
		printInfo("Use 'bulkfs config edit' to modify it.")
		return nil
	}

	printInfo("Created default config file: %s", written)
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	path := appCfg.File
	if path == "" {
		var err error
		if path, err = configFilePath(); err != nil {
			return err
		}
	}

	fmt.Fprintln(cmd.OutOrStdout(), path)

	if _, err := os.Stat(path); err == nil {
		printVerbose("file exists")
	} else if os.IsNotExist(err) {
		printVerbose("file does not exist (defaults are used)")
	}
	return nil
}
