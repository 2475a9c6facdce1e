package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/bulkfs/pkg/bulkfs/config"
	"github.com/jamesainslie/bulkfs/pkg/bulkfs/logging"
)

// annotationTolerant marks commands that must work with a broken config
// file, such as "config edit".
const annotationTolerant = "bulkfs/tolerant-config"

// initializeLogging is the PersistentPreRunE hook: it loads configuration,
// creates the XDG directories and starts logging.
func initializeLogging(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		if cmd == nil || cmd.Annotations[annotationTolerant] == "" {
			return err
		}
		printError("%v (using defaults)", err)
		cfg = config.Default()
	}
	appCfg = cfg

	if err := ensureDirectories(); err != nil {
		return err
	}

	logCfg := logging.Config{
		Level:      cfg.Logging.Level,
		Path:       cfg.Logging.Path,
		Rotation:   parseRotationConfig(cfg.Logging.Rotation),
		Components: cfg.Logging.Components,
	}
	if verbose {
		logCfg.ConsoleLevel = "debug"
	}
	// The confirmation screen owns the terminal.
	if cmd != nil {
		if f := cmd.Flags().Lookup("interactive"); f != nil && f.Value.String() == "true" {
			logCfg.TUIMode = true
		}
	}
	if err := logging.Init(logCfg); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	cliLog.Debug("configuration loaded", "file", cfg.File, "command", commandPath(cmd))
	return nil
}

func commandPath(cmd *cobra.Command) string {
	if cmd == nil {
		return ""
	}
	return cmd.CommandPath()
}

// ensureDirectories creates the config, data and state directories.
func ensureDirectories() error {
	configDir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	for _, dir := range []string{configDir, config.DataDir(), config.StateDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// parseRotationConfig converts the configured rotation settings. An empty
// or unparseable max_size falls back to the default.
func parseRotationConfig(c config.RotationConfig) logging.RotationConfig {
	rc := logging.RotationConfig{
		MaxAge:     c.MaxAge,
		MaxBackups: c.MaxBackups,
		Daily:      c.Daily,
	}

	size, err := logging.ParseMaxSize(c.MaxSize)
	if err != nil || size <= 0 {
		size = logging.DefaultRotationConfig().MaxSize
	}
	rc.MaxSize = size
	return rc
}
