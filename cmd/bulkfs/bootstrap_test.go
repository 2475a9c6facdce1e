package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/bulkfs/pkg/bulkfs/config"
	"github.com/jamesainslie/bulkfs/pkg/bulkfs/logging"
)

func TestParseRotationConfig(t *testing.T) {
	tests := []struct {
		name     string
		input    config.RotationConfig
		expected logging.RotationConfig
	}{
		{
			name: "default values",
			input: config.RotationConfig{
				MaxSize:    "10MB",
				MaxAge:     30,
				MaxBackups: 5,
				Daily:      true,
			},
			expected: logging.RotationConfig{
				MaxSize:    10 * 1000 * 1000,
				MaxAge:     30,
				MaxBackups: 5,
				Daily:      true,
			},
		},
		{
			name: "binary units",
			input: config.RotationConfig{
				MaxSize:    "1GiB",
				MaxAge:     7,
				MaxBackups: 3,
			},
			expected: logging.RotationConfig{
				MaxSize:    1024 * 1024 * 1024,
				MaxAge:     7,
				MaxBackups: 3,
			},
		},
		{
			name: "empty max_size uses default",
			input: config.RotationConfig{
				MaxAge:     14,
				MaxBackups: 2,
				Daily:      true,
			},
			expected: logging.RotationConfig{
				MaxSize:    logging.DefaultRotationConfig().MaxSize,
				MaxAge:     14,
				MaxBackups: 2,
				Daily:      true,
			},
		},
		{
			name: "invalid max_size uses default",
			input: config.RotationConfig{
				MaxSize:    "lots",
				MaxAge:     21,
				MaxBackups: 4,
			},
			expected: logging.RotationConfig{
				MaxSize:    logging.DefaultRotationConfig().MaxSize,
				MaxAge:     21,
				MaxBackups: 4,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseRotationConfig(tt.input)
			if result != tt.expected {
				t.Errorf("parseRotationConfig() = %+v, want %+v", result, tt.expected)
			}
		})
	}
}

func TestInitializeLogging(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "logs", "bulkfs.log")
	cfgPath := filepath.Join(dir, "config.yaml")
	writeFile(t, cfgPath, "output: json\nlogging:\n  path: "+logPath+"\n")

	withConfigFile(t, cfgPath)

	if err := initializeLogging(nil, nil); err != nil {
		t.Fatalf("initializeLogging() error = %v", err)
	}
	defer func() { _ = logging.Close() }()

	if appCfg == nil || appCfg.Output != "json" {
		t.Fatalf("appCfg = %+v, want output json", appCfg)
	}

	// The XDG directories are resolved once at package init, so check the
	// real locations.
	configDir, err := config.ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error = %v", err)
	}
	for _, d := range []string{configDir, config.DataDir(), config.StateDir()} {
		if _, err := os.Stat(d); err != nil {
			t.Errorf("directory not created: %s", d)
		}
	}

	cliLog.Info("bootstrap test")
	if _, err := os.Stat(logPath); err != nil {
		t.Errorf("log file not created at %s: %v", logPath, err)
	}
}

func TestInitializeLoggingBrokenConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	writeFile(t, cfgPath, "sort:\n  field: colour\n")

	withConfigFile(t, cfgPath)

	if err := initializeLogging(&cobra.Command{Use: "ls"}, nil); err == nil {
		t.Error("initializeLogging() should fail for an invalid config")
	}

	tolerant := &cobra.Command{Use: "path", Annotations: map[string]string{annotationTolerant: "true"}}
	if err := initializeLogging(tolerant, nil); err != nil {
		t.Fatalf("tolerant initializeLogging() error = %v", err)
	}
	defer func() { _ = logging.Close() }()

	if appCfg.Sort.Field != config.DefaultSortField {
		t.Errorf("appCfg.Sort.Field = %q, want defaults", appCfg.Sort.Field)
	}
}

func withConfigFile(t *testing.T, path string) {
	t.Helper()
	prevFile, prevCfg := cfgFile, appCfg
	cfgFile = path
	t.Cleanup(func() {
		cfgFile, appCfg = prevFile, prevCfg
	})
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
