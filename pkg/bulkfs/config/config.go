package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSize    string `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
	Daily      bool   `mapstructure:"daily"`
}

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level"`
	Path       string            `mapstructure:"path"`
	Rotation   RotationConfig    `mapstructure:"rotation"`
	Components map[string]string `mapstructure:"components"`
}

// DaemonConfig configures the bulkfsd daemon.
type DaemonConfig struct {
	SocketPath string `mapstructure:"socket_path"`
	PIDPath    string `mapstructure:"pid_path"`
}

// ColumnsConfig selects the listing columns shown besides the name.
type ColumnsConfig struct {
	ShowType     bool `mapstructure:"show_type"`
	ShowModified bool `mapstructure:"show_modified"`
	ShowSize     bool `mapstructure:"show_size"`
}

// SortConfig orders listings.
type SortConfig struct {
	Field string `mapstructure:"field"`
	Order string `mapstructure:"order"`
}

// ToolConfig holds per-operation defaults.
type ToolConfig struct {
	Recursive bool `mapstructure:"recursive"`
	Trash     bool `mapstructure:"trash"`
}

// JournalConfig configures the operation journal.
type JournalConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Path          string `mapstructure:"path"`
	RetentionDays int    `mapstructure:"retention_days"`
}

// Config represents the application configuration.
type Config struct {
	// BaseDir anchors "~" and empty paths. Empty means the home directory.
	BaseDir        string        `mapstructure:"base_dir"`
	StartPath      string        `mapstructure:"start_path"`
	Output         string        `mapstructure:"output"`
	HideHidden     bool          `mapstructure:"hide_hidden"`
	IgnoreSuffixes []string      `mapstructure:"ignore_suffixes"`
	Columns        ColumnsConfig `mapstructure:"columns"`
	Sort           SortConfig    `mapstructure:"sort"`
	Tools          struct {
		Rename ToolConfig `mapstructure:"rename"`
		Delete ToolConfig `mapstructure:"delete"`
	} `mapstructure:"tools"`
	Search struct {
		Limit   int      `mapstructure:"limit"`
		Exclude []string `mapstructure:"exclude"`
	} `mapstructure:"search"`
	Journal JournalConfig `mapstructure:"journal"`
	Logging LoggingConfig `mapstructure:"logging"`
	Daemon  DaemonConfig  `mapstructure:"daemon"`

	// File is the config file that was read, empty when defaults were used.
	File string `mapstructure:"-"`
}

// ErrInvalid is wrapped by validation failures.
var ErrInvalid = errors.New("invalid configuration")

// Load reads configuration. An explicit path must exist; otherwise the file
// is searched for in:
//   - $XDG_CONFIG_HOME/bulkfs/config.yaml
//   - $HOME/.config/bulkfs/config.yaml
//
// Environment variables are prefixed with BULKFS_ (e.g. BULKFS_BASE_DIR).
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		dir, err := ConfigDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "bulkfs"))
		}
	}

	v.SetEnvPrefix("BULKFS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	var err error
	if cfg.BaseDir, err = ExpandPath(cfg.BaseDir); err != nil {
		return nil, err
	}
	if cfg.Journal.Path, err = ExpandPath(cfg.Journal.Path); err != nil {
		return nil, err
	}
	if cfg.Logging.Path, err = ExpandPath(cfg.Logging.Path); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in configuration, ignoring config files and
// the environment.
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("config: built-in defaults do not unmarshal: %v", err))
	}
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("base_dir", "")
	v.SetDefault("start_path", "")
	v.SetDefault("output", DefaultOutput)
	v.SetDefault("hide_hidden", true)
	v.SetDefault("ignore_suffixes", DefaultIgnoreSuffixes)
	v.SetDefault("columns.show_type", true)
	v.SetDefault("columns.show_modified", true)
	v.SetDefault("columns.show_size", true)
	v.SetDefault("sort.field", DefaultSortField)
	v.SetDefault("sort.order", DefaultSortOrder)
	v.SetDefault("tools.rename.recursive", false)
	v.SetDefault("tools.delete.recursive", false)
	v.SetDefault("tools.delete.trash", false)
	v.SetDefault("search.limit", DefaultSearchLimit)
	v.SetDefault("search.exclude", []string{})

	v.SetDefault("journal.enabled", true)
	v.SetDefault("journal.path", "") // Empty means DefaultJournalDir
	v.SetDefault("journal.retention_days", DefaultRetentionDays)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.path", "") // Empty means DefaultLogPath
	v.SetDefault("logging.rotation.max_size", "10MB")
	v.SetDefault("logging.rotation.max_age", 30)
	v.SetDefault("logging.rotation.max_backups", 5)
	v.SetDefault("logging.rotation.daily", true)
	v.SetDefault("logging.components", map[string]string{
		"engine": "info",
		"walker": "warn",
		"daemon": "info",
	})

	v.SetDefault("daemon.socket_path", "") // Empty means DefaultSocketPath
	v.SetDefault("daemon.pid_path", "")    // Empty means DefaultPIDPath
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	if !slices.Contains(SortFields, c.Sort.Field) {
		return fmt.Errorf("%w: sort.field %q (want one of %s)", ErrInvalid, c.Sort.Field, strings.Join(SortFields, ", "))
	}
	if !slices.Contains(SortOrders, c.Sort.Order) {
		return fmt.Errorf("%w: sort.order %q (want one of %s)", ErrInvalid, c.Sort.Order, strings.Join(SortOrders, ", "))
	}
	if c.Journal.RetentionDays < 0 {
		return fmt.Errorf("%w: journal.retention_days must not be negative", ErrInvalid)
	}
	return nil
}

// JournalDir returns the configured journal directory or the default.
func (c *Config) JournalDir() string {
	if c.Journal.Path != "" {
		return c.Journal.Path
	}
	return DefaultJournalDir()
}

// SocketPath returns the configured daemon socket or the default.
func (c *Config) SocketPath() string {
	if c.Daemon.SocketPath != "" {
		return c.Daemon.SocketPath
	}
	return DefaultSocketPath()
}

// PIDPath returns the configured daemon PID file or the default.
func (c *Config) PIDPath() string {
	if c.Daemon.PIDPath != "" {
		return c.Daemon.PIDPath
	}
	return DefaultPIDPath()
}

// ConfigDir returns the configuration directory.
func ConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, "bulkfs"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "bulkfs"), nil
}

// DefaultConfigPath returns the config file written by WriteDefault.
func DefaultConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// WriteDefault writes a commented default config file to path, or to
// DefaultConfigPath when path is empty. An existing file is left alone and
// reported through the bool.
func WriteDefault(path string) (string, bool, error) {
	if path == "" {
		p, err := DefaultConfigPath()
		if err != nil {
			return "", false, err
		}
		path = p
	}

	if _, err := os.Stat(path); err == nil {
		return path, false, nil
	} else if !os.IsNotExist(err) {
		return "", false, fmt.Errorf("failed to check config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", false, fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(defaultConfigYAML), 0o644); err != nil {
		return "", false, fmt.Errorf("failed to write default config: %w", err)
	}
	return path, true, nil
}

const defaultConfigYAML = `# bulkfs configuration

# Directory that "~" and an empty path resolve to (empty: your home directory)
base_dir: ""

# Directory "bulkfs ls" shows when no path is given (empty: base_dir)
start_path: ""

# Output format: pretty, plain, json, jsonl, yaml, tsv, csv, markdown, template
output: pretty

# Listing filters
hide_hidden: true
ignore_suffixes: []

# Listing columns
columns:
  show_type: true
  show_modified: true
  show_size: true

# Listing order: field is name, modified or size; order is asc or desc
sort:
  field: name
  order: asc

# Defaults for the bulk tools
tools:
  rename:
    recursive: false
  delete:
    recursive: false
    # Move matches to the system trash instead of deleting them
    trash: false

search:
  limit: 200
  exclude: []

# Journal of completed rename and delete operations
journal:
  enabled: true
  # Empty means $XDG_DATA_HOME/bulkfs/journal
  path: ""
  retention_days: 30

logging:
  # Log level: debug, info, warn, error
  level: info
  # Empty means $XDG_STATE_HOME/bulkfs/bulkfs.log
  path: ""
  rotation:
    max_size: 10MB
    max_age: 30       # days
    max_backups: 5
    daily: true
  components:
    engine: info
    walker: warn
    daemon: info

daemon:
  # Empty means $XDG_DATA_HOME/bulkfs/bulkfs.sock
  socket_path: ""
  # Empty means $XDG_DATA_HOME/bulkfs/bulkfsd.pid
  pid_path: ""
`

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, path[1:]), nil
}

// DataDir returns $XDG_DATA_HOME/bulkfs for the socket, PID, lock and journal.
func DataDir() string {
	return filepath.Join(xdg.DataHome, "bulkfs")
}

// StateDir returns $XDG_STATE_HOME/bulkfs for log files.
func StateDir() string {
	return filepath.Join(xdg.StateHome, "bulkfs")
}

// DefaultSocketPath returns the default daemon socket path.
func DefaultSocketPath() string {
	return filepath.Join(DataDir(), "bulkfs.sock")
}

// DefaultPIDPath returns the default daemon PID file path.
func DefaultPIDPath() string {
	return filepath.Join(DataDir(), "bulkfsd.pid")
}

// DefaultLockPath returns the operation lock file path.
func DefaultLockPath() string {
	return filepath.Join(DataDir(), "bulkfs.lock")
}

// DefaultJournalDir returns the default journal directory.
func DefaultJournalDir() string {
	return filepath.Join(DataDir(), "journal")
}

// DefaultLogPath returns the default log file path.
func DefaultLogPath() string {
	return filepath.Join(StateDir(), "bulkfs.log")
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() error {
	if err := os.MkdirAll(DataDir(), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	return nil
}
