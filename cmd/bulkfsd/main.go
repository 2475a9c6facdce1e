// Command bulkfsd serves bulk renames, deletes and listings to bulkfs
// clients over a Unix socket.
package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/bulkfs/pkg/bulkfs/config"
	"github.com/jamesainslie/bulkfs/pkg/bulkfs/logging"
	"github.com/jamesainslie/bulkfs/pkg/daemon"
)

// Set by go build -ldflags.
var version = "dev"

var log = logging.Get("daemon")

var (
	cfgFile    string
	socketPath string
	pidPath    string
	foreground bool
)

var rootCmd = &cobra.Command{
	Use:           "bulkfsd",
	Short:         "bulkfs daemon",
	Long:          "bulkfsd executes bulk renames, deletes and listings for bulkfs clients, one at a time.",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/bulkfs/config.yaml)")
	rootCmd.Flags().StringVar(&socketPath, "socket", "", "socket path (default from config)")
	rootCmd.Flags().StringVar(&pidPath, "pid", "", "PID file path (default from config)")
	rootCmd.Flags().BoolVar(&foreground, "foreground", false, "also log to stderr")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "bulkfsd: %v\n", err)
		os.Exit(1)
	}
}

func run(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if socketPath == "" {
		socketPath = cfg.SocketPath()
	}
	if pidPath == "" {
		pidPath = cfg.PIDPath()
	}

	logCfg := logging.Config{
		Level:      cfg.Logging.Level,
		Path:       cfg.Logging.Path,
		Rotation:   rotationConfig(cfg.Logging.Rotation),
		Components: cfg.Logging.Components,
	}
	if foreground {
		logCfg.ConsoleLevel = cfg.Logging.Level
	}
	if err := logging.Init(logCfg); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer func() { _ = logging.Close() }()

	statusPath := daemon.StatusPath(socketPath)

	if err := daemon.RecoverFromStaleDaemon(pidPath, socketPath); err != nil {
		if errors.Is(err, daemon.ErrDaemonAlreadyRunning) {
			return fmt.Errorf("bulkfsd is already running (pid file %s)", pidPath)
		}
		return err
	}

	srv, err := start(cfg)
	if err != nil {
		_ = daemon.WriteStatusError(statusPath, err)
		return err
	}

	if err := daemon.WritePIDFile(pidPath); err != nil {
		_ = srv.Close()
		_ = daemon.WriteStatusError(statusPath, err)
		return fmt.Errorf("failed to write PID file: %w", err)
	}
	defer func() {
		if err := daemon.RemovePIDFile(pidPath); err != nil && !os.IsNotExist(err) {
			log.Warn("failed to remove PID file", "error", err)
		}
		_ = daemon.RemoveStatus(statusPath)
	}()

	if err := daemon.WriteStatusReady(statusPath); err != nil {
		log.Warn("failed to write status file", "path", statusPath, "error", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		sig, ok := <-sigChan
		if !ok {
			return
		}
		log.Info("shutting down", "signal", sig.String())
		if err := srv.Close(); err != nil {
			log.Warn("error during shutdown", "error", err)
		}
	}()

	log.Info("bulkfsd started", "version", version, "socket", socketPath, "pid", os.Getpid())
	if err := srv.Serve(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	log.Info("bulkfsd stopped")
	return nil
}

// start builds the service and binds the socket.
func start(cfg *config.Config) (*daemon.Server, error) {
	svc, err := daemon.NewServiceFromConfig(cfg, version)
	if err != nil {
		return nil, err
	}
	srv, err := daemon.NewServer(daemon.Config{SocketPath: socketPath}, svc)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", socketPath, err)
	}
	return srv, nil
}

func rotationConfig(c config.RotationConfig) logging.RotationConfig {
	size, err := logging.ParseMaxSize(c.MaxSize)
	if err != nil || size <= 0 {
		size = logging.DefaultRotationConfig().MaxSize
	}
	return logging.RotationConfig{
		MaxSize:    size,
		MaxAge:     c.MaxAge,
		MaxBackups: c.MaxBackups,
		Daily:      c.Daily,
	}
}
