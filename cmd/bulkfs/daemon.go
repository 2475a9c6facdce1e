package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/bulkfs/pkg/client"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Manage the bulkfsd daemon",
	Long: `Manage the bulkfsd daemon.

While bulkfsd is running, rename, delete and ls are executed by it over a
Unix socket; one daemon serialises operations from every terminal.`,
}

var daemonStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the bulkfsd daemon",
	RunE:  runDaemonStart,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the bulkfsd daemon",
	RunE:  runDaemonStop,
}

var daemonRestartCmd = &cobra.Command{
	Use:   "restart",
	Short: "Restart the bulkfsd daemon",
	RunE:  runDaemonRestart,
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status",
	RunE:  runDaemonStatus,
}

var daemonBinary string

func init() {
	daemonCmd.PersistentFlags().StringVar(&daemonBinary, "binary", "", "path to bulkfsd (default: next to bulkfs, then $PATH)")

	daemonCmd.AddCommand(daemonStartCmd)
	daemonCmd.AddCommand(daemonStopCmd)
	daemonCmd.AddCommand(daemonRestartCmd)
	daemonCmd.AddCommand(daemonStatusCmd)
	rootCmd.AddCommand(daemonCmd)
}

func daemonPaths() client.DaemonPaths {
	return client.DaemonPaths{
		Binary: daemonBinary,
		Socket: appCfg.SocketPath(),
		PID:    appCfg.PIDPath(),
	}
}

func runDaemonStart(_ *cobra.Command, _ []string) error {
	paths := daemonPaths()
	if client.IsDaemonRunning(paths.PID) {
		printInfo("Daemon already running")
		return nil
	}

	printVerbose("starting daemon on %s", paths.Socket)
	if err := client.StartDaemon(paths); err != nil {
		return err
	}
	printInfo("Daemon started")
	return nil
}

func runDaemonStop(_ *cobra.Command, _ []string) error {
	paths := daemonPaths()
	if !client.IsDaemonRunning(paths.PID) {
		printInfo("Daemon not running")
		return nil
	}

	printVerbose("stopping daemon (pid file %s)", paths.PID)
	if err := client.StopDaemon(paths); err != nil {
		return err
	}
	printInfo("Daemon stopped")
	return nil
}

func runDaemonRestart(cmd *cobra.Command, args []string) error {
	if err := runDaemonStop(cmd, args); err != nil {
		return fmt.Errorf("failed to stop daemon: %w", err)
	}
	if err := runDaemonStart(cmd, args); err != nil {
		return fmt.Errorf("failed to start daemon: %w", err)
	}
	return nil
}

func runDaemonStatus(cmd *cobra.Command, _ []string) error {
	paths := daemonPaths()
	w := cmd.OutOrStdout()

	if !client.IsDaemonRunning(paths.PID) {
		fmt.Fprintln(w, "Daemon status: not running")
		return nil
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()

	c, err := client.ConnectWithContext(ctx, paths.Socket)
	if err != nil {
		fmt.Fprintln(w, "Daemon status: running (but not responding)")
		return nil
	}
	defer c.Close()

	status, err := c.Status(ctx)
	if err != nil {
		return fmt.Errorf("failed to get daemon status: %w", err)
	}

	fmt.Fprintln(w, "Daemon status: running")
	fmt.Fprintf(w, "  PID:        %d\n", status.PID)
	fmt.Fprintf(w, "  Version:    %s\n", status.Version)
	fmt.Fprintf(w, "  Uptime:     %s\n", formatDuration(time.Duration(status.UptimeSeconds)*time.Second))
	fmt.Fprintf(w, "  Operations: %d\n", status.Operations)
	fmt.Fprintf(w, "  Base dir:   %s\n", status.BaseDir)
	fmt.Fprintf(w, "  Socket:     %s\n", paths.Socket)
	return nil
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	return fmt.Sprintf("%dd %dh", days, hours)
}
