// Package client connects to the bulkfsd daemon and manages its process.
package client

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	bulkfsv1 "github.com/jamesainslie/bulkfs/pkg/api/bulkfs/v1"
	"github.com/jamesainslie/bulkfs/pkg/bulkfs/config"
	"github.com/jamesainslie/bulkfs/pkg/bulkfs/engine"
	"github.com/jamesainslie/bulkfs/pkg/bulkfs/listing"
	"github.com/jamesainslie/bulkfs/pkg/daemon"
)

// ErrNotRunning is returned when no daemon socket exists.
var ErrNotRunning = errors.New("daemon is not running")

// Client talks to bulkfsd over gRPC.
type Client struct {
	conn   *grpc.ClientConn
	client bulkfsv1.BulkFSClient
}

// Connect connects to the daemon with a 5 second timeout.
func Connect(socketPath string) (*Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return ConnectWithContext(ctx, socketPath)
}

// ConnectWithContext connects to the daemon and verifies it answers.
func ConnectWithContext(ctx context.Context, socketPath string) (*Client, error) {
	if _, err := os.Stat(socketPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: no socket at %s", ErrNotRunning, socketPath)
	}

	conn, err := grpc.NewClient("unix://"+socketPath, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w", err)
	}

	c := &Client{conn: conn, client: bulkfsv1.NewBulkFSClient(conn)}
	if _, err := c.Status(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to connect to daemon: %w", err)
	}
	return c, nil
}

// New wraps an existing connection.
func New(conn grpc.ClientConnInterface) *Client {
	c := &Client{client: bulkfsv1.NewBulkFSClient(conn)}
	if cc, ok := conn.(*grpc.ClientConn); ok {
		c.conn = cc
	}
	return c
}

// Close closes the connection.
func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// RenameBulk runs a rename on the daemon.
func (c *Client) RenameBulk(ctx context.Context, req engine.RenameRequest) (*engine.Summary, error) {
	s, err := c.client.RenameBulk(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("RenameBulk RPC failed: %w", err)
	}
	return s, nil
}

// DeleteBulk runs a delete on the daemon, moving matches to the trash when
// trash is set.
func (c *Client) DeleteBulk(ctx context.Context, req engine.DeleteRequest, trash bool) (*engine.Summary, error) {
	s, err := c.client.DeleteBulk(ctx, &bulkfsv1.DeleteRequest{DeleteRequest: req, Trash: trash})
	if err != nil {
		return nil, fmt.Errorf("DeleteBulk RPC failed: %w", err)
	}
	return s, nil
}

// List asks the daemon for a directory snapshot.
func (c *Client) List(ctx context.Context, req bulkfsv1.ListRequest) (*listing.Snapshot, error) {
	snap, err := c.client.List(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("List RPC failed: %w", err)
	}
	return snap, nil
}

// Status returns daemon information.
func (c *Client) Status(ctx context.Context) (*bulkfsv1.StatusResponse, error) {
	st, err := c.client.Status(ctx, &bulkfsv1.StatusRequest{})
	if err != nil {
		return nil, fmt.Errorf("Status RPC failed: %w", err)
	}
	return st, nil
}

// Shutdown asks the daemon to exit.
func (c *Client) Shutdown(ctx context.Context) error {
	resp, err := c.client.Shutdown(ctx, &bulkfsv1.ShutdownRequest{})
	if err != nil {
		return fmt.Errorf("Shutdown RPC failed: %w", err)
	}
	if !resp.Accepted {
		return errors.New("daemon refused to shut down")
	}
	return nil
}

// DaemonPaths configures daemon process management. Empty fields use
// defaults.
type DaemonPaths struct {
	Binary string
	Socket string
	PID    string
}

func (p DaemonPaths) withDefaults() DaemonPaths {
	if p.Socket == "" {
		p.Socket = config.DefaultSocketPath()
	}
	if p.PID == "" {
		p.PID = config.DefaultPIDPath()
	}
	return p
}

// IsDaemonRunning reports whether the PID file names a live process.
func IsDaemonRunning(pidPath string) bool {
	return daemon.IsDaemonRunning(pidPath)
}

// StartDaemon launches bulkfsd in the background and waits until it is
// ready. It does nothing when a daemon is already running.
func StartDaemon(paths DaemonPaths) error {
	paths = paths.withDefaults()

	if IsDaemonRunning(paths.PID) {
		return nil
	}

	binary, err := resolveBinary(paths.Binary)
	if err != nil {
		return fmt.Errorf("find bulkfsd: %w", err)
	}

	statusPath := daemon.StatusPath(paths.Socket)
	_ = os.Remove(statusPath)

	// The daemon must outlive this process, so no CommandContext.
	cmd := exec.Command(binary, "--socket", paths.Socket, "--pid", paths.PID) //nolint:gosec // resolved binary
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}
	if cmd.Process != nil {
		_ = cmd.Process.Release()
	}

	for range 50 {
		time.Sleep(100 * time.Millisecond)

		if status, err := daemon.ReadStatus(statusPath); err == nil {
			switch status.Status {
			case daemon.StatusReady:
				return nil
			case daemon.StatusError:
				return fmt.Errorf("daemon failed to start: %s", status.Error)
			}
		}
		if _, err := os.Stat(paths.Socket); err == nil {
			return nil
		}
	}

	return errors.New("daemon did not become ready within timeout")
}

// StopDaemon asks a running daemon to exit and waits for it. It does
// nothing when no daemon is running.
func StopDaemon(paths DaemonPaths) error {
	paths = paths.withDefaults()

	if !IsDaemonRunning(paths.PID) {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c, err := ConnectWithContext(ctx, paths.Socket)
	if err != nil {
		return fmt.Errorf("connect to daemon: %w", err)
	}
	defer c.Close()

	if err := c.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown daemon: %w", err)
	}

	for range 20 {
		time.Sleep(250 * time.Millisecond)
		if !IsDaemonRunning(paths.PID) {
			return nil
		}
	}
	return errors.New("daemon did not stop within timeout")
}

// resolveBinary finds bulkfsd: the configured path, then next to the
// running executable, then $PATH.
func resolveBinary(configured string) (string, error) {
	if configured != "" {
		if _, err := os.Stat(configured); err != nil {
			return "", fmt.Errorf("configured binary not found: %s", configured)
		}
		return configured, nil
	}

	if execPath, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(execPath), "bulkfsd")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	if path, err := exec.LookPath("bulkfsd"); err == nil {
		return path, nil
	}
	return "", errors.New("bulkfsd not found")
}
