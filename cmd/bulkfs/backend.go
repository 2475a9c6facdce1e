package main

import (
	"context"

	bulkfsv1 "github.com/jamesainslie/bulkfs/pkg/api/bulkfs/v1"
	"github.com/jamesainslie/bulkfs/pkg/bulkfs/config"
	"github.com/jamesainslie/bulkfs/pkg/bulkfs/engine"
	"github.com/jamesainslie/bulkfs/pkg/bulkfs/listing"
	"github.com/jamesainslie/bulkfs/pkg/bulkfs/pathutil"
	"github.com/jamesainslie/bulkfs/pkg/client"
	"github.com/jamesainslie/bulkfs/pkg/daemon"
)

// backend executes operations. *client.Client talks to bulkfsd;
// localBackend runs the same service in-process.
type backend interface {
	RenameBulk(ctx context.Context, req engine.RenameRequest) (*engine.Summary, error)
	DeleteBulk(ctx context.Context, req engine.DeleteRequest, trash bool) (*engine.Summary, error)
	List(ctx context.Context, req bulkfsv1.ListRequest) (*listing.Snapshot, error)
	Close() error
}

// localBackend adapts daemon.Service for direct calls.
type localBackend struct {
	svc *daemon.Service
}

func (b *localBackend) RenameBulk(ctx context.Context, req engine.RenameRequest) (*engine.Summary, error) {
	return b.svc.RenameBulk(ctx, &req)
}

func (b *localBackend) DeleteBulk(ctx context.Context, req engine.DeleteRequest, trash bool) (*engine.Summary, error) {
	return b.svc.DeleteBulk(ctx, &bulkfsv1.DeleteRequest{DeleteRequest: req, Trash: trash})
}

func (b *localBackend) List(ctx context.Context, req bulkfsv1.ListRequest) (*listing.Snapshot, error) {
	return b.svc.List(ctx, &req)
}

func (b *localBackend) Close() error {
	return nil
}

// openBackend connects to a running daemon unless --no-daemon is set, and
// falls back to in-process execution.
func openBackend(ctx context.Context, cfg *config.Config) (backend, error) {
	if !noDaemon && client.IsDaemonRunning(cfg.PIDPath()) {
		c, err := client.ConnectWithContext(ctx, cfg.SocketPath())
		if err == nil {
			cliLog.Debug("using daemon", "socket", cfg.SocketPath())
			printVerbose("using daemon at %s", cfg.SocketPath())
			return c, nil
		}
		cliLog.Warn("daemon not reachable, running in-process", "error", err)
		printVerbose("daemon not reachable (%v), running in-process", err)
	}

	svc, err := daemon.NewServiceFromConfig(cfg, version)
	if err != nil {
		return nil, err
	}
	return &localBackend{svc: svc}, nil
}

// resolvePath makes input absolute against the configured base directory
// so the daemon, whose working directory differs, sees the same path.
func resolvePath(cfg *config.Config, input string) (string, error) {
	resolver, err := pathutil.New(cfg.BaseDir)
	if err != nil {
		return "", err
	}
	return resolver.Resolve(input)
}
