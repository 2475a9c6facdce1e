// Package daemon implements bulkfsd: a long-running process that executes
// bulk renames and deletes on behalf of CLI clients over a Unix socket.
//
// The engine itself takes no locks, so the service serialises every
// mutating request with a single mutex. Completed live operations are
// journaled the same way the CLI journals them.
package daemon

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/afero"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	bulkfsv1 "github.com/jamesainslie/bulkfs/pkg/api/bulkfs/v1"
	"github.com/jamesainslie/bulkfs/pkg/bulkfs/engine"
	"github.com/jamesainslie/bulkfs/pkg/bulkfs/filter"
	"github.com/jamesainslie/bulkfs/pkg/bulkfs/journal"
	"github.com/jamesainslie/bulkfs/pkg/bulkfs/listing"
	"github.com/jamesainslie/bulkfs/pkg/bulkfs/logging"
)

var logger = logging.Get("daemon")

// Service implements bulkfsv1.BulkFSServer.
type Service struct {
	bulkfsv1.UnimplementedBulkFSServer

	engine    *engine.Engine
	trash     *engine.Engine
	lister    *listing.Lister
	journal   *journal.Journal
	version   string
	startTime time.Time

	// mu serialises RenameBulk and DeleteBulk.
	mu  sync.Mutex
	ops atomic.Int64

	shutdownMu sync.Mutex
	shutdown   func()
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithTrashEngine sets the engine used for delete requests that ask for
// the system trash. Without it such requests fail.
func WithTrashEngine(e *engine.Engine) ServiceOption {
	return func(s *Service) {
		s.trash = e
	}
}

// WithLister replaces the lister serving List.
func WithLister(l *listing.Lister) ServiceOption {
	return func(s *Service) {
		s.lister = l
	}
}

// WithJournal journals completed live operations.
func WithJournal(j *journal.Journal) ServiceOption {
	return func(s *Service) {
		s.journal = j
	}
}

// WithVersion sets the version reported by Status.
func WithVersion(v string) ServiceOption {
	return func(s *Service) {
		s.version = v
	}
}

// NewService creates a service around eng.
func NewService(eng *engine.Engine, opts ...ServiceOption) *Service {
	s := &Service{
		engine:    eng,
		version:   "dev",
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.lister == nil {
		s.lister = listing.New(afero.NewOsFs(), eng.Resolver())
	}
	return s
}

// SetShutdownFunc installs the function called by the Shutdown RPC.
func (s *Service) SetShutdownFunc(fn func()) {
	s.shutdownMu.Lock()
	defer s.shutdownMu.Unlock()
	s.shutdown = fn
}

// RenameBulk runs a rename and journals it.
func (s *Service) RenameBulk(ctx context.Context, req *engine.RenameRequest) (*engine.Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, status.FromContextError(err).Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	summary := s.engine.RenameBulk(*req).Summary()
	s.finish(journal.RenameParams(*req), summary)
	return summary, nil
}

// DeleteBulk runs a delete and journals it.
func (s *Service) DeleteBulk(ctx context.Context, req *bulkfsv1.DeleteRequest) (*engine.Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, status.FromContextError(err).Err()
	}

	eng := s.engine
	if req.Trash {
		if s.trash == nil {
			return nil, status.Error(codes.FailedPrecondition, "trash is not available on this daemon")
		}
		eng = s.trash
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	summary := eng.DeleteBulk(req.DeleteRequest).Summary()
	s.finish(journal.DeleteParams(req.DeleteRequest, req.Trash), summary)
	return summary, nil
}

func (s *Service) finish(params journal.Params, summary *engine.Summary) {
	if summary.Error != "" {
		logger.Info("operation rejected", "op", summary.Operation, "root", summary.Root, "error", summary.Error)
		return
	}

	s.ops.Add(1)
	logger.Info("operation finished",
		"op", summary.Operation,
		"root", summary.Root,
		"dry_run", summary.DryRun,
		"failed", summary.Count(string(engine.CounterFailed)),
	)

	if s.journal == nil || summary.DryRun {
		return
	}
	if _, err := s.journal.Record(params, summary); err != nil {
		logger.Warn("journal write failed", "op", summary.Operation, "error", err)
	}
}

// List returns a directory snapshot.
func (s *Service) List(ctx context.Context, req *bulkfsv1.ListRequest) (*listing.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, status.FromContextError(err).Err()
	}

	f, err := filter.New(
		filter.WithHideHidden(req.HideHidden),
		filter.WithIgnoreSuffixes(req.IgnoreSuffixes...),
	)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	sortBy := filter.SortName
	if req.SortBy != "" {
		if sortBy, err = filter.ParseSortField(req.SortBy); err != nil {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
	}

	snap, err := s.lister.List(req.Path, listing.Options{Filter: f, SortBy: sortBy, Descending: req.Descending})
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	return snap, nil
}

// Status describes the daemon.
func (s *Service) Status(_ context.Context, _ *bulkfsv1.StatusRequest) (*bulkfsv1.StatusResponse, error) {
	return &bulkfsv1.StatusResponse{
		PID:           os.Getpid(),
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Operations:    s.ops.Load(),
		BaseDir:       s.engine.Resolver().Base(),
	}, nil
}

// Shutdown asks the server to stop after the reply is sent.
func (s *Service) Shutdown(_ context.Context, _ *bulkfsv1.ShutdownRequest) (*bulkfsv1.ShutdownResponse, error) {
	s.shutdownMu.Lock()
	fn := s.shutdown
	s.shutdownMu.Unlock()

	if fn == nil {
		return &bulkfsv1.ShutdownResponse{Accepted: false}, nil
	}

	logger.Info("shutdown requested")
	go fn()
	return &bulkfsv1.ShutdownResponse{Accepted: true}, nil
}

var _ bulkfsv1.BulkFSServer = (*Service)(nil)
