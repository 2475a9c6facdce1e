package daemon

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"google.golang.org/grpc"

	bulkfsv1 "github.com/jamesainslie/bulkfs/pkg/api/bulkfs/v1"
)

// Config holds daemon server configuration.
type Config struct {
	SocketPath string
}

// Server is the bulkfsd gRPC server.
type Server struct {
	socketPath string
	grpc       *grpc.Server
	listener   net.Listener
	closeOnce  sync.Once
	closeErr   error
}

// NewServer listens on cfg.SocketPath, replacing a stale socket file, and
// registers svc.
func NewServer(cfg Config, svc *Service) (*Server, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.SocketPath), 0o755); err != nil {
		return nil, err
	}
	if err := os.RemoveAll(cfg.SocketPath); err != nil {
		return nil, err
	}

	var lc net.ListenConfig
	listener, err := lc.Listen(context.Background(), "unix", cfg.SocketPath)
	if err != nil {
		return nil, err
	}

	srv := NewServerWithListener(listener, svc)
	srv.socketPath = cfg.SocketPath
	return srv, nil
}

// NewServerWithListener serves svc on an existing listener.
func NewServerWithListener(listener net.Listener, svc *Service) *Server {
	srv := &Server{
		grpc:     grpc.NewServer(grpc.UnaryInterceptor(logCalls)),
		listener: listener,
	}
	bulkfsv1.RegisterBulkFSServer(srv.grpc, svc)
	svc.SetShutdownFunc(func() { _ = srv.Close() })
	return srv
}

// Serve blocks until the server stops.
func (s *Server) Serve() error {
	logger.Info("serving", "addr", s.listener.Addr().String())
	return s.grpc.Serve(s.listener)
}

// Close stops the server gracefully and removes the socket. It is safe to
// call more than once.
func (s *Server) Close() error {
	s.closeOnce.Do(func() {
		s.grpc.GracefulStop()
		if s.socketPath != "" {
			if err := os.RemoveAll(s.socketPath); err != nil {
				s.closeErr = err
			}
		}
	})
	return s.closeErr
}

func logCalls(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	if err != nil {
		logger.Warn("rpc failed", "method", info.FullMethod, "duration", time.Since(start), "error", err)
		return resp, err
	}
	logger.Debug("rpc", "method", info.FullMethod, "duration", time.Since(start))
	return resp, nil
}
