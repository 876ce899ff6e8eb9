package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"mercator-hq/rulescript/pkg/config"
)

// ErrAlreadyRunning is returned by Start on a running server.
var ErrAlreadyRunning = errors.New("server is already running")

// Config contains HTTP server settings.
type Config struct {
	ListenAddress     string
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
}

// FromServerConfig converts the server section of the application config.
func FromServerConfig(cfg config.ServerConfig) Config {
	return Config{
		ListenAddress:     cfg.ListenAddress,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ShutdownTimeout:   cfg.ShutdownTimeout,
	}
}

// Server serves probes, metrics and the decision API.
type Server struct {
	config     Config
	mux        *http.ServeMux
	logger     *slog.Logger
	httpServer *http.Server

	mu        sync.RWMutex
	isRunning bool
	addr      net.Addr
}

// New creates a server. Routes are added with Handle before Start.
func New(cfg Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ReadHeaderTimeout <= 0 {
		cfg.ReadHeaderTimeout = config.DefaultServerReadHeaderTimeout
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = config.DefaultServerShutdownTimeout
	}

	return &Server{
		config: cfg,
		mux:    http.NewServeMux(),
		logger: logger.With("component", "server"),
	}
}

// Mux returns the underlying mux for packages that register their own routes.
func (s *Server) Mux() *http.ServeMux {
	return s.mux
}

// Handle registers a handler for pattern.
func (s *Server) Handle(pattern string, handler http.Handler) {
	s.mux.Handle(pattern, handler)
}

// Handler returns the mux wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	var handler http.Handler = s.mux
	handler = RecoveryMiddleware(s.logger)(handler)
	handler = LoggingMiddleware(s.logger)(handler)
	handler = RequestIDMiddleware(handler)
	return handler
}

// Start listens on the configured address and serves until ctx is
// cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}

	ln, err := net.Listen("tcp", s.config.ListenAddress)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", s.config.ListenAddress, err)
	}

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
	}
	s.addr = ln.Addr()
	s.isRunning = true
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "address", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server error: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.setStopped()
		return err
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown stops accepting connections and waits for in-flight requests,
// at most ShutdownTimeout.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.RLock()
	srv, running := s.httpServer, s.isRunning
	s.mu.RUnlock()
	if !running {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down server", "timeout", s.config.ShutdownTimeout.String())
	err := srv.Shutdown(shutdownCtx)
	s.setStopped()
	if err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	return nil
}

// IsRunning reports whether the server is serving.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Addr returns the bound address while running, or the configured one.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.addr != nil {
		return s.addr.String()
	}
	return s.config.ListenAddress
}

func (s *Server) setStopped() {
	s.mu.Lock()
	s.isRunning = false
	s.mu.Unlock()
}
