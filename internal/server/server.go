package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/muurk/daikin-humid/internal/coordinator"
	"github.com/muurk/daikin-humid/internal/deviceclient"
	"github.com/muurk/daikin-humid/internal/logging"
	"github.com/muurk/daikin-humid/internal/protocol"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// Coordinator is the part of the coordinator the API serves.
// *coordinator.Coordinator satisfies it.
type Coordinator interface {
	RequestRefresh(ctx context.Context) (coordinator.Update, error)
	SetControl(ctx context.Context, cmd deviceclient.ControlCommand) (protocol.Response, error)
	CurrentSnapshot() *coordinator.Snapshot
	Status() coordinator.Status
	Subscribe(o coordinator.Observer) coordinator.SubscriptionID
	Unsubscribe(id coordinator.SubscriptionID)
}

// Config holds the server configuration.
type Config struct {
	Listen string // host:port to listen on

	// Gatherer backs /metrics. The endpoint is not mounted when nil.
	Gatherer prometheus.Gatherer
}

// Server serves the local state API.
type Server struct {
	config *Config
	coord  Coordinator
	logger *zap.Logger
	router chi.Router

	httpServer *http.Server
	listener   net.Listener

	wg      sync.WaitGroup
	mu      sync.Mutex
	streams map[*stream]struct{}
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server's logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		s.logger = logging.OrNop(l)
	}
}

// New creates a Server for coord. It does not listen until Start.
func New(config *Config, coord Coordinator, opts ...Option) *Server {
	s := &Server{
		config:  config,
		coord:   coord,
		logger:  zap.NewNop(),
		streams: make(map[*stream]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

// Handler returns the API's root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", s.handleState)
		r.Post("/refresh", s.handleRefresh)
		r.Post("/control", s.handleControl)
		r.Get("/ws", s.handleStream)
	})

	if s.config.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.config.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// Start listens on the configured address and serves until ctx is done,
// then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.config.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Listen, err)
	}
	return s.Serve(ctx, listener)
}

// Serve is Start on an existing listener.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	s.logger.Info("HTTP API listening",
		zap.String("addr", listener.Addr().String()),
		zap.Bool("metrics", s.config.Gatherer != nil),
	)

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.httpServer.Serve(listener)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Shutdown requested, stopping HTTP API...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Shutdown stops accepting requests, closes all streams and waits for
// in-flight handlers until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP API...")

	var err error
	if s.httpServer != nil {
		// Hijacked websocket connections are not tracked by http.Server.
		err = s.httpServer.Shutdown(ctx)
	}

	s.mu.Lock()
	for st := range s.streams {
		s.logger.Debug("Closing active stream", zap.String("remote_addr", st.remoteAddr))
		st.close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("All streams closed gracefully")
	case <-ctx.Done():
		s.logger.Warn("Shutdown timeout, forcing close")
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// GetActiveStreams returns the number of connected websocket clients.
func (s *Server) GetActiveStreams() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.streams)
}

// logRequests logs every request once it completes.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		fields := logging.HTTPRequestFields(r.RemoteAddr, r.Method, r.URL.Path, status, time.Since(start))
		if status >= http.StatusInternalServerError {
			s.logger.Warn("HTTP request", fields...)
			return
		}
		s.logger.Debug("HTTP request", fields...)
	})
}
