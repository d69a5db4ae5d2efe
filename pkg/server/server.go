// Package server assembles the emulator's HTTP surface: the vendor-shaped
// public API, the health probe, and the unauthenticated debug surface. It
// owns the session authority, the mission store, the request history, and
// the metrics registry for one emulator instance.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/fieldlinehq/linemock/pkg/auth"
	"github.com/fieldlinehq/linemock/pkg/config"
	"github.com/fieldlinehq/linemock/pkg/logging"
	"github.com/fieldlinehq/linemock/pkg/metrics"
	"github.com/fieldlinehq/linemock/pkg/mission"
	"github.com/fieldlinehq/linemock/pkg/requestlog"
)

// Server is one emulator instance.
type Server struct {
	cfg       *config.Config
	log       *slog.Logger
	authority *auth.Authority
	missions  *mission.Store
	requests  *requestlog.Log
	metrics   *metrics.Metrics

	handler    http.Handler
	httpServer *http.Server
	listener   net.Listener

	mu        sync.RWMutex
	running   bool
	startTime time.Time
}

// Option is a functional option for configuring a Server.
type Option func(*Server)

// WithLogger sets the operational logger for the server.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// New creates a Server from cfg. A nil cfg means the shipped defaults.
func New(cfg *config.Config, opts ...Option) *Server {
	if cfg == nil {
		cfg = config.Default()
	}

	s := &Server{
		cfg:       cfg,
		log:       logging.Nop(),
		missions:  mission.NewStore(),
		metrics:   metrics.New(),
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}

	authOpts := []auth.Option{auth.WithLogger(s.log), auth.WithTTL(cfg.Auth.TTL())}
	if cfg.Auth.SigningKey != "" {
		authOpts = append(authOpts, auth.WithSigningKey([]byte(cfg.Auth.SigningKey)))
	}
	s.authority = auth.NewAuthority(cfg.Auth.Identities, authOpts...)

	maxLog := cfg.MaxRequestLog
	if maxLog <= 0 {
		maxLog = config.DefaultMaxRequestLog
	}
	s.requests = requestlog.New(maxLog)

	mux := http.NewServeMux()
	s.registerRoutes(mux)
	s.handler = s.metrics.Instrument(s.withAccessLog(mux))

	return s
}

// Handler returns the fully assembled HTTP handler. Tests mount it on
// httptest servers directly instead of binding a port.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start binds the configured address and serves in the background. Bind
// failures (port already taken) are reported here, not from the serve
// goroutine.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("server is already running")
	}

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", addr, err)
	}
	s.listener = ln

	s.httpServer = &http.Server{
		Handler:      s.handler,
		ReadTimeout:  time.Duration(s.cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeout) * time.Second,
	}

	s.log.Info("starting HTTP server", "addr", ln.Addr().String())
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.log.Error("HTTP server error", "error", err)
		}
	}()

	s.running = true
	s.startTime = time.Now()
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("HTTP shutdown: %w", err)
	}

	s.running = false
	s.log.Info("server stopped")
	return nil
}

// Addr returns the actual listen address once started, or the configured
// one before that.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
}

// Uptime reports how long this instance has existed.
func (s *Server) Uptime() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Since(s.startTime)
}
