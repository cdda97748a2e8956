// Package api implements app.Runner for the swap API server.
package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/propellerswap/propeller/pkg/app/bootstrap"
	apphttp "github.com/propellerswap/propeller/pkg/app/http"
	"github.com/propellerswap/propeller/pkg/config"
	"github.com/propellerswap/propeller/pkg/swap"
)

const (
	defaultHTTPMiddlewareTimeout = 60 * time.Second
	defaultHTTPReadTimeout       = 15 * time.Second
	defaultHTTPWriteTimeout      = 15 * time.Second
	defaultHTTPIdleTimeout       = 60 * time.Second
)

// Server holds configuration for the API process.
type Server struct {
	cfg *config.Config
}

// NewServer initializes a new API Server.
func NewServer(cfg *config.Config) *Server {
	return &Server{cfg: cfg}
}

// Run serves the API until an OS shutdown signal arrives. A swap still in
// flight at shutdown is cancelled so its subscriptions are released and its
// final state journaled.
func (s *Server) Run() error {
	if s.cfg == nil {
		return fmt.Errorf("nil config")
	}
	cfg := s.cfg

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := config.NewLogger(cfg.Logging, "api")
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting propeller API server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port))

	rt, err := bootstrap.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("initialize runtime: %w", err)
	}
	defer rt.Close()

	router := NewRouter(rt, cfg.Monitoring.Enabled, logger)
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  defaultHTTPReadTimeout,
		WriteTimeout: defaultHTTPWriteTimeout,
		IdleTimeout:  defaultHTTPIdleTimeout,
	}

	err = apphttp.ServeAndWait(ctx, logger, httpServer, cfg.Shutdown.Timeout)
	cancelInFlight(rt.Orchestrator, cfg.Shutdown.Timeout, logger)
	return err
}

// NewRouter builds the HTTP routes over a runtime.
func NewRouter(rt *bootstrap.Runtime, withMetrics bool, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(defaultHTTPMiddlewareTimeout))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := rt.Ready(r.Context()); err != nil {
			logger.Warn("Readiness check failed", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("NOT READY"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("READY"))
	})

	if withMetrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	RegisterRoutes(r, NewSwapper(rt.Orchestrator), rt.Store, rt.Balances, rt.Catalog, logger)
	return r
}

// orchestratorSwapper exposes an orchestrator through snapshots only.
type orchestratorSwapper struct {
	o *swap.Orchestrator
}

// NewSwapper adapts o to Swapper.
func NewSwapper(o *swap.Orchestrator) Swapper {
	return &orchestratorSwapper{o: o}
}

func (s *orchestratorSwapper) Start(ctx context.Context, req swap.Request) (swap.Snapshot, error) {
	exec, err := s.o.Submit(ctx, req)
	if err != nil {
		return swap.Snapshot{}, err
	}
	return exec.Snapshot(), nil
}

func (s *orchestratorSwapper) Current() (swap.Snapshot, bool) {
	exec := s.o.Current()
	if exec == nil {
		return swap.Snapshot{}, false
	}
	return exec.Snapshot(), true
}

func cancelInFlight(o *swap.Orchestrator, timeout time.Duration, logger *zap.Logger) {
	exec := o.Current()
	if exec == nil || exec.State().Terminal() {
		return
	}
	logger.Warn("Cancelling in-flight swap", zap.String("swap_id", exec.ID))
	exec.Cancel()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if _, err := exec.Wait(ctx); err != nil {
		logger.Info("In-flight swap stopped", zap.String("swap_id", exec.ID), zap.Error(err))
	}
}
