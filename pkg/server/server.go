// Package server exposes the render pipeline over HTTP.
//
// Routes:
//
//	GET  /health                  liveness and version
//	POST /render                  render one order and store its files
//	GET  /orders                  most recent order statuses (?limit=N)
//	GET  /orders/{orderId}        one order's status
//	GET  /out/{orderId}/{file}    stored book.pdf, cover.pdf or thumb.jpg
//
// Renders run synchronously inside the request. At most one render per
// order id runs at a time; a second request for the same order gets 409.
package server

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/herobook/pkg/locks"
	"github.com/matzehuels/herobook/pkg/pipeline"
	"github.com/matzehuels/herobook/pkg/status"
	"github.com/matzehuels/herobook/pkg/storage"
)

const (
	// ServiceName is reported by /health.
	ServiceName = "herobook"

	// MaxRequestBytes caps a POST /render body.
	MaxRequestBytes = 1 << 20

	// DefaultListLimit applies to GET /orders without ?limit.
	DefaultListLimit = 50

	shutdownTimeout = 30 * time.Second
)

// Config wires a Server.
type Config struct {
	Runner *pipeline.Runner
	Status status.Store

	// Output holds rendered files and serves /out. Uploader defaults to it.
	Output   *storage.Local
	Uploader storage.Uploader
	Fallback *storage.Local

	// Defaults are copied into every render; Request is ignored.
	Defaults pipeline.Options

	Logger *log.Logger
}

// Server handles HTTP requests. Create with New.
type Server struct {
	runner   *pipeline.Runner
	status   status.Store
	output   *storage.Local
	uploader storage.Uploader
	fallback *storage.Local
	defaults pipeline.Options
	locks    locks.Keyed
	logger   *log.Logger
	router   chi.Router
}

// New builds a Server and its routes.
func New(cfg Config) *Server {
	s := &Server{
		runner:   cfg.Runner,
		status:   cfg.Status,
		output:   cfg.Output,
		uploader: cfg.Uploader,
		fallback: cfg.Fallback,
		defaults: cfg.Defaults,
		logger:   cfg.Logger,
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.status == nil {
		s.status = status.NewMemoryStore()
	}
	if s.uploader == nil && s.output != nil {
		s.uploader = s.output
	}
	s.defaults.Request = nil
	s.defaults.Logger = s.logger

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Post("/render", s.handleRender)
	r.Get("/orders", s.handleListOrders)
	r.Get("/orders/{orderId}", s.handleGetOrder)
	r.Get("/out/{orderId}/{file}", s.handleOutput)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "", "route not found")
	})
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully, letting in-flight renders finish.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
