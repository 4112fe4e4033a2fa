// Package server provides the HTTP API server exposing container
// listings and key trees.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "github.com/bucketree/bucketree/internal/errors"
	"github.com/bucketree/bucketree/internal/observability"
	"github.com/bucketree/bucketree/internal/server/handlers"
	"github.com/bucketree/bucketree/internal/server/middleware"
	"github.com/bucketree/bucketree/pkg/provider"
)

// Server is the HTTP API server.
type Server struct {
	host   string
	port   int
	router chi.Router
	http   *http.Server
}

// Timeouts applied to the underlying http.Server.
const (
	defaultReadTimeout  = 30 * time.Second
	defaultWriteTimeout = 30 * time.Second
	defaultIdleTimeout  = 120 * time.Second
)

// New creates a server listening on host:port with the health and
// version endpoints registered. Storage-backed endpoints appear once a
// provider is mounted.
func New(host string, port int) *Server {
	s := &Server{
		host:   host,
		port:   port,
		router: chi.NewRouter(),
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recovery)
	s.router.Use(middleware.Logger)

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		apperrors.WriteError(w, r, http.StatusNotFound,
			apperrors.CodeNotFound, "route not found", nil)
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		apperrors.WriteError(w, r, http.StatusMethodNotAllowed,
			apperrors.CodeMethodNotAllowed, "method not allowed", nil)
	})

	s.router.Get("/health", handlers.HealthHandler)
	s.router.Get("/health/live", handlers.LivenessHandler)
	s.router.Get("/health/ready", handlers.ReadinessHandler)
	s.router.Get("/health/startup", handlers.StartupHandler)
	s.router.Get("/version", handlers.VersionHandler)

	return s
}

// MountProvider registers the storage-backed API routes.
func (s *Server) MountProvider(p provider.Provider) {
	h := handlers.NewTreeHandlers(p)
	s.router.Route("/v1", func(r chi.Router) {
		r.Get("/containers", h.ListContainers)
		r.Get("/containers/{container}/tree", h.GetTree)
	})
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Port returns the configured listen port.
func (s *Server) Port() int {
	return s.port
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.host, s.port)
}

// Start runs the server until the context is cancelled, then shuts it
// down gracefully within the given timeout.
func (s *Server) Start(ctx context.Context, shutdownTimeout time.Duration) error {
	s.http = &http.Server{
		Addr:         s.Addr(),
		Handler:      s.router,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		IdleTimeout:  defaultIdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		observability.CLILogger.Info("Server listening", zap.String("addr", s.Addr()))
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	observability.CLILogger.Info("Server shutting down")
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
