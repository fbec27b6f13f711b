// Package api provides the HTTP API server.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	apimiddleware "github.com/helixml/taxseq/infrastructure/api/middleware"
)

// Server represents the HTTP API server.
type Server struct {
	router     chi.Router
	httpServer *http.Server
	logger     *slog.Logger
	addr       string
}

// ServerOption configures a Server.
type ServerOption func(*serverConfig)

type serverConfig struct {
	allowedOrigins []string
}

// WithAllowedOrigins sets the origins allowed by CORS. The default allows
// any origin.
func WithAllowedOrigins(origins ...string) ServerOption {
	return func(c *serverConfig) {
		c.allowedOrigins = origins
	}
}

// NewServer creates a new API Server.
func NewServer(addr string, logger *slog.Logger, opts ...ServerOption) Server {
	if logger == nil {
		logger = slog.Default()
	}

	cfg := serverConfig{allowedOrigins: []string{"*"}}
	for _, opt := range opts {
		opt(&cfg)
	}

	router := chi.NewRouter()

	// Timeout is applied per route group: run creation and MCP streaming
	// outlive any fixed request deadline.
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", apimiddleware.APIKeyHeader, "Mcp-Session-Id"},
		ExposedHeaders: []string{"Location", "Mcp-Session-Id"},
		MaxAge:         300,
	}))

	return Server{
		router: router,
		addr:   addr,
		logger: logger,
	}
}

// Router returns the chi router for registering routes.
func (s Server) Router() chi.Router {
	return s.router
}

// Start starts the HTTP server. WriteTimeout is left unset since a run is
// answered only once it finishes.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.logger.Info("starting HTTP server", slog.String("addr", s.addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the server address.
func (s Server) Addr() string {
	return s.addr
}
