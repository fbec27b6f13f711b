package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/helixml/taxseq"
	apimiddleware "github.com/helixml/taxseq/infrastructure/api/middleware"
	v1 "github.com/helixml/taxseq/infrastructure/api/v1"
	mcpinternal "github.com/helixml/taxseq/internal/mcp"
)

// APIServer provides an HTTP API backed by a taxseq Client.
type APIServer struct {
	client       *taxseq.Client
	apiKeys      []string
	version      string
	server       *Server
	router       chi.Router
	routerCalled bool
	logger       *slog.Logger
}

// NewAPIServer creates a new APIServer wired to the given Client.
// apiKeys configures write-protection: POST /api/v1/runs requires a valid
// key. Reads, health, metrics and MCP remain open.
func NewAPIServer(client *taxseq.Client, apiKeys []string, version string) *APIServer {
	return &APIServer{
		client:  client,
		apiKeys: apiKeys,
		version: version,
		logger:  client.Logger(),
	}
}

// Router returns the chi router for customization before starting.
// Call this first, add custom middleware with router.Use(), then call MountRoutes().
// If not called, ListenAndServe creates a default router with all standard routes.
func (a *APIServer) Router() chi.Router {
	if a.router != nil {
		return a.router
	}

	a.router = chi.NewRouter()
	a.routerCalled = true
	return a.router
}

// MountRoutes wires up all routes on the router.
func (a *APIServer) MountRoutes() {
	if a.router == nil {
		a.Router()
	}
	a.mountRoutes(a.router)
}

func (a *APIServer) mountRoutes(router chi.Router) {
	c := a.client

	router.Use(apimiddleware.Logging(a.logger))

	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		apimiddleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy", "version": a.version})
	})
	router.Handle("/metrics", promhttp.HandlerFor(c.Gatherer(), promhttp.HandlerOpts{}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(apimiddleware.WriteProtectAuth(a.apiKeys))
		r.Mount("/runs", v1.NewRunsRouter(c).Routes())
	})

	// MCP manages its own streaming responses, so no timeout middleware.
	mcpSrv := mcpinternal.NewServer(c.Runs, c.DefaultBatchSize(), a.version, a.logger)
	router.Mount("/mcp", server.NewStreamableHTTPServer(mcpSrv.MCPServer()))
}

// ListenAndServe starts the HTTP server on the given address.
func (a *APIServer) ListenAndServe(addr string) error {
	srv := NewServer(addr, a.logger)
	a.server = &srv

	if a.routerCalled && a.router != nil {
		srv.Router().Mount("/", a.router)
	} else {
		a.mountRoutes(srv.Router())
	}

	return srv.Start()
}

// Shutdown gracefully shuts down the server.
func (a *APIServer) Shutdown(ctx context.Context) error {
	if a.server == nil {
		return nil
	}
	return a.server.Shutdown(ctx)
}

// Handler returns the router as an http.Handler for use with custom servers.
func (a *APIServer) Handler() http.Handler {
	if a.router == nil {
		a.Router()
		a.MountRoutes()
	}
	return a.router
}
