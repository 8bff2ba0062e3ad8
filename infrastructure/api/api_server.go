package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/mark3labs/mcp-go/server"

	"github.com/helixml/codevar"
	apimiddleware "github.com/helixml/codevar/infrastructure/api/middleware"
	v1 "github.com/helixml/codevar/infrastructure/api/v1"
	mcpinternal "github.com/helixml/codevar/internal/mcp"
)

// APIServer provides an HTTP API backed by a codevar Client.
type APIServer struct {
	client  *codevar.Client
	apiKeys []string
	opts    []ServerOption
	version string
	server  *Server
	router  chi.Router
	logger  *slog.Logger
}

// NewAPIServer creates a new APIServer wired to the given Client.
// apiKeys write-protects resetting the session state; searches, source
// lookups and MCP stay open.
func NewAPIServer(client *codevar.Client, apiKeys []string, opts ...ServerOption) *APIServer {
	return &APIServer{
		client:  client,
		apiKeys: apiKeys,
		opts:    opts,
		version: "dev",
		logger:  client.Logger(),
	}
}

// WithVersion sets the version reported by /health and MCP.
func (a *APIServer) WithVersion(version string) *APIServer {
	if version != "" {
		a.version = version
	}
	return a
}

// mountRoutes wires up all routes on the given router.
func (a *APIServer) mountRoutes(router chi.Router) {
	c := a.client

	router.Get("/health", a.health)
	router.Mount("/docs", NewDocsRouter("/docs/openapi.json").Routes())

	variablesRouter := v1.NewVariablesRouter(c, a.apiKeys)
	sourceRouter := v1.NewSourceRouter(c)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(chimiddleware.Timeout(60 * time.Second))
		r.Mount("/variables", variablesRouter.Routes())
		r.Mount("/source", sourceRouter.Routes())
	})

	mcpSrv := mcpinternal.NewServer(c.Search, a.version, a.logger)
	router.Mount("/mcp", server.NewStreamableHTTPServer(mcpSrv.MCPServer()))
}

func (a *APIServer) health(w http.ResponseWriter, _ *http.Request) {
	apimiddleware.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": a.version,
	})
}

// ListenAndServe starts the HTTP server on the given address.
func (a *APIServer) ListenAndServe(addr string) error {
	srv := NewServer(addr, a.logger, a.opts...)
	a.server = &srv
	a.mountRoutes(srv.Router())
	return srv.Start()
}

// Shutdown gracefully shuts down the server.
func (a *APIServer) Shutdown(ctx context.Context) error {
	if a.server == nil {
		return nil
	}
	return a.server.Shutdown(ctx)
}

// Handler returns the full router as an http.Handler for use with custom
// servers and tests.
func (a *APIServer) Handler() http.Handler {
	if a.router == nil {
		srv := NewServer("", a.logger, a.opts...)
		a.mountRoutes(srv.Router())
		a.router = srv.Router()
	}
	return a.router
}
