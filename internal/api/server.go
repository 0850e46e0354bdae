// Package api hosts the gateway over HTTP: the streamable MCP endpoint
// plus health and metrics. The stdio entry point bypasses this package
// entirely.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/VBurburan/mailchimp-mcp-server/internal/config"
	"github.com/VBurburan/mailchimp-mcp-server/internal/metrics"
	"github.com/VBurburan/mailchimp-mcp-server/internal/pkg/httputil"
)

// Server hosts the MCP gateway over HTTP.
type Server struct {
	config  config.ServerConfig
	version string
	handler http.Handler
	server  *http.Server
}

// NewServer wires the router around an MCP server. Every request is
// served by the same underlying catalog; the transport runs stateless
// so no session affinity is needed behind a load balancer.
func NewServer(cfg config.ServerConfig, mcpServer *mcp.Server, m *metrics.Metrics, version string) *Server {
	s := &Server{
		config:  cfg,
		version: version,
	}
	s.handler = s.setupRoutes(mcpServer, m)
	return s
}

func (s *Server) setupRoutes(mcpServer *mcp.Server, m *metrics.Metrics) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	// CORS for browser-based MCP clients. The streamable transport
	// uses the Mcp-Session-Id header in both directions.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "Mcp-Session-Id", "Last-Event-ID"},
		ExposedHeaders: []string{"Mcp-Session-Id"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	if m != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{}))
	}

	streamable := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return mcpServer
	}, &mcp.StreamableHTTPOptions{Stateless: true})
	r.Handle("/mcp", streamable)

	return r
}

// handleHealth reports liveness. It never touches the remote API, so
// it stays green even with a bad or missing credential.
//
//	GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]string{
		"status":  "ok",
		"service": "mailchimp-mcp",
		"version": s.version,
	})
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf("%s:%d", s.config.GetHost(), s.config.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.handler,
		// Read/write timeouts stay unset: MCP responses may stream
		// over SSE and must not be cut off mid-stream.
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the HTTP handler for testing
func (s *Server) Handler() http.Handler {
	return s.handler
}
