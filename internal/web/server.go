// Package web provides the Lantern HTTP server and handlers.
package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/lantern-chat/lantern/internal/audit"
	"github.com/lantern-chat/lantern/internal/backend"
	"github.com/lantern-chat/lantern/internal/mcptools"
	"github.com/lantern-chat/lantern/internal/toast"
	"github.com/lantern-chat/lantern/internal/web/handlers"
	"github.com/lantern-chat/lantern/internal/web/static"
)

// Server is the Lantern HTTP server.
type Server struct {
	mux    *http.ServeMux
	logger *slog.Logger
}

// ServerConfig contains configuration for creating the server.
type ServerConfig struct {
	Logger   *slog.Logger       // Required
	Backend  *backend.Client    // Required: RAG backend client
	Toasts   *toast.Manager     // Required: notification state
	Registry *mcptools.Registry // Required: MCP tool servers
	Audit    *audit.Log         // Required: admin audit trail
}

// NewServer creates a new server with all routes configured.
// Returns an error if required configuration is missing.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if cfg.Backend == nil {
		return nil, errors.New("backend client is required")
	}
	if cfg.Toasts == nil {
		return nil, errors.New("toast manager is required")
	}
	if cfg.Registry == nil {
		return nil, errors.New("tool registry is required")
	}
	if cfg.Audit == nil {
		return nil, errors.New("audit log is required")
	}

	mux := http.NewServeMux()
	s := &Server{
		mux:    mux,
		logger: cfg.Logger,
	}

	health := handlers.NewHealth()
	pages := handlers.NewPages(handlers.PagesConfig{
		Logger:   cfg.Logger,
		Backend:  cfg.Backend,
		Registry: cfg.Registry,
		Audit:    cfg.Audit,
	})
	chat := handlers.NewChat(handlers.ChatConfig{
		Logger:  cfg.Logger,
		Backend: cfg.Backend,
		Toasts:  cfg.Toasts,
	})
	toasts := handlers.NewToasts(handlers.ToastsConfig{
		Logger:  cfg.Logger,
		Manager: cfg.Toasts,
		Audit:   cfg.Audit,
	})
	admin := handlers.NewAdmin(handlers.AdminConfig{
		Logger:   cfg.Logger,
		Backend:  cfg.Backend,
		Registry: cfg.Registry,
		Audit:    cfg.Audit,
		Toasts:   cfg.Toasts,
	})
	graph := handlers.NewGraph(handlers.GraphConfig{
		Logger:  cfg.Logger,
		Backend: cfg.Backend,
	})

	// Health check routes (no middleware, for container probes)
	health.RegisterRoutes(mux)

	pages.RegisterRoutes(mux)
	chat.RegisterRoutes(mux)
	toasts.RegisterRoutes(mux)
	admin.RegisterRoutes(mux)
	graph.RegisterRoutes(mux)

	// Static assets
	mux.Handle("GET /static/", http.StripPrefix("/static/", static.Handler()))

	return s, nil
}

// ServeHTTP implements http.Handler with middleware stack.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.setSecurityHeaders(w)

	// Static files skip request id and logging
	if strings.HasPrefix(r.URL.Path, "/static/") {
		RecoveryMiddleware(s.logger)(s.mux).ServeHTTP(w, r)
		return
	}

	// Recovery → RequestID → Tracing → Logging → Routes
	// Recovery catches panics from any layer below; RequestID must run
	// before Tracing and Logging so request_id is available as a span
	// attribute and in log attributes; the logging writer keeps Flush for
	// the SSE streams.
	var handler http.Handler = s.mux
	handler = LoggingMiddleware(s.logger)(handler)
	handler = TracingMiddleware(handler)
	handler = RequestID(handler)
	handler = RecoveryMiddleware(s.logger)(handler)

	handler.ServeHTTP(w, r)
}

// setSecurityHeaders applies security headers for the web interface.
func (s *Server) setSecurityHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Security-Policy",
		"default-src 'self'; script-src 'self'; style-src 'self'; connect-src 'self'")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
}

// Handler returns the server as an http.Handler for mounting.
func (s *Server) Handler() http.Handler {
	return s
}
