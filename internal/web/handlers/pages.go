package handlers

import (
	"context"
	"log/slog"
	"net/http"

	g "maragu.dev/gomponents"

	"github.com/lantern-chat/lantern/internal/audit"
	"github.com/lantern-chat/lantern/internal/backend"
	"github.com/lantern-chat/lantern/internal/web/component"
)

// DefaultAuditPageSize is how many audit entries the audit page shows.
const DefaultAuditPageSize = 50

// StatusBackend is the slice of the backend client the pages need.
type StatusBackend interface {
	Status(ctx context.Context) (*backend.Status, error)
}

// AuditReader reads back the audit trail.
type AuditReader interface {
	Recent(n int) ([]audit.Entry, error)
}

// PagesConfig contains configuration for the Pages handler.
type PagesConfig struct {
	Logger   *slog.Logger
	Backend  StatusBackend
	Registry ToolRegistry
	Audit    AuditReader
}

// Pages renders the full-page views.
type Pages struct {
	logger   *slog.Logger
	backend  StatusBackend
	registry ToolRegistry
	audit    AuditReader
}

// NewPages creates a new Pages handler.
// All fields are required (panics if nil).
func NewPages(cfg PagesConfig) *Pages {
	if cfg.Logger == nil {
		panic("NewPages: logger is required")
	}
	if cfg.Backend == nil {
		panic("NewPages: backend is required")
	}
	if cfg.Registry == nil {
		panic("NewPages: registry is required")
	}
	if cfg.Audit == nil {
		panic("NewPages: audit log is required")
	}
	return &Pages{
		logger:   cfg.Logger,
		backend:  cfg.Backend,
		registry: cfg.Registry,
		audit:    cfg.Audit,
	}
}

// RegisterRoutes registers page routes on the given mux.
func (h *Pages) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.Chat)
	mux.HandleFunc("GET /graph", h.Graph)
	mux.HandleFunc("GET /admin", h.Admin)
	mux.HandleFunc("GET /audit", h.Audit)
}

// Chat renders the main chat page.
func (h *Pages) Chat(w http.ResponseWriter, r *http.Request) {
	h.render(w, "Lantern", "/", component.ChatPage(nil))
}

// Graph renders the knowledge graph explorer.
func (h *Pages) Graph(w http.ResponseWriter, r *http.Request) {
	h.render(w, "Lantern · Graph", "/graph", component.GraphPage())
}

// Admin renders backend status and the tool server table. A dead backend
// degrades to an error panel instead of failing the page.
func (h *Pages) Admin(w http.ResponseWriter, r *http.Request) {
	var status backend.Status
	statusPtr, err := h.backend.Status(r.Context())
	if err != nil {
		h.logger.Warn("backend status unavailable", "error", err)
	} else {
		status = *statusPtr
	}

	h.render(w, "Lantern · Admin", "/admin",
		component.AdminPage(status, err, h.registry.Servers()))
}

// Audit renders the recent audit trail.
func (h *Pages) Audit(w http.ResponseWriter, r *http.Request) {
	entries, err := h.audit.Recent(DefaultAuditPageSize)
	if err != nil {
		h.logger.Error("audit read failed", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.render(w, "Lantern · Audit", "/audit", component.AuditPage(entries))
}

// render writes a full page inside the layout shell.
func (h *Pages) render(w http.ResponseWriter, title, activePath string, content ...g.Node) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	page := component.Layout(component.LayoutProps{
		Title: title,
		Nav:   component.DefaultNav(activePath),
	}, content...)

	if err := page.Render(w); err != nil {
		h.logger.Error("page render failed", "title", title, "error", err)
	}
}
