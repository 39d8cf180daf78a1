package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/lantern-chat/lantern/internal/audit"
	"github.com/lantern-chat/lantern/internal/backend"
	"github.com/lantern-chat/lantern/internal/mcptools"
	"github.com/lantern-chat/lantern/internal/toast"
)

// AdminBackend is the slice of the backend client the admin handler needs.
type AdminBackend interface {
	Status(ctx context.Context) (*backend.Status, error)
	Reindex(ctx context.Context) (*backend.ReindexJob, error)
}

// ToolRegistry is the slice of the MCP registry the admin handler needs.
type ToolRegistry interface {
	Servers() []mcptools.ServerState
	SetEnabled(ctx context.Context, name string, enabled bool) error
}

// Auditor records admin actions.
type Auditor interface {
	Append(entry audit.Entry) error
}

// AdminConfig contains configuration for the Admin handler.
type AdminConfig struct {
	Logger   *slog.Logger
	Backend  AdminBackend
	Registry ToolRegistry
	Audit    Auditor
	Toasts   *toast.Manager
}

// Admin handles reindex requests and MCP tool toggles. Every action lands
// in the audit trail and reports its outcome as a toast.
type Admin struct {
	logger   *slog.Logger
	backend  AdminBackend
	registry ToolRegistry
	audit    Auditor
	toasts   *toast.Manager
}

// NewAdmin creates a new Admin handler.
// All fields are required (panics if nil).
func NewAdmin(cfg AdminConfig) *Admin {
	if cfg.Logger == nil {
		panic("NewAdmin: logger is required")
	}
	if cfg.Backend == nil {
		panic("NewAdmin: backend is required")
	}
	if cfg.Registry == nil {
		panic("NewAdmin: registry is required")
	}
	if cfg.Audit == nil {
		panic("NewAdmin: audit log is required")
	}
	if cfg.Toasts == nil {
		panic("NewAdmin: toasts manager is required")
	}
	return &Admin{
		logger:   cfg.Logger,
		backend:  cfg.Backend,
		registry: cfg.Registry,
		audit:    cfg.Audit,
		toasts:   cfg.Toasts,
	}
}

// RegisterRoutes registers admin routes on the given mux.
func (h *Admin) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /admin/reindex", h.Reindex)
	mux.HandleFunc("POST /admin/tools/{name}/enable", h.enableTool(true))
	mux.HandleFunc("POST /admin/tools/{name}/disable", h.enableTool(false))
}

// Reindex asks the backend to rebuild its index.
func (h *Admin) Reindex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	job, err := h.backend.Reindex(ctx)
	if err != nil {
		h.logger.Error("reindex request failed", "error", err)
		h.toasts.Show("Reindex request failed.", toast.WithSeverity(toast.SeverityError))
		h.redirectBack(w, r)
		return
	}

	h.recordAudit(audit.Entry{
		Actor:  actor(r),
		Action: audit.ActionReindexRequested,
		Target: job.JobID,
	})
	h.toasts.Show("Reindex started.")
	h.redirectBack(w, r)
}

// enableTool returns the handler for one direction of the toggle.
func (h *Admin) enableTool(enable bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		name := r.PathValue("name")

		if err := h.registry.SetEnabled(ctx, name, enable); err != nil {
			h.logger.Error("tool toggle failed", "server", name, "enable", enable, "error", err)
			h.toasts.Show("Could not update tool server "+name+".", toast.WithSeverity(toast.SeverityError))
			h.redirectBack(w, r)
			return
		}

		action := audit.ActionToolEnabled
		message := "Tool server " + name + " enabled."
		if !enable {
			action = audit.ActionToolDisabled
			message = "Tool server " + name + " disabled."
		}

		h.recordAudit(audit.Entry{
			Actor:  actor(r),
			Action: action,
			Target: name,
		})
		h.toasts.Show(message)
		h.redirectBack(w, r)
	}
}

// recordAudit appends an entry, degrading to a warning toast if the trail
// itself cannot be written.
func (h *Admin) recordAudit(entry audit.Entry) {
	if err := h.audit.Append(entry); err != nil {
		h.logger.Error("audit append failed", "action", entry.Action, "error", err)
		h.toasts.Show("Action completed but could not be audited.", toast.WithSeverity(toast.SeverityWarning))
	}
}

// redirectBack returns the browser to the admin page after a form post.
func (h *Admin) redirectBack(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// actor identifies the requester for the audit trail. There is no auth
// layer, so the remote address is the best we have.
func actor(r *http.Request) string {
	return r.RemoteAddr
}
