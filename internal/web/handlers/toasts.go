package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/lantern-chat/lantern/internal/audit"
	"github.com/lantern-chat/lantern/internal/toast"
	"github.com/lantern-chat/lantern/internal/web/component"
	"github.com/lantern-chat/lantern/internal/web/sse"
)

// keepaliveInterval is how often the toast stream emits a comment frame so
// proxies don't drop an idle connection.
const keepaliveInterval = 25 * time.Second

// ToastsConfig contains configuration for the Toasts handler.
type ToastsConfig struct {
	Logger  *slog.Logger
	Manager *toast.Manager
	Audit   Auditor
}

// Toasts streams the notification region over SSE and accepts dismissals.
type Toasts struct {
	logger  *slog.Logger
	manager *toast.Manager
	audit   Auditor
}

// NewToasts creates a new Toasts handler.
// All fields are required (panics if nil).
func NewToasts(cfg ToastsConfig) *Toasts {
	if cfg.Logger == nil {
		panic("NewToasts: logger is required")
	}
	if cfg.Manager == nil {
		panic("NewToasts: manager is required")
	}
	if cfg.Audit == nil {
		panic("NewToasts: audit is required")
	}
	return &Toasts{
		logger:  cfg.Logger,
		manager: cfg.Manager,
		audit:   cfg.Audit,
	}
}

// RegisterRoutes registers toast routes on the given mux.
func (h *Toasts) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /toasts/stream", h.Stream)
	mux.HandleFunc("POST /toasts/dismiss/{id}", h.Dismiss)
	mux.HandleFunc("POST /toasts/dismiss-all", h.DismissAll)
}

// Stream pushes the rendered toast region to the client on every change.
// The first frame carries the current state so a reconnecting client
// catches up immediately.
func (h *Toasts) Stream(w http.ResponseWriter, r *http.Request) {
	writer, err := sse.NewWriter(w)
	if err != nil {
		h.logger.Error("sse writer setup failed", "error", err)
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	ctx := r.Context()

	// Latest-wins buffer: if the client is slow we only care about the
	// newest snapshot, not every intermediate one.
	updates := make(chan []toast.Toast, 1)
	cancel := h.manager.Subscribe(func(toasts []toast.Toast) {
		select {
		case updates <- toasts:
		default:
			select {
			case <-updates:
			default:
			}
			select {
			case updates <- toasts:
			default:
			}
		}
	})
	defer cancel()

	if err := writer.WriteEvent(ctx, "toasts", component.ToastRegion(h.manager.Toasts())); err != nil {
		return
	}

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case toasts := <-updates:
			if err := writer.WriteEvent(ctx, "toasts", component.ToastRegion(toasts)); err != nil {
				h.logger.Debug("toast stream closed", "error", err)
				return
			}
		case <-keepalive.C:
			if err := writer.WriteComment("keepalive"); err != nil {
				return
			}
		}
	}
}

// Dismiss removes one toast. Unknown ids are a no-op and still return 204,
// the client may race a timer that already fired.
func (h *Toasts) Dismiss(w http.ResponseWriter, r *http.Request) {
	h.manager.Dismiss(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

// DismissAll clears the whole stack. Bulk dismissal lands in the audit
// trail because it can silence warnings other users have not seen yet;
// clearing an already-empty stack is not recorded.
func (h *Toasts) DismissAll(w http.ResponseWriter, r *http.Request) {
	cleared := len(h.manager.Toasts())
	h.manager.DismissAll()

	if cleared > 0 {
		entry := audit.Entry{
			Actor:  actor(r),
			Action: audit.ActionToastsCleared,
			Detail: strconv.Itoa(cleared),
		}
		if err := h.audit.Append(entry); err != nil {
			h.logger.Error("audit append failed", "action", entry.Action, "error", err)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
