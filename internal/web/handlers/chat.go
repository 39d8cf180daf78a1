package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/lantern-chat/lantern/internal/backend"
	"github.com/lantern-chat/lantern/internal/citation"
	"github.com/lantern-chat/lantern/internal/toast"
	"github.com/lantern-chat/lantern/internal/web/component"
	"github.com/lantern-chat/lantern/internal/web/sse"
)

// MaxMessageLength bounds a single chat message.
const MaxMessageLength = 8192

// ChatBackend is the slice of the backend client the chat handler needs.
// *backend.Client satisfies it.
type ChatBackend interface {
	Chat(ctx context.Context, req backend.ChatRequest, fn backend.StreamFunc) error
}

// ChatConfig contains configuration for the Chat handler.
type ChatConfig struct {
	Logger  *slog.Logger
	Backend ChatBackend
	Toasts  *toast.Manager
}

// Chat proxies chat turns to the RAG backend and streams the reply to the
// browser over SSE. Backend failures surface as toasts, not blank pages.
type Chat struct {
	logger  *slog.Logger
	backend ChatBackend
	toasts  *toast.Manager
}

// NewChat creates a new Chat handler.
// Logger, Backend, and Toasts are required (panics if nil).
func NewChat(cfg ChatConfig) *Chat {
	if cfg.Logger == nil {
		panic("NewChat: logger is required")
	}
	if cfg.Backend == nil {
		panic("NewChat: backend is required")
	}
	if cfg.Toasts == nil {
		panic("NewChat: toasts manager is required")
	}
	return &Chat{
		logger:  cfg.Logger,
		backend: cfg.Backend,
		toasts:  cfg.Toasts,
	}
}

// RegisterRoutes registers chat routes on the given mux.
func (h *Chat) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /chat/send", h.Send)
}

// Send accepts a user message and streams the assistant reply back as SSE
// frames: chunk events while tokens arrive, then a done event carrying the
// final bubble with normalized citations.
func (h *Chat) Send(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}

	message := strings.TrimSpace(r.FormValue("message"))
	if message == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}
	if len(message) > MaxMessageLength {
		http.Error(w, "message too long", http.StatusRequestEntityTooLarge)
		return
	}

	writer, err := sse.NewWriter(w)
	if err != nil {
		h.logger.Error("sse writer setup failed", "error", err)
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	ctx := r.Context()
	req := backend.ChatRequest{
		Messages: []backend.Message{{Role: "user", Content: message}},
	}

	var (
		reply     strings.Builder
		msgID     string
		citations []citation.Display
	)

	err = h.backend.Chat(ctx, req, func(event backend.StreamEvent) error {
		switch event.Type {
		case backend.EventToken:
			reply.WriteString(event.Token)
			return writer.WriteChunk(ctx, msgID, event.Token)
		case backend.EventCitations:
			citations = citation.NormalizeAll(event.Citations)
			return nil
		case backend.EventDone:
			msgID = event.MessageID
			return nil
		case backend.EventError:
			return errors.New(event.ErrMessage)
		}
		return nil
	})
	if err != nil {
		h.streamFailed(ctx, writer, err)
		return
	}

	done := component.MessageBubble(component.MessageProps{
		ID:        msgID,
		Role:      "assistant",
		Content:   reply.String(),
		Citations: citations,
	})
	if err := writer.WriteDone(ctx, done); err != nil {
		h.logger.Debug("chat stream closed before done frame", "error", err)
	}
}

// streamFailed reports a backend failure on both channels: the SSE error
// frame for the in-flight request and a toast for the page.
func (h *Chat) streamFailed(ctx context.Context, writer *sse.Writer, err error) {
	if ctx.Err() != nil {
		// Client went away. Nothing to report.
		return
	}

	h.logger.Error("chat stream failed", "error", err)

	code := "chat_failed"
	message := "The assistant could not answer. Please try again."
	severity := toast.SeverityError
	if errors.Is(err, backend.ErrUnavailable) {
		code = "backend_unavailable"
		message = "The document backend is unreachable."
		severity = toast.SeverityCritical
	}

	h.toasts.Show(message, toast.WithSeverity(severity))
	if writeErr := writer.WriteError(code, message); writeErr != nil {
		h.logger.Debug("failed to write error frame", "error", writeErr)
	}
}
