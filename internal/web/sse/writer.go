// Package sse provides Server-Sent Events utilities for streaming responses.
package sse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"strings"

	g "maragu.dev/gomponents"
)

// Writer wraps an http.ResponseWriter for SSE streaming.
type Writer struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewWriter creates a new SSE writer and sets appropriate headers.
func NewWriter(w http.ResponseWriter) (*Writer, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("response writer does not support flusher interface")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	return &Writer{w: w, flusher: flusher}, nil
}

// writeSSEData writes data in SSE format, handling multi-line content.
// Each line of data must be prefixed with "data: ".
func (w *Writer) writeSSEData(event, content string) error {
	if _, err := fmt.Fprintf(w.w, "event: %s\n", event); err != nil {
		return fmt.Errorf("write event name: %w", err)
	}

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		if _, err := fmt.Fprintf(w.w, "data: %s\n", line); err != nil {
			return fmt.Errorf("write data line: %w", err)
		}
	}

	// Empty line terminates the event
	if _, err := w.w.Write([]byte("\n")); err != nil {
		return fmt.Errorf("write terminator: %w", err)
	}

	w.flusher.Flush()
	return nil
}

// WriteEvent sends a named event with rendered HTML content.
// The SSE swap on the client expects raw HTML in the data field, not JSON.
func (w *Writer) WriteEvent(ctx context.Context, event string, node g.Node) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("context canceled: %w", ctx.Err())
	default:
	}

	var buf bytes.Buffer
	if err := node.Render(&buf); err != nil {
		return fmt.Errorf("render component: %w", err)
	}

	return w.writeSSEData(event, buf.String())
}

// WriteChunk sends a streaming text chunk targeted at a message element.
// The text is HTML-escaped to prevent XSS.
func (w *Writer) WriteChunk(ctx context.Context, msgID, text string) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("context canceled: %w", ctx.Err())
	default:
	}

	escaped := html.EscapeString(text)
	content := fmt.Sprintf(`<span data-msg="%s">%s</span>`, html.EscapeString(msgID), escaped)
	return w.writeSSEData("chunk", content)
}

// WriteDone sends the final message event.
func (w *Writer) WriteDone(ctx context.Context, node g.Node) error {
	return w.WriteEvent(ctx, "done", node)
}

// WriteComment sends an SSE comment line, used as a keepalive.
func (w *Writer) WriteComment(text string) error {
	if _, err := fmt.Fprintf(w.w, ": %s\n\n", text); err != nil {
		return fmt.Errorf("write comment: %w", err)
	}
	w.flusher.Flush()
	return nil
}

// WriteError sends an error event with a JSON payload.
func (w *Writer) WriteError(code, message string) error {
	payload := map[string]string{"code": code, "message": message}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}

	if _, err := fmt.Fprintf(w.w, "event: error\ndata: %s\n\n", data); err != nil {
		return fmt.Errorf("write error: %w", err)
	}
	w.flusher.Flush()
	return nil
}
