package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"
)

// noFlushWriter is a ResponseWriter without Flusher support.
type noFlushWriter struct {
	http.ResponseWriter
}

func TestNewWriterRequiresFlusher(t *testing.T) {
	rec := httptest.NewRecorder()
	if _, err := NewWriter(noFlushWriter{rec}); err == nil {
		t.Fatal("NewWriter() error = nil, want error for non-flushing writer")
	}
}

func TestNewWriterSetsHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	if _, err := NewWriter(rec); err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}

	headers := map[string]string{
		"Content-Type":      "text/event-stream",
		"Cache-Control":     "no-cache",
		"X-Accel-Buffering": "no",
	}
	for key, want := range headers {
		if got := rec.Header().Get(key); got != want {
			t.Errorf("header %s = %q, want %q", key, got, want)
		}
	}
}

func TestWriteEvent(t *testing.T) {
	rec := httptest.NewRecorder()
	w, err := NewWriter(rec)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}

	node := h.Div(h.ID("toast-region"), g.Text("hello"))
	if err := w.WriteEvent(t.Context(), "toasts", node); err != nil {
		t.Fatalf("WriteEvent() error = %v", err)
	}

	body := rec.Body.String()
	if !strings.HasPrefix(body, "event: toasts\n") {
		t.Errorf("body = %q, want event: toasts prefix", body)
	}
	if !strings.Contains(body, `data: <div id="toast-region">hello</div>`) {
		t.Errorf("body = %q, missing rendered component", body)
	}
	if !strings.HasSuffix(body, "\n\n") {
		t.Errorf("body = %q, want blank line terminator", body)
	}
}

func TestWriteEventMultiline(t *testing.T) {
	rec := httptest.NewRecorder()
	w, err := NewWriter(rec)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}

	node := g.Raw("line one\nline two")
	if err := w.WriteEvent(t.Context(), "done", node); err != nil {
		t.Fatalf("WriteEvent() error = %v", err)
	}

	body := rec.Body.String()
	if !strings.Contains(body, "data: line one\ndata: line two\n") {
		t.Errorf("body = %q, want each line data-prefixed", body)
	}
}

func TestWriteEventCanceledContext(t *testing.T) {
	rec := httptest.NewRecorder()
	w, err := NewWriter(rec)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	if err := w.WriteEvent(ctx, "toasts", g.Text("x")); err == nil {
		t.Fatal("WriteEvent() error = nil, want context error")
	}
	if rec.Body.Len() != 0 {
		t.Errorf("body = %q, want empty after canceled context", rec.Body.String())
	}
}

func TestWriteChunkEscapes(t *testing.T) {
	rec := httptest.NewRecorder()
	w, err := NewWriter(rec)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}

	if err := w.WriteChunk(t.Context(), "m1", `<script>alert("x")</script>`); err != nil {
		t.Fatalf("WriteChunk() error = %v", err)
	}

	body := rec.Body.String()
	if strings.Contains(body, "<script>") {
		t.Errorf("body = %q, contains unescaped script tag", body)
	}
	if !strings.Contains(body, "&lt;script&gt;") {
		t.Errorf("body = %q, missing escaped content", body)
	}
}

func TestWriteComment(t *testing.T) {
	rec := httptest.NewRecorder()
	w, err := NewWriter(rec)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}

	if err := w.WriteComment("keepalive"); err != nil {
		t.Fatalf("WriteComment() error = %v", err)
	}
	if got := rec.Body.String(); got != ": keepalive\n\n" {
		t.Errorf("body = %q, want comment frame", got)
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	w, err := NewWriter(rec)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}

	if err := w.WriteError("backend_unavailable", "upstream is down"); err != nil {
		t.Fatalf("WriteError() error = %v", err)
	}

	body := rec.Body.String()
	if !strings.HasPrefix(body, "event: error\n") {
		t.Errorf("body = %q, want error event", body)
	}
	if !strings.Contains(body, `"code":"backend_unavailable"`) {
		t.Errorf("body = %q, missing error code", body)
	}
}
