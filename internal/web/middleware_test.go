package web

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/goleak"

	"github.com/lantern-chat/lantern/internal/log"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestRequestIDGenerated(t *testing.T) {
	var gotID string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if gotID == "" {
		t.Error("request id not in context")
	}
	if header := rec.Header().Get("X-Request-Id"); header != gotID {
		t.Errorf("X-Request-Id = %q, want %q", header, gotID)
	}
}

func TestRequestIDPropagated(t *testing.T) {
	var gotID string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "upstream-id")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if gotID != "upstream-id" {
		t.Errorf("request id = %q, want upstream-id", gotID)
	}
}

func TestGetRequestIDMissing(t *testing.T) {
	if _, ok := GetRequestID(t.Context()); ok {
		t.Error("GetRequestID() ok = true on empty context, want false")
	}
}

// installSpanRecorder swaps the global tracer provider for one backed by an
// in-memory recorder and restores the original on cleanup.
func installSpanRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return recorder
}

func spanAttributes(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := make(map[attribute.Key]attribute.Value, len(span.Attributes()))
	for _, kv := range span.Attributes() {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestTracingMiddlewareRecordsSpan(t *testing.T) {
	recorder := installSpanRecorder(t)

	handler := RequestID(TracingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/toasts/dismiss-all", nil))

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("recorded spans = %d, want 1", len(spans))
	}
	span := spans[0]
	if span.Name() != "POST /toasts/dismiss-all" {
		t.Errorf("span name = %q, want %q", span.Name(), "POST /toasts/dismiss-all")
	}

	attrs := spanAttributes(span)
	if got := attrs["http.method"].AsString(); got != http.MethodPost {
		t.Errorf("http.method = %q, want POST", got)
	}
	if got := attrs["http.status_code"].AsInt64(); got != http.StatusNoContent {
		t.Errorf("http.status_code = %d, want 204", got)
	}
	if got := attrs["request_id"].AsString(); got == "" {
		t.Error("request_id attribute missing from span")
	}
}

func TestTracingMiddlewareMarksServerErrors(t *testing.T) {
	recorder := installSpanRecorder(t)

	handler := TracingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend gone", http.StatusBadGateway)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/graph/data", nil))

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("recorded spans = %d, want 1", len(spans))
	}
	if got := spans[0].Status().Code; got != codes.Error {
		t.Errorf("span status = %v, want Error", got)
	}
}

func TestLoggingMiddlewarePreservesFlush(t *testing.T) {
	var flushed bool
	handler := LoggingMiddleware(log.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			t.Fatal("writer lost Flusher support")
		}
		_, _ = w.Write([]byte("data"))
		flusher.Flush()
		flushed = true
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if !flushed {
		t.Error("handler did not flush")
	}
}

func TestLoggingWriterCapturesStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	wrapper := &loggingWriter{ResponseWriter: rec}

	wrapper.WriteHeader(http.StatusTeapot)
	_, _ = wrapper.Write([]byte("short and stout"))

	if wrapper.statusCode != http.StatusTeapot {
		t.Errorf("statusCode = %d, want %d", wrapper.statusCode, http.StatusTeapot)
	}
	if wrapper.bytesWritten != 15 {
		t.Errorf("bytesWritten = %d, want 15", wrapper.bytesWritten)
	}
}

func TestLoggingWriterDefaultsStatus(t *testing.T) {
	wrapper := &loggingWriter{ResponseWriter: httptest.NewRecorder()}
	_, _ = wrapper.Write([]byte("x"))
	if wrapper.statusCode != http.StatusOK {
		t.Errorf("statusCode = %d, want 200", wrapper.statusCode)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := RecoveryMiddleware(log.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestRecoveryAfterHeadersSent(t *testing.T) {
	handler := RecoveryMiddleware(log.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("partial"))
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	// The 200 stands: there is nothing safe to write after a partial body.
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if got := rec.Body.String(); got != "partial" {
		t.Errorf("body = %q, want partial body only", got)
	}
}
