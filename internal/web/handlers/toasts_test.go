package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/lantern-chat/lantern/internal/audit"
	"github.com/lantern-chat/lantern/internal/log"
	"github.com/lantern-chat/lantern/internal/toast"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestManager(t *testing.T) *toast.Manager {
	t.Helper()
	m := toast.NewManager(toast.Config{Logger: log.NewNop()})
	t.Cleanup(m.Close)
	return m
}

// streamRecorder is a concurrency-safe ResponseWriter with Flusher support,
// for handlers that stream from a goroutine.
type streamRecorder struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	header http.Header
}

func newStreamRecorder() *streamRecorder {
	return &streamRecorder{header: make(http.Header)}
}

func (r *streamRecorder) Header() http.Header { return r.header }

func (r *streamRecorder) Write(b []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buf.Write(b)
}

func (r *streamRecorder) WriteHeader(int) {}

func (r *streamRecorder) Flush() {}

func (r *streamRecorder) String() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buf.String()
}

// waitForBody polls until the recorder body contains want.
func waitForBody(t *testing.T, rec *streamRecorder, want string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Contains(rec.String(), want) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("body never contained %q, got %q", want, rec.String())
}

func TestStreamSendsInitialState(t *testing.T) {
	manager := newTestManager(t)
	manager.Show("Welcome back", toast.Sticky())

	h := NewToasts(ToastsConfig{Logger: log.NewNop(), Manager: manager, Audit: &fakeAuditor{}})

	ctx, cancel := context.WithCancel(t.Context())
	req := httptest.NewRequest(http.MethodGet, "/toasts/stream", nil).WithContext(ctx)
	rec := newStreamRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.Stream(rec, req)
	}()

	waitForBody(t, rec, "Welcome back")
	cancel()
	<-done

	if got := rec.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Errorf("Content-Type = %q, want text/event-stream", got)
	}
	if !strings.Contains(rec.String(), "event: toasts\n") {
		t.Errorf("body = %q, want toasts event", rec.String())
	}
}

func TestStreamPushesUpdates(t *testing.T) {
	manager := newTestManager(t)
	h := NewToasts(ToastsConfig{Logger: log.NewNop(), Manager: manager, Audit: &fakeAuditor{}})

	ctx, cancel := context.WithCancel(t.Context())
	req := httptest.NewRequest(http.MethodGet, "/toasts/stream", nil).WithContext(ctx)
	rec := newStreamRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.Stream(rec, req)
	}()

	waitForBody(t, rec, "toast-region")

	id := manager.Show("Reindex started", toast.Sticky())
	waitForBody(t, rec, "Reindex started")

	manager.Dismiss(id)
	// After dismissal a new frame arrives with an empty region. The old
	// frame still contains the message, so count frames instead.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Count(rec.String(), "event: toasts\n") >= 3 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if got := strings.Count(rec.String(), "event: toasts\n"); got < 3 {
		t.Errorf("toasts frames = %d, want at least 3", got)
	}

	cancel()
	<-done
}

func TestDismissEndpoint(t *testing.T) {
	manager := newTestManager(t)
	id := manager.Show("Saved", toast.Sticky())

	h := NewToasts(ToastsConfig{Logger: log.NewNop(), Manager: manager, Audit: &fakeAuditor{}})
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	req := httptest.NewRequest(http.MethodPost, "/toasts/dismiss/"+id, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if got := len(manager.Toasts()); got != 0 {
		t.Errorf("toasts remaining = %d, want 0", got)
	}
}

func TestDismissUnknownID(t *testing.T) {
	manager := newTestManager(t)
	h := NewToasts(ToastsConfig{Logger: log.NewNop(), Manager: manager, Audit: &fakeAuditor{}})
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	req := httptest.NewRequest(http.MethodPost, "/toasts/dismiss/no-such-id", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d for unknown id", rec.Code, http.StatusNoContent)
	}
}

func TestDismissAllEndpoint(t *testing.T) {
	manager := newTestManager(t)
	manager.Show("one", toast.Sticky())
	manager.Show("two", toast.Sticky())

	auditor := &fakeAuditor{}
	h := NewToasts(ToastsConfig{Logger: log.NewNop(), Manager: manager, Audit: auditor})
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	req := httptest.NewRequest(http.MethodPost, "/toasts/dismiss-all", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if got := len(manager.Toasts()); got != 0 {
		t.Errorf("toasts remaining = %d, want 0", got)
	}
	if len(auditor.entries) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(auditor.entries))
	}
	entry := auditor.entries[0]
	if entry.Action != audit.ActionToastsCleared {
		t.Errorf("audit action = %q, want %q", entry.Action, audit.ActionToastsCleared)
	}
	if entry.Detail != "2" {
		t.Errorf("audit detail = %q, want 2", entry.Detail)
	}
	if entry.Actor == "" {
		t.Error("audit actor empty, want remote address")
	}
}

func TestDismissAllEmptyStackNotAudited(t *testing.T) {
	manager := newTestManager(t)
	auditor := &fakeAuditor{}
	h := NewToasts(ToastsConfig{Logger: log.NewNop(), Manager: manager, Audit: auditor})
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	req := httptest.NewRequest(http.MethodPost, "/toasts/dismiss-all", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if got := len(auditor.entries); got != 0 {
		t.Errorf("audit entries = %d, want 0 for empty stack", got)
	}
}

func TestDismissAllAuditFailureStillClears(t *testing.T) {
	manager := newTestManager(t)
	manager.Show("one", toast.Sticky())

	auditor := &fakeAuditor{err: errors.New("disk full")}
	h := NewToasts(ToastsConfig{Logger: log.NewNop(), Manager: manager, Audit: auditor})
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	req := httptest.NewRequest(http.MethodPost, "/toasts/dismiss-all", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d despite audit failure", rec.Code, http.StatusNoContent)
	}
	if got := len(manager.Toasts()); got != 0 {
		t.Errorf("toasts remaining = %d, want 0", got)
	}
}

func TestStreamRequiresFlusher(t *testing.T) {
	manager := newTestManager(t)
	h := NewToasts(ToastsConfig{Logger: log.NewNop(), Manager: manager, Audit: &fakeAuditor{}})

	req := httptest.NewRequest(http.MethodGet, "/toasts/stream", nil)
	inner := httptest.NewRecorder()
	h.Stream(noFlushRecorder{rec: inner}, req)

	if inner.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", inner.Code, http.StatusInternalServerError)
	}
}

// noFlushRecorder hides the Flush method of the wrapped recorder.
type noFlushRecorder struct {
	rec *httptest.ResponseRecorder
}

func (r noFlushRecorder) Header() http.Header         { return r.rec.Header() }
func (r noFlushRecorder) Write(b []byte) (int, error) { return r.rec.Write(b) }
func (r noFlushRecorder) WriteHeader(code int)        { r.rec.WriteHeader(code) }
