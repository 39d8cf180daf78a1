package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lantern-chat/lantern/internal/audit"
	"github.com/lantern-chat/lantern/internal/backend"
	"github.com/lantern-chat/lantern/internal/log"
	"github.com/lantern-chat/lantern/internal/mcptools"
	"github.com/lantern-chat/lantern/internal/toast"
)

type fakeAdminBackend struct {
	status     *backend.Status
	statusErr  error
	job        *backend.ReindexJob
	reindexErr error
}

func (b *fakeAdminBackend) Status(context.Context) (*backend.Status, error) {
	return b.status, b.statusErr
}

func (b *fakeAdminBackend) Reindex(context.Context) (*backend.ReindexJob, error) {
	return b.job, b.reindexErr
}

type fakeRegistry struct {
	states    []mcptools.ServerState
	toggleErr error
	toggled   map[string]bool
}

func (r *fakeRegistry) Servers() []mcptools.ServerState { return r.states }

func (r *fakeRegistry) SetEnabled(_ context.Context, name string, enabled bool) error {
	if r.toggleErr != nil {
		return r.toggleErr
	}
	if r.toggled == nil {
		r.toggled = make(map[string]bool)
	}
	r.toggled[name] = enabled
	return nil
}

type fakeAuditor struct {
	entries []audit.Entry
	err     error
}

func (a *fakeAuditor) Append(entry audit.Entry) error {
	if a.err != nil {
		return a.err
	}
	a.entries = append(a.entries, entry)
	return nil
}

func newAdminHandler(t *testing.T, be *fakeAdminBackend, reg *fakeRegistry, auditor *fakeAuditor) (*Admin, *toast.Manager) {
	t.Helper()
	manager := newTestManager(t)
	h := NewAdmin(AdminConfig{
		Logger:   log.NewNop(),
		Backend:  be,
		Registry: reg,
		Audit:    auditor,
		Toasts:   manager,
	})
	return h, manager
}

func postTo(h *Admin, path string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	req := httptest.NewRequest(http.MethodPost, path, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestReindexSuccess(t *testing.T) {
	auditor := &fakeAuditor{}
	h, manager := newAdminHandler(t,
		&fakeAdminBackend{job: &backend.ReindexJob{JobID: "job-7"}},
		&fakeRegistry{}, auditor)

	rec := postTo(h, "/admin/reindex")

	if rec.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if len(auditor.entries) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(auditor.entries))
	}
	if auditor.entries[0].Action != audit.ActionReindexRequested {
		t.Errorf("action = %q, want %q", auditor.entries[0].Action, audit.ActionReindexRequested)
	}
	if auditor.entries[0].Target != "job-7" {
		t.Errorf("target = %q, want job-7", auditor.entries[0].Target)
	}

	toasts := manager.Toasts()
	if len(toasts) != 1 || toasts[0].Severity != toast.SeverityInfo {
		t.Errorf("toasts = %+v, want one info toast", toasts)
	}
}

func TestReindexFailure(t *testing.T) {
	auditor := &fakeAuditor{}
	h, manager := newAdminHandler(t,
		&fakeAdminBackend{reindexErr: backend.ErrUnavailable},
		&fakeRegistry{}, auditor)

	rec := postTo(h, "/admin/reindex")

	if rec.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want redirect even on failure", rec.Code)
	}
	if len(auditor.entries) != 0 {
		t.Errorf("audit entries = %d, want 0 for failed reindex", len(auditor.entries))
	}

	toasts := manager.Toasts()
	if len(toasts) != 1 || toasts[0].Severity != toast.SeverityError {
		t.Errorf("toasts = %+v, want one error toast", toasts)
	}
}

func TestToolToggle(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		wantAction string
		wantState  bool
	}{
		{name: "enable", path: "/admin/tools/search/enable", wantAction: audit.ActionToolEnabled, wantState: true},
		{name: "disable", path: "/admin/tools/search/disable", wantAction: audit.ActionToolDisabled, wantState: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auditor := &fakeAuditor{}
			registry := &fakeRegistry{}
			h, manager := newAdminHandler(t, &fakeAdminBackend{}, registry, auditor)

			rec := postTo(h, tt.path)

			if rec.Code != http.StatusSeeOther {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusSeeOther)
			}
			if got, ok := registry.toggled["search"]; !ok || got != tt.wantState {
				t.Errorf("toggled[search] = %v (%v), want %v", got, ok, tt.wantState)
			}
			if len(auditor.entries) != 1 || auditor.entries[0].Action != tt.wantAction {
				t.Errorf("audit entries = %+v, want one %s", auditor.entries, tt.wantAction)
			}
			if len(manager.Toasts()) != 1 {
				t.Errorf("toasts = %d, want 1", len(manager.Toasts()))
			}
		})
	}
}

func TestToolToggleUnknownServer(t *testing.T) {
	auditor := &fakeAuditor{}
	registry := &fakeRegistry{toggleErr: mcptools.ErrUnknownServer}
	h, manager := newAdminHandler(t, &fakeAdminBackend{}, registry, auditor)

	postTo(h, "/admin/tools/nope/enable")

	if len(auditor.entries) != 0 {
		t.Errorf("audit entries = %d, want 0", len(auditor.entries))
	}
	toasts := manager.Toasts()
	if len(toasts) != 1 || toasts[0].Severity != toast.SeverityError {
		t.Errorf("toasts = %+v, want one error toast", toasts)
	}
}

func TestAuditFailureWarns(t *testing.T) {
	auditor := &fakeAuditor{err: errors.New("disk full")}
	h, manager := newAdminHandler(t,
		&fakeAdminBackend{job: &backend.ReindexJob{JobID: "job-1"}},
		&fakeRegistry{}, auditor)

	postTo(h, "/admin/reindex")

	// The action toast plus the audit warning.
	toasts := manager.Toasts()
	if len(toasts) != 2 {
		t.Fatalf("toasts = %d, want 2", len(toasts))
	}
	if toasts[0].Severity != toast.SeverityWarning {
		t.Errorf("first toast severity = %q, want warning", toasts[0].Severity)
	}
}
