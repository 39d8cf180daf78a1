package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lantern-chat/lantern/internal/log"
)

// newTestClient points a Client at the given test server.
func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	client, err := NewClient(Config{
		BaseURL: srv.URL,
		Logger:  log.NewNop(),
	})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return client
}

func TestNewClient_RejectsBadBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
	}{
		{name: "empty", baseURL: ""},
		{name: "no scheme", baseURL: "localhost:8080"},
		{name: "garbage", baseURL: "://nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewClient(Config{BaseURL: tt.baseURL, Logger: log.NewNop()}); err == nil {
				t.Errorf("NewClient(%q) error = nil, want error", tt.baseURL)
			}
		})
	}
}

func TestStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/status" {
			t.Errorf("path = %q, want /v1/status", r.URL.Path)
		}
		fmt.Fprint(w, `{"healthy":true,"indexed_docs":1234,"backend_version":"1.9.0"}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv)
	status, err := client.Status(context.Background())
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if !status.Healthy {
		t.Error("Healthy = false, want true")
	}
	if status.IndexedDocs != 1234 {
		t.Errorf("IndexedDocs = %d, want 1234", status.IndexedDocs)
	}
}

func TestCitations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages/msg-1/citations" {
			t.Errorf("path = %q, want /v1/messages/msg-1/citations", r.URL.Path)
		}
		fmt.Fprint(w, `[{"source_id":"s1","title":"Design Doc","uri":"https://docs/1","score":0.91}]`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv)
	citations, err := client.Citations(context.Background(), "msg-1")
	if err != nil {
		t.Fatalf("Citations() error = %v", err)
	}
	if len(citations) != 1 {
		t.Fatalf("len(citations) = %d, want 1", len(citations))
	}
	if citations[0].Title != "Design Doc" {
		t.Errorf("Title = %q, want %q", citations[0].Title, "Design Doc")
	}
}

func TestGraphNeighborhood_QueryParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("node"); got != "doc-7" {
			t.Errorf("node = %q, want %q", got, "doc-7")
		}
		if got := r.URL.Query().Get("depth"); got != "2" {
			t.Errorf("depth = %q, want %q", got, "2")
		}
		fmt.Fprint(w, `{"nodes":[{"id":"doc-7","label":"Doc 7","kind":"document"}],"edges":[]}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv)
	graph, err := client.GraphNeighborhood(context.Background(), "doc-7", 2)
	if err != nil {
		t.Fatalf("GraphNeighborhood() error = %v", err)
	}
	if len(graph.Nodes) != 1 {
		t.Errorf("len(Nodes) = %d, want 1", len(graph.Nodes))
	}
}

func TestReindex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %q, want POST", r.Method)
		}
		fmt.Fprint(w, `{"job_id":"job-42"}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv)
	job, err := client.Reindex(context.Background())
	if err != nil {
		t.Fatalf("Reindex() error = %v", err)
	}
	if job.JobID != "job-42" {
		t.Errorf("JobID = %q, want %q", job.JobID, "job-42")
	}
}

func TestStatus_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newTestClient(t, srv)
	if _, err := client.Status(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Status() error = %v, want ErrUnavailable", err)
	}
}

func TestStatus_ClientError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	client := newTestClient(t, srv)
	if _, err := client.Status(context.Background()); !errors.Is(err, ErrRejected) {
		t.Errorf("Status() error = %v, want ErrRejected", err)
	}
}

func TestStatus_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // immediately: every request now fails to connect

	client := newTestClient(t, srv)
	if _, err := client.Status(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Status() error = %v, want ErrUnavailable", err)
	}
}

func TestStatus_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"healthy":`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv)
	if _, err := client.Status(context.Background()); !errors.Is(err, ErrInvalidResponse) {
		t.Errorf("Status() error = %v, want ErrInvalidResponse", err)
	}
}
