// Package backend provides the HTTP client for the external RAG chat API
// that lantern renders.
//
// The backend owns retrieval, generation and persistence; lantern only
// displays. Chat responses stream over SSE (see stream.go); the remaining
// operations are plain JSON round trips. All calls take a context and go
// through a client-side rate limiter so a stuck UI cannot hammer the
// backend.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Sentinel errors for backend operations, checked with errors.Is().
var (
	// ErrUnavailable indicates the backend could not be reached or
	// answered with a server error.
	ErrUnavailable = errors.New("backend unavailable")

	// ErrInvalidResponse indicates the backend answered with a payload
	// lantern cannot parse.
	ErrInvalidResponse = errors.New("invalid backend response")

	// ErrRejected indicates the backend refused the request (4xx).
	ErrRejected = errors.New("backend rejected request")
)

// Config contains configuration for creating a Client.
type Config struct {
	// BaseURL of the backend API, e.g. http://localhost:8080.
	BaseURL string

	// Timeout for non-streaming requests. Default: 30s.
	Timeout time.Duration

	// Rate is the client-side request rate limit in requests per second.
	// Default: 10.
	Rate float64

	// Burst is the rate limiter burst. Default: 20.
	Burst int

	// Logger for request diagnostics. Defaults to slog.Default().
	Logger *slog.Logger

	// HTTPClient overrides the default client. Streaming requests need a
	// client without a global timeout; the default handles this.
	HTTPClient *http.Client
}

// Client talks to the RAG chat backend. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	stream  *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewClient creates a backend client from cfg, applying defaults for zero
// fields.
func NewClient(cfg Config) (*Client, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: base URL %q", ErrInvalidResponse, cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	limit := cfg.Rate
	if limit <= 0 {
		limit = 10
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 20
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    httpClient,
		// Streaming connections outlive any sane per-request timeout;
		// lifetime is bounded by the caller's context instead.
		stream:  &http.Client{},
		limiter: rate.NewLimiter(rate.Limit(limit), burst),
		logger:  logger,
	}, nil
}

// Message is a single chat turn sent to the backend.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Citation is a retrieval source attached to an assistant response.
type Citation struct {
	SourceID string  `json:"source_id"`
	Title    string  `json:"title"`
	URI      string  `json:"uri"`
	Snippet  string  `json:"snippet"` // may contain backend-rendered HTML
	Score    float64 `json:"score"`
}

// GraphNode is a knowledge-graph vertex.
type GraphNode struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Kind  string `json:"kind"`
}

// GraphEdge is a knowledge-graph relation.
type GraphEdge struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Relation string `json:"relation"`
}

// Graph is a neighborhood of the knowledge graph, served verbatim to the
// client-side renderer.
type Graph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// Status reports backend health and index freshness for the admin page.
type Status struct {
	Healthy        bool      `json:"healthy"`
	IndexedDocs    int       `json:"indexed_docs"`
	LastIndexedAt  time.Time `json:"last_indexed_at"`
	PendingJobs    int       `json:"pending_jobs"`
	BackendVersion string    `json:"backend_version"`
}

// ReindexJob identifies a reindex run accepted by the backend.
type ReindexJob struct {
	JobID string `json:"job_id"`
}

// Citations fetches the citation list for a completed assistant message.
func (c *Client) Citations(ctx context.Context, messageID string) ([]Citation, error) {
	var out []Citation
	err := c.getJSON(ctx, "/v1/messages/"+url.PathEscape(messageID)+"/citations", &out)
	return out, err
}

// GraphNeighborhood fetches the knowledge-graph neighborhood around nodeID.
// An empty nodeID asks the backend for its default overview graph.
func (c *Client) GraphNeighborhood(ctx context.Context, nodeID string, depth int) (*Graph, error) {
	path := "/v1/graph"
	q := url.Values{}
	if nodeID != "" {
		q.Set("node", nodeID)
	}
	if depth > 0 {
		q.Set("depth", fmt.Sprint(depth))
	}
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out Graph
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Status fetches backend health and index statistics.
func (c *Client) Status(ctx context.Context) (*Status, error) {
	var out Status
	if err := c.getJSON(ctx, "/v1/status", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Reindex asks the backend to rebuild its retrieval index.
func (c *Client) Reindex(ctx context.Context) (*ReindexJob, error) {
	var out ReindexJob
	if err := c.postJSON(ctx, "/v1/admin/reindex", struct{}{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// getJSON performs a rate-limited GET and decodes the JSON response into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	return c.do(req, out)
}

// postJSON performs a rate-limited POST with a JSON body.
func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for rate limiter: %w", err)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return c.do(req, out)
}

// do executes the request and decodes the response, translating transport
// and status failures into sentinel errors.
func (c *Client) do(req *http.Request, out any) error {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	c.logger.Debug("backend request",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	switch {
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		return fmt.Errorf("%w: status %d", ErrRejected, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}
