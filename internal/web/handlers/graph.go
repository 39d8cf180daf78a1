package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/lantern-chat/lantern/internal/backend"
)

// Graph neighborhood depth bounds.
const (
	DefaultGraphDepth = 1
	MaxGraphDepth     = 3
)

// GraphBackend is the slice of the backend client the graph endpoint needs.
type GraphBackend interface {
	GraphNeighborhood(ctx context.Context, nodeID string, depth int) (*backend.Graph, error)
}

// GraphConfig contains configuration for the Graph handler.
type GraphConfig struct {
	Logger  *slog.Logger
	Backend GraphBackend
}

// Graph serves knowledge graph neighborhoods as JSON for the explorer.
type Graph struct {
	logger  *slog.Logger
	backend GraphBackend
}

// NewGraph creates a new Graph handler.
// Logger and Backend are required (panics if nil).
func NewGraph(cfg GraphConfig) *Graph {
	if cfg.Logger == nil {
		panic("NewGraph: logger is required")
	}
	if cfg.Backend == nil {
		panic("NewGraph: backend is required")
	}
	return &Graph{
		logger:  cfg.Logger,
		backend: cfg.Backend,
	}
}

// RegisterRoutes registers graph routes on the given mux.
func (h *Graph) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /graph/data", h.Data)
}

// Data returns the neighborhood of a node. An empty node asks the backend
// for its default overview graph. Depth defaults to 1 and is clamped to
// MaxGraphDepth.
func (h *Graph) Data(w http.ResponseWriter, r *http.Request) {
	node := r.URL.Query().Get("node")

	depth := DefaultGraphDepth
	if raw := r.URL.Query().Get("depth"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			http.Error(w, "invalid depth", http.StatusBadRequest)
			return
		}
		depth = min(parsed, MaxGraphDepth)
	}

	graph, err := h.backend.GraphNeighborhood(r.Context(), node, depth)
	if err != nil {
		h.logger.Error("graph lookup failed", "node", node, "error", err)
		status := http.StatusBadGateway
		if errors.Is(err, backend.ErrRejected) {
			status = http.StatusNotFound
		}
		http.Error(w, "graph lookup failed", status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(graph); err != nil {
		h.logger.Debug("graph response write failed", "error", err)
	}
}
