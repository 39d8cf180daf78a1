// Package mcptools manages connections to configured MCP tool servers.
//
// Each server runs as a child process speaking MCP over stdio. The registry
// connects to the servers the config allows, caches their advertised tools
// for the admin page, and lets the admin surface toggle servers at runtime.
// A failed server never blocks the rest: its error is recorded and shown,
// and the registry carries on.
package mcptools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sort"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lantern-chat/lantern/internal/config"
)

// ErrUnknownServer indicates a toggle against a server name that is not
// configured.
var ErrUnknownServer = errors.New("unknown mcp server")

// ToolInfo describes one tool advertised by a connected server.
type ToolInfo struct {
	Server      string
	Name        string
	Description string
}

// ServerState is a snapshot of one configured server for the admin page.
type ServerState struct {
	Name      string
	Enabled   bool
	Connected bool
	Err       string
	Tools     []ToolInfo
}

// Session is the slice of an MCP client session the registry needs.
// *mcp.ClientSession satisfies it.
type Session interface {
	ListTools(ctx context.Context, params *mcp.ListToolsParams) (*mcp.ListToolsResult, error)
	Close() error
}

// ConnectFunc dials one MCP server and returns a live session.
type ConnectFunc func(ctx context.Context, name string, server config.MCPServer) (Session, error)

// Config configures the registry.
type Config struct {
	Servers map[string]config.MCPServer
	Policy  config.MCPConfig
	Logger  *slog.Logger

	// Connect overrides how server processes are dialed. Nil means stdio
	// child processes via the MCP SDK.
	Connect ConnectFunc
}

type serverEntry struct {
	config  config.MCPServer
	enabled bool

	session Session
	tools   []ToolInfo
	lastErr error
}

// Registry tracks configured MCP servers and their sessions.
// It is safe for concurrent use.
type Registry struct {
	logger  *slog.Logger
	connect ConnectFunc

	mu      sync.Mutex
	servers map[string]*serverEntry
	closed  bool
}

// NewRegistry builds a registry from the configured servers. Nothing is
// dialed until ConnectAll or SetEnabled.
func NewRegistry(cfg Config) *Registry {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	connect := cfg.Connect
	if connect == nil {
		connect = stdioConnect
	}

	servers := make(map[string]*serverEntry, len(cfg.Servers))
	for name, server := range cfg.Servers {
		servers[name] = &serverEntry{
			config:  server,
			enabled: cfg.Policy.Enabled(name, server),
		}
	}

	return &Registry{
		logger:  logger,
		connect: connect,
		servers: servers,
	}
}

// ConnectAll dials every enabled server. Dial failures are recorded per
// server and do not abort the rest.
func (r *Registry) ConnectAll(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}

	for name, entry := range r.servers {
		if !entry.enabled || entry.session != nil {
			continue
		}
		r.connectLocked(ctx, name, entry)
	}
}

// connectLocked dials one server and caches its tool list.
func (r *Registry) connectLocked(ctx context.Context, name string, entry *serverEntry) {
	session, err := r.connect(ctx, name, entry.config)
	if err != nil {
		entry.lastErr = err
		r.logger.Warn("mcp server connection failed", "server", name, "error", err)
		return
	}

	result, err := session.ListTools(ctx, &mcp.ListToolsParams{})
	if err != nil {
		entry.lastErr = fmt.Errorf("listing tools: %w", err)
		r.logger.Warn("mcp tool listing failed", "server", name, "error", err)
		_ = session.Close()
		return
	}

	tools := make([]ToolInfo, 0, len(result.Tools))
	for _, tool := range result.Tools {
		tools = append(tools, ToolInfo{
			Server:      name,
			Name:        tool.Name,
			Description: tool.Description,
		})
	}

	entry.session = session
	entry.tools = tools
	entry.lastErr = nil
	r.logger.Info("mcp server connected", "server", name, "tools", len(tools))
}

// SetEnabled toggles a server at runtime. Enabling dials it; disabling
// closes its session and drops its tools.
func (r *Registry) SetEnabled(ctx context.Context, name string, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return errors.New("registry closed")
	}

	entry, ok := r.servers[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownServer, name)
	}

	entry.enabled = enabled
	if enabled {
		if entry.session == nil {
			r.connectLocked(ctx, name, entry)
		}
		if entry.lastErr != nil {
			return entry.lastErr
		}
		return nil
	}

	if entry.session != nil {
		if err := entry.session.Close(); err != nil {
			r.logger.Warn("failed to close mcp session", "server", name, "error", err)
		}
		entry.session = nil
	}
	entry.tools = nil
	entry.lastErr = nil
	return nil
}

// Tools returns the tools of all connected servers, sorted by server then
// tool name.
func (r *Registry) Tools() []ToolInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	var tools []ToolInfo
	for _, entry := range r.servers {
		tools = append(tools, entry.tools...)
	}
	sort.Slice(tools, func(i, j int) bool {
		if tools[i].Server != tools[j].Server {
			return tools[i].Server < tools[j].Server
		}
		return tools[i].Name < tools[j].Name
	})
	return tools
}

// Servers returns a snapshot of every configured server, sorted by name.
func (r *Registry) Servers() []ServerState {
	r.mu.Lock()
	defer r.mu.Unlock()

	states := make([]ServerState, 0, len(r.servers))
	for name, entry := range r.servers {
		state := ServerState{
			Name:      name,
			Enabled:   entry.enabled,
			Connected: entry.session != nil,
			Tools:     append([]ToolInfo(nil), entry.tools...),
		}
		if entry.lastErr != nil {
			state.Err = entry.lastErr.Error()
		}
		states = append(states, state)
	}
	sort.Slice(states, func(i, j int) bool { return states[i].Name < states[j].Name })
	return states
}

// Close shuts down every live session. The registry cannot be reused.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true

	var errs []error
	for name, entry := range r.servers {
		if entry.session == nil {
			continue
		}
		if err := entry.session.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing %s: %w", name, err))
		}
		entry.session = nil
		entry.tools = nil
	}
	return errors.Join(errs...)
}

// stdioConnect launches the server command and performs the MCP handshake
// over its stdio.
func stdioConnect(ctx context.Context, name string, server config.MCPServer) (Session, error) {
	cmd := exec.CommandContext(ctx, server.Command, server.Args...)
	env := os.Environ()
	for key, value := range server.ResolveEnv() {
		env = append(env, key+"="+value)
	}
	cmd.Env = env

	client := mcp.NewClient(&mcp.Implementation{
		Name:    "lantern",
		Version: "1.0.0",
	}, nil)

	session, err := client.Connect(ctx, &mcp.CommandTransport{Command: cmd}, nil)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", name, err)
	}
	return session, nil
}
