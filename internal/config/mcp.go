package config

import (
	"os"
	"slices"
	"strings"
	"time"
)

// MCPConfig holds cross-server MCP settings.
type MCPConfig struct {
	// Allowed restricts connections to the named servers (empty = all).
	Allowed []string `mapstructure:"allowed"`
	// Excluded blocks the named servers. Excluded takes precedence over
	// Allowed.
	Excluded []string `mapstructure:"excluded"`
	// Timeout bounds the connect and list-tools calls per server.
	Timeout time.Duration `mapstructure:"timeout"`
}

// MCPServer describes a single configured MCP server. All servers must be
// defined explicitly in the config file; there is no auto-detection.
type MCPServer struct {
	Command  string            `mapstructure:"command"`
	Args     []string          `mapstructure:"args"`
	Env      map[string]string `mapstructure:"env"`
	Disabled bool              `mapstructure:"disabled"`
}

// Enabled reports whether the named server passes the allow/exclude filters
// and is not individually disabled.
func (m MCPConfig) Enabled(name string, server MCPServer) bool {
	if server.Disabled {
		return false
	}
	if slices.Contains(m.Excluded, name) {
		return false
	}
	if len(m.Allowed) > 0 && !slices.Contains(m.Allowed, name) {
		return false
	}
	return true
}

// ResolveEnv expands $VAR_NAME references in the server's env map against the
// process environment. Unresolvable references are kept verbatim so the
// failure surfaces at the server, not silently as an empty value.
func (s MCPServer) ResolveEnv() map[string]string {
	if len(s.Env) == 0 {
		return nil
	}
	resolved := make(map[string]string, len(s.Env))
	for key, value := range s.Env {
		if strings.HasPrefix(value, "$") {
			if env := os.Getenv(strings.TrimPrefix(value, "$")); env != "" {
				resolved[key] = env
				continue
			}
		}
		resolved[key] = value
	}
	return resolved
}
