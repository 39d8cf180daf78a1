// Package config provides application configuration management with
// multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override, LANTERN_ prefix)
//  2. Config file (~/.lantern/config.yaml)
//  3. Default values (sensible defaults for quick start)
//
// Main configuration categories:
//   - Server: listen address and proxy trust for the web frontend
//   - Backend: the external RAG chat API lantern renders for
//   - Toast: notification capacity and default lifetime
//   - MCP: Model Context Protocol servers surfaced in the admin UI
//   - Audit: local audit trail location
//   - OTLP: OpenTelemetry trace export
//
// Error Handling:
//   - Uses sentinel errors for Go-idiomatic error checking with errors.Is()
//   - Wrap with context using fmt.Errorf("%w: details", ErrXxx)
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrInvalidListenAddr indicates the web listen address is invalid.
	ErrInvalidListenAddr = errors.New("invalid listen address")

	// ErrInvalidBackendURL indicates the backend base URL is invalid.
	ErrInvalidBackendURL = errors.New("invalid backend URL")

	// ErrInvalidBackendTimeout indicates the backend timeout is out of range.
	ErrInvalidBackendTimeout = errors.New("invalid backend timeout")

	// ErrInvalidBackendRate indicates the backend rate limit is out of range.
	ErrInvalidBackendRate = errors.New("invalid backend rate limit")

	// ErrInvalidMaxToasts indicates the toast capacity is out of range.
	ErrInvalidMaxToasts = errors.New("invalid max toasts")

	// ErrInvalidToastDuration indicates the default toast duration is out of range.
	ErrInvalidToastDuration = errors.New("invalid toast duration")

	// ErrInvalidAuditPath indicates the audit log path is invalid.
	ErrInvalidAuditPath = errors.New("invalid audit path")

	// ErrInvalidMCPServer indicates an MCP server entry is misconfigured.
	ErrInvalidMCPServer = errors.New("invalid MCP server")
)

// Toast capacity bounds. The upper bound guards against a misconfigured
// capacity turning the notification area into a second chat log.
const (
	MinMaxToasts = 1
	MaxMaxToasts = 20
)

// Toast duration bounds for the default auto-dismiss delay.
const (
	MinToastDuration = 250 * time.Millisecond
	MaxToastDuration = 5 * time.Minute
)

// Config stores application configuration.
type Config struct {
	// Web server configuration
	ListenAddr string `mapstructure:"listen_addr"`
	TrustProxy bool   `mapstructure:"trust_proxy"` // Trust X-Forwarded-For (set true behind reverse proxy)

	// Backend chat API configuration
	BackendURL     string        `mapstructure:"backend_url"`
	BackendTimeout time.Duration `mapstructure:"backend_timeout"`
	BackendRate    float64       `mapstructure:"backend_rate"`  // requests per second
	BackendBurst   int           `mapstructure:"backend_burst"` // rate limiter burst

	// Toast notification configuration
	Toast ToastConfig `mapstructure:"toast"`

	// Audit trail configuration
	AuditPath string `mapstructure:"audit_path"`

	// MCP server management (see mcp.go for type definitions)
	MCP        MCPConfig            `mapstructure:"mcp"`
	MCPServers map[string]MCPServer `mapstructure:"mcp_servers"`

	// Observability configuration (see observability.go)
	OTLP OTLPConfig `mapstructure:"otlp"`

	// Logging configuration
	LogLevel string `mapstructure:"log_level"` // debug, info, warn, error
	LogJSON  bool   `mapstructure:"log_json"`
}

// ToastConfig tunes the notification manager.
type ToastConfig struct {
	// MaxToasts caps concurrent visible toasts; oldest evicted first.
	MaxToasts int `mapstructure:"max_toasts"`
	// DefaultDuration is the auto-dismiss delay applied when a caller does
	// not choose one. Zero is not allowed here; stickiness is chosen per
	// toast, not globally.
	DefaultDuration time.Duration `mapstructure:"default_duration"`
}

// Load loads configuration.
// Priority: Environment variables > Configuration file > Default values
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".lantern")

	// 0750: the directory holds the audit trail alongside the config file.
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".") // Also support current directory

	setDefaults(v, configDir)
	bindEnvVariables(v)

	if err := v.ReadInConfig(); err != nil {
		// Configuration file not found is not an error, use default values
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using default values",
			"search_paths", []string{configDir, "."},
			"config_name", "config.yaml")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults(v *viper.Viper, configDir string) {
	// Web server defaults
	v.SetDefault("listen_addr", "localhost:8780")
	v.SetDefault("trust_proxy", false)

	// Backend defaults
	v.SetDefault("backend_url", "http://localhost:8080")
	v.SetDefault("backend_timeout", "30s")
	v.SetDefault("backend_rate", 10.0)
	v.SetDefault("backend_burst", 20)

	// Toast defaults
	v.SetDefault("toast.max_toasts", 5)
	v.SetDefault("toast.default_duration", "4s")

	// Audit defaults
	v.SetDefault("audit_path", filepath.Join(configDir, "audit.jsonl"))

	// MCP defaults
	v.SetDefault("mcp.timeout", "5s")

	// OTLP defaults
	v.SetDefault("otlp.enabled", false)
	v.SetDefault("otlp.endpoint", "localhost:4318")
	v.SetDefault("otlp.environment", "dev")
	v.SetDefault("otlp.service_name", "lantern")

	// Logging defaults
	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)
}

// bindEnvVariables binds environment variable overrides explicitly.
// Explicit bindings keep the supported variables greppable.
func bindEnvVariables(v *viper.Viper) {
	bindings := map[string]string{
		"listen_addr": "LANTERN_LISTEN_ADDR",
		"backend_url": "LANTERN_BACKEND_URL",
		"audit_path":  "LANTERN_AUDIT_PATH",
		"log_level":   "LANTERN_LOG_LEVEL",
	}
	for key, env := range bindings {
		// BindEnv only fails when no key is provided.
		_ = v.BindEnv(key, env)
	}
}
