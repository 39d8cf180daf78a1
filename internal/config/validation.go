package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Validate validates configuration values.
// Returns sentinel errors that can be checked with errors.Is().
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	if c.ListenAddr == "" {
		return fmt.Errorf("%w: listen_addr cannot be empty", ErrInvalidListenAddr)
	}

	if err := c.validateBackend(); err != nil {
		return err
	}
	if err := c.Toast.validate(); err != nil {
		return err
	}

	if c.AuditPath == "" {
		return fmt.Errorf("%w: audit_path cannot be empty", ErrInvalidAuditPath)
	}

	return c.validateMCPServers()
}

// validateBackend checks the backend URL, timeout and rate limiter settings.
func (c *Config) validateBackend() error {
	u, err := url.Parse(c.BackendURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBackendURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme must be http or https, got %q", ErrInvalidBackendURL, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidBackendURL)
	}

	if c.BackendTimeout < time.Second || c.BackendTimeout > 10*time.Minute {
		return fmt.Errorf("%w: must be between 1s and 10m, got %v", ErrInvalidBackendTimeout, c.BackendTimeout)
	}

	if c.BackendRate <= 0 {
		return fmt.Errorf("%w: backend_rate must be positive, got %v", ErrInvalidBackendRate, c.BackendRate)
	}
	if c.BackendBurst < 1 {
		return fmt.Errorf("%w: backend_burst must be at least 1, got %d", ErrInvalidBackendRate, c.BackendBurst)
	}

	return nil
}

// validate checks the toast capacity and default lifetime bounds.
func (tc ToastConfig) validate() error {
	if tc.MaxToasts < MinMaxToasts || tc.MaxToasts > MaxMaxToasts {
		return fmt.Errorf("%w: must be between %d and %d, got %d",
			ErrInvalidMaxToasts, MinMaxToasts, MaxMaxToasts, tc.MaxToasts)
	}
	if tc.DefaultDuration < MinToastDuration || tc.DefaultDuration > MaxToastDuration {
		return fmt.Errorf("%w: must be between %v and %v, got %v",
			ErrInvalidToastDuration, MinToastDuration, MaxToastDuration, tc.DefaultDuration)
	}
	return nil
}

// validateMCPServers checks every configured MCP server entry.
func (c *Config) validateMCPServers() error {
	for name, server := range c.MCPServers {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: server name cannot be blank", ErrInvalidMCPServer)
		}
		if server.Command == "" {
			return fmt.Errorf("%w: %s: missing required 'command' field", ErrInvalidMCPServer, name)
		}
	}
	return nil
}
