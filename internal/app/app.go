// Package app wires the application's long-lived components together.
//
// Runtime is the container shared by the TUI and the web server: the
// notification manager, the backend client, the audit trail, and the MCP
// tool registry. Both entry points build it once and close it on exit.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lantern-chat/lantern/internal/audit"
	"github.com/lantern-chat/lantern/internal/backend"
	"github.com/lantern-chat/lantern/internal/config"
	"github.com/lantern-chat/lantern/internal/mcptools"
	"github.com/lantern-chat/lantern/internal/observability"
	"github.com/lantern-chat/lantern/internal/toast"
)

// Runtime holds the application's shared components.
type Runtime struct {
	Config   *config.Config
	Toasts   *toast.Manager
	Backend  *backend.Client
	Audit    *audit.Log
	Registry *mcptools.Registry

	logger          *slog.Logger
	tracingShutdown func(context.Context) error
}

// NewRuntime builds all shared components from the configuration.
//
// MCP servers are dialed in the background so a slow or broken tool server
// never delays startup; the registry reports per-server state.
func NewRuntime(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Runtime, error) {
	if cfg == nil {
		return nil, config.ErrConfigNil
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	tracingShutdown := func(context.Context) error { return nil }
	if cfg.OTLP.Enabled {
		shutdown, err := observability.Setup(ctx, observability.Config{
			Endpoint:    cfg.OTLP.Endpoint,
			Environment: cfg.OTLP.Environment,
			ServiceName: cfg.OTLP.ServiceName,
			Logger:      logger,
		})
		if err != nil {
			return nil, fmt.Errorf("setting up tracing: %w", err)
		}
		tracingShutdown = shutdown
	}

	toasts := toast.NewManager(toast.Config{
		MaxToasts:       cfg.Toast.MaxToasts,
		DefaultDuration: cfg.Toast.DefaultDuration,
		Logger:          logger,
	})

	client, err := backend.NewClient(backend.Config{
		BaseURL: cfg.BackendURL,
		Timeout: cfg.BackendTimeout,
		Rate:    cfg.BackendRate,
		Burst:   cfg.BackendBurst,
		Logger:  logger,
	})
	if err != nil {
		toasts.Close()
		return nil, fmt.Errorf("creating backend client: %w", err)
	}

	auditLog, err := audit.Open(cfg.AuditPath, logger)
	if err != nil {
		toasts.Close()
		return nil, fmt.Errorf("opening audit trail: %w", err)
	}

	registry := mcptools.NewRegistry(mcptools.Config{
		Servers: cfg.MCPServers,
		Policy:  cfg.MCP,
		Logger:  logger,
	})
	go registry.ConnectAll(ctx)

	return &Runtime{
		Config:          cfg,
		Toasts:          toasts,
		Backend:         client,
		Audit:           auditLog,
		Registry:        registry,
		logger:          logger,
		tracingShutdown: tracingShutdown,
	}, nil
}

// Close shuts down all components. Safe to call once after NewRuntime
// succeeds; errors from individual components are joined.
func (r *Runtime) Close(ctx context.Context) error {
	r.logger.Info("shutting down runtime")

	var errs []error
	if err := r.Registry.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing MCP registry: %w", err))
	}
	if err := r.Audit.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing audit trail: %w", err))
	}
	r.Toasts.Close()
	if err := r.tracingShutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("flushing traces: %w", err))
	}
	return errors.Join(errs...)
}
