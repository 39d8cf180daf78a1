package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/lantern-chat/lantern/internal/app"
	"github.com/lantern-chat/lantern/internal/config"
	"github.com/lantern-chat/lantern/internal/tui"
)

// runtimeCloseTimeout bounds shutdown after the TUI exits.
const runtimeCloseTimeout = 10 * time.Second

// runTUI initializes the runtime and starts the interactive terminal UI.
func runTUI() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := newLogger(cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runtime, err := app.NewRuntime(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing runtime: %w", err)
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), runtimeCloseTimeout)
		defer closeCancel()
		if closeErr := runtime.Close(closeCtx); closeErr != nil {
			logger.Warn("runtime close error", "error", closeErr)
		}
	}()

	model, err := tui.New(ctx, runtime.Backend, runtime.Toasts, logger)
	if err != nil {
		return fmt.Errorf("creating TUI: %w", err)
	}

	program := tea.NewProgram(model, tea.WithContext(ctx))
	if _, err = program.Run(); err != nil {
		return fmt.Errorf("TUI exited: %w", err)
	}
	return nil
}
