// Package cmd implements the lantern command line interface.
package cmd

import (
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lantern-chat/lantern/internal/config"
	"github.com/lantern-chat/lantern/internal/log"
)

var rootCmd = &cobra.Command{
	Use:   "lantern",
	Short: "Lantern - chat with your document knowledge base",
	Long: `Lantern is a chat frontend for a retrieval-augmented knowledge base.

Running lantern without arguments starts the interactive terminal UI.
Use "lantern serve" to start the web interface instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// newLogger builds the application logger from configuration.
func newLogger(cfg *config.Config) *slog.Logger {
	return log.New(log.Config{
		Level: parseLogLevel(cfg.LogLevel),
		JSON:  cfg.LogJSON,
	})
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
