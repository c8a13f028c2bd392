// Package commands is the unified bestcard CLI.
package commands

import (
	"bestcard/internal/app"
	"bestcard/internal/config"
	"log/slog"

	"github.com/spf13/cobra"
)

type env struct {
	cfg    config.Config
	logger *slog.Logger
}

// NewRootCommand creates the root CLI command with all subcommands registered.
// Without a subcommand it runs the API server.
func NewRootCommand() *cobra.Command {
	e := &env{}

	rootCmd := &cobra.Command{
		Use:   "bestcard",
		Short: "Pick the best credit card for a purchase",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			e.cfg = config.MustLoad()
			e.logger = app.SetupLogger(e.cfg.LogLevel)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.RunAPI(cmd.Context(), e.cfg, e.logger)
		},
	}

	rootCmd.AddCommand(
		newAPICommand(e),
		newBotCommand(e),
		newMigrateCommand(e),
		newIngestCommand(e),
		newCardCommand(e),
		newRecommendCommand(e),
	)

	return rootCmd
}

func newAPICommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "api",
		Short: "Run the HTTP API (and Telegram webhook when configured)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.RunAPI(cmd.Context(), e.cfg, e.logger)
		},
	}
}

func newBotCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram bot with long polling",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.RunBot(cmd.Context(), e.cfg, e.logger)
		},
	}
}

func newMigrateCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations (POLICY_SOURCE=postgres)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Migrate(cmd.Context(), e.cfg, e.logger)
		},
	}
}
