package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"stylebook/internal/application"
	"stylebook/internal/config"
	"stylebook/internal/logging"
	"stylebook/internal/setup"
)

var (
	dbPath   string
	logLevel string
	env      *setup.Env
)

var rootCmd = &cobra.Command{
	Use:   "stylebook-cli",
	Short: "CLI for managing map template and symbology profiles",
	Long: `stylebook-cli manages profiles: named sources of print layout templates
and symbology styles. Each profile points at a templates catalog and a
symbology catalog; syncing fetches them and replaces the stored copy.

Profiles are referenced by id or by name. Commands that take a profile
default to the current one.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for help commands
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if dbPath != "" {
			cfg.Database = dbPath
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}

		ctx, err := logging.Context(cmd.Context(), cfg.LogLevel)
		if err != nil {
			return err
		}
		cmd.SetContext(ctx)

		env, err = setup.Open(ctx, cfg)
		return err
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if env == nil {
			return nil
		}
		return env.Close()
	},
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if env != nil {
			env.Close()
		}
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to the settings database (default from config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
}

// GetApp returns the initialized application
func GetApp() *application.App {
	return env.App
}
