// Package cli provides the command-line interface for the trading journal.
package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"zentrade/internal/config"
	"zentrade/internal/journal"
	"zentrade/internal/logging"
	"zentrade/internal/store"
)

// Version information
const (
	Version = "0.1.0"
)

// App holds the application dependencies.
type App struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Store   store.DataStore
	Journal *journal.Service
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	dataStore, err := store.NewSQLiteStore(cfg.Storage.DBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize store, journal commands will be unavailable")
	} else {
		app.Store = dataStore
		app.Journal = journal.NewService(dataStore, logger, cfg.Journal.Rules)
		logger.Debug().Str("db", cfg.Storage.DBPath).Msg("SQLite store initialized")
	}

	rootCmd := &cobra.Command{
		Use:   "zentrade",
		Short: "zentrade - trading journal with XP and streaks",
		Long: `zentrade is a personal trading journal for the terminal.

Paste or record trades, log learning activities, and review performance
statistics. Journaling discipline earns XP, levels and streaks; a daily
rule check-in scores how well you stuck to your own trading rules.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/zentrade)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	addCoreCommands(rootCmd, app)
	addTradeCommands(rootCmd, app)
	addActivityCommands(rootCmd, app)
	addStatsCommands(rootCmd, app)
	addProgressCommands(rootCmd, app)
	addCheckInCommands(rootCmd, app)
	addImportExportCommands(rootCmd, app)

	return rootCmd
}

// requireStore guards commands that need a working store.
func requireStore(app *App, output *Output) bool {
	if app.Store == nil || app.Journal == nil {
		output.Warning("Store not initialized. Check the database path in your config.")
		return false
	}
	return true
}

// addCoreCommands adds core utility commands.
func addCoreCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"version": Version})
			} else {
				output.Printf("zentrade v%s\n", Version)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and validate application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			return showConfig(output, app.Config)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": config.DefaultConfigDir()})
			} else {
				output.Println(config.DefaultConfigDir())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) error {
	output.Bold("Journal Configuration")
	output.Printf("  Default Strategy: %s\n", orDash(cfg.Journal.DefaultStrategy))
	output.Printf("  Rules:\n")
	for i, r := range cfg.Journal.Rules {
		output.Printf("    %d. %s\n", i+1, r)
	}
	output.Println()

	output.Bold("Storage")
	output.Printf("  DB Path: %s\n", cfg.Storage.DBPath)
	output.Println()

	output.Bold("Logging")
	output.Printf("  Level:   %s\n", cfg.Logging.Level)
	output.Printf("  Console: %v\n", cfg.Logging.Console)
	output.Printf("  File:    %v\n", cfg.Logging.File)

	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
