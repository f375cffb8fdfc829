// Package cli provides the command-line interface for the pattern
// ranking tool.
package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"candlerank/internal/config"
	"candlerank/internal/feed"
	"candlerank/internal/logging"
	"candlerank/internal/notify"
	"candlerank/internal/patterns"
	"candlerank/internal/rank"
	"candlerank/internal/store"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2025-01-01"
)

// App holds the application dependencies.
type App struct {
	Config    *config.Config
	Logger    zerolog.Logger
	Store     store.DataStore
	Provider  feed.Provider
	Evaluator *rank.Evaluator
	Notifier  *notify.MultiNotifier
}

// FeedService builds a price feed honoring the cache bypass flag.
func (a *App) FeedService(noCache bool) *feed.Service {
	var cache feed.Cache
	if a.Store != nil {
		cache = a.Store
	}
	return feed.NewService(a.Provider, cache, feed.Options{
		Location:        a.Config.Location(),
		AutoForexSuffix: a.Config.Data.AutoForexSuffix,
		CacheTTL:        a.Config.Cache.TTL,
		NoCache:         noCache || !a.Config.Cache.Enabled,
	})
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config:    cfg,
		Logger:    logger,
		Provider:  feed.NewYahooProvider(),
		Evaluator: rank.NewEvaluator(patterns.Default(), cfg.Directions, nil),
	}

	SetLocation(cfg.Location())

	// Initialize SQLite store
	dbPath := config.DefaultConfigDir() + "/candlerank.db"
	dataStore, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize store, caching and history unavailable")
	} else {
		app.Store = dataStore
		logger.Debug().Msg("SQLite store initialized")
	}

	// Initialize notification channels
	if cfg.Notifications.Enabled {
		notifier, err := notify.NewMultiNotifier(cfg)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize notifications")
		} else {
			app.Notifier = notifier
			logger.Debug().Bool("has_channels", notifier.HasChannels()).Msg("Notifier initialized")
		}
	}

	rootCmd := &cobra.Command{
		Use:   "candlerank",
		Short: "Candlerank - candlestick pattern ranking CLI",
		Long: `Candlerank detects candlestick patterns on historical price series
and ranks them by how often price moved the expected way afterwards.

Series come from Yahoo Finance and are cached locally. Rankings can be
saved, exported to CSV, and re-run on a schedule with notifications.

Use 'candlerank help <command>' for more information about a command.
Use 'candlerank examples' to see common workflows.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Handle debug flag
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/candlerank)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	// Add all command groups
	addCoreCommands(rootCmd, app)
	addDataCommands(rootCmd, app)
	addRankCommands(rootCmd, app)
	addWatchCommands(rootCmd, app)
	addHelpCommands(rootCmd, app)

	return rootCmd
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
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("Candlerank v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and manage application configuration.",
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
		Short: "Validate configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("✓ Configuration is valid")
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "edit",
		Short: "Open configuration file in editor",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			configPath := config.DefaultConfigDir() + "/config.toml"
			output.Info("Configuration file: %s", configPath)
			output.Println("Edit this file to change settings.")
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) error {
	output.Bold("Data Configuration")
	output.Printf("  Timeframe:       %s\n", cfg.Data.Timeframe)
	output.Printf("  Range:           %s\n", cfg.Data.Range)
	output.Printf("  Timezone:        %s\n", cfg.Data.Timezone)
	output.Printf("  Forex Suffix:    %v\n", cfg.Data.AutoForexSuffix)
	output.Println()

	output.Bold("Rank Configuration")
	output.Printf("  Horizon:         %d bars\n", cfg.Rank.Horizon)
	if cfg.Rank.Top > 0 {
		output.Printf("  Top:             %d\n", cfg.Rank.Top)
	} else {
		output.Printf("  Top:             all\n")
	}
	output.Printf("  Save Runs:       %v\n", cfg.Rank.SaveRuns)
	output.Println()

	output.Bold("Cache Configuration")
	output.Printf("  Enabled:         %v\n", cfg.Cache.Enabled)
	output.Printf("  TTL:             %s\n", cfg.Cache.TTL)
	output.Println()

	output.Bold("Notifications")
	output.Printf("  Enabled:         %v\n", cfg.Notifications.Enabled)
	output.Printf("  Level:           %s\n", cfg.Notifications.Level)
	output.Printf("  Terminal:        %v\n", cfg.Notifications.Terminal.Enabled)
	output.Printf("  Webhook:         %v\n", cfg.Notifications.Webhook.Enabled)
	output.Printf("  Telegram:        %v\n", cfg.Notifications.Telegram.Enabled)

	if len(cfg.Directions) > 0 {
		output.Println()
		output.Bold("Direction Overrides")
		for name, dir := range cfg.Directions {
			output.Printf("  %-16s %s\n", name, dir)
		}
	}

	return nil
}
