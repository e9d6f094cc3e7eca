// Package cli provides the command-line interface for the option explorer.
package cli

import (
	"context"
	"fmt"
	"option-explorer/config"
	"option-explorer/controllers"
	"option-explorer/database"
	"option-explorer/interfaces"
	"option-explorer/logging"
	"option-explorer/services"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version information
const Version = "0.1.0"

// App holds the application dependencies.
type App struct {
	Config   *config.Config
	Logger   *logrus.Logger
	Options  interfaces.OptionDataService
	History  interfaces.HistoryService
	Storage  *database.LocalStorage // nil when the journal is disabled
	Recorder interfaces.LookupRecorder
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd() *cobra.Command {
	app := &App{}

	rootCmd := &cobra.Command{
		Use:   "option-explorer",
		Short: "Browse option chains and price history",
		Long: `option-explorer fetches option expirations, chains and price history for a ticker,
ranks contracts by traded volume and serves charts and tables over HTTP.

Use 'option-explorer serve' to start the API server.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			configFile, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}

			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				cfg.Log.Level = "debug"
			}

			return app.init(cfg)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if app.Storage != nil {
				return app.Storage.Close()
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./config.yaml when present)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	addCommands(rootCmd, app)

	return rootCmd
}

// addCommands registers the output flags and every subcommand on rootCmd.
func addCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")

	rootCmd.AddCommand(newServeCmd(app))
	addMarketCommands(rootCmd, app)
	rootCmd.AddCommand(newLookupsCmd(app))
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func (app *App) init(cfg *config.Config) error {
	app.Config = cfg
	app.Logger = logging.NewLogger(logging.Options{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
	})

	options, history := buildProviders(cfg, app.Logger)
	app.Options = options
	app.History = history

	if cfg.JournalEnabled() {
		storage, err := database.NewLocalStorage(cfg.Storage.DBPath, app.Logger)
		if err != nil {
			return fmt.Errorf("opening lookup journal: %w", err)
		}
		app.Storage = storage
		app.Recorder = storage
		app.Logger.WithField("path", cfg.Storage.DBPath).Debug("Lookup journal enabled")
	}

	app.Logger.WithFields(logrus.Fields{
		"options": cfg.Provider.Options,
		"history": cfg.Provider.History,
	}).Debug("Providers configured")
	return nil
}

// buildProviders wires the configured upstreams. Config validation guarantees credentials.
func buildProviders(cfg *config.Config, logger *logrus.Logger) (interfaces.OptionDataService, interfaces.HistoryService) {
	yahoo := func() *services.YahooOptionsDataService {
		return services.NewYahooOptionsDataService(cfg.Yahoo.OptionsURL, cfg.Yahoo.ChartURL, cfg.Yahoo.UserAgent, cfg.Provider.Timeout, logger)
	}
	alpaca := func() *services.AlpacaOptionsDataService {
		return services.NewAlpacaOptionsDataService(cfg.Alpaca.APIKey, cfg.Alpaca.SecretKey, cfg.Alpaca.DataURL, cfg.Alpaca.TradingURL, cfg.Provider.Timeout, logger)
	}

	var options interfaces.OptionDataService
	switch cfg.Provider.Options {
	case config.ProviderAlpaca:
		options = alpaca()
	default:
		options = yahoo()
	}

	var history interfaces.HistoryService
	switch cfg.Provider.History {
	case config.ProviderAlpaca:
		history = alpaca()
	case config.ProviderPolygon:
		history = services.NewPolygonHistoryService(cfg.Polygon.APIKey, logger)
	default:
		history = yahoo()
	}

	return options, history
}

func (app *App) defaults() controllers.Defaults {
	return controllers.Defaults{
		Ticker:    app.Config.Defaults.Ticker,
		Parameter: app.Config.DefaultParameter(),
		Period:    app.Config.DefaultPeriod(),
	}
}

func (app *App) requestContext() (context.Context, context.CancelFunc) {
	// Each upstream call is bounded by the HTTP client timeout; this caps the whole command.
	return context.WithTimeout(context.Background(), 4*app.Config.Provider.Timeout)
}
