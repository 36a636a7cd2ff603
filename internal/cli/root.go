// Package cli provides the command-line interface for the paper-trading backend.
package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"paper-trader/internal/config"
	"paper-trader/internal/logging"
	"paper-trader/internal/orders"
	"paper-trader/internal/quotes"
	"paper-trader/internal/store"
	"paper-trader/internal/valuation"
)

// Version information
const Version = "0.1.0"

// App holds the application dependencies. It is the composition root:
// everything the engine and services need is constructed here and injected.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Store  store.DataStore
	Quotes quotes.Source
	Engine *valuation.Engine
	Orders *orders.Service
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	dataStore, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize store, commands requiring persistence will fail")
	} else {
		app.Store = dataStore
		app.Quotes = quotes.NewStoreSource(dataStore)

		policy, perr := valuation.ParsePricingPolicy(cfg.Valuation.PricingPolicy)
		if perr != nil {
			logger.Warn().Err(perr).Msg("Invalid pricing policy, using fallback_avg_cost")
			policy = valuation.PricingFallbackToAvgCost
		}

		app.Engine = valuation.NewEngine(dataStore, app.Quotes, dataStore, policy, logger)
		app.Orders = orders.NewService(dataStore, app.Quotes, dataStore, logger)
		logger.Debug().Str("db", cfg.Database.Path).Msg("SQLite store initialized")
	}

	rootCmd := &cobra.Command{
		Use:   "paper-trader",
		Short: "Paper trading backend CLI",
		Long: `Paper-trader simulates account, order, and position management with
portfolio valuation, option Greeks aggregation, and expiration-day analysis.

Market data comes from reference quotes loaded into the local database.`,
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
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/paper-trader)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	addAccountCommands(rootCmd, app)
	addPortfolioCommands(rootCmd, app)
	addOrderCommands(rootCmd, app)
	addMarketCommands(rootCmd, app)

	return rootCmd
}

// accountID resolves the account flag, falling back to the configured default.
func (a *App) accountID(cmd *cobra.Command) string {
	id, _ := cmd.Flags().GetString("account")
	if id == "" {
		id = a.Config.Trading.DefaultAccount
	}
	return id
}
