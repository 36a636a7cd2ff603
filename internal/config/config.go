// Package config provides configuration management for the paper-trading backend.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Trading   TradingConfig   `mapstructure:"trading"`
	Valuation ValuationConfig `mapstructure:"valuation"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// TradingConfig holds trading-related configuration.
type TradingConfig struct {
	DefaultAccount string  `mapstructure:"default_account"`
	StartingCash   float64 `mapstructure:"starting_cash"`
}

// ValuationConfig holds valuation engine configuration.
type ValuationConfig struct {
	// PricingPolicy selects behavior for positions whose quote carries no
	// price: "fallback_avg_cost" or "require_quote".
	PricingPolicy string `mapstructure:"pricing_policy"`
}

// DatabaseConfig holds persistence configuration.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Console    bool   `mapstructure:"console"`
	File       bool   `mapstructure:"file"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/paper-trader"
	}
	return filepath.Join(home, ".config", "paper-trader")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	setDefaults(v, configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("loading config.toml: %w", err)
		}
		// Missing config file is fine; defaults apply.
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, configDir string) {
	v.SetDefault("trading.default_account", "")
	v.SetDefault("trading.starting_cash", 100000.0)
	v.SetDefault("valuation.pricing_policy", "fallback_avg_cost")
	v.SetDefault("database.path", filepath.Join(configDir, "trader.db"))
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.console", true)
	v.SetDefault("logging.file", true)
	v.SetDefault("logging.file_path", filepath.Join(configDir, "logs", "trader.log"))
	v.SetDefault("logging.max_size", 100)
	v.SetDefault("logging.max_backups", 7)
	v.SetDefault("logging.max_age", 30)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PAPER_TRADER_DB"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("PAPER_TRADER_ACCOUNT"); v != "" {
		cfg.Trading.DefaultAccount = v
	}
	if v := os.Getenv("PAPER_TRADER_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Valuation.PricingPolicy {
	case "", "fallback_avg_cost", "require_quote":
	default:
		return fmt.Errorf("invalid pricing policy: %s (must be 'fallback_avg_cost' or 'require_quote')", c.Valuation.PricingPolicy)
	}

	if c.Trading.StartingCash < 0 {
		return fmt.Errorf("starting cash must not be negative: %f", c.Trading.StartingCash)
	}

	return nil
}
