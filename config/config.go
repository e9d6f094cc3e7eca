// Package config loads application settings from .env, an optional YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"option-explorer/interfaces"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Provider names accepted by provider.options and provider.history
const (
	ProviderYahoo   = "yahoo"
	ProviderAlpaca  = "alpaca"
	ProviderPolygon = "polygon"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Provider ProviderConfig `mapstructure:"provider"`
	Yahoo    YahooConfig    `mapstructure:"yahoo"`
	Alpaca   AlpacaConfig   `mapstructure:"alpaca"`
	Polygon  PolygonConfig  `mapstructure:"polygon"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Log      LogConfig      `mapstructure:"log"`
	Defaults DefaultsConfig `mapstructure:"defaults"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port    int    `mapstructure:"port"`
	GinMode string `mapstructure:"gin_mode"` // debug, release, test
}

// ProviderConfig selects the upstream for each data source.
type ProviderConfig struct {
	Options string        `mapstructure:"options"` // yahoo, alpaca
	History string        `mapstructure:"history"` // yahoo, alpaca, polygon
	Timeout time.Duration `mapstructure:"timeout"`
}

// YahooConfig holds Yahoo Finance endpoints.
type YahooConfig struct {
	OptionsURL string `mapstructure:"options_url"`
	ChartURL   string `mapstructure:"chart_url"`
	UserAgent  string `mapstructure:"user_agent"`
}

// AlpacaConfig holds Alpaca credentials and endpoints.
type AlpacaConfig struct {
	APIKey     string `mapstructure:"api_key"`
	SecretKey  string `mapstructure:"secret_key"`
	DataURL    string `mapstructure:"data_url"`
	TradingURL string `mapstructure:"trading_url"`
}

// PolygonConfig holds Polygon credentials.
type PolygonConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// StorageConfig holds the lookup journal settings. An empty DBPath disables the journal.
type StorageConfig struct {
	DBPath    string        `mapstructure:"db_path"`
	Retention time.Duration `mapstructure:"retention"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"` // text, json
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"` // megabytes
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
}

// DefaultsConfig holds the selection used when a request leaves fields empty.
type DefaultsConfig struct {
	Ticker    string `mapstructure:"ticker"`
	Parameter string `mapstructure:"parameter"`
	Period    string `mapstructure:"period"`
}

// Load reads configuration. configFile may be empty, in which case ./config.yaml is
// used when present.
func Load(configFile string) (*Config, error) {
	// Load .env file if it exists; a missing file is not an error.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix("EXPLORER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Conventional variable names used by the upstream SDKs
	_ = v.BindEnv("alpaca.api_key", "EXPLORER_ALPACA_API_KEY", "APCA_API_KEY_ID")
	_ = v.BindEnv("alpaca.secret_key", "EXPLORER_ALPACA_SECRET_KEY", "APCA_API_SECRET_KEY")
	_ = v.BindEnv("polygon.api_key", "EXPLORER_POLYGON_API_KEY", "POLYGON_API_KEY")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	cfg.Provider.Options = strings.ToLower(cfg.Provider.Options)
	cfg.Provider.History = strings.ToLower(cfg.Provider.History)
	cfg.Defaults.Ticker = strings.ToUpper(cfg.Defaults.Ticker)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.gin_mode", "release")

	v.SetDefault("provider.options", ProviderYahoo)
	v.SetDefault("provider.history", ProviderYahoo)
	v.SetDefault("provider.timeout", 15*time.Second)

	v.SetDefault("yahoo.options_url", "https://query2.finance.yahoo.com")
	v.SetDefault("yahoo.chart_url", "https://query1.finance.yahoo.com")
	v.SetDefault("yahoo.user_agent", "Mozilla/5.0 (compatible; option-explorer/1.0)")

	v.SetDefault("alpaca.api_key", "")
	v.SetDefault("alpaca.secret_key", "")
	v.SetDefault("alpaca.data_url", "https://data.alpaca.markets")
	v.SetDefault("alpaca.trading_url", "https://paper-api.alpaca.markets")

	v.SetDefault("polygon.api_key", "")

	v.SetDefault("storage.db_path", "")
	v.SetDefault("storage.retention", 30*24*time.Hour)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age", 30)

	v.SetDefault("defaults.ticker", "AAPL")
	v.SetDefault("defaults.parameter", string(interfaces.PlotLastPrice))
	v.SetDefault("defaults.period", string(interfaces.Period1Month))
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Provider.Options {
	case ProviderYahoo:
	case ProviderAlpaca:
		if c.Alpaca.APIKey == "" || c.Alpaca.SecretKey == "" {
			return fmt.Errorf("alpaca options provider requires alpaca.api_key and alpaca.secret_key")
		}
	default:
		return fmt.Errorf("invalid options provider: %s (must be 'yahoo' or 'alpaca')", c.Provider.Options)
	}

	switch c.Provider.History {
	case ProviderYahoo:
	case ProviderAlpaca:
		if c.Alpaca.APIKey == "" || c.Alpaca.SecretKey == "" {
			return fmt.Errorf("alpaca history provider requires alpaca.api_key and alpaca.secret_key")
		}
	case ProviderPolygon:
		if c.Polygon.APIKey == "" {
			return fmt.Errorf("polygon history provider requires polygon.api_key")
		}
	default:
		return fmt.Errorf("invalid history provider: %s (must be 'yahoo', 'alpaca' or 'polygon')", c.Provider.History)
	}

	if c.Provider.Timeout <= 0 {
		return fmt.Errorf("provider.timeout must be positive")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if !interfaces.PlotParameter(c.Defaults.Parameter).Valid() {
		return fmt.Errorf("invalid defaults.parameter: %s", c.Defaults.Parameter)
	}
	if !interfaces.HistoricalPeriod(c.Defaults.Period).Valid() {
		return fmt.Errorf("invalid defaults.period: %s", c.Defaults.Period)
	}
	if c.Storage.Retention < 0 {
		return fmt.Errorf("storage.retention must be non-negative")
	}

	return nil
}

// JournalEnabled reports whether lookups are persisted.
func (c *Config) JournalEnabled() bool {
	return c.Storage.DBPath != ""
}

// DefaultParameter returns the configured default plot parameter.
func (c *Config) DefaultParameter() interfaces.PlotParameter {
	return interfaces.PlotParameter(c.Defaults.Parameter)
}

// DefaultPeriod returns the configured default historical period.
func (c *Config) DefaultPeriod() interfaces.HistoricalPeriod {
	return interfaces.HistoricalPeriod(c.Defaults.Period)
}
