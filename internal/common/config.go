// Package common provides shared utilities for Foregone
package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Foregone
type Config struct {
	Environment string           `toml:"environment"`
	Currency    string           `toml:"currency"` // default display currency for simulations
	Server      ServerConfig     `toml:"server"`
	Storage     StorageConfig    `toml:"storage"`
	Clients     ClientsConfig    `toml:"clients"`
	Simulation  SimulationConfig `toml:"simulation"`
	Logging     LoggingConfig    `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	RateLimit     int    `toml:"rate_limit"` // requests per second per client IP
	RateLimitBurst int   `toml:"rate_limit_burst"`
}

// StorageConfig holds storage paths for the durable tier.
type StorageConfig struct {
	Path string `toml:"path"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	Yahoo YahooConfig `toml:"yahoo"`
}

// YahooConfig holds Yahoo Finance API configuration
type YahooConfig struct {
	ChartURL  string `toml:"chart_url"`
	SearchURL string `toml:"search_url"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *YahooConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// SimulationConfig bounds simulation cost and tunes output size.
// The engine itself is unbounded; these ceilings are enforced at the
// service boundary before it runs.
type SimulationConfig struct {
	MaxItems         int      `toml:"max_items"`
	MaxWindowDays    int      `toml:"max_window_days"`
	DownsampleTarget int      `toml:"downsample_target"`
	WarmTickers      []string `toml:"warm_tickers"`
	RefreshSchedule  string   `toml:"refresh_schedule"` // cron expression for nightly data refresh
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level    string `toml:"level"`
	Format   string `toml:"format"`
	FilePath string `toml:"file_path"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Currency:    "USD",
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           8080,
			RateLimit:      10,
			RateLimitBurst: 20,
		},
		Storage: StorageConfig{
			Path: "data",
		},
		Clients: ClientsConfig{
			Yahoo: YahooConfig{
				ChartURL:  "https://query1.finance.yahoo.com/v8/finance/chart",
				SearchURL: "https://query1.finance.yahoo.com/v1/finance/search",
				RateLimit: 5,
				Timeout:   "30s",
			},
		},
		Simulation: SimulationConfig{
			MaxItems:         50,
			MaxWindowDays:    15000, // ~41 years of daily steps
			DownsampleTarget: 500,
			RefreshSchedule:  "30 2 * * *",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides.
// Later files override earlier ones; missing files are skipped.
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)
	validateCurrency(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("FOREGONE_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("FOREGONE_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("FOREGONE_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("FOREGONE_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("FOREGONE_DATA_PATH"); path != "" {
		config.Storage.Path = path
	}

	if cur := os.Getenv("FOREGONE_CURRENCY"); cur != "" {
		config.Currency = strings.ToUpper(cur)
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// DurablePath returns the badger directory under the storage root.
func (c *Config) DurablePath() string {
	return filepath.Join(c.Storage.Path, "durable")
}

// validateCurrency ensures the display currency is a 3-letter code,
// defaulting to USD.
func validateCurrency(config *Config) {
	cur := strings.ToUpper(strings.TrimSpace(config.Currency))
	if len(cur) != 3 {
		cur = "USD"
	}
	config.Currency = cur
}
