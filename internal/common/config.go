// Package common provides shared utilities for valuecheck
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for valuecheck
type Config struct {
	Environment string         `toml:"environment"`
	Server      ServerConfig   `toml:"server"`
	Storage     StorageConfig  `toml:"storage"`
	Clients     ClientsConfig  `toml:"clients"`
	Resolver    ResolverConfig `toml:"resolver"`
	Logging     LoggingConfig  `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds ratio cache storage configuration.
// Backend is "badger" (durable, default) or "memory".
type StorageConfig struct {
	Backend string `toml:"backend"`
	Path    string `toml:"path"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	FMP          FMPConfig          `toml:"fmp"`
	AlphaVantage AlphaVantageConfig `toml:"alphavantage"`
	Boursorama   BoursoramaConfig   `toml:"boursorama"`
}

// FMPConfig holds Financial Modeling Prep API configuration
type FMPConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
	TTL       string `toml:"ttl"`
}

// AlphaVantageConfig holds Alpha Vantage API configuration
type AlphaVantageConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
	TTL       string `toml:"ttl"`
}

// BoursoramaConfig holds the scraping fallback configuration
type BoursoramaConfig struct {
	BaseURL   string `toml:"base_url"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
	TTL       string `toml:"ttl"`
}

// ResolverConfig holds fallback-chain and batch settings
type ResolverConfig struct {
	AttemptTimeout   string `toml:"attempt_timeout"`   // per-provider attempt bound
	BatchLimit       int    `toml:"batch_limit"`       // max tickers per batch call
	BatchConcurrency int    `toml:"batch_concurrency"` // parallel resolutions per batch
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `toml:"level"`
}

// ParseDurationOr parses a duration string, returning the fallback on
// empty or malformed input.
func ParseDurationOr(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

// GetTimeout parses and returns the HTTP timeout duration
func (c *FMPConfig) GetTimeout() time.Duration { return ParseDurationOr(c.Timeout, 10*time.Second) }

// GetTTL parses and returns the cache TTL for this provider
func (c *FMPConfig) GetTTL() time.Duration { return ParseDurationOr(c.TTL, 24*time.Hour) }

// GetTimeout parses and returns the HTTP timeout duration
func (c *AlphaVantageConfig) GetTimeout() time.Duration {
	return ParseDurationOr(c.Timeout, 10*time.Second)
}

// GetTTL parses and returns the cache TTL for this provider
func (c *AlphaVantageConfig) GetTTL() time.Duration { return ParseDurationOr(c.TTL, 24*time.Hour) }

// GetTimeout parses and returns the HTTP timeout duration
func (c *BoursoramaConfig) GetTimeout() time.Duration {
	return ParseDurationOr(c.Timeout, 15*time.Second)
}

// GetTTL parses and returns the cache TTL for this provider.
// Scraped data is considered less reliable, so it expires sooner.
func (c *BoursoramaConfig) GetTTL() time.Duration { return ParseDurationOr(c.TTL, 6*time.Hour) }

// GetAttemptTimeout parses and returns the per-provider attempt timeout
func (c *ResolverConfig) GetAttemptTimeout() time.Duration {
	return ParseDurationOr(c.AttemptTimeout, 8*time.Second)
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Backend: "badger",
			Path:    "data/cache",
		},
		Clients: ClientsConfig{
			FMP: FMPConfig{
				BaseURL:   "https://financialmodelingprep.com/api/v3",
				RateLimit: 5,
				Timeout:   "10s",
				TTL:       "24h",
			},
			AlphaVantage: AlphaVantageConfig{
				BaseURL:   "https://www.alphavantage.co",
				RateLimit: 1,
				Timeout:   "10s",
				TTL:       "24h",
			},
			Boursorama: BoursoramaConfig{
				BaseURL:   "https://www.boursorama.com",
				RateLimit: 1,
				Timeout:   "15s",
				TTL:       "6h",
			},
		},
		Resolver: ResolverConfig{
			AttemptTimeout:   "8s",
			BatchLimit:       10,
			BatchConcurrency: 4,
		},
		Logging: LoggingConfig{
			Level: "info",
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

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("VALUECHECK_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("VALUECHECK_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("VALUECHECK_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("VALUECHECK_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if backend := os.Getenv("VALUECHECK_STORAGE_BACKEND"); backend != "" {
		config.Storage.Backend = backend
	}

	if path := os.Getenv("VALUECHECK_DATA_PATH"); path != "" {
		config.Storage.Path = path
	}

	if v := os.Getenv("FMP_API_KEY"); v != "" {
		config.Clients.FMP.APIKey = v
	}
	if v := os.Getenv("ALPHAVANTAGE_API_KEY"); v != "" {
		config.Clients.AlphaVantage.APIKey = v
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
