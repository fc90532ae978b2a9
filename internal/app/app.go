// Package app wires configuration, storage, clients and services into a
// running application core shared by the server and CLI binaries.
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pmallet/valuecheck/internal/clients/alphavantage"
	"github.com/pmallet/valuecheck/internal/clients/boursorama"
	"github.com/pmallet/valuecheck/internal/clients/fmp"
	"github.com/pmallet/valuecheck/internal/common"
	"github.com/pmallet/valuecheck/internal/interfaces"
	"github.com/pmallet/valuecheck/internal/resolver"
	"github.com/pmallet/valuecheck/internal/scoring"
	"github.com/pmallet/valuecheck/internal/storage/badger"
	"github.com/pmallet/valuecheck/internal/storage/memory"
)

// App holds the initialized services and clients. It is the shared core
// used by cmd/valuecheck-server and the valuecheck CLI.
type App struct {
	Config      *common.Config
	Logger      *common.Logger
	Cache       interfaces.RatioCacheStore
	Providers   []interfaces.RatioProvider
	Resolver    interfaces.ResolverService
	Scorer      interfaces.ScoringService
	StartupTime time.Time

	store *badger.Store // nil when the memory backend is selected
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp loads configuration and initializes storage, clients, the
// resolver and the scorer. configPath may be empty, in which case
// VALUECHECK_CONFIG and then the binary directory are consulted.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	binDir := getBinaryDir()

	if configPath == "" {
		configPath = os.Getenv("VALUECHECK_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "valuecheck.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/valuecheck.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative storage path to binary directory
	if config.Storage.Path != "" && !filepath.IsAbs(config.Storage.Path) {
		config.Storage.Path = filepath.Join(binDir, config.Storage.Path)
	}

	logger := common.NewLogger(config.Logging.Level)

	a := &App{
		Config:      config,
		Logger:      logger,
		StartupTime: startupStart,
	}

	if err := a.initStorage(); err != nil {
		return nil, err
	}

	a.initProviders()

	a.Resolver = resolver.NewService(a.Cache, a.Providers, config.Resolver, logger)
	a.Scorer = scoring.NewService(logger)

	logger.Info().
		Dur("startup", time.Since(startupStart)).
		Int("providers", len(a.Providers)).
		Str("storage", config.Storage.Backend).
		Msg("App initialized")

	return a, nil
}

// initStorage selects the cache backend from configuration.
func (a *App) initStorage() error {
	switch a.Config.Storage.Backend {
	case "memory":
		a.Cache = memory.NewCache()
	case "", "badger":
		store, err := badger.NewStore(a.Logger, a.Config.Storage.Path)
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
		a.store = store
		a.Cache = badger.NewRatioCache(store, a.Logger)
	default:
		return fmt.Errorf("unknown storage backend %q", a.Config.Storage.Backend)
	}
	return nil
}

// initProviders builds the fallback chain in priority order: FMP first,
// Alpha Vantage second, the Boursorama scraper last. API-keyed providers
// without a key are skipped with a warning.
func (a *App) initProviders() {
	cfg := a.Config.Clients

	if cfg.FMP.APIKey != "" {
		a.Providers = append(a.Providers, fmp.NewClient(cfg.FMP.APIKey,
			fmp.WithBaseURL(cfg.FMP.BaseURL),
			fmp.WithLogger(a.Logger),
			fmp.WithRateLimit(cfg.FMP.RateLimit),
			fmp.WithTimeout(cfg.FMP.GetTimeout()),
			fmp.WithTTL(cfg.FMP.GetTTL()),
		))
	} else {
		a.Logger.Warn().Msg("FMP API key not configured - primary ratio source unavailable")
	}

	if cfg.AlphaVantage.APIKey != "" {
		a.Providers = append(a.Providers, alphavantage.NewClient(cfg.AlphaVantage.APIKey,
			alphavantage.WithBaseURL(cfg.AlphaVantage.BaseURL),
			alphavantage.WithLogger(a.Logger),
			alphavantage.WithRateLimit(cfg.AlphaVantage.RateLimit),
			alphavantage.WithTimeout(cfg.AlphaVantage.GetTimeout()),
			alphavantage.WithTTL(cfg.AlphaVantage.GetTTL()),
		))
	} else {
		a.Logger.Warn().Msg("Alpha Vantage API key not configured - secondary ratio source unavailable")
	}

	// Scraping needs no key, so it is always registered.
	a.Providers = append(a.Providers, boursorama.NewClient(
		boursorama.WithBaseURL(cfg.Boursorama.BaseURL),
		boursorama.WithLogger(a.Logger),
		boursorama.WithRateLimit(cfg.Boursorama.RateLimit),
		boursorama.WithTimeout(cfg.Boursorama.GetTimeout()),
		boursorama.WithTTL(cfg.Boursorama.GetTTL()),
	))
}

// Close releases all resources held by the App.
func (a *App) Close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("Failed to close storage")
		}
		a.store = nil
	}
}
