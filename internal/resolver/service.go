// Package resolver turns a ticker into current ratio data through the
// cache and an ordered provider fallback chain.
package resolver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pmallet/valuecheck/internal/common"
	"github.com/pmallet/valuecheck/internal/interfaces"
	"github.com/pmallet/valuecheck/internal/models"
)

// Service resolves tickers against the cache first, then walks the
// providers in registration order until one succeeds. Expired cache
// entries are returned as a stale last resort when every provider fails.
type Service struct {
	cache            interfaces.RatioCacheStore
	providers        []interfaces.RatioProvider
	logger           *common.Logger
	attemptTimeout   time.Duration
	batchLimit       int
	batchConcurrency int
	now              func() time.Time
}

// NewService creates a resolver. Provider order is significant: it is
// the fallback priority, most trusted first.
func NewService(cache interfaces.RatioCacheStore, providers []interfaces.RatioProvider, cfg common.ResolverConfig, logger *common.Logger) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}

	limit := cfg.BatchLimit
	if limit <= 0 {
		limit = 10
	}
	concurrency := cfg.BatchConcurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	return &Service{
		cache:            cache,
		providers:        providers,
		logger:           logger,
		attemptTimeout:   cfg.GetAttemptTimeout(),
		batchLimit:       limit,
		batchConcurrency: concurrency,
		now:              time.Now,
	}
}

// SetClock overrides the freshness clock, for tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// NormalizeTicker canonicalizes a ticker for cache keys and provider
// calls: trimmed and upper-cased.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// Resolve returns ratio data for one ticker. A fresh cache entry short
// circuits the chain; otherwise providers are tried in order, each
// bounded by the attempt timeout, and the first success is cached with
// that provider's TTL. When everything fails, a stale cache entry is
// returned flagged as such, or a ResolutionError when there is none.
func (s *Service) Resolve(ctx context.Context, ticker string) (*models.Resolution, error) {
	ticker = NormalizeTicker(ticker)
	if ticker == "" {
		return nil, fmt.Errorf("ticker is required")
	}

	entry, err := s.cache.Get(ctx, ticker)
	if err != nil {
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Cache read failed, falling through to providers")
	}
	if entry != nil && entry.Fresh(s.now()) {
		s.logger.Debug().Str("ticker", ticker).Str("source", string(entry.Source)).Msg("Cache hit")
		return &models.Resolution{
			Data:      entry.Data,
			Source:    entry.Source,
			FromCache: true,
		}, nil
	}

	attempted := make([]models.DataSource, 0, len(s.providers))
	lastErrors := make(map[models.DataSource]error, len(s.providers))

	for _, provider := range s.providers {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		source := provider.Name()
		attempted = append(attempted, source)

		snapshot, fetchDuration, fetchErr := s.fetch(ctx, provider, ticker)
		if fetchErr != nil {
			lastErrors[source] = fetchErr
			s.logger.Warn().
				Err(fetchErr).
				Str("ticker", ticker).
				Str("source", string(source)).
				Msg("Provider fetch failed, trying next source")
			if recErr := s.cache.RecordError(ctx, ticker); recErr != nil {
				s.logger.Warn().Err(recErr).Str("ticker", ticker).Msg("Failed to record fetch error")
			}
			continue
		}

		snapshot.Ticker = ticker
		if _, putErr := s.cache.Put(ctx, ticker, *snapshot, source, provider.TTL(), fetchDuration); putErr != nil {
			// A cache write failure degrades the next call, not this one.
			s.logger.Warn().Err(putErr).Str("ticker", ticker).Msg("Failed to cache snapshot")
		}

		s.logger.Info().
			Str("ticker", ticker).
			Str("source", string(source)).
			Dur("fetch_duration", fetchDuration).
			Msg("Resolved ticker")

		return &models.Resolution{
			Data:   *snapshot,
			Source: source,
		}, nil
	}

	if entry != nil {
		s.logger.Warn().
			Str("ticker", ticker).
			Str("source", string(entry.Source)).
			Time("expired_at", entry.ExpiresAt).
			Msg("All sources failed, serving stale cache entry")
		return &models.Resolution{
			Data:      entry.Data,
			Source:    entry.Source,
			FromCache: true,
			Stale:     true,
		}, nil
	}

	return nil, &ResolutionError{
		Ticker:     ticker,
		Attempted:  attempted,
		LastErrors: lastErrors,
	}
}

// fetch runs one provider attempt under the per-attempt timeout.
func (s *Service) fetch(ctx context.Context, provider interfaces.RatioProvider, ticker string) (*models.RatioSnapshot, time.Duration, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, s.attemptTimeout)
	defer cancel()

	start := time.Now()
	snapshot, err := provider.FetchRatios(attemptCtx, ticker)
	elapsed := time.Since(start)
	if err != nil {
		return nil, elapsed, err
	}
	return snapshot, elapsed, nil
}

// ResolveBatch resolves up to the batch limit of tickers concurrently.
// Oversized batches are rejected before any cache or provider work.
// Results preserve input order; each position carries its own outcome.
func (s *Service) ResolveBatch(ctx context.Context, tickers []string) ([]models.BatchResult, error) {
	if len(tickers) > s.batchLimit {
		return nil, &BatchSizeError{Size: len(tickers), Limit: s.batchLimit}
	}

	results := make([]models.BatchResult, len(tickers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.batchConcurrency)

	for i, ticker := range tickers {
		i, ticker := i, NormalizeTicker(ticker)
		g.Go(func() error {
			resolution, err := s.Resolve(gctx, ticker)
			results[i] = models.BatchResult{
				Ticker:     ticker,
				Resolution: resolution,
				Err:        err,
			}
			// Per-ticker failures land in the result slot and must not
			// cancel the sibling resolutions.
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// Ensure Service implements ResolverService
var _ interfaces.ResolverService = (*Service)(nil)
