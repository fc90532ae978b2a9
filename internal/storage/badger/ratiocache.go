package badger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/pmallet/valuecheck/internal/common"
	"github.com/pmallet/valuecheck/internal/interfaces"
	"github.com/pmallet/valuecheck/internal/models"
)

// ratioCache implements RatioCacheStore on top of BadgerHold.
// One record per ticker; TTL is checked by readers, not enforced here,
// so stale entries stay available as degraded fallbacks.
type ratioCache struct {
	store  *Store
	logger *common.Logger
	now    func() time.Time // injectable clock for testing
}

// NewRatioCache creates a durable RatioCacheStore backed by BadgerHold.
func NewRatioCache(store *Store, logger *common.Logger) interfaces.RatioCacheStore {
	return &ratioCache{store: store, logger: logger, now: time.Now}
}

func cacheKey(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

func (c *ratioCache) Get(_ context.Context, ticker string) (*models.CacheEntry, error) {
	var entry models.CacheEntry
	err := c.store.db.Get(cacheKey(ticker), &entry)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cache entry for %s: %w", ticker, err)
	}
	return &entry, nil
}

func (c *ratioCache) Put(_ context.Context, ticker string, data models.RatioSnapshot, source models.DataSource, ttl time.Duration, fetchDuration time.Duration) (*models.CacheEntry, error) {
	now := c.now()
	entry := models.CacheEntry{
		Ticker:          cacheKey(ticker),
		Data:            data,
		Source:          source,
		UpdatedAt:       now,
		ExpiresAt:       now.Add(ttl),
		FetchDurationMs: fetchDuration.Milliseconds(),
		ErrorCount:      0,
	}

	if err := c.store.db.Upsert(entry.Ticker, &entry); err != nil {
		return nil, fmt.Errorf("failed to put cache entry for %s: %w", ticker, err)
	}

	c.logger.Debug().
		Str("ticker", entry.Ticker).
		Str("source", string(source)).
		Time("expires_at", entry.ExpiresAt).
		Msg("Cached ratio snapshot")

	return &entry, nil
}

func (c *ratioCache) RecordError(_ context.Context, ticker string) error {
	key := cacheKey(ticker)

	var entry models.CacheEntry
	err := c.store.db.Get(key, &entry)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil // nothing to mark
		}
		return fmt.Errorf("failed to load cache entry for %s: %w", ticker, err)
	}

	entry.ErrorCount++
	if err := c.store.db.Update(key, &entry); err != nil {
		return fmt.Errorf("failed to record error for %s: %w", ticker, err)
	}
	return nil
}

func (c *ratioCache) Invalidate(_ context.Context, ticker string) error {
	err := c.store.db.Delete(cacheKey(ticker), models.CacheEntry{})
	if err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to invalidate %s: %w", ticker, err)
	}
	return nil
}

func (c *ratioCache) Clear(_ context.Context) error {
	if err := c.store.db.DeleteMatching(models.CacheEntry{}, nil); err != nil {
		return fmt.Errorf("failed to clear ratio cache: %w", err)
	}
	return nil
}

// Ensure ratioCache implements RatioCacheStore
var _ interfaces.RatioCacheStore = (*ratioCache)(nil)
