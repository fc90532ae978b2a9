// Package memory provides an in-process RatioCacheStore backed by a map.
// It serves tests and cache-light deployments; the badger package provides
// the durable equivalent with identical semantics.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/pmallet/valuecheck/internal/interfaces"
	"github.com/pmallet/valuecheck/internal/models"
)

// Cache is a mutex-guarded in-memory ratio cache keyed by ticker.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]models.CacheEntry
	now     func() time.Time // injectable clock for testing
}

// NewCache creates an empty in-memory cache.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]models.CacheEntry),
		now:     time.Now,
	}
}

// SetClock overrides the cache's clock. Test use only.
func (c *Cache) SetClock(now func() time.Time) {
	c.now = now
}

func key(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// Get returns the entry for a ticker, or nil when none exists.
func (c *Cache) Get(_ context.Context, ticker string) (*models.CacheEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key(ticker)]
	if !ok {
		return nil, nil
	}
	out := entry
	return &out, nil
}

// Put overwrites any prior entry for the ticker and resets its telemetry.
func (c *Cache) Put(_ context.Context, ticker string, data models.RatioSnapshot, source models.DataSource, ttl time.Duration, fetchDuration time.Duration) (*models.CacheEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	entry := models.CacheEntry{
		Ticker:          key(ticker),
		Data:            data,
		Source:          source,
		UpdatedAt:       now,
		ExpiresAt:       now.Add(ttl),
		FetchDurationMs: fetchDuration.Milliseconds(),
		ErrorCount:      0,
	}
	c.entries[entry.Ticker] = entry

	out := entry
	return &out, nil
}

// RecordError increments the error counter on an existing entry.
// A no-op when the ticker has never been cached.
func (c *Cache) RecordError(_ context.Context, ticker string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key(ticker)]
	if !ok {
		return nil
	}
	entry.ErrorCount++
	c.entries[entry.Ticker] = entry
	return nil
}

// Invalidate removes the entry for a ticker, if any.
func (c *Cache) Invalidate(_ context.Context, ticker string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key(ticker))
	return nil
}

// Clear removes all entries.
func (c *Cache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]models.CacheEntry)
	return nil
}

// Len returns the number of cached entries, fresh or stale.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Ensure Cache implements RatioCacheStore
var _ interfaces.RatioCacheStore = (*Cache)(nil)
