package interfaces

import (
	"context"
	"time"

	"github.com/pmallet/valuecheck/internal/models"
)

// RatioCacheStore is a keyed store of previously fetched ratio snapshots.
// Implementations hold one entry per ticker; entries past their TTL are
// kept (stale) rather than deleted so they remain available as a degraded
// fallback. Capacity bounding is the backing store's concern, not ours.
type RatioCacheStore interface {
	// Get returns the entry for a ticker, or nil when none exists.
	// Staleness is not checked here — callers decide via entry.Fresh.
	Get(ctx context.Context, ticker string) (*models.CacheEntry, error)

	// Put overwrites any prior entry for the ticker, stamping UpdatedAt,
	// ExpiresAt = now + ttl, and resetting ErrorCount to zero.
	// fetchDuration is the measured provider round-trip, recorded as
	// telemetry on the entry (zero when unknown).
	Put(ctx context.Context, ticker string, data models.RatioSnapshot, source models.DataSource, ttl time.Duration, fetchDuration time.Duration) (*models.CacheEntry, error)

	// RecordError increments ErrorCount on the existing entry.
	// A no-op when no entry exists for the ticker.
	RecordError(ctx context.Context, ticker string) error

	// Invalidate removes the entry for a ticker, if any.
	Invalidate(ctx context.Context, ticker string) error

	// Clear removes all entries.
	Clear(ctx context.Context) error
}
