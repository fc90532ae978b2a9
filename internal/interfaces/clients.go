// Package interfaces defines service contracts for valuecheck
package interfaces

import (
	"context"
	"time"

	"github.com/pmallet/valuecheck/internal/models"
)

// RatioProvider is the single capability every market-data source exposes.
// The resolver treats all providers polymorphically through it.
type RatioProvider interface {
	// Name identifies the provider for provenance and telemetry.
	Name() models.DataSource

	// FetchRatios retrieves current financial ratios for a ticker.
	FetchRatios(ctx context.Context, ticker string) (*models.RatioSnapshot, error)

	// TTL is how long a snapshot from this provider stays fresh in cache.
	TTL() time.Duration
}
