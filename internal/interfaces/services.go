package interfaces

import (
	"context"

	"github.com/pmallet/valuecheck/internal/models"
	"github.com/pmallet/valuecheck/internal/scoring"
)

// ResolverService resolves tickers to current ratio data through the
// cache and the provider fallback chain.
type ResolverService interface {
	// Resolve returns ratio data for one ticker.
	Resolve(ctx context.Context, ticker string) (*models.Resolution, error)

	// ResolveBatch resolves up to 10 tickers, preserving input order.
	// Oversized batches are rejected before any provider call.
	ResolveBatch(ctx context.Context, tickers []string) ([]models.BatchResult, error)
}

// ScoringService turns ratio values into a composite score under a profile.
type ScoringService interface {
	// Score aggregates the ratios under the named profile.
	Score(values models.RatioValues, profile scoring.ProfileType) (*models.ScoreResult, error)
}
