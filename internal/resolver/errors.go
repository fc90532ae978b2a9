package resolver

import (
	"fmt"
	"strings"

	"github.com/pmallet/valuecheck/internal/models"
)

// ResolutionError reports that every provider in the fallback chain
// failed for a ticker and no cached data, even stale, was available.
type ResolutionError struct {
	Ticker     string
	Attempted  []models.DataSource
	LastErrors map[models.DataSource]error
}

func (e *ResolutionError) Error() string {
	parts := make([]string, 0, len(e.Attempted))
	for _, source := range e.Attempted {
		if err, ok := e.LastErrors[source]; ok {
			parts = append(parts, fmt.Sprintf("%s: %v", source, err))
		}
	}
	return fmt.Sprintf("all sources failed for ticker %s [%s]", e.Ticker, strings.Join(parts, "; "))
}

// BatchSizeError rejects an oversized batch before any resolution starts.
type BatchSizeError struct {
	Size  int
	Limit int
}

func (e *BatchSizeError) Error() string {
	return fmt.Sprintf("batch of %d tickers exceeds the limit of %d", e.Size, e.Limit)
}
