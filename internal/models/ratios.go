// Package models defines data structures for valuecheck
package models

import (
	"time"
)

// DataSource identifies where a ratio snapshot came from.
// The set is closed: adding a provider means adding a constant here,
// which keeps exhaustive switches compile-checked.
type DataSource string

const (
	SourceFMP          DataSource = "fmp"
	SourceAlphaVantage DataSource = "alphavantage"
	SourceBoursorama   DataSource = "boursorama"
	SourceManual       DataSource = "manual"
)

// Valid reports whether the source is one of the known providers.
func (s DataSource) Valid() bool {
	switch s {
	case SourceFMP, SourceAlphaVantage, SourceBoursorama, SourceManual:
		return true
	}
	return false
}

// Ratio names shared by providers and scoring profiles. A provider that
// cannot supply one of these simply omits it from RatioValues.
const (
	RatioPE            = "PE"
	RatioPB            = "PB"
	RatioPS            = "PS"
	RatioPEG           = "PEG"
	RatioDividendYield = "DividendYield"
	RatioDebtToEquity  = "DebtToEquity"
	RatioROE           = "ROE"
	RatioPayoutRatio   = "PayoutRatio"
	RatioRevenueGrowth = "RevenueGrowth"
)

// RatioValues maps a ratio name to its raw value. A missing key means the
// ratio is not available for this stock — never zero.
type RatioValues map[string]float64

// Get returns the value for a ratio and whether it is present.
func (v RatioValues) Get(name string) (float64, bool) {
	val, ok := v[name]
	return val, ok
}

// RatioSnapshot holds the ratios fetched for a ticker plus identification
// metadata reported by the provider.
type RatioSnapshot struct {
	Ticker   string      `json:"ticker"`
	Name     string      `json:"name,omitempty"`
	Currency string      `json:"currency,omitempty"`
	Price    float64     `json:"price,omitempty"`
	Ratios   RatioValues `json:"ratios"`
	AsOf     time.Time   `json:"as_of"`
}

// CacheEntry is a stored ratio snapshot with provenance and telemetry.
// Keyed uniquely by ticker. An entry past ExpiresAt is stale but kept:
// it remains readable as a degraded fallback when all providers fail.
type CacheEntry struct {
	Ticker          string        `json:"ticker" badgerhold:"key"`
	Data            RatioSnapshot `json:"data"`
	Source          DataSource    `json:"source"`
	ExpiresAt       time.Time     `json:"expires_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
	FetchDurationMs int64         `json:"fetch_duration_ms,omitempty"`
	ErrorCount      int           `json:"error_count"`
}

// Fresh reports whether the entry is still valid at the given instant.
// The comparison is strict: an entry expiring exactly now is already stale.
func (e *CacheEntry) Fresh(now time.Time) bool {
	return e.ExpiresAt.After(now)
}

// BatchResult pairs a ticker with its resolution outcome. Exactly one of
// Resolution and Err is set; order matches the batch input.
type BatchResult struct {
	Ticker     string      `json:"ticker"`
	Resolution *Resolution `json:"resolution,omitempty"`
	Err        error       `json:"-"`
}

// Resolution is the outcome of resolving a ticker to ratio data.
type Resolution struct {
	Data      RatioSnapshot `json:"data"`
	Source    DataSource    `json:"source"`
	FromCache bool          `json:"from_cache"`
	// Stale is set when every provider failed and an expired cache entry
	// was returned as a last resort.
	Stale bool `json:"stale,omitempty"`
}
