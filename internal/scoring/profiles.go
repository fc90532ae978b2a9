// Package scoring turns named financial ratios into a composite 0–100
// valuation score under a selectable investment profile.
package scoring

import (
	"fmt"
	"math"

	"github.com/pmallet/valuecheck/internal/models"
)

// ProfileType names an investment style. The set is closed so adding a
// profile is a compile-time-checked extension.
type ProfileType string

const (
	ProfileValue    ProfileType = "value"
	ProfileGrowth   ProfileType = "growth"
	ProfileDividend ProfileType = "dividend"
)

// ParseProfileType validates a caller-supplied profile name.
func ParseProfileType(s string) (ProfileType, error) {
	switch ProfileType(s) {
	case ProfileValue, ProfileGrowth, ProfileDividend:
		return ProfileType(s), nil
	}
	return "", fmt.Errorf("unknown scoring profile %q", s)
}

// RatioThresholds is the ladder of breakpoints for one ratio, ordered from
// best to worst once Inverse is applied. Exactly four breakpoints; values
// ascend or descend consistently with the ratio's natural polarity.
type RatioThresholds struct {
	Excellent float64 `json:"excellent"`
	Good      float64 `json:"good"`
	Fair      float64 `json:"fair"`
	Expensive float64 `json:"expensive"`
}

// RatioDefinition declares how one ratio participates in a profile.
// Inverse means a higher raw value is better (dividend yield, ROE).
type RatioDefinition struct {
	Name       string          `json:"name"`
	Weight     float64         `json:"weight"`
	Thresholds RatioThresholds `json:"thresholds"`
	Inverse    bool            `json:"inverse"`
}

// Profile owns an ordered set of ratio definitions for one investment style.
type Profile struct {
	Type   ProfileType       `json:"type"`
	Ratios []RatioDefinition `json:"ratios"`
}

// Profiles holds the built-in profile tables, keyed by type.
var profiles = map[ProfileType]Profile{
	ProfileValue: {
		Type: ProfileValue,
		Ratios: []RatioDefinition{
			{Name: models.RatioPE, Weight: 0.25, Thresholds: RatioThresholds{Excellent: 10, Good: 15, Fair: 20, Expensive: 30}},
			{Name: models.RatioPB, Weight: 0.25, Thresholds: RatioThresholds{Excellent: 1, Good: 1.5, Fair: 2.5, Expensive: 4}},
			{Name: models.RatioDividendYield, Weight: 0.20, Thresholds: RatioThresholds{Excellent: 4, Good: 3, Fair: 2, Expensive: 1}, Inverse: true},
			{Name: models.RatioDebtToEquity, Weight: 0.15, Thresholds: RatioThresholds{Excellent: 0.5, Good: 1, Fair: 1.5, Expensive: 2.5}},
			{Name: models.RatioROE, Weight: 0.15, Thresholds: RatioThresholds{Excellent: 15, Good: 12, Fair: 8, Expensive: 5}, Inverse: true},
		},
	},
	ProfileGrowth: {
		Type: ProfileGrowth,
		Ratios: []RatioDefinition{
			{Name: models.RatioPEG, Weight: 0.30, Thresholds: RatioThresholds{Excellent: 0.8, Good: 1.2, Fair: 1.8, Expensive: 2.5}},
			{Name: models.RatioPS, Weight: 0.25, Thresholds: RatioThresholds{Excellent: 2, Good: 4, Fair: 7, Expensive: 12}},
			{Name: models.RatioRevenueGrowth, Weight: 0.25, Thresholds: RatioThresholds{Excellent: 20, Good: 12, Fair: 6, Expensive: 2}, Inverse: true},
			{Name: models.RatioROE, Weight: 0.20, Thresholds: RatioThresholds{Excellent: 20, Good: 15, Fair: 10, Expensive: 5}, Inverse: true},
		},
	},
	ProfileDividend: {
		Type: ProfileDividend,
		Ratios: []RatioDefinition{
			{Name: models.RatioDividendYield, Weight: 0.35, Thresholds: RatioThresholds{Excellent: 5, Good: 4, Fair: 3, Expensive: 1.5}, Inverse: true},
			{Name: models.RatioPayoutRatio, Weight: 0.25, Thresholds: RatioThresholds{Excellent: 50, Good: 65, Fair: 80, Expensive: 95}},
			{Name: models.RatioPE, Weight: 0.20, Thresholds: RatioThresholds{Excellent: 12, Good: 16, Fair: 22, Expensive: 30}},
			{Name: models.RatioDebtToEquity, Weight: 0.20, Thresholds: RatioThresholds{Excellent: 0.6, Good: 1, Fair: 1.8, Expensive: 3}},
		},
	},
}

// GetProfile returns the profile table for a type.
func GetProfile(t ProfileType) (Profile, error) {
	p, ok := profiles[t]
	if !ok {
		return Profile{}, fmt.Errorf("unknown scoring profile %q", t)
	}
	return p, nil
}

// ProfileTypes lists the available profile types in a stable order.
func ProfileTypes() []ProfileType {
	return []ProfileType{ProfileValue, ProfileGrowth, ProfileDividend}
}

// Validate checks a profile's internal consistency: unique ratio names,
// weights in (0,1], and a weight sum near 1.0. A drifting weight sum is
// reported but not fatal — Aggregate renormalizes over the declared
// weights either way.
func (p Profile) Validate() error {
	if len(p.Ratios) == 0 {
		return fmt.Errorf("profile %s has no ratios", p.Type)
	}

	seen := make(map[string]bool, len(p.Ratios))
	sum := 0.0
	for _, def := range p.Ratios {
		if def.Name == "" {
			return fmt.Errorf("profile %s has a ratio with no name", p.Type)
		}
		if seen[def.Name] {
			return fmt.Errorf("profile %s declares ratio %s twice", p.Type, def.Name)
		}
		seen[def.Name] = true
		if def.Weight <= 0 || def.Weight > 1 {
			return fmt.Errorf("profile %s ratio %s has weight %.3f outside (0,1]", p.Type, def.Name, def.Weight)
		}
		sum += def.Weight
	}

	if math.Abs(sum-1.0) > 0.001 {
		return fmt.Errorf("profile %s weights sum to %.3f, expected 1.0", p.Type, sum)
	}
	return nil
}
