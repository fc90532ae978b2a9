package scoring

import (
	"github.com/pmallet/valuecheck/internal/models"
)

// Aggregate combines per-ratio sub-scores into the composite score and
// verdict for one profile. Weights are renormalized over the ratios the
// profile declares, so the result stays within [0,100] even when the
// stated weights do not sum exactly to 1. The full breakdown is returned
// so callers can render per-ratio contributions without recomputation.
func Aggregate(values models.RatioValues, profile Profile) *models.ScoreResult {
	breakdown := make([]models.ScoreBreakdown, 0, len(profile.Ratios))

	weightSum := 0.0
	weighted := 0.0

	for _, def := range profile.Ratios {
		var raw *float64
		if v, ok := values.Get(def.Name); ok {
			value := v
			raw = &value
		}

		sub := ScoreRatio(raw, def)
		contribution := sub * def.Weight

		weightSum += def.Weight
		weighted += contribution

		breakdown = append(breakdown, models.ScoreBreakdown{
			Name:         def.Name,
			RawValue:     raw,
			SubScore:     sub,
			Weight:       def.Weight,
			Contribution: contribution,
		})
	}

	score := 0.0
	if weightSum > 0 {
		score = weighted / weightSum
	}
	score = clamp(score, 0, 100)

	return &models.ScoreResult{
		Score:     score,
		Verdict:   models.VerdictForScore(score),
		Breakdown: breakdown,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
