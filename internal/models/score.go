package models

// Verdict is the qualitative bucket derived from a composite score.
type Verdict string

const (
	VerdictTropCher     Verdict = "TROP CHER"
	VerdictCher         Verdict = "CHER"
	VerdictCorrect      Verdict = "CORRECT"
	VerdictBonneAffaire Verdict = "BONNE AFFAIRE"
	VerdictExcellente   Verdict = "EXCELLENTE AFFAIRE"
	VerdictOpportunite  Verdict = "OPPORTUNITÉ EXCEPTIONNELLE"
)

// VerdictForScore maps a 0–100 score to its verdict bucket.
// Bucket lower bounds are inclusive and fixed — they are not
// profile-configurable.
func VerdictForScore(score float64) Verdict {
	switch {
	case score < 20:
		return VerdictTropCher
	case score < 40:
		return VerdictCher
	case score < 60:
		return VerdictCorrect
	case score < 75:
		return VerdictBonneAffaire
	case score < 90:
		return VerdictExcellente
	default:
		return VerdictOpportunite
	}
}

// ScoreBreakdown explains one ratio's contribution to the composite score.
// RawValue is nil when the ratio was not available for the stock.
type ScoreBreakdown struct {
	Name         string   `json:"name"`
	RawValue     *float64 `json:"raw_value,omitempty"`
	SubScore     float64  `json:"sub_score"`
	Weight       float64  `json:"weight"`
	Contribution float64  `json:"contribution"`
}

// ScoreResult is the full outcome of scoring a set of ratios under a
// profile. It is computed fresh on every request and never persisted.
type ScoreResult struct {
	Score     float64          `json:"score"`
	Verdict   Verdict          `json:"verdict"`
	Breakdown []ScoreBreakdown `json:"breakdown"`
}
