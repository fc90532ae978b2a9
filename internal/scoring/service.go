package scoring

import (
	"github.com/pmallet/valuecheck/internal/common"
	"github.com/pmallet/valuecheck/internal/models"
)

// Service scores ratio values under the built-in profiles.
type Service struct {
	logger *common.Logger
}

// NewService creates a scoring service. Profile tables are validated once
// here; a weight sum drifting from 1.0 is logged rather than rejected
// because Aggregate renormalizes over the declared weights anyway.
func NewService(logger *common.Logger) *Service {
	s := &Service{logger: logger}

	for _, t := range ProfileTypes() {
		p, err := GetProfile(t)
		if err != nil {
			continue
		}
		if err := p.Validate(); err != nil {
			logger.Warn().Str("profile", string(t)).Err(err).Msg("Scoring profile validation warning")
		}
	}

	return s
}

// Score aggregates the given ratios under the named profile.
func (s *Service) Score(values models.RatioValues, profile ProfileType) (*models.ScoreResult, error) {
	p, err := GetProfile(profile)
	if err != nil {
		return nil, err
	}

	result := Aggregate(values, p)

	s.logger.Debug().
		Str("profile", string(profile)).
		Float64("score", result.Score).
		Str("verdict", string(result.Verdict)).
		Int("ratios", len(result.Breakdown)).
		Msg("Computed composite score")

	return result, nil
}
