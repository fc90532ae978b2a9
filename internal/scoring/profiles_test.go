package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmallet/valuecheck/internal/common"
	"github.com/pmallet/valuecheck/internal/models"
)

func TestBuiltinProfilesValidate(t *testing.T) {
	for _, pt := range ProfileTypes() {
		p, err := GetProfile(pt)
		require.NoError(t, err, "profile %s", pt)
		assert.NoError(t, p.Validate(), "profile %s", pt)
	}
}

func TestParseProfileType(t *testing.T) {
	for _, s := range []string{"value", "growth", "dividend"} {
		pt, err := ParseProfileType(s)
		require.NoError(t, err)
		assert.Equal(t, ProfileType(s), pt)
	}

	_, err := ParseProfileType("momentum")
	assert.Error(t, err)
}

func TestGetProfile_Unknown(t *testing.T) {
	_, err := GetProfile(ProfileType("contrarian"))
	assert.Error(t, err)
}

func TestProfileValidate_Errors(t *testing.T) {
	thresholds := RatioThresholds{Excellent: 10, Good: 15, Fair: 20, Expensive: 30}

	tests := []struct {
		name    string
		profile Profile
	}{
		{
			"empty profile",
			Profile{Type: ProfileValue},
		},
		{
			"duplicate ratio",
			Profile{Type: ProfileValue, Ratios: []RatioDefinition{
				{Name: models.RatioPE, Weight: 0.5, Thresholds: thresholds},
				{Name: models.RatioPE, Weight: 0.5, Thresholds: thresholds},
			}},
		},
		{
			"weight out of range",
			Profile{Type: ProfileValue, Ratios: []RatioDefinition{
				{Name: models.RatioPE, Weight: 1.5, Thresholds: thresholds},
			}},
		},
		{
			"weights do not sum to one",
			Profile{Type: ProfileValue, Ratios: []RatioDefinition{
				{Name: models.RatioPE, Weight: 0.5, Thresholds: thresholds},
				{Name: models.RatioPB, Weight: 0.4, Thresholds: thresholds},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.profile.Validate())
		})
	}
}

func TestService_Score(t *testing.T) {
	svc := NewService(common.NewSilentLogger())

	result, err := svc.Score(models.RatioValues{models.RatioPE: 10}, ProfileValue)
	require.NoError(t, err)
	assert.Len(t, result.Breakdown, 5)

	_, err = svc.Score(models.RatioValues{}, ProfileType("bogus"))
	assert.Error(t, err)
}
