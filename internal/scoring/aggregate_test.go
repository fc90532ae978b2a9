package scoring

import (
	"math"
	"reflect"
	"testing"

	"github.com/pmallet/valuecheck/internal/models"
)

func TestAggregate_ValueProfileAllExcellent(t *testing.T) {
	values := models.RatioValues{
		models.RatioPE:            10,
		models.RatioPB:            1,
		models.RatioDividendYield: 4,
		models.RatioDebtToEquity:  0.5,
		models.RatioROE:           15,
	}

	profile, err := GetProfile(ProfileValue)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}

	result := Aggregate(values, profile)

	for _, b := range result.Breakdown {
		if b.SubScore != 100 {
			t.Errorf("sub-score for %s = %.1f, want 100", b.Name, b.SubScore)
		}
	}
	if math.Abs(result.Score-100) > 1e-9 {
		t.Errorf("score = %.2f, want 100", result.Score)
	}
	if result.Verdict != models.VerdictOpportunite {
		t.Errorf("verdict = %s, want %s", result.Verdict, models.VerdictOpportunite)
	}
}

func TestAggregate_NoDataIsNeutral(t *testing.T) {
	for _, pt := range ProfileTypes() {
		profile, err := GetProfile(pt)
		if err != nil {
			t.Fatalf("GetProfile(%s): %v", pt, err)
		}

		result := Aggregate(models.RatioValues{}, profile)
		if math.Abs(result.Score-50) > 1e-9 {
			t.Errorf("%s: score = %.2f, want 50 (all neutral)", pt, result.Score)
		}
		if result.Verdict != models.VerdictCorrect {
			t.Errorf("%s: verdict = %s, want %s", pt, result.Verdict, models.VerdictCorrect)
		}
		for _, b := range result.Breakdown {
			if b.RawValue != nil {
				t.Errorf("%s: breakdown %s has raw value for missing ratio", pt, b.Name)
			}
		}
	}
}

func TestAggregate_ScoreAlwaysInRange(t *testing.T) {
	inputs := []models.RatioValues{
		{models.RatioPE: 500, models.RatioPB: 100, models.RatioDebtToEquity: 50},
		{models.RatioPE: -10},
		{models.RatioDividendYield: 50, models.RatioROE: 90},
		{},
	}

	for _, pt := range ProfileTypes() {
		profile, _ := GetProfile(pt)
		for _, values := range inputs {
			result := Aggregate(values, profile)
			if result.Score < 0 || result.Score > 100 {
				t.Errorf("%s: score %.2f out of [0,100] for %v", pt, result.Score, values)
			}
		}
	}
}

func TestAggregate_Idempotent(t *testing.T) {
	values := models.RatioValues{
		models.RatioPE:            17.3,
		models.RatioDividendYield: 2.4,
		models.RatioROE:           11,
	}
	profile, _ := GetProfile(ProfileValue)

	first := Aggregate(values, profile)
	second := Aggregate(values, profile)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Aggregate not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestAggregate_RenormalizesPartialWeights(t *testing.T) {
	// Weights deliberately sum to 0.5: renormalization must still land an
	// all-excellent input on 100 and an all-missing input on 50.
	profile := Profile{
		Type: ProfileValue,
		Ratios: []RatioDefinition{
			{Name: models.RatioPE, Weight: 0.3, Thresholds: RatioThresholds{Excellent: 10, Good: 15, Fair: 20, Expensive: 30}},
			{Name: models.RatioPB, Weight: 0.2, Thresholds: RatioThresholds{Excellent: 1, Good: 1.5, Fair: 2.5, Expensive: 4}},
		},
	}

	full := Aggregate(models.RatioValues{models.RatioPE: 8, models.RatioPB: 0.9}, profile)
	if math.Abs(full.Score-100) > 1e-9 {
		t.Errorf("score = %.2f, want 100 after renormalization", full.Score)
	}

	empty := Aggregate(models.RatioValues{}, profile)
	if math.Abs(empty.Score-50) > 1e-9 {
		t.Errorf("score = %.2f, want 50 after renormalization", empty.Score)
	}
}

func TestAggregate_BreakdownContributions(t *testing.T) {
	values := models.RatioValues{
		models.RatioPE: 15, // sub-score 75
	}
	profile, _ := GetProfile(ProfileValue)

	result := Aggregate(values, profile)

	if len(result.Breakdown) != len(profile.Ratios) {
		t.Fatalf("breakdown has %d entries, want %d", len(result.Breakdown), len(profile.Ratios))
	}

	// Declared order is preserved
	for i, def := range profile.Ratios {
		if result.Breakdown[i].Name != def.Name {
			t.Errorf("breakdown[%d] = %s, want %s", i, result.Breakdown[i].Name, def.Name)
		}
	}

	pe := result.Breakdown[0]
	if pe.SubScore != 75 {
		t.Errorf("PE sub-score = %.1f, want 75", pe.SubScore)
	}
	if math.Abs(pe.Contribution-75*0.25) > 1e-9 {
		t.Errorf("PE contribution = %.2f, want %.2f", pe.Contribution, 75*0.25)
	}
	if pe.RawValue == nil || *pe.RawValue != 15 {
		t.Errorf("PE raw value not carried into breakdown")
	}
}

func TestVerdictBuckets(t *testing.T) {
	tests := []struct {
		score float64
		want  models.Verdict
	}{
		{0, models.VerdictTropCher},
		{19.99, models.VerdictTropCher},
		{20, models.VerdictCher},
		{39.99, models.VerdictCher},
		{40, models.VerdictCorrect},
		{59.99, models.VerdictCorrect},
		{60, models.VerdictBonneAffaire},
		{74.99, models.VerdictBonneAffaire},
		{75, models.VerdictExcellente},
		{89.99, models.VerdictExcellente},
		{90, models.VerdictOpportunite},
		{100, models.VerdictOpportunite},
	}

	for _, tt := range tests {
		if got := models.VerdictForScore(tt.score); got != tt.want {
			t.Errorf("VerdictForScore(%.2f) = %s, want %s", tt.score, got, tt.want)
		}
	}
}
