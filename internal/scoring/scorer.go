package scoring

// Sub-scores pinned to the threshold ladder: a raw value landing exactly
// on a breakpoint scores the breakpoint's value, and values between
// breakpoints interpolate linearly.
const (
	scoreExcellent = 100.0
	scoreGood      = 75.0
	scoreFair      = 50.0
	scoreExpensive = 25.0
	scoreNeutral   = 50.0
	scoreFloor     = 0.0
)

// ScoreRatio maps one ratio's raw value to a sub-score in [0,100] given
// its threshold ladder. A nil raw value scores neutral (50) — missing
// data must not zero out or disqualify a stock. Pure and deterministic.
func ScoreRatio(raw *float64, def RatioDefinition) float64 {
	if raw == nil {
		return scoreNeutral
	}

	v := *raw
	t := def.Thresholds

	// better reports whether a is at least as favorable as b.
	better := func(a, b float64) bool {
		if def.Inverse {
			return a >= b
		}
		return a <= b
	}

	switch {
	case better(v, t.Excellent):
		return scoreExcellent
	case better(v, t.Good):
		return interpolate(v, t.Excellent, t.Good, scoreExcellent, scoreGood)
	case better(v, t.Fair):
		return interpolate(v, t.Good, t.Fair, scoreGood, scoreFair)
	case better(v, t.Expensive):
		return interpolate(v, t.Fair, t.Expensive, scoreFair, scoreExpensive)
	default:
		// Worse than expensive: extend the last segment's slope down
		// and clamp at the floor.
		s := interpolate(v, t.Fair, t.Expensive, scoreFair, scoreExpensive)
		if s < scoreFloor {
			return scoreFloor
		}
		return s
	}
}

// interpolate maps v from the [from,to] threshold segment onto the
// [scoreFrom,scoreTo] score segment. Works in both threshold directions.
func interpolate(v, from, to, scoreFrom, scoreTo float64) float64 {
	if from == to {
		return scoreTo
	}
	frac := (v - from) / (to - from)
	return scoreFrom + frac*(scoreTo-scoreFrom)
}
