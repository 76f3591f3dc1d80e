// Package pressure classifies each delivery into a pressure level from the
// running match state.
//
// Five factors are computed independently, each in [0,1]:
//   - phase: where the delivery sits in the innings (powerplay, middle, death)
//   - wicket: wickets down plus wickets lost in the trailing window
//   - run rate: the required run rate in a chase
//   - balls remaining: the fraction of the innings still to be bowled
//   - situation: what happened on this ball (wicket, boundary, dot)
//
// They are blended with fixed weights and the blend is bucketed into one of
// five levels, each with a fixed weight. The step functions are deliberate:
// they model match phases rather than a smooth curve.
package pressure

import (
	"github.com/pable/go-cricket-prs/internal/model"
	"github.com/pable/go-cricket-prs/internal/tracker"
)

// Classify returns the pressure context for d given the state after d was
// applied. It is pure and deterministic.
func Classify(d model.Delivery, c tracker.MatchContext) model.PressureContext {
	f := Factors(d, c)
	blend := Blend(f)
	level := Level(blend)
	return model.PressureContext{
		Level:   level,
		Weight:  level.Weight(),
		Factors: f,
		Blend:   blend,
	}
}

// Factors computes the five sub-pressures for d.
func Factors(d model.Delivery, c tracker.MatchContext) model.PressureFactors {
	return model.PressureFactors{
		Phase:          clamp01(PhasePressure(d.Over, c.TotalOvers)),
		Wicket:         clamp01(WicketPressure(c.WicketsFallen, c.RecentWicketCount())),
		RunRate:        clamp01(RunRatePressure(c.RequiredRate)),
		BallsRemaining: clamp01(BallsRemainingPressure(c.BallsRemaining, c.TotalBalls)),
		Situation:      clamp01(SituationPressure(d)),
	}
}

// Blend combines the factors with the fixed weights. The summation order is
// fixed so bucket boundaries are reproducible.
func Blend(f model.PressureFactors) float64 {
	total := 0.0
	total += f.Phase * PhaseWeight
	total += f.Wicket * WicketWeight
	total += f.RunRate * RunRateWeight
	total += f.BallsRemaining * BallsRemainingWeight
	total += f.Situation * SituationWeight
	return total
}

// Level buckets a blend value.
func Level(blend float64) model.PressureLevel {
	switch {
	case blend <= VeryLowMax:
		return model.PressureVeryLow
	case blend <= LowMax:
		return model.PressureLow
	case blend <= MediumMax:
		return model.PressureMedium
	case blend <= HighMax:
		return model.PressureHigh
	default:
		return model.PressureExtreme
	}
}

// PhasePressure maps the 0-based over number to a phase of the innings.
func PhasePressure(over, totalOvers int) float64 {
	if totalOvers <= 0 {
		totalOvers = model.DefaultOvers
	}
	if totalOvers <= ShortFormatOvers {
		switch {
		case over < ShortPowerplayOvers:
			return ShortPowerplayPressure
		case over >= totalOvers-ShortDeathOvers:
			return ShortDeathPressure
		default:
			return ShortMiddlePressure
		}
	}
	p := float64(over) / float64(totalOvers)
	switch {
	case p < EarlyProportion:
		return EarlyPressure
	case p > FinalProportion:
		return FinalPressure
	default:
		return MiddlePressure
	}
}

// WicketPressure grows with wickets down and with wickets in the recent
// window, capped at 1.0.
func WicketPressure(fallen, recent int) float64 {
	base := min(float64(fallen)/WicketsPerSide, MaxFallenPressure)
	bonus := min(float64(recent)*RecentWicketPressure, MaxRecentPressure)
	return min(base+bonus, 1.0)
}

// RunRatePressure maps a required run rate to pressure. A nil rate (no
// chase target) maps to NoTargetPressure.
func RunRatePressure(rrr *float64) float64 {
	if rrr == nil {
		return NoTargetPressure
	}
	for _, s := range runRateSteps {
		if *rrr <= s.Limit {
			return s.Pressure
		}
	}
	return 1.0
}

// BallsRemainingPressure maps the remaining fraction of the innings to
// pressure.
func BallsRemainingPressure(remaining, total int) float64 {
	if total <= 0 {
		return 1.0
	}
	p := float64(remaining) / float64(total)
	for _, s := range remainingSteps {
		if p > s.Limit {
			return s.Pressure
		}
	}
	return 1.0
}

// SituationPressure scores what happened on the ball itself. Boundary and
// dot are mutually exclusive.
func SituationPressure(d model.Delivery) float64 {
	p := 0.0
	if d.Wicket != nil {
		p += SituationWicket
	}
	switch {
	case d.IsBoundary():
		p += SituationBoundary
	case d.IsDot():
		p += SituationDot
	}
	return min(p, MaxSituation)
}

func clamp01(v float64) float64 {
	return max(0, min(v, 1))
}
