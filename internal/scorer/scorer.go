// Package scorer turns a delivery and its pressure context into a batting
// score and a bowling score.
package scorer

import (
	"strings"

	"github.com/pable/go-cricket-prs/internal/model"
)

// Batting weights.
const (
	RunValue         = 1.0
	BoundaryBonus    = 0.5
	DotBallPenalty   = -0.3
	DismissalPenalty = -2.0
)

// Bowling weights.
const (
	DotBallBonus     = 0.8
	WicketBonus      = 3.0
	RunConcededCost  = -0.2
	BoundaryConceded = -1.0
	BowlingAmplifier = 0.8 // share of the pressure weight applied to bowling
)

// nonBowlerDismissals are dismissal kinds the bowler takes no credit for
// when CreditAllWickets is off.
var nonBowlerDismissals = map[string]bool{
	"run out":               true,
	"retired hurt":          true,
	"retired out":           true,
	"retired not out":       true,
	"obstructing the field": true,
	"timed out":             true,
}

// Scorer scores deliveries. The zero value withholds credit for run-outs
// and retirements; use Default for the uniform policy.
type Scorer struct {
	// CreditAllWickets credits the bowler's wicket bonus for every dismissal
	// kind, run-outs included.
	CreditAllWickets bool
}

// Default returns a scorer that credits the bowler for every wicket.
func Default() Scorer {
	return Scorer{CreditAllWickets: true}
}

// Batting scores the striker's performance on d. Pressure amplifies rewards
// and penalties alike by (1 + weight).
func (s Scorer) Batting(d model.Delivery, pc model.PressureContext) float64 {
	base := float64(d.Runs.Batsman) * RunValue
	if d.Runs.Batsman >= 4 {
		base += BoundaryBonus
	}
	if d.IsDot() {
		base += DotBallPenalty
	}
	if d.StrikerDismissed() {
		base += DismissalPenalty
	}
	return base * (1.0 + pc.Weight)
}

// Bowling scores the bowler's performance on d. Pressure amplifies by
// (1 + 0.8*weight).
func (s Scorer) Bowling(d model.Delivery, pc model.PressureContext) float64 {
	base := 0.0
	if d.IsDot() {
		base += DotBallBonus
	}
	if s.CreditsBowler(d.Wicket) {
		base += WicketBonus
	}
	base += float64(d.Runs.Total) * RunConcededCost
	if d.IsBoundary() {
		base += BoundaryConceded
	}
	return base * (1.0 + pc.Weight*BowlingAmplifier)
}

// CreditsBowler reports whether w earns the bowler the wicket bonus.
func (s Scorer) CreditsBowler(w *model.Wicket) bool {
	if w == nil {
		return false
	}
	if s.CreditAllWickets {
		return true
	}
	return !nonBowlerDismissals[strings.ToLower(strings.TrimSpace(w.Kind))]
}
