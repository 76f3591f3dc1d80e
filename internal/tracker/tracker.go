// Package tracker replays an innings ball by ball and maintains the running
// match state the pressure classifier reads.
package tracker

import (
	"github.com/pable/go-cricket-prs/internal/model"
)

// RecentWicketWindow is the trailing window, in deliveries, within which a
// wicket still counts as recent. It is two six-ball overs regardless of the
// match's balls-per-over.
const RecentWicketWindow = 12

// MatchContext is the running state of one innings after a delivery.
type MatchContext struct {
	Index          int // 0-based position of the delivery in the innings
	CurrentScore   int
	WicketsFallen  int
	RecentWickets  []int // delivery indices within RecentWicketWindow
	BallsRemaining int   // may go negative when extras lengthen the innings
	TotalBalls     int
	TotalOvers     int
	Target         *int     // runs required to win; nil outside a known chase
	RequiredRate   *float64 // nil without a target
}

// RecentWicketCount returns the number of wickets in the trailing window.
func (c MatchContext) RecentWicketCount() int { return len(c.RecentWickets) }

// Tracker owns the state of a single innings. It is not safe for
// concurrent use and must not be reused across innings.
type Tracker struct {
	innings int
	ctx     MatchContext
	started bool
	prev    [2]int
	prevKey string
}

// New creates a tracker for innings number inningsNum of a match described
// by info. target is nil when no chase target is known.
func New(info model.MatchInfo, inningsNum int, target *int) *Tracker {
	overs := info.Overs
	if overs <= 0 {
		overs = model.DefaultOvers
	}
	bpo := info.BallsPerOver
	if bpo <= 0 {
		bpo = model.DefaultBallsPerOver
	}
	t := &Tracker{innings: inningsNum}
	t.ctx.TotalOvers = overs
	t.ctx.TotalBalls = overs * bpo
	t.ctx.Index = -1
	if target != nil {
		v := *target
		t.ctx.Target = &v
	}
	return t
}

// Step folds d into the innings state and returns a snapshot. Deliveries
// must arrive in strictly ascending (over, ball) order; anything else
// returns *model.MalformedSequenceError and leaves the state unchanged.
func (t *Tracker) Step(d model.Delivery) (MatchContext, error) {
	key := [2]int{d.Over, d.Ball}
	if t.started && !after(key, t.prev) {
		return MatchContext{}, &model.MalformedSequenceError{
			Innings: t.innings,
			Prev:    t.prevKey,
			Got:     d.Key(),
		}
	}
	t.started = true
	t.prev = key
	t.prevKey = d.Key()

	c := &t.ctx
	c.Index++
	c.BallsRemaining = c.TotalBalls - c.Index - 1
	c.CurrentScore += d.Runs.Total

	if d.Wicket != nil {
		c.WicketsFallen++
		c.RecentWickets = append(c.RecentWickets, c.Index)
	}
	c.RecentWickets = trimWindow(c.RecentWickets, c.Index)

	c.RequiredRate = nil
	if c.Target != nil {
		rrr := 0.0
		if c.BallsRemaining > 0 {
			oversRemaining := float64(c.BallsRemaining) / 6
			rrr = float64(*c.Target-c.CurrentScore) / oversRemaining
		}
		c.RequiredRate = &rrr
	}

	return t.Snapshot(), nil
}

// Snapshot returns a copy of the current state that later steps will not
// mutate.
func (t *Tracker) Snapshot() MatchContext {
	out := t.ctx
	out.RecentWickets = append([]int(nil), t.ctx.RecentWickets...)
	if t.ctx.RequiredRate != nil {
		v := *t.ctx.RequiredRate
		out.RequiredRate = &v
	}
	return out
}

func after(a, b [2]int) bool {
	if a[0] != b[0] {
		return a[0] > b[0]
	}
	return a[1] > b[1]
}

// trimWindow drops wicket indices older than RecentWicketWindow deliveries.
func trimWindow(idx []int, current int) []int {
	kept := idx[:0]
	for _, w := range idx {
		if current-w <= RecentWicketWindow {
			kept = append(kept, w)
		}
	}
	return kept
}
