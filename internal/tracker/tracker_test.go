package tracker

import (
	"errors"
	"math"
	"testing"

	"github.com/pable/go-cricket-prs/internal/model"
)

func ball(over, b, total int, wicket bool) model.Delivery {
	d := model.Delivery{
		Over: over, Ball: b,
		Batsman: "bat", Bowler: "bowl", NonStriker: "ns",
		Runs: model.Runs{Batsman: total, Total: total},
	}
	if wicket {
		d.Wicket = &model.Wicket{PlayerOut: "bat", Kind: "bowled"}
	}
	return d
}

func t20() model.MatchInfo {
	return model.MatchInfo{Overs: 20, BallsPerOver: 6}
}

func TestStep_BallsRemainingAndScore(t *testing.T) {
	tr := New(t20(), 1, nil)

	c, err := tr.Step(ball(0, 1, 4, false))
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if c.BallsRemaining != 119 || c.CurrentScore != 4 || c.TotalBalls != 120 {
		t.Errorf("after first ball: remaining=%d score=%d total=%d", c.BallsRemaining, c.CurrentScore, c.TotalBalls)
	}
	c, _ = tr.Step(ball(0, 2, 1, false))
	if c.BallsRemaining != 118 || c.CurrentScore != 5 || c.Index != 1 {
		t.Errorf("after second ball: remaining=%d score=%d index=%d", c.BallsRemaining, c.CurrentScore, c.Index)
	}
	if c.RequiredRate != nil {
		t.Error("first innings should have no required rate")
	}
}

func TestNew_DefaultsOvers(t *testing.T) {
	tr := New(model.MatchInfo{}, 1, nil)
	c, _ := tr.Step(ball(0, 1, 0, false))
	if c.TotalBalls != 120 || c.TotalOvers != 20 {
		t.Errorf("expected default 20 overs / 120 balls, got %d / %d", c.TotalOvers, c.TotalBalls)
	}
}

func TestStep_RecentWicketWindow(t *testing.T) {
	tr := New(t20(), 1, nil)
	// wicket at index 0
	c, _ := tr.Step(ball(0, 1, 0, true))
	if c.WicketsFallen != 1 || c.RecentWicketCount() != 1 {
		t.Fatalf("wickets=%d recent=%d", c.WicketsFallen, c.RecentWicketCount())
	}
	// indices 1..12 keep the wicket in the window (12 - 0 <= 12)
	for i := 1; i <= 12; i++ {
		c, _ = tr.Step(ball(i/6, i%6+1, 1, false))
	}
	if c.Index != 12 || c.RecentWicketCount() != 1 {
		t.Fatalf("index=%d recent=%d, want 12/1", c.Index, c.RecentWicketCount())
	}
	// index 13 is outside
	c, _ = tr.Step(ball(3, 1, 1, false))
	if c.RecentWicketCount() != 0 {
		t.Errorf("expected wicket to leave the window at index 13, recent=%d", c.RecentWicketCount())
	}
	if c.WicketsFallen != 1 {
		t.Errorf("wickets fallen must not decrease, got %d", c.WicketsFallen)
	}
}

func TestStep_WindowTrimsOnEveryDelivery(t *testing.T) {
	tr := New(t20(), 1, nil)
	tr.Step(ball(0, 1, 0, true)) // index 0
	for i := 1; i < 6; i++ {
		tr.Step(ball(0, i+1, 0, false))
	}
	tr.Step(ball(1, 1, 0, true)) // index 6
	var c MatchContext
	for i := 7; i <= 13; i++ {
		c, _ = tr.Step(ball(i/6, i%6+1, 1, false))
	}
	// index 13 is a non-wicket ball: the index-0 wicket is stale, index 6 is not
	if c.Index != 13 || c.RecentWicketCount() != 1 || c.RecentWickets[0] != 6 {
		t.Errorf("index=%d recent=%v, want only the index-6 wicket", c.Index, c.RecentWickets)
	}
	if c.WicketsFallen != 2 {
		t.Errorf("wickets fallen: want 2, got %d", c.WicketsFallen)
	}
}

func TestStep_RequiredRate(t *testing.T) {
	target := 121
	tr := New(t20(), 2, &target)
	c, _ := tr.Step(ball(0, 1, 1, false))
	// 120 needed from 119 balls
	want := 120.0 / (119.0 / 6)
	if c.RequiredRate == nil || math.Abs(*c.RequiredRate-want) > 1e-9 {
		t.Errorf("rrr: want %.4f, got %v", want, c.RequiredRate)
	}
}

func TestStep_RequiredRateZeroWhenNoBallsLeft(t *testing.T) {
	target := 10
	tr := New(model.MatchInfo{Overs: 1, BallsPerOver: 6}, 2, &target)
	var c MatchContext
	for i := 1; i <= 6; i++ {
		c, _ = tr.Step(ball(0, i, 1, false))
	}
	if c.BallsRemaining != 0 {
		t.Fatalf("remaining=%d", c.BallsRemaining)
	}
	if c.RequiredRate == nil || *c.RequiredRate != 0 {
		t.Errorf("expected rrr 0 on last ball, got %v", c.RequiredRate)
	}
}

func TestStep_OutOfOrder(t *testing.T) {
	tr := New(t20(), 1, nil)
	tr.Step(ball(0, 2, 0, false))
	_, err := tr.Step(ball(0, 1, 0, false))
	var seq *model.MalformedSequenceError
	if !errors.As(err, &seq) {
		t.Fatalf("expected MalformedSequenceError, got %v", err)
	}
	if seq.Prev != "0.2" || seq.Got != "0.1" {
		t.Errorf("unexpected keys prev=%s got=%s", seq.Prev, seq.Got)
	}
	// state untouched
	if s := tr.Snapshot(); s.Index != 0 {
		t.Errorf("rejected delivery advanced index to %d", s.Index)
	}
}

func TestStep_Duplicate(t *testing.T) {
	tr := New(t20(), 1, nil)
	tr.Step(ball(1, 1, 0, false))
	_, err := tr.Step(ball(1, 1, 0, false))
	var seq *model.MalformedSequenceError
	if !errors.As(err, &seq) {
		t.Fatalf("expected MalformedSequenceError for duplicate, got %v", err)
	}
}

func TestSnapshot_Isolated(t *testing.T) {
	tr := New(t20(), 1, nil)
	c1, _ := tr.Step(ball(0, 1, 0, true))
	tr.Step(ball(0, 2, 0, true))
	if len(c1.RecentWickets) != 1 {
		t.Errorf("earlier snapshot mutated: %v", c1.RecentWickets)
	}
}
