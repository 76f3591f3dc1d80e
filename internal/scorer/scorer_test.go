package scorer

import (
	"math"
	"testing"

	"github.com/pable/go-cricket-prs/internal/model"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func pc(w float64) model.PressureContext {
	return model.PressureContext{Weight: w}
}

func del(batRuns, total int, w *model.Wicket) model.Delivery {
	return model.Delivery{
		Batsman: "striker", Bowler: "bowler", NonStriker: "partner",
		Runs:   model.Runs{Batsman: batRuns, Extras: total - batRuns, Total: total},
		Wicket: w,
	}
}

func TestBatting_Boundary(t *testing.T) {
	got := Default().Batting(del(4, 4, nil), pc(0.6))
	if !approx(got, 7.2) {
		t.Errorf("want 7.2, got %v", got)
	}
}

func TestBatting_DotBall(t *testing.T) {
	got := Default().Batting(del(0, 0, nil), pc(0.2))
	if !approx(got, -0.3*1.2) {
		t.Errorf("want %v, got %v", -0.3*1.2, got)
	}
}

func TestBatting_ByesAreNotADot(t *testing.T) {
	// two byes: no runs to the batsman, but not a dot ball either
	got := Default().Batting(del(0, 2, nil), pc(0.4))
	if got != 0 {
		t.Errorf("want 0, got %v", got)
	}
}

func TestBatting_Dismissal(t *testing.T) {
	w := &model.Wicket{PlayerOut: "striker", Kind: "bowled"}
	got := Default().Batting(del(0, 0, w), pc(1.0))
	if !approx(got, (-0.3-2.0)*2.0) {
		t.Errorf("want %v, got %v", (-0.3-2.0)*2.0, got)
	}
}

func TestBatting_NonStrikerRunOutDoesNotPenalizeStriker(t *testing.T) {
	w := &model.Wicket{PlayerOut: "partner", Kind: "run out"}
	got := Default().Batting(del(1, 1, w), pc(0.8))
	if !approx(got, 1.8) {
		t.Errorf("want 1.8, got %v", got)
	}
}

func TestBowling_WicketDot(t *testing.T) {
	w := &model.Wicket{PlayerOut: "striker", Kind: "caught"}
	got := Default().Bowling(del(0, 0, w), pc(1.0))
	if !approx(got, 6.84) {
		t.Errorf("want 6.84, got %v", got)
	}
}

func TestBowling_Six(t *testing.T) {
	got := Default().Bowling(del(6, 6, nil), pc(0.4))
	want := (6*-0.2 - 1.0) * (1 + 0.4*0.8)
	if !approx(got, want) {
		t.Errorf("want %v, got %v", want, got)
	}
}

func TestBowling_Single(t *testing.T) {
	got := Default().Bowling(del(1, 1, nil), pc(0.2))
	want := -0.2 * 1.16
	if !approx(got, want) {
		t.Errorf("want %v, got %v", want, got)
	}
}

func TestBowling_RunOutCreditPolicy(t *testing.T) {
	w := &model.Wicket{PlayerOut: "partner", Kind: "run out"}
	d := del(1, 1, w)

	all := Default().Bowling(d, pc(0.6))
	wantAll := (3.0 - 0.2) * (1 + 0.6*0.8)
	if !approx(all, wantAll) {
		t.Errorf("credit all: want %v, got %v", wantAll, all)
	}

	strict := Scorer{CreditAllWickets: false}.Bowling(d, pc(0.6))
	wantStrict := -0.2 * (1 + 0.6*0.8)
	if !approx(strict, wantStrict) {
		t.Errorf("bowler-only credit: want %v, got %v", wantStrict, strict)
	}
}

func TestCreditsBowler(t *testing.T) {
	s := Scorer{}
	cases := map[string]bool{
		"bowled":                true,
		"caught":                true,
		"lbw":                   true,
		"stumped":               true,
		"Run Out":               false,
		"retired hurt":          false,
		"obstructing the field": false,
	}
	for kind, want := range cases {
		if got := s.CreditsBowler(&model.Wicket{Kind: kind}); got != want {
			t.Errorf("%q: want %v, got %v", kind, want, got)
		}
	}
	if s.CreditsBowler(nil) {
		t.Error("nil wicket must not be credited")
	}
}

func TestScoresArePure(t *testing.T) {
	s := Default()
	d := del(4, 4, nil)
	p := pc(0.6)
	b1, w1 := s.Batting(d, p), s.Bowling(d, p)
	w2, b2 := s.Bowling(d, p), s.Batting(d, p)
	if b1 != b2 || w1 != w2 {
		t.Error("scoring order changed the result")
	}
}
