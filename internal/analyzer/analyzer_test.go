package analyzer

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/pable/go-cricket-prs/internal/model"
	"github.com/pable/go-cricket-prs/internal/pressure"
	"github.com/pable/go-cricket-prs/internal/scorer"
	"github.com/pable/go-cricket-prs/internal/tracker"
)

func ball(over, b int, batsman, bowler string, runs int) model.Delivery {
	return model.Delivery{
		Over: over, Ball: b,
		Batsman: batsman, Bowler: bowler, NonStriker: "partner",
		Runs: model.Runs{Batsman: runs, Total: runs},
	}
}

// innings builds n legal deliveries, six to an over, scoring runs[i%len(runs)].
func innings(number int, batsman, bowler string, n int, runs ...int) model.Innings {
	in := model.Innings{Number: number, Team: fmt.Sprintf("team%d", number)}
	for i := 0; i < n; i++ {
		in.Deliveries = append(in.Deliveries, ball(i/6, i%6+1, batsman, bowler, runs[i%len(runs)]))
	}
	return in
}

func match(source string, overs int, inns ...model.Innings) *model.Match {
	return &model.Match{
		Source:  source,
		Hash:    "hash-" + source,
		Info:    model.MatchInfo{Overs: overs, BallsPerOver: 6},
		Innings: inns,
	}
}

func TestEndToEnd_SixDotBalls(t *testing.T) {
	a := New(DefaultOptions(), nil)
	info := model.MatchInfo{Overs: 1, BallsPerOver: 6}
	tr := tracker.New(info, 1, nil)
	sc := scorer.Default()

	inn := innings(1, "A", "B", 6, 0)
	for _, d := range inn.Deliveries {
		c, err := tr.Step(d)
		if err != nil {
			t.Fatalf("Step %s: %v", d.Key(), err)
		}
		pc := pressure.Classify(d, c)
		if got, want := sc.Batting(d, pc), -0.3*(1+pc.Weight); got != want {
			t.Errorf("%s batting: want %v, got %v", d.Key(), want, got)
		}
		if got := sc.Bowling(d, pc); got <= 0 {
			t.Errorf("%s bowling: want > 0, got %v", d.Key(), got)
		}
	}

	mr := a.ProcessMatch(match("dots", 1, inn))
	if !mr.Processed() {
		t.Fatalf("match not processed: %+v", mr)
	}
	scores := a.Store().FinalScores()
	if scores["A"].BattingPRS >= 50 || scores["A"].BattingDeliveries != 6 {
		t.Errorf("A: want batting PRS below 50 over 6 balls, got %+v", scores["A"])
	}
	if scores["B"].BowlingPRS <= 50 || scores["B"].BowlingDeliveries != 6 {
		t.Errorf("B: want bowling PRS above 50 over 6 balls, got %+v", scores["B"])
	}
	sum, _ := a.Store().Summary("B")
	if sum.Bowling.Worst <= 0 {
		t.Errorf("every bowling score should be positive, worst %v", sum.Bowling.Worst)
	}
}

func TestTargetThreading_Chase(t *testing.T) {
	a := New(DefaultOptions(), nil)
	mr := a.ProcessMatch(match("chase", 20,
		innings(1, "A", "B", 12, 1), // 12 runs
		innings(2, "B", "A", 6, 2),
	))
	if mr.Innings[0].Target != nil {
		t.Errorf("first innings should have no target, got %d", *mr.Innings[0].Target)
	}
	if tg := mr.Innings[1].Target; tg == nil || *tg != 13 {
		t.Errorf("second innings target: want 13, got %v", tg)
	}
}

func TestTargetThreading_ExplicitTargetWins(t *testing.T) {
	a := New(DefaultOptions(), nil)
	second := innings(2, "B", "A", 6, 2)
	explicit := 150
	second.Target = &explicit
	mr := a.ProcessMatch(match("explicit", 20, innings(1, "A", "B", 12, 1), second))
	if tg := mr.Innings[1].Target; tg == nil || *tg != 150 {
		t.Errorf("want explicit target 150, got %v", tg)
	}
}

func TestTargetThreading_None(t *testing.T) {
	opts := DefaultOptions()
	opts.TargetMode = TargetNone
	a := New(opts, nil)
	mr := a.ProcessMatch(match("none", 20, innings(1, "A", "B", 12, 1), innings(2, "B", "A", 6, 2)))
	if mr.Innings[1].Target != nil {
		t.Errorf("target mode none: want nil target, got %d", *mr.Innings[1].Target)
	}
}

func TestTargetChangesChasingScores(t *testing.T) {
	build := func() *model.Match {
		return match("m", 20, innings(1, "A", "B", 120, 6), innings(2, "C", "D", 30, 1))
	}
	noneOpts := DefaultOptions()
	noneOpts.TargetMode = TargetNone

	chase := New(DefaultOptions(), nil)
	chase.ProcessMatch(build())
	none := New(noneOpts, nil)
	none.ProcessMatch(build())

	// chasing 721 at one run a ball is extreme pressure; without a target it is not
	if chase.Store().FinalScores()["C"] == none.Store().FinalScores()["C"] {
		t.Error("threading the target should change the chasing batsman's PRS")
	}
	if chase.Store().FinalScores()["A"] != none.Store().FinalScores()["A"] {
		t.Error("the first innings must not depend on the target mode")
	}
}

func TestStrictMode_AbortsInnings(t *testing.T) {
	bad := innings(2, "C", "D", 6, 1)
	bad.Deliveries[3] = bad.Deliveries[2] // duplicate 0.3

	a := New(DefaultOptions(), nil)
	mr := a.ProcessMatch(match("strict", 20, innings(1, "A", "B", 6, 1), bad))

	var seq *model.MalformedSequenceError
	if !errors.As(mr.Innings[1].Err, &seq) {
		t.Fatalf("want MalformedSequenceError, got %v", mr.Innings[1].Err)
	}
	var derr *model.DeliveryError
	if !errors.As(mr.Innings[1].Err, &derr) || derr.Key != "0.3" {
		t.Errorf("want delivery error at 0.3, got %v", mr.Innings[1].Err)
	}
	scores := a.Store().FinalScores()
	if _, ok := scores["C"]; ok {
		t.Error("aborted innings must leave no entries")
	}
	if _, ok := scores["D"]; ok {
		t.Error("aborted innings must leave no entries")
	}
	if scores["A"].BattingDeliveries != 6 {
		t.Errorf("first innings should be kept, got %+v", scores["A"])
	}

	rep := a.Report()
	if rep.InningsSkipped != 1 || rep.MatchesProcessed != 1 || rep.DeliveriesAnalyzed != 6 {
		t.Errorf("unexpected report %+v", rep)
	}
	if len(rep.Skips) != 1 || rep.Skips[0].Kind != SkipInnings || rep.Skips[0].Innings != 2 {
		t.Errorf("unexpected skips %+v", rep.Skips)
	}
}

func TestResilientMode_DropsDelivery(t *testing.T) {
	bad := innings(1, "A", "B", 6, 1)
	bad.Deliveries[3] = bad.Deliveries[2]

	opts := DefaultOptions()
	opts.Resilient = true
	a := New(opts, nil)
	mr := a.ProcessMatch(match("resilient", 20, bad))

	if mr.Innings[0].Err != nil {
		t.Fatalf("resilient mode should keep the innings: %v", mr.Innings[0].Err)
	}
	if got := a.Store().FinalScores()["A"].BattingDeliveries; got != 5 {
		t.Errorf("want 5 recorded deliveries, got %d", got)
	}
	rep := a.Report()
	if rep.DroppedDeliveries != 1 || rep.DeliveriesAnalyzed != 5 {
		t.Errorf("unexpected report %+v", rep)
	}
}

func TestParserRejectedInningsIsReported(t *testing.T) {
	rejected := model.Innings{Number: 1, Team: "x", Err: &model.DeliveryError{
		Innings: 1, Key: "0.4", Err: &model.MissingFieldError{Field: "bowler"},
	}}
	a := New(DefaultOptions(), nil)
	mr := a.ProcessMatch(match("rejected", 20, rejected))
	if mr.Processed() {
		t.Error("a match with no scored innings is not processed")
	}
	if rep := a.Report(); rep.InningsSkipped != 1 || rep.MatchesProcessed != 0 {
		t.Errorf("unexpected report %+v", rep)
	}
}

func TestTargetThreading_RejectedFirstInnings(t *testing.T) {
	bad := innings(1, "A", "B", 6, 1)
	bad.Deliveries[3] = bad.Deliveries[2] // duplicate 0.3

	a := New(DefaultOptions(), nil)
	mr := a.ProcessMatch(match("replay-rejected", 20, bad, innings(2, "B", "A", 6, 2)))
	if mr.Innings[0].Err == nil {
		t.Fatal("first innings should be rejected in strict mode")
	}
	if tg := mr.Innings[1].Target; tg != nil {
		t.Errorf("rejected first innings must not set a target, got %d", *tg)
	}

	parsed := model.Innings{Number: 1, Team: "x", Err: &model.MissingFieldError{Field: "bowler"}}
	mr = New(DefaultOptions(), nil).ProcessMatch(match("parse-rejected", 20, parsed, innings(2, "B", "A", 6, 2)))
	if tg := mr.Innings[1].Target; tg != nil {
		t.Errorf("parser-rejected first innings must not set a target, got %d", *tg)
	}
}

func TestTargetThreading_ResilientCountsReplayedRuns(t *testing.T) {
	first := innings(1, "A", "B", 6, 4)
	first.Deliveries[3] = first.Deliveries[2]

	opts := DefaultOptions()
	opts.Resilient = true
	mr := New(opts, nil).ProcessMatch(match("dropped", 20, first, innings(2, "B", "A", 6, 1)))

	if got := mr.Innings[0]; got.Deliveries != 5 || got.Runs != 20 || len(got.Dropped) != 1 {
		t.Errorf("want 5 deliveries and 20 runs with 1 dropped, got %+v", got)
	}
	if tg := mr.Innings[1].Target; tg == nil || *tg != 21 {
		t.Errorf("want target 21 from the replayed runs, got %v", tg)
	}
}

func fakeSources(t *testing.T, a *Analyzer, matches map[string]*model.Match) {
	t.Helper()
	a.parse = func(path string) (*model.Match, error) {
		m, ok := matches[path]
		if !ok {
			return nil, fmt.Errorf("open %s: no such file", path)
		}
		return m, nil
	}
}

func corpus() (map[string]*model.Match, []string) {
	matches := map[string]*model.Match{}
	var sources []string
	for i := 0; i < 12; i++ {
		src := fmt.Sprintf("m%02d.yaml", i)
		bat1, bowl1 := fmt.Sprintf("p%d", i%5), fmt.Sprintf("p%d", (i+1)%5)
		matches[src] = match(src, 20,
			innings(1, bat1, bowl1, 30+i, 0, 1, 4, 6, 2),
			innings(2, bowl1, bat1, 24+i, 1, 0, 0, 4),
		)
		sources = append(sources, src)
	}
	return matches, sources
}

func TestRun_ParallelMatchesSequential(t *testing.T) {
	matches, sources := corpus()

	seq := New(DefaultOptions(), nil)
	for _, src := range sources {
		seq.ProcessMatch(matches[src])
	}

	for _, workers := range []int{1, 4, 16} {
		opts := DefaultOptions()
		opts.Workers = workers
		par := New(opts, nil)
		fakeSources(t, par, matches)
		rep, err := par.Run(context.Background(), sources)
		if err != nil {
			t.Fatalf("workers=%d: %v", workers, err)
		}
		if rep.MatchesProcessed != len(sources) {
			t.Errorf("workers=%d: want %d matches, got %d", workers, len(sources), rep.MatchesProcessed)
		}
		if !reflect.DeepEqual(seq.Store().FinalScores(), par.Store().FinalScores()) {
			t.Errorf("workers=%d: parallel results differ from sequential", workers)
		}
	}
}

func TestRun_SkipsUnreadableMatch(t *testing.T) {
	matches, sources := corpus()
	a := New(DefaultOptions(), nil)
	fakeSources(t, a, matches)

	rep, err := a.Run(context.Background(), append([]string{"missing.yaml"}, sources[:2]...))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.MatchesSkipped != 1 || rep.MatchesProcessed != 2 {
		t.Errorf("unexpected report %+v", rep)
	}
	if rep.Skips[0].Kind != SkipMatch || rep.Skips[0].Source != "missing.yaml" {
		t.Errorf("unexpected skip %+v", rep.Skips[0])
	}
}

func TestRun_Cancelled(t *testing.T) {
	matches, sources := corpus()
	a := New(DefaultOptions(), nil)
	fakeSources(t, a, matches)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := a.Run(ctx, sources); !errors.Is(err, context.Canceled) {
		t.Errorf("want context.Canceled, got %v", err)
	}
}
