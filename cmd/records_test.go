package cmd

import (
	"errors"
	"testing"

	"github.com/pable/go-cricket-prs/internal/analyzer"
	"github.com/pable/go-cricket-prs/internal/config"
	"github.com/pable/go-cricket-prs/internal/model"
)

func TestToMatchRecordsSkipsUnscoredMatches(t *testing.T) {
	matches := []analyzer.MatchReport{
		{Source: "broken.yaml", Err: errors.New("decode")},
		{
			Source: "a.yaml",
			Hash:   "abc",
			Info:   model.MatchInfo{Date: "2017-04-05", Overs: 20, Teams: []string{"A", "B"}},
			Innings: []analyzer.InningsReport{
				{Number: 1, Deliveries: 120},
				{Number: 2, Err: errors.New("missing bowler")},
			},
		},
		{Source: "b.yaml", Innings: []analyzer.InningsReport{{Number: 1, Err: errors.New("bad key")}}},
	}

	recs := toMatchRecords(matches)
	if len(recs) != 1 {
		t.Fatalf("want 1 record, got %d", len(recs))
	}
	r := recs[0]
	if r.Source != "a.yaml" || r.InningsScored != 1 || r.Deliveries != 120 || r.Date != "2017-04-05" || len(r.Teams) != 2 {
		t.Errorf("unexpected record %+v", r)
	}
}

func TestRunRecordCopiesCounts(t *testing.T) {
	rep := analyzer.Report{MatchesProcessed: 3, MatchesSkipped: 1, DroppedDeliveries: 2, DeliveriesAnalyzed: 700, Players: 40}
	a := config.Default().Analysis
	a.Resilient = true

	run := runRecord("data", a, rep)
	if run.Source != "data" || run.TargetMode != analyzer.TargetChase || !run.Resilient || !run.CreditAllWickets {
		t.Errorf("unexpected policy fields %+v", run)
	}
	if run.MatchesProcessed != 3 || run.DroppedDeliveries != 2 || run.Players != 40 || run.CreatedAt.IsZero() {
		t.Errorf("unexpected counts %+v", run)
	}

	skips := toSkipRecords([]analyzer.Skip{{Kind: analyzer.SkipInnings, Source: "a.yaml", Innings: 2, Reason: "x"}})
	if len(skips) != 1 || skips[0].Innings != 2 || skips[0].Kind != "innings" {
		t.Errorf("unexpected skips %+v", skips)
	}
}
