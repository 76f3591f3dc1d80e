package analyzer

import (
	"github.com/pable/go-cricket-prs/internal/model"
)

// Skip kinds.
const (
	SkipMatch    = "match"
	SkipInnings  = "innings"
	SkipDelivery = "delivery"
)

// Skip records one unit of input the run did not score, with the reason.
type Skip struct {
	Kind    string `json:"kind"`
	Source  string `json:"source"`
	Innings int    `json:"innings,omitempty"`
	Reason  string `json:"reason"`
}

// InningsReport describes the outcome of one innings.
type InningsReport struct {
	Number     int      `json:"number"`
	Team       string   `json:"team"`
	Deliveries int      `json:"deliveries"`
	Runs       int      `json:"runs"`
	Target     *int     `json:"target,omitempty"`
	Err        error    `json:"-"`
	Dropped    []string `json:"dropped,omitempty"`
}

// MatchReport describes the outcome of one match file. Err is set when the
// file could not be parsed at all.
type MatchReport struct {
	Source  string          `json:"source"`
	Hash    string          `json:"hash,omitempty"`
	Info    model.MatchInfo `json:"-"`
	Innings []InningsReport `json:"innings,omitempty"`
	Err     error           `json:"-"`
}

// Processed reports whether at least one innings of the match was scored.
func (m MatchReport) Processed() bool {
	if m.Err != nil {
		return false
	}
	for _, in := range m.Innings {
		if in.Err == nil {
			return true
		}
	}
	return false
}

// Report summarizes a run. Nothing skipped is left out of Skips.
type Report struct {
	Matches            []MatchReport `json:"-"`
	MatchesProcessed   int           `json:"matches_processed"`
	MatchesSkipped     int           `json:"matches_skipped"`
	InningsSkipped     int           `json:"innings_skipped"`
	DroppedDeliveries  int           `json:"dropped_deliveries"`
	DeliveriesAnalyzed int           `json:"deliveries_analyzed"`
	Players            int           `json:"players"`
	Skips              []Skip        `json:"skips,omitempty"`
}

func (r *Report) add(m MatchReport) {
	r.Matches = append(r.Matches, m)
	if m.Err != nil {
		r.MatchesSkipped++
		r.Skips = append(r.Skips, Skip{Kind: SkipMatch, Source: m.Source, Reason: m.Err.Error()})
		return
	}
	if m.Processed() {
		r.MatchesProcessed++
	}
	for _, in := range m.Innings {
		for _, d := range in.Dropped {
			r.DroppedDeliveries++
			r.Skips = append(r.Skips, Skip{Kind: SkipDelivery, Source: m.Source, Innings: in.Number, Reason: d})
		}
		if in.Err != nil {
			r.InningsSkipped++
			r.Skips = append(r.Skips, Skip{Kind: SkipInnings, Source: m.Source, Innings: in.Number, Reason: in.Err.Error()})
			continue
		}
		r.DeliveriesAnalyzed += in.Deliveries
	}
}
