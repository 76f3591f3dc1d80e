package cmd

import (
	"time"

	"github.com/pable/go-cricket-prs/internal/analyzer"
	"github.com/pable/go-cricket-prs/internal/config"
	"github.com/pable/go-cricket-prs/internal/storage"
)

// runRecord builds the stored header for an analysis run.
func runRecord(source string, a config.AnalysisConfig, rep analyzer.Report) storage.Run {
	return storage.Run{
		CreatedAt:          time.Now().UTC(),
		Source:             source,
		TargetMode:         a.TargetMode,
		CreditAllWickets:   a.CreditAllWickets,
		Resilient:          a.Resilient,
		MatchesProcessed:   rep.MatchesProcessed,
		MatchesSkipped:     rep.MatchesSkipped,
		InningsSkipped:     rep.InningsSkipped,
		DroppedDeliveries:  rep.DroppedDeliveries,
		DeliveriesAnalyzed: rep.DeliveriesAnalyzed,
		Players:            rep.Players,
	}
}

// toMatchRecords keeps only matches with at least one scored innings.
func toMatchRecords(matches []analyzer.MatchReport) []storage.MatchRecord {
	var out []storage.MatchRecord
	for _, m := range matches {
		if !m.Processed() {
			continue
		}
		rec := storage.MatchRecord{
			Hash:        m.Hash,
			Source:      m.Source,
			Date:        m.Info.Date,
			MatchType:   m.Info.MatchType,
			Competition: m.Info.Competition,
			Venue:       m.Info.Venue,
			Teams:       m.Info.Teams,
			Winner:      m.Info.Winner,
			Overs:       m.Info.Overs,
		}
		for _, in := range m.Innings {
			if in.Err != nil {
				continue
			}
			rec.InningsScored++
			rec.Deliveries += in.Deliveries
		}
		out = append(out, rec)
	}
	return out
}

func toSkipRecords(skips []analyzer.Skip) []storage.SkipRecord {
	out := make([]storage.SkipRecord, len(skips))
	for i, s := range skips {
		out[i] = storage.SkipRecord{Kind: s.Kind, Source: s.Source, Innings: s.Innings, Reason: s.Reason}
	}
	return out
}
