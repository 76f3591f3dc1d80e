package report

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pable/go-cricket-prs/internal/aggregator"
	"github.com/pable/go-cricket-prs/internal/model"
	"github.com/pable/go-cricket-prs/internal/storage"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Leader categories.
const (
	CategoryBatting = "batting"
	CategoryBowling = "bowling"
	CategoryOverall = "overall"
)

// LeaderCount is the number of players shown per leader board.
const LeaderCount = 5

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

// FromScores flattens a FinalScores map into ranked results.
func FromScores(scores map[string]model.PRSResult) []model.PlayerResult {
	out := make([]model.PlayerResult, 0, len(scores))
	for name, r := range scores {
		out = append(out, model.PlayerResult{Player: name, PRSResult: r})
	}
	Rank(out)
	return out
}

// RankKey favours strong ratings in both disciplines and, up to 100 entries,
// players with more data behind them.
func RankKey(r model.PRSResult) float64 {
	bat, bowl := 0.0, 0.0
	if r.BattingDeliveries > 0 {
		bat = r.BattingPRS
	}
	if r.BowlingDeliveries > 0 {
		bowl = r.BowlingPRS
	}
	return (bat + bowl) * (1 + math.Min(float64(r.TotalDeliveries)/100, 1))
}

// Rank sorts results by RankKey descending, ties by name.
func Rank(results []model.PlayerResult) {
	sort.SliceStable(results, func(i, j int) bool {
		ki, kj := RankKey(results[i].PRSResult), RankKey(results[j].PRSResult)
		if ki != kj {
			return ki > kj
		}
		return results[i].Player < results[j].Player
	})
}

// Top returns the first n results; n <= 0 returns all of them.
func Top(results []model.PlayerResult, n int) []model.PlayerResult {
	if n <= 0 || n >= len(results) {
		return results
	}
	return results[:n]
}

// PerformanceLevel names the band an overall PRS falls in.
func PerformanceLevel(prs float64) string {
	switch {
	case prs >= 80:
		return "Elite"
	case prs >= 70:
		return "Excellent"
	case prs >= 60:
		return "Good"
	case prs >= 50:
		return "Average"
	default:
		return "Below Average"
	}
}

func prsCell(v float64) string {
	if v > 0 {
		return fmt.Sprintf("%.1f", v)
	}
	return "N/A"
}

// PrintTable prints ranked results as a table. total is the number of
// players analyzed before any top-N cut.
func PrintTable(w io.Writer, ranked []model.PlayerResult, total int) {
	fmt.Fprintf(w, "\n=== Pressure Resistance Score (PRS) ===\n\n")
	table := newTable(w)
	table.Header("#", "NAME", "ROLE", "BATTING PRS", "BOWLING PRS", "BAT BALLS", "BOWL BALLS")
	for i, r := range ranked {
		table.Append(
			strconv.Itoa(i+1),
			r.Player,
			r.Role(),
			prsCell(r.BattingPRS),
			prsCell(r.BowlingPRS),
			strconv.Itoa(r.BattingDeliveries),
			strconv.Itoa(r.BowlingDeliveries),
		)
	}
	table.Render()
	fmt.Fprintf(w, "\nTotal players analyzed: %d\n", total)
	if len(ranked) < total {
		fmt.Fprintf(w, "Showing top %d performers\n", len(ranked))
	}
}

// PrintDetailed prints one block per player with an overall PRS and level.
func PrintDetailed(w io.Writer, ranked []model.PlayerResult) {
	fmt.Fprintf(w, "\n=== Detailed Pressure Resistance Score (PRS) ===\n")
	for i, r := range ranked {
		fmt.Fprintf(w, "\n%d. %s (%s)\n", i+1, r.Player, r.Role())
		fmt.Fprintln(w, strings.Repeat("-", 50))
		if r.BattingDeliveries > 0 {
			fmt.Fprintf(w, "  Batting PRS        : %.1f\n", r.BattingPRS)
			fmt.Fprintf(w, "  Batting deliveries : %d\n", r.BattingDeliveries)
		} else {
			fmt.Fprintln(w, "  Batting            : no data")
		}
		if r.BowlingDeliveries > 0 {
			fmt.Fprintf(w, "  Bowling PRS        : %.1f\n", r.BowlingPRS)
			fmt.Fprintf(w, "  Bowling deliveries : %d\n", r.BowlingDeliveries)
		} else {
			fmt.Fprintln(w, "  Bowling            : no data")
		}
		fmt.Fprintf(w, "  Total deliveries   : %d\n", r.TotalDeliveries)
		overall := r.Overall()
		fmt.Fprintf(w, "  Overall PRS        : %.1f\n", overall)
		fmt.Fprintf(w, "  Performance level  : %s\n", PerformanceLevel(overall))
	}
}

// PrintJSON writes results as a JSON object keyed by player name.
func PrintJSON(w io.Writer, results []model.PlayerResult) error {
	byName := make(map[string]model.PRSResult, len(results))
	for _, r := range results {
		byName[r.Player] = r.PRSResult
	}
	out, err := json.MarshalIndent(byName, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", out)
	return err
}

// Leaders returns the top LeaderCount players for a category. Batting and
// bowling boards only include players with deliveries in that discipline.
func Leaders(results []model.PlayerResult, category string) []model.PlayerResult {
	var pool []model.PlayerResult
	switch category {
	case CategoryBatting:
		for _, r := range results {
			if r.BattingDeliveries > 0 {
				pool = append(pool, r)
			}
		}
		sort.SliceStable(pool, func(i, j int) bool {
			if pool[i].BattingPRS != pool[j].BattingPRS {
				return pool[i].BattingPRS > pool[j].BattingPRS
			}
			return pool[i].Player < pool[j].Player
		})
	case CategoryBowling:
		for _, r := range results {
			if r.BowlingDeliveries > 0 {
				pool = append(pool, r)
			}
		}
		sort.SliceStable(pool, func(i, j int) bool {
			if pool[i].BowlingPRS != pool[j].BowlingPRS {
				return pool[i].BowlingPRS > pool[j].BowlingPRS
			}
			return pool[i].Player < pool[j].Player
		})
	default:
		pool = append(pool, results...)
		Rank(pool)
	}
	return Top(pool, LeaderCount)
}

// PrintLeaders prints the top performers for a category.
func PrintLeaders(w io.Writer, results []model.PlayerResult, category string) {
	if category != CategoryBatting && category != CategoryBowling {
		category = CategoryOverall
	}
	fmt.Fprintf(w, "\n--- Top %d %s pressure performers ---\n\n", LeaderCount, category)
	for i, r := range Leaders(results, category) {
		switch category {
		case CategoryBatting:
			fmt.Fprintf(w, "%d. %s: %.1f\n", i+1, r.Player, r.BattingPRS)
		case CategoryBowling:
			fmt.Fprintf(w, "%d. %s: %.1f\n", i+1, r.Player, r.BowlingPRS)
		default:
			fmt.Fprintf(w, "%d. %s: %.1f (bat %.1f, bowl %.1f)\n", i+1, r.Player, r.Overall(), r.BattingPRS, r.BowlingPRS)
		}
	}
}

// PrintRunSummary prints the header of an analysis run. entries is the
// number of batting plus bowling entries recorded.
func PrintRunSummary(w io.Writer, run storage.Run, entries int) {
	fmt.Fprintf(w, "\n=== Analysis Summary ===\n\n")
	if run.ID != "" {
		fmt.Fprintf(w, "  Run                : %s\n", run.ID)
	}
	fmt.Fprintf(w, "  Source             : %s\n", run.Source)
	fmt.Fprintf(w, "  Target mode        : %s\n", run.TargetMode)
	fmt.Fprintf(w, "  Matches processed  : %d\n", run.MatchesProcessed)
	fmt.Fprintf(w, "  Matches skipped    : %d\n", run.MatchesSkipped)
	fmt.Fprintf(w, "  Innings skipped    : %d\n", run.InningsSkipped)
	if run.Resilient {
		fmt.Fprintf(w, "  Deliveries dropped : %d\n", run.DroppedDeliveries)
	}
	fmt.Fprintf(w, "  Deliveries scored  : %d\n", run.DeliveriesAnalyzed)
	if entries > 0 {
		fmt.Fprintf(w, "  Player entries     : %d\n", entries)
	}
	fmt.Fprintf(w, "  Players            : %d\n", run.Players)
}

// PrintMatches prints one row per scored match.
func PrintMatches(w io.Writer, matches []storage.MatchRecord) {
	fmt.Fprintf(w, "\n--- Matches ---\n\n")
	table := newTable(w)
	table.Header("HASH", "DATE", "TYPE", "TEAMS", "WINNER", "OVERS", "INNINGS", "BALLS")
	for _, m := range matches {
		table.Append(
			shortHash(m.Hash),
			m.Date,
			m.MatchType,
			strings.Join(m.Teams, " v "),
			m.Winner,
			strconv.Itoa(m.Overs),
			strconv.Itoa(m.InningsScored),
			strconv.Itoa(m.Deliveries),
		)
	}
	table.Render()
}

// PrintSkips lists every unit the run did not score.
func PrintSkips(w io.Writer, skips []storage.SkipRecord) {
	if len(skips) == 0 {
		return
	}
	fmt.Fprintf(w, "\n--- Skipped (%d) ---\n\n", len(skips))
	for _, s := range skips {
		where := s.Source
		if s.Innings > 0 {
			where = fmt.Sprintf("%s innings %d", s.Source, s.Innings)
		}
		fmt.Fprintf(w, "  [%s] %s: %s\n", s.Kind, where, s.Reason)
	}
}

// PrintPlayerRuns prints stored player rows, such as search results.
func PrintPlayerRuns(w io.Writer, players []storage.PlayerRun) {
	table := newTable(w)
	table.Header("NAME", "ROLE", "BATTING PRS", "BOWLING PRS", "BAT BALLS", "BOWL BALLS", "RUN")
	for _, p := range players {
		table.Append(
			p.Player,
			p.Role,
			prsCell(p.BattingPRS),
			prsCell(p.BowlingPRS),
			strconv.Itoa(p.BattingDeliveries),
			strconv.Itoa(p.BowlingDeliveries),
			shortHash(p.RunID),
		)
	}
	table.Render()
}

// PrintPlayerSummary prints per-discipline statistics for one player.
func PrintPlayerSummary(w io.Writer, s aggregator.PlayerSummary) {
	fmt.Fprintf(w, "\n--- %s ---\n\n", s.Player)
	table := newTable(w)
	table.Header("", "BALLS", "AVG", "W_AVG", "BEST", "WORST", "AVG PRESSURE")
	for _, row := range []struct {
		name string
		d    aggregator.DisciplineSummary
	}{{"batting", s.Batting}, {"bowling", s.Bowling}} {
		table.Append(
			row.name,
			strconv.Itoa(row.d.Deliveries),
			fmt.Sprintf("%.2f", row.d.AverageScore),
			fmt.Sprintf("%.2f", row.d.WeightedAverage),
			fmt.Sprintf("%.2f", row.d.Best),
			fmt.Sprintf("%.2f", row.d.Worst),
			fmt.Sprintf("%.2f", row.d.AveragePressure),
		)
	}
	table.Render()
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
