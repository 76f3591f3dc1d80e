package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-cricket-prs/internal/report"
	"github.com/pable/go-cricket-prs/internal/storage"
)

// summaryCmd is the cobra command for displaying a high-level database overview.
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show a high-level overview of the database",
	Long: `Display aggregate statistics about all stored runs: run and match counts,
the date range of scored matches, distinct players, and the leaders of the
latest run.`,
	Args: cobra.NoArgs,
	RunE: runSummary,
}

func runSummary(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	ov, err := db.GetDBOverview()
	if err != nil {
		return fmt.Errorf("get overview: %w", err)
	}
	if ov.TotalRuns == 0 {
		fmt.Fprintln(os.Stdout, "No runs stored yet. Run 'prs analyze <path>' to add one.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "\n=== Database Summary ===\n\n")
	fmt.Fprintf(os.Stdout, "  Runs stored    : %d\n", ov.TotalRuns)
	fmt.Fprintf(os.Stdout, "  Matches scored : %d\n", ov.TotalMatches)
	fmt.Fprintf(os.Stdout, "  Date range     : %s → %s\n", ov.EarliestMatch, ov.LatestMatch)
	fmt.Fprintf(os.Stdout, "  Players seen   : %d\n", ov.UniquePlayers)
	fmt.Fprintf(os.Stdout, "  Latest run     : %s\n", ov.LatestRunID[:8])

	results, err := db.GetRunResults(ov.LatestRunID)
	if err != nil {
		return fmt.Errorf("get run results: %w", err)
	}
	report.Rank(results)
	for _, cat := range []string{report.CategoryBatting, report.CategoryBowling, report.CategoryOverall} {
		report.PrintLeaders(os.Stdout, results, cat)
	}
	return nil
}
