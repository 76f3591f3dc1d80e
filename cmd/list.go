package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-cricket-prs/internal/storage"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored analysis runs",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	runs, err := db.ListRuns()
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Fprintln(os.Stdout, "No runs stored yet. Run 'prs analyze <path>' to add one.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-10s  %-16s  %-7s  %7s  %7s  %7s  %s\n",
		"RUN", "CREATED", "TARGET", "MATCHES", "SKIPPED", "PLAYERS", "SOURCE")
	fmt.Fprintf(os.Stdout, "%-10s  %-16s  %-7s  %7s  %7s  %7s  %s\n",
		"──────────", "────────────────", "───────", "───────", "───────", "───────", "──────")
	for _, r := range runs {
		fmt.Fprintf(os.Stdout, "%-10s  %-16s  %-7s  %7d  %7d  %7d  %s\n",
			r.ID[:8], r.CreatedAt.Local().Format("2006-01-02 15:04"), r.TargetMode,
			r.MatchesProcessed, r.MatchesSkipped, r.Players, r.Source)
	}
	return nil
}
