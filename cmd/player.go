package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-cricket-prs/internal/report"
	"github.com/pable/go-cricket-prs/internal/storage"
)

var playerRun string

// playerCmd searches stored results by player name.
var playerCmd = &cobra.Command{
	Use:   "player <name-fragment>",
	Short: "Find players in a stored run by name",
	Long: `Case-insensitive substring search over player names in one stored run
(the latest unless --run is given). With --history the fragment must be an
exact name and every stored run for that player is listed.`,
	Args: cobra.ExactArgs(1),
	RunE: runPlayer,
}

var playerHistory bool

func init() {
	playerCmd.Flags().StringVar(&playerRun, "run", "", "run ID prefix (default latest)")
	playerCmd.Flags().BoolVar(&playerHistory, "history", false, "list every run for an exact player name")
}

func runPlayer(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	if playerHistory {
		hist, err := db.GetPlayerHistory(args[0])
		if err != nil {
			return fmt.Errorf("player history: %w", err)
		}
		if len(hist) == 0 {
			fmt.Fprintf(os.Stderr, "No stored results for %q\n", args[0])
			return nil
		}
		report.PrintPlayerRuns(os.Stdout, hist)
		return nil
	}

	var run *storage.Run
	if playerRun != "" {
		run, err = db.GetRunByPrefix(playerRun)
	} else {
		run, err = db.LatestRun()
	}
	if err != nil {
		return fmt.Errorf("query run: %w", err)
	}
	if run == nil {
		fmt.Fprintln(os.Stderr, "No matching run stored.")
		return nil
	}

	found, err := db.SearchPlayers(run.ID, args[0])
	if err != nil {
		return fmt.Errorf("search players: %w", err)
	}
	if len(found) == 0 {
		fmt.Fprintf(os.Stderr, "No players matching %q in run %s\n", args[0], run.ID[:8])
		return nil
	}
	report.PrintPlayerRuns(os.Stdout, found)
	return nil
}
