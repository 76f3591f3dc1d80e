package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-cricket-prs/internal/config"
	"github.com/pable/go-cricket-prs/internal/report"
	"github.com/pable/go-cricket-prs/internal/storage"
)

var (
	showTop          int
	showFormat       string
	showLeaders      string
	showMatchDetails bool
)

var showCmd = &cobra.Command{
	Use:   "show [run-prefix]",
	Short: "Show a stored run by ID prefix (latest when omitted)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().IntVarP(&showTop, "top", "n", 0, "show only the top N players (0 = all)")
	showCmd.Flags().StringVarP(&showFormat, "format", "f", config.FormatTable, "output format: table, detailed or json")
	showCmd.Flags().StringVar(&showLeaders, "leaders", "", "print top performers: batting, bowling or overall")
	showCmd.Flags().BoolVar(&showMatchDetails, "match-details", false, "list every scored match")
}

func runShow(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	var run *storage.Run
	if len(args) == 1 {
		run, err = db.GetRunByPrefix(args[0])
	} else {
		run, err = db.LatestRun()
	}
	if err != nil {
		return fmt.Errorf("query run: %w", err)
	}
	if run == nil {
		if len(args) == 1 {
			fmt.Fprintf(os.Stderr, "No run found with ID prefix %q\n", args[0])
		} else {
			fmt.Fprintln(os.Stderr, "No runs stored yet.")
		}
		return nil
	}

	results, err := db.GetRunResults(run.ID)
	if err != nil {
		return fmt.Errorf("get run results: %w", err)
	}
	report.Rank(results)

	if showFormat == config.FormatJSON {
		return report.PrintJSON(os.Stdout, results)
	}

	skips, err := db.GetRunSkips(run.ID)
	if err != nil {
		return fmt.Errorf("get run skips: %w", err)
	}
	report.PrintRunSummary(os.Stdout, *run, 0)
	if showMatchDetails {
		matches, err := db.GetRunMatches(run.ID)
		if err != nil {
			return fmt.Errorf("get run matches: %w", err)
		}
		report.PrintMatches(os.Stdout, matches)
	}
	report.PrintSkips(os.Stdout, skips)

	top := report.Top(results, showTop)
	if showFormat == config.FormatDetailed {
		report.PrintDetailed(os.Stdout, top)
	} else {
		report.PrintTable(os.Stdout, top, len(results))
	}
	if showLeaders != "" {
		report.PrintLeaders(os.Stdout, results, showLeaders)
	}
	return nil
}
