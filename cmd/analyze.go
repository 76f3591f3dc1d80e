package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pable/go-cricket-prs/internal/analyzer"
	"github.com/pable/go-cricket-prs/internal/config"
	"github.com/pable/go-cricket-prs/internal/parser"
	"github.com/pable/go-cricket-prs/internal/report"
	"github.com/pable/go-cricket-prs/internal/storage"
)

var (
	analyzeFormat       string
	analyzeTop          int
	analyzeMatchDetails bool
	analyzeNoStore      bool
	analyzeWorkers      int
	analyzeTargetMode   string
	analyzeResilient    bool
	analyzeCreditAll    bool
	analyzeOvers        int
	analyzeLeaders      string
	analyzePlayer       string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <path>",
	Short: "Compute PRS from cricsheet match files",
	Long: `Replay every match file under <path> (a file or a directory) ball by
ball and rate each player's batting and bowling under pressure.

Accepted inputs are cricsheet YAML or JSON, optionally compressed with gzip,
bzip2 or zstd. Flags override values from --config. The run is stored in the
database unless --no-store is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeFormat, "format", "f", config.FormatTable, "output format: table, detailed or json")
	analyzeCmd.Flags().IntVarP(&analyzeTop, "top", "n", 0, "show only the top N players (0 = all)")
	analyzeCmd.Flags().BoolVar(&analyzeMatchDetails, "match-details", false, "list every scored match")
	analyzeCmd.Flags().BoolVar(&analyzeNoStore, "no-store", false, "do not save the run to the database")
	analyzeCmd.Flags().IntVarP(&analyzeWorkers, "workers", "w", 4, "match files parsed and replayed in parallel")
	analyzeCmd.Flags().StringVar(&analyzeTargetMode, "target-mode", analyzer.TargetChase, "second innings target: chase or none")
	analyzeCmd.Flags().BoolVar(&analyzeResilient, "resilient", false, "drop bad deliveries instead of rejecting the innings")
	analyzeCmd.Flags().BoolVar(&analyzeCreditAll, "credit-all-wickets", true, "credit the bowler for every dismissal kind")
	analyzeCmd.Flags().IntVar(&analyzeOvers, "overs", 20, "scheduled overs when a match file omits them")
	analyzeCmd.Flags().StringVar(&analyzeLeaders, "leaders", "", "print top performers: batting, bowling or overall")
	analyzeCmd.Flags().StringVar(&analyzePlayer, "player", "", "print a per-delivery summary for one player")
}

// applyAnalyzeFlags copies explicitly set flags over the loaded config.
func applyAnalyzeFlags(cmd *cobra.Command, c *config.Config) error {
	fl := cmd.Flags()
	if fl.Changed("format") {
		c.Output.Format = analyzeFormat
	}
	if fl.Changed("top") {
		c.Output.Top = analyzeTop
	}
	if fl.Changed("workers") {
		c.Analysis.Workers = analyzeWorkers
	}
	if fl.Changed("target-mode") {
		c.Analysis.TargetMode = analyzeTargetMode
	}
	if fl.Changed("resilient") {
		c.Analysis.Resilient = analyzeResilient
	}
	if fl.Changed("credit-all-wickets") {
		c.Analysis.CreditAllWickets = analyzeCreditAll
	}
	if fl.Changed("overs") {
		c.Analysis.DefaultOvers = analyzeOvers
	}
	return c.Validate()
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	source := args[0]
	c := *cfg
	if err := applyAnalyzeFlags(cmd, &c); err != nil {
		return err
	}

	files, err := parser.FindMatchFiles(source)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		cWarn.Fprintf(os.Stderr, "No match files found under %s\n", source)
		return nil
	}
	cMuted.Fprintf(os.Stderr, "Analyzing %d match files with %d workers...\n", len(files), c.Analysis.Workers)

	start := time.Now()
	a := analyzer.New(c.Analysis.AnalyzerOptions(), log.WithField("source", source))
	rep, err := a.Run(context.Background(), files)
	if err != nil {
		return err
	}
	store := a.Store()
	log.WithField("elapsed", time.Since(start).Round(time.Millisecond)).Debug("analysis finished")

	if rep.MatchesProcessed == 0 {
		cError.Fprintf(os.Stderr, "No matches could be processed (%d skipped)\n", rep.MatchesSkipped)
		report.PrintSkips(os.Stderr, toSkipRecords(rep.Skips))
		return fmt.Errorf("no valid matches under %s", source)
	}

	results := report.FromScores(store.FinalScores())
	run := runRecord(source, c.Analysis, rep)

	if !analyzeNoStore {
		if err := ensureDBDir(); err != nil {
			return err
		}
		db, err := storage.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open storage: %w", err)
		}
		defer db.Close()
		if err := db.SaveRun(&run, toMatchRecords(rep.Matches), toSkipRecords(rep.Skips), results); err != nil {
			return fmt.Errorf("save run: %w", err)
		}
		cOK.Fprintf(os.Stderr, "Stored run %s\n", run.ID[:8])
	}

	if c.Output.Format == config.FormatJSON {
		return report.PrintJSON(os.Stdout, results)
	}

	report.PrintRunSummary(os.Stdout, run, store.TotalEntries())
	if analyzeMatchDetails {
		report.PrintMatches(os.Stdout, toMatchRecords(rep.Matches))
	}
	report.PrintSkips(os.Stdout, toSkipRecords(rep.Skips))

	top := report.Top(results, c.Output.Top)
	if c.Output.Format == config.FormatDetailed {
		report.PrintDetailed(os.Stdout, top)
	} else {
		report.PrintTable(os.Stdout, top, len(results))
	}
	if analyzeLeaders != "" {
		report.PrintLeaders(os.Stdout, results, analyzeLeaders)
	}
	if analyzePlayer != "" {
		sum, ok := store.Summary(analyzePlayer)
		if !ok {
			cWarn.Fprintf(os.Stderr, "No deliveries recorded for %q\n", analyzePlayer)
			return nil
		}
		report.PrintPlayerSummary(os.Stdout, sum)
	}
	return nil
}
