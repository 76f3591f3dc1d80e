package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/pable/go-cricket-prs/internal/storage"
)

var sqlCmd = &cobra.Command{
	Use:   "sql <query>",
	Short: "Run a raw SQL query against the PRS database",
	Long: `Run an arbitrary SQL query against the PRS database and print results as a table.

Schema overview:
  runs(id, created_at, source, target_mode, credit_all_wickets, resilient,
    matches_processed, matches_skipped, innings_skipped, dropped_deliveries,
    deliveries_analyzed, players)
  matches(run_id, hash, source, match_date, match_type, competition, venue,
    teams, winner, overs, innings_scored, deliveries)
  skips(run_id, seq, kind, source, innings, reason)
  prm(run_id, player_name, batting_prs, bowling_prs, bat_balls, bowl_balls, role)

Example: prs sql "SELECT player_name, bowling_prs FROM prm WHERE bowl_balls > 120 ORDER BY bowling_prs DESC LIMIT 10"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSQL,
}

func runSQL(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	cols, rows, err := db.QueryRaw(query)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println("(no rows)")
		return nil
	}

	table := tablewriter.NewTable(os.Stdout, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
	}))

	colsAny := make([]any, len(cols))
	for i, c := range cols {
		colsAny[i] = c
	}
	table.Header(colsAny...)

	for _, row := range rows {
		rowAny := make([]any, len(row))
		for i, v := range row {
			rowAny[i] = v
		}
		table.Append(rowAny...)
	}
	table.Render()
	fmt.Fprintf(os.Stdout, "\n(%d rows)\n", len(rows))
	return nil
}
