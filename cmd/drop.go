package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-cricket-prs/internal/storage"
)

var (
	dropForce bool
	dropRun   string
)

// dropCmd deletes one stored run or the whole PRS database.
var dropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Delete a stored run or the whole PRS database",
	Long: `With --run, delete one stored run with its matches, skips and player rows.
Without it, permanently delete the SQLite PRS database and its WAL files.
Re-run analyze afterwards to rebuild.`,
	Args: cobra.NoArgs,
	RunE: runDrop,
}

func init() {
	dropCmd.Flags().BoolVarP(&dropForce, "force", "f", false, "skip confirmation prompt")
	dropCmd.Flags().StringVar(&dropRun, "run", "", "delete only the run with this ID prefix")
}

func runDrop(cmd *cobra.Command, args []string) error {
	if dropRun != "" {
		return dropOneRun(dropRun)
	}
	if !dropForce {
		cWarn.Fprintf(os.Stderr, "This will permanently delete: %s\n", dbPath)
		fmt.Fprintf(os.Stderr, "Re-run with --force to confirm.\n")
		return nil
	}
	if err := os.Remove(dbPath); err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintln(os.Stdout, "Database does not exist, nothing to drop.")
			return nil
		}
		return fmt.Errorf("remove database: %w", err)
	}
	for _, f := range storage.SidecarFiles(dbPath) {
		if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", f, err)
		}
	}
	cOK.Fprintf(os.Stdout, "Deleted: %s\n", dbPath)
	return nil
}

func dropOneRun(prefix string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	run, err := db.GetRunByPrefix(prefix)
	if err != nil {
		return fmt.Errorf("query run: %w", err)
	}
	if run == nil {
		fmt.Fprintf(os.Stderr, "No run found with ID prefix %q\n", prefix)
		return nil
	}
	if !dropForce {
		cWarn.Fprintf(os.Stderr, "This will delete run %s (%s, %d players)\n", run.ID[:8], run.Source, run.Players)
		fmt.Fprintf(os.Stderr, "Re-run with --force to confirm.\n")
		return nil
	}
	if _, err := db.DeleteRun(run.ID); err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	cOK.Fprintf(os.Stdout, "Deleted run %s\n", run.ID[:8])
	return nil
}
