package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pable/go-cricket-prs/internal/config"
)

var (
	dbPath     string
	configPath string
	verbose    bool

	cfg *config.Config
	log = logrus.New()
)

// Status line palette.
var (
	cHeader = color.New(color.FgCyan, color.Bold)
	cOK     = color.New(color.FgGreen)
	cWarn   = color.New(color.FgYellow)
	cError  = color.New(color.FgRed, color.Bold)
	cMuted  = color.New(color.Faint)
)

var rootCmd = &cobra.Command{
	Use:   "prs",
	Short: "Cricket Pressure Resistance Score tool",
	Long: `Replay ball-by-ball cricsheet match files and rate every player's
batting and bowling under pressure on a 0-100 scale.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		cError.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	defaultDB := filepath.Join(mustUserHome(), ".prs", "prs.db")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", defaultDB, "path to SQLite database")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(playerCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(sqlCmd)
	rootCmd.AddCommand(dropCmd)
	rootCmd.AddCommand(askCmd)
}

// loadConfig reads --config and sets up logging before any command runs.
func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg = c

	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if verbose {
		level = logrus.DebugLevel
	}
	log.SetLevel(level)
	return nil
}

// ensureDBDir creates the parent directory of the database file.
func ensureDBDir() error {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db dir: %w", err)
	}
	return nil
}

func mustUserHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
