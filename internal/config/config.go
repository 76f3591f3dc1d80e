package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pable/go-cricket-prs/internal/analyzer"
	"github.com/pable/go-cricket-prs/internal/model"
)

// Config is the on-disk configuration shape (YAML). Fields left out of the
// file keep their Default values.
type Config struct {
	Analysis AnalysisConfig `yaml:"analysis"`
	Output   OutputConfig   `yaml:"output"`
	LogLevel string         `yaml:"log_level"`
}

// AnalysisConfig controls how match files are parsed and replayed.
type AnalysisConfig struct {
	DefaultOvers     int    `yaml:"default_overs"`
	BallsPerOver     int    `yaml:"balls_per_over"`
	TargetMode       string `yaml:"target_mode"`
	CreditAllWickets bool   `yaml:"credit_all_wickets"`
	Resilient        bool   `yaml:"resilient"`
	Workers          int    `yaml:"workers"`
}

// OutputConfig controls how results are printed.
type OutputConfig struct {
	Format string `yaml:"format"`
	Top    int    `yaml:"top"`
}

// Output formats.
const (
	FormatTable    = "table"
	FormatDetailed = "detailed"
	FormatJSON     = "json"
)

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			DefaultOvers:     model.DefaultOvers,
			BallsPerOver:     model.DefaultBallsPerOver,
			TargetMode:       analyzer.TargetChase,
			CreditAllWickets: true,
			Workers:          4,
		},
		Output:   OutputConfig{Format: FormatTable},
		LogLevel: "info",
	}
}

// Load reads the YAML file at path over the defaults and validates the
// result. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return c, nil
}

// LoadUnchecked reads the YAML file at path over the defaults without
// validating it.
func LoadUnchecked(path string) (*Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return c, nil
}

// Validate reports the first out-of-range or unknown setting.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	a := c.Analysis
	if a.DefaultOvers <= 0 {
		return fmt.Errorf("analysis.default_overs must be positive, got %d", a.DefaultOvers)
	}
	if a.BallsPerOver <= 0 {
		return fmt.Errorf("analysis.balls_per_over must be positive, got %d", a.BallsPerOver)
	}
	if a.TargetMode != analyzer.TargetChase && a.TargetMode != analyzer.TargetNone {
		return fmt.Errorf("analysis.target_mode must be %q or %q, got %q", analyzer.TargetChase, analyzer.TargetNone, a.TargetMode)
	}
	if a.Workers <= 0 {
		return fmt.Errorf("analysis.workers must be positive, got %d", a.Workers)
	}
	switch c.Output.Format {
	case FormatTable, FormatDetailed, FormatJSON:
	default:
		return fmt.Errorf("output.format must be table, detailed or json, got %q", c.Output.Format)
	}
	if c.Output.Top < 0 {
		return fmt.Errorf("output.top must not be negative, got %d", c.Output.Top)
	}
	return nil
}

// AnalyzerOptions converts the analysis section for the analyzer.
func (a AnalysisConfig) AnalyzerOptions() analyzer.Options {
	return analyzer.Options{
		TargetMode:       a.TargetMode,
		CreditAllWickets: a.CreditAllWickets,
		Resilient:        a.Resilient,
		Workers:          a.Workers,
		DefaultOvers:     a.DefaultOvers,
		BallsPerOver:     a.BallsPerOver,
	}
}
