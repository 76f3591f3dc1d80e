package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pable/go-cricket-prs/internal/analyzer"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prs.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_EmptyPathGivesDefaults(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *c != *Default() {
		t.Errorf("want defaults, got %+v", c)
	}
	if c.Analysis.AnalyzerOptions() != analyzer.DefaultOptions() {
		t.Errorf("default config and analyzer defaults disagree: %+v", c.Analysis.AnalyzerOptions())
	}
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
analysis:
  target_mode: none
  resilient: true
output:
  format: json
`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Analysis.TargetMode != analyzer.TargetNone || !c.Analysis.Resilient || c.Output.Format != FormatJSON {
		t.Errorf("file values not applied: %+v", c)
	}
	if !c.Analysis.CreditAllWickets || c.Analysis.Workers != 4 || c.Analysis.DefaultOvers != 20 {
		t.Errorf("unset values should keep defaults: %+v", c.Analysis)
	}
}

func TestLoad_CreditPolicyCanBeDisabled(t *testing.T) {
	c, err := Load(writeConfig(t, "analysis:\n  credit_all_wickets: false\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Analysis.CreditAllWickets {
		t.Error("credit_all_wickets: false was ignored")
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"target mode": "analysis:\n  target_mode: guess\n",
		"workers":     "analysis:\n  workers: 0\n",
		"overs":       "analysis:\n  default_overs: -1\n",
		"format":      "output:\n  format: csv\n",
		"top":         "output:\n  top: -3\n",
	}
	for name, body := range cases {
		if _, err := Load(writeConfig(t, body)); err == nil {
			t.Errorf("%s: want validation error", name)
		}
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file should fail")
	}
	_, err := Load(writeConfig(t, "analysis: [1, 2\n"))
	if err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Errorf("want parse error, got %v", err)
	}
}
