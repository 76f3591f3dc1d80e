package cmd

import (
	"strings"
	"testing"
)

func TestAskPromptDescribesPressureFactors(t *testing.T) {
	for _, want := range []string{"innings phase", "wickets fallen", "required run rate", "balls remaining", "ball's outcome"} {
		if !strings.Contains(askSystemPrompt, want) {
			t.Errorf("system prompt should mention %q", want)
		}
	}
	for _, stale := range []string{"recent\n  scoring", "recent scoring", "wickets in hand"} {
		if strings.Contains(askSystemPrompt, stale) {
			t.Errorf("system prompt mentions a factor the classifier does not use: %q", stale)
		}
	}
}
