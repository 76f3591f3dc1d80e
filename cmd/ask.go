package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/pable/go-cricket-prs/internal/report"
	"github.com/pable/go-cricket-prs/internal/storage"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const askSystemPrompt = `You are a cricket performance analyst. You are given Pressure Resistance
Score (PRS) data computed from ball-by-ball match files and a question.

Rules:
- Answer ONLY from the data provided. Never invent or estimate statistics.
- Always cite specific numbers when making a claim.
- If the data is insufficient to answer confidently, say so explicitly.
- Be concise. Mention sample size when a player has few deliveries.

Metrics glossary:
- PRS: 0-100 rating of performance under pressure. 50 is neutral.
- Batting PRS: rewards runs and penalises dismissals, weighted by match pressure.
- Bowling PRS: rewards dots and wickets and penalises boundaries, weighted by pressure.
- Pressure: per-delivery 0-1 blend of innings phase, wickets fallen plus wickets
  in the last 12 balls, required run rate in a chase, balls remaining, and this
  ball's outcome (wicket, boundary or dot).
- Role: All-Rounder has more than 50 deliveries in both disciplines.
- Levels: Elite >= 80, Excellent >= 70, Good >= 60, Average >= 50.`

// askRunLimit caps how many ranked players are sent for a run question.
const askRunLimit = 40

var (
	askModel  string
	askAPIKey string
)

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "AI-powered grounded analysis of stored runs (requires ANTHROPIC_API_KEY)",
}

var askPlayerCmd = &cobra.Command{
	Use:   "player <name> <question>",
	Short: "Ask about one player's PRS across all stored runs",
	Args:  cobra.ExactArgs(2),
	RunE:  runAskPlayer,
}

var askRunCmd = &cobra.Command{
	Use:   "run <run-prefix> <question>",
	Short: "Ask about the leaders of one stored run",
	Args:  cobra.ExactArgs(2),
	RunE:  runAskRun,
}

func init() {
	askCmd.PersistentFlags().StringVar(&askModel, "model", "claude-haiku-4-5-20251001", "Anthropic model to use")
	askCmd.PersistentFlags().StringVar(&askAPIKey, "api-key", "", "Anthropic API key (falls back to $ANTHROPIC_API_KEY)")

	askCmd.AddCommand(askPlayerCmd)
	askCmd.AddCommand(askRunCmd)
}

type askPlayerRow struct {
	Run        string  `json:"run"`
	Date       string  `json:"date"`
	Role       string  `json:"role"`
	BattingPRS float64 `json:"batting_prs"`
	BowlingPRS float64 `json:"bowling_prs"`
	BatBalls   int     `json:"batting_deliveries"`
	BowlBalls  int     `json:"bowling_deliveries"`
}

func runAskPlayer(cmd *cobra.Command, args []string) error {
	name, question := args[0], args[1]

	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	hist, err := db.GetPlayerHistory(name)
	if err != nil {
		return fmt.Errorf("player history: %w", err)
	}
	if len(hist) == 0 {
		return fmt.Errorf("no stored results for %q (names are exact, try 'prs player %s')", name, name)
	}

	rows := make([]askPlayerRow, len(hist))
	for i, h := range hist {
		rows[i] = askPlayerRow{
			Run:        h.RunID[:8],
			Date:       h.CreatedAt.Format("2006-01-02"),
			Role:       h.Role,
			BattingPRS: h.BattingPRS,
			BowlingPRS: h.BowlingPRS,
			BatBalls:   h.BattingDeliveries,
			BowlBalls:  h.BowlingDeliveries,
		}
	}
	data, err := json.MarshalIndent(map[string]any{"player": name, "runs": rows}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal data: %w", err)
	}

	fmt.Fprintf(os.Stdout, "Player: %s (%d runs)\n", name, len(hist))
	return callAnthropic(cmd.Context(), askAPIKey, askModel, string(data), question)
}

func runAskRun(cmd *cobra.Command, args []string) error {
	prefix, question := args[0], args[1]

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
		return fmt.Errorf("no run found with ID prefix %q", prefix)
	}
	results, err := db.GetRunResults(run.ID)
	if err != nil {
		return fmt.Errorf("get run results: %w", err)
	}
	report.Rank(results)

	players := make([]map[string]any, 0, askRunLimit)
	for _, r := range report.Top(results, askRunLimit) {
		players = append(players, map[string]any{
			"player":             r.Player,
			"role":               r.Role(),
			"batting_prs":        r.BattingPRS,
			"bowling_prs":        r.BowlingPRS,
			"batting_deliveries": r.BattingDeliveries,
			"bowling_deliveries": r.BowlingDeliveries,
		})
	}
	data, err := json.MarshalIndent(map[string]any{
		"source":              run.Source,
		"target_mode":         run.TargetMode,
		"matches_processed":   run.MatchesProcessed,
		"deliveries_analyzed": run.DeliveriesAnalyzed,
		"players_total":       len(results),
		"top_players":         players,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal data: %w", err)
	}

	fmt.Fprintf(os.Stdout, "Run: %s  %s  (%d matches)\n", run.ID[:8], run.Source, run.MatchesProcessed)
	return callAnthropic(cmd.Context(), askAPIKey, askModel, string(data), question)
}

// callAnthropic streams an answer to question grounded on dataJSON.
func callAnthropic(ctx context.Context, apiKey, modelID, dataJSON, question string) error {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf("no API key: set ANTHROPIC_API_KEY or use --api-key")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	userMsg := fmt.Sprintf("DATA:\n%s\n\nQUESTION: %s", dataJSON, question)

	cHeader.Fprintln(os.Stdout, "\n─── AI Analysis ─────────────────────────────────────")

	stream := client.Messages.NewStreaming(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(modelID),
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: askSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userMsg)),
		},
	})

	for stream.Next() {
		evt := stream.Current()
		if evt.Type == "content_block_delta" {
			delta := evt.AsContentBlockDelta()
			if delta.Delta.Type == "text_delta" {
				fmt.Fprint(os.Stdout, delta.Delta.AsTextDelta().Text)
			}
		}
	}
	cHeader.Fprintln(os.Stdout, "\n─────────────────────────────────────────────────────")

	if err := stream.Err(); err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "401") || strings.Contains(errStr, "authentication") {
			return fmt.Errorf("API authentication failed, check your API key")
		}
		return fmt.Errorf("streaming error: %w", err)
	}
	return nil
}
