package model

import "fmt"

// Default match shape used when the match metadata does not say otherwise.
const (
	DefaultOvers        = 20
	DefaultBallsPerOver = 6
)

// ---- Deliveries emitted by the parser ----

// Runs is the run breakdown of one delivery.
type Runs struct {
	Batsman int
	Extras  int
	Total   int
}

// Wicket describes a dismissal on a delivery.
type Wicket struct {
	PlayerOut string
	Kind      string
	Fielders  []string
}

// Extras is the extras breakdown of one delivery. Zero values mean none.
type Extras struct {
	Wides   int
	NoBalls int
	Byes    int
	LegByes int
	Penalty int
}

// Delivery is one ball bowled and its outcome. Build it with NewDelivery;
// the zero value is not a valid delivery.
type Delivery struct {
	Over       int
	Ball       int
	Batsman    string
	Bowler     string
	NonStriker string
	Runs       Runs
	Wicket     *Wicket // nil if no dismissal
	Extras     *Extras // nil if no extras
}

// DeliveryInput is the loosely-typed form a parser fills in before
// validation. Pointer fields distinguish "absent" from zero.
type DeliveryInput struct {
	Over, Ball  int
	Batsman     string
	Bowler      string
	NonStriker  string
	HasRuns     bool
	RunsBatsman *int
	RunsExtras  *int
	RunsTotal   *int
	Wicket      *Wicket
	Extras      *Extras
}

// NewDelivery validates in and returns the immutable Delivery.
// Missing batsman, bowler, runs or runs.total yield *MissingFieldError;
// a total below the batsman's runs yields *InvalidFieldError.
func NewDelivery(in DeliveryInput) (Delivery, error) {
	if in.Batsman == "" {
		return Delivery{}, &MissingFieldError{Field: "batsman"}
	}
	if in.Bowler == "" {
		return Delivery{}, &MissingFieldError{Field: "bowler"}
	}
	if !in.HasRuns {
		return Delivery{}, &MissingFieldError{Field: "runs"}
	}
	if in.RunsTotal == nil {
		return Delivery{}, &MissingFieldError{Field: "runs.total"}
	}

	runs := Runs{Total: *in.RunsTotal}
	if in.RunsBatsman != nil {
		runs.Batsman = *in.RunsBatsman
	}
	if in.RunsExtras != nil {
		runs.Extras = *in.RunsExtras
	}
	if runs.Total < 0 || runs.Batsman < 0 || runs.Extras < 0 {
		return Delivery{}, &InvalidFieldError{Field: "runs", Reason: "negative run count"}
	}
	if runs.Total < runs.Batsman {
		return Delivery{}, &InvalidFieldError{
			Field:  "runs.total",
			Reason: fmt.Sprintf("total %d is below batsman runs %d", runs.Total, runs.Batsman),
		}
	}

	d := Delivery{
		Over:       in.Over,
		Ball:       in.Ball,
		Batsman:    in.Batsman,
		Bowler:     in.Bowler,
		NonStriker: in.NonStriker,
		Runs:       runs,
	}
	if in.Wicket != nil {
		w := *in.Wicket
		w.Fielders = append([]string(nil), in.Wicket.Fielders...)
		d.Wicket = &w
	}
	if in.Extras != nil {
		e := *in.Extras
		d.Extras = &e
	}
	return d, nil
}

// Key returns the "over.ball" label of the delivery.
func (d Delivery) Key() string {
	return fmt.Sprintf("%d.%d", d.Over, d.Ball)
}

// IsDot reports whether the delivery conceded no runs at all, byes included.
func (d Delivery) IsDot() bool { return d.Runs.Total == 0 }

// IsBoundary reports whether the delivery produced four or more runs in total.
func (d Delivery) IsBoundary() bool { return d.Runs.Total >= 4 }

// StrikerDismissed reports whether the striker is the dismissed player.
// Run-outs of the non-striker return false.
func (d Delivery) StrikerDismissed() bool {
	return d.Wicket != nil && d.Wicket.PlayerOut == d.Batsman
}

// ---- Match structure ----

// Innings is one team's batting turn.
type Innings struct {
	Number     int // 1-based
	Team       string
	Deliveries []Delivery
	// Target is the runs required to win, when the source file states it.
	Target *int
	// Err is set when the innings was rejected during parsing (strict mode).
	Err error
	// Dropped holds deliveries discarded in resilient mode.
	Dropped []error
}

// Total returns the innings' total runs.
func (in Innings) Total() int {
	total := 0
	for _, d := range in.Deliveries {
		total += d.Runs.Total
	}
	return total
}

// MatchInfo holds the metadata the pipeline needs plus descriptive fields
// carried through to reports and storage.
type MatchInfo struct {
	Overs        int
	BallsPerOver int
	MatchType    string
	Competition  string
	Venue        string
	City         string
	Date         string // "YYYY-MM-DD"
	Teams        []string
	Winner       string
}

// TotalBalls returns the scheduled length of one innings in balls.
func (mi MatchInfo) TotalBalls() int {
	return mi.Overs * mi.BallsPerOver
}

// Match is a parsed match file.
type Match struct {
	Source  string // file path
	Hash    string // sha256 of the file contents
	Info    MatchInfo
	Innings []Innings
}

// ---- Pipeline output ----

// PRSResult is one player's reduced rating.
type PRSResult struct {
	BattingPRS        float64 `json:"batting_prs"`
	BowlingPRS        float64 `json:"bowling_prs"`
	BattingDeliveries int     `json:"batting_deliveries"`
	BowlingDeliveries int     `json:"bowling_deliveries"`
	TotalDeliveries   int     `json:"total_deliveries"`
}

// Overall returns the mean of batting and bowling PRS.
func (r PRSResult) Overall() float64 {
	return (r.BattingPRS + r.BowlingPRS) / 2
}

// Role classifies a player by volume of play.
func (r PRSResult) Role() string {
	switch {
	case r.BattingDeliveries > 50 && r.BowlingDeliveries > 50:
		return "All-Rounder"
	case r.BowlingDeliveries > r.BattingDeliveries:
		return "Bowler"
	default:
		return "Batsman"
	}
}

// PlayerResult pairs a player with their PRSResult.
type PlayerResult struct {
	Player string
	PRSResult
}
