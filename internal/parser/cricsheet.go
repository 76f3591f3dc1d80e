package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/pable/go-cricket-prs/internal/model"
)

type rawMatch struct {
	Info    rawInfo     `yaml:"info"`
	Innings []yaml.Node `yaml:"innings"`
}

type rawInfo struct {
	Overs        int      `yaml:"overs"`
	BallsPerOver int      `yaml:"balls_per_over"`
	MatchType    string   `yaml:"match_type"`
	Competition  string   `yaml:"competition"`
	Event        rawEvent `yaml:"event"`
	Venue        string   `yaml:"venue"`
	City         string   `yaml:"city"`
	Dates        []string `yaml:"dates"`
	Teams        []string `yaml:"teams"`
	Outcome      struct {
		Winner string `yaml:"winner"`
	} `yaml:"outcome"`
}

// rawEvent accepts both `event: {name: ...}` and a bare `event: name`.
type rawEvent struct {
	Name string `yaml:"name"`
}

func (e *rawEvent) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		e.Name = n.Value
		return nil
	}
	type plain rawEvent
	return n.Decode((*plain)(e))
}

// legacyInnings is the value under a "1st innings" style key.
type legacyInnings struct {
	Team       string      `yaml:"team"`
	Deliveries []yaml.Node `yaml:"deliveries"`
	Target     *rawTarget  `yaml:"target"`
}

type currentInnings struct {
	Team   string     `yaml:"team"`
	Overs  []rawOver  `yaml:"overs"`
	Target *rawTarget `yaml:"target"`
}

type rawOver struct {
	Over       int         `yaml:"over"`
	Deliveries []yaml.Node `yaml:"deliveries"`
}

type rawTarget struct {
	Runs *int `yaml:"runs"`
}

type rawDelivery struct {
	Batsman    string      `yaml:"batsman"`
	Batter     string      `yaml:"batter"`
	Bowler     string      `yaml:"bowler"`
	NonStriker string      `yaml:"non_striker"`
	Runs       *rawRuns    `yaml:"runs"`
	Wicket     *rawWicket  `yaml:"wicket"`
	Wickets    []rawWicket `yaml:"wickets"`
	Extras     *rawExtras  `yaml:"extras"`
}

type rawRuns struct {
	Batsman *int `yaml:"batsman"`
	Batter  *int `yaml:"batter"`
	Extras  *int `yaml:"extras"`
	Total   *int `yaml:"total"`
}

type rawWicket struct {
	PlayerOut string   `yaml:"player_out"`
	Kind      string   `yaml:"kind"`
	Fielders  fielders `yaml:"fielders"`
}

// fielders accepts plain names (legacy) and {name: ...} entries (current).
type fielders []string

func (f *fielders) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.SequenceNode {
		return fmt.Errorf("fielders: expected a list, got %s", n.Tag)
	}
	for _, item := range n.Content {
		switch item.Kind {
		case yaml.ScalarNode:
			*f = append(*f, item.Value)
		case yaml.MappingNode:
			var named struct {
				Name string `yaml:"name"`
			}
			if err := item.Decode(&named); err != nil {
				return err
			}
			*f = append(*f, named.Name)
		}
	}
	return nil
}

type rawExtras struct {
	Wides   int `yaml:"wides"`
	NoBalls int `yaml:"noballs"`
	Byes    int `yaml:"byes"`
	LegByes int `yaml:"legbyes"`
	Penalty int `yaml:"penalty"`
}

// entry is one delivery as found in the file, before validation.
type entry struct {
	key    string
	over   int
	ball   int
	keyErr error
	node   *yaml.Node
}

func decodeMatch(data []byte, opts Options) (*model.Match, error) {
	var raw rawMatch
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if len(raw.Innings) == 0 {
		return nil, errors.New("no innings")
	}

	m := &model.Match{Info: matchInfo(raw.Info, opts)}
	for i := range raw.Innings {
		in, err := decodeInnings(&raw.Innings[i], i+1, opts)
		if err != nil {
			return nil, fmt.Errorf("innings %d: %w", i+1, err)
		}
		m.Innings = append(m.Innings, in)
	}
	return m, nil
}

func matchInfo(ri rawInfo, opts Options) model.MatchInfo {
	mi := model.MatchInfo{
		Overs:        ri.Overs,
		BallsPerOver: ri.BallsPerOver,
		MatchType:    ri.MatchType,
		Competition:  ri.Competition,
		Venue:        ri.Venue,
		City:         ri.City,
		Teams:        ri.Teams,
		Winner:       ri.Outcome.Winner,
	}
	if mi.Competition == "" {
		mi.Competition = ri.Event.Name
	}
	if len(ri.Dates) > 0 {
		mi.Date = ri.Dates[0]
	}
	if mi.Overs <= 0 {
		mi.Overs = orDefault(opts.DefaultOvers, model.DefaultOvers)
	}
	if mi.BallsPerOver <= 0 {
		mi.BallsPerOver = orDefault(opts.BallsPerOver, model.DefaultBallsPerOver)
	}
	return mi
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

// decodeInnings handles one element of the top-level innings list in either
// layout.
func decodeInnings(n *yaml.Node, number int, opts Options) (model.Innings, error) {
	if n.Kind != yaml.MappingNode {
		return model.Innings{}, errors.New("expected a mapping")
	}

	// legacy: a single "1st innings" key wrapping the innings body
	if len(n.Content) == 2 && n.Content[1].Kind == yaml.MappingNode && n.Content[0].Value != "team" {
		var li legacyInnings
		if err := n.Content[1].Decode(&li); err != nil {
			return model.Innings{}, fmt.Errorf("decode %q: %w", n.Content[0].Value, err)
		}
		entries := make([]entry, 0, len(li.Deliveries))
		for i := range li.Deliveries {
			entries = append(entries, legacyEntry(&li.Deliveries[i]))
		}
		return buildInnings(number, li.Team, targetRuns(li.Target), entries, opts), nil
	}

	var ci currentInnings
	if err := n.Decode(&ci); err != nil {
		return model.Innings{}, fmt.Errorf("decode: %w", err)
	}
	var entries []entry
	for _, ov := range ci.Overs {
		for i := range ov.Deliveries {
			ball := i + 1
			entries = append(entries, entry{
				key:  fmt.Sprintf("%d.%d", ov.Over, ball),
				over: ov.Over,
				ball: ball,
				node: &ov.Deliveries[i],
			})
		}
	}
	return buildInnings(number, ci.Team, targetRuns(ci.Target), entries, opts), nil
}

func targetRuns(t *rawTarget) *int {
	if t == nil || t.Runs == nil {
		return nil
	}
	v := *t.Runs
	return &v
}

// legacyEntry unwraps a `- 0.1: {...}` list item. The key is taken from the
// raw scalar text so "0.10" stays ball ten rather than becoming 0.1.
func legacyEntry(n *yaml.Node) entry {
	if n.Kind != yaml.MappingNode || len(n.Content) != 2 {
		return entry{key: "?", keyErr: &model.MalformedDeliveryKey{Key: "?"}}
	}
	key := n.Content[0].Value
	over, ball, err := ParseDeliveryKey(key)
	return entry{key: key, over: over, ball: ball, keyErr: err, node: n.Content[1]}
}

// ParseDeliveryKey splits an "over.ball" key into its integers.
func ParseDeliveryKey(key string) (over, ball int, err error) {
	o, b, ok := strings.Cut(strings.TrimSpace(key), ".")
	if !ok {
		return 0, 0, &model.MalformedDeliveryKey{Key: key}
	}
	over, err1 := strconv.Atoi(o)
	ball, err2 := strconv.Atoi(b)
	if err1 != nil || err2 != nil || over < 0 || ball < 0 {
		return 0, 0, &model.MalformedDeliveryKey{Key: key}
	}
	return over, ball, nil
}

// buildInnings validates each entry. In strict mode the first bad delivery
// rejects the innings; in resilient mode it is dropped.
func buildInnings(number int, team string, target *int, entries []entry, opts Options) model.Innings {
	in := model.Innings{Number: number, Team: team, Target: target}
	log := opts.logger().WithFields(logrus.Fields{"innings": number})

	for _, e := range entries {
		d, err := toDelivery(e)
		if err == nil {
			in.Deliveries = append(in.Deliveries, d)
			continue
		}
		derr := &model.DeliveryError{Innings: number, Key: e.key, Err: err}
		if !opts.Resilient {
			in.Deliveries = nil
			in.Dropped = nil
			in.Err = derr
			return in
		}
		log.Warnf("dropping delivery: %v", derr)
		in.Dropped = append(in.Dropped, derr)
	}
	return in
}

func toDelivery(e entry) (model.Delivery, error) {
	if e.keyErr != nil {
		return model.Delivery{}, e.keyErr
	}
	var rd rawDelivery
	if err := e.node.Decode(&rd); err != nil {
		return model.Delivery{}, &model.InvalidFieldError{Field: "delivery", Reason: err.Error()}
	}

	in := model.DeliveryInput{
		Over:       e.over,
		Ball:       e.ball,
		Batsman:    firstNonEmpty(rd.Batsman, rd.Batter),
		Bowler:     rd.Bowler,
		NonStriker: rd.NonStriker,
	}
	if rd.Runs != nil {
		in.HasRuns = true
		in.RunsBatsman = rd.Runs.Batsman
		if in.RunsBatsman == nil {
			in.RunsBatsman = rd.Runs.Batter
		}
		in.RunsExtras = rd.Runs.Extras
		in.RunsTotal = rd.Runs.Total
	}

	w := rd.Wicket
	if w == nil && len(rd.Wickets) > 0 {
		w = &rd.Wickets[0]
	}
	if w != nil {
		in.Wicket = &model.Wicket{PlayerOut: w.PlayerOut, Kind: w.Kind, Fielders: w.Fielders}
	}
	if rd.Extras != nil {
		in.Extras = &model.Extras{
			Wides:   rd.Extras.Wides,
			NoBalls: rd.Extras.NoBalls,
			Byes:    rd.Extras.Byes,
			LegByes: rd.Extras.LegByes,
			Penalty: rd.Extras.Penalty,
		}
	}
	return model.NewDelivery(in)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
