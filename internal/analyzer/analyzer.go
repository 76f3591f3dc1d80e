// Package analyzer drives the PRS pipeline: it replays each innings through
// the tracker, classifier and scorer, records the scores in an aggregator
// store and reports every unit it had to skip.
package analyzer

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/pable/go-cricket-prs/internal/aggregator"
	"github.com/pable/go-cricket-prs/internal/model"
	"github.com/pable/go-cricket-prs/internal/parser"
	"github.com/pable/go-cricket-prs/internal/pressure"
	"github.com/pable/go-cricket-prs/internal/scorer"
	"github.com/pable/go-cricket-prs/internal/tracker"
)

// Target modes.
const (
	// TargetChase sets the second innings target to the first innings total
	// plus one, unless the match file states a target.
	TargetChase = "chase"
	// TargetNone never supplies a target, so run-rate pressure stays at its
	// no-target value.
	TargetNone = "none"
)

// Options controls one analysis run.
type Options struct {
	TargetMode       string
	CreditAllWickets bool
	Resilient        bool
	Workers          int
	DefaultOvers     int
	BallsPerOver     int
}

// DefaultOptions returns the built-in policy.
func DefaultOptions() Options {
	return Options{
		TargetMode:       TargetChase,
		CreditAllWickets: true,
		Workers:          4,
		DefaultOvers:     model.DefaultOvers,
		BallsPerOver:     model.DefaultBallsPerOver,
	}
}

// Analyzer accumulates scores for one run. ProcessMatch and RecordDelivery
// write to its store directly; Run shards per innings and merges.
type Analyzer struct {
	opts   Options
	scorer scorer.Scorer
	store  *aggregator.Store
	log    *logrus.Entry
	report Report

	// parse loads one match file. Tests replace it.
	parse func(path string) (*model.Match, error)
}

// New creates an analyzer. A nil log discards output.
func New(opts Options, log *logrus.Entry) *Analyzer {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = logrus.NewEntry(l)
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	a := &Analyzer{
		opts:   opts,
		scorer: scorer.Scorer{CreditAllWickets: opts.CreditAllWickets},
		store:  aggregator.NewStore(),
		log:    log,
	}
	popts := parser.Options{
		Resilient:    opts.Resilient,
		DefaultOvers: opts.DefaultOvers,
		BallsPerOver: opts.BallsPerOver,
		Log:          log,
	}
	a.parse = func(path string) (*model.Match, error) {
		return parser.ParseFile(path, popts)
	}
	return a
}

// Store returns the run's aggregator.
func (a *Analyzer) Store() *aggregator.Store { return a.store }

// Report returns the run report so far.
func (a *Analyzer) Report() Report {
	r := a.report
	r.Matches = append([]MatchReport(nil), a.report.Matches...)
	r.Skips = append([]Skip(nil), a.report.Skips...)
	r.Players = a.store.Len()
	return r
}

// RecordDelivery scores d in context c and records both scores in dst.
// It returns the pressure context so callers can report on it.
func (a *Analyzer) RecordDelivery(dst *aggregator.Store, d model.Delivery, c tracker.MatchContext) model.PressureContext {
	pc := pressure.Classify(d, c)
	bat := a.scorer.Batting(d, pc)
	bowl := a.scorer.Bowling(d, pc)
	dst.Record(d.Batsman, d.Bowler, bat, bowl, pc.Weight)
	return pc
}

// ProcessMatch replays every innings of m into the analyzer's store and
// adds the outcome to the run report.
func (a *Analyzer) ProcessMatch(m *model.Match) MatchReport {
	shards, mr := a.replayMatch(m)
	for _, s := range shards {
		a.store.Merge(s)
	}
	a.report.add(mr)
	return mr
}

// Run parses and replays the match files at sources. Files are processed
// concurrently, bounded by Options.Workers, and merged in input order so the
// result does not depend on scheduling. A file that fails to parse is
// skipped and reported; Run only returns an error when ctx is cancelled.
func (a *Analyzer) Run(ctx context.Context, sources []string) (Report, error) {
	type result struct {
		shards []*aggregator.Store
		report MatchReport
	}
	results := make([]result, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.Workers)
	for i, src := range sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			m, err := a.parse(src)
			if err != nil {
				a.log.WithFields(logrus.Fields{"source": src}).Warnf("skipping match: %v", err)
				results[i].report = MatchReport{Source: src, Err: err}
				return nil
			}
			results[i].shards, results[i].report = a.replayMatch(m)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return a.Report(), fmt.Errorf("analyze: %w", err)
	}

	for _, r := range results {
		for _, s := range r.shards {
			a.store.Merge(s)
		}
		a.report.add(r.report)
	}
	return a.Report(), nil
}

// replayMatch replays each innings into its own shard. Innings rejected in
// strict mode produce no shard.
func (a *Analyzer) replayMatch(m *model.Match) ([]*aggregator.Store, MatchReport) {
	mr := MatchReport{Source: m.Source, Hash: m.Hash, Info: m.Info}
	var shards []*aggregator.Store

	log := a.log.WithFields(logrus.Fields{"source": m.Source})
	for i, inn := range m.Innings {
		var prev *InningsReport
		if i > 0 {
			prev = &mr.Innings[i-1]
		}
		ir := InningsReport{Number: inn.Number, Team: inn.Team, Target: a.targetFor(inn, prev)}
		for _, d := range inn.Dropped {
			ir.Dropped = append(ir.Dropped, d.Error())
		}

		if inn.Err != nil {
			ir.Err = inn.Err
			log.WithFields(logrus.Fields{"innings": inn.Number}).Warnf("skipping innings: %v", inn.Err)
			mr.Innings = append(mr.Innings, ir)
			continue
		}

		shard, runs, dropped, err := a.replayInnings(m.Info, inn, ir.Target)
		for _, d := range dropped {
			ir.Dropped = append(ir.Dropped, d.Error())
		}
		if err != nil {
			ir.Err = err
			log.WithFields(logrus.Fields{"innings": inn.Number}).Warnf("skipping innings: %v", err)
			mr.Innings = append(mr.Innings, ir)
			continue
		}
		ir.Deliveries = len(inn.Deliveries) - len(dropped)
		ir.Runs = runs
		log.WithFields(logrus.Fields{"innings": inn.Number, "deliveries": ir.Deliveries}).Debug("innings replayed")
		shards = append(shards, shard)
		mr.Innings = append(mr.Innings, ir)
	}
	return shards, mr
}

// replayInnings runs one innings through the pipeline. In strict mode the
// first sequence error aborts the innings; in resilient mode the offending
// delivery is dropped and returned. runs counts only replayed deliveries.
func (a *Analyzer) replayInnings(info model.MatchInfo, inn model.Innings, target *int) (*aggregator.Store, int, []error, error) {
	shard := aggregator.NewStore()
	tr := tracker.New(info, inn.Number, target)
	var dropped []error
	runs := 0
	for _, d := range inn.Deliveries {
		c, err := tr.Step(d)
		if err != nil {
			derr := &model.DeliveryError{Innings: inn.Number, Key: d.Key(), Err: err}
			if !a.opts.Resilient {
				return nil, 0, dropped, derr
			}
			dropped = append(dropped, derr)
			continue
		}
		runs += d.Runs.Total
		a.RecordDelivery(shard, d, c)
	}
	return shard, runs, dropped, nil
}

// targetFor returns the chase target for inn. prev is the report of the
// innings before it, nil for the first. A stated target wins; otherwise the
// second innings chases the first innings' replayed total, unless the first
// innings was rejected.
func (a *Analyzer) targetFor(inn model.Innings, prev *InningsReport) *int {
	if a.opts.TargetMode == TargetNone {
		return nil
	}
	if inn.Target != nil {
		v := *inn.Target
		return &v
	}
	if inn.Number != 2 || prev == nil {
		return nil
	}
	if prev.Number != 1 || prev.Err != nil {
		return nil
	}
	v := prev.Runs + 1
	return &v
}
