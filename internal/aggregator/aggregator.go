package aggregator

import (
	"math"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/pable/go-cricket-prs/internal/model"
)

// PRS scale: a weighted average delivery score of 0 sits at PRSCenter and
// each point of average score moves the rating by PRSScale. The mapping is
// a fixed affine scale, not calibrated against historical data.
const (
	PRSCenter = 50.0
	PRSScale  = 10.0
	PRSMin    = 0.0
	PRSMax    = 100.0
)

// Accumulator holds one player's append-only scoring series.
type Accumulator struct {
	mu             sync.Mutex
	battingScores  []float64
	battingWeights []float64
	bowlingScores  []float64
	bowlingWeights []float64
}

// AddBatting appends one batting entry.
func (a *Accumulator) AddBatting(score, weight float64) {
	a.mu.Lock()
	a.battingScores = append(a.battingScores, score)
	a.battingWeights = append(a.battingWeights, weight)
	a.mu.Unlock()
}

// AddBowling appends one bowling entry.
func (a *Accumulator) AddBowling(score, weight float64) {
	a.mu.Lock()
	a.bowlingScores = append(a.bowlingScores, score)
	a.bowlingWeights = append(a.bowlingWeights, weight)
	a.mu.Unlock()
}

// series returns copies of the four series.
func (a *Accumulator) series() (bs, bw, ws, ww []float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]float64(nil), a.battingScores...),
		append([]float64(nil), a.battingWeights...),
		append([]float64(nil), a.bowlingScores...),
		append([]float64(nil), a.bowlingWeights...)
}

// Result reduces the accumulator to a PRSResult.
func (a *Accumulator) Result() model.PRSResult {
	bs, bw, ws, ww := a.series()
	return model.PRSResult{
		BattingPRS:        Reduce(bs, bw),
		BowlingPRS:        Reduce(ws, ww),
		BattingDeliveries: len(bs),
		BowlingDeliveries: len(ws),
		TotalDeliveries:   len(bs) + len(ws),
	}
}

// Store owns every player's accumulator for one analysis run. It is safe for
// concurrent use: the player map has its own lock and each accumulator
// guards its series.
type Store struct {
	mu      sync.RWMutex
	players map[string]*Accumulator
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{players: make(map[string]*Accumulator)}
}

// GetOrCreate returns the accumulator for id, creating an empty one on first
// reference.
func (s *Store) GetOrCreate(id string) *Accumulator {
	s.mu.RLock()
	acc, ok := s.players[id]
	s.mu.RUnlock()
	if ok {
		return acc
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if acc, ok := s.players[id]; ok {
		return acc
	}
	acc = &Accumulator{}
	s.players[id] = acc
	return acc
}

// Get returns the accumulator for id, if any.
func (s *Store) Get(id string) (*Accumulator, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.players[id]
	return acc, ok
}

// Record adds one delivery's scores: the batting score to the striker and
// the bowling score to the bowler, both at the delivery's pressure weight.
func (s *Store) Record(batsman, bowler string, battingScore, bowlingScore, weight float64) {
	s.GetOrCreate(batsman).AddBatting(battingScore, weight)
	s.GetOrCreate(bowler).AddBowling(bowlingScore, weight)
}

// Players returns the sorted player ids.
func (s *Store) Players() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.players))
	for id := range s.players {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of players seen.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.players)
}

// FinalScores reduces every player's series. It does not mutate the store,
// so repeated calls return equal maps.
func (s *Store) FinalScores() map[string]model.PRSResult {
	out := make(map[string]model.PRSResult)
	for _, id := range s.Players() {
		acc, _ := s.Get(id)
		out[id] = acc.Result()
	}
	return out
}

// TotalEntries returns the number of batting plus bowling entries recorded.
func (s *Store) TotalEntries() int {
	total := 0
	for _, r := range s.FinalScores() {
		total += r.TotalDeliveries
	}
	return total
}

// Merge appends every series of other onto s, player by player in sorted
// order. other is left unchanged.
func (s *Store) Merge(other *Store) {
	if other == nil || other == s {
		return
	}
	for _, id := range other.Players() {
		src, _ := other.Get(id)
		bs, bw, ws, ww := src.series()
		dst := s.GetOrCreate(id)
		dst.mu.Lock()
		dst.battingScores = append(dst.battingScores, bs...)
		dst.battingWeights = append(dst.battingWeights, bw...)
		dst.bowlingScores = append(dst.bowlingScores, ws...)
		dst.bowlingWeights = append(dst.bowlingWeights, ww...)
		dst.mu.Unlock()
	}
}

// Reduce maps a score series and its pressure weights to a PRS in [0,100],
// rounded to one decimal. An empty series, or one whose weights sum to
// zero, reduces to 0.
func Reduce(scores, weights []float64) float64 {
	if len(scores) == 0 {
		return 0.0
	}
	var weighted, totalWeight float64
	for i, s := range scores {
		if i >= len(weights) {
			break
		}
		weighted += s * weights[i]
		totalWeight += weights[i]
	}
	if totalWeight == 0 {
		return 0.0
	}
	avg := weighted / totalWeight
	prs := math.Max(PRSMin, math.Min(PRSMax, PRSCenter+avg*PRSScale))
	return round(prs, 1)
}

// round rounds v half-to-even on its exact binary value, so ties only occur
// when v is exactly representable.
func round(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloatWithExponent(v, -40).RoundBank(places).Float64()
	return f
}

// round2 rounds to two decimals for summaries.
func round2(v float64) float64 {
	return round(v, 2)
}

// DisciplineSummary describes one player's batting or bowling series.
type DisciplineSummary struct {
	Deliveries      int     `json:"deliveries"`
	AverageScore    float64 `json:"average_score"`
	WeightedAverage float64 `json:"weighted_average"`
	Best            float64 `json:"best_performance"`
	Worst           float64 `json:"worst_performance"`
	AveragePressure float64 `json:"average_pressure"`
}

// PlayerSummary pairs a player's batting and bowling summaries.
type PlayerSummary struct {
	Player  string            `json:"player"`
	Batting DisciplineSummary `json:"batting"`
	Bowling DisciplineSummary `json:"bowling"`
}

// Summary returns per-discipline statistics for id, rounded to two
// decimals. The bool is false when the player was never recorded.
func (s *Store) Summary(id string) (PlayerSummary, bool) {
	acc, ok := s.Get(id)
	if !ok {
		return PlayerSummary{}, false
	}
	bs, bw, ws, ww := acc.series()
	return PlayerSummary{
		Player:  id,
		Batting: summarize(bs, bw),
		Bowling: summarize(ws, ww),
	}, true
}

func summarize(scores, weights []float64) DisciplineSummary {
	if len(scores) == 0 {
		return DisciplineSummary{}
	}
	var sum, weighted, totalWeight float64
	best, worst := scores[0], scores[0]
	for i, v := range scores {
		sum += v
		best = math.Max(best, v)
		worst = math.Min(worst, v)
		if i < len(weights) {
			weighted += v * weights[i]
			totalWeight += weights[i]
		}
	}
	out := DisciplineSummary{
		Deliveries:   len(scores),
		AverageScore: round2(sum / float64(len(scores))),
		Best:         round2(best),
		Worst:        round2(worst),
	}
	if totalWeight != 0 {
		out.WeightedAverage = round2(weighted / totalWeight)
	}
	if len(weights) > 0 {
		out.AveragePressure = round2(totalWeight / float64(len(weights)))
	}
	return out
}
