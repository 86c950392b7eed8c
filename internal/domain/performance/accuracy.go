package performance

import (
	"sort"

	"github.com/arbiterhq/arbiter/internal/domain/quality"
	"github.com/arbiterhq/arbiter/internal/domain/score"
)

// ThinkBucket partitions rated moves by the time invested in them.
type ThinkBucket int

const (
	// BucketQuick: under five minutes.
	BucketQuick ThinkBucket = iota
	// BucketNormal: five to fifteen minutes.
	BucketNormal
	// BucketDeep: over fifteen minutes.
	BucketDeep

	bucketCount
)

const (
	quickThinkSeconds = 300
	deepThinkSeconds  = 900
)

func (b ThinkBucket) String() string {
	switch b {
	case BucketQuick:
		return "quick"
	case BucketNormal:
		return "normal"
	default:
		return "deep"
	}
}

// bucketFor classifies one move's think time.
func bucketFor(seconds int) ThinkBucket {
	switch {
	case seconds < quickThinkSeconds:
		return BucketQuick
	case seconds <= deepThinkSeconds:
		return BucketNormal
	default:
		return BucketDeep
	}
}

// BucketStats aggregates CPL over one think-time bucket.
type BucketStats struct {
	Moves    int
	TotalCPL int
	AvgCPL   float64
	Accuracy float64
}

// PlayerStats aggregates one player's rated moves across a batch of games.
type PlayerStats struct {
	Player     string
	Games      int
	MovesRated int
	TotalCPL   int
	AvgCPL     float64
	Accuracy   float64

	Inaccuracies int
	Mistakes     int
	Blunders     int

	// Buckets covers only moves that carried clock data.
	Buckets [bucketCount]BucketStats
}

// Aggregator folds game evaluations into per-player statistics.
type Aggregator struct {
	players map[string]*PlayerStats
}

// NewAggregator returns an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{players: make(map[string]*PlayerStats)}
}

// Add folds one game into the aggregates for both players.
func (a *Aggregator) Add(ge *quality.GameEvaluation) {
	a.addSide(ge, score.White)
	a.addSide(ge, score.Black)
}

func (a *Aggregator) addSide(ge *quality.GameEvaluation, side score.Side) {
	sum := ge.Summary(side)
	if sum.Player == "" {
		return
	}

	ps, ok := a.players[sum.Player]
	if !ok {
		ps = &PlayerStats{Player: sum.Player}
		a.players[sum.Player] = ps
	}

	ps.Games++
	ps.MovesRated += sum.MovesRated
	ps.TotalCPL += sum.TotalCPL
	ps.Inaccuracies += sum.Inaccuracies
	ps.Mistakes += sum.Mistakes
	ps.Blunders += sum.Blunders

	for _, mv := range ge.Moves {
		if mv.Side() != side || mv.TimeSpent == nil {
			continue
		}
		b := &ps.Buckets[bucketFor(*mv.TimeSpent)]
		b.Moves++
		b.TotalCPL += mv.CPL
	}
}

// Players returns the finished per-player statistics, best accuracy first.
func (a *Aggregator) Players() []*PlayerStats {
	out := make([]*PlayerStats, 0, len(a.players))
	for _, ps := range a.players {
		ps.finish()
		out = append(out, ps)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Accuracy != out[j].Accuracy {
			return out[i].Accuracy > out[j].Accuracy
		}
		return out[i].Player < out[j].Player
	})
	return out
}

func (ps *PlayerStats) finish() {
	if ps.MovesRated > 0 {
		ps.AvgCPL = float64(ps.TotalCPL) / float64(ps.MovesRated)
		ps.Accuracy = score.Accuracy(ps.AvgCPL)
	} else {
		ps.Accuracy = 100.0
	}
	for i := range ps.Buckets {
		b := &ps.Buckets[i]
		if b.Moves == 0 {
			continue
		}
		b.AvgCPL = float64(b.TotalCPL) / float64(b.Moves)
		b.Accuracy = score.Accuracy(b.AvgCPL)
	}
}
