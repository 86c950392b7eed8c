// Package quality turns a parsed game into a per-move evaluation record:
// centipawn loss, quality classification, running extrema and per-side
// accuracy.
package quality

import (
	"context"
	"fmt"

	"github.com/arbiterhq/arbiter/internal/domain/model"
	"github.com/arbiterhq/arbiter/internal/domain/score"
	"github.com/arbiterhq/arbiter/pkg/logger"
	"github.com/arbiterhq/arbiter/pkg/metrics"
)

// Evaluator supplies white-perspective evaluations for positions. The
// engine adapter satisfies it behind its cache.
type Evaluator interface {
	Evaluate(ctx context.Context, fen string) (score.Score, error)
}

// MoveEvaluation is one analyzed half-move. Evaluations are flattened
// white-perspective centipawns.
type MoveEvaluation struct {
	Number        int
	White         bool
	PlayerMoveNum int
	SAN           string

	EvalBefore int
	EvalAfter  int
	CPL        int
	Quality    score.Quality

	// TimeSpent mirrors the parsed move's clock data; nil when absent.
	TimeSpent *int
}

// Side returns the mover.
func (m MoveEvaluation) Side() score.Side {
	if m.White {
		return score.White
	}
	return score.Black
}

// SideSummary aggregates one player's rated moves in a game.
type SideSummary struct {
	Player       string
	MovesRated   int
	TotalCPL     int
	AvgCPL       float64
	Accuracy     float64
	Inaccuracies int
	Mistakes     int
	Blunders     int
}

// GameEvaluation is the complete analysis of one game.
type GameEvaluation struct {
	GameID   string
	Metadata model.Metadata
	Moves    []MoveEvaluation

	White SideSummary
	Black SideSummary

	// MaxEval and MinEval are the extrema of the post-move white-
	// perspective evaluation, tracked incrementally and seeded at zero:
	// the game starts balanced.
	MaxEval int
	MinEval int
}

// Analyzer evaluates games move by move.
type Analyzer struct {
	evaluator   Evaluator
	skipOpening int
	log         logger.Logger
}

// NewAnalyzer builds an Analyzer. skipOpening is the per-player opening
// prefix excluded from engine analysis; theory moves say nothing about the
// players.
func NewAnalyzer(evaluator Evaluator, skipOpening int, opts ...Option) *Analyzer {
	a := &Analyzer{
		evaluator:   evaluator,
		skipOpening: skipOpening,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.log == nil {
		a.log = logger.Named("quality")
	}
	return a
}

// Analyze evaluates every non-opening move of the game. Evaluation errors
// abort immediately: a partially engine-evaluated record is worse than a
// loud failure.
func (a *Analyzer) Analyze(ctx context.Context, g *model.Game) (*GameEvaluation, error) {
	ge := &GameEvaluation{
		GameID:   g.ID(),
		Metadata: g.Metadata,
		White:    SideSummary{Player: g.Metadata.White},
		Black:    SideSummary{Player: g.Metadata.Black},
	}

	for _, mv := range g.Moves {
		if mv.PlayerMoveNum <= a.skipOpening {
			continue
		}

		before, err := a.evaluator.Evaluate(ctx, mv.FENBefore)
		if err != nil {
			return nil, fmt.Errorf("evaluating before move %d: %w", mv.Number, err)
		}
		after, err := a.evaluator.Evaluate(ctx, mv.FENAfter)
		if err != nil {
			return nil, fmt.Errorf("evaluating after move %d: %w", mv.Number, err)
		}

		mover := score.Black
		if mv.White {
			mover = score.White
		}
		cpl := score.Loss(before, after, mover)

		me := MoveEvaluation{
			Number:        mv.Number,
			White:         mv.White,
			PlayerMoveNum: mv.PlayerMoveNum,
			SAN:           mv.SAN,
			EvalBefore:    before.Cp(),
			EvalAfter:     after.Cp(),
			CPL:           cpl,
			Quality:       score.Classify(cpl),
			TimeSpent:     mv.TimeSpent,
		}
		ge.Moves = append(ge.Moves, me)

		if me.EvalAfter > ge.MaxEval {
			ge.MaxEval = me.EvalAfter
		}
		if me.EvalAfter < ge.MinEval {
			ge.MinEval = me.EvalAfter
		}

		side := ge.side(mover)
		side.MovesRated++
		side.TotalCPL += cpl
		switch me.Quality {
		case score.Inaccuracy:
			side.Inaccuracies++
		case score.Mistake:
			side.Mistakes++
		case score.Blunder:
			side.Blunders++
		}

		metrics.RecordMoveAnalyzed()
	}

	ge.White.finish()
	ge.Black.finish()

	a.log.Debug(ctx, "game analyzed",
		logger.String("game", ge.GameID),
		logger.Int("moves_rated", ge.White.MovesRated+ge.Black.MovesRated),
		logger.Float64("white_accuracy", ge.White.Accuracy),
		logger.Float64("black_accuracy", ge.Black.Accuracy))
	return ge, nil
}

func (ge *GameEvaluation) side(s score.Side) *SideSummary {
	if s == score.White {
		return &ge.White
	}
	return &ge.Black
}

// Summary returns the aggregate for one side.
func (ge *GameEvaluation) Summary(s score.Side) SideSummary {
	return *ge.side(s)
}

func (s *SideSummary) finish() {
	if s.MovesRated == 0 {
		s.Accuracy = 100.0
		return
	}
	s.AvgCPL = float64(s.TotalCPL) / float64(s.MovesRated)
	s.Accuracy = score.Accuracy(s.AvgCPL)
}
