// Package timeusage summarizes how players spent their clocks: opening
// investment, long thinks and moves played in time pressure. Moves without
// clock data are excluded from every aggregate here.
package timeusage

import (
	"github.com/arbiterhq/arbiter/internal/domain/model"
)

// Config holds the thresholds driving the aggregation.
type Config struct {
	// OpeningMoves bounds the opening phase, in per-player moves.
	OpeningMoves int

	// LongThinkSeconds is the minimum spend that counts as a long think.
	LongThinkSeconds int

	// TimePressureSeconds is the remaining time at or below which a move
	// counts as played under time pressure.
	TimePressureSeconds int
}

// LongThink is a single move the player sank unusual time into.
type LongThink struct {
	MoveNumber int
	SAN        string
	Seconds    int
}

// SideUsage is one player's clock profile for a game.
type SideUsage struct {
	Player       string
	MovesClocked int
	TotalSeconds int
	AvgSeconds   float64

	// OpeningSeconds is the total spend on the opening phase.
	OpeningSeconds int

	LongThinks []LongThink

	// PressureMoves counts moves made with the clock at or below the
	// pressure threshold.
	PressureMoves int
}

// Analyze profiles both players of a game.
func Analyze(g *model.Game, cfg Config) (white, black SideUsage) {
	white.Player = g.Metadata.White
	black.Player = g.Metadata.Black

	for _, mv := range g.Moves {
		side := &black
		if mv.White {
			side = &white
		}

		if mv.TimeSpent != nil {
			spent := *mv.TimeSpent
			side.MovesClocked++
			side.TotalSeconds += spent

			if mv.PlayerMoveNum <= cfg.OpeningMoves {
				side.OpeningSeconds += spent
			}
			if spent >= cfg.LongThinkSeconds {
				side.LongThinks = append(side.LongThinks, LongThink{
					MoveNumber: mv.Number,
					SAN:        mv.SAN,
					Seconds:    spent,
				})
			}
		}

		if mv.ClockRemaining != nil && *mv.ClockRemaining <= cfg.TimePressureSeconds {
			side.PressureMoves++
		}
	}

	white.finish()
	black.finish()
	return white, black
}

func (s *SideUsage) finish() {
	if s.MovesClocked > 0 {
		s.AvgSeconds = float64(s.TotalSeconds) / float64(s.MovesClocked)
	}
}
