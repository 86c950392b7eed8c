// Package dynamics scores how a game was played rather than how it ended:
// dominance of advantageous positions and resilience under pressure.
package dynamics

import (
	"math"

	"github.com/arbiterhq/arbiter/internal/domain/quality"
	"github.com/arbiterhq/arbiter/internal/domain/score"
)

// Dominance weights and caps.
const (
	aheadWeight       = 0.6
	streakBonusCap    = 20.0
	streakMoveCap     = 10.0
	magnitudeBonusCap = 20.0
	magnitudeCPCap    = 300.0
)

// Resilience weights.
const (
	defensePoints   = 50.0
	composurePoints = 50.0
	composureDiv    = 4.0
)

// Dominance scores one side 0-100 over the evaluated positions of a game:
// how often it was clearly ahead, for how long consecutively, and by how
// much. advantageCP is the "clearly ahead" boundary. A streak breaks the
// moment the position is no longer clearly advantageous, including when it
// is merely balanced.
func Dominance(ge *quality.GameEvaluation, side score.Side, advantageCP int) float64 {
	if len(ge.Moves) == 0 {
		return 0
	}

	ahead := 0
	streak, longest := 0, 0
	aheadMagnitude := 0

	for _, mv := range ge.Moves {
		adv := score.Pov(mv.EvalAfter, side)
		if adv > advantageCP {
			ahead++
			aheadMagnitude += adv
			streak++
			if streak > longest {
				longest = streak
			}
		} else {
			streak = 0
		}
	}

	pctAhead := float64(ahead) / float64(len(ge.Moves)) * 100

	streakBonus := math.Min(streakBonusCap, float64(longest)/streakMoveCap*streakBonusCap)

	magnitudeBonus := 0.0
	if ahead > 0 {
		avgAdv := float64(aheadMagnitude) / float64(ahead)
		magnitudeBonus = math.Min(magnitudeBonusCap, avgAdv/magnitudeCPCap*magnitudeBonusCap)
	}

	return math.Min(100, aheadWeight*pctAhead+streakBonus+magnitudeBonus)
}

// Resilience scores one side 0-100 over the moves it made while already
// standing at or below pressureCP from its own perspective: the share of
// those moves that avoided a collapse (CPL of collapseCPL or more) earns up
// to 50 points, and low average loss under pressure earns up to 50 more. A
// side never under pressure scores the full 100: absence of adversity
// counts as perfect resilience.
func Resilience(ge *quality.GameEvaluation, side score.Side, pressureCP, collapseCPL int) float64 {
	pressured := 0
	collapses := 0
	pressuredCPL := 0

	for _, mv := range ge.Moves {
		if mv.Side() != side {
			continue
		}
		if score.Pov(mv.EvalBefore, side) > pressureCP {
			continue
		}
		pressured++
		pressuredCPL += mv.CPL
		if mv.CPL >= collapseCPL {
			collapses++
		}
	}

	if pressured == 0 {
		return 100.0
	}

	defenseRate := float64(pressured-collapses) / float64(pressured)
	avgCPL := float64(pressuredCPL) / float64(pressured)
	composure := math.Max(0, composurePoints-avgCPL/composureDiv)

	return math.Min(100, defenseRate*defensePoints+composure)
}
