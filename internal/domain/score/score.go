// Package score holds the evaluation arithmetic shared by every analysis:
// the tagged engine score, perspective normalization, centipawn loss and
// the accuracy curve.
package score

import "math"

// Side identifies the player a value is projected for.
type Side int

const (
	White Side = iota
	Black
)

func (s Side) String() string {
	if s == White {
		return "white"
	}
	return "black"
}

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == White {
		return Black
	}
	return White
}

// MateValue anchors the flattened encoding of forced mates: a mate in N
// plies flattens to ±(MateValue − N), so faster mates are more extreme and
// the two sides' mate ranges never overlap.
const MateValue = 10000

// Score is a white-perspective engine evaluation: either plain centipawns
// or a forced mate. Arithmetic goes through Cp, which flattens mates; the
// tagged form exists so mate information survives until the cache boundary.
type Score struct {
	cp    int
	mate  bool
	plies int // signed ply count; positive means White mates
}

// Centipawns builds a plain centipawn score.
func Centipawns(cp int) Score { return Score{cp: cp} }

// MateIn builds a forced-mate score. plies is signed: positive for a mate
// delivered by White, negative for one delivered by Black.
func MateIn(plies int) Score { return Score{mate: true, plies: plies} }

// IsMate reports whether the score is a forced mate.
func (s Score) IsMate() bool { return s.mate }

// MatePlies returns the signed ply count to mate; zero for non-mate scores.
func (s Score) MatePlies() int {
	if !s.mate {
		return 0
	}
	return s.plies
}

// Cp returns the flattened white-perspective centipawn value.
func (s Score) Cp() int {
	if !s.mate {
		return s.cp
	}
	if s.plies > 0 {
		return MateValue - s.plies
	}
	return -MateValue - s.plies
}

// Pov projects the score onto a side's own perspective.
func (s Score) Pov(side Side) int { return Pov(s.Cp(), side) }

// Pov projects a white-perspective centipawn value onto a side's own
// perspective: positive is always good for that side.
func Pov(whiteCP int, side Side) int {
	if side == White {
		return whiteCP
	}
	return -whiteCP
}

// Loss computes the mover's centipawn loss between the evaluation before
// and after their move. A move can never score better than the best line,
// so the result is clamped at zero.
func Loss(before, after Score, mover Side) int {
	loss := Pov(before.Cp(), mover) - Pov(after.Cp(), mover)
	if loss < 0 {
		return 0
	}
	return loss
}

// Quality classifies a move by its centipawn loss.
type Quality int

const (
	Good Quality = iota
	Inaccuracy
	Mistake
	Blunder
)

// Classification boundaries in centipawns of loss.
const (
	inaccuracyCPL = 20
	mistakeCPL    = 50
	blunderCPL    = 200
)

// Classify maps a centipawn loss onto a Quality.
func Classify(cpl int) Quality {
	switch {
	case cpl > blunderCPL:
		return Blunder
	case cpl > mistakeCPL:
		return Mistake
	case cpl > inaccuracyCPL:
		return Inaccuracy
	default:
		return Good
	}
}

func (q Quality) String() string {
	switch q {
	case Blunder:
		return "blunder"
	case Mistake:
		return "mistake"
	case Inaccuracy:
		return "inaccuracy"
	default:
		return "good"
	}
}

// Accuracy curve coefficients (lichess-style exponential decay).
const (
	accuracyScale  = 103.1668
	accuracyDecay  = 0.04354
	accuracyOffset = 3.1669
)

// Accuracy converts an average centipawn loss into a 0-100 accuracy
// percentage. Negative averages cannot occur from clamped losses but map
// to a perfect score anyway.
func Accuracy(avgCPL float64) float64 {
	if avgCPL < 0 {
		return 100.0
	}
	acc := accuracyScale*math.Exp(-accuracyDecay*(avgCPL-1)) - accuracyOffset
	return math.Max(0, math.Min(100, acc))
}
