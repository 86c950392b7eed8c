// Package clock converts raw remaining-time readings into per-move time
// spent under the tournament's time control, and tracks per-player move
// times across a game.
package clock

import (
	"fmt"

	"github.com/arbiterhq/arbiter/internal/domain/score"
)

// IncrementType enumerates the supported time-control families.
type IncrementType string

const (
	// IncrementNone: the clock only counts down.
	IncrementNone IncrementType = "none"

	// IncrementFischer: the increment is added to the clock after every
	// move from the start move on.
	IncrementFischer IncrementType = "fischer"

	// IncrementDelayBonus: a one-time bonus is granted at the start move;
	// a per-move increment may additionally apply.
	IncrementDelayBonus IncrementType = "delay_bonus"
)

// TimeControl is the immutable specification of one time control.
type TimeControl struct {
	// BaseTime is the initial budget in seconds.
	BaseTime int

	IncrementType IncrementType

	// IncrementStartMove is the 1-indexed per-player move number from which
	// the increment (fischer) or the one-time bonus (delay_bonus) applies.
	IncrementStartMove int

	// IncrementSeconds is added to the clock after qualifying moves.
	IncrementSeconds int

	// BonusTime is the one-time grant for delay_bonus controls, e.g. 30
	// minutes at move 40.
	BonusTime int

	// HasIncrementBeforeBonus marks delay_bonus controls whose increment is
	// already active before the bonus move. When false the increment only
	// becomes active for moves strictly after the bonus move.
	HasIncrementBeforeBonus bool
}

// TimeSpent computes the seconds spent on one move from consecutive raw
// clock readings. moveNumber is the 1-indexed move count for the player who
// moved. The result is clamped at zero: increment bookkeeping can push the
// raw delta negative when the recording engine rounds, and a negative
// duration must never propagate.
func (tc TimeControl) TimeSpent(previous, current, moveNumber int) int {
	spent := previous - current

	switch tc.IncrementType {
	case IncrementFischer:
		if moveNumber >= tc.IncrementStartMove {
			spent -= tc.IncrementSeconds
		}
	case IncrementDelayBonus:
		// The bonus itself is granted between the start move and the next
		// one: it inflates the reading after the start move, never the
		// delta attributed to the start move, so no bonus arithmetic
		// happens here.
		switch {
		case moveNumber > tc.IncrementStartMove:
			spent -= tc.IncrementSeconds
		case tc.HasIncrementBeforeBonus:
			spent -= tc.IncrementSeconds
		}
	case IncrementNone:
		// Raw delta is used unmodified.
	}

	if spent < 0 {
		return 0
	}
	return spent
}

// Tracker accumulates per-move times for both players of one game. It must
// be fed readings strictly in playing order, one per move of the given
// side; feeding moves out of order is a programming error and panics.
type Tracker struct {
	control TimeControl

	remaining [2]int
	moveNum   [2]int
	times     [2][]int
}

// NewTracker creates a Tracker with both clocks at the control's base time.
func NewTracker(control TimeControl) *Tracker {
	t := &Tracker{control: control}
	t.remaining[score.White] = control.BaseTime
	t.remaining[score.Black] = control.BaseTime
	return t
}

// Record ingests the reading after the given side's next move and returns
// the derived time spent together with that player's move number.
func (t *Tracker) Record(side score.Side, reading int) (spent, moveNumber int) {
	t.moveNum[side]++
	n := t.moveNum[side]
	spent = t.control.TimeSpent(t.remaining[side], reading, n)
	t.times[side] = append(t.times[side], spent)
	t.remaining[side] = reading
	return spent, n
}

// Total returns the summed time spent by a side so far.
func (t *Tracker) Total(side score.Side) int {
	sum := 0
	for _, v := range t.times[side] {
		sum += v
	}
	return sum
}

// Range returns the summed time a side spent on moves [from, to], both
// 1-indexed and inclusive. Bounds outside the recorded history panic: the
// caller owns move ordering and numbering.
func (t *Tracker) Range(side score.Side, from, to int) int {
	if from < 1 || to < from || to > len(t.times[side]) {
		panic(fmt.Sprintf("clock: move range [%d,%d] outside recorded history of %d moves", from, to, len(t.times[side])))
	}
	sum := 0
	for _, v := range t.times[side][from-1 : to] {
		sum += v
	}
	return sum
}

// Moves returns how many moves have been recorded for a side.
func (t *Tracker) Moves(side score.Side) int { return t.moveNum[side] }
