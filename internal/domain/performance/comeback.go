// Package performance derives game-outcome statistics from completed game
// evaluations: comebacks, blown leads and cross-game player aggregates.
package performance

import (
	"github.com/arbiterhq/arbiter/internal/domain/model"
	"github.com/arbiterhq/arbiter/internal/domain/quality"
	"github.com/arbiterhq/arbiter/internal/domain/score"
)

// ComebackRecord marks a side that stood at a losing evaluation yet did
// not lose. WorstEval is the white-perspective extremum that was reached.
type ComebackRecord struct {
	GameID      string
	Player      string
	Side        score.Side
	WorstEval   int
	FinalResult string

	// RecoveryMoves counts the player's moves strictly after the first
	// move on which the extremum was reached.
	RecoveryMoves int
}

// BlownLeadRecord is the mirror image: a side that stood at a winning
// evaluation yet did not win.
type BlownLeadRecord struct {
	GameID      string
	Player      string
	Side        score.Side
	BestEval    int
	FinalResult string

	// MovesAfterPeak counts the player's moves strictly after the first
	// move on which the peak was reached.
	MovesAfterPeak int
}

// Comebacks inspects both sides of a finished game. A side qualifies when
// the evaluation reached at least thresholdCP against it and the final
// result was not a loss for it.
func Comebacks(ge *quality.GameEvaluation, thresholdCP int) []ComebackRecord {
	var out []ComebackRecord

	if ge.MinEval <= -thresholdCP && ge.Metadata.Result != model.ResultBlackWins {
		out = append(out, ComebackRecord{
			GameID:        ge.GameID,
			Player:        ge.White.Player,
			Side:          score.White,
			WorstEval:     ge.MinEval,
			FinalResult:   ge.Metadata.Result,
			RecoveryMoves: movesAfterExtremum(ge, ge.MinEval, score.White),
		})
	}
	if ge.MaxEval >= thresholdCP && ge.Metadata.Result != model.ResultWhiteWins {
		out = append(out, ComebackRecord{
			GameID:        ge.GameID,
			Player:        ge.Black.Player,
			Side:          score.Black,
			WorstEval:     ge.MaxEval,
			FinalResult:   ge.Metadata.Result,
			RecoveryMoves: movesAfterExtremum(ge, ge.MaxEval, score.Black),
		})
	}
	return out
}

// BlownLeads inspects both sides of a finished game. A side qualifies when
// the evaluation reached at least thresholdCP in its favor and the final
// result was not a win for it.
func BlownLeads(ge *quality.GameEvaluation, thresholdCP int) []BlownLeadRecord {
	var out []BlownLeadRecord

	if ge.MaxEval >= thresholdCP && ge.Metadata.Result != model.ResultWhiteWins {
		out = append(out, BlownLeadRecord{
			GameID:         ge.GameID,
			Player:         ge.White.Player,
			Side:           score.White,
			BestEval:       ge.MaxEval,
			FinalResult:    ge.Metadata.Result,
			MovesAfterPeak: movesAfterExtremum(ge, ge.MaxEval, score.White),
		})
	}
	if ge.MinEval <= -thresholdCP && ge.Metadata.Result != model.ResultBlackWins {
		out = append(out, BlownLeadRecord{
			GameID:         ge.GameID,
			Player:         ge.Black.Player,
			Side:           score.Black,
			BestEval:       ge.MinEval,
			FinalResult:    ge.Metadata.Result,
			MovesAfterPeak: movesAfterExtremum(ge, ge.MinEval, score.Black),
		})
	}
	return out
}

// movesAfterExtremum anchors on the first move whose post-move evaluation
// equals the extremum and counts the side's moves after it. The same value
// can recur later in a game; the earliest occurrence is the anchor, which
// yields the largest defensible move count.
func movesAfterExtremum(ge *quality.GameEvaluation, extremum int, side score.Side) int {
	anchor := -1
	for i, mv := range ge.Moves {
		if mv.EvalAfter == extremum {
			anchor = i
			break
		}
	}
	if anchor < 0 {
		return 0
	}

	count := 0
	for _, mv := range ge.Moves[anchor+1:] {
		if mv.Side() == side {
			count++
		}
	}
	return count
}
