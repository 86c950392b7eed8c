package performance_test

import (
	"os"
	"testing"

	"github.com/arbiterhq/arbiter/internal/domain/model"
	"github.com/arbiterhq/arbiter/internal/domain/performance"
	"github.com/arbiterhq/arbiter/internal/domain/quality"
	"github.com/arbiterhq/arbiter/internal/domain/score"
	"github.com/arbiterhq/arbiter/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// ply is a compact fixture move: who moved, the post-move white-perspective
// evaluation and the mover's centipawn loss.
type ply struct {
	white bool
	after int
	cpl   int
}

func evaluation(result string, plies []ply) *quality.GameEvaluation {
	ge := &quality.GameEvaluation{
		GameID:   "Alice vs Bob R1",
		Metadata: model.Metadata{White: "Alice", Black: "Bob", Round: "1", Result: result},
		White:    quality.SideSummary{Player: "Alice"},
		Black:    quality.SideSummary{Player: "Bob"},
	}
	before := 0
	num := map[bool]int{}
	for _, p := range plies {
		num[p.white]++
		ge.Moves = append(ge.Moves, quality.MoveEvaluation{
			Number:        (len(ge.Moves) + 2) / 2,
			White:         p.white,
			PlayerMoveNum: num[p.white],
			EvalBefore:    before,
			EvalAfter:     p.after,
			CPL:           p.cpl,
			Quality:       score.Classify(p.cpl),
		})
		if p.after > ge.MaxEval {
			ge.MaxEval = p.after
		}
		if p.after < ge.MinEval {
			ge.MinEval = p.after
		}
		before = p.after
	}
	return ge
}

func TestComebacks(t *testing.T) {
	Convey("Given a drawn game where White stood at -250", t, func() {
		ge := evaluation(model.ResultDraw, []ply{
			{white: true, after: -100},
			{white: false, after: -250},
			{white: true, after: -180},
			{white: false, after: -90},
			{white: true, after: -10},
		})

		records := performance.Comebacks(ge, 200)

		Convey("White earns a comeback with recovery moves counted after the low point", func() {
			So(len(records), ShouldEqual, 1)
			r := records[0]
			So(r.Player, ShouldEqual, "Alice")
			So(r.Side, ShouldEqual, score.White)
			So(r.WorstEval, ShouldEqual, -250)
			So(r.FinalResult, ShouldEqual, model.ResultDraw)
			So(r.RecoveryMoves, ShouldEqual, 2)
		})

		Convey("The same swing is a blown lead for Black", func() {
			leads := performance.BlownLeads(ge, 200)
			So(len(leads), ShouldEqual, 1)
			l := leads[0]
			So(l.Player, ShouldEqual, "Bob")
			So(l.Side, ShouldEqual, score.Black)
			So(l.BestEval, ShouldEqual, -250)
			So(l.MovesAfterPeak, ShouldEqual, 2)
		})
	})

	Convey("Given a game White actually lost from -250", t, func() {
		ge := evaluation(model.ResultBlackWins, []ply{
			{white: true, after: -250},
			{white: false, after: -400},
		})

		Convey("No comeback is recorded for White", func() {
			records := performance.Comebacks(ge, 200)
			So(len(records), ShouldEqual, 0)
		})
	})

	Convey("Given a game that never left the threshold band", t, func() {
		ge := evaluation(model.ResultDraw, []ply{
			{white: true, after: 60},
			{white: false, after: -120},
			{white: true, after: 30},
		})

		So(performance.Comebacks(ge, 200), ShouldBeEmpty)
		So(performance.BlownLeads(ge, 200), ShouldBeEmpty)
	})

	Convey("Given an extremum value that recurs later in the game", t, func() {
		ge := evaluation(model.ResultDraw, []ply{
			{white: true, after: -250},
			{white: false, after: -120},
			{white: true, after: -250},
			{white: false, after: -60},
			{white: true, after: 0},
		})

		Convey("The first occurrence anchors the recovery count", func() {
			records := performance.Comebacks(ge, 200)
			So(len(records), ShouldEqual, 1)
			// White moved at indices 2 and 4 after the first -250.
			So(records[0].RecoveryMoves, ShouldEqual, 2)
		})
	})

	Convey("Given a decisive swing both ways", t, func() {
		ge := evaluation(model.ResultWhiteWins, []ply{
			{white: true, after: 300},
			{white: false, after: -220},
			{white: true, after: 150},
			{white: false, after: 500},
		})

		Convey("White's win cancels its comeback but Black gets one checked", func() {
			records := performance.Comebacks(ge, 200)
			// White reached -220 but won anyway: comeback for White.
			// Black faced +300 and +500 and lost: no comeback.
			So(len(records), ShouldEqual, 1)
			So(records[0].Side, ShouldEqual, score.White)
		})

		Convey("Black blew the -220 lead", func() {
			leads := performance.BlownLeads(ge, 200)
			So(len(leads), ShouldEqual, 1)
			So(leads[0].Side, ShouldEqual, score.Black)
			So(leads[0].BestEval, ShouldEqual, -220)
		})
	})
}

func TestAggregator(t *testing.T) {
	Convey("Given two games folded into player aggregates", t, func() {
		g1 := evaluation(model.ResultWhiteWins, []ply{
			{white: true, after: 50, cpl: 10},
			{white: false, after: 40, cpl: 30},
			{white: true, after: 120, cpl: 0},
			{white: false, after: -80, cpl: 210},
		})
		g1.White.MovesRated, g1.White.TotalCPL = 2, 10
		g1.Black.MovesRated, g1.Black.TotalCPL = 2, 240
		g1.Black.Blunders = 1

		quick, deep := 60, 1000
		g1.Moves[0].TimeSpent = &quick
		g1.Moves[2].TimeSpent = &deep

		g2 := evaluation(model.ResultDraw, []ply{
			{white: true, after: 0, cpl: 40},
			{white: false, after: 10, cpl: 5},
		})
		g2.White.MovesRated, g2.White.TotalCPL = 1, 40
		g2.White.Inaccuracies = 1
		g2.Black.MovesRated, g2.Black.TotalCPL = 1, 5

		agg := performance.NewAggregator()
		agg.Add(g1)
		agg.Add(g2)
		players := agg.Players()

		Convey("Both players appear, best accuracy first", func() {
			So(len(players), ShouldEqual, 2)
			So(players[0].Player, ShouldEqual, "Alice")
			So(players[0].Accuracy, ShouldBeGreaterThan, players[1].Accuracy)
		})

		Convey("Counts accumulate across games", func() {
			alice := players[0]
			So(alice.Games, ShouldEqual, 2)
			So(alice.MovesRated, ShouldEqual, 3)
			So(alice.TotalCPL, ShouldEqual, 50)
			So(alice.AvgCPL, ShouldAlmostEqual, 50.0/3.0, 0.0001)
			So(alice.Inaccuracies, ShouldEqual, 1)

			bob := players[1]
			So(bob.Blunders, ShouldEqual, 1)
			So(bob.TotalCPL, ShouldEqual, 245)
		})

		Convey("Clocked moves land in their think-time buckets", func() {
			alice := players[0]
			So(alice.Buckets[performance.BucketQuick].Moves, ShouldEqual, 1)
			So(alice.Buckets[performance.BucketQuick].TotalCPL, ShouldEqual, 10)
			So(alice.Buckets[performance.BucketDeep].Moves, ShouldEqual, 1)
			So(alice.Buckets[performance.BucketNormal].Moves, ShouldEqual, 0)

			// Bob's moves carried no clock data.
			bob := players[1]
			So(bob.Buckets[performance.BucketQuick].Moves, ShouldEqual, 0)
		})
	})
}
