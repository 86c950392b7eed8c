package dynamics_test

import (
	"os"
	"testing"

	"github.com/arbiterhq/arbiter/internal/domain/dynamics"
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

func game(plies ...quality.MoveEvaluation) *quality.GameEvaluation {
	return &quality.GameEvaluation{Moves: plies}
}

func mv(white bool, before, after, cpl int) quality.MoveEvaluation {
	return quality.MoveEvaluation{White: white, EvalBefore: before, EvalAfter: after, CPL: cpl}
}

func TestDominance(t *testing.T) {
	Convey("Given an empty evaluation", t, func() {
		So(dynamics.Dominance(game(), score.White, 50), ShouldEqual, 0)
	})

	Convey("Given a game White controlled throughout", t, func() {
		ge := game(
			mv(true, 0, 120, 0),
			mv(false, 120, 150, 0),
			mv(true, 150, 200, 0),
			mv(false, 200, 180, 0),
		)

		Convey("White scores far above Black", func() {
			white := dynamics.Dominance(ge, score.White, 50)
			black := dynamics.Dominance(ge, score.Black, 50)
			So(white, ShouldBeGreaterThan, 60)
			So(white, ShouldBeLessThanOrEqualTo, 100)
			So(black, ShouldEqual, 0)
		})

		Convey("Every position ahead earns the full percentage weight", func() {
			// 100% ahead -> 60, streak 4/10 -> 8, avg 162.5/300 -> ~10.83.
			So(dynamics.Dominance(ge, score.White, 50), ShouldAlmostEqual, 60+8+162.5/300*20, 0.01)
		})
	})

	Convey("Given advantage interrupted by a balanced position", t, func() {
		ge := game(
			mv(true, 0, 100, 0),
			mv(false, 100, 10, 0),
			mv(true, 10, 100, 0),
		)

		Convey("The streak resets and the longest run is one", func() {
			// 2 of 3 ahead -> 40, longest streak 1 -> 2, avg 100/300 -> ~6.67.
			So(dynamics.Dominance(ge, score.White, 50), ShouldAlmostEqual, 40+2+100.0/300*20, 0.01)
		})
	})

	Convey("Given a crushing advantage, bonuses stay capped", t, func() {
		plies := make([]quality.MoveEvaluation, 0, 30)
		for i := 0; i < 30; i++ {
			plies = append(plies, mv(i%2 == 0, 800, 800, 0))
		}
		d := dynamics.Dominance(game(plies...), score.White, 50)
		// 60 + capped 20 + capped 20.
		So(d, ShouldAlmostEqual, 100, 0.0001)
	})
}

func TestResilience(t *testing.T) {
	Convey("Given a side never under pressure", t, func() {
		ge := game(
			mv(true, 40, 60, 5),
			mv(false, 60, 30, 10),
			mv(true, 30, 80, 0),
		)

		Convey("Resilience is exactly 100 for both", func() {
			So(dynamics.Resilience(ge, score.White, -150, 200), ShouldEqual, 100.0)
			So(dynamics.Resilience(ge, score.Black, -150, 200), ShouldEqual, 100.0)
		})
	})

	Convey("Given White defending a bad position cleanly", t, func() {
		ge := game(
			mv(true, -200, -190, 0),
			mv(false, -190, -210, 0),
			mv(true, -210, -180, 4),
			mv(true, -180, -170, 8),
		)

		Convey("High defense rate and low pressured CPL score near the top", func() {
			r := dynamics.Resilience(ge, score.White, -150, 200)
			// All 3 pressured moves held: 50 + (50 - avg 4 / 4) = 99.
			So(r, ShouldAlmostEqual, 99.0, 0.0001)
		})
	})

	Convey("Given collapses under pressure", t, func() {
		ge := game(
			mv(true, -200, -450, 250),
			mv(true, -450, -460, 10),
		)

		Convey("The collapse halves the defense points and drags composure down", func() {
			r := dynamics.Resilience(ge, score.White, -150, 200)
			// defense 1/2 -> 25; avg CPL 130 -> composure 50-32.5 = 17.5.
			So(r, ShouldAlmostEqual, 42.5, 0.0001)
		})
	})

	Convey("Given a total collapse", t, func() {
		ge := game(
			mv(false, 300, 700, 400),
			mv(false, 700, 900, 300),
		)

		Convey("The score floors at zero composure", func() {
			// Black pressured both moves (pov -300, -700), both collapsed.
			r := dynamics.Resilience(ge, score.Black, -150, 200)
			So(r, ShouldEqual, 0)
		})
	})
}
