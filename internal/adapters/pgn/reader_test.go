package pgn_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"

	"github.com/arbiterhq/arbiter/internal/adapters/pgn"
	"github.com/arbiterhq/arbiter/internal/domain/clock"
	"github.com/arbiterhq/arbiter/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

const samplePGN = `[Event "Test Open"]
[Site "Testville"]
[Date "2024.01.15"]
[Round "3"]
[White "Alice"]
[Black "Bob"]
[Result "1-0"]
[WhiteElo "2400"]
[BlackElo "2350"]
[ECO "C50"]

1. e4 {[%clk 1:59:30]} e5 {[%clk 1:59:45]} 2. Nf3 {[%clk 1:58:50]} Nc6 {[%clk 1:59:10]} 1-0
`

const secondPGN = `[Event "Test Open"]
[Site "Testville"]
[Date "2024.01.16"]
[Round "4"]
[White "Bob"]
[Black "Alice"]
[Result "1/2-1/2"]

1. d4 d5 1/2-1/2
`

func TestParseClock(t *testing.T) {
	Convey("Given move comments", t, func() {
		Convey("Clock tags parse to seconds", func() {
			s, ok := pgn.ParseClock("[%clk 1:55:21]")
			So(ok, ShouldBeTrue)
			So(s, ShouldEqual, 6921)

			s, ok = pgn.ParseClock("some text [%clk 0:02:05] more")
			So(ok, ShouldBeTrue)
			So(s, ShouldEqual, 125)
		})

		Convey("Fractional seconds are truncated", func() {
			s, ok := pgn.ParseClock("[%clk 0:00:59.7]")
			So(ok, ShouldBeTrue)
			So(s, ShouldEqual, 59)
		})

		Convey("Comments without a clock tag report absence", func() {
			_, ok := pgn.ParseClock("a fine positional move")
			So(ok, ShouldBeFalse)
			_, ok = pgn.ParseClock("")
			So(ok, ShouldBeFalse)
		})
	})
}

func TestReader(t *testing.T) {
	ctx := context.Background()
	control := clock.TimeControl{BaseTime: 7200, IncrementType: clock.IncrementNone}

	Convey("Given a plain PGN file with clock comments", t, func() {
		path := filepath.Join(t.TempDir(), "games.pgn")
		So(os.WriteFile(path, []byte(samplePGN+"\n"+secondPGN), 0o644), ShouldBeNil)

		r, err := pgn.Open(path, control)
		So(err, ShouldBeNil)
		defer r.Close()

		g, err := r.Next(ctx)
		So(err, ShouldBeNil)

		Convey("Headers land in the metadata", func() {
			So(g.Metadata.White, ShouldEqual, "Alice")
			So(g.Metadata.Black, ShouldEqual, "Bob")
			So(g.Metadata.Round, ShouldEqual, "3")
			So(g.Metadata.Result, ShouldEqual, "1-0")
			So(g.Metadata.WhiteElo, ShouldEqual, 2400)
			So(g.Metadata.BlackElo, ShouldEqual, 2350)
			So(g.Metadata.ECO, ShouldEqual, "C50")
			So(g.ID(), ShouldEqual, "Alice vs Bob R3")
		})

		Convey("Moves carry numbering, notation and positions", func() {
			So(len(g.Moves), ShouldEqual, 4)

			first := g.Moves[0]
			So(first.Number, ShouldEqual, 1)
			So(first.White, ShouldBeTrue)
			So(first.PlayerMoveNum, ShouldEqual, 1)
			So(first.SAN, ShouldEqual, "e4")
			So(first.UCI, ShouldEqual, "e2e4")
			So(first.FENBefore, ShouldStartWith, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w")
			So(first.FENAfter, ShouldStartWith, "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b")

			second := g.Moves[1]
			So(second.Number, ShouldEqual, 1)
			So(second.White, ShouldBeFalse)
			So(second.PlayerMoveNum, ShouldEqual, 1)

			third := g.Moves[2]
			So(third.Number, ShouldEqual, 2)
			So(third.White, ShouldBeTrue)
			So(third.PlayerMoveNum, ShouldEqual, 2)
		})

		Convey("Clock comments yield remaining time and derived spend", func() {
			So(*g.Moves[0].ClockRemaining, ShouldEqual, 7170)
			So(*g.Moves[0].TimeSpent, ShouldEqual, 30)
			So(*g.Moves[1].TimeSpent, ShouldEqual, 15)
			So(*g.Moves[2].TimeSpent, ShouldEqual, 40)
			So(*g.Moves[3].TimeSpent, ShouldEqual, 35)
		})

		Convey("The second game streams next, without clock data", func() {
			g2, err := r.Next(ctx)
			So(err, ShouldBeNil)
			So(g2.Metadata.Round, ShouldEqual, "4")
			So(len(g2.Moves), ShouldEqual, 2)
			So(g2.Moves[0].ClockRemaining, ShouldBeNil)
			So(g2.Moves[0].TimeSpent, ShouldBeNil)

			Convey("Then the stream ends", func() {
				_, err := r.Next(ctx)
				So(errors.Is(err, io.EOF), ShouldBeTrue)
			})
		})
	})

	Convey("Given a zstd-compressed PGN file", t, func() {
		path := filepath.Join(t.TempDir(), "games.pgn.zst")
		f, err := os.Create(path)
		So(err, ShouldBeNil)
		enc, err := zstd.NewWriter(f)
		So(err, ShouldBeNil)
		_, err = enc.Write([]byte(samplePGN))
		So(err, ShouldBeNil)
		So(enc.Close(), ShouldBeNil)
		So(f.Close(), ShouldBeNil)

		Convey("Games decompress transparently", func() {
			r, err := pgn.Open(path, control)
			So(err, ShouldBeNil)
			defer r.Close()

			g, err := r.Next(ctx)
			So(err, ShouldBeNil)
			So(g.Metadata.White, ShouldEqual, "Alice")
			So(len(g.Moves), ShouldEqual, 4)
		})
	})

	Convey("Given a missing file", t, func() {
		_, err := pgn.Open(filepath.Join(t.TempDir(), "nope.pgn"), control)
		So(err, ShouldNotBeNil)
	})
}
