package reports_test

import (
	"bytes"
	"path/filepath"
	"testing"

	service "github.com/arbiterhq/arbiter/internal/app"
	"github.com/arbiterhq/arbiter/internal/domain/model"
	"github.com/arbiterhq/arbiter/internal/domain/performance"
	"github.com/arbiterhq/arbiter/internal/domain/quality"
	"github.com/arbiterhq/arbiter/internal/domain/score"
	"github.com/arbiterhq/arbiter/internal/domain/timeusage"
	"github.com/arbiterhq/arbiter/internal/reports"
	. "github.com/smartystreets/goconvey/convey"
)

func sampleResult() *service.Result {
	return &service.Result{
		RunID:     "run-1234",
		CacheSize: 42,
		Games: []*quality.GameEvaluation{
			{
				GameID:   "Alice vs Bob R1",
				Metadata: model.Metadata{White: "Alice", Black: "Bob", Result: model.ResultDraw},
			},
		},
		Players: []*performance.PlayerStats{
			{Player: "Alice", Games: 1, MovesRated: 20, AvgCPL: 18.5, Accuracy: 92.3, Mistakes: 1},
			{Player: "Bob", Games: 1, MovesRated: 20, AvgCPL: 44.0, Accuracy: 81.0, Blunders: 2},
		},
		Comebacks: []performance.ComebackRecord{
			{GameID: "Alice vs Bob R1", Player: "Alice", Side: score.White,
				WorstEval: -250, FinalResult: model.ResultDraw, RecoveryMoves: 12},
		},
		Dynamics: []service.GameDynamics{
			{GameID: "Alice vs Bob R1", Player: "Alice", Side: score.White, Dominance: 15.0, Resilience: 88.0},
			{GameID: "Alice vs Bob R1", Player: "Bob", Side: score.Black, Dominance: 40.2, Resilience: 100.0},
		},
		TimeUsage: []service.GameTimeUsage{
			{
				GameID: "Alice vs Bob R1",
				White:  timeusage.SideUsage{Player: "Alice", MovesClocked: 20, TotalSeconds: 5400, AvgSeconds: 270},
				Black:  timeusage.SideUsage{Player: "Bob", MovesClocked: 20, TotalSeconds: 6100, AvgSeconds: 305, PressureMoves: 4},
			},
		},
	}
}

func TestRender(t *testing.T) {
	Convey("Given a batch result", t, func() {
		var buf bytes.Buffer
		So(reports.Render(&buf, sampleResult()), ShouldBeNil)
		out := buf.String()

		Convey("The report carries every section", func() {
			So(out, ShouldContainSubstring, "# Tournament Analysis")
			So(out, ShouldContainSubstring, "run-1234")
			So(out, ShouldContainSubstring, "## Accuracy")
			So(out, ShouldContainSubstring, "## Comebacks")
			So(out, ShouldContainSubstring, "## Blown leads")
			So(out, ShouldContainSubstring, "## Game dynamics")
			So(out, ShouldContainSubstring, "## Time usage")
		})

		Convey("Tables carry the computed values", func() {
			So(out, ShouldContainSubstring, "| Alice | 1 | 20 | 18.5 | 92.3% | 0 | 1 | 0 |")
			So(out, ShouldContainSubstring, "| Alice vs Bob R1 | Alice | -250 | 1/2-1/2 | 12 |")
			So(out, ShouldContainSubstring, "None.")
			So(out, ShouldContainSubstring, "1h30m0s")
		})
	})
}

func TestWriteAndLoad(t *testing.T) {
	Convey("Given a reports directory", t, func() {
		dir := filepath.Join(t.TempDir(), "reports")

		mdPath, jsonPath, err := reports.Write(dir, sampleResult())
		So(err, ShouldBeNil)
		So(mdPath, ShouldEndWith, reports.MarkdownFile)
		So(jsonPath, ShouldEndWith, reports.ExportFile)

		Convey("The export reloads with the same content", func() {
			loaded, err := reports.Load(jsonPath)
			So(err, ShouldBeNil)
			So(loaded.RunID, ShouldEqual, "run-1234")
			So(len(loaded.Players), ShouldEqual, 2)
			So(loaded.Players[0].Player, ShouldEqual, "Alice")
			So(loaded.Comebacks[0].WorstEval, ShouldEqual, -250)
			So(loaded.TimeUsage[0].Black.PressureMoves, ShouldEqual, 4)
		})

		Convey("A missing export is an error", func() {
			_, err := reports.Load(filepath.Join(dir, "nope.json"))
			So(err, ShouldNotBeNil)
		})
	})
}
