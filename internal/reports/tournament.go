// Package reports renders a batch result as a markdown tournament report
// and a JSON export, and reloads exports for re-rendering.
package reports

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	service "github.com/arbiterhq/arbiter/internal/app"
	"github.com/arbiterhq/arbiter/internal/domain/performance"
	"github.com/arbiterhq/arbiter/internal/domain/timeusage"
)

const (
	// MarkdownFile and ExportFile are the fixed names written into the
	// reports directory; the run id lives in the document header.
	MarkdownFile = "tournament_report.md"
	ExportFile   = "analysis.json"
)

// export wraps a result with generation metadata for the JSON document.
type export struct {
	GeneratedAt time.Time       `json:"generated_at"`
	Result      *service.Result `json:"result"`
}

// Write renders both artifacts into dir, creating it when needed, and
// returns their paths.
func Write(dir string, result *service.Result) (mdPath, jsonPath string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("creating reports directory: %w", err)
	}

	mdPath = filepath.Join(dir, MarkdownFile)
	f, err := os.Create(mdPath)
	if err != nil {
		return "", "", fmt.Errorf("creating report: %w", err)
	}
	if err := Render(f, result); err != nil {
		f.Close()
		return "", "", err
	}
	if err := f.Close(); err != nil {
		return "", "", err
	}

	jsonPath = filepath.Join(dir, ExportFile)
	data, err := json.MarshalIndent(export{GeneratedAt: time.Now().UTC(), Result: result}, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("encoding export: %w", err)
	}
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		return "", "", fmt.Errorf("writing export: %w", err)
	}
	return mdPath, jsonPath, nil
}

// Load reads a JSON export written by Write.
func Load(path string) (*service.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading export: %w", err)
	}
	var ex export
	if err := json.Unmarshal(data, &ex); err != nil {
		return nil, fmt.Errorf("decoding export: %w", err)
	}
	if ex.Result == nil {
		return nil, fmt.Errorf("decoding export: empty result")
	}
	return ex.Result, nil
}

// Render writes the markdown tournament report.
func Render(w io.Writer, result *service.Result) error {
	p := &printer{w: w}

	p.f("# Tournament Analysis\n\n")
	p.f("Run `%s` — %d games, %d cached evaluations.\n\n", result.RunID, len(result.Games), result.CacheSize)

	p.f("## Accuracy\n\n")
	p.f("| Player | Games | Moves | Avg CPL | Accuracy | Inacc. | Mistakes | Blunders |\n")
	p.f("|---|---:|---:|---:|---:|---:|---:|---:|\n")
	for _, ps := range result.Players {
		p.f("| %s | %d | %d | %.1f | %.1f%% | %d | %d | %d |\n",
			ps.Player, ps.Games, ps.MovesRated, ps.AvgCPL, ps.Accuracy,
			ps.Inaccuracies, ps.Mistakes, ps.Blunders)
	}
	p.f("\n")

	p.f("### Accuracy by think time\n\n")
	p.f("| Player | Quick (<5m) | Normal (5-15m) | Deep (>15m) |\n")
	p.f("|---|---:|---:|---:|\n")
	for _, ps := range result.Players {
		p.f("| %s | %s | %s | %s |\n", ps.Player,
			bucketCell(ps.Buckets[performance.BucketQuick]),
			bucketCell(ps.Buckets[performance.BucketNormal]),
			bucketCell(ps.Buckets[performance.BucketDeep]))
	}
	p.f("\n")

	p.f("## Comebacks\n\n")
	if len(result.Comebacks) == 0 {
		p.f("None.\n\n")
	} else {
		p.f("| Game | Player | Worst eval | Result | Recovery moves |\n")
		p.f("|---|---|---:|---|---:|\n")
		for _, c := range result.Comebacks {
			p.f("| %s | %s | %+d | %s | %d |\n",
				c.GameID, c.Player, c.WorstEval, c.FinalResult, c.RecoveryMoves)
		}
		p.f("\n")
	}

	p.f("## Blown leads\n\n")
	if len(result.BlownLeads) == 0 {
		p.f("None.\n\n")
	} else {
		p.f("| Game | Player | Best eval | Result | Moves after peak |\n")
		p.f("|---|---|---:|---|---:|\n")
		for _, b := range result.BlownLeads {
			p.f("| %s | %s | %+d | %s | %d |\n",
				b.GameID, b.Player, b.BestEval, b.FinalResult, b.MovesAfterPeak)
		}
		p.f("\n")
	}

	p.f("## Game dynamics\n\n")
	p.f("| Game | Player | Dominance | Resilience |\n")
	p.f("|---|---|---:|---:|\n")
	for _, d := range result.Dynamics {
		p.f("| %s | %s | %.1f | %.1f |\n", d.GameID, d.Player, d.Dominance, d.Resilience)
	}
	p.f("\n")

	p.f("## Time usage\n\n")
	p.f("| Game | Player | Clocked moves | Total | Avg/move | Opening | Long thinks | Pressure moves |\n")
	p.f("|---|---|---:|---:|---:|---:|---:|---:|\n")
	for _, tu := range result.TimeUsage {
		p.usageRow(tu.GameID, tu.White)
		p.usageRow(tu.GameID, tu.Black)
	}
	p.f("\n")

	return p.err
}

func (p *printer) usageRow(gameID string, u timeusage.SideUsage) {
	p.f("| %s | %s | %d | %s | %.0fs | %s | %d | %d |\n",
		gameID, u.Player, u.MovesClocked,
		seconds(u.TotalSeconds), u.AvgSeconds,
		seconds(u.OpeningSeconds), len(u.LongThinks), u.PressureMoves)
}

func seconds(s int) string {
	return (time.Duration(s) * time.Second).String()
}

func bucketCell(b performance.BucketStats) string {
	if b.Moves == 0 {
		return "—"
	}
	return fmt.Sprintf("%.1f%% (%d)", b.Accuracy, b.Moves)
}

// printer accumulates the first write error so callers check once.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) f(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}
