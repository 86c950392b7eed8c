package cli

import (
	"net/http"
	"time"

	"github.com/spf13/cobra"

	service "github.com/arbiterhq/arbiter/internal/app"
	"github.com/arbiterhq/arbiter/internal/reports"
	"github.com/arbiterhq/arbiter/pkg/logger"
	"github.com/arbiterhq/arbiter/pkg/metrics"
)

var (
	roundFilter string
	workers     int
	depth       int
	enginePath  string
	timeControl string
	metricsAddr string
	reportsDir  string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <pgn-file>...",
	Short: "Analyze tournament games and write the report",
	Long: `Streams games out of the given PGN files (plain, .zst or .bz2),
evaluates every non-opening move with the configured engine, and writes
the markdown report plus a JSON export to the reports directory.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := logger.Named("analyze")

	if workers > 0 {
		cfg.Workers = workers
	}
	if depth > 0 {
		cfg.Engine.Depth = depth
	}
	if enginePath != "" {
		cfg.Engine.Path = enginePath
	}
	if timeControl != "" {
		cfg.ActiveTimeControl = timeControl
	}
	if metricsAddr != "" {
		cfg.MetricsAddr = metricsAddr
	}
	if reportsDir != "" {
		cfg.ReportsDir = reportsDir
	}

	if cfg.MetricsAddr != "" {
		serveMetrics(cmd, cfg.MetricsAddr)
	}

	svc := service.New(cfg, service.WithRoundFilter(roundFilter))

	start := time.Now()
	result, err := svc.AnalyzeFiles(ctx, args)
	if err != nil {
		return err
	}

	mdPath, jsonPath, err := reports.Write(cfg.ReportsDir, result)
	if err != nil {
		return err
	}

	log.Info(ctx, "analysis complete",
		logger.String("run", result.RunID),
		logger.Int("games", len(result.Games)),
		logger.Duration("elapsed", time.Since(start)),
		logger.String("report", mdPath),
		logger.String("export", jsonPath))
	return nil
}

// serveMetrics exposes the Prometheus endpoint for the duration of the
// batch; the listener dies with the process.
func serveMetrics(cmd *cobra.Command, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Named("metrics").Warn(cmd.Context(), "metrics listener stopped",
				logger.Error(err))
		}
	}()
}

func init() {
	analyzeCmd.Flags().StringVar(&roundFilter, "round", "", "only analyze games of this round")
	analyzeCmd.Flags().IntVar(&workers, "workers", 0, "parallel analysis workers, one engine each")
	analyzeCmd.Flags().IntVar(&depth, "depth", 0, "engine search depth")
	analyzeCmd.Flags().StringVar(&enginePath, "engine", "", "UCI engine binary")
	analyzeCmd.Flags().StringVar(&timeControl, "time-control", "", "named time control to apply")
	analyzeCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address during the batch")
	analyzeCmd.Flags().StringVar(&reportsDir, "reports-dir", "", "directory for the report and JSON export")
	rootCmd.AddCommand(analyzeCmd)
}
