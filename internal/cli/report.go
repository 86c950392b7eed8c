package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/arbiterhq/arbiter/internal/reports"
)

var reportCmd = &cobra.Command{
	Use:   "report [analysis.json]",
	Short: "Re-render the markdown report from a JSON export",
	Long: `Reads a JSON export written by a previous analyze run and renders
the markdown report to stdout. Without an argument the export in the
configured reports directory is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReport,
}

func runReport(cmd *cobra.Command, args []string) error {
	path := filepath.Join(cfg.ReportsDir, reports.ExportFile)
	if len(args) == 1 {
		path = args[0]
	}

	result, err := reports.Load(path)
	if err != nil {
		return err
	}
	return reports.Render(os.Stdout, result)
}

func init() {
	rootCmd.AddCommand(reportCmd)
}
