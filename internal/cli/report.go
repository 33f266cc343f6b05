package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vulnpipe/vulnpipe/internal/aggregator"
	"github.com/vulnpipe/vulnpipe/internal/collector"
	"github.com/vulnpipe/vulnpipe/internal/models"
	"github.com/vulnpipe/vulnpipe/internal/reporter"
	"github.com/vulnpipe/vulnpipe/internal/storage"
)

var (
	reportFormat string
	reportOutput string
)

var reportCmd = &cobra.Command{
	Use:   "report <run-dir>",
	Short: "Rebuild the report from checkpointed tool envelopes",
	Long: `Report re-normalizes a run from its envelope checkpoints under
generated/tools/ without re-invoking any scanner. Useful after parser
improvements, or when the original scan was interrupted between
envelope checkpointing and report generation.

The rebuilt report overwrites reports/final_report.json and
final_report.txt for the run.`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportFormat, "format", "",
		"output format: text, json, or both (default from config)")
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "",
		"write report output to file instead of stdout")
}

func runReport(cmd *cobra.Command, args []string) error {
	runDir := args[0]

	format := reportFormat
	if format == "" {
		format = cfg.Format
	}

	report, err := rebuildReport(runDir)
	if err != nil {
		return err
	}

	if err := reporter.WriteReport(runDir, report); err != nil {
		return err
	}
	logVerbose("report written to %s", storage.FinalReportPath(runDir))

	return renderReport(report, format, reportOutput)
}

// rebuildReport loads envelopes from a run directory and aggregates
// them into a fresh report.
func rebuildReport(runDir string) (*models.Report, error) {
	coll := collector.New(collector.Config{Verbose: cfg != nil && cfg.Verbose})
	envelopes, err := coll.CollectRun(runDir)
	if err != nil {
		return nil, fmt.Errorf("failed to collect envelopes: %w", err)
	}

	meta := models.RunMeta{RunID: runDirID(runDir)}
	if stored, err := storage.LoadRunMeta(runDir); err == nil {
		meta = *stored
	} else {
		logDebug("no run meta: %v", err)
	}

	return aggregator.New().Aggregate(meta, envelopes), nil
}
