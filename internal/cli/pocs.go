package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/vulnpipe/vulnpipe/internal/poc"
	"github.com/vulnpipe/vulnpipe/internal/storage"
)

var pocCmd = &cobra.Command{
	Use:   "poc <run-dir>",
	Short: "Synthesize read-only PoC artifacts from a run's report",
	Long: `Poc derives one non-executing demonstration artifact per finding in the
run's final report: a benign payload, an example curl command, and a
safety note. Nothing is sent to the target.

Writes reports/pocs.json and reports/pocs_compact.json. A missing
report is a usage error; run 'vulnpipe scan' or 'vulnpipe report'
first.`,
	Args: cobra.ExactArgs(1),
	RunE: runPoC,
}

var compactCmd = &cobra.Command{
	Use:   "compact <run-dir>",
	Short: "Re-compact a run's PoC list",
	Long: `Compact deduplicates reports/pocs.json by proof URL (first occurrence
wins) and rewrites reports/pocs_compact.json. Compaction is idempotent.

A missing pocs.json is a usage error; run 'vulnpipe poc' first.`,
	Args: cobra.ExactArgs(1),
	RunE: runCompact,
}

func runPoC(cmd *cobra.Command, args []string) error {
	runDir := args[0]

	report, err := poc.ReportForPoCs(runDir)
	if err != nil {
		return &ValidationError{Message: err.Error()}
	}

	pocs := poc.New().Synthesize(report)
	logVerbose("synthesized %d PoC(s) from %d finding(s)", len(pocs), len(report.Findings))

	if err := poc.WritePoCs(runDir, pocs); err != nil {
		return err
	}

	fmt.Printf("Wrote %d PoC(s) to %s\n", len(pocs), storage.PoCsPath(runDir))
	return nil
}

func runCompact(cmd *cobra.Command, args []string) error {
	runDir := args[0]

	pocs, err := poc.LoadPoCs(runDir)
	if err != nil {
		return &ValidationError{Message: err.Error()}
	}

	compact := poc.Compact(pocs)

	data, err := json.MarshalIndent(compact, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal compact pocs: %w", err)
	}
	if err := os.WriteFile(storage.CompactPoCsPath(runDir), data, 0o644); err != nil {
		return fmt.Errorf("failed to write compact pocs: %w", err)
	}

	fmt.Printf("Compacted %d PoC(s) to %d entr(ies) in %s\n",
		len(pocs), compact.Count, storage.CompactPoCsPath(runDir))
	return nil
}
