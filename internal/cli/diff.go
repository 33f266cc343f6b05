package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vulnpipe/vulnpipe/internal/models"
	"github.com/vulnpipe/vulnpipe/internal/storage"
)

var (
	diffFormat  string
	diffOutput  string
	diffFailNew bool
)

var diffCmd = &cobra.Command{
	Use:   "diff <baseline-run-dir> <current-run-dir>",
	Short: "Show what changed between two runs",
	Long: `Compare two runs to show drift: new findings, resolved findings, and
summary deltas. Useful for tracking whether a target is getting better
or worse between scans.

Exit codes:
  0  No new findings (or --fail-new not set)
  1  New findings detected (with --fail-new)

Example:
  vulnpipe diff runs/example.test/<old> runs/example.test/<new>
  vulnpipe diff <old> <new> --fail-new --format json`,
	Args: cobra.ExactArgs(2),
	RunE: runDiff,
}

func init() {
	diffCmd.Flags().StringVarP(&diffFormat, "format", "f", "text",
		"output format: text or json")
	diffCmd.Flags().StringVarP(&diffOutput, "output", "o", "",
		"write output to file instead of stdout")
	diffCmd.Flags().BoolVar(&diffFailNew, "fail-new", false,
		"exit 1 if new findings are found (for CI gating)")
}

// DiffResult is the structured output of a diff operation.
type DiffResult struct {
	Baseline         string           `json:"baseline"`
	Current          string           `json:"current"`
	NewFindings      []models.Finding `json:"new_findings"`
	ResolvedFindings []models.Finding `json:"resolved_findings"`
	Summary          DiffSummary      `json:"summary"`
}

// DiffSummary holds aggregate counts for a diff.
type DiffSummary struct {
	BaselineTotal int            `json:"baseline_total"`
	CurrentTotal  int            `json:"current_total"`
	NewCount      int            `json:"new_count"`
	ResolvedCount int            `json:"resolved_count"`
	Delta         int            `json:"delta"` // positive = more findings
	NewBySeverity map[string]int `json:"new_by_severity"`
	NewByTool     map[string]int `json:"new_by_tool"`
	NewByType     map[string]int `json:"new_by_type"`
}

func runDiff(cmd *cobra.Command, args []string) error {
	baseline, err := storage.LoadReport(args[0])
	if err != nil {
		return &ValidationError{Message: fmt.Sprintf("baseline: %v", err)}
	}
	current, err := storage.LoadReport(args[1])
	if err != nil {
		return &ValidationError{Message: fmt.Sprintf("current: %v", err)}
	}

	logVerbose("comparing %s (current) vs %s (baseline)",
		current.Meta.RunID, baseline.Meta.RunID)

	result := computeDiff(baseline, current)

	if err := outputDiff(result, diffFormat, diffOutput); err != nil {
		return err
	}

	if diffFailNew && result.Summary.NewCount > 0 {
		return &ThresholdExceededError{
			FindingCount: result.Summary.NewCount,
			Threshold:    0,
		}
	}

	return nil
}

// findingKey returns a string that identifies a finding for diff purposes.
func findingKey(f models.Finding) string {
	return f.Source.Tool + "|" + f.Type + "|" + f.Target
}

// computeDiff calculates new and resolved findings between baseline and
// current.
func computeDiff(baseline, current *models.Report) *DiffResult {
	baseSet := make(map[string]models.Finding, len(baseline.Findings))
	for _, f := range baseline.Findings {
		baseSet[findingKey(f)] = f
	}

	currSet := make(map[string]models.Finding, len(current.Findings))
	for _, f := range current.Findings {
		currSet[findingKey(f)] = f
	}

	var newFindings, resolvedFindings []models.Finding

	for key, f := range currSet {
		if _, found := baseSet[key]; !found {
			newFindings = append(newFindings, f)
		}
	}

	for key, f := range baseSet {
		if _, found := currSet[key]; !found {
			resolvedFindings = append(resolvedFindings, f)
		}
	}

	newBySeverity := map[string]int{}
	newByTool := map[string]int{}
	newByType := map[string]int{}
	for _, f := range newFindings {
		newBySeverity[models.SeverityWord(f.Severity)]++
		newByTool[f.Source.Tool]++
		newByType[f.Type]++
	}

	return &DiffResult{
		Baseline:         baseline.Meta.RunID,
		Current:          current.Meta.RunID,
		NewFindings:      newFindings,
		ResolvedFindings: resolvedFindings,
		Summary: DiffSummary{
			BaselineTotal: len(baseline.Findings),
			CurrentTotal:  len(current.Findings),
			NewCount:      len(newFindings),
			ResolvedCount: len(resolvedFindings),
			Delta:         len(current.Findings) - len(baseline.Findings),
			NewBySeverity: newBySeverity,
			NewByTool:     newByTool,
			NewByType:     newByType,
		},
	}
}

// outputDiff renders the diff result to the chosen format.
func outputDiff(result *DiffResult, format, outputPath string) error {
	var writer *os.File
	if outputPath != "" {
		var err error
		writer, err = os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() { _ = writer.Close() }()
	} else {
		writer = os.Stdout
	}

	switch format {
	case "json":
		enc := json.NewEncoder(writer)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case "text":
		return printDiffText(writer, result)
	default:
		return fmt.Errorf("unsupported format: %s (use text or json)", format)
	}
}

func printDiffText(w *os.File, r *DiffResult) error {
	p := func(format string, args ...interface{}) {
		_, _ = fmt.Fprintf(w, format, args...)
	}

	p("╔════════════════════════════════════════════╗\n")
	p("║            VulnPipe Run Delta              ║\n")
	p("╚════════════════════════════════════════════╝\n\n")

	p("Baseline: %s\n", r.Baseline)
	p("Current:  %s\n\n", r.Current)

	deltaSign := "+"
	if r.Summary.Delta < 0 {
		deltaSign = ""
	}
	p("Findings: %d → %d (%s%d)\n", r.Summary.BaselineTotal, r.Summary.CurrentTotal, deltaSign, r.Summary.Delta)
	p("New: %d   Resolved: %d\n\n", r.Summary.NewCount, r.Summary.ResolvedCount)

	if len(r.NewFindings) > 0 {
		p("New Findings:\n")
		p("--------------------------------------------------\n")
		for _, f := range r.NewFindings {
			sev := strings.ToUpper(models.SeverityWord(f.Severity))
			p("  [%s] %s — %s: %s\n", sev, f.Source.Tool, f.Type, f.Target)
			if f.Evidence != "" {
				p("         %s\n", f.Evidence)
			}
		}
		p("\n")
	}

	if len(r.ResolvedFindings) > 0 {
		p("Resolved Findings:\n")
		p("--------------------------------------------------\n")
		for _, f := range r.ResolvedFindings {
			p("  ✓ %s — %s: %s\n", f.Source.Tool, f.Type, f.Target)
		}
		p("\n")
	}

	if len(r.Summary.NewBySeverity) > 0 {
		p("New by Severity:\n")
		for sev, count := range r.Summary.NewBySeverity {
			p("  %s: %d\n", strings.ToUpper(sev), count)
		}
		p("\n")
	}

	if len(r.Summary.NewByTool) > 0 {
		p("New by Tool:\n")
		for tool, count := range r.Summary.NewByTool {
			p("  %s: %d\n", tool, count)
		}
		p("\n")
	}

	if r.Summary.NewCount == 0 && r.Summary.ResolvedCount == 0 {
		p("No drift detected.\n")
	} else if r.Summary.NewCount == 0 {
		p("No new findings — only improvements.\n")
	}

	return nil
}
