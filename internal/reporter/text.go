package reporter

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/vulnpipe/vulnpipe/internal/aggregator"
	"github.com/vulnpipe/vulnpipe/internal/models"
)

// TextReporter generates human-readable text reports
type TextReporter struct {
	writer io.Writer
}

// NewTextReporter creates a new text reporter
func NewTextReporter(writer io.Writer) *TextReporter {
	return &TextReporter{
		writer: writer,
	}
}

// Generate creates a text report from the run data
func (r *TextReporter) Generate(report *models.Report) error {
	r.printHeader()
	r.printf("Run:       %s\n", report.Meta.RunID)
	r.printf("Target(s): %s\n", strings.Join(report.Meta.Targets, ", "))
	if !report.Meta.StartedAt.IsZero() {
		r.printf("Started:   %s\n", formatTimestamp(report.Meta.StartedAt))
	}
	r.printf("\n")

	r.printSummary(report)
	r.printFindings(report)

	if len(report.Recommendations) > 0 {
		r.printRecommendations(report.Recommendations)
	}

	if report.Trend != nil {
		r.printf("\n")
		r.printTrendInfo(report.Trend)
	}

	return nil
}

// printHeader prints the report header
func (r *TextReporter) printHeader() {
	r.printf("╔════════════════════════════════════════════╗\n")
	r.printf("║           VulnPipe Scan Report             ║\n")
	r.printf("╚════════════════════════════════════════════╝\n\n")
}

// printSummary prints the overall summary section
func (r *TextReporter) printSummary(report *models.Report) {
	r.printf("Summary:\n")
	r.printf("--------------------------------------------------\n")
	r.printf("  Tools Run: %d\n", report.Summary.ToolsRun)
	r.printf("  Total Findings: %d\n", report.Summary.TotalFindings)
	if report.Summary.MaxSeverity > 0 {
		r.printf("  Max Severity: %s (%d)\n",
			strings.ToUpper(models.SeverityWord(report.Summary.MaxSeverity)),
			report.Summary.MaxSeverity)
	}

	if report.Trend != nil {
		indicator := aggregator.GetTrendIndicator(report.Trend.Direction)
		r.printf("  Trend: %s %.1f%% from previous run\n", indicator, report.Trend.ChangePercent)
	}
	r.printf("\n")

	if len(report.Summary.FindingsBySeverity) > 0 {
		r.printf("Findings by Severity:\n")
		for _, word := range []string{"critical", "high", "medium", "low", "info"} {
			if count := report.Summary.FindingsBySeverity[word]; count > 0 {
				r.printf("  %s: %d\n", strings.Title(word), count)
			}
		}
		r.printf("\n")
	}

	if len(report.Summary.FindingsByTool) > 0 {
		r.printf("Findings by Tool:\n")
		tools := make([]string, 0, len(report.Summary.FindingsByTool))
		for tool := range report.Summary.FindingsByTool {
			tools = append(tools, tool)
		}
		sort.Strings(tools)
		for _, tool := range tools {
			r.printf("  %s: %d\n", tool, report.Summary.FindingsByTool[tool])
		}
		r.printf("\n")
	}
}

// printFindings lists every finding in report order
func (r *TextReporter) printFindings(report *models.Report) {
	if len(report.Findings) == 0 {
		r.printf("No findings.\n")
		return
	}

	r.printf("Findings:\n")
	r.printf("--------------------------------------------------\n")
	for i, f := range report.Findings {
		marker := ""
		if f.Destructive {
			marker = " [DESTRUCTIVE PROBE]"
		}
		r.printf("  %d. [%s] %s%s\n", i+1, strings.ToUpper(models.SeverityWord(f.Severity)), f.Type, marker)
		r.printf("     Target: %s (via %s)\n", f.Target, f.Source.Tool)
		if f.Evidence != "" {
			r.printf("     Evidence: %s\n", firstLine(f.Evidence))
		}
		if f.UsedURL != "" {
			r.printf("     URL: %s\n", f.UsedURL)
		}
	}
	r.printf("\n")
}

// printRecommendations prints the recommendations section
func (r *TextReporter) printRecommendations(recommendations []models.Recommendation) {
	r.printf("Recommended Actions:\n")
	r.printf("--------------------------------------------------\n")
	for i, rec := range recommendations {
		r.printf("  %d. [%s] %s\n", i+1, strings.ToUpper(rec.Severity), rec.Action)
		r.printf("     Impact: %s\n", rec.Impact)
	}
}

// printTrendInfo prints trend information
func (r *TextReporter) printTrendInfo(trend *models.Trend) {
	r.printf("Trend Analysis:\n")
	r.printf("--------------------------------------------------\n")
	r.printf("  Direction: %s %s\n", trend.Direction, aggregator.GetTrendIndicator(trend.Direction))
	r.printf("  Change: %d → %d findings (%.1f%%)\n",
		trend.PreviousFindings,
		trend.CurrentFindings,
		trend.ChangePercent)

	if trend.NewFindings > 0 {
		r.printf("  New Findings: %d\n", trend.NewFindings)
	}
	if trend.ResolvedFindings > 0 {
		r.printf("  Resolved: %d\n", trend.ResolvedFindings)
	}

	r.printf("  Compared With: %s\n", formatTimestamp(trend.ComparedWith))
}

// printf is a helper to write formatted output
func (r *TextReporter) printf(format string, args ...interface{}) {
	fmt.Fprintf(r.writer, format, args...)
}

// formatTimestamp formats a timestamp for display
func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// firstLine trims evidence to its first line for compact display
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " …"
	}
	return s
}
