package tui

import (
	"fmt"
	"strings"

	"github.com/vulnpipe/vulnpipe/internal/models"
)

// headerHeight is the number of terminal lines the header occupies.
const headerHeight = 5

// renderHeader produces the header string from report data.
func renderHeader(report *models.Report, width int) string {
	var b strings.Builder

	// Line 1: title, target, max severity
	b.WriteString(fmt.Sprintf("VulnPipe  %s", report.Meta.PrimaryTarget()))
	if report.Summary.MaxSeverity > 0 {
		word := models.SeverityWord(report.Summary.MaxSeverity)
		b.WriteString("  Max: ")
		b.WriteString(severityStyle(word).Render(strings.ToUpper(word)))
	}
	if report.Trend != nil {
		b.WriteString(fmt.Sprintf("  %s %.1f%%", trendIndicator(report.Trend.Direction), report.Trend.ChangePercent))
	}
	b.WriteString("\n")

	// Line 2: tools and totals
	b.WriteString(fmt.Sprintf("Tools: %d  Findings: %d",
		report.Summary.ToolsRun, report.Summary.TotalFindings))
	b.WriteString("\n")

	// Line 3: severity breakdown
	sevParts := make([]string, 0, 5)
	for _, sev := range []string{"critical", "high", "medium", "low", "info"} {
		if count, ok := report.Summary.FindingsBySeverity[sev]; ok && count > 0 {
			label := fmt.Sprintf("%s:%d", strings.ToUpper(sev[:1]), count)
			sevParts = append(sevParts, severityStyle(sev).Render(label))
		}
	}
	if len(sevParts) > 0 {
		b.WriteString(strings.Join(sevParts, "  "))
	}
	b.WriteString("\n")

	// Line 4: run identity
	if report.Meta.RunID != "" {
		b.WriteString(fmt.Sprintf("Run: %s", report.Meta.RunID))
	}

	return styleHeader.Width(width).Render(b.String())
}

func trendIndicator(direction string) string {
	switch direction {
	case "improving":
		return "↓"
	case "degrading":
		return "↑"
	default:
		return "→"
	}
}
