package aggregator

import (
	"fmt"

	"github.com/vulnpipe/vulnpipe/internal/models"
)

// TrendAnalyzer compares runs against the same host over time
type TrendAnalyzer struct{}

// NewTrendAnalyzer creates a new trend analyzer
func NewTrendAnalyzer() *TrendAnalyzer {
	return &TrendAnalyzer{}
}

// CalculateTrend compares the current report with a previous one
func (t *TrendAnalyzer) CalculateTrend(current, previous *models.Report) *models.Trend {
	if previous == nil {
		return nil
	}

	trend := &models.Trend{
		PreviousFindings: previous.Summary.TotalFindings,
		CurrentFindings:  current.Summary.TotalFindings,
		ComparedWith:     previous.Meta.StartedAt,
	}

	change := current.Summary.TotalFindings - previous.Summary.TotalFindings

	if previous.Summary.TotalFindings > 0 {
		trend.ChangePercent = float64(change) / float64(previous.Summary.TotalFindings) * 100.0
	}

	if change < 0 {
		trend.Direction = "improving"
		trend.ResolvedFindings = -change
	} else if change > 0 {
		trend.Direction = "degrading"
		trend.NewFindings = change
	} else {
		trend.Direction = "stable"
	}

	return trend
}

// GenerateComparisonReport creates a detailed comparison between two runs
func (t *TrendAnalyzer) GenerateComparisonReport(current, previous *models.Report) string {
	if previous == nil {
		return "No previous run to compare with"
	}

	trend := t.CalculateTrend(current, previous)

	report := fmt.Sprintf("Comparison: %s vs %s\n\n",
		current.Meta.StartedAt.Format("2006-01-02"),
		previous.Meta.StartedAt.Format("2006-01-02"))

	report += fmt.Sprintf("Overall: %d → %d findings (%.1f%% %s)\n\n",
		trend.PreviousFindings,
		trend.CurrentFindings,
		trend.ChangePercent,
		trend.Direction)

	// Per-tool changes
	for tool, currCount := range current.Summary.FindingsByTool {
		prevCount := previous.Summary.FindingsByTool[tool]
		if prevCount == currCount {
			continue
		}
		report += fmt.Sprintf("%s:\n", tool)
		if currCount > prevCount {
			report += fmt.Sprintf("  %d → %d (+%d)\n", prevCount, currCount, currCount-prevCount)
		} else {
			report += fmt.Sprintf("  %d → %d (%d)\n", prevCount, currCount, currCount-prevCount)
		}
	}

	// Types seen only in the previous run
	for ftype, prevCount := range previous.Summary.FindingsByType {
		if _, still := current.Summary.FindingsByType[ftype]; !still {
			report += fmt.Sprintf("resolved: %s (%d)\n", ftype, prevCount)
		}
	}

	if trend.NewFindings > 0 {
		report += fmt.Sprintf("\nNew Findings: %d\n", trend.NewFindings)
	}
	if trend.ResolvedFindings > 0 {
		report += fmt.Sprintf("\nResolved Findings: %d\n", trend.ResolvedFindings)
	}

	return report
}

// GetTrendIndicator returns a visual indicator for trend direction
func GetTrendIndicator(direction string) string {
	switch direction {
	case "improving":
		return "↓"
	case "degrading":
		return "↑"
	case "stable":
		return "→"
	default:
		return "?"
	}
}
