package aggregator

import (
	"strings"
	"testing"
	"time"

	"github.com/vulnpipe/vulnpipe/internal/models"
)

func reportWithFindings(total int, started time.Time) *models.Report {
	return &models.Report{
		Meta: models.RunMeta{StartedAt: started},
		Summary: models.Summary{
			TotalFindings:  total,
			FindingsByTool: map[string]int{"nmap": total},
			FindingsByType: map[string]int{"open-port": total},
		},
	}
}

func TestCalculateTrend(t *testing.T) {
	now := time.Now()
	earlier := now.Add(-24 * time.Hour)

	tests := []struct {
		name          string
		current       int
		previous      int
		wantDirection string
		wantNew       int
		wantResolved  int
	}{
		{"improving", 2, 5, "improving", 0, 3},
		{"degrading", 8, 5, "degrading", 3, 0},
		{"stable", 5, 5, "stable", 0, 0},
	}

	analyzer := NewTrendAnalyzer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trend := analyzer.CalculateTrend(
				reportWithFindings(tt.current, now),
				reportWithFindings(tt.previous, earlier),
			)
			if trend.Direction != tt.wantDirection {
				t.Errorf("direction = %q, want %q", trend.Direction, tt.wantDirection)
			}
			if trend.NewFindings != tt.wantNew {
				t.Errorf("new = %d, want %d", trend.NewFindings, tt.wantNew)
			}
			if trend.ResolvedFindings != tt.wantResolved {
				t.Errorf("resolved = %d, want %d", trend.ResolvedFindings, tt.wantResolved)
			}
		})
	}
}

func TestCalculateTrendNilPrevious(t *testing.T) {
	if trend := NewTrendAnalyzer().CalculateTrend(reportWithFindings(3, time.Now()), nil); trend != nil {
		t.Errorf("expected nil trend, got %+v", trend)
	}
}

func TestGenerateComparisonReport(t *testing.T) {
	now := time.Now()
	current := reportWithFindings(2, now)
	previous := reportWithFindings(5, now.Add(-24*time.Hour))
	previous.Summary.FindingsByType["sqli-error"] = 1

	out := NewTrendAnalyzer().GenerateComparisonReport(current, previous)
	if !strings.Contains(out, "improving") {
		t.Errorf("comparison missing direction: %s", out)
	}
	if !strings.Contains(out, "resolved: sqli-error") {
		t.Errorf("comparison missing resolved type: %s", out)
	}
}

func TestGetTrendIndicator(t *testing.T) {
	tests := []struct {
		direction string
		want      string
	}{
		{"improving", "↓"},
		{"degrading", "↑"},
		{"stable", "→"},
		{"", "?"},
	}
	for _, tt := range tests {
		if got := GetTrendIndicator(tt.direction); got != tt.want {
			t.Errorf("GetTrendIndicator(%q) = %q, want %q", tt.direction, got, tt.want)
		}
	}
}
