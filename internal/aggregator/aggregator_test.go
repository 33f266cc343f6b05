package aggregator

import (
	"testing"
	"time"

	"github.com/vulnpipe/vulnpipe/internal/models"
)

func testMeta() models.RunMeta {
	return models.RunMeta{
		RunID:     "run-1",
		Targets:   []string{"http://target.example"},
		Mode:      "scan",
		StartedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestAggregate(t *testing.T) {
	envelopes := []models.Envelope{
		{
			Meta: models.EnvelopeMeta{Tool: models.ToolNmap, Status: models.StatusRan, Target: "10.0.0.5"},
			Result: &models.ToolResult{
				Hosts: []models.NmapHost{
					{Address: "10.0.0.5", Ports: []models.NmapPort{
						{Port: 22, State: "open"},
						{Port: 80, State: "open"},
					}},
				},
			},
		},
		{
			Meta: models.EnvelopeMeta{Tool: models.ToolSqlmap, Status: models.StatusRan, Target: "http://target.example"},
			Result: &models.ToolResult{
				Vulnerabilities: []models.SqlmapVuln{
					{URL: "http://target.example/q.php?id=1", Parameter: "id"},
				},
			},
		},
		{
			Meta: models.EnvelopeMeta{Tool: models.ToolNikto, Status: models.StatusMissingBinary},
		},
	}

	report := New().Aggregate(testMeta(), envelopes)

	if report.Summary.TotalFindings != 3 {
		t.Fatalf("total findings = %d, want 3", report.Summary.TotalFindings)
	}
	if report.Summary.ToolsRun != 3 {
		t.Errorf("tools run = %d, want 3", report.Summary.ToolsRun)
	}
	if report.Summary.MaxSeverity != models.SeverityCritical {
		t.Errorf("max severity = %d, want %d", report.Summary.MaxSeverity, models.SeverityCritical)
	}
	if report.Summary.FindingsByTool["nmap"] != 2 {
		t.Errorf("nmap findings = %d, want 2", report.Summary.FindingsByTool["nmap"])
	}
	if report.Summary.FindingsBySeverity["critical"] != 1 {
		t.Errorf("critical findings = %d, want 1", report.Summary.FindingsBySeverity["critical"])
	}
	if report.Summary.FindingsByType["open-port"] != 2 {
		t.Errorf("open-port findings = %d, want 2", report.Summary.FindingsByType["open-port"])
	}

	// Envelope order is preserved: nmap findings before the sqlmap one.
	if report.Findings[0].Source.Tool != "nmap" || report.Findings[2].Source.Tool != "sqlmap" {
		t.Errorf("finding order not preserved: %+v", report.Findings)
	}
}

func TestAggregateEmptyRun(t *testing.T) {
	report := New().Aggregate(testMeta(), nil)

	if report.Summary.TotalFindings != 0 {
		t.Errorf("total findings = %d, want 0", report.Summary.TotalFindings)
	}
	if report.Findings == nil {
		t.Error("findings must be an empty list, not null")
	}
	if report.Summary.MaxSeverity != 0 {
		t.Errorf("max severity = %d, want 0", report.Summary.MaxSeverity)
	}
}

func TestAppendRecomputesSummary(t *testing.T) {
	envelopes := []models.Envelope{
		{
			Meta: models.EnvelopeMeta{Tool: models.ToolNmap, Status: models.StatusRan},
			Result: &models.ToolResult{
				Hosts: []models.NmapHost{{Address: "h", Ports: []models.NmapPort{{Port: 80, State: "open"}}}},
			},
		},
	}

	a := New()
	report := a.Aggregate(testMeta(), envelopes)
	if report.Summary.MaxSeverity != models.SeverityLow {
		t.Fatalf("max severity = %d, want %d", report.Summary.MaxSeverity, models.SeverityLow)
	}

	probe := models.NewFinding("rce-command-injection", "http://h/?q=1",
		models.SeverityCritical, "uid=0(root)", models.Source{Tool: "probe"})
	probe.Destructive = true

	a.Append(report, probe)

	if report.Summary.TotalFindings != 2 {
		t.Errorf("total findings = %d, want 2", report.Summary.TotalFindings)
	}
	if report.Summary.MaxSeverity != models.SeverityCritical {
		t.Errorf("max severity = %d, want %d", report.Summary.MaxSeverity, models.SeverityCritical)
	}
	if report.Summary.FindingsByTool["probe"] != 1 {
		t.Errorf("probe findings = %d, want 1", report.Summary.FindingsByTool["probe"])
	}
	if report.Summary.FindingsBySeverity["critical"] != 1 {
		t.Errorf("critical findings = %d, want 1", report.Summary.FindingsBySeverity["critical"])
	}
	if len(report.Recommendations) == 0 {
		t.Error("expected recommendations after append")
	}
}

func TestAggregateDeterministic(t *testing.T) {
	envelopes := []models.Envelope{
		{
			Meta: models.EnvelopeMeta{Tool: models.ToolNmap, Status: models.StatusRan},
			Result: &models.ToolResult{
				Hosts: []models.NmapHost{{Address: "h", Ports: []models.NmapPort{{Port: 80, State: "open"}}}},
			},
		},
	}

	a := New()
	first := a.Aggregate(testMeta(), envelopes)
	second := a.Aggregate(testMeta(), envelopes)

	if len(first.Findings) != len(second.Findings) {
		t.Fatal("aggregation not reproducible")
	}
	for i := range first.Findings {
		if first.Findings[i].Type != second.Findings[i].Type ||
			first.Findings[i].Target != second.Findings[i].Target {
			t.Errorf("finding %d differs between runs", i)
		}
	}
}
