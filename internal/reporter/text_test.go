package reporter

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/vulnpipe/vulnpipe/internal/models"
)

func TestTextReporterGenerate(t *testing.T) {
	report := sampleReport()
	report.Recommendations = []models.Recommendation{
		{Severity: "critical", Tool: "sqlmap", Action: "Parameterize queries behind 1 injectable endpoint(s)", Impact: "Data exfiltration or full application compromise", Count: 1},
	}
	report.Trend = &models.Trend{
		Direction:        "degrading",
		ChangePercent:    100,
		PreviousFindings: 1,
		CurrentFindings:  2,
		NewFindings:      1,
		ComparedWith:     time.Date(2026, 2, 28, 12, 0, 0, 0, time.UTC),
	}

	var buf bytes.Buffer
	if err := NewTextReporter(&buf).Generate(report); err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"VulnPipe Scan Report",
		"Total Findings: 2",
		"Max Severity: CRITICAL",
		"[CRITICAL] sqli-external-sqlmap",
		"Target: http://target.example (via sqlmap)",
		"Recommended Actions:",
		"Trend Analysis:",
		"degrading",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestTextReporterEmptyRun(t *testing.T) {
	report := &models.Report{
		Meta:    models.RunMeta{RunID: "run-2", Targets: []string{"http://t"}},
		Summary: models.Summary{},
	}

	var buf bytes.Buffer
	if err := NewTextReporter(&buf).Generate(report); err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if !strings.Contains(buf.String(), "No findings.") {
		t.Errorf("empty run not reported: %s", buf.String())
	}
}

func TestTextReporterMarksDestructiveFindings(t *testing.T) {
	report := sampleReport()
	report.Findings = append(report.Findings, models.Finding{
		Type:        "rce-command-injection",
		Target:      "http://target.example",
		Severity:    models.SeverityCritical,
		Destructive: true,
		Source:      models.Source{Tool: "probe"},
	})

	var buf bytes.Buffer
	if err := NewTextReporter(&buf).Generate(report); err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if !strings.Contains(buf.String(), "[DESTRUCTIVE PROBE]") {
		t.Error("destructive finding not marked")
	}
}
