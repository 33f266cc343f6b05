package aggregator

import (
	"strings"
	"testing"

	"github.com/vulnpipe/vulnpipe/internal/models"
)

func TestGenerateRecommendations(t *testing.T) {
	report := &models.Report{
		Findings: []models.Finding{
			{Type: "open-port", Severity: models.SeverityLow, Source: models.Source{Tool: "nmap"}},
			{Type: "open-port", Severity: models.SeverityLow, Source: models.Source{Tool: "nmap"}},
			{Type: "sqli-external-sqlmap", Severity: models.SeverityCritical, Source: models.Source{Tool: "sqlmap"}},
			{Type: "medusa-inferred", Severity: models.SeverityMedium, Source: models.Source{Tool: "medusa"}},
		},
	}

	recs := NewRecommendationGenerator().GenerateRecommendations(report)
	if len(recs) != 3 {
		t.Fatalf("expected 3 recommendations, got %d", len(recs))
	}

	// Most severe first.
	if recs[0].Severity != "critical" {
		t.Errorf("first recommendation severity = %q, want critical", recs[0].Severity)
	}
	if !strings.Contains(recs[0].Action, "Parameterize") {
		t.Errorf("sqli action = %q", recs[0].Action)
	}

	var portRec *models.Recommendation
	for i := range recs {
		if recs[i].Tool == "nmap" {
			portRec = &recs[i]
		}
	}
	if portRec == nil {
		t.Fatal("no recommendation for nmap findings")
	}
	if portRec.Count != 2 {
		t.Errorf("open-port count = %d, want 2", portRec.Count)
	}
	if !strings.Contains(portRec.Action, "2 open port(s)") {
		t.Errorf("open-port action = %q", portRec.Action)
	}
}

func TestGenerateRecommendationsCommandInjection(t *testing.T) {
	report := &models.Report{
		Findings: []models.Finding{
			{Type: "rce-command-injection", Severity: models.SeverityCritical,
				Destructive: true, Source: models.Source{Tool: "probe"}},
		},
	}

	recs := NewRecommendationGenerator().GenerateRecommendations(report)
	if len(recs) != 1 {
		t.Fatalf("expected 1 recommendation, got %d", len(recs))
	}
	if !strings.Contains(recs[0].Action, "shell interpolation") {
		t.Errorf("action = %q, want the command-injection remediation", recs[0].Action)
	}
	if recs[0].Impact != "Remote command execution on the target host" {
		t.Errorf("impact = %q, want the command-execution impact", recs[0].Impact)
	}
}

func TestGenerateRecommendationsInferredFindings(t *testing.T) {
	report := &models.Report{
		Findings: []models.Finding{
			{Type: "medusa-inferred", Severity: models.SeverityMedium, Source: models.Source{Tool: "medusa"}},
		},
	}

	recs := NewRecommendationGenerator().GenerateRecommendations(report)
	if len(recs) != 1 {
		t.Fatalf("expected 1 recommendation, got %d", len(recs))
	}
	if !strings.Contains(recs[0].Action, "Manually verify") {
		t.Errorf("inferred action = %q", recs[0].Action)
	}
}

func TestGetTopRecommendations(t *testing.T) {
	recs := []models.Recommendation{
		{Severity: "critical"},
		{Severity: "high"},
		{Severity: "low"},
	}

	g := NewRecommendationGenerator()
	if top := g.GetTopRecommendations(recs, 2); len(top) != 2 {
		t.Errorf("expected 2, got %d", len(top))
	}
	if top := g.GetTopRecommendations(recs, 10); len(top) != 3 {
		t.Errorf("expected all 3, got %d", len(top))
	}
}
