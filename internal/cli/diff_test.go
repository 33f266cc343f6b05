package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/vulnpipe/vulnpipe/internal/models"
)

func diffReport(runID string, findings ...models.Finding) *models.Report {
	return &models.Report{
		Meta:     models.RunMeta{RunID: runID, Targets: []string{"diff.test"}},
		Findings: findings,
	}
}

func TestComputeDiffNewAndResolved(t *testing.T) {
	baseline := diffReport("old",
		models.Finding{Type: "open-port", Target: "diff.test", Severity: models.SeverityLow, Source: models.Source{Tool: "nmap"}},
		models.Finding{Type: "nikto-issue", Target: "http://diff.test/", Severity: models.SeverityMedium, Source: models.Source{Tool: "nikto"}},
	)
	current := diffReport("new",
		models.Finding{Type: "open-port", Target: "diff.test", Severity: models.SeverityLow, Source: models.Source{Tool: "nmap"}},
		models.Finding{Type: "sqli-external-sqlmap", Target: "http://diff.test/item?id=1", Severity: models.SeverityCritical, Source: models.Source{Tool: "sqlmap"}},
	)

	result := computeDiff(baseline, current)

	if result.Summary.NewCount != 1 {
		t.Errorf("expected 1 new finding, got %d", result.Summary.NewCount)
	}
	if result.Summary.ResolvedCount != 1 {
		t.Errorf("expected 1 resolved finding, got %d", result.Summary.ResolvedCount)
	}
	if result.Summary.Delta != 0 {
		t.Errorf("expected delta 0, got %d", result.Summary.Delta)
	}
	if result.NewFindings[0].Type != "sqli-external-sqlmap" {
		t.Errorf("unexpected new finding: %s", result.NewFindings[0].Type)
	}
	if result.ResolvedFindings[0].Type != "nikto-issue" {
		t.Errorf("unexpected resolved finding: %s", result.ResolvedFindings[0].Type)
	}
	if result.Summary.NewBySeverity["critical"] != 1 {
		t.Errorf("expected 1 new critical, got %d", result.Summary.NewBySeverity["critical"])
	}
	if result.Summary.NewByTool["sqlmap"] != 1 {
		t.Errorf("expected 1 new sqlmap finding, got %d", result.Summary.NewByTool["sqlmap"])
	}
}

func TestComputeDiffIdentical(t *testing.T) {
	f := models.Finding{Type: "open-port", Target: "diff.test", Severity: models.SeverityLow, Source: models.Source{Tool: "nmap"}}
	result := computeDiff(diffReport("a", f), diffReport("b", f))

	if result.Summary.NewCount != 0 || result.Summary.ResolvedCount != 0 {
		t.Errorf("expected no drift, got new=%d resolved=%d",
			result.Summary.NewCount, result.Summary.ResolvedCount)
	}
}

func TestComputeDiffEmptyBaseline(t *testing.T) {
	f := models.Finding{Type: "open-port", Target: "diff.test", Severity: models.SeverityLow, Source: models.Source{Tool: "nmap"}}
	result := computeDiff(diffReport("a"), diffReport("b", f))

	if result.Summary.NewCount != 1 {
		t.Errorf("expected 1 new finding, got %d", result.Summary.NewCount)
	}
	if result.Summary.Delta != 1 {
		t.Errorf("expected delta 1, got %d", result.Summary.Delta)
	}
}

func TestFindingKey(t *testing.T) {
	a := models.Finding{Type: "open-port", Target: "h", Source: models.Source{Tool: "nmap"}}
	b := models.Finding{Type: "open-port", Target: "h", Source: models.Source{Tool: "nikto"}}
	if findingKey(a) == findingKey(b) {
		t.Error("findings from different tools must not collide")
	}
}

func TestOutputDiffJSON(t *testing.T) {
	result := computeDiff(diffReport("a"), diffReport("b"))
	out := filepath.Join(t.TempDir(), "diff.json")

	if err := outputDiff(result, "json", out); err != nil {
		t.Fatalf("outputDiff failed: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	var decoded DiffResult
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded.Baseline != "a" || decoded.Current != "b" {
		t.Errorf("unexpected run ids: %s / %s", decoded.Baseline, decoded.Current)
	}
}

func TestOutputDiffUnsupportedFormat(t *testing.T) {
	result := computeDiff(diffReport("a"), diffReport("b"))
	if err := outputDiff(result, "xml", ""); err == nil {
		t.Error("expected error for unsupported format")
	}
}
