package cli

import (
	"os"
	"testing"

	"github.com/vulnpipe/vulnpipe/internal/models"
	"github.com/vulnpipe/vulnpipe/internal/poc"
	"github.com/vulnpipe/vulnpipe/internal/reporter"
	"github.com/vulnpipe/vulnpipe/internal/storage"
)

func pocRunDir(t *testing.T) string {
	t.Helper()
	runDir := t.TempDir()

	report := &models.Report{
		Meta: models.RunMeta{RunID: "poc-run", Targets: []string{"poc.test"}},
		Findings: []models.Finding{
			{Type: "reflected-xss", Target: "http://poc.test/?q=1", UsedURL: "http://poc.test/?q=1",
				Severity: models.SeverityHigh, Source: models.Source{Tool: "nuclei"}},
			{Type: "sqli-external-sqlmap", Target: "http://poc.test/item?id=1", UsedURL: "http://poc.test/item?id=1",
				Severity: models.SeverityCritical, Source: models.Source{Tool: "sqlmap"}},
		},
	}
	if err := reporter.WriteReport(runDir, report); err != nil {
		t.Fatalf("WriteReport failed: %v", err)
	}
	return runDir
}

func TestRunPoCWritesArtifacts(t *testing.T) {
	setTestConfig(t)
	runDir := pocRunDir(t)

	if err := runPoC(pocCmd, []string{runDir}); err != nil {
		t.Fatalf("runPoC failed: %v", err)
	}

	pocs, err := poc.LoadPoCs(runDir)
	if err != nil {
		t.Fatalf("LoadPoCs failed: %v", err)
	}
	if len(pocs) != 2 {
		t.Errorf("expected 2 PoCs, got %d", len(pocs))
	}

	if _, err := os.Stat(storage.CompactPoCsPath(runDir)); err != nil {
		t.Errorf("expected compact pocs file: %v", err)
	}
}

func TestRunPoCMissingReport(t *testing.T) {
	setTestConfig(t)
	err := runPoC(pocCmd, []string{t.TempDir()})
	if err == nil {
		t.Fatal("expected error without a report")
	}
	if _, ok := err.(*ValidationError); !ok {
		t.Errorf("expected ValidationError, got %T", err)
	}
}

func TestRunCompact(t *testing.T) {
	setTestConfig(t)
	runDir := pocRunDir(t)

	if err := runPoC(pocCmd, []string{runDir}); err != nil {
		t.Fatalf("runPoC failed: %v", err)
	}
	// Compacting again must succeed and leave the artifacts in place.
	if err := runCompact(compactCmd, []string{runDir}); err != nil {
		t.Fatalf("runCompact failed: %v", err)
	}

	if _, err := os.Stat(storage.CompactPoCsPath(runDir)); err != nil {
		t.Errorf("expected compact pocs file: %v", err)
	}
}

func TestRunCompactMissingPoCs(t *testing.T) {
	setTestConfig(t)
	err := runCompact(compactCmd, []string{t.TempDir()})
	if err == nil {
		t.Fatal("expected error without pocs.json")
	}
	if _, ok := err.(*ValidationError); !ok {
		t.Errorf("expected ValidationError, got %T", err)
	}
}
