package poc

import (
	"encoding/json"
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/vulnpipe/vulnpipe/internal/models"
	"github.com/vulnpipe/vulnpipe/internal/storage"
)

func reportWith(findings ...models.Finding) *models.Report {
	return &models.Report{
		Meta:     models.RunMeta{RunID: "run-1", Targets: []string{"http://t"}},
		Findings: findings,
	}
}

func TestSynthesizeSQLi(t *testing.T) {
	report := reportWith(models.Finding{
		Type:     "sqli-external-sqlmap",
		Target:   "http://t",
		UsedURL:  "http://t/search.php?q=1",
		Severity: models.SeverityCritical,
		Source:   models.Source{Tool: "sqlmap"},
	})

	pocs := New().Synthesize(report)
	if len(pocs) != 1 {
		t.Fatalf("expected 1 poc, got %d", len(pocs))
	}

	p := pocs[0]
	if p.Method != "GET" {
		t.Errorf("method = %q", p.Method)
	}
	if p.Payload != "' OR '1'='1" {
		t.Errorf("payload = %q", p.Payload)
	}
	if !strings.Contains(p.Curl, "--data-urlencode") {
		t.Errorf("curl missing encoded payload: %q", p.Curl)
	}
	if !strings.Contains(p.Curl, `"q=' OR '1'='1"`) {
		t.Errorf("curl does not use the URL's parameter: %q", p.Curl)
	}
	if strings.Contains(p.Curl, "?q=1") {
		t.Errorf("query string not stripped from base URL: %q", p.Curl)
	}
	if p.ProofURL != "http://t/search.php?q=1" {
		t.Errorf("proof_url = %q", p.ProofURL)
	}
}

func TestSynthesizeXSS(t *testing.T) {
	report := reportWith(models.Finding{
		Type:     "xss-reflected",
		Target:   "http://t",
		UsedURL:  "http://t/page?input=x",
		Severity: models.SeverityHigh,
	})

	pocs := New().Synthesize(report)
	if len(pocs) != 1 {
		t.Fatalf("expected 1 poc, got %d", len(pocs))
	}
	if pocs[0].Payload != "<script>alert(1)</script>" {
		t.Errorf("payload = %q", pocs[0].Payload)
	}
	if !strings.Contains(pocs[0].Curl, "input=") {
		t.Errorf("parameter not extracted from URL: %q", pocs[0].Curl)
	}
}

func TestSynthesizeGeneric(t *testing.T) {
	report := reportWith(models.Finding{
		Type:     "open-port",
		Target:   "10.0.0.5",
		Severity: models.SeverityLow,
	})

	pocs := New().Synthesize(report)
	if len(pocs) != 1 {
		t.Fatalf("expected 1 poc, got %d", len(pocs))
	}
	p := pocs[0]
	if p.Method != "GET" || p.Payload != "" {
		t.Errorf("generic poc unexpected: %+v", p)
	}
	if p.Note != "Generic read-only probe" {
		t.Errorf("note = %q", p.Note)
	}
	// UsedURL falls back to the target.
	if p.ProofURL != "10.0.0.5" {
		t.Errorf("proof_url = %q", p.ProofURL)
	}
}

func TestSynthesizeSkipsNoneFindings(t *testing.T) {
	report := reportWith(
		models.Finding{Type: "sqli-none", Target: "http://t"},
		models.Finding{Type: "open-port", Target: "10.0.0.5"},
	)

	pocs := New().Synthesize(report)
	if len(pocs) != 1 {
		t.Fatalf("expected 1 poc, got %d", len(pocs))
	}
	if pocs[0].FindingType != "open-port" {
		t.Errorf("wrong finding survived: %q", pocs[0].FindingType)
	}
}

func TestSynthesizeExplicitParameterWins(t *testing.T) {
	report := reportWith(models.Finding{
		Type:      "sqli-external-sqlmap",
		Target:    "http://t",
		UsedURL:   "http://t/q.php?id=1",
		Parameter: "user",
	})

	pocs := New().Synthesize(report)
	if !strings.Contains(pocs[0].Curl, "user=") {
		t.Errorf("explicit parameter ignored: %q", pocs[0].Curl)
	}
}

func TestCompact(t *testing.T) {
	status := 200
	pocs := []models.PoC{
		{FindingType: "sqli", Target: "http://t", ProofURL: "http://t/a?id=1", Curl: "curl a"},
		{FindingType: "sqli", Target: "http://t", ProofURL: "http://t/a?id=1", Curl: "curl dup"},
		{FindingType: "xss", Target: "http://t", ProofURL: "http://t/b?q=1",
			Captured: &models.Capture{Status: &status, Snippet: strings.Repeat("s", 500)}},
		{FindingType: "open-port", Target: "10.0.0.5"},
	}

	compact := Compact(pocs)
	if compact.Count != 3 {
		t.Fatalf("count = %d, want 3", compact.Count)
	}

	// First seen wins.
	if compact.PoCs[0].Curl != "curl a" {
		t.Errorf("dedup kept wrong entry: %q", compact.PoCs[0].Curl)
	}
	// Target is the key when there is no proof URL.
	if compact.PoCs[2].ProofURL != "10.0.0.5" {
		t.Errorf("fallback key = %q", compact.PoCs[2].ProofURL)
	}
	// Snippet capped.
	if len(compact.PoCs[1].Snippet) != models.SnippetCap {
		t.Errorf("snippet length = %d", len(compact.PoCs[1].Snippet))
	}
	if compact.PoCs[1].Status == nil || *compact.PoCs[1].Status != 200 {
		t.Error("captured status dropped")
	}
}

func TestCompactIdempotent(t *testing.T) {
	pocs := []models.PoC{
		{FindingType: "sqli", Target: "http://t", ProofURL: "http://t/a"},
		{FindingType: "sqli", Target: "http://t", ProofURL: "http://t/a"},
		{FindingType: "xss", Target: "http://u", ProofURL: "http://u/b"},
	}

	first := Compact(pocs)

	// Re-compact the already deduplicated set.
	var again []models.PoC
	for _, c := range first.PoCs {
		again = append(again, models.PoC{
			FindingType: c.FindingType,
			Target:      c.Target,
			ProofURL:    c.ProofURL,
			Curl:        c.Curl,
		})
	}
	second := Compact(again)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("compaction not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestWriteAndLoadPoCs(t *testing.T) {
	runDir := t.TempDir()
	pocs := []models.PoC{
		{FindingType: "sqli", Target: "http://t", ProofURL: "http://t/a", Curl: "curl a"},
	}

	if err := WritePoCs(runDir, pocs); err != nil {
		t.Fatalf("WritePoCs() error: %v", err)
	}

	loaded, err := LoadPoCs(runDir)
	if err != nil {
		t.Fatalf("LoadPoCs() error: %v", err)
	}
	if len(loaded) != 1 || loaded[0].ProofURL != "http://t/a" {
		t.Errorf("round trip lost data: %+v", loaded)
	}

	data, err := os.ReadFile(storage.CompactPoCsPath(runDir))
	if err != nil {
		t.Fatalf("compact file not written: %v", err)
	}
	var compact models.CompactReport
	if err := json.Unmarshal(data, &compact); err != nil {
		t.Fatalf("compact file invalid: %v", err)
	}
	if compact.Count != 1 {
		t.Errorf("compact count = %d", compact.Count)
	}
}

func TestWritePoCsEmptyList(t *testing.T) {
	runDir := t.TempDir()
	if err := WritePoCs(runDir, nil); err != nil {
		t.Fatalf("WritePoCs() error: %v", err)
	}
	data, err := os.ReadFile(storage.PoCsPath(runDir))
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(data)) == "null" {
		t.Error("empty poc list must serialize as [], not null")
	}
}

func TestReportForPoCsPrefersEnriched(t *testing.T) {
	runDir := t.TempDir()
	dir := storage.ReportsDir(runDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}

	write := func(name, runID string) {
		report := models.Report{Meta: models.RunMeta{RunID: runID}}
		data, err := json.Marshal(report)
		if err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(dir+"/"+name, data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write(storage.FinalReportFile, "base")
	write(storage.ReportWithPoCsMapFile, "enriched")

	report, err := ReportForPoCs(runDir)
	if err != nil {
		t.Fatalf("ReportForPoCs() error: %v", err)
	}
	if report.Meta.RunID != "enriched" {
		t.Errorf("picked %q, want enriched variant", report.Meta.RunID)
	}
}
