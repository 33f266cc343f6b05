// Package poc synthesizes read-only proof-of-concept snippets from a
// run's final report. Synthesis is pure derivation: it performs no
// network action, and payloads come from a fixed benign catalog per
// vulnerability class.
package poc

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vulnpipe/vulnpipe/internal/models"
	"github.com/vulnpipe/vulnpipe/internal/storage"
)

// Benign demonstration payloads, one per vulnerability class.
const (
	xssMarker   = "<script>alert(1)</script>"
	sqliPayload = "' OR '1'='1"
)

// Synthesizer derives PoCs from finding lists
type Synthesizer struct{}

// New creates a new synthesizer
func New() *Synthesizer {
	return &Synthesizer{}
}

// Synthesize derives one PoC per finding. Findings whose type contains
// "none" carry no vulnerability and are skipped. The PoC class is
// selected from the finding type: XSS and SQLi get class-specific
// payloads, everything else gets a generic read-only GET example.
func (s *Synthesizer) Synthesize(report *models.Report) []models.PoC {
	var pocs []models.PoC

	for _, f := range report.Findings {
		ftype := strings.ToLower(f.Type)
		if strings.Contains(ftype, "none") {
			continue
		}

		used := f.UsedURL
		if used == "" {
			used = f.Target
		}
		param := f.Parameter
		if param == "" {
			param = paramFromURL(used)
		}

		p := models.PoC{
			FindingType: f.Type,
			Target:      f.Target,
			UsedURL:     used,
			Severity:    f.Severity,
			Timestamp:   f.Timestamp,
			ProofURL:    used,
		}

		switch {
		case strings.Contains(ftype, "xss"):
			if param == "" {
				param = "q"
			}
			p.Method, p.Payload, p.Curl = buildGet(used, param, xssMarker)
			p.Note = "Non-destructive reflected XSS check (marker). Do not run automated destructive payloads."
		case strings.Contains(ftype, "sqli"):
			if param == "" {
				param = "id"
			}
			p.Method, p.Payload, p.Curl = buildGet(used, param, sqliPayload)
			p.Note = "Non-destructive SQLi probe (tautology). Avoid blind/time-based payloads here."
		default:
			p.Method = "GET"
			p.Curl = fmt.Sprintf("curl --silent --show-error %q", used)
			p.Note = "Generic read-only probe"
		}

		pocs = append(pocs, p)
	}

	return pocs
}

// buildGet renders a GET example. With a known query string the payload
// is URL-encoded into the parameter; without one only the bare URL is
// fetched.
func buildGet(url, param, payload string) (method, pl, curl string) {
	if strings.Contains(url, "?") {
		base := url[:strings.Index(url, "?")]
		return "GET", payload,
			fmt.Sprintf("curl -G --silent --show-error --data-urlencode %q %q", param+"="+payload, base)
	}
	return "GET", payload, fmt.Sprintf("curl --silent --show-error %q", url)
}

// paramFromURL guesses the injectable parameter from the first query
// pair.
func paramFromURL(url string) string {
	i := strings.Index(url, "?")
	if i < 0 {
		return ""
	}
	qs := url[i+1:]
	j := strings.Index(qs, "=")
	if j <= 0 {
		return ""
	}
	name := qs[:j]
	if k := strings.Index(name, "&"); k >= 0 {
		return ""
	}
	return name
}

// Compact deduplicates PoCs by proof URL (target when no URL is known),
// first seen wins. Compacting already-compact input yields the same
// output.
func Compact(pocs []models.PoC) *models.CompactReport {
	seen := make(map[string]bool)
	compacted := []models.CompactPoC{}

	for i := range pocs {
		key := pocs[i].DedupKey()
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true

		c := models.CompactPoC{
			ProofURL:    key,
			FindingType: pocs[i].FindingType,
			Target:      pocs[i].Target,
			Curl:        pocs[i].Curl,
		}
		if captured := pocs[i].Captured; captured != nil {
			c.Status = captured.Status
			c.Snippet = models.Truncate(captured.Snippet, models.SnippetCap)
		}
		compacted = append(compacted, c)
	}

	return &models.CompactReport{Count: len(compacted), PoCs: compacted}
}

// WritePoCs persists both the full PoC list and its compact view under
// the run's reports directory.
func WritePoCs(runDir string, pocs []models.PoC) error {
	dir := storage.ReportsDir(runDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create reports directory: %w", err)
	}

	if pocs == nil {
		pocs = []models.PoC{}
	}
	data, err := json.MarshalIndent(pocs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal pocs: %w", err)
	}
	if err := os.WriteFile(storage.PoCsPath(runDir), data, 0o644); err != nil {
		return fmt.Errorf("failed to write pocs: %w", err)
	}

	compact := Compact(pocs)
	data, err = json.MarshalIndent(compact, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal compact pocs: %w", err)
	}
	if err := os.WriteFile(storage.CompactPoCsPath(runDir), data, 0o644); err != nil {
		return fmt.Errorf("failed to write compact pocs: %w", err)
	}
	return nil
}

// LoadPoCs reads a previously written PoC list from a run.
func LoadPoCs(runDir string) ([]models.PoC, error) {
	data, err := os.ReadFile(storage.PoCsPath(runDir))
	if err != nil {
		return nil, fmt.Errorf("failed to read pocs: %w", err)
	}
	var pocs []models.PoC
	if err := json.Unmarshal(data, &pocs); err != nil {
		return nil, fmt.Errorf("failed to parse pocs: %w", err)
	}
	return pocs, nil
}

// ReportForPoCs picks the report file to synthesize from, preferring
// the enriched variants an external PoC runner may have left behind.
func ReportForPoCs(runDir string) (*models.Report, error) {
	dir := storage.ReportsDir(runDir)
	for _, name := range []string{
		storage.ReportWithPoCsMapFile,
		storage.ReportWithPoCsFile,
		storage.FinalReportFile,
	} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return storage.LoadReportFile(path)
		}
	}
	return nil, fmt.Errorf("no final report found in %s", dir)
}
