package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/vulnpipe/vulnpipe/internal/models"
	"github.com/vulnpipe/vulnpipe/internal/storage"
)

var (
	exportFormat string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export <run-dir>",
	Short: "Export a run's findings for external tooling",
	Long: `Export a run's final report in formats suitable for ticketing,
compliance evidence, and code-scanning platforms.

Supported formats:
  csv    Tabular format for spreadsheets
  json   Structured JSON for programmatic consumption
  sarif  SARIF 2.1.0 for GitHub Advanced Security and code scanning

Example:
  vulnpipe export runs/example.test/<run-id> --format sarif -o results.sarif
  vulnpipe export <run-dir> --format csv -o findings.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv",
		"output format: csv, json, or sarif")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "",
		"write output to file (default: stdout)")
}

// ExportRecord is a single row in the findings export.
type ExportRecord struct {
	RunID       string `json:"run_id"`
	Started     string `json:"started"`
	Tool        string `json:"tool"`
	Type        string `json:"type"`
	Severity    string `json:"severity"`
	Target      string `json:"target"`
	Evidence    string `json:"evidence"`
	Destructive bool   `json:"destructive"`
}

// Export is the full export payload.
type Export struct {
	ExportedAt   string         `json:"exported_at"`
	RunID        string         `json:"run_id"`
	FindingCount int            `json:"finding_count"`
	Records      []ExportRecord `json:"records"`
}

func runExport(cmd *cobra.Command, args []string) error {
	report, err := storage.LoadReport(args[0])
	if err != nil {
		return &ValidationError{Message: err.Error()}
	}

	logVerbose("exporting %d finding(s) from run %s", len(report.Findings), report.Meta.RunID)

	var writer *os.File
	if exportOutput != "" {
		writer, err = os.Create(exportOutput)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() { _ = writer.Close() }()
	} else {
		writer = os.Stdout
	}

	switch exportFormat {
	case "csv":
		return writeCSV(writer, buildExport(report))
	case "json":
		return writeExportJSON(writer, buildExport(report))
	case "sarif":
		return writeSARIF(writer, report)
	default:
		return fmt.Errorf("unsupported format: %s (use csv, json, or sarif)", exportFormat)
	}
}

func buildExport(report *models.Report) *Export {
	started := ""
	if !report.Meta.StartedAt.IsZero() {
		started = report.Meta.StartedAt.Format(time.RFC3339)
	}

	var records []ExportRecord
	for _, f := range report.Findings {
		records = append(records, ExportRecord{
			RunID:       report.Meta.RunID,
			Started:     started,
			Tool:        f.Source.Tool,
			Type:        f.Type,
			Severity:    models.SeverityWord(f.Severity),
			Target:      f.Target,
			Evidence:    f.Evidence,
			Destructive: f.Destructive,
		})
	}

	// Sort by severity (critical first), then tool, then target.
	sevOrder := map[string]int{"critical": 0, "high": 1, "medium": 2, "low": 3, "info": 4}
	sort.SliceStable(records, func(i, j int) bool {
		si, sj := sevOrder[records[i].Severity], sevOrder[records[j].Severity]
		if si != sj {
			return si < sj
		}
		if records[i].Tool != records[j].Tool {
			return records[i].Tool < records[j].Tool
		}
		return records[i].Target < records[j].Target
	})

	return &Export{
		ExportedAt:   time.Now().UTC().Format(time.RFC3339),
		RunID:        report.Meta.RunID,
		FindingCount: len(records),
		Records:      records,
	}
}

func writeCSV(w *os.File, export *Export) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := []string{
		"run_id", "started", "tool", "type", "severity",
		"target", "evidence", "destructive",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, r := range export.Records {
		row := []string{
			r.RunID, r.Started, r.Tool, r.Type, r.Severity,
			r.Target, r.Evidence, fmt.Sprintf("%t", r.Destructive),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	return nil
}

func writeExportJSON(w *os.File, export *Export) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(export)
}

// SARIF 2.1.0 output for GitHub Advanced Security integration.
// Minimal structures — only what's needed for valid SARIF.

type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version"`
	Rules   []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string             `json:"id"`
	ShortDescription sarifMessage       `json:"shortDescription"`
	DefaultConfig    sarifDefaultConfig `json:"defaultConfiguration"`
}

type sarifDefaultConfig struct {
	Level string `json:"level"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysical `json:"physicalLocation"`
}

type sarifPhysical struct {
	ArtifactLocation sarifArtifact `json:"artifactLocation"`
}

type sarifArtifact struct {
	URI string `json:"uri"`
}

func writeSARIF(w *os.File, report *models.Report) error {
	rulesMap := map[string]sarifRule{}
	var results []sarifResult

	for _, f := range report.Findings {
		ruleID := f.Source.Tool + "/" + f.Type
		if _, exists := rulesMap[ruleID]; !exists {
			rulesMap[ruleID] = sarifRule{
				ID:               ruleID,
				ShortDescription: sarifMessage{Text: f.Source.Tool + " " + f.Type},
				DefaultConfig:    sarifDefaultConfig{Level: sarifLevel(f.Severity)},
			}
		}

		results = append(results, sarifResult{
			RuleID:  ruleID,
			Level:   sarifLevel(f.Severity),
			Message: sarifMessage{Text: formatFindingMessage(f)},
			Locations: []sarifLocation{{
				PhysicalLocation: sarifPhysical{
					ArtifactLocation: sarifArtifact{URI: f.Target},
				},
			}},
		})
	}

	var rules []sarifRule
	for _, r := range rulesMap {
		rules = append(rules, r)
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].ID < rules[j].ID })

	log := sarifLog{
		Schema:  "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json",
		Version: "2.1.0",
		Runs: []sarifRun{{
			Tool: sarifTool{
				Driver: sarifDriver{
					Name:    "vulnpipe",
					Version: buildVersion,
					Rules:   rules,
				},
			},
			Results: results,
		}},
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(log)
}

func sarifLevel(severity int) string {
	switch {
	case severity >= models.SeverityHigh:
		return "error"
	case severity == models.SeverityMedium:
		return "warning"
	default:
		return "note"
	}
}

func formatFindingMessage(f models.Finding) string {
	parts := []string{f.Source.Tool + ": " + f.Type + " — " + f.Target}
	if f.Evidence != "" {
		parts = append(parts, f.Evidence)
	}
	return strings.Join(parts, ". ")
}
