// Package reporter renders run reports to machine- and human-readable
// formats and persists them under the run's reports directory.
package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/vulnpipe/vulnpipe/internal/models"
	"github.com/vulnpipe/vulnpipe/internal/storage"
)

// JSONReporter generates machine-readable JSON reports
type JSONReporter struct {
	writer io.Writer
	pretty bool
}

// NewJSONReporter creates a new JSON reporter
func NewJSONReporter(writer io.Writer, pretty bool) *JSONReporter {
	return &JSONReporter{
		writer: writer,
		pretty: pretty,
	}
}

// Generate writes the full report as JSON
func (r *JSONReporter) Generate(report *models.Report) error {
	var data []byte
	var err error

	if r.pretty {
		data, err = json.MarshalIndent(report, "", "  ")
	} else {
		data, err = json.Marshal(report)
	}
	if err != nil {
		return err
	}

	if _, err = r.writer.Write(data); err != nil {
		return err
	}

	// Trailing newline for terminal output
	_, err = r.writer.Write([]byte("\n"))
	return err
}

// GenerateSummaryOnly writes a compact JSON summary without the finding
// list
func (r *JSONReporter) GenerateSummaryOnly(report *models.Report) error {
	summary := struct {
		Meta            models.RunMeta          `json:"meta"`
		Summary         models.Summary          `json:"summary"`
		Trend           *models.Trend           `json:"trend,omitempty"`
		Recommendations []models.Recommendation `json:"recommendations,omitempty"`
	}{
		Meta:            report.Meta,
		Summary:         report.Summary,
		Trend:           report.Trend,
		Recommendations: report.Recommendations,
	}

	var data []byte
	var err error

	if r.pretty {
		data, err = json.MarshalIndent(summary, "", "  ")
	} else {
		data, err = json.Marshal(summary)
	}
	if err != nil {
		return err
	}

	if _, err = r.writer.Write(data); err != nil {
		return err
	}

	_, err = r.writer.Write([]byte("\n"))
	return err
}

// WriteReport persists a report in both formats under the run's reports
// directory. A report that cannot be written is a hard failure: every
// later stage reads these files.
func WriteReport(runDir string, report *models.Report) error {
	dir := storage.ReportsDir(runDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create reports directory: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(storage.FinalReportPath(runDir), append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	textFile, err := os.Create(storage.FinalReportTextPath(runDir))
	if err != nil {
		return fmt.Errorf("failed to create text report: %w", err)
	}
	defer textFile.Close()

	if err := NewTextReporter(textFile).Generate(report); err != nil {
		return fmt.Errorf("failed to write text report: %w", err)
	}
	return nil
}
