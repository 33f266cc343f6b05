package cli

import (
	"fmt"
	"os"

	"github.com/vulnpipe/vulnpipe/internal/models"
	"github.com/vulnpipe/vulnpipe/internal/policy"
	"github.com/vulnpipe/vulnpipe/internal/reporter"
)

// renderReport prints a report to stdout or a file in the requested
// format. Shared between scan and report commands.
func renderReport(report *models.Report, format, outputPath string) error {
	var writer *os.File
	if outputPath == "" {
		writer = os.Stdout
	} else {
		var err error
		writer, err = os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() { _ = writer.Close() }()
	}

	switch format {
	case "text":
		return reporter.NewTextReporter(writer).Generate(report)

	case "json":
		return reporter.NewJSONReporter(writer, true).Generate(report)

	case "both":
		if err := reporter.NewTextReporter(writer).Generate(report); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(writer, "\n=== JSON Output ===\n\n"); err != nil {
			return err
		}
		return reporter.NewJSONReporter(writer, true).Generate(report)

	default:
		return fmt.Errorf("unsupported format: %s (use text, json, or both)", format)
	}
}

// enforcePolicy evaluates the nearest .vulnpipe-policy.yaml against the
// report. No policy file means no gate.
func enforcePolicy(report *models.Report) error {
	policyPath := policy.FindPolicyFile()
	if policyPath == "" {
		return nil
	}
	logVerbose("found policy file: %s", policyPath)

	pol, err := policy.LoadFromFile(policyPath)
	if err != nil {
		logError("failed to load policy: %v", err)
		return err
	}

	result := pol.Evaluate(report)
	if !result.Pass {
		for _, v := range result.Violations {
			logError("policy violation [%s]: %s", v.Rule, v.Message)
		}
		return &ThresholdExceededError{
			FindingCount: report.Summary.TotalFindings,
			Threshold:    0,
		}
	}
	logVerbose("policy check passed")
	return nil
}
