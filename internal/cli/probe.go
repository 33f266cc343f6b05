package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/vulnpipe/vulnpipe/internal/aggregator"
	"github.com/vulnpipe/vulnpipe/internal/probe"
	"github.com/vulnpipe/vulnpipe/internal/reporter"
	"github.com/vulnpipe/vulnpipe/internal/storage"
)

var (
	probeURL     string
	probeTimeout time.Duration
)

var probeCmd = &cobra.Command{
	Use:   "probe <run-dir>",
	Short: "Run the gated command-injection probe against a URL",
	Long: `Probe sends a fixed catalog of benign command-injection payloads
(";id", "&&id", "|id", backtick id) against the URL's query string and
inspects responses for command-output markers. It stops at the first
confirmed match.

The probe only runs when the safety gate passes: VULNPIPE_DESTRUCTIVE
must be set and VULNPIPE_PROOF must match the run's persisted token
(see 'vulnpipe proof'). A denied gate is a refusal, not an error.

A confirmed injection is appended to the run's final report when one
exists.`,
	Args: cobra.ExactArgs(1),
	RunE: runProbe,
}

func init() {
	probeCmd.Flags().StringVarP(&probeURL, "url", "u", "",
		"target URL including query string (required)")
	probeCmd.Flags().DurationVar(&probeTimeout, "timeout", probe.DefaultRequestTimeout,
		"per-request timeout")
	_ = probeCmd.MarkFlagRequired("url")
}

func runProbe(cmd *cobra.Command, args []string) error {
	runDir := args[0]
	sctx := safetyContextFromEnv()

	engine := probe.New(nil).WithTimeout(probeTimeout)
	result := engine.Probe(context.Background(), runDir, probeURL, sctx)

	if result.Skipped {
		fmt.Printf("Probe skipped: %s\n", result.SkipReason)
		return nil
	}

	for _, a := range result.Attempts {
		line := fmt.Sprintf("  %-6q %s", a.Payload, a.Outcome)
		if a.Status != 0 {
			line += fmt.Sprintf(" (HTTP %d)", a.Status)
		}
		fmt.Println(line)
	}

	if result.Finding == nil {
		fmt.Printf("No command injection confirmed after %d attempt(s).\n", len(result.Attempts))
		return nil
	}

	fmt.Printf("\nCommand injection CONFIRMED on %s (payload %q)\n",
		result.Finding.Target, result.Finding.Payload)

	// Fold the finding into the run's report if one has been written.
	report, err := storage.LoadReport(runDir)
	if err != nil {
		logVerbose("no report to update: %v", err)
		return nil
	}

	aggregator.New().Append(report, *result.Finding)
	if err := reporter.WriteReport(runDir, report); err != nil {
		return err
	}
	fmt.Printf("Finding appended to %s\n", storage.FinalReportPath(runDir))
	return nil
}
