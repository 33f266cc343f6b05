package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/vulnpipe/vulnpipe/internal/storage"
)

var runsFormat string

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List completed runs with finding counts",
	Long: `Runs scans the run tree for completed runs (directories holding
reports/final_report.json) and lists them with per-run finding counts.
Half-written or unreadable runs are skipped.`,
	RunE: runRuns,
}

func init() {
	runsCmd.Flags().StringVar(&runsFormat, "format", "text",
		"output format: text or json")
}

func runRuns(cmd *cobra.Command, args []string) error {
	runsPath, err := cfg.RunsPath()
	if err != nil {
		return err
	}

	store := storage.NewLocal(runsPath)
	runs, err := store.ListRuns()
	if err != nil {
		return err
	}

	if runsFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Println("No completed runs found. Run 'vulnpipe scan' first.")
		return nil
	}

	fmt.Printf("%-24s %-38s %-20s %s\n", "HOST", "RUN", "STARTED", "FINDINGS")
	for _, r := range runs {
		fmt.Printf("%-24s %-38s %-20s %d\n", r.Host, r.RunID, r.Started, r.Findings)
	}
	fmt.Printf("\n%d run(s)\n", len(runs))
	return nil
}
