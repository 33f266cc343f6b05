package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"
	"github.com/vulnpipe/vulnpipe/internal/discovery"
)

var doctorFormat string

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check which scanner binaries are available",
	Long: `Doctor probes the local environment for every registered scanner
binary and reports what a scan would actually execute.

Missing binaries are not fatal to scans: they degrade to missing-binary
envelopes, or to mock envelopes with --mock-missing.`,
	RunE: runDoctor,
}

func init() {
	doctorCmd.Flags().StringVar(&doctorFormat, "format", "text",
		"output format: text or json")
}

func runDoctor(cmd *cobra.Command, args []string) error {
	plan := discovery.New(exec.LookPath).Discover()

	if doctorFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(plan)
	}

	for _, td := range plan.Tools {
		if td.Available {
			fmt.Printf("  ✓ %-10s %s\n", td.Tool, td.BinaryPath)
		} else {
			fmt.Printf("  ✗ %-10s not found on PATH\n", td.Tool)
		}
	}

	fmt.Printf("\n%d/%d scanner(s) available\n", plan.TotalFound, len(plan.Tools))
	if plan.TotalFound == 0 {
		fmt.Println("No scanners installed. Scans will produce missing-binary envelopes;")
		fmt.Println("use --mock-missing to exercise the pipeline without binaries.")
	}
	return nil
}
