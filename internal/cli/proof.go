package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/vulnpipe/vulnpipe/internal/safety"
	"github.com/vulnpipe/vulnpipe/internal/storage"
)

var (
	proofValidate  bool
	proofPrintOnly bool
)

var proofCmd = &cobra.Command{
	Use:   "proof <run-dir>",
	Short: "Create or validate the proof-of-control token for a run",
	Long: `Proof manages the safety-gate token bound to a run directory.

Without flags it generates a fresh token and persists it to
proof_of_control.txt (owner-only permission). Destructive probes for
this run are only allowed when VULNPIPE_DESTRUCTIVE is set and
VULNPIPE_PROOF matches this token exactly.

With --validate, it compares VULNPIPE_PROOF against the persisted
token and reports whether the gate would open.

With --print-only, the generated token is printed but not persisted.`,
	Args: cobra.ExactArgs(1),
	RunE: runProof,
}

func init() {
	proofCmd.Flags().BoolVar(&proofValidate, "validate", false,
		"check VULNPIPE_PROOF against the persisted token")
	proofCmd.Flags().BoolVar(&proofPrintOnly, "print-only", false,
		"generate and print a token without persisting it")
}

func runProof(cmd *cobra.Command, args []string) error {
	runDir := args[0]

	if info, err := os.Stat(runDir); err != nil || !info.IsDir() {
		return &ValidationError{Message: fmt.Sprintf("not a run directory: %s", runDir)}
	}

	if proofValidate {
		return validateProof(runDir)
	}

	token, err := safety.GenerateToken(runDir)
	if err != nil {
		return err
	}

	if proofPrintOnly {
		fmt.Println(token)
		return nil
	}

	if err := safety.PersistToken(runDir, token); err != nil {
		return err
	}

	fmt.Printf("Proof token written to %s\n\n", storage.ProofPath(runDir))
	fmt.Println("To enable destructive probes for this run:")
	fmt.Println("  export VULNPIPE_DESTRUCTIVE=1")
	fmt.Printf("  export VULNPIPE_PROOF=%s\n", token)
	return nil
}

func validateProof(runDir string) error {
	sctx := safetyContextFromEnv()

	persisted, ok := safety.LoadToken(runDir)
	if !ok {
		return &ValidationError{Message: "no persisted proof token for this run"}
	}

	switch {
	case !sctx.Enabled:
		fmt.Println("Gate closed: VULNPIPE_DESTRUCTIVE is not set")
	case sctx.SuppliedToken != persisted:
		fmt.Println("Gate closed: VULNPIPE_PROOF does not match the persisted token")
	default:
		fmt.Println("Gate open: destructive probes permitted for this run")
		return nil
	}

	return &ValidationError{Message: "safety gate validation failed"}
}
