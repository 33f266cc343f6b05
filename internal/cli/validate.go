package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/vulnpipe/vulnpipe/internal/models"
	"github.com/vulnpipe/vulnpipe/internal/storage"
	"github.com/vulnpipe/vulnpipe/internal/validator"
)

var validateCmd = &cobra.Command{
	Use:   "validate <run-dir>",
	Short: "Validate a run's envelope checkpoints",
	Long: `Validate checks every tool envelope under generated/tools/ against the
envelope schema: tool name and execution status present, status from the
known set, port ranges sane. Useful for debugging adapter output before
running 'vulnpipe report'.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	dir := storage.GeneratedToolsDir(args[0])

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return &ValidationError{Message: fmt.Sprintf("no envelope files in %s", dir)}
	}

	v := validator.New()
	invalid := 0
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			fmt.Printf("  ✗ %s: %v\n", filepath.Base(file), err)
			invalid++
			continue
		}

		var env models.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			fmt.Printf("  ✗ %s: invalid JSON: %v\n", filepath.Base(file), err)
			invalid++
			continue
		}

		if err := v.ValidateEnvelope(&env); err != nil {
			fmt.Printf("  ✗ %s: %v\n", filepath.Base(file), err)
			invalid++
			continue
		}

		fmt.Printf("  ✓ %s (%s)\n", filepath.Base(file), env.Meta.Status)
	}

	fmt.Printf("\n%d/%d envelope(s) valid\n", len(files)-invalid, len(files))
	if invalid > 0 {
		return &ValidationError{Message: fmt.Sprintf("%d invalid envelope(s)", invalid)}
	}
	return nil
}
