package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/vulnpipe/vulnpipe/internal/storage"
	"github.com/vulnpipe/vulnpipe/internal/tui"
	"golang.org/x/term"
)

var browseCmd = &cobra.Command{
	Use:   "browse <run-dir>",
	Short: "Browse a run's findings in an interactive terminal UI",
	Long: `Browse opens the run's final report in a full-screen table with
search (/), tool filter (t), sort cycling (s), and clipboard copy (c).

Requires an interactive terminal; in pipes or CI use
'vulnpipe report <run-dir> --format json' instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runBrowse,
}

func runBrowse(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("browse needs an interactive terminal (try 'vulnpipe report %s')", args[0])
	}

	report, err := storage.LoadReport(args[0])
	if err != nil {
		return &ValidationError{Message: err.Error()}
	}

	return tui.Run(report)
}
