package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/vulnpipe/vulnpipe/internal/config"
)

const (
	ExitOK           = 0 // Success
	ExitPolicyFail   = 1 // Findings exceed policy or severity threshold
	ExitInvalidInput = 2 // Validation or parse error
	ExitRuntimeError = 3 // I/O, permissions, or runtime error
)

var (
	// Global config instance
	cfg *config.Config

	// Global flags
	configFile string
	verbose    bool
	debug      bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "vulnpipe",
	Short: "VulnPipe - Automated recon and vulnerability scan pipeline",
	Long: `VulnPipe invokes external scanners (nmap, nikto, nuclei, wpscan, sqlmap,
medusa), normalizes their output into canonical findings, aggregates them
into a per-run report, and derives safe proof-of-concept artifacts.

Quick start:
  vulnpipe doctor
  vulnpipe scan --target http://example.test
  vulnpipe runs
  vulnpipe browse <run-dir>

Other commands:
  vulnpipe report <run-dir>
  vulnpipe poc <run-dir>
  vulnpipe proof <run-dir>
  vulnpipe diff <run-dir-a> <run-dir-b>
  vulnpipe export <run-dir> --format sarif`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Operator env vars (safety gate, config overrides) may live in
		// a local .env; absence is fine.
		_ = godotenv.Load()

		var err error
		cfg, err = config.LoadFromFile(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// Override config with flags if provided
		if verbose {
			cfg.Verbose = true
		}
		if debug {
			cfg.Debug = true
		}

		return nil
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error
		os.Exit(HandleError(err))
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (default: ~/vulnpipe.yaml or ./vulnpipe.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"verbose output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"debug mode (very verbose)")

	// Add subcommands
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(pocCmd)
	rootCmd.AddCommand(compactCmd)
	rootCmd.AddCommand(proofCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(versionCmd)
}

// buildVersion is overridden via SetVersion from the main package.
var buildVersion = "dev"

// SetVersion records the build-time version string.
func SetVersion(v string) {
	if v != "" {
		buildVersion = v
	}
}

// versionCmd shows version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("VulnPipe %s\n", buildVersion)
		fmt.Println("Automated recon and vulnerability scan pipeline")
	},
}

// HandleError determines the appropriate exit code for an error
func HandleError(err error) int {
	if err == nil {
		return ExitOK
	}

	switch err.(type) {
	case *ValidationError:
		return ExitInvalidInput
	case *ThresholdExceededError:
		return ExitPolicyFail
	default:
		return ExitRuntimeError
	}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ThresholdExceededError represents a policy or severity gate failure
type ThresholdExceededError struct {
	FindingCount int
	Threshold    int
}

func (e *ThresholdExceededError) Error() string {
	return fmt.Sprintf("finding count (%d) exceeds threshold (%d)", e.FindingCount, e.Threshold)
}

// logVerbose prints a message if verbose mode is enabled
func logVerbose(format string, args ...interface{}) {
	if cfg != nil && cfg.Verbose {
		fmt.Fprintf(os.Stderr, "[INFO] "+format+"\n", args...)
	}
}

// logDebug prints a message if debug mode is enabled
func logDebug(format string, args ...interface{}) {
	if cfg != nil && cfg.Debug {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}

// logError prints an error message
func logError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "[ERROR] "+format+"\n", args...)
}
