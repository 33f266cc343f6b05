package cli

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/vulnpipe/vulnpipe/internal/aggregator"
	"github.com/vulnpipe/vulnpipe/internal/config"
	"github.com/vulnpipe/vulnpipe/internal/discovery"
	"github.com/vulnpipe/vulnpipe/internal/models"
	"github.com/vulnpipe/vulnpipe/internal/probe"
	"github.com/vulnpipe/vulnpipe/internal/reporter"
	"github.com/vulnpipe/vulnpipe/internal/runner"
	"github.com/vulnpipe/vulnpipe/internal/safety"
	"github.com/vulnpipe/vulnpipe/internal/storage"
)

var (
	scanTarget      string
	scanDestructive bool
	scanFormat      string
	scanOutput      string
	scanTimeout     time.Duration
	scanMock        bool
	scanProfile     string
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run the full scan pipeline against a target",
	Long: `Scan performs a full pipeline cycle:

  1. Allocate a run directory and proof-of-control token
  2. Execute every registered scanner against the target
  3. Normalize tool envelopes into canonical findings
  4. Aggregate into a report with trend and recommendations
  5. Persist final_report.json + final_report.txt

With --destructive, the command-injection probe runs after aggregation,
but only when the safety gate passes: VULNPIPE_DESTRUCTIVE must be set
and VULNPIPE_PROOF must match the run's persisted token. A denied gate
skips the probe; it never fails the scan.

Missing scanner binaries degrade to missing-binary envelopes, or to
mock envelopes with --mock-missing (useful in CI).`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVarP(&scanTarget, "target", "t", "",
		"target host or URL (required)")
	scanCmd.Flags().BoolVar(&scanDestructive, "destructive", false,
		"attempt gated destructive probes after aggregation")
	scanCmd.Flags().StringVar(&scanFormat, "format", "",
		"output format: text, json, or both (default from config)")
	scanCmd.Flags().StringVarP(&scanOutput, "output", "o", "",
		"write report output to file instead of stdout")
	scanCmd.Flags().DurationVar(&scanTimeout, "timeout", 0,
		"per-tool execution timeout (default: per-tool registry values)")
	scanCmd.Flags().BoolVar(&scanMock, "mock-missing", false,
		"substitute mock envelopes for missing scanner binaries")
	scanCmd.Flags().StringVar(&scanProfile, "profile", "",
		"scan profile: normal or thorough (default from config)")
	_ = scanCmd.MarkFlagRequired("target")
}

func runScan(cmd *cobra.Command, args []string) error {
	opts := scanOptions{
		Target:      scanTarget,
		Destructive: scanDestructive,
		Format:      scanFormat,
		Output:      scanOutput,
		Timeout:     scanTimeout,
		MockMissing: scanMock || cfg.MockMissing,
		Profile:     scanProfile,
		Safety:      safetyContextFromEnv(),
	}
	if opts.Format == "" {
		opts.Format = cfg.Format
	}
	if opts.Timeout == 0 {
		opts.Timeout = cfg.ToolTimeoutDuration()
	}
	if opts.Profile == "" {
		opts.Profile = cfg.Profile
	}
	if opts.Profile != "" && opts.Profile != config.ProfileNormal && opts.Profile != config.ProfileThorough {
		return &ValidationError{Message: fmt.Sprintf("invalid profile: %s", opts.Profile)}
	}

	runsPath, err := cfg.RunsPath()
	if err != nil {
		return err
	}

	return scanPipeline(context.Background(), storage.NewLocal(runsPath), opts)
}

// scanOptions carries everything the scan pipeline needs, resolved at
// the command boundary.
type scanOptions struct {
	Target      string
	Destructive bool
	Format      string
	Output      string
	Timeout     time.Duration
	MockMissing bool
	Profile     string
	Safety      safety.Context

	// LookPath and Exec override binary lookup and process execution;
	// nil means the real ones.
	LookPath discovery.LookPathFunc
	Exec     runner.ExecFunc
}

// safetyContextFromEnv builds the safety gate context from operator
// environment variables. This is the only place the gate touches the
// process environment.
func safetyContextFromEnv() safety.Context {
	enabled := os.Getenv("VULNPIPE_DESTRUCTIVE")
	return safety.Context{
		Enabled:       enabled == "1" || enabled == "true",
		SuppliedToken: os.Getenv("VULNPIPE_PROOF"),
	}
}

// scanPipeline is the full scan flow. Split from the cobra handler so
// tests can drive it with injected exec/lookup functions.
func scanPipeline(ctx context.Context, store *storage.LocalStorage, opts scanOptions) error {
	if opts.LookPath == nil {
		opts.LookPath = exec.LookPath
	}
	if opts.Exec == nil {
		opts.Exec = runner.SystemExec
	}

	// Step 1: allocate the run directory and proof token.
	runDir, err := store.CreateRun(opts.Target)
	if err != nil {
		return err
	}
	logVerbose("run directory: %s", runDir)

	meta := models.RunMeta{
		RunID:       runDirID(runDir),
		Targets:     []string{opts.Target},
		Mode:        "scan",
		Destructive: opts.Destructive,
		StartedAt:   time.Now().UTC(),
	}
	if err := storage.SaveRunMeta(runDir, &meta); err != nil {
		return err
	}

	token, err := safety.GenerateToken(runDir)
	if err != nil {
		return err
	}
	if err := safety.PersistToken(runDir, token); err != nil {
		return err
	}
	logDebug("proof token persisted to %s", storage.ProofPath(runDir))

	// Step 2: execute every registered scanner.
	var tools []models.ToolType
	for tool := range models.SupportedTools {
		tools = append(tools, tool)
	}
	sortToolTypes(tools)

	configs := runner.ConfigsFromTools(tools, opts.Target, opts.Timeout)
	applyProfile(configs, opts.Profile)

	var r *runner.Runner
	if opts.MockMissing {
		r = runner.NewMocking(opts.Exec, opts.LookPath)
	} else {
		r = runner.New(opts.Exec, opts.LookPath)
	}

	logVerbose("executing %d tool(s)...", len(configs))
	envelopes, err := r.Run(ctx, runDir, configs)
	if err != nil {
		return fmt.Errorf("failed to checkpoint envelopes: %w", err)
	}
	for _, env := range envelopes {
		logVerbose("  %s: %s", env.Meta.Tool, env.Meta.Status)
	}

	// Step 3+4: normalize and aggregate.
	meta.FinishedAt = time.Now().UTC()
	agg := aggregator.New()
	report := agg.Aggregate(meta, envelopes)

	logVerbose("aggregated %d findings from %d tools",
		report.Summary.TotalFindings, report.Summary.ToolsRun)

	if previous, err := store.PreviousReport(storage.HostDirName(opts.Target), runDir); err == nil {
		report.Trend = aggregator.NewTrendAnalyzer().CalculateTrend(report, previous)
		logVerbose("trend vs previous run: %s", report.Trend.Direction)
	} else {
		logDebug("no previous run for trend: %v", err)
	}

	// Optional destructive stage. Gate denial is a skip, not a failure.
	if opts.Destructive {
		runProbeStage(ctx, runDir, opts, agg, report)
	}

	// Step 5: persist. Report write failure is fatal.
	if err := storage.SaveRunMeta(runDir, &meta); err != nil {
		return err
	}
	if err := reporter.WriteReport(runDir, report); err != nil {
		return err
	}
	logVerbose("report written to %s", storage.FinalReportPath(runDir))

	if err := renderReport(report, opts.Format, opts.Output); err != nil {
		return err
	}

	return enforceGates(report)
}

// runProbeStage runs the command-injection probe behind the safety gate
// and folds any finding into the report.
func runProbeStage(ctx context.Context, runDir string, opts scanOptions, agg *aggregator.Aggregator, report *models.Report) {
	result := probe.New(nil).Probe(ctx, runDir, opts.Target, opts.Safety)
	if result.Skipped {
		logVerbose("destructive probe skipped: %s", result.SkipReason)
		return
	}
	for _, a := range result.Attempts {
		logDebug("probe %q: %s", a.Payload, a.Outcome)
	}
	if result.Finding != nil {
		agg.Append(report, *result.Finding)
		logVerbose("destructive probe confirmed command injection")
	}
}

// enforceGates applies the policy file and the configured severity
// threshold after the report has been durably written.
func enforceGates(report *models.Report) error {
	if err := enforcePolicy(report); err != nil {
		return err
	}

	if cfg != nil && cfg.ShouldFailOnSeverity(report.Summary.MaxSeverity) {
		logError("max severity %d reaches fail threshold %d",
			report.Summary.MaxSeverity, cfg.FailSeverity)
		return &ThresholdExceededError{
			FindingCount: report.Summary.TotalFindings,
			Threshold:    cfg.FailSeverity,
		}
	}

	return nil
}

func runDirID(runDir string) string {
	// Run directories are <base>/<host>/<run-id>.
	return filepath.Base(runDir)
}

// thoroughExtraArgs deepens per-tool coverage under the thorough
// profile: service/version detection for nmap, full CGI directory
// checks for nikto, form crawling for sqlmap.
var thoroughExtraArgs = map[models.ToolType][]string{
	models.ToolNmap:   {"-sV"},
	models.ToolNikto:  {"-C", "all"},
	models.ToolSqlmap: {"--forms"},
}

// applyProfile adjusts run configs for the selected profile. The
// thorough profile adds per-tool depth flags and doubles the registry
// timeouts for configs without an explicit override.
func applyProfile(configs []runner.RunConfig, profile string) {
	if profile != config.ProfileThorough {
		return
	}
	for i := range configs {
		configs[i].ExtraArgs = thoroughExtraArgs[configs[i].Tool]
		if configs[i].Timeout == 0 {
			if info, ok := discovery.Registry[configs[i].Tool]; ok {
				configs[i].Timeout = 2 * info.Timeout
			}
		}
	}
}

func sortToolTypes(tools []models.ToolType) {
	for i := 0; i < len(tools)-1; i++ {
		for j := i + 1; j < len(tools); j++ {
			if tools[i] > tools[j] {
				tools[i], tools[j] = tools[j], tools[i]
			}
		}
	}
}
