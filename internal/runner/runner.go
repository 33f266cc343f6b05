package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/vulnpipe/vulnpipe/internal/discovery"
	"github.com/vulnpipe/vulnpipe/internal/models"
	"github.com/vulnpipe/vulnpipe/internal/storage"
)

// DefaultTimeout is the per-tool execution timeout when the registry
// carries none.
const DefaultTimeout = 2 * time.Minute

// ExecFunc is the signature for running a command and capturing output.
// It returns stdout, stderr, and the process error (an *exec.ExitError
// for nonzero exits).
type ExecFunc func(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)

// SystemExec is the production ExecFunc backed by os/exec.
func SystemExec(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	err := cmd.Run()
	return outBuf.Bytes(), errBuf.Bytes(), err
}

// RunConfig describes a single tool invocation against one target.
type RunConfig struct {
	Tool      models.ToolType
	Target    string
	ExtraArgs []string
	Timeout   time.Duration
}

// Runner executes scanner tools and checkpoints their envelopes.
// A missing binary is never an error: the runner degrades to a
// missing-binary envelope, or to a mock envelope when MockMissing is
// set (useful in CI and development).
type Runner struct {
	execFn      ExecFunc
	lookPath    discovery.LookPathFunc
	mockMissing bool
}

// New creates a Runner with the given exec and lookup functions.
func New(execFn ExecFunc, lookPath discovery.LookPathFunc) *Runner {
	return &Runner{
		execFn:   execFn,
		lookPath: lookPath,
	}
}

// NewMocking creates a Runner that substitutes canned structured output
// for tools whose binary is absent.
func NewMocking(execFn ExecFunc, lookPath discovery.LookPathFunc) *Runner {
	r := New(execFn, lookPath)
	r.mockMissing = true
	return r
}

// Run executes each tool sequentially, checkpointing every envelope
// under <runDir>/generated/tools/. Per-tool failures are captured as
// envelope status fields; only a checkpoint write failure is returned
// as an error, since the envelope files are the run's durability
// boundary.
func (r *Runner) Run(ctx context.Context, runDir string, configs []RunConfig) ([]models.Envelope, error) {
	var envelopes []models.Envelope
	for _, cfg := range configs {
		env := r.runOne(ctx, cfg)

		path, err := writeEnvelope(runDir, &env)
		if err != nil {
			return envelopes, err
		}
		env.OutputFile = path

		envelopes = append(envelopes, env)
	}
	return envelopes, nil
}

// runOne executes a single tool and wraps the outcome in an envelope.
func (r *Runner) runOne(ctx context.Context, cfg RunConfig) models.Envelope {
	info, known := discovery.Registry[cfg.Tool]
	if !known {
		info = discovery.ToolExecInfo{Binary: string(cfg.Tool)}
	}

	binPath, err := r.lookPath(info.Binary)
	if err != nil {
		return r.missingBinaryEnvelope(cfg)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = info.Timeout
	}
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	toolCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := info.Args(cfg.Target, cfg.ExtraArgs)
	stdout, stderr, execErr := r.execFn(toolCtx, binPath, args...)

	result := &models.ToolResult{
		Cmd:    append([]string{binPath}, args...),
		Target: cfg.Target,
		Stdout: models.Truncate(string(stdout), models.OutputCap),
		Stderr: models.Truncate(string(stderr), models.OutputCap),
	}

	status := models.StatusRan
	switch {
	case toolCtx.Err() == context.DeadlineExceeded:
		status = models.StatusTimeout
		result.RC = nil
		result.Stdout = ""
		result.Stderr = "timeout"
	case execErr == nil:
		rc := 0
		result.RC = &rc
	default:
		var exitErr *exec.ExitError
		if errors.As(execErr, &exitErr) {
			// Nonzero exit still counts as ran; scanners routinely
			// exit nonzero when they find something.
			rc := exitErr.ExitCode()
			result.RC = &rc
		} else {
			status = models.StatusError
			if result.Stderr == "" {
				result.Stderr = execErr.Error()
			}
		}
	}

	return models.Envelope{
		Meta: models.EnvelopeMeta{
			Tool:   cfg.Tool,
			Status: status,
			Target: cfg.Target,
		},
		Result: result,
	}
}

// missingBinaryEnvelope degrades a missing tool to a non-fatal
// envelope. With mocking enabled it carries canned structured output so
// downstream stages can be exercised without the binary installed.
func (r *Runner) missingBinaryEnvelope(cfg RunConfig) models.Envelope {
	status := models.StatusMissingBinary
	result := &models.ToolResult{
		Target: cfg.Target,
		Note:   fmt.Sprintf("%s not found on PATH", cfg.Tool),
	}

	if r.mockMissing {
		status = models.StatusMocked
		result.Note = fmt.Sprintf("%s not found on PATH; returning mock output", cfg.Tool)
		mockResult(cfg.Tool, cfg.Target, result)
	}

	return models.Envelope{
		Meta: models.EnvelopeMeta{
			Tool:   cfg.Tool,
			Status: status,
			Target: cfg.Target,
		},
		Result: result,
	}
}

// mockResult fills canned structured output per tool so the parser and
// reporter paths stay testable in environments without scanners.
func mockResult(tool models.ToolType, target string, result *models.ToolResult) {
	if target == "" {
		target = "<no-target>"
	}
	switch tool {
	case models.ToolSqlmap:
		result.Vulnerabilities = []models.SqlmapVuln{
			{URL: target + "/search.php", Parameter: "q", Payload: "' OR '1'='1", Confidence: 0.8},
		}
	case models.ToolNmap:
		result.Hosts = []models.NmapHost{
			{Address: target, Ports: []models.NmapPort{{Port: 80, State: "open"}}},
		}
	case models.ToolWpscan:
		result.Vulnerable = []models.WPVuln{
			{Type: "plugin", Name: "example-plugin", Severity: "high"},
		}
	}
}

// writeEnvelope checkpoints an envelope as JSON. Later stages may be
// re-run from this file without re-invoking the tool.
func writeEnvelope(runDir string, env *models.Envelope) (string, error) {
	dir := storage.GeneratedToolsDir(runDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create tools directory: %w", err)
	}

	path := storage.ToolEnvelopePath(runDir, env.Meta.Tool)
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal envelope: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write envelope: %w", err)
	}
	return path, nil
}

// ConfigsFromTools builds run configs for a target from a tool list.
func ConfigsFromTools(tools []models.ToolType, target string, timeout time.Duration) []RunConfig {
	var configs []RunConfig
	for _, tool := range tools {
		configs = append(configs, RunConfig{
			Tool:    tool,
			Target:  target,
			Timeout: timeout,
		})
	}
	return configs
}
