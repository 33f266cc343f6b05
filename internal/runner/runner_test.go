package runner

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/vulnpipe/vulnpipe/internal/models"
	"github.com/vulnpipe/vulnpipe/internal/storage"
)

func foundLookPath(file string) (string, error) {
	return "/usr/bin/" + file, nil
}

func missingLookPath(string) (string, error) {
	return "", errors.New("executable file not found in $PATH")
}

func staticExec(stdout, stderr string, err error) ExecFunc {
	return func(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
		return []byte(stdout), []byte(stderr), err
	}
}

func loadCheckpoint(t *testing.T, runDir string, tool models.ToolType) models.Envelope {
	t.Helper()
	data, err := os.ReadFile(storage.ToolEnvelopePath(runDir, tool))
	if err != nil {
		t.Fatalf("failed to read checkpoint: %v", err)
	}
	var env models.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("failed to parse checkpoint: %v", err)
	}
	return env
}

func TestRunSuccess(t *testing.T) {
	runDir := t.TempDir()
	r := New(staticExec("80/tcp open http", "", nil), foundLookPath)

	envelopes, err := r.Run(context.Background(), runDir, []RunConfig{
		{Tool: models.ToolNmap, Target: "10.0.0.5"},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(envelopes) != 1 {
		t.Fatalf("expected 1 envelope, got %d", len(envelopes))
	}

	env := envelopes[0]
	if env.Meta.Status != models.StatusRan {
		t.Errorf("status = %s, want ran", env.Meta.Status)
	}
	if env.Result.RC == nil || *env.Result.RC != 0 {
		t.Error("expected rc 0")
	}
	if env.Result.Stdout != "80/tcp open http" {
		t.Errorf("unexpected stdout: %q", env.Result.Stdout)
	}
	if env.Result.Cmd[0] != "/usr/bin/nmap" {
		t.Errorf("unexpected binary path: %s", env.Result.Cmd[0])
	}

	// Checkpoint matches the returned envelope.
	saved := loadCheckpoint(t, runDir, models.ToolNmap)
	if saved.Meta.Status != models.StatusRan || saved.Result.Stdout != env.Result.Stdout {
		t.Error("checkpoint diverges from returned envelope")
	}
}

func TestRunNonzeroExitStillRan(t *testing.T) {
	// Scanners routinely exit nonzero when they find something; the
	// envelope must record the exit code, not degrade to an error.
	runDir := t.TempDir()
	execFn := func(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
		return []byte("found issues"), nil, &exec.ExitError{}
	}
	r := New(execFn, foundLookPath)

	envelopes, err := r.Run(context.Background(), runDir, []RunConfig{
		{Tool: models.ToolNikto, Target: "http://h/"},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	env := envelopes[0]
	if env.Meta.Status != models.StatusRan {
		t.Errorf("status = %s, want ran for nonzero exit", env.Meta.Status)
	}
	if env.Result.RC == nil {
		t.Error("expected a recorded exit code")
	}
	if env.Result.Stdout != "found issues" {
		t.Errorf("stdout = %q, want scanner output preserved", env.Result.Stdout)
	}
}

func TestRunExecError(t *testing.T) {
	runDir := t.TempDir()
	r := New(staticExec("", "", errors.New("fork/exec: permission denied")), foundLookPath)

	envelopes, err := r.Run(context.Background(), runDir, []RunConfig{
		{Tool: models.ToolNikto, Target: "http://h/"},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	env := envelopes[0]
	if env.Meta.Status != models.StatusError {
		t.Errorf("status = %s, want error", env.Meta.Status)
	}
	if env.Result.Stderr == "" {
		t.Error("expected failure message in stderr")
	}
}

func TestRunTimeout(t *testing.T) {
	runDir := t.TempDir()
	execFn := func(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
		<-ctx.Done()
		return nil, nil, ctx.Err()
	}
	r := New(execFn, foundLookPath)

	envelopes, err := r.Run(context.Background(), runDir, []RunConfig{
		{Tool: models.ToolNmap, Target: "10.0.0.5", Timeout: 10 * time.Millisecond},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	env := envelopes[0]
	if env.Meta.Status != models.StatusTimeout {
		t.Errorf("status = %s, want timeout", env.Meta.Status)
	}
	if env.Result.RC != nil {
		t.Error("expected null rc on timeout")
	}
	if env.Result.Stderr != "timeout" {
		t.Errorf("stderr = %q, want %q", env.Result.Stderr, "timeout")
	}
}

func TestRunMissingBinary(t *testing.T) {
	runDir := t.TempDir()
	r := New(staticExec("", "", nil), missingLookPath)

	envelopes, err := r.Run(context.Background(), runDir, []RunConfig{
		{Tool: models.ToolSqlmap, Target: "http://h/q?id=1"},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	env := envelopes[0]
	if env.Meta.Status != models.StatusMissingBinary {
		t.Errorf("status = %s, want adapter-missing-binary", env.Meta.Status)
	}
	if env.Result.Note == "" {
		t.Error("expected a note explaining the missing binary")
	}
	if len(env.Result.Vulnerabilities) != 0 {
		t.Error("missing binary without mocking must carry no structured output")
	}
}

func TestRunMockMissing(t *testing.T) {
	runDir := t.TempDir()
	r := NewMocking(staticExec("", "", nil), missingLookPath)

	envelopes, err := r.Run(context.Background(), runDir, []RunConfig{
		{Tool: models.ToolSqlmap, Target: "http://h/q"},
		{Tool: models.ToolNmap, Target: "10.0.0.5"},
		{Tool: models.ToolNikto, Target: "http://h/"},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	for _, env := range envelopes {
		if env.Meta.Status != models.StatusMocked {
			t.Errorf("%s status = %s, want mocked-no-binary", env.Meta.Tool, env.Meta.Status)
		}
	}

	// Tools with canned structured output carry it; others stay empty.
	if len(envelopes[0].Result.Vulnerabilities) == 0 {
		t.Error("expected mock sqlmap vulnerabilities")
	}
	if len(envelopes[1].Result.Hosts) == 0 {
		t.Error("expected mock nmap hosts")
	}
	if envelopes[2].Result.Stdout != "" || len(envelopes[2].Result.Items) != 0 {
		t.Error("nikto mock should carry only a note")
	}
}

func TestRunStdoutTruncated(t *testing.T) {
	runDir := t.TempDir()
	huge := make([]byte, models.OutputCap+5000)
	for i := range huge {
		huge[i] = 'a'
	}
	r := New(staticExec(string(huge), "", nil), foundLookPath)

	envelopes, err := r.Run(context.Background(), runDir, []RunConfig{
		{Tool: models.ToolMedusa, Target: "10.0.0.5"},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got := len(envelopes[0].Result.Stdout); got != models.OutputCap {
		t.Errorf("stdout length = %d, want %d", got, models.OutputCap)
	}
}

func TestRunCheckpointsEveryEnvelope(t *testing.T) {
	runDir := t.TempDir()
	r := NewMocking(staticExec("", "", nil), missingLookPath)

	configs := ConfigsFromTools(
		[]models.ToolType{models.ToolNmap, models.ToolNikto, models.ToolSqlmap},
		"10.0.0.5", 0)

	if _, err := r.Run(context.Background(), runDir, configs); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	files, _ := filepath.Glob(filepath.Join(storage.GeneratedToolsDir(runDir), "*.json"))
	if len(files) != 3 {
		t.Errorf("expected 3 checkpoints, got %d", len(files))
	}
}

func TestConfigsFromTools(t *testing.T) {
	configs := ConfigsFromTools([]models.ToolType{models.ToolNmap, models.ToolNikto}, "h", 30*time.Second)
	if len(configs) != 2 {
		t.Fatalf("expected 2 configs, got %d", len(configs))
	}
	if configs[0].Target != "h" || configs[0].Timeout != 30*time.Second {
		t.Errorf("unexpected config: %+v", configs[0])
	}
}
