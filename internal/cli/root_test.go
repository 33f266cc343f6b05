package cli

import (
	"errors"
	"strings"
	"testing"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, ExitOK},
		{"validation error", &ValidationError{Message: "bad input"}, ExitInvalidInput},
		{"threshold error", &ThresholdExceededError{FindingCount: 5, Threshold: 2}, ExitPolicyFail},
		{"generic error", errors.New("boom"), ExitRuntimeError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HandleError(tt.err); got != tt.want {
				t.Errorf("HandleError(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Message: "missing envelope"}
	if err.Error() != "missing envelope" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestThresholdExceededErrorMessage(t *testing.T) {
	err := &ThresholdExceededError{FindingCount: 7, Threshold: 3}
	if !strings.Contains(err.Error(), "7") || !strings.Contains(err.Error(), "3") {
		t.Errorf("expected counts in message, got %q", err.Error())
	}
}

func TestSetVersion(t *testing.T) {
	old := buildVersion
	defer func() { buildVersion = old }()

	SetVersion("v1.2.3")
	if buildVersion != "v1.2.3" {
		t.Errorf("expected v1.2.3, got %s", buildVersion)
	}

	// Empty string keeps the current version.
	SetVersion("")
	if buildVersion != "v1.2.3" {
		t.Errorf("expected version unchanged, got %s", buildVersion)
	}
}
