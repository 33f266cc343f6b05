// Package validator checks tool envelopes for structural defects before
// they enter the normalization pipeline.
package validator

import (
	"fmt"
	"strings"

	"github.com/vulnpipe/vulnpipe/internal/models"
)

// ValidationError represents a validation failure
type ValidationError struct {
	Tool   string
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Invalid %s envelope:\n  - %s", e.Tool, strings.Join(e.Errors, "\n  - "))
}

// Validator validates tool envelopes
type Validator struct{}

// New creates a new validator
func New() *Validator {
	return &Validator{}
}

// validStatuses lists every execution status an adapter may report.
var validStatuses = map[models.ExecStatus]bool{
	models.StatusRan:           true,
	models.StatusTimeout:       true,
	models.StatusError:         true,
	models.StatusMocked:        true,
	models.StatusMissingBinary: true,
}

// ValidateEnvelope checks an envelope's meta block and payload for
// structural problems. Unknown tools are accepted; only malformed
// envelopes are rejected.
func (v *Validator) ValidateEnvelope(env *models.Envelope) error {
	tool := string(env.Meta.Tool)
	if tool == "" {
		tool = "unknown"
	}

	var errors []string

	if env.Meta.Tool == "" {
		errors = append(errors, "Missing required field: 'meta.tool'")
	}
	if env.Meta.Status == "" {
		errors = append(errors, "Missing required field: 'meta.status'")
	} else if !validStatuses[env.Meta.Status] {
		errors = append(errors, fmt.Sprintf("Invalid status: '%s'", env.Meta.Status))
	}

	if env.Meta.Status == models.StatusRan && env.Result == nil && len(env.ParsedFindings) == 0 {
		errors = append(errors, "Status 'ran' requires a result block or parsed findings")
	}

	// Out-of-scale severities in parsed findings are not rejected here;
	// the normalizer clamps them to medium.

	if env.Result != nil {
		for i, host := range env.Result.Hosts {
			for j, port := range host.Ports {
				if port.Port < 0 || port.Port > 65535 {
					errors = append(errors, fmt.Sprintf("hosts[%d].ports[%d] has invalid port: %d", i, j, port.Port))
				}
			}
		}
		for i, vuln := range env.Result.Vulnerabilities {
			if vuln.Confidence < 0 || vuln.Confidence > 1 {
				errors = append(errors, fmt.Sprintf("vulnerabilities[%d] has invalid confidence: %v", i, vuln.Confidence))
			}
		}
	}

	if len(errors) > 0 {
		return &ValidationError{Tool: tool, Errors: errors}
	}
	return nil
}
