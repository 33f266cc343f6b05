// Package policy evaluates run reports against a repo-local rule file,
// for failing CI when a scan crosses agreed limits.
package policy

import (
	"fmt"
	"os"
	"strings"

	"github.com/vulnpipe/vulnpipe/internal/models"
	"gopkg.in/yaml.v3"
)

// Policy defines enforcement rules for scan results.
type Policy struct {
	Version string `yaml:"version"`
	Rules   Rules  `yaml:"rules"`
}

// Rules contains all configurable policy rules.
type Rules struct {
	MaxFindings  *int     `yaml:"max_findings,omitempty"`
	MaxCritical  *int     `yaml:"max_critical,omitempty"`
	MaxHigh      *int     `yaml:"max_high,omitempty"`
	MaxSeverity  *int     `yaml:"max_severity,omitempty"`
	ForbidTypes  []string `yaml:"forbid_types,omitempty"`
	RequireTools []string `yaml:"require_tools,omitempty"`
}

// Violation is a single policy failure.
type Violation struct {
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Result holds the outcome of a policy check.
type Result struct {
	Pass       bool        `json:"pass"`
	Violations []Violation `json:"violations"`
}

// LoadFromFile reads a policy file.
func LoadFromFile(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read policy: %w", err)
	}

	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse policy: %w", err)
	}

	return &p, nil
}

// FindPolicyFile searches for a policy file in the current directory
// and parent directories up to the filesystem root.
func FindPolicyFile() string {
	names := []string{".vulnpipe-policy.yaml", ".vulnpipe-policy.yml"}

	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		for _, name := range names {
			path := dir + "/" + name
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
		parent := dir[:strings.LastIndex(dir, "/")]
		if parent == dir || parent == "" {
			break
		}
		dir = parent
	}

	return ""
}

// Evaluate checks a run report against the policy rules.
func (p *Policy) Evaluate(report *models.Report) *Result {
	if p == nil {
		return &Result{Pass: true}
	}

	var violations []Violation

	// max_findings
	if p.Rules.MaxFindings != nil {
		if report.Summary.TotalFindings > *p.Rules.MaxFindings {
			violations = append(violations, Violation{
				Rule:    "max_findings",
				Message: fmt.Sprintf("total findings %d exceeds limit %d", report.Summary.TotalFindings, *p.Rules.MaxFindings),
			})
		}
	}

	// max_critical
	if p.Rules.MaxCritical != nil {
		count := report.Summary.FindingsBySeverity["critical"]
		if count > *p.Rules.MaxCritical {
			violations = append(violations, Violation{
				Rule:    "max_critical",
				Message: fmt.Sprintf("critical findings %d exceeds limit %d", count, *p.Rules.MaxCritical),
			})
		}
	}

	// max_high
	if p.Rules.MaxHigh != nil {
		count := report.Summary.FindingsBySeverity["high"]
		if count > *p.Rules.MaxHigh {
			violations = append(violations, Violation{
				Rule:    "max_high",
				Message: fmt.Sprintf("high findings %d exceeds limit %d", count, *p.Rules.MaxHigh),
			})
		}
	}

	// max_severity
	if p.Rules.MaxSeverity != nil {
		if report.Summary.MaxSeverity > *p.Rules.MaxSeverity {
			violations = append(violations, Violation{
				Rule:    "max_severity",
				Message: fmt.Sprintf("max severity %d exceeds limit %d", report.Summary.MaxSeverity, *p.Rules.MaxSeverity),
			})
		}
	}

	// forbid_types
	if len(p.Rules.ForbidTypes) > 0 {
		forbidden := make(map[string]bool, len(p.Rules.ForbidTypes))
		for _, t := range p.Rules.ForbidTypes {
			forbidden[t] = true
		}
		for ftype, count := range report.Summary.FindingsByType {
			if forbidden[ftype] && count > 0 {
				violations = append(violations, Violation{
					Rule:    "forbid_types",
					Message: fmt.Sprintf("forbidden finding type %q has %d finding(s)", ftype, count),
				})
			}
		}
	}

	// require_tools
	if len(p.Rules.RequireTools) > 0 {
		for _, tool := range p.Rules.RequireTools {
			if _, found := report.Summary.FindingsByTool[tool]; !found {
				violations = append(violations, Violation{
					Rule:    "require_tools",
					Message: fmt.Sprintf("required tool %q produced no findings in report", tool),
				})
			}
		}
	}

	return &Result{
		Pass:       len(violations) == 0,
		Violations: violations,
	}
}
