package models

import "time"

// RunMeta is run-level metadata persisted as run_meta.json and embedded
// in the final report.
type RunMeta struct {
	RunID       string    `json:"run_id"`
	Targets     []string  `json:"targets"`
	Mode        string    `json:"mode"`
	Destructive bool      `json:"destructive,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at,omitempty"`
}

// PrimaryTarget returns the first configured target, if any.
func (m *RunMeta) PrimaryTarget() string {
	if len(m.Targets) == 0 {
		return ""
	}
	return m.Targets[0]
}

// Report aggregates all findings for a run. Created once after all
// adapters complete and never mutated after write; the PoC stage reads
// it, it does not modify it.
type Report struct {
	Meta            RunMeta          `json:"meta"`
	Findings        []Finding        `json:"findings"`
	Summary         Summary          `json:"summary"`
	Trend           *Trend           `json:"trend,omitempty"`
	Recommendations []Recommendation `json:"recommendations,omitempty"`
}

// Summary provides aggregate statistics over a run's findings.
type Summary struct {
	TotalFindings      int            `json:"total_findings"`
	FindingsByTool     map[string]int `json:"findings_by_tool"`
	FindingsBySeverity map[string]int `json:"findings_by_severity"`
	FindingsByType     map[string]int `json:"findings_by_type"`
	MaxSeverity        int            `json:"max_severity"`
	ToolsRun           int            `json:"tools_run"`
}

// Trend represents change between the current and a previous run.
type Trend struct {
	Direction        string    `json:"direction"` // improving, degrading, stable
	ChangePercent    float64   `json:"change_percent"`
	PreviousFindings int       `json:"previous_findings"`
	CurrentFindings  int       `json:"current_findings"`
	ComparedWith     time.Time `json:"compared_with"`
	NewFindings      int       `json:"new_findings"`
	ResolvedFindings int       `json:"resolved_findings"`
}

// Recommendation is an actionable remediation item derived from a
// finding class.
type Recommendation struct {
	Severity string `json:"severity"`
	Tool     string `json:"tool"`
	Action   string `json:"action"`
	Impact   string `json:"impact"`
	Count    int    `json:"count"`
}
