// Package aggregator merges normalized findings from all tool envelopes
// into a single run report.
package aggregator

import (
	"github.com/vulnpipe/vulnpipe/internal/models"
	"github.com/vulnpipe/vulnpipe/internal/parser"
)

// Aggregator builds the final report from tool envelopes
type Aggregator struct {
	recommender *RecommendationGenerator
}

// New creates a new aggregator
func New() *Aggregator {
	return &Aggregator{
		recommender: NewRecommendationGenerator(),
	}
}

// Aggregate normalizes every envelope and combines the findings into
// one report. Envelope order is preserved and findings keep the order
// their parser emitted them in; nothing is deduplicated or re-sorted,
// so the report is reproducible from the same envelopes.
func (a *Aggregator) Aggregate(meta models.RunMeta, envelopes []models.Envelope) *models.Report {
	report := &models.Report{
		Meta:     meta,
		Findings: []models.Finding{},
		Summary: models.Summary{
			FindingsByTool:     make(map[string]int),
			FindingsBySeverity: make(map[string]int),
			FindingsByType:     make(map[string]int),
		},
	}

	for _, env := range envelopes {
		findings := parser.Normalize(env.Meta.Tool, &env)
		report.Findings = append(report.Findings, findings...)
		report.Summary.ToolsRun++
	}

	a.calculateSummary(report)
	report.Recommendations = a.recommender.GenerateRecommendations(report)

	return report
}

// Append adds findings produced outside the envelope pipeline (the
// destructive probe) and recomputes the summary and recommendations.
func (a *Aggregator) Append(report *models.Report, findings ...models.Finding) {
	report.Findings = append(report.Findings, findings...)
	report.Summary.FindingsByTool = make(map[string]int)
	report.Summary.FindingsBySeverity = make(map[string]int)
	report.Summary.FindingsByType = make(map[string]int)
	report.Summary.MaxSeverity = 0
	a.calculateSummary(report)
	report.Recommendations = a.recommender.GenerateRecommendations(report)
}

// calculateSummary computes summary statistics from the findings
func (a *Aggregator) calculateSummary(report *models.Report) {
	for _, f := range report.Findings {
		report.Summary.FindingsByTool[f.Source.Tool]++
		report.Summary.FindingsBySeverity[models.SeverityWord(f.Severity)]++
		report.Summary.FindingsByType[f.Type]++
		if f.Severity > report.Summary.MaxSeverity {
			report.Summary.MaxSeverity = f.Severity
		}
	}
	report.Summary.TotalFindings = len(report.Findings)
}
