package aggregator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vulnpipe/vulnpipe/internal/models"
)

// findingGroup represents a group of findings by tool, type, and severity
type findingGroup struct {
	tool     string
	ftype    string
	severity int
	count    int
}

// RecommendationGenerator creates actionable remediation items from findings
type RecommendationGenerator struct{}

// NewRecommendationGenerator creates a new recommendation generator
func NewRecommendationGenerator() *RecommendationGenerator {
	return &RecommendationGenerator{}
}

// GenerateRecommendations groups findings by tool, type, and severity
// and produces prioritized remediation items, most severe first.
func (r *RecommendationGenerator) GenerateRecommendations(report *models.Report) []models.Recommendation {
	groups := make(map[string]*findingGroup)
	var order []string

	for _, f := range report.Findings {
		key := fmt.Sprintf("%s:%s:%d", f.Source.Tool, f.Type, f.Severity)
		if g, exists := groups[key]; exists {
			g.count++
			continue
		}
		groups[key] = &findingGroup{
			tool:     f.Source.Tool,
			ftype:    f.Type,
			severity: f.Severity,
			count:    1,
		}
		order = append(order, key)
	}

	var recommendations []models.Recommendation
	for _, key := range order {
		group := groups[key]
		recommendations = append(recommendations, models.Recommendation{
			Severity: models.SeverityWord(group.severity),
			Tool:     group.tool,
			Action:   r.generateAction(group),
			Impact:   r.generateImpact(group),
			Count:    group.count,
		})
	}

	// Stable sort keeps first-seen order within a severity level.
	sort.SliceStable(recommendations, func(i, j int) bool {
		return severityPriority(recommendations[i].Severity) > severityPriority(recommendations[j].Severity)
	})

	return recommendations
}

// generateAction creates actionable text based on finding class and count
func (r *RecommendationGenerator) generateAction(group *findingGroup) string {
	switch {
	case strings.HasPrefix(group.ftype, "sqli"):
		return fmt.Sprintf("Parameterize queries behind %d injectable endpoint(s)", group.count)
	case strings.Contains(group.ftype, "command-injection"):
		return fmt.Sprintf("Remove shell interpolation behind %d injectable endpoint(s)", group.count)
	case group.ftype == "open-port":
		return fmt.Sprintf("Review exposure of %d open port(s)", group.count)
	case strings.HasPrefix(group.ftype, "wp-"):
		return fmt.Sprintf("Update or remove %d vulnerable WordPress component(s)", group.count)
	case strings.HasSuffix(group.ftype, "-inferred"):
		return fmt.Sprintf("Manually verify %d heuristic signal(s) from %s", group.count, group.tool)
	default:
		return fmt.Sprintf("Address %d %s finding(s)", group.count, group.ftype)
	}
}

// generateImpact describes the potential impact based on severity
func (r *RecommendationGenerator) generateImpact(group *findingGroup) string {
	switch group.severity {
	case models.SeverityCritical:
		if strings.Contains(group.ftype, "command-injection") {
			return "Remote command execution on the target host"
		}
		return "Data exfiltration or full application compromise"
	case models.SeverityHigh:
		return "Exploitable weakness with significant blast radius"
	case models.SeverityMedium:
		return "Weakens the target's security posture"
	case models.SeverityLow:
		return "Increases attack surface, low direct risk"
	default:
		return "Informational, review as needed"
	}
}

// GetTopRecommendations returns the top N most critical recommendations
func (r *RecommendationGenerator) GetTopRecommendations(recommendations []models.Recommendation, n int) []models.Recommendation {
	if n >= len(recommendations) {
		return recommendations
	}
	return recommendations[:n]
}

// severityPriority returns numeric priority for sorting (higher = more urgent)
func severityPriority(severity string) int {
	return models.SeverityFromWord(severity)
}
