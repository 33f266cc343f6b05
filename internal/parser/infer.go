package parser

import (
	"strings"

	"github.com/vulnpipe/vulnpipe/internal/models"
)

// inferMarkers are the conservative stdout markers that promote raw
// output from a tool without a dedicated normalizer into a finding.
// "username" covers credential and user enumeration tools.
var inferMarkers = []string{"vulnerable", "cve", "username"}

// inferFromText is the generic fallback tier for tools without a
// dedicated normalizer. It emits at most one finding per envelope, with
// a type tag that marks it as heuristic so report consumers can weigh
// it accordingly.
func inferFromText(tool models.ToolType, env *models.Envelope) []models.Finding {
	stdout := env.Stdout()
	lower := strings.ToLower(stdout)

	matched := false
	for _, marker := range inferMarkers {
		if strings.Contains(lower, marker) {
			matched = true
			break
		}
	}
	if !matched {
		return nil
	}

	evidence := models.Truncate(strings.TrimSpace(stdout), models.EvidenceCapHeuristic)
	f := models.NewFinding(string(tool)+"-inferred", env.TargetHint(), models.SeverityMedium, evidence, models.Source{
		Tool: string(tool),
		Raw:  models.RawString(evidence),
	})
	return []models.Finding{f}
}
