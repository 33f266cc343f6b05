package parser

import (
	"strings"

	"github.com/vulnpipe/vulnpipe/internal/models"
)

// normalizeMedusa scans brute-force output for confirmed credentials.
// Medusa prints "ACCOUNT FOUND: ... User: x Password: y [SUCCESS]" per
// hit; each such line becomes one credential-found finding. Output
// without a confirmed hit falls back to the generic inference tier.
func normalizeMedusa(env *models.Envelope) []models.Finding {
	var findings []models.Finding
	for _, line := range strings.Split(env.Stdout(), "\n") {
		lower := strings.ToLower(line)
		hit := strings.Contains(lower, "account found") ||
			strings.Contains(lower, "password found") ||
			(strings.Contains(lower, "username") && strings.Contains(lower, "password"))
		if !hit {
			continue
		}

		evidence := strings.TrimSpace(line)
		findings = append(findings, models.NewFinding(
			"credential-found", env.TargetHint(), models.SeverityHigh, evidence,
			models.Source{Tool: string(models.ToolMedusa), Raw: models.RawString(evidence)}))
	}

	if len(findings) == 0 {
		return inferFromText(models.ToolMedusa, env)
	}
	return findings
}
