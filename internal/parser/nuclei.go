package parser

import (
	"encoding/json"
	"strings"

	"github.com/vulnpipe/vulnpipe/internal/models"
)

// normalizeNuclei maps nuclei output into template-match findings.
// Structured matches take priority; otherwise stdout is treated as
// JSON-lines, one record per line. Malformed lines are skipped unless
// they look like a finding by keyword, in which case a single inferred
// finding is emitted for them.
func normalizeNuclei(env *models.Envelope, kind PayloadKind) []models.Finding {
	if kind == PayloadMatches {
		var findings []models.Finding
		for _, hit := range env.Result.Matches {
			findings = append(findings, nucleiFinding(env, hit, models.RawValue(hit)))
		}
		return findings
	}
	return nucleiFromStdout(env)
}

func nucleiFromStdout(env *models.Envelope) []models.Finding {
	var findings []models.Finding
	var suspect []string

	for _, line := range strings.Split(env.Stdout(), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var hit models.NucleiHit
		if err := json.Unmarshal([]byte(line), &hit); err == nil && hit.TemplateID != "" {
			findings = append(findings, nucleiFinding(env, hit, models.RawString(line)))
			continue
		}

		lower := strings.ToLower(line)
		if strings.Contains(lower, "severity") || strings.Contains(lower, "cve") {
			suspect = append(suspect, line)
		}
	}

	if len(findings) == 0 && len(suspect) > 0 {
		evidence := models.Truncate(strings.Join(suspect, "\n"), models.EvidenceCapHeuristic)
		f := models.NewFinding("nuclei-inferred", env.TargetHint(), models.SeverityMedium, evidence, models.Source{
			Tool: string(models.ToolNuclei),
			Raw:  models.RawString(suspect[0]),
		})
		findings = append(findings, f)
	}
	return findings
}

func nucleiFinding(env *models.Envelope, hit models.NucleiHit, raw json.RawMessage) models.Finding {
	target := hit.Host
	if target == "" {
		target = hit.MatchedAt
	}
	if target == "" {
		target = env.TargetHint()
	}

	ftype := "nuclei-" + hit.TemplateID
	if hit.TemplateID == "" {
		ftype = "nuclei-match"
	}

	evidence := hit.Info.Name
	if hit.Matcher != "" {
		evidence = strings.TrimSpace(evidence + " [" + hit.Matcher + "]")
	}
	if evidence == "" {
		evidence = hit.TemplateID
	}

	severity := models.SeverityMedium
	if hit.Info.Severity != "" {
		severity = models.SeverityFromWord(hit.Info.Severity)
	}

	f := models.NewFinding(ftype, target, severity, evidence, models.Source{
		Tool: string(models.ToolNuclei),
		Raw:  raw,
	})
	if hit.MatchedAt != "" {
		f.UsedURL = hit.MatchedAt
	}
	return f
}
