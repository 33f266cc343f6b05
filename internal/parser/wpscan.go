package parser

import (
	"strings"

	"github.com/vulnpipe/vulnpipe/internal/models"
)

// normalizeWpscan maps wpscan output into WordPress findings. Both
// structured shapes ("vulnerable" plugin lists and "vulnerabilities"
// entries) share the same mapping. The stdout fallback emits at most
// one inferred finding when WordPress-flavored markers appear.
func normalizeWpscan(env *models.Envelope, kind PayloadKind) []models.Finding {
	if kind == PayloadWPVulns {
		var findings []models.Finding
		for _, v := range env.Result.Vulnerable {
			findings = append(findings, wpscanFinding(env, v))
		}
		return findings
	}
	return wpscanFromStdout(env)
}

func wpscanFinding(env *models.Envelope, v models.WPVuln) models.Finding {
	target := v.Target
	if target == "" {
		target = env.TargetHint()
	}

	evidence := v.Title
	if evidence == "" {
		evidence = v.Name
	}
	if v.Reference != "" {
		evidence = strings.TrimSpace(evidence + " (" + v.Reference + ")")
	}

	ftype := "wp-plugin-vuln"
	if v.Type != "" && v.Type != "plugin" {
		ftype = "wp-" + v.Type + "-vuln"
	}

	severity := models.SeverityMedium
	if v.Severity != "" {
		severity = models.SeverityFromWord(v.Severity)
	}

	return models.NewFinding(ftype, target, severity, evidence, models.Source{
		Tool: string(models.ToolWpscan),
		Raw:  models.RawValue(v),
	})
}

func wpscanFromStdout(env *models.Envelope) []models.Finding {
	lower := strings.ToLower(env.Stdout())
	if !strings.Contains(lower, "vulnerable") && !strings.Contains(lower, "found") {
		return nil
	}

	evidence := models.Truncate(strings.TrimSpace(env.Stdout()), models.EvidenceCapHeuristic)
	f := models.NewFinding("wp-vuln-inferred", env.TargetHint(), models.SeverityMedium, evidence, models.Source{
		Tool: string(models.ToolWpscan),
		Raw:  models.RawString(evidence),
	})
	return []models.Finding{f}
}
