package parser

import (
	"fmt"
	"strings"

	"github.com/vulnpipe/vulnpipe/internal/models"
)

// normalizeSqlmap maps sqlmap output into SQL injection findings.
// Structured injection points are always critical. The stdout fallback
// distinguishes a confirmed injection from a bare SQL error leak, which
// is strong but not conclusive and is rated one step lower.
func normalizeSqlmap(env *models.Envelope, kind PayloadKind) []models.Finding {
	if kind == PayloadSqlmapVulns {
		var findings []models.Finding
		for _, v := range env.Result.Vulnerabilities {
			findings = append(findings, sqlmapFinding(env, v))
		}
		return findings
	}
	return sqlmapFromStdout(env)
}

func sqlmapFinding(env *models.Envelope, v models.SqlmapVuln) models.Finding {
	target := v.Target
	if target == "" {
		target = v.URL
	}
	if target == "" {
		target = env.TargetHint()
	}

	evidence := v.Evidence
	if evidence == "" {
		evidence = fmt.Sprintf("parameter %q injectable", v.Parameter)
	}
	if v.Confidence > 0 {
		evidence = fmt.Sprintf("%s (confidence %.2f)", evidence, v.Confidence)
	}

	f := models.NewFinding("sqli-external-sqlmap", target, models.SeverityCritical, evidence, models.Source{
		Tool: string(models.ToolSqlmap),
		Raw:  models.RawValue(v),
	})
	f.UsedURL = v.URL
	f.Parameter = v.Parameter
	f.Payload = v.Payload
	return f
}

func sqlmapFromStdout(env *models.Envelope) []models.Finding {
	stdout := env.Stdout()
	lower := strings.ToLower(stdout)

	var ftype string
	var severity int
	switch {
	case strings.Contains(lower, "is vulnerable"):
		ftype = "sqli-external-sqlmap"
		severity = models.SeverityCritical
	case strings.Contains(lower, "syntax error"):
		ftype = "sqli-error"
		severity = models.SeverityHigh
	default:
		return nil
	}

	evidence := models.Truncate(strings.TrimSpace(stdout), models.EvidenceCapHeuristic)
	f := models.NewFinding(ftype, env.TargetHint(), severity, evidence, models.Source{
		Tool: string(models.ToolSqlmap),
		Raw:  models.RawString(evidence),
	})
	return []models.Finding{f}
}
