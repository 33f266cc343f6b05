package parser

import (
	"strings"

	"github.com/vulnpipe/vulnpipe/internal/models"
)

// normalizeNikto maps nikto output into nikto-issue findings.
// Structured items take priority; the stdout fallback scans the classic
// "+ target: issue" report lines and skips banner noise.
func normalizeNikto(env *models.Envelope, kind PayloadKind) []models.Finding {
	if kind == PayloadItems {
		return niktoFromItems(env)
	}
	return niktoFromStdout(env)
}

func niktoFromItems(env *models.Envelope) []models.Finding {
	var findings []models.Finding
	for _, item := range env.Result.Items {
		target := item.Host
		if target == "" {
			target = item.URL
		}
		if target == "" {
			target = env.TargetHint()
		}

		evidence := item.Description
		if evidence == "" {
			evidence = item.Msg
		}
		if item.OSVDB != "" {
			evidence = strings.TrimSpace(evidence + " (OSVDB-" + item.OSVDB + ")")
		}

		severity := models.SeverityMedium
		if item.Severity != "" {
			severity = models.SeverityFromWord(item.Severity)
		}

		f := models.NewFinding("nikto-issue", target, severity, evidence, models.Source{
			Tool: string(models.ToolNikto),
			Raw:  models.RawValue(item),
		})
		if item.URL != "" {
			f.UsedURL = item.URL
		}
		findings = append(findings, f)
	}
	return findings
}

// niktoFromStdout scans report lines. Nikto prefixes findings with "+ "
// and separates fields with " - "; lines mentioning OSVDB references
// are findings even without that shape. Banner lines (version, host
// info) carry neither and are dropped.
func niktoFromStdout(env *models.Envelope) []models.Finding {
	target := env.TargetHint()

	var findings []models.Finding
	for _, line := range strings.Split(env.Stdout(), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		isFinding := strings.HasPrefix(line, "+") && strings.Contains(line, " - ")
		if !isFinding && !strings.Contains(line, "OSVDB") {
			continue
		}
		evidence := strings.TrimSpace(strings.TrimPrefix(line, "+"))
		f := models.NewFinding("nikto-issue", target, models.SeverityMedium, evidence, models.Source{
			Tool: string(models.ToolNikto),
			Raw:  models.RawString(line),
		})
		findings = append(findings, f)
	}
	return findings
}
