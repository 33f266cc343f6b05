package parser

import (
	"fmt"
	"strings"

	"github.com/vulnpipe/vulnpipe/internal/models"
)

// normalizeNmap maps nmap output into open-port findings. Structured
// hosts take priority; otherwise the classic grepable port lines in
// stdout are scanned. Closed and filtered ports are dropped.
func normalizeNmap(env *models.Envelope, kind PayloadKind) []models.Finding {
	if kind == PayloadHosts {
		return nmapFromHosts(env)
	}
	return nmapFromStdout(env)
}

func nmapFromHosts(env *models.Envelope) []models.Finding {
	var findings []models.Finding
	for _, host := range env.Result.Hosts {
		target := host.Address
		if target == "" {
			target = env.TargetHint()
		}
		for _, port := range host.Ports {
			if !strings.EqualFold(port.State, "open") {
				continue
			}
			evidence := fmt.Sprintf("Port %d/tcp open", port.Port)
			if port.Service != "" {
				evidence += " (" + port.Service + ")"
			}
			f := models.NewFinding("open-port", target, models.SeverityLow, evidence, models.Source{
				Tool: string(models.ToolNmap),
				Raw:  models.RawValue(port),
			})
			findings = append(findings, f)
		}
	}
	return findings
}

// nmapFromStdout recognizes lines of the form "80/tcp open http".
func nmapFromStdout(env *models.Envelope) []models.Finding {
	target := env.TargetHint()

	var findings []models.Finding
	for _, line := range strings.Split(env.Stdout(), "\n") {
		line = strings.TrimSpace(line)
		if !strings.Contains(line, "/tcp") || !strings.Contains(line, "open") {
			continue
		}
		f := models.NewFinding("open-port", target, models.SeverityLow, line, models.Source{
			Tool: string(models.ToolNmap),
			Raw:  models.RawString(line),
		})
		findings = append(findings, f)
	}
	return findings
}
