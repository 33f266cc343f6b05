// Package parser normalizes tool envelopes into canonical findings.
//
// Resolution is tiered, first match wins, no merging across tiers:
//
//  1. adapter-supplied parsed findings
//  2. tool-specific structured shapes (hosts, items, matches, vulns)
//     including structured text formats (nmap port lines, nikto lines,
//     nuclei JSON-lines)
//  3. conservative marker scanning of raw stdout
//  4. empty — the absence of findings is a valid result, not an error
package parser

import (
	"strings"

	"github.com/vulnpipe/vulnpipe/internal/models"
)

// PayloadKind tags the payload shape found in an envelope, selected by
// inspection at decode time.
type PayloadKind int

const (
	PayloadEmpty PayloadKind = iota
	PayloadParsed
	PayloadHosts
	PayloadItems
	PayloadMatches
	PayloadWPVulns
	PayloadSqlmapVulns
	PayloadText
)

// String renders a payload kind for logs and tests.
func (k PayloadKind) String() string {
	switch k {
	case PayloadParsed:
		return "parsed"
	case PayloadHosts:
		return "hosts"
	case PayloadItems:
		return "items"
	case PayloadMatches:
		return "matches"
	case PayloadWPVulns:
		return "wp-vulns"
	case PayloadSqlmapVulns:
		return "sqlmap-vulns"
	case PayloadText:
		return "text"
	default:
		return "empty"
	}
}

// Classify inspects an envelope and selects its payload variant.
func Classify(env *models.Envelope) PayloadKind {
	if len(env.PreParsed()) > 0 {
		return PayloadParsed
	}

	r := env.Result
	if r == nil {
		return PayloadEmpty
	}

	switch {
	case len(r.Hosts) > 0:
		return PayloadHosts
	case len(r.Items) > 0:
		return PayloadItems
	case len(r.Matches) > 0:
		return PayloadMatches
	case len(r.Vulnerable) > 0:
		return PayloadWPVulns
	case len(r.Vulnerabilities) > 0:
		return PayloadSqlmapVulns
	case strings.TrimSpace(r.Stdout) != "":
		return PayloadText
	default:
		return PayloadEmpty
	}
}

// Normalize converts one tool's envelope into canonical findings. It
// never fails: per-line decode errors are skipped and an envelope that
// yields nothing returns an empty list.
func Normalize(tool models.ToolType, env *models.Envelope) []models.Finding {
	kind := Classify(env)

	switch kind {
	case PayloadParsed:
		return adoptParsed(tool, env.PreParsed())
	case PayloadEmpty:
		return nil
	}

	switch tool {
	case models.ToolNmap:
		return normalizeNmap(env, kind)
	case models.ToolNikto:
		return normalizeNikto(env, kind)
	case models.ToolNuclei:
		return normalizeNuclei(env, kind)
	case models.ToolWpscan:
		return normalizeWpscan(env, kind)
	case models.ToolSqlmap:
		return normalizeSqlmap(env, kind)
	case models.ToolMedusa:
		return normalizeMedusa(env)
	default:
		return inferFromText(tool, env)
	}
}

// adoptParsed maps adapter-pre-normalized findings directly, applying
// defaulting rules: missing type tags become "<tool>-vuln", missing
// severities default to medium, and source.tool is forced to the
// requested tool regardless of what the element claimed.
func adoptParsed(tool models.ToolType, parsed []models.Finding) []models.Finding {
	defaultType := string(tool) + "-vuln"
	if info, ok := models.GetToolInfo(tool); ok {
		defaultType = info.DefaultFindingType
	}

	out := make([]models.Finding, 0, len(parsed))
	for _, f := range parsed {
		if f.Type == "" {
			f.Type = defaultType
		}
		f.Target = models.CoerceTarget(f.Target)
		if f.Severity == 0 {
			f.Severity = models.SeverityMedium
		}
		f.Severity = models.ClampSeverity(f.Severity)
		f.Evidence = models.Truncate(f.Evidence, models.EvidenceCapStructured)
		f.Source.Tool = string(tool)
		out = append(out, f)
	}
	return out
}
