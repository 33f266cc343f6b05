package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Severity scale shared by every tool normalizer.
const (
	SeverityInfo     = 1
	SeverityLow      = 2
	SeverityMedium   = 3
	SeverityHigh     = 4
	SeverityCritical = 5
)

// Evidence caps per source tier. Raw process output is capped harder
// than structured fields so a chatty tool cannot blow up report size.
const (
	EvidenceCapStructured = 2000
	EvidenceCapHeuristic  = 1500
	SnippetCap            = 200
	OutputCap             = 20000
)

// Source records which tool produced a finding and retains the original
// unnormalized fragment for auditability.
type Source struct {
	Tool string          `json:"tool"`
	Raw  json.RawMessage `json:"raw,omitempty"`
}

// Finding is the canonical normalized signal every parser maps into.
type Finding struct {
	Type        string     `json:"type"`
	Target      string     `json:"target"`
	Severity    int        `json:"severity"`
	Evidence    string     `json:"evidence,omitempty"`
	Source      Source     `json:"source"`
	UsedURL     string     `json:"used_url,omitempty"`
	Parameter   string     `json:"parameter,omitempty"`
	Payload     string     `json:"payload,omitempty"`
	Destructive bool       `json:"destructive,omitempty"`
	Timestamp   *time.Time `json:"timestamp,omitempty"`
}

// UnknownTarget is used when no target can be resolved from tool output.
// Findings never carry an empty target.
const UnknownTarget = "<unknown>"

// NewFinding builds a Finding with defaulting and truncation applied at
// construction time: empty targets become UnknownTarget, out-of-range
// severities collapse to medium, evidence is capped.
func NewFinding(ftype, target string, severity int, evidence string, src Source) Finding {
	return Finding{
		Type:     ftype,
		Target:   CoerceTarget(target),
		Severity: ClampSeverity(severity),
		Evidence: Truncate(evidence, EvidenceCapStructured),
		Source:   src,
	}
}

// CoerceTarget never returns an empty string.
func CoerceTarget(t string) string {
	if strings.TrimSpace(t) == "" {
		return UnknownTarget
	}
	return t
}

// ClampSeverity collapses out-of-scale values to medium.
func ClampSeverity(s int) int {
	if s < SeverityInfo || s > SeverityCritical {
		return SeverityMedium
	}
	return s
}

// SeverityFromWord translates tool-native severity words into the shared
// ordinal scale. Unknown words default to medium.
func SeverityFromWord(s string) int {
	switch {
	case strings.HasPrefix(strings.ToLower(s), "critical"):
		return SeverityCritical
	case strings.HasPrefix(strings.ToLower(s), "high"):
		return SeverityHigh
	case strings.HasPrefix(strings.ToLower(s), "med"):
		return SeverityMedium
	case strings.HasPrefix(strings.ToLower(s), "low"):
		return SeverityLow
	case strings.HasPrefix(strings.ToLower(s), "info"):
		return SeverityInfo
	default:
		return SeverityMedium
	}
}

// SeverityWord renders an ordinal severity for display and summary keys.
func SeverityWord(s int) string {
	switch ClampSeverity(s) {
	case SeverityCritical:
		return "critical"
	case SeverityHigh:
		return "high"
	case SeverityMedium:
		return "medium"
	case SeverityLow:
		return "low"
	default:
		return "info"
	}
}

// Truncate caps a string at max runes. Safe on short strings and on
// multi-byte input; never splits a rune.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// RawValue marshals any value into a Source.Raw fragment. Values that
// cannot marshal are stored as their string rendition so the raw
// fragment is never silently dropped.
func RawValue(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		data, _ = json.Marshal(fmt.Sprint(v))
	}
	return data
}

// RawString marshals a plain text fragment (for example one stdout line)
// into a Source.Raw value.
func RawString(s string) json.RawMessage {
	data, _ := json.Marshal(s)
	return data
}
