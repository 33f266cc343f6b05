package tui

import (
	"sort"
	"strings"

	"github.com/vulnpipe/vulnpipe/internal/models"
)

// filterState holds current active filters.
type filterState struct {
	Tool       string
	Severity   int
	SearchText string
}

// sortField enumerates columns that can be sorted.
type sortField int

const (
	sortBySeverity sortField = iota
	sortByTool
	sortByType
	sortByTarget
)

// sortFieldCount is the total number of sortable columns.
const sortFieldCount = 4

// applyFilters returns findings matching all active filters.
func applyFilters(findings []models.Finding, f filterState) []models.Finding {
	result := make([]models.Finding, 0, len(findings))
	searchLower := strings.ToLower(f.SearchText)

	for _, finding := range findings {
		if f.Tool != "" && finding.Source.Tool != f.Tool {
			continue
		}
		if f.Severity != 0 && finding.Severity != f.Severity {
			continue
		}
		if searchLower != "" && !matchesSearch(finding, searchLower) {
			continue
		}
		result = append(result, finding)
	}
	return result
}

func matchesSearch(f models.Finding, searchLower string) bool {
	return strings.Contains(strings.ToLower(f.Source.Tool), searchLower) ||
		strings.Contains(strings.ToLower(f.Type), searchLower) ||
		strings.Contains(strings.ToLower(models.SeverityWord(f.Severity)), searchLower) ||
		strings.Contains(strings.ToLower(f.Target), searchLower) ||
		strings.Contains(strings.ToLower(f.Evidence), searchLower)
}

// sortFindings sorts a slice of findings in place by the given field.
// Severity sorts most severe first.
func sortFindings(findings []models.Finding, field sortField) {
	sort.SliceStable(findings, func(i, j int) bool {
		switch field {
		case sortBySeverity:
			return findings[i].Severity > findings[j].Severity
		case sortByTool:
			return findings[i].Source.Tool < findings[j].Source.Tool
		case sortByType:
			return findings[i].Type < findings[j].Type
		case sortByTarget:
			return findings[i].Target < findings[j].Target
		default:
			return false
		}
	})
}

// uniqueTools returns deduplicated, sorted tool names from findings.
func uniqueTools(findings []models.Finding) []string {
	seen := make(map[string]bool)
	var tools []string
	for _, f := range findings {
		if !seen[f.Source.Tool] {
			seen[f.Source.Tool] = true
			tools = append(tools, f.Source.Tool)
		}
	}
	sort.Strings(tools)
	return tools
}

// sortFieldName returns a human-readable name for the sort field.
func sortFieldName(f sortField) string {
	switch f {
	case sortBySeverity:
		return "severity"
	case sortByTool:
		return "tool"
	case sortByType:
		return "type"
	case sortByTarget:
		return "target"
	default:
		return "unknown"
	}
}
