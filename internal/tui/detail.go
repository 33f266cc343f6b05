package tui

import (
	"fmt"
	"strings"

	"github.com/vulnpipe/vulnpipe/internal/models"
)

// detailHeight is the fixed number of lines for the detail panel.
const detailHeight = 5

// renderDetail produces the detail view for a selected finding.
func renderDetail(f *models.Finding, width int) string {
	if f == nil {
		return styleDetailPanel.Width(width).Render("No finding selected")
	}

	var b strings.Builder

	word := models.SeverityWord(f.Severity)
	sevStyled := severityStyle(word).Render(strings.ToUpper(word))
	b.WriteString(fmt.Sprintf("%s  %s / %s", sevStyled, f.Source.Tool, f.Type))
	if f.Destructive {
		b.WriteString("  " + styleDestructive.Render(" DESTRUCTIVE "))
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Target: %s\n", f.Target))

	if f.Evidence != "" {
		b.WriteString(fmt.Sprintf("Evidence: %s\n", truncate(f.Evidence, width*2)))
	}

	parts := make([]string, 0, 3)
	if f.UsedURL != "" {
		parts = append(parts, fmt.Sprintf("URL: %s", f.UsedURL))
	}
	if f.Parameter != "" {
		parts = append(parts, fmt.Sprintf("Param: %s", f.Parameter))
	}
	if f.Timestamp != nil {
		parts = append(parts, fmt.Sprintf("Seen: %s", f.Timestamp.Format("2006-01-02 15:04")))
	}
	if len(parts) > 0 {
		b.WriteString(strings.Join(parts, "  "))
	}

	return styleDetailPanel.Width(width).Render(b.String())
}
