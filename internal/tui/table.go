package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/vulnpipe/vulnpipe/internal/models"
)

var tableColumns = []table.Column{
	{Title: "Severity", Width: 10},
	{Title: "Tool", Width: 10},
	{Title: "Type", Width: 24},
	{Title: "Target", Width: 34},
	{Title: "D", Width: 2},
}

// buildRows converts findings to table rows.
func buildRows(findings []models.Finding) []table.Row {
	rows := make([]table.Row, 0, len(findings))
	for _, f := range findings {
		destructive := ""
		if f.Destructive {
			destructive = "!"
		}
		rows = append(rows, table.Row{
			strings.ToUpper(models.SeverityWord(f.Severity)),
			f.Source.Tool,
			truncate(f.Type, tableColumns[2].Width),
			truncate(f.Target, tableColumns[3].Width),
			destructive,
		})
	}
	return rows
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	const ellipsis = "..."
	if maxLen <= len(ellipsis) {
		return s[:maxLen]
	}
	return s[:maxLen-len(ellipsis)] + ellipsis
}

// newTable creates a bubbles table with standard columns and styling.
func newTable(rows []table.Row, height int) table.Model {
	t := table.New(
		table.WithColumns(tableColumns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(height),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(colorBorder).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(colorAccent).
		Bold(false)
	t.SetStyles(s)

	return t
}
