package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/ritual/internal/snapshot"
)

var (
	labelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#50FA7B"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
)

// renderSummary formats the end-of-run summary printed on stderr.
func renderSummary(res *snapshot.Result) string {
	r := res.Report
	missing := okStyle.Render("0")
	if n := len(r.Missing); n > 0 {
		missing = warnStyle.Render(fmt.Sprintf("%d", n))
	}
	rows := []string{
		labelStyle.Render("Root    ") + " " + r.Root,
		labelStyle.Render("Focus   ") + " " + r.Focus,
		labelStyle.Render("Scanned ") + " " + fmt.Sprintf("%d", r.Scanned()),
		labelStyle.Render("Missing ") + " " + missing,
	}
	if res.OutPath != "" {
		rows = append(rows, labelStyle.Render("Report  ")+" "+res.OutPath)
	}
	return boxStyle.Render(strings.Join(rows, "\n"))
}
