package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

var (
	statusStyle      = lipgloss.NewStyle().Background(lipgloss.Color("8")).Foreground(lipgloss.Color("15"))
	statusErrorStyle = statusStyle.Foreground(lipgloss.Color("9")).Bold(true)
)

// renderStatusBar shows the search box while it is open, otherwise table
// counters on the left and the last message or key help on the right.
func (m Model) renderStatusBar() string {
	if m.inputActive {
		return ansi.Truncate(m.searchInput.View(), m.width, "")
	}

	parts := []string{m.title}
	total, shown := m.table.TotalRows(), m.table.TotalDisplayedRows()
	if shown == total {
		parts = append(parts, fmt.Sprintf("%d rows", total))
	} else {
		parts = append(parts, fmt.Sprintf("%d of %d rows", shown, total))
	}
	if m.loading {
		parts = append(parts, fmt.Sprintf("loading %d…", m.loadCount))
	}
	if m.table.Searching() {
		parts = append(parts, "/"+m.query)
	}
	if n := m.table.SelectedCellCount(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d selected", n))
	}
	left := " " + strings.Join(parts, " · ")

	right := m.status
	rightStyle := statusStyle
	if right == "" {
		right = shortHelp()
	} else if m.statusErr {
		rightStyle = statusErrorStyle
	}
	right += " "

	gap := m.width - ansi.StringWidth(left) - ansi.StringWidth(right)
	if gap < 1 {
		line := ansi.Truncate(left+" "+right, m.width, "…")
		return statusStyle.Render(fit(line, m.width))
	}
	return statusStyle.Render(left+strings.Repeat(" ", gap)) + rightStyle.Render(right)
}

func shortHelp() string {
	bindings := keys.ShortHelp()
	help := make([]string, len(bindings))
	for i, b := range bindings {
		help[i] = b.Help().Key + " " + b.Help().Desc
	}
	return strings.Join(help, " · ")
}
