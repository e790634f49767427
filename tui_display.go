package main

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"seltable/internal/dblib"
	"seltable/internal/grid"
)

const (
	minColumnWidth = 3
	maxColumnWidth = 40
)

var (
	headerStyle       = lipgloss.NewStyle().Bold(true)
	activeHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4"))
	selectedStyle     = lipgloss.NewStyle().Background(lipgloss.Color("4")).Foreground(lipgloss.Color("15"))
	changedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	nullStyle         = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("8"))
	ruleStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	gutterStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	activeGutterStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
)

var flattenText = strings.NewReplacer("\r\n", "↵", "\n", "↵", "\r", "↵", "\t", " ")

// columnSpan is the screen extent of one rendered column. A cell is drawn as
// a space, width cells of text, a space and a separator.
type columnSpan struct {
	col   field
	x     int
	width int
}

func (s columnSpan) outer() int { return s.width + 3 }

// layout returns the columns that fit on screen and the width of the row
// number gutter. Column widths follow the text of the rows in view.
func (m Model) layout() ([]columnSpan, int) {
	cols := m.table.Columns()
	first := 0
	if m.table.HorizontalScroll() {
		first = min(m.firstCol, len(cols)-1)
	}

	gutter := 0
	if m.table.SerialColumn() {
		gutter = len(strconv.Itoa(max(m.table.TotalDisplayedRows(), 1))) + 1
	}

	rel := m.relation()
	rows := m.table.DisplayedRange(m.scrollRow, m.scrollRow+m.bodyHeight())
	spans := make([]columnSpan, 0, len(cols)-first)
	x := gutter
	for _, col := range cols[first:] {
		width := ansi.StringWidth(rel.Columns[col].Name) + 2
		for _, row := range rows {
			width = max(width, ansi.StringWidth(flattenText.Replace(col.Text(row.Data))))
		}
		width = min(max(width, minColumnWidth), maxColumnWidth)
		spans = append(spans, columnSpan{col: col, x: x, width: width})
		x += width + 3
		if m.width > 0 && x >= m.width {
			break
		}
	}
	return spans, gutter
}

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	spans, gutter := m.layout()
	lines := make([]string, 0, m.height)
	lines = append(lines, m.renderHeader(spans, gutter), m.renderRule(spans, gutter))

	rows := m.table.DisplayedRange(m.scrollRow, m.scrollRow+m.bodyHeight())
	for i := range m.bodyHeight() {
		if i < len(rows) {
			lines = append(lines, m.renderRow(rows[i], m.scrollRow+i, spans, gutter))
		} else {
			lines = append(lines, "")
		}
	}
	for i, line := range lines {
		lines[i] = ansi.Truncate(line, m.width, "")
	}
	lines = append(lines, m.renderStatusBar())
	return strings.Join(lines, "\n")
}

func (m Model) renderHeader(spans []columnSpan, gutter int) string {
	var b strings.Builder
	b.WriteString(strings.Repeat(" ", gutter))
	rel := m.relation()
	for _, s := range spans {
		name := rel.Columns[s.col].Name
		if order, ok := m.table.SortIndicator(s.col); ok {
			if order == grid.Ascending {
				name += " ▲"
			} else {
				name += " ▼"
			}
		}
		style := headerStyle
		if m.table.IsColumnActive(s.col) {
			style = activeHeaderStyle
		}
		b.WriteString(" " + style.Render(fit(name, s.width)) + " ")
		b.WriteString(ruleStyle.Render("│"))
	}
	return b.String()
}

func (m Model) renderRule(spans []columnSpan, gutter int) string {
	var b strings.Builder
	if gutter > 0 {
		b.WriteString(strings.Repeat("─", gutter-1) + "┼")
	}
	for _, s := range spans {
		b.WriteString(strings.Repeat("─", s.width+2) + "┼")
	}
	return ruleStyle.Render(b.String())
}

func (m Model) renderRow(row grid.Row[dblib.Record, field], pos int, spans []columnSpan, gutter int) string {
	var b strings.Builder
	if gutter > 0 {
		style := gutterStyle
		if m.table.IsRowActive(row.ID) {
			style = activeGutterStyle
		}
		b.WriteString(style.Render(fmt.Sprintf("%*d", gutter-1, pos+1)))
		b.WriteString(ruleStyle.Render("│"))
	}
	for _, s := range spans {
		cell := " " + fit(flattenText.Replace(s.col.Text(row.Data)), s.width) + " "
		switch {
		case row.IsSelected(s.col):
			cell = selectedStyle.Render(cell)
		case slices.Contains(m.changed[row.ID], s.col):
			cell = changedStyle.Render(cell)
		case int(s.col) < len(row.Data) && row.Data[s.col] == nil:
			cell = nullStyle.Render(cell)
		}
		b.WriteString(cell)
		b.WriteString(ruleStyle.Render("│"))
	}
	return b.String()
}

// fit truncates or pads s to exactly width terminal cells.
func fit(s string, width int) string {
	s = ansi.Truncate(s, width, "…")
	if pad := width - ansi.StringWidth(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}
