package main

import (
	"cmp"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"seltable/internal/grid"
)

// pickerItem is a table name with its position in the database listing.
type pickerItem struct {
	name  string
	order int
}

type pickerColumn int

const pickerName pickerColumn = 0

func (pickerColumn) Text(it pickerItem) string { return it.name }

func (pickerColumn) Compare(a, b pickerItem) int { return cmp.Compare(a.order, b.order) }

var pickerCursorStyle = lipgloss.NewStyle().Background(lipgloss.Color("4")).Foreground(lipgloss.Color("15"))

// FuzzySelector is the table picker shown when no table is given on the
// command line.
type FuzzySelector struct {
	items    *grid.Table[pickerItem, pickerColumn]
	input    textinput.Model
	filtered []string
	cursor   int
	chosen   string
	height   int
}

// cleanTableNames drops blank names and stray newlines.
func cleanTableNames(tables []string) []string {
	cleaned := make([]string, 0, len(tables))
	for _, table := range tables {
		if name := strings.TrimSpace(strings.ReplaceAll(table, "\n", "")); name != "" {
			cleaned = append(cleaned, name)
		}
	}
	return cleaned
}

func NewFuzzySelector(tables []string, initialTable string) FuzzySelector {
	items := grid.New[pickerItem]([]pickerColumn{pickerName}, grid.WithRowHeight(1))
	for i, name := range cleanTableNames(tables) {
		items.Add(pickerItem{name: name, order: i})
	}
	items.Reproject()

	input := textinput.New()
	input.Prompt = "table: "
	input.Placeholder = "type to filter"
	input.Focus()

	fs := FuzzySelector{items: items, input: input}
	fs.filtered = fs.calculateFiltered("")
	for i, name := range fs.filtered {
		if name == initialTable {
			fs.cursor = i
		}
	}
	return fs
}

// calculateFiltered returns the tables matching search in listing order, with
// prefix matches moved to the front.
func (fs *FuzzySelector) calculateFiltered(search string) []string {
	if search == "" {
		fs.items.Reproject()
	} else {
		fs.items.Search([]pickerColumn{pickerName}, search)
	}

	var prefix, rest []string
	for _, row := range fs.items.DisplayedRows() {
		if isPrefixMatch(search, row.Data.name) {
			prefix = append(prefix, row.Data.name)
		} else {
			rest = append(rest, row.Data.name)
		}
	}
	return append(prefix, rest...)
}

func isPrefixMatch(search, text string) bool {
	return strings.HasPrefix(strings.ToLower(text), strings.ToLower(search))
}

// Chosen returns the picked table, or "" when the picker was dismissed.
func (fs FuzzySelector) Chosen() string {
	return fs.chosen
}

func (fs FuzzySelector) Init() tea.Cmd {
	return textinput.Blink
}

func (fs FuzzySelector) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		fs.height = msg.Height
		fs.input.Width = max(msg.Width-len(fs.input.Prompt)-1, 1)
		return fs, nil

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			if i := msg.Y - 1; i >= 0 && i < min(len(fs.filtered), fs.listHeight()) {
				fs.chosen = fs.filtered[i]
				return fs, tea.Quit
			}
		}
		return fs, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return fs, tea.Quit
		case "enter":
			if fs.cursor < len(fs.filtered) {
				fs.chosen = fs.filtered[fs.cursor]
			}
			return fs, tea.Quit
		case "up", "ctrl+p":
			if fs.cursor > 0 {
				fs.cursor--
			}
			return fs, nil
		case "down", "ctrl+n":
			if fs.cursor < len(fs.filtered)-1 {
				fs.cursor++
			}
			return fs, nil
		}
	}

	before := fs.input.Value()
	var cmd tea.Cmd
	fs.input, cmd = fs.input.Update(msg)
	if fs.input.Value() != before {
		fs.filtered = fs.calculateFiltered(strings.TrimSpace(fs.input.Value()))
		fs.cursor = 0
	}
	return fs, cmd
}

func (fs FuzzySelector) listHeight() int {
	if fs.height <= 1 {
		return len(fs.filtered)
	}
	return fs.height - 2
}

func (fs FuzzySelector) View() string {
	var b strings.Builder
	b.WriteString(fs.input.View())
	b.WriteString("\n")

	for i, name := range fs.filtered {
		if i >= fs.listHeight() {
			break
		}
		if i == fs.cursor {
			b.WriteString(pickerCursorStyle.Render("> " + name))
		} else {
			b.WriteString("  " + name)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "%d/%d tables", len(fs.filtered), fs.items.TotalRows())
	return b.String()
}
