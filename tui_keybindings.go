package main

import (
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"seltable/internal/grid"
)

// writeClipboard is swapped out in tests.
var writeClipboard = clipboard.WriteAll

func (m Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Up):
		m.scrollBy(-1)
	case key.Matches(msg, keys.Down):
		m.scrollBy(1)
	case key.Matches(msg, keys.PageUp):
		m.scrollBy(-m.bodyHeight())
	case key.Matches(msg, keys.PageDown):
		m.scrollBy(m.bodyHeight())
	case key.Matches(msg, keys.Top):
		m.scrollTo(0)
	case key.Matches(msg, keys.Bottom):
		m.scrollTo(m.maxScroll())
	case key.Matches(msg, keys.Left):
		if m.table.HorizontalScroll() && m.firstCol > 0 {
			m.firstCol--
		}
	case key.Matches(msg, keys.Right):
		if m.table.HorizontalScroll() && m.firstCol < len(m.table.Columns())-1 {
			m.firstCol++
		}

	case key.Matches(msg, keys.SelectAll):
		if !m.table.CapturesSelectAll() {
			return m, nil
		}
		m.table.SelectAll()
		m.recordSelection("select all")
		m.setStatus("Selected %d cells", m.table.SelectedCellCount())

	case key.Matches(msg, keys.Copy):
		m.copySelection()

	case key.Matches(msg, keys.Search):
		m.inputActive = true
		m.searchInput.SetValue(m.query)
		m.searchInput.CursorEnd()
		cmd := m.searchInput.Focus()
		return m, cmd

	case key.Matches(msg, keys.Escape):
		switch {
		case m.table.Searching():
			m.clearSearch()
		case m.table.SelectedCellCount() > 0:
			m.table.UnselectAll()
			m.recordSelection("unselect all")
		}

	case key.Matches(msg, keys.Sort):
		col := m.table.SortedBy()
		if active := m.table.ActiveColumns(); len(active) > 0 {
			col = active[0]
		}
		m.sortBy(col)

	case key.Matches(msg, keys.Rebuild):
		m.rebuild()

	case key.Matches(msg, keys.Refresh):
		if m.reload != nil && !m.loading {
			m.reload()
		}

	case key.Matches(msg, keys.FullRow):
		m.table.SetSelectFullRow(!m.table.SelectFullRow())
		m.setStatus("Full row selection %s", onOff(m.table.SelectFullRow()))

	case key.Matches(msg, keys.Serial):
		m.table.SetSerialColumn(!m.table.SerialColumn())

	case key.Matches(msg, keys.AutoScroll):
		a := m.table.AutoScrollConfig()
		a.Enabled = !a.Enabled
		m.table.SetAutoScroll(a)
		m.setStatus("Drag autoscroll %s", onOff(a.Enabled))
	}
	return m, nil
}

func (m Model) handleSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.inputActive = false
		m.searchInput.Blur()
		m.search(m.searchInput.Value())
		return m, nil
	case tea.KeyEsc:
		m.inputActive = false
		m.searchInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// search filters the table by query over every column. An empty query shows
// all rows again.
func (m *Model) search(query string) {
	query = strings.TrimSpace(query)
	if query == "" {
		m.clearSearch()
		return
	}
	m.query = query
	m.table.Search(m.table.Columns(), query, m.conf.searchOptions()...)
	m.scrollTo(0)
	if breadcrumbs != nil {
		breadcrumbs.RecordSearch(query, m.table.TotalDisplayedRows())
	}
	m.setStatus("%d matches", m.table.TotalDisplayedRows())
}

func (m *Model) clearSearch() {
	m.query = ""
	m.table.Reproject()
	m.scrollTo(m.scrollRow)
	m.setStatus("")
}

func (m *Model) sortBy(col field) {
	m.table.SortBy(col)
	m.scrollTo(0)
	m.setStatus("Sorted by %s %s", m.relation().Columns[col].Name, m.table.Order())
}

// rebuild re-sorts rows changed since the last projection, keeping the
// selection. While a query is active the search runs again, so rows that
// changed are filtered too.
func (m *Model) rebuild() {
	if m.query != "" {
		opts := append(m.conf.searchOptions(), grid.WithKeepSelection())
		m.table.Search(m.table.Columns(), m.query, opts...)
	} else {
		m.table.RebuildPreservingSelection()
	}
	m.scrollTo(m.scrollRow)
}

func (m *Model) copySelection() {
	text := m.table.CopySelected()
	if text == "" {
		m.setStatus("Nothing selected")
		return
	}
	if err := writeClipboard(text); err != nil {
		m.setError(err)
		return
	}
	m.setStatus("Copied %d cells", m.table.SelectedCellCount())
}

func (m *Model) recordSelection(action string) {
	if breadcrumbs != nil {
		breadcrumbs.RecordSelection(action, m.table.SelectedCellCount())
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
