package main

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"seltable/internal/grid"
)

type autoScrollMsg time.Time

func autoScrollTick() tea.Cmd {
	return tea.Tick(autoScrollInterval, func(t time.Time) tea.Msg {
		return autoScrollMsg(t)
	})
}

// handleMouse turns terminal mouse events into pointer transitions. A press
// on the header sorts by that column; a press on a cell starts a drag that
// motion events extend until release.
func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.scrollBy(-wheelStep)
		return nil
	case msg.Button == tea.MouseButtonWheelDown:
		m.scrollBy(wheelStep)
		return nil
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft && msg.Button != tea.MouseButtonRight {
			return nil
		}
		if msg.Y < headerLines {
			if span, ok := m.spanAt(msg.X, false); ok && msg.Y == 0 {
				m.sortBy(span.col)
			}
			return nil
		}
		id, col, ok := m.cellAt(msg.X, msg.Y, false)
		if !ok {
			return nil
		}
		m.mods = grid.Modifiers{
			Additive:  msg.Ctrl || msg.Alt,
			Secondary: msg.Button == tea.MouseButtonRight,
		}
		m.wasSelected = m.table.IsSelected(id, col)
		m.moved = false
		m.pointerX, m.pointerY = msg.X, msg.Y
		m.table.PointerDown(id, col, m.mods)
		if breadcrumbs != nil {
			breadcrumbs.RecordPointer("down", id, int(col))
		}
		return m.startAutoScroll()

	case tea.MouseActionMotion:
		if !m.table.IsDragging() {
			return nil
		}
		m.pointerX, m.pointerY = msg.X, msg.Y
		m.dragTo()
		return m.startAutoScroll()

	case tea.MouseActionRelease:
		if !m.table.IsDragging() {
			return nil
		}
		id, col, _ := m.table.DragOrigin()
		m.table.PointerUp()
		// Ctrl-clicking a selected cell without dragging deselects it.
		if !m.moved && m.mods.Additive && m.wasSelected {
			m.table.Click(id, col, m.mods)
		}
		m.recordSelection("drag")
	}
	return nil
}

// dragTo extends the drag to the cell under the last pointer position. The
// pointer may be outside the body; it then drags to the nearest row.
func (m *Model) dragTo() {
	id, col, ok := m.cellAt(m.pointerX, m.pointerY, true)
	if !ok {
		return
	}
	if origin, originCol, _ := m.table.DragOrigin(); origin != id || originCol != col {
		m.moved = true
	}
	m.table.PointerMove(id, col, m.mods)
}

// cellAt maps a screen position to a displayed cell. With clamp, positions
// outside the body snap to the closest row and column.
func (m Model) cellAt(x, y int, clamp bool) (int64, field, bool) {
	n := m.table.TotalDisplayedRows()
	if n == 0 {
		return 0, 0, false
	}
	line := y - headerLines
	if !clamp && (line < 0 || line >= m.bodyHeight()) {
		return 0, 0, false
	}
	line = min(max(line, 0), m.bodyHeight()-1)
	pos := m.scrollRow + line
	if pos >= n {
		if !clamp {
			return 0, 0, false
		}
		pos = n - 1
	}

	span, ok := m.spanAt(x, clamp)
	if !ok {
		return 0, 0, false
	}
	row, _ := m.table.RowAt(pos)
	return row.ID, span.col, true
}

// spanAt finds the rendered column at x. The row number gutter belongs to
// the first visible column.
func (m Model) spanAt(x int, clamp bool) (columnSpan, bool) {
	spans, gutter := m.layout()
	if len(spans) == 0 {
		return columnSpan{}, false
	}
	if x < gutter {
		return spans[0], clamp || gutter > 0
	}
	for _, s := range spans {
		if x >= s.x && x < s.x+s.outer() {
			return s, true
		}
	}
	if clamp {
		return spans[len(spans)-1], true
	}
	return columnSpan{}, false
}

// bodyRect spans the first and last body line, so both edges scroll at the
// same speed.
func (m Model) bodyRect() grid.Rect {
	return grid.Rect{
		MinY: float64(headerLines),
		MaxY: float64(headerLines + m.bodyHeight() - 1),
	}
}

func (m *Model) startAutoScroll() tea.Cmd {
	if m.autoScrollOn || !m.table.AutoScrollConfig().Enabled {
		return nil
	}
	m.autoScrollOn = true
	return autoScrollTick()
}

// stepAutoScroll runs once per tick while a drag is active. When the pointer
// rests near an edge the view scrolls and the drag follows the rows that
// scroll under the pointer.
func (m *Model) stepAutoScroll() tea.Cmd {
	if !m.table.IsDragging() {
		m.autoScrollOn = false
		return nil
	}
	y := float64(m.pointerY)
	if offset, ok := m.table.AutoScrollOffset(m.bodyRect(), &y); ok {
		offset = min(offset, float64(m.maxScroll()))
		m.table.SetScrollOffset(offset)
		m.scrollRow = int(offset)
		m.dragTo()
	}
	return autoScrollTick()
}
