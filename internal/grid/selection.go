package grid

import (
	"slices"
	"strings"
)

// Modifiers is the input state that accompanies a pointer event.
type Modifiers struct {
	// Additive extends the existing selection instead of replacing it
	// (ctrl or cmd held).
	Additive bool
	// Secondary marks a secondary (context menu) click. It keeps the
	// existing selection so a context menu can act on it.
	Secondary bool
}

func (m Modifiers) keepsSelection() bool {
	return m.Additive || m.Secondary
}

// drag is the selection state machine. A nil origin means Idle.
type drag[F comparable] struct {
	origin *cell[F]
	// last is the cell the pointer was over at the previous move.
	last *cell[F]
	// beyond is set once the pointer has left the origin cell.
	beyond bool
	// baseline is the selection that existed when the drag started and
	// survives a non-additive drag.
	baseline map[int64]map[F]struct{}
	// covered is the rectangle applied by the previous move.
	covered []int64
	colLo   int
	colHi   int
}

func (d *drag[F]) reset() {
	*d = drag[F]{}
}

func (d *drag[F]) inBaseline(id int64, col F) bool {
	cols, ok := d.baseline[id]
	if !ok {
		return false
	}
	_, ok = cols[col]
	return ok
}

// IsDragging reports whether a drag selection is in progress.
func (t *Table[R, F]) IsDragging() bool {
	return t.drag.origin != nil
}

// DragOrigin returns the cell the active drag started on.
func (t *Table[R, F]) DragOrigin() (int64, F, bool) {
	if t.drag.origin == nil {
		var zero F
		return 0, zero, false
	}
	return t.drag.origin.id, t.drag.origin.col, true
}

// PointerDown starts a drag on the cell (id, col). Unless the additive
// modifier is held or the click is a secondary click, the previous selection
// is cleared first. The cell itself becomes selected.
func (t *Table[R, F]) PointerDown(id int64, col F, mods Modifiers) {
	t.columns.position(col)
	pos, ok := t.index[id]
	if !ok {
		return
	}
	if !mods.keepsSelection() {
		t.UnselectAll()
	}

	t.drag.reset()
	t.drag.origin = &cell[F]{id: id, col: col}
	t.drag.last = &cell[F]{id: id, col: col}
	if len(t.activeRows) > 0 {
		t.drag.baseline = t.snapshotSelection()
	}
	t.selectRowCell(pos, col)
	t.drag.covered = []int64{id}
	t.drag.colLo, t.drag.colHi = t.columnBounds(col, col)
}

// PointerMove extends the active drag to the cell under the pointer. The
// selected rectangle spans the display positions of the origin and current
// rows and the declared columns between the origin and current columns.
//
// With the additive modifier cells are only ever added. Without it the
// rectangle replaces whatever the previous move of this drag selected.
// Nothing happens while the pointer stays on the origin cell before it has
// left it once, so a plain click is not treated as a drag.
func (t *Table[R, F]) PointerMove(id int64, col F, mods Modifiers) {
	if t.drag.origin == nil {
		return
	}
	t.columns.position(col)
	origin := *t.drag.origin
	here := cell[F]{id: id, col: col}
	if here == origin && !t.drag.beyond {
		return
	}
	if t.drag.last != nil && *t.drag.last == here {
		return
	}
	if _, ok := t.index[id]; !ok {
		return
	}
	t.drag.beyond = true
	t.drag.last = &here
	t.selectRectangle(origin, here, mods.Additive)
}

// PointerUp ends the drag. The selection stays as it is.
func (t *Table[R, F]) PointerUp() {
	t.drag.reset()
}

// Click handles a click that was not part of a drag. Without modifiers it
// selects exactly (id, col). With the additive modifier it toggles the cell
// and keeps everything else. A secondary click keeps the selection and makes
// sure the clicked cell is part of it.
func (t *Table[R, F]) Click(id int64, col F, mods Modifiers) {
	t.columns.position(col)
	pos, ok := t.index[id]
	if !ok {
		return
	}
	switch {
	case mods.Additive:
		if t.display[pos].IsSelected(col) {
			t.unselectRowCell(pos, col)
		} else {
			t.selectRowCell(pos, col)
		}
	case mods.Secondary:
		t.selectRowCell(pos, col)
	default:
		t.UnselectAll()
		t.selectRowCell(pos, col)
	}
}

// SelectAll selects every cell of every displayed row.
func (t *Table[R, F]) SelectAll() {
	cols := t.columns.order
	t.activeRows = make(map[int64]struct{}, len(t.display))
	t.activeColumns = make(map[F]int, len(cols))
	for pos := range t.display {
		row := &t.display[pos]
		row.Selected = make(map[F]struct{}, len(cols))
		for _, col := range cols {
			row.Selected[col] = struct{}{}
		}
		t.activeRows[row.ID] = struct{}{}
	}
	if len(t.display) > 0 {
		for _, col := range cols {
			t.activeColumns[col] = len(t.display)
		}
	}
}

// UnselectAll clears the selection of every displayed row.
func (t *Table[R, F]) UnselectAll() {
	for id := range t.activeRows {
		if pos, ok := t.index[id]; ok {
			t.display[pos].Selected = nil
		}
	}
	t.activeRows = make(map[int64]struct{})
	t.activeColumns = make(map[F]int)
}

// IsSelected reports whether the cell (id, col) is selected.
func (t *Table[R, F]) IsSelected(id int64, col F) bool {
	if _, ok := t.activeRows[id]; !ok {
		return false
	}
	pos, ok := t.index[id]
	if !ok {
		return false
	}
	return t.display[pos].IsSelected(col)
}

// IsRowActive reports whether any cell of row id is selected.
func (t *Table[R, F]) IsRowActive(id int64) bool {
	_, ok := t.activeRows[id]
	return ok
}

// IsColumnActive reports whether any cell of col is selected.
func (t *Table[R, F]) IsColumnActive(col F) bool {
	return t.activeColumns[col] > 0
}

// ActiveRows returns the ids of rows with a selected cell, in display order.
func (t *Table[R, F]) ActiveRows() []int64 {
	positions := t.activePositions()
	ids := make([]int64, len(positions))
	for i, pos := range positions {
		ids[i] = t.display[pos].ID
	}
	return ids
}

// ActiveColumns returns the columns with a selected cell, in declared order.
func (t *Table[R, F]) ActiveColumns() []F {
	var cols []F
	for _, col := range t.columns.order {
		if t.activeColumns[col] > 0 {
			cols = append(cols, col)
		}
	}
	return cols
}

// SelectedCellCount returns the number of selected cells.
func (t *Table[R, F]) SelectedCellCount() int {
	n := 0
	for _, count := range t.activeColumns {
		n += count
	}
	return n
}

// SelectedCellsText renders the selection as text in display order: one
// line per row with a selected cell joined by rowSep, and within a line the
// columns that have any selected cell, in declared order, joined by cellSep.
// A column that is selected in some rows but not in this one contributes an
// empty cell, so the text pastes into a spreadsheet with the visual layout.
func (t *Table[R, F]) SelectedCellsText(rowSep, cellSep string) string {
	positions := t.activePositions()
	if len(positions) == 0 {
		return ""
	}
	cols := t.ActiveColumns()

	var b strings.Builder
	for i, pos := range positions {
		if i > 0 {
			b.WriteString(rowSep)
		}
		row := &t.display[pos]
		for j, col := range cols {
			if j > 0 {
				b.WriteString(cellSep)
			}
			if row.IsSelected(col) {
				b.WriteString(col.Text(row.Data))
			}
		}
	}
	return b.String()
}

// CopySelected renders the selection with newline row and tab cell
// separators.
func (t *Table[R, F]) CopySelected() string {
	return t.SelectedCellsText("\n", "\t")
}

// activePositions returns the display positions of the active rows, sorted.
func (t *Table[R, F]) activePositions() []int {
	positions := make([]int, 0, len(t.activeRows))
	for id := range t.activeRows {
		if pos, ok := t.index[id]; ok {
			positions = append(positions, pos)
		}
	}
	slices.Sort(positions)
	return positions
}

// selectRectangle applies the drag rectangle between two cells.
func (t *Table[R, F]) selectRectangle(from, to cell[F], additive bool) {
	fromPos, ok := t.index[from.id]
	if !ok {
		t.drag.reset()
		return
	}
	toPos := t.index[to.id]
	rowLo, rowHi := min(fromPos, toPos), max(fromPos, toPos)
	colLo, colHi := t.columnBounds(from.col, to.col)
	cols := t.columns.order[colLo : colHi+1]

	ids := make([]int64, 0, rowHi-rowLo+1)
	for pos := rowLo; pos <= rowHi; pos++ {
		ids = append(ids, t.display[pos].ID)
	}

	if !additive {
		inside := make(map[int64]struct{}, len(ids))
		for _, id := range ids {
			inside[id] = struct{}{}
		}
		for _, id := range t.drag.covered {
			pos, ok := t.index[id]
			if !ok {
				continue
			}
			_, rowInside := inside[id]
			for _, col := range t.columns.order[t.drag.colLo : t.drag.colHi+1] {
				idx := t.columns.index[col]
				if rowInside && idx >= colLo && idx <= colHi {
					continue
				}
				if !t.drag.inBaseline(id, col) {
					t.unselectRowCell(pos, col)
				}
			}
		}
	}

	for pos := rowLo; pos <= rowHi; pos++ {
		for _, col := range cols {
			t.selectRowCell(pos, col)
		}
	}
	t.drag.covered = ids
	t.drag.colLo, t.drag.colHi = colLo, colHi
}

// columnBounds returns the declared index range covered between two columns.
// In full-row mode it is always the whole table.
func (t *Table[R, F]) columnBounds(a, b F) (int, int) {
	if t.opts.selectFullRow {
		return 0, len(t.columns.order) - 1
	}
	lo, hi := t.columns.position(a), t.columns.position(b)
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo, hi
}

// selectRowCell selects col in the row at pos, or the whole row in full-row
// mode.
func (t *Table[R, F]) selectRowCell(pos int, col F) {
	if t.opts.selectFullRow {
		for _, c := range t.columns.order {
			t.selectCell(pos, c)
		}
		return
	}
	t.selectCell(pos, col)
}

func (t *Table[R, F]) unselectRowCell(pos int, col F) {
	if t.opts.selectFullRow {
		for _, c := range t.columns.order {
			t.unselectCell(pos, c)
		}
		return
	}
	t.unselectCell(pos, col)
}

func (t *Table[R, F]) selectCell(pos int, col F) {
	row := &t.display[pos]
	if row.IsSelected(col) {
		return
	}
	if row.Selected == nil {
		row.Selected = make(map[F]struct{}, 1)
	}
	row.Selected[col] = struct{}{}
	t.activeRows[row.ID] = struct{}{}
	t.activeColumns[col]++
}

func (t *Table[R, F]) unselectCell(pos int, col F) {
	row := &t.display[pos]
	if !row.IsSelected(col) {
		return
	}
	delete(row.Selected, col)
	if len(row.Selected) == 0 {
		row.Selected = nil
		delete(t.activeRows, row.ID)
	}
	if t.activeColumns[col]--; t.activeColumns[col] <= 0 {
		delete(t.activeColumns, col)
	}
}

func (t *Table[R, F]) snapshotSelection() map[int64]map[F]struct{} {
	snap := make(map[int64]map[F]struct{}, len(t.activeRows))
	for id := range t.activeRows {
		pos, ok := t.index[id]
		if !ok {
			continue
		}
		cols := make(map[F]struct{}, len(t.display[pos].Selected))
		for col := range t.display[pos].Selected {
			cols[col] = struct{}{}
		}
		snap[id] = cols
	}
	return snap
}

// clearSelection drops the selection bookkeeping without touching the
// display rows, which are about to be replaced.
func (t *Table[R, F]) clearSelection() {
	t.activeRows = make(map[int64]struct{})
	t.activeColumns = make(map[F]int)
	t.drag.baseline = nil
	t.drag.covered = nil
}

// revalidate drops selection state that refers to rows that are no longer
// displayed. It runs after every rebuild of the display.
func (t *Table[R, F]) revalidate() {
	stale := false
	for id := range t.activeRows {
		if _, ok := t.index[id]; !ok {
			delete(t.activeRows, id)
			stale = true
		}
	}
	if stale {
		t.activeColumns = make(map[F]int)
		for id := range t.activeRows {
			for col := range t.display[t.index[id]].Selected {
				t.activeColumns[col]++
			}
		}
	}
	if t.drag.origin != nil {
		if _, ok := t.index[t.drag.origin.id]; !ok {
			debugLog("drag origin %d no longer displayed, ending drag\n", t.drag.origin.id)
			t.drag.reset()
		}
	}
	covered := t.drag.covered[:0]
	for _, id := range t.drag.covered {
		if _, ok := t.index[id]; ok {
			covered = append(covered, id)
		}
	}
	t.drag.covered = covered
}
