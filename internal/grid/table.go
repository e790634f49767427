// Package grid is the render-agnostic state engine behind an interactive
// table: row storage, sorting, fuzzy search, drag selection of cells and
// batched re-display of bulk inserts.
//
// A Table is owned by the goroutine that drives the render loop. None of its
// methods are safe for concurrent use.
package grid

import "maps"

// Row is one row as shown to the renderer. Selected holds the columns of the
// row that are currently selected.
type Row[R any, F comparable] struct {
	ID       int64
	Data     R
	Selected map[F]struct{}
}

// IsSelected reports whether col is selected in this row.
func (r *Row[R, F]) IsSelected(col F) bool {
	_, ok := r.Selected[col]
	return ok
}

func (r Row[R, F]) clone() Row[R, F] {
	if r.Selected != nil {
		r.Selected = maps.Clone(r.Selected)
	}
	return r
}

// cell addresses a single cell by row id.
type cell[F comparable] struct {
	id  int64
	col F
}

// Table holds every row, the sorted display projection of those rows and the
// cell selection over that projection.
type Table[R any, F Column[R]] struct {
	columns columnSet[F]

	// rows is the source of truth, keyed by id.
	rows   map[int64]R
	nextID int64

	// display is the ordered projection handed to the renderer and index
	// maps a row id to its position in display.
	display []Row[R, F]
	index   map[int64]int

	sortedBy  F
	sortOrder SortOrder
	searching bool

	// activeRows holds the ids with at least one selected cell.
	// activeColumns counts the selected cells of each column.
	activeRows    map[int64]struct{}
	activeColumns map[F]int

	drag drag[F]

	autoReload AutoReload
	autoScroll AutoScroll
	opts       options
}

// New creates an empty table. Columns must be given in the left-to-right
// order they are rendered in; that order defines drag rectangles and copy
// layout.
func New[R any, F Column[R]](columns []F, opts ...Option) *Table[R, F] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	cs := newColumnSet(columns)
	return &Table[R, F]{
		columns:       cs,
		rows:          make(map[int64]R),
		index:         make(map[int64]int),
		sortedBy:      cs.defaultColumn(),
		activeRows:    make(map[int64]struct{}),
		activeColumns: make(map[F]int),
		autoReload:    NewAutoReload(o.autoReload),
		autoScroll:    o.autoScroll,
		opts:          o,
	}
}

// Clear removes every row, including the displayed ones, and restarts id
// assignment at 0.
func (t *Table[R, F]) Clear() {
	t.rows = make(map[int64]R)
	t.display = nil
	t.index = make(map[int64]int)
	t.nextID = 0
	t.searching = false
	t.activeRows = make(map[int64]struct{})
	t.activeColumns = make(map[F]int)
	t.drag.reset()
	t.autoReload.Reset()
}

// Columns returns the declared columns in render order.
func (t *Table[R, F]) Columns() []F {
	out := make([]F, len(t.columns.order))
	copy(out, t.columns.order)
	return out
}

// FirstColumn returns the leftmost declared column.
func (t *Table[R, F]) FirstColumn() F { return t.columns.first() }

// LastColumn returns the rightmost declared column.
func (t *Table[R, F]) LastColumn() F { return t.columns.last() }

// NextColumn returns the column to the right of col, wrapping to the first.
func (t *Table[R, F]) NextColumn(col F) F { return t.columns.next(col) }

// PreviousColumn returns the column to the left of col, wrapping to the last.
func (t *Table[R, F]) PreviousColumn(col F) F { return t.columns.previous(col) }

// ColumnPosition returns the declared index of col.
func (t *Table[R, F]) ColumnPosition(col F) int { return t.columns.position(col) }

// TotalRows returns the number of rows in the store, displayed or not.
func (t *Table[R, F]) TotalRows() int { return len(t.rows) }

// TotalDisplayedRows returns the length of the display sequence.
func (t *Table[R, F]) TotalDisplayedRows() int { return len(t.display) }

// AllRows returns a copy of the row store.
func (t *Table[R, F]) AllRows() map[int64]R {
	return maps.Clone(t.rows)
}

// DisplayedRows returns a copy of the display sequence.
func (t *Table[R, F]) DisplayedRows() []Row[R, F] {
	return t.DisplayedRange(0, len(t.display))
}

// DisplayedRange returns copies of the displayed rows in [start, end),
// clamped to the display bounds. Renderers use it to fetch the visible window.
func (t *Table[R, F]) DisplayedRange(start, end int) []Row[R, F] {
	start = max(start, 0)
	end = min(end, len(t.display))
	if start >= end {
		return nil
	}
	out := make([]Row[R, F], 0, end-start)
	for _, row := range t.display[start:end] {
		out = append(out, row.clone())
	}
	return out
}

// RowAt returns a copy of the row at display position pos.
func (t *Table[R, F]) RowAt(pos int) (Row[R, F], bool) {
	if pos < 0 || pos >= len(t.display) {
		return Row[R, F]{}, false
	}
	return t.display[pos].clone(), true
}

// Position returns the display position of id.
func (t *Table[R, F]) Position(id int64) (int, bool) {
	pos, ok := t.index[id]
	return pos, ok
}

// Get returns the stored row for id.
func (t *Table[R, F]) Get(id int64) (R, bool) {
	row, ok := t.rows[id]
	return row, ok
}

// SortedBy returns the current sort column.
func (t *Table[R, F]) SortedBy() F { return t.sortedBy }

// Order returns the current sort direction.
func (t *Table[R, F]) Order() SortOrder { return t.sortOrder }

// SortIndicator returns the sort direction for col, or false when the table
// is not sorted by col.
func (t *Table[R, F]) SortIndicator(col F) (SortOrder, bool) {
	if col != t.sortedBy {
		return Ascending, false
	}
	return t.sortOrder, true
}

// Searching reports whether the display holds a search result instead of the
// full projection.
func (t *Table[R, F]) Searching() bool { return t.searching }

// SetAutoReload changes the auto reload threshold. n <= 0 disables it.
func (t *Table[R, F]) SetAutoReload(n int) {
	t.autoReload = NewAutoReload(n)
}

// AutoReloadThreshold returns the current threshold, 0 when disabled.
func (t *Table[R, F]) AutoReloadThreshold() int { return t.autoReload.Threshold() }

// SetAutoScroll replaces the autoscroll configuration, keeping the last
// reported scroll offset.
func (t *Table[R, F]) SetAutoScroll(a AutoScroll) {
	a.offset = t.autoScroll.offset
	t.autoScroll = a
}

// AutoScrollConfig returns the autoscroll configuration.
func (t *Table[R, F]) AutoScrollConfig() AutoScroll { return t.autoScroll }

// SetSelectFullRow switches between full-row and per-cell selection.
func (t *Table[R, F]) SetSelectFullRow(enabled bool) { t.opts.selectFullRow = enabled }

// SelectFullRow reports whether selections cover whole rows.
func (t *Table[R, F]) SelectFullRow() bool { return t.opts.selectFullRow }

// SetHorizontalScroll toggles the horizontal scroll hint.
func (t *Table[R, F]) SetHorizontalScroll(enabled bool) { t.opts.horizontalScroll = enabled }

// HorizontalScroll reports whether the renderer should scroll horizontally.
func (t *Table[R, F]) HorizontalScroll() bool { return t.opts.horizontalScroll }

// SetSerialColumn toggles the row number column hint.
func (t *Table[R, F]) SetSerialColumn(enabled bool) { t.opts.serialColumn = enabled }

// SerialColumn reports whether the renderer should draw row numbers.
func (t *Table[R, F]) SerialColumn() bool { return t.opts.serialColumn }

// RowHeight returns the row render height hint.
func (t *Table[R, F]) RowHeight() float64 { return t.opts.rowHeight }

// SetRowHeight changes the row render height hint.
func (t *Table[R, F]) SetRowHeight(h float64) {
	if h > 0 {
		t.opts.rowHeight = h
	}
}

// CapturesSelectAll reports whether the renderer should route its select-all
// shortcut to the table.
func (t *Table[R, F]) CapturesSelectAll() bool { return t.opts.captureSelectAll }

// SetConfig replaces the host value attached to the table.
func (t *Table[R, F]) SetConfig(conf any) { t.opts.config = conf }

// Config returns the host value attached to the table.
func (t *Table[R, F]) Config() any { return t.opts.config }
