package grid

import (
	"slices"

	"golang.org/x/sync/errgroup"
)

// Reproject rebuilds the display from every stored row under the current sort
// column and order, and clears the selection. Display-only edits made through
// ModifyDisplayedOnly are discarded. A search result is replaced by the full
// projection. Operations counted towards auto reload are considered applied.
func (t *Table[R, F]) Reproject() {
	t.autoReload.Reset()
	t.clearSelection()
	t.rebuild(t.collectRows())
	t.searching = false
	t.revalidate()
}

// RebuildPreservingSelection rebuilds the display like Reproject but puts each
// previously selected row's selected columns back on that row at its new
// position. Rows that are no longer displayed lose their selection. Like
// Reproject it applies every pending operation, so the auto reload counter
// starts over.
func (t *Table[R, F]) RebuildPreservingSelection() {
	saved := t.selectedCells()
	t.autoReload.Reset()
	t.rebuild(t.collectRows())
	t.searching = false
	t.restoreSelection(saved)
	t.revalidate()
}

// selectedCells returns the selected columns of every displayed active row.
// The sets are shared with the display rows, which a rebuild replaces.
func (t *Table[R, F]) selectedCells() map[int64]map[F]struct{} {
	saved := make(map[int64]map[F]struct{}, len(t.activeRows))
	for id := range t.activeRows {
		if pos, ok := t.index[id]; ok {
			saved[id] = t.display[pos].Selected
		}
	}
	return saved
}

// restoreSelection puts saved back on the rows that are still displayed and
// recomputes the active sets from them.
func (t *Table[R, F]) restoreSelection(saved map[int64]map[F]struct{}) {
	t.activeRows = make(map[int64]struct{}, len(saved))
	t.activeColumns = make(map[F]int)
	for id, cols := range saved {
		pos, ok := t.index[id]
		if !ok || len(cols) == 0 {
			continue
		}
		t.display[pos].Selected = cols
		t.activeRows[id] = struct{}{}
		for col := range cols {
			t.activeColumns[col]++
		}
	}
}

// SortBy sorts by col. Picking the current sort column flips the order,
// picking another column sorts it ascending. Either way the selection is
// cleared and the display rebuilt.
func (t *Table[R, F]) SortBy(col F) {
	t.columns.position(col)
	if col == t.sortedBy {
		t.sortOrder = t.sortOrder.Reverse()
	} else {
		t.sortedBy = col
		t.sortOrder = Ascending
	}
	t.Reproject()
}

// SetSort sets the sort column and order without rebuilding the display.
// Changing either clears the selection; changing the column resets the order
// to Ascending unless order says otherwise.
func (t *Table[R, F]) SetSort(col F, order SortOrder) {
	t.columns.position(col)
	if col == t.sortedBy && order == t.sortOrder {
		return
	}
	t.UnselectAll()
	t.sortedBy = col
	t.sortOrder = order
}

// SetSortOrder changes only the direction. The selection is cleared when the
// direction changes.
func (t *Table[R, F]) SetSortOrder(order SortOrder) {
	if order == t.sortOrder {
		return
	}
	t.UnselectAll()
	t.sortOrder = order
}

func (t *Table[R, F]) collectRows() []Row[R, F] {
	rows := make([]Row[R, F], 0, len(t.rows))
	for id, data := range t.rows {
		rows = append(rows, Row[R, F]{ID: id, Data: data})
	}
	return rows
}

// rebuild sorts rows and installs them as the display together with a fresh
// index. Selection bookkeeping is left to the caller.
func (t *Table[R, F]) rebuild(rows []Row[R, F]) {
	t.sortRows(rows)

	index := make(map[int64]int, len(rows))
	for pos, row := range rows {
		index[row.ID] = pos
	}
	t.display = rows
	t.index = index
	debugLog("rebuilt display: %d rows sorted by %v %s\n", len(rows), t.sortedBy, t.sortOrder)
}

// compareRows orders two rows by the sort column and direction. Ties are
// broken by id so the result does not depend on map iteration order.
func (t *Table[R, F]) compareRows(a, b Row[R, F]) int {
	c := t.sortedBy.Compare(a.Data, b.Data)
	if t.sortOrder == Descending {
		c = -c
	}
	if c != 0 {
		return c
	}
	switch {
	case a.ID < b.ID:
		return -1
	case a.ID > b.ID:
		return 1
	}
	return 0
}

// sortRows sorts in place. Large inputs are split into chunks sorted on
// separate goroutines and then merged pairwise, which yields the same total
// order as a sequential sort because compareRows never reports ties for
// distinct rows.
func (t *Table[R, F]) sortRows(rows []Row[R, F]) {
	workers := t.opts.workers
	if workers < 2 || len(rows) < t.opts.parallelThreshold || len(rows) < 2*workers {
		slices.SortFunc(rows, t.compareRows)
		return
	}

	chunk := (len(rows) + workers - 1) / workers
	var runs [][2]int
	for lo := 0; lo < len(rows); lo += chunk {
		runs = append(runs, [2]int{lo, min(lo+chunk, len(rows))})
	}

	var g errgroup.Group
	for _, run := range runs {
		part := rows[run[0]:run[1]]
		g.Go(func() error {
			slices.SortFunc(part, t.compareRows)
			return nil
		})
	}
	g.Wait()

	src, dst := rows, make([]Row[R, F], len(rows))
	for len(runs) > 1 {
		var merged [][2]int
		var g errgroup.Group
		for i := 0; i < len(runs); i += 2 {
			if i+1 == len(runs) {
				last := runs[i]
				copy(dst[last[0]:last[1]], src[last[0]:last[1]])
				merged = append(merged, last)
				continue
			}
			left, right := runs[i], runs[i+1]
			g.Go(func() error {
				mergeRuns(dst[left[0]:right[1]], src[left[0]:left[1]], src[right[0]:right[1]], t.compareRows)
				return nil
			})
			merged = append(merged, [2]int{left[0], right[1]})
		}
		g.Wait()
		src, dst = dst, src
		runs = merged
	}
	if &src[0] != &rows[0] {
		copy(rows, src)
	}
}

// mergeRuns merges the sorted slices a and b into out, preferring a on ties.
func mergeRuns[T any](out, a, b []T, cmp func(T, T) int) {
	i, j, k := 0, 0, 0
	for i < len(a) && j < len(b) {
		if cmp(b[j], a[i]) < 0 {
			out[k] = b[j]
			j++
		} else {
			out[k] = a[i]
			i++
		}
		k++
	}
	k += copy(out[k:], a[i:])
	copy(out[k:], b[j:])
}
