package grid

// AddOrModify hands the row store to fn, which may change existing rows by id
// and may return a new row to append. The new row's id is returned with true.
//
// Every call counts towards the auto reload threshold; when it is reached the
// display is rebuilt with Reproject. Without auto reload the display is not
// touched and the caller decides when to call Reproject.
func (t *Table[R, F]) AddOrModify(fn func(rows map[int64]R) (R, bool)) (int64, bool) {
	row, added := fn(t.rows)

	var id int64
	if added {
		id = t.nextID
		t.rows[id] = row
		t.nextID++
	}

	if t.autoReload.Increment() {
		debugLog("auto reload after %d operations, %d rows\n", t.autoReload.Threshold(), len(t.rows))
		t.Reproject()
	}
	return id, added
}

// Add appends row to the store. It is AddOrModify with a mutator that only
// returns row.
func (t *Table[R, F]) Add(row R) int64 {
	id, _ := t.AddOrModify(func(map[int64]R) (R, bool) { return row, true })
	return id
}

// Modify replaces the stored row for id. It returns false when id is unknown.
// The change counts towards auto reload like any AddOrModify call.
func (t *Table[R, F]) Modify(id int64, fn func(row R) R) bool {
	found := false
	t.AddOrModify(func(rows map[int64]R) (R, bool) {
		var zero R
		row, ok := rows[id]
		if !ok {
			return zero, false
		}
		rows[id] = fn(row)
		found = true
		return zero, false
	})
	return found
}

// ModifyDisplayedOnly hands the displayed rows and the id to position index to
// fn for immediate, display-only edits such as live counters.
//
// The edits are not written to the row store and are lost on the next
// Reproject, including one fired by auto reload. Write the same change with
// AddOrModify to keep it. fn must not add or remove entries of the index;
// doing so panics.
func (t *Table[R, F]) ModifyDisplayedOnly(fn func(rows []Row[R, F], index map[int64]int)) {
	n, indexed := len(t.display), len(t.index)
	fn(t.display, t.index)
	if len(t.index) != indexed || len(t.display) != n {
		panic("grid: rows must not be added or deleted through ModifyDisplayedOnly")
	}
}

// AddUnsorted appends row to the store and to the end of the display without
// sorting, and returns the displayed copy. It does not count towards auto
// reload. The next Reproject moves the row into sorted position.
func (t *Table[R, F]) AddUnsorted(row R) Row[R, F] {
	id := t.nextID
	t.nextID++
	t.rows[id] = row

	shown := Row[R, F]{ID: id, Data: row}
	t.display = append(t.display, shown)
	t.index[id] = len(t.display) - 1
	return shown
}
