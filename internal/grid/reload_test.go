package grid

import "testing"

func TestAutoReloadIncrement(t *testing.T) {
	tests := []struct {
		threshold int
		calls     int
		fired     int
		pending   int
	}{
		{threshold: 0, calls: 10, fired: 0, pending: 0},
		{threshold: -3, calls: 10, fired: 0, pending: 0},
		{threshold: 1, calls: 5, fired: 5, pending: 0},
		{threshold: 3, calls: 10, fired: 3, pending: 1},
		{threshold: 2500, calls: 10_000, fired: 4, pending: 0},
	}

	for _, tt := range tests {
		a := NewAutoReload(tt.threshold)
		fired := 0
		for i := 0; i < tt.calls; i++ {
			if a.Increment() {
				fired++
			}
		}
		if fired != tt.fired || a.Pending() != tt.pending {
			t.Errorf("threshold %d, %d calls: fired %d pending %d; want %d and %d",
				tt.threshold, tt.calls, fired, a.Pending(), tt.fired, tt.pending)
		}
	}
}

func TestAutoReloadReset(t *testing.T) {
	a := NewAutoReload(3)
	a.Increment()
	a.Increment()
	a.Reset()
	if a.Increment() {
		t.Error("fired one operation after Reset")
	}
	if !a.Enabled() || a.Threshold() != 3 {
		t.Error("Reset changed the threshold")
	}
}

func TestRebuildsResetAutoReload(t *testing.T) {
	tests := []struct {
		name    string
		rebuild func(*Table[testRow, testColumn])
	}{
		{"reproject", func(table *Table[testRow, testColumn]) { table.Reproject() }},
		{"rebuild preserving selection", func(table *Table[testRow, testColumn]) { table.RebuildPreservingSelection() }},
		{"search", func(table *Table[testRow, testColumn]) { table.Search([]testColumn{colName}, "row") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := newTestTable(t, 4, WithAutoReload(3))
			table.Click(1, colName, Modifiers{})

			for range 5 {
				table.Modify(1, func(r testRow) testRow { return r })
				table.Modify(2, func(r testRow) testRow { return r })
				tt.rebuild(table)
			}
			if got := table.autoReload.Pending(); got != 0 {
				t.Errorf("pending = %d after rebuild, want 0", got)
			}
		})
	}
}

func TestModifyDisplayedOnlyDoesNotCount(t *testing.T) {
	table := newTestTable(t, 3, WithAutoReload(2))

	table.Modify(0, func(r testRow) testRow { r.Score = 100; return r })
	for range 4 {
		table.ModifyDisplayedOnly(func(rows []Row[testRow, testColumn], index map[int64]int) {
			rows[index[1]].Data.Name = "edited"
		})
	}

	if got := table.autoReload.Pending(); got != 1 {
		t.Errorf("pending = %d, want 1", got)
	}
	row, _ := table.RowAt(1)
	if row.Data.Name != "edited" {
		t.Errorf("display-only edit lost: %q", row.Data.Name)
	}
	if row, _ := table.RowAt(0); row.Data.Score == 100 {
		t.Error("display was rebuilt without reaching the threshold")
	}
}
