package main

import (
	"fmt"
	"slices"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"seltable/internal/dblib"
)

func fruitRelation(key []int) *dblib.Relation {
	return &dblib.Relation{
		Name: "fruit",
		Columns: []dblib.Column{
			{Name: "id", Type: "integer"},
			{Name: "name", Type: "text"},
			{Name: "qty", Type: "integer", Nullable: true},
		},
		ColumnIndex: map[string]int{"id": 0, "name": 1, "qty": 2},
		Key:         key,
	}
}

func fruitRecords() []dblib.Record {
	return []dblib.Record{
		{int64(1), "apple", int64(3)},
		{int64(2), "banana", int64(1)},
		{int64(3), "cherry", int64(2)},
		{int64(4), "date", nil},
	}
}

func update(m Model, msgs ...tea.Msg) Model {
	for _, msg := range msgs {
		model, _ := m.Update(msg)
		m = model.(Model)
	}
	return m
}

// newTestModel loads records into a 80x10 model: a two line header, seven
// body lines and the status bar.
func newTestModel(t *testing.T, rel *dblib.Relation, records []dblib.Record) Model {
	t.Helper()
	m := newModel(rel, defaultConfig().Grid, "test", nil)
	return update(m,
		tea.WindowSizeMsg{Width: 80, Height: 10},
		loadStartMsg{},
		recordsMsg{records: records},
		loadDoneMsg{read: len(records)},
	)
}

// cellX returns a screen column inside col.
func cellX(t *testing.T, m Model, col field) int {
	t.Helper()
	spans, _ := m.layout()
	for _, s := range spans {
		if s.col == col {
			return s.x + 1
		}
	}
	t.Fatalf("column %d is not on screen", col)
	return 0
}

func press(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
}

func motion(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft}
}

func release(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft}
}

func displayedNames(m Model) []string {
	var names []string
	for _, row := range m.table.DisplayedRows() {
		names = append(names, row.Data[1].(string))
	}
	return names
}

func stubClipboard(t *testing.T) *string {
	t.Helper()
	var copied string
	orig := writeClipboard
	writeClipboard = func(text string) error {
		copied = text
		return nil
	}
	t.Cleanup(func() { writeClipboard = orig })
	return &copied
}

func TestModelLoadsRecords(t *testing.T) {
	m := newTestModel(t, fruitRelation([]int{0}), fruitRecords())

	if m.loading {
		t.Error("still loading after loadDoneMsg")
	}
	if got := displayedNames(m); !slices.Equal(got, []string{"apple", "banana", "cherry", "date"}) {
		t.Errorf("displayed %v", got)
	}
	if len(m.byKey) != 4 {
		t.Errorf("byKey has %d entries, want 4", len(m.byKey))
	}

	view := m.View()
	for _, want := range []string{"id ▲", "name", "cherry", "null", "4 rows"} {
		if !strings.Contains(view, want) {
			t.Errorf("view does not contain %q:\n%s", want, view)
		}
	}
}

func TestMouseDragSelectsAndCopies(t *testing.T) {
	m := newTestModel(t, fruitRelation([]int{0}), fruitRecords())
	copied := stubClipboard(t)

	nameX, qtyX := cellX(t, m, 1), cellX(t, m, 2)
	m = update(m,
		press(nameX, 2),
		motion(qtyX, 3),
		motion(qtyX, 4),
		release(qtyX, 4),
	)
	if m.table.IsDragging() {
		t.Fatal("drag still active after release")
	}
	if n := m.table.SelectedCellCount(); n != 6 {
		t.Fatalf("selected %d cells, want 6", n)
	}

	m = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	if want := "apple\t3\nbanana\t1\ncherry\t2"; *copied != want {
		t.Errorf("copied %q, want %q", *copied, want)
	}
	if m.status != "Copied 6 cells" {
		t.Errorf("status = %q", m.status)
	}
}

func TestCtrlClickTogglesCell(t *testing.T) {
	m := newTestModel(t, fruitRelation([]int{0}), fruitRecords())
	x := cellX(t, m, 1)

	m = update(m, press(x, 2), release(x, 2))
	if n := m.table.SelectedCellCount(); n != 1 {
		t.Fatalf("click selected %d cells, want 1", n)
	}

	ctrlPress := press(x, 3)
	ctrlPress.Ctrl = true
	m = update(m, ctrlPress, release(x, 3))
	if n := m.table.SelectedCellCount(); n != 2 {
		t.Fatalf("ctrl click selected %d cells in total, want 2", n)
	}

	ctrlPress = press(x, 2)
	ctrlPress.Ctrl = true
	m = update(m, ctrlPress, release(x, 2))
	if n := m.table.SelectedCellCount(); n != 1 {
		t.Errorf("ctrl click on a selected cell left %d cells, want 1", n)
	}
}

func TestHeaderClickSorts(t *testing.T) {
	m := newTestModel(t, fruitRelation([]int{0}), fruitRecords())
	qtyX := cellX(t, m, 2)

	m = update(m, press(qtyX, 0))
	if got := displayedNames(m); !slices.Equal(got, []string{"date", "banana", "cherry", "apple"}) {
		t.Errorf("ascending qty: %v", got)
	}

	m = update(m, press(qtyX, 0))
	if got := displayedNames(m); !slices.Equal(got, []string{"apple", "cherry", "banana", "date"}) {
		t.Errorf("descending qty: %v", got)
	}
	if !strings.Contains(m.View(), "qty ▼") {
		t.Error("header does not show descending indicator")
	}
}

func TestSearchBox(t *testing.T) {
	m := newTestModel(t, fruitRelation([]int{0}), fruitRecords())

	m = update(m,
		tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")},
		tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("ban")},
	)
	if !m.inputActive {
		t.Fatal("search box did not open")
	}
	m = update(m, tea.KeyMsg{Type: tea.KeyEnter})
	if got := displayedNames(m); !slices.Equal(got, []string{"banana"}) {
		t.Errorf("search shows %v", got)
	}
	if !strings.Contains(m.renderStatusBar(), "1 of 4 rows") {
		t.Errorf("status bar: %q", m.renderStatusBar())
	}

	m = update(m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.table.Searching() || m.table.TotalDisplayedRows() != 4 {
		t.Errorf("esc left %d rows displayed, searching=%v", m.table.TotalDisplayedRows(), m.table.Searching())
	}
}

func TestSelectAllAndEscape(t *testing.T) {
	m := newTestModel(t, fruitRelation([]int{0}), fruitRecords())

	m = update(m, tea.KeyMsg{Type: tea.KeyCtrlA})
	if n := m.table.SelectedCellCount(); n != 12 {
		t.Fatalf("ctrl+a selected %d cells, want 12", n)
	}
	m = update(m, tea.KeyMsg{Type: tea.KeyEsc})
	if n := m.table.SelectedCellCount(); n != 0 {
		t.Errorf("esc left %d cells selected", n)
	}

	conf := defaultConfig().Grid
	conf.NoSelectAll = true
	m = newModel(fruitRelation(nil), conf, "test", nil)
	m = update(m, loadStartMsg{}, recordsMsg{records: fruitRecords()}, loadDoneMsg{}, tea.KeyMsg{Type: tea.KeyCtrlA})
	if n := m.table.SelectedCellCount(); n != 0 {
		t.Errorf("ctrl+a selected %d cells with select-all capture off", n)
	}
}

func TestDragAutoScroll(t *testing.T) {
	var records []dblib.Record
	for i := range 30 {
		records = append(records, dblib.Record{int64(i), fmt.Sprintf("row-%02d", i), int64(i)})
	}
	m := newTestModel(t, fruitRelation([]int{0}), records)
	x := cellX(t, m, 1)

	// The status bar line is below the body, inside the bottom margin.
	m = update(m, press(x, 2), motion(x, 9))
	if !m.autoScrollOn {
		t.Fatal("autoscroll did not start")
	}
	for range 3 {
		m = update(m, autoScrollMsg{})
	}
	if m.scrollRow != 3 {
		t.Errorf("scrollRow = %d, want 3", m.scrollRow)
	}
	if n := m.table.SelectedCellCount(); n != 10 {
		t.Errorf("selected %d cells, want 10", n)
	}

	m = update(m, release(x, 9), autoScrollMsg{})
	if m.autoScrollOn {
		t.Error("autoscroll still running after release")
	}
	if m.scrollRow != 3 {
		t.Errorf("scrollRow moved to %d after release", m.scrollRow)
	}
}

func TestAutoScrollEdgesScrollAtFullSpeed(t *testing.T) {
	var records []dblib.Record
	for i := range 30 {
		records = append(records, dblib.Record{int64(i), fmt.Sprintf("row-%02d", i), int64(i)})
	}
	m := newTestModel(t, fruitRelation([]int{0}), records)
	x := cellX(t, m, 1)

	// Body lines are 2 through 8.
	m = update(m, press(x, 5), motion(x, 8), autoScrollMsg{})
	if m.scrollRow != 1 {
		t.Fatalf("last body line scrolled to %d, want 1", m.scrollRow)
	}
	m = update(m, motion(x, 2), autoScrollMsg{})
	if m.scrollRow != 0 {
		t.Errorf("first body line scrolled to %d, want 0", m.scrollRow)
	}
}

func TestRefreshUpdatesByKey(t *testing.T) {
	m := newTestModel(t, fruitRelation([]int{0}), fruitRecords())

	m = update(m,
		loadStartMsg{refresh: true},
		recordsMsg{refresh: true, records: []dblib.Record{
			{int64(1), "apple", int64(9)},
			{int64(5), "elderberry", int64(4)},
		}},
		loadDoneMsg{read: 2, refresh: true},
	)
	if m.table.TotalRows() != 5 {
		t.Fatalf("refresh left %d rows, want 5", m.table.TotalRows())
	}
	id := m.byKey["1"]
	row, _ := m.table.Get(id)
	if row[2] != int64(9) {
		t.Errorf("apple qty = %v, want 9", row[2])
	}
	if got := m.changed[id]; !slices.Equal(got, []field{2}) {
		t.Errorf("changed cells of apple = %v, want [2]", got)
	}
	if m.status != "1 rows changed" {
		t.Errorf("status = %q", m.status)
	}
}

func TestRefreshKeepsSearchAndSelection(t *testing.T) {
	conf := defaultConfig().Grid
	conf.AutoReload = 2
	m := newModel(fruitRelation([]int{0}), conf, "test", nil)
	m = update(m,
		tea.WindowSizeMsg{Width: 80, Height: 10},
		loadStartMsg{},
		recordsMsg{records: fruitRecords()},
		loadDoneMsg{read: 4},
	)
	m.search("apple")
	x := cellX(t, m, 1)
	m = update(m, press(x, 2), release(x, 2))

	refresh := func(m Model, records []dblib.Record) Model {
		return update(m,
			loadStartMsg{refresh: true},
			recordsMsg{refresh: true, records: records},
			loadDoneMsg{read: len(records), refresh: true},
		)
	}
	for range 3 {
		m = refresh(m, fruitRecords())
	}
	apple := m.byKey["1"]
	if got := displayedNames(m); !slices.Equal(got, []string{"apple"}) {
		t.Errorf("after unchanged refreshes the table shows %v", got)
	}
	if !m.table.IsSelected(apple, 1) || m.table.SelectedCellCount() != 1 {
		t.Errorf("selection lost: %d cells selected", m.table.SelectedCellCount())
	}
	if len(m.changed) != 0 {
		t.Errorf("unchanged refresh marked %d rows", len(m.changed))
	}

	records := fruitRecords()
	records[0] = dblib.Record{int64(1), "apple", int64(8)}
	m = refresh(m, records)
	if got := displayedNames(m); !slices.Equal(got, []string{"apple"}) {
		t.Errorf("after a changed refresh the table shows %v", got)
	}
	if !m.table.IsSelected(apple, 1) {
		t.Error("selection lost after a changed refresh")
	}
	if got := m.changed[apple]; !slices.Equal(got, []field{2}) {
		t.Errorf("changed cells = %v, want [2]", got)
	}
}

func TestFullReloadReplacesRows(t *testing.T) {
	m := newTestModel(t, fruitRelation(nil), fruitRecords())
	m = update(m, tea.KeyMsg{Type: tea.KeyCtrlA})

	m = update(m,
		loadStartMsg{},
		recordsMsg{records: fruitRecords()[:2]},
		loadDoneMsg{read: 2},
	)
	if m.table.TotalRows() != 2 {
		t.Errorf("reload left %d rows, want 2", m.table.TotalRows())
	}
	if m.table.SelectedCellCount() != 0 {
		t.Error("reload kept the selection of removed rows")
	}
}

func TestRecordsWithoutKeyAreAppended(t *testing.T) {
	m := newTestModel(t, fruitRelation(nil), fruitRecords())
	m = update(m, recordsMsg{records: fruitRecords()}, loadDoneMsg{})
	if m.table.TotalRows() != 8 {
		t.Errorf("%d rows, want 8", m.table.TotalRows())
	}
}

func TestChangedFields(t *testing.T) {
	got := changedFields(dblib.Record{int64(1), "a", nil}, dblib.Record{int64(1), "b", int64(0)})
	if !slices.Equal(got, []field{1, 2}) {
		t.Errorf("changedFields() = %v", got)
	}
	if got := changedFields(dblib.Record{int64(1)}, dblib.Record{int64(1), "x"}); got != nil {
		t.Errorf("records of different width reported %v", got)
	}
}
