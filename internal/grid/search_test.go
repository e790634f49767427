package grid

import (
	"fmt"
	"slices"
	"strings"
	"testing"
)

func newFruitTable(t *testing.T) *Table[testRow, testColumn] {
	t.Helper()
	table := New[testRow](testColumns)
	for i, name := range []string{"apple", "banana", "grape", "pineapple", "apricot"} {
		table.Add(testRow{Key: i, Name: name, Score: 10 - i})
	}
	table.Reproject()
	return table
}

func matchAll(string) (int, bool) { return 0, true }

func TestSearchNoOps(t *testing.T) {
	tests := []struct {
		name    string
		columns []testColumn
		query   string
		opts    []SearchOption
	}{
		{"no columns", nil, "apple", nil},
		{"empty query", []testColumn{colName}, "", nil},
		{"zero limit", []testColumn{colName}, "apple", []SearchOption{WithLimit(0)}},
		{"negative limit", []testColumn{colName}, "apple", []SearchOption{WithLimit(-1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := newFruitTable(t)
			table.Click(1, colName, Modifiers{})
			before := displayIDs(table)

			table.Search(tt.columns, tt.query, tt.opts...)

			if got := displayIDs(table); !slices.Equal(got, before) {
				t.Errorf("display = %v, want unchanged %v", got, before)
			}
			if table.Searching() {
				t.Error("no-op search marked the table as searching")
			}
			if !table.IsSelected(1, colName) {
				t.Error("no-op search cleared the selection")
			}
		})
	}
}

func TestSearchFuzzy(t *testing.T) {
	tests := []struct {
		query string
		want  []int64
	}{
		{"apl", []int64{0, 3}},
		{"app ine", []int64{3}},
		{"ANA", []int64{1}},
		{"ban", []int64{1}},
		{"zzz", nil},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			table := newFruitTable(t)
			table.Search([]testColumn{colName}, tt.query)

			if got := displayIDs(table); !slices.Equal(got, tt.want) {
				t.Errorf("search %q = %v, want %v", tt.query, got, tt.want)
			}
			if !table.Searching() {
				t.Error("Searching() = false after a search")
			}
			checkIndex(t, table)
		})
	}
}

func TestSearchResultFollowsSortOrder(t *testing.T) {
	table := newFruitTable(t)
	table.SetSort(colScore, Ascending)
	table.Reproject()

	// Scores fall as keys rise, so ascending score lists pineapple first.
	table.Search([]testColumn{colName}, "apl")
	if got := displayIDs(table); fmt.Sprint(got) != "[3 0]" {
		t.Errorf("display = %v, want [3 0]", got)
	}
}

func TestSearchLimitStopsAtFirstMatches(t *testing.T) {
	table := newTestTable(t, 10)
	table.SetSort(colKey, Descending)
	table.Reproject()

	table.Search([]testColumn{colName}, "x", WithLimit(3), WithScorer(ScorerFunc(matchAll)))

	if got := displayIDs(table); fmt.Sprint(got) != "[2 1 0]" {
		t.Errorf("display = %v, want [2 1 0]", got)
	}
	if table.TotalRows() != 10 {
		t.Errorf("search changed the store: %d rows", table.TotalRows())
	}
}

func TestSearchScorerSeesColumnText(t *testing.T) {
	table := newTestTable(t, 4)

	var seen []string
	scorer := ScorerFunc(func(text string) (int, bool) {
		seen = append(seen, text)
		return 0, strings.HasPrefix(text, "row-03")
	})
	table.Search([]testColumn{colName, colScore}, "ignored", WithScorer(scorer))

	want := []string{"row-00 0 ", "row-01 2 ", "row-02 4 ", "row-03 1 "}
	if !slices.Equal(seen, want) {
		t.Errorf("scorer saw %q, want %q", seen, want)
	}
	if got := displayIDs(table); fmt.Sprint(got) != "[3]" {
		t.Errorf("display = %v, want [3]", got)
	}
}

func TestSearchClearsSelection(t *testing.T) {
	table := newFruitTable(t)
	table.SelectAll()

	table.Search([]testColumn{colName}, "apl")
	if table.SelectedCellCount() != 0 {
		t.Errorf("%d cells still selected after search", table.SelectedCellCount())
	}
	checkActiveInvariant(t, table)
}

func TestSearchKeepSelection(t *testing.T) {
	table := newFruitTable(t)
	table.Search([]testColumn{colName}, "apl")
	table.Click(3, colName, Modifiers{})
	table.Click(0, colKey, Modifiers{Additive: true})

	table.Modify(0, func(r testRow) testRow { r.Name = "maple"; return r })
	table.Search([]testColumn{colName}, "apl", WithKeepSelection())

	if got := displayIDs(table); fmt.Sprint(got) != "[0 3]" {
		t.Fatalf("display = %v, want [0 3]", got)
	}
	if !table.IsSelected(3, colName) || !table.IsSelected(0, colKey) || table.SelectedCellCount() != 2 {
		t.Errorf("selection not kept: %d cells", table.SelectedCellCount())
	}
	checkActiveInvariant(t, table)

	// Rows that stop matching lose their selection.
	table.Modify(3, func(r testRow) testRow { r.Name = "kiwi"; return r })
	table.Search([]testColumn{colName}, "apl", WithKeepSelection())
	if table.SelectedCellCount() != 1 || table.IsRowActive(3) {
		t.Errorf("%d cells selected, row 3 active = %v", table.SelectedCellCount(), table.IsRowActive(3))
	}
	checkActiveInvariant(t, table)
}

func TestReprojectRestoresUnfilteredView(t *testing.T) {
	table := newFruitTable(t)
	table.Search([]testColumn{colName}, "ban")
	table.Reproject()

	if table.Searching() {
		t.Error("Searching() = true after Reproject")
	}
	if got := displayIDs(table); fmt.Sprint(got) != "[0 1 2 3 4]" {
		t.Errorf("display = %v, want all rows", got)
	}
}

func TestAutoReloadEndsSearch(t *testing.T) {
	table := newFruitTable(t)
	table.SetAutoReload(2)
	table.Search([]testColumn{colName}, "ban")

	table.Add(testRow{Key: 5, Name: "cherry"})
	if !table.Searching() {
		t.Fatal("search ended before the auto reload threshold")
	}
	table.Add(testRow{Key: 6, Name: "melon"})
	if table.Searching() || table.TotalDisplayedRows() != 7 {
		t.Errorf("after auto reload: searching = %v, %d rows shown", table.Searching(), table.TotalDisplayedRows())
	}
}

func TestSearchUndeclaredColumnPanics(t *testing.T) {
	table := newFruitTable(t)
	defer func() {
		if recover() == nil {
			t.Error("search over an undeclared column did not panic")
		}
	}()
	table.Search([]testColumn{testColumn(9)}, "apple")
}

func TestFuzzyScorer(t *testing.T) {
	tests := []struct {
		query string
		text  string
		want  bool
	}{
		{"fb", "foo bar", true},
		{"FB", "foo bar", true},
		{"FB", "Foo Bar", true},
		{"Apple", "apple pie", true},
		{"bar foo", "foo bar", true},
		{"bar qux", "foo bar", false},
		{"cafe", "Café", true},
		{"   ", "anything", false},
	}

	for _, tt := range tests {
		t.Run(tt.query+"/"+tt.text, func(t *testing.T) {
			_, ok := NewFuzzyScorer(tt.query).Score(tt.text)
			if ok != tt.want {
				t.Errorf("Score(%q) with query %q = %v, want %v", tt.text, tt.query, ok, tt.want)
			}
		})
	}
}

func TestFuzzyScorerPrefersTighterMatch(t *testing.T) {
	s := NewFuzzyScorer("abc")
	tight, ok := s.Score("abc")
	if !ok {
		t.Fatal("no match for a contiguous occurrence")
	}
	loose, ok := s.Score("a----b----c")
	if !ok {
		t.Fatal("no match for a scattered occurrence")
	}
	if tight <= loose {
		t.Errorf("contiguous score %d not above scattered score %d", tight, loose)
	}
}
