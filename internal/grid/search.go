package grid

import (
	"slices"
	"strings"
)

// Scorer decides whether a row's searchable text matches a query and how
// well. Implementations are built for one query.
type Scorer interface {
	Score(text string) (score int, ok bool)
}

// ScorerFunc adapts a function to Scorer.
type ScorerFunc func(text string) (int, bool)

func (f ScorerFunc) Score(text string) (int, bool) { return f(text) }

type searchOptions struct {
	limit         int
	hasLimit      bool
	scorer        Scorer
	keepSelection bool
}

// SearchOption configures a single Search call.
type SearchOption func(*searchOptions)

// WithLimit stops the search after n matching rows. A limit of 0 turns the
// search into a no-op.
func WithLimit(n int) SearchOption {
	return func(o *searchOptions) {
		o.limit = n
		o.hasLimit = true
	}
}

// WithKeepSelection keeps the selection of matching rows that were selected
// before the search, the way RebuildPreservingSelection does. It is meant for
// running the same query again after the rows changed.
func WithKeepSelection() SearchOption {
	return func(o *searchOptions) { o.keepSelection = true }
}

// WithScorer replaces the default fuzzy scorer.
func WithScorer(s Scorer) SearchOption {
	return func(o *searchOptions) { o.scorer = s }
}

// Search replaces the display with the stored rows whose text in columns
// matches query, sorted by the current sort column and order rather than by
// match score. The text of a row is the Text of each listed column followed
// by a space.
//
// Rows are tried in ascending id order. With a limit the search stops at the
// first limit matches, which are not necessarily the best scoring ones.
//
// Search does nothing when columns or query is empty or the limit is 0.
// Reproject restores the unfiltered display.
func (t *Table[R, F]) Search(columns []F, query string, opts ...SearchOption) {
	var o searchOptions
	for _, opt := range opts {
		opt(&o)
	}
	if len(columns) == 0 || query == "" || (o.hasLimit && o.limit <= 0) {
		return
	}
	for _, col := range columns {
		t.columns.position(col)
	}
	scorer := o.scorer
	if scorer == nil {
		scorer = NewFuzzyScorer(query)
	}

	ids := make([]int64, 0, len(t.rows))
	for id := range t.rows {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	var (
		matches []Row[R, F]
		text    strings.Builder
	)
	for _, id := range ids {
		data := t.rows[id]
		text.Reset()
		for _, col := range columns {
			text.WriteString(col.Text(data))
			text.WriteByte(' ')
		}
		if _, ok := scorer.Score(text.String()); !ok {
			continue
		}
		matches = append(matches, Row[R, F]{ID: id, Data: data})
		if o.hasLimit && len(matches) >= o.limit {
			break
		}
	}
	debugLog("search %q over %d columns: %d of %d rows\n", query, len(columns), len(matches), len(ids))

	var saved map[int64]map[F]struct{}
	if o.keepSelection {
		saved = t.selectedCells()
	}
	t.clearSelection()
	t.autoReload.Reset()
	t.rebuild(matches)
	t.searching = true
	if saved != nil {
		t.restoreSelection(saved)
	}
	t.revalidate()
}
