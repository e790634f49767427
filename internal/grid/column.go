package grid

import "fmt"

// SortOrder is the direction rows are displayed in for the sort column.
type SortOrder int

const (
	Ascending SortOrder = iota
	Descending
)

func (o SortOrder) String() string {
	if o == Descending {
		return "desc"
	}
	return "asc"
}

// Reverse returns the opposite order.
func (o SortOrder) Reverse() SortOrder {
	if o == Ascending {
		return Descending
	}
	return Ascending
}

// Column identifies one column of a table. Implementations are usually a
// small integer enum whose methods switch over every declared value.
//
// Compare must implement ascending order only and return a negative number,
// zero or a positive number like cmp.Compare. Descending order is handled by
// the table. Text returns the rendered text of the cell, used for search and
// for copying cells.
type Column[R any] interface {
	comparable
	Text(row R) string
	Compare(a, b R) int
}

// columnSet holds the caller's declared column order.
type columnSet[F comparable] struct {
	order []F
	index map[F]int
}

func newColumnSet[F comparable](columns []F) columnSet[F] {
	if len(columns) == 0 {
		panic("grid: table needs at least one column")
	}
	cs := columnSet[F]{
		order: make([]F, len(columns)),
		index: make(map[F]int, len(columns)),
	}
	copy(cs.order, columns)
	for i, col := range columns {
		if _, dup := cs.index[col]; dup {
			panic(fmt.Sprintf("grid: column %v declared twice", col))
		}
		cs.index[col] = i
	}
	return cs
}

// position returns the declared index of col. An undeclared column is a
// programming error in the host integration.
func (cs columnSet[F]) position(col F) int {
	i, ok := cs.index[col]
	if !ok {
		panic(fmt.Sprintf("grid: column %v is not in the column list", col))
	}
	return i
}

func (cs columnSet[F]) first() F { return cs.order[0] }

func (cs columnSet[F]) last() F { return cs.order[len(cs.order)-1] }

func (cs columnSet[F]) next(col F) F {
	i := cs.position(col)
	if i == len(cs.order)-1 {
		return cs.order[0]
	}
	return cs.order[i+1]
}

func (cs columnSet[F]) previous(col F) F {
	i := cs.position(col)
	if i == 0 {
		return cs.order[len(cs.order)-1]
	}
	return cs.order[i-1]
}

// span returns the declared columns between a and b inclusive, in declared
// order. It never wraps.
func (cs columnSet[F]) span(a, b F) []F {
	lo, hi := cs.position(a), cs.position(b)
	if lo > hi {
		lo, hi = hi, lo
	}
	return cs.order[lo : hi+1]
}

// defaultColumn is the zero value of F when it is a declared column, otherwise
// the first declared column.
func (cs columnSet[F]) defaultColumn() F {
	var zero F
	if _, ok := cs.index[zero]; ok {
		return zero
	}
	return cs.first()
}
