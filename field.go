package main

import (
	"seltable/internal/dblib"
)

// field is a result column position. It is the column identity the grid sorts,
// searches and selects by.
type field int

func (f field) Text(rec dblib.Record) string {
	if int(f) >= len(rec) {
		return ""
	}
	return dblib.FormatValue(rec[f])
}

func (f field) Compare(a, b dblib.Record) int {
	var va, vb any
	if int(f) < len(a) {
		va = a[f]
	}
	if int(f) < len(b) {
		vb = b[f]
	}
	return dblib.CompareValues(va, vb)
}

// fieldsOf returns one field per relation column, in result order.
func fieldsOf(rel *dblib.Relation) []field {
	fields := make([]field, len(rel.Columns))
	for i := range fields {
		fields[i] = field(i)
	}
	return fields
}
