package dblib

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// NewRelation loads the columns and lookup key of a table or view. A relation
// without a usable key is still valid; it just cannot match re-read records to
// the ones already loaded.
func NewRelation(db *sql.DB, dbType DatabaseType, tableName string) (*Relation, error) {
	if tableName == "" {
		return nil, fmt.Errorf("table name is required")
	}

	wrapErr := func(err error) (*Relation, error) {
		return nil, fmt.Errorf("failed to load table schema: %w", err)
	}

	handler, err := NewDatabaseHandler(dbType)
	if err != nil {
		return wrapErr(err)
	}

	columns, columnIndex, err := handler.LoadColumns(db, tableName)
	if err != nil {
		return wrapErr(err)
	}

	relation := &Relation{
		DB:          db,
		DBType:      dbType,
		handler:     handler,
		Name:        tableName,
		Columns:     columns,
		ColumnIndex: columnIndex,
	}

	lookupCols, err := handler.GetShortestLookupKey(db, tableName)
	if err != nil {
		debugLog("lookup key for %s: %v\n", tableName, err)
		lookupCols = nil
	}
	relation.Key = relation.keyIndexes(lookupCols)

	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name
	}
	relation.SQLStatement, err = selectQuery(handler, dbType, tableName, names, lookupCols)
	if err != nil {
		return wrapErr(err)
	}
	return relation, nil
}

// NewQueryRelation describes the result of a user supplied SELECT. The query
// is validated first; when it reads straight from a single table the table's
// lookup key is used for the result as long as every key column is selected.
func NewQueryRelation(ctx context.Context, db *sql.DB, dbType DatabaseType, query string) (*Relation, error) {
	info, err := ValidateQuery(query)
	if err != nil {
		return nil, err
	}

	handler, err := NewDatabaseHandler(dbType)
	if err != nil {
		return nil, err
	}

	columns, err := describeQuery(ctx, db, info.SQL)
	if err != nil {
		return nil, fmt.Errorf("failed to describe query: %w", err)
	}
	columnIndex := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, dup := columnIndex[c.Name]; !dup {
			columnIndex[c.Name] = i
		}
	}

	relation := &Relation{
		DB:           db,
		DBType:       dbType,
		handler:      handler,
		Name:         info.SourceTable(),
		IsCustomSQL:  true,
		SQLStatement: info.SQL,
		Columns:      columns,
		ColumnIndex:  columnIndex,
	}

	if table := info.KeyTable(); table != "" {
		if lookupCols, err := handler.GetShortestLookupKey(db, table); err == nil {
			relation.Key = relation.keyIndexes(lookupCols)
			for i := range relation.Columns {
				relation.Columns[i].Table = table
			}
		}
	}
	return relation, nil
}

// describeQuery reads the result columns of query without fetching rows.
func describeQuery(ctx context.Context, db *sql.DB, query string) ([]Column, error) {
	rows, err := db.QueryContext(ctx, "SELECT * FROM ("+query+") AS described LIMIT 0")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return columnsOf(rows)
}

// columnsOf converts the driver's column types.
func columnsOf(rows *sql.Rows) ([]Column, error) {
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	columns := make([]Column, len(types))
	for i, ct := range types {
		nullable, ok := ct.Nullable()
		columns[i] = Column{
			Name:     ct.Name(),
			Type:     strings.ToLower(ct.DatabaseTypeName()),
			Nullable: nullable || !ok,
		}
	}
	return columns, nil
}

// keyIndexes maps key column names to column positions. It returns nil unless
// every key column is present.
func (rel *Relation) keyIndexes(names []string) []int {
	if len(names) == 0 {
		return nil
	}
	key := make([]int, 0, len(names))
	for _, name := range names {
		idx, ok := rel.ColumnIndex[name]
		if !ok {
			return nil
		}
		key = append(key, idx)
	}
	return key
}

// ColumnNames returns the column names in result order.
func (rel *Relation) ColumnNames() []string {
	names := make([]string, len(rel.Columns))
	for i, c := range rel.Columns {
		names[i] = c.Name
	}
	return names
}

// HasKey reports whether records can be matched by lookup key.
func (rel *Relation) HasKey() bool {
	return len(rel.Key) > 0
}

// KeyOf returns the lookup key of a record as a single comparable string.
func (rel *Relation) KeyOf(rec Record) (string, bool) {
	if len(rel.Key) == 0 {
		return "", false
	}
	var b strings.Builder
	for i, idx := range rel.Key {
		if idx >= len(rec) {
			return "", false
		}
		if i > 0 {
			b.WriteByte(0x1f)
		}
		// NULL keys never match anything, not even another NULL.
		if rec[idx] == nil {
			return "", false
		}
		b.WriteString(FormatValue(rec[idx]))
	}
	return b.String(), true
}

// QuoteIdent quotes an identifier for the relation's database.
func (rel *Relation) QuoteIdent(ident string) string {
	return rel.handler.QuoteIdent(ident)
}

// Stream starts reading the relation's records.
func (rel *Relation) Stream(ctx context.Context) (*Stream, error) {
	return OpenStream(ctx, rel.DB, rel.SQLStatement)
}
