package dblib

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// PostgresHandler implements DatabaseHandler for PostgreSQL.
type PostgresHandler struct{}

// splitSchema extracts schema and relation name, defaulting to public.
func splitSchema(tableName string) (string, string) {
	if dot := strings.IndexByte(tableName, '.'); dot != -1 {
		return tableName[:dot], tableName[dot+1:]
	}
	return "public", tableName
}

// ListTables returns tables and views of the public schema.
func (h *PostgresHandler) ListTables(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT table_name FROM information_schema.tables
			WHERE table_schema = 'public' ORDER BY table_name`)
	if err != nil {
		return nil, err
	}
	return scanNames(rows)
}

// LoadColumns loads column metadata for a PostgreSQL table.
func (h *PostgresHandler) LoadColumns(db *sql.DB, tableName string) ([]Column, map[string]int, error) {
	schema, rel := splitSchema(tableName)

	rows, err := db.Query(`SELECT column_name, data_type, is_nullable
			FROM information_schema.columns
			WHERE table_schema = $1 AND table_name = $2
			ORDER BY ordinal_position`, schema, rel)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var columns []Column
	columnIndex := make(map[string]int)
	for rows.Next() {
		var col Column
		var nullable string
		if err := rows.Scan(&col.Name, &col.Type, &nullable); err != nil {
			return nil, nil, err
		}
		col.Nullable = strings.ToLower(nullable) == "yes"
		col.Table = tableName

		columnIndex[col.Name] = len(columns)
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	if len(columns) == 0 {
		return nil, nil, fmt.Errorf("table %s not found", tableName)
	}
	return columns, columnIndex, nil
}

// GetShortestLookupKey returns the primary key of a PostgreSQL table, or the
// shortest unique index. NULLS NOT DISTINCT makes nullable columns usable, so
// nullability is not checked.
func (h *PostgresHandler) GetShortestLookupKey(db *sql.DB, tableName string) ([]string, error) {
	_, rel := splitSchema(tableName)

	colType := map[string]string{}
	colLen := map[string]int{}
	ctRows, err := db.Query(`SELECT column_name, data_type, COALESCE(character_maximum_length, -1)
			FROM information_schema.columns WHERE table_name = $1`, rel)
	if err != nil {
		return nil, err
	}
	for ctRows.Next() {
		var cname, dtype string
		var clen int
		if err := ctRows.Scan(&cname, &dtype, &clen); err == nil {
			colType[cname] = dtype
			colLen[cname] = clen
		}
	}
	ctRows.Close()

	pkRows, err := db.Query(`SELECT a.attname
			FROM pg_index i
			JOIN pg_class c ON c.oid = i.indrelid
			JOIN LATERAL unnest(i.indkey) WITH ORDINALITY AS k(attnum, ord) ON TRUE
			JOIN pg_attribute a ON a.attrelid = i.indrelid AND a.attnum = k.attnum
			WHERE c.relname = $1 AND i.indisprimary
			ORDER BY k.ord`, rel)
	if err != nil {
		return nil, err
	}
	pkCols, err := scanNames(pkRows)
	if err != nil {
		return nil, err
	}
	if len(pkCols) > 0 {
		// Primary key is always preferred; return early
		return pkCols, nil
	}

	uRows, err := db.Query(`SELECT i.relname,
			array_agg(a.attname ORDER BY k.ord) AS columns
			FROM pg_index idx
			JOIN pg_class c ON c.oid = idx.indrelid
			JOIN pg_class i ON i.oid = idx.indexrelid
			JOIN LATERAL unnest(idx.indkey) WITH ORDINALITY AS k(attnum, ord) ON TRUE
			JOIN pg_attribute a ON a.attrelid = idx.indrelid AND a.attnum = k.attnum
			WHERE c.relname = $1 AND idx.indisunique AND NOT idx.indisprimary
			GROUP BY i.relname`, rel)
	if err != nil {
		return nil, err
	}
	defer uRows.Close()

	var candidates []keyCandidate
	for uRows.Next() {
		var idxName, colArray string
		if err := uRows.Scan(&idxName, &colArray); err != nil {
			continue
		}
		colArray = strings.Trim(colArray, "{}")
		if colArray == "" {
			continue
		}
		cols := strings.Split(colArray, ",")
		total := 0
		for _, c := range cols {
			total += sizeOf(colType[c], colLen[c])
		}
		candidates = append(candidates, keyCandidate{name: idxName, cols: cols, totalSz: total})
	}
	if err := uRows.Err(); err != nil {
		return nil, err
	}
	return pickShortestKey(candidates), nil
}

// QuoteIdent quotes an identifier for PostgreSQL using double quotes.
func (h *PostgresHandler) QuoteIdent(ident string) string {
	return quoteIdent(PostgreSQL, ident)
}

