package dblib

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// MySQLHandler implements DatabaseHandler for MySQL and MariaDB.
type MySQLHandler struct{}

// ListTables returns the tables of the connection's current database.
func (h *MySQLHandler) ListTables(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT table_name FROM information_schema.tables
			WHERE table_schema = DATABASE() ORDER BY table_name`)
	if err != nil {
		return nil, err
	}
	return scanNames(rows)
}

// LoadColumns loads column metadata for a MySQL table.
func (h *MySQLHandler) LoadColumns(db *sql.DB, tableName string) ([]Column, map[string]int, error) {
	rows, err := db.Query(`SELECT column_name, data_type, is_nullable
			FROM information_schema.columns
			WHERE table_schema = DATABASE() AND table_name = ?
			ORDER BY ordinal_position`, tableName)
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

// GetShortestLookupKey returns the primary key of a MySQL table, or the
// shortest unique index whose columns are all NOT NULL.
func (h *MySQLHandler) GetShortestLookupKey(db *sql.DB, tableName string) ([]string, error) {
	colType := map[string]string{}
	colLen := map[string]int{}
	notNull := map[string]bool{}
	ctRows, err := db.Query(`SELECT column_name, data_type, COALESCE(character_maximum_length, -1), is_nullable
			FROM information_schema.columns
			WHERE table_schema = DATABASE() AND table_name = ?`, tableName)
	if err != nil {
		return nil, err
	}
	for ctRows.Next() {
		var cname, dtype, isNullStr string
		var clen int
		if err := ctRows.Scan(&cname, &dtype, &clen, &isNullStr); err == nil {
			colType[cname] = dtype
			colLen[cname] = clen
			notNull[cname] = strings.ToLower(isNullStr) == "no"
		}
	}
	ctRows.Close()

	pkRows, err := db.Query(`SELECT column_name
			FROM information_schema.key_column_usage
			WHERE table_schema = DATABASE() AND table_name = ? AND constraint_name = 'PRIMARY'
			ORDER BY ordinal_position`, tableName)
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

	rows, err := db.Query(`SELECT index_name, column_name
			FROM information_schema.statistics
			WHERE table_schema = DATABASE() AND table_name = ? AND non_unique = 0 AND index_name != 'PRIMARY'
			ORDER BY index_name, seq_in_index`, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var order []string
	idxCols := map[string][]string{}
	for rows.Next() {
		var idxName, colName string
		if err := rows.Scan(&idxName, &colName); err != nil {
			continue
		}
		if _, seen := idxCols[idxName]; !seen {
			order = append(order, idxName)
		}
		idxCols[idxName] = append(idxCols[idxName], colName)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var candidates []keyCandidate
	for _, name := range order {
		cols := idxCols[name]
		valid := true
		total := 0
		for _, c := range cols {
			if !notNull[c] {
				valid = false
				break
			}
			total += sizeOf(colType[c], colLen[c])
		}
		if valid {
			candidates = append(candidates, keyCandidate{name: name, cols: cols, totalSz: total})
		}
	}
	return pickShortestKey(candidates), nil
}

// QuoteIdent quotes an identifier for MySQL using backticks.
func (h *MySQLHandler) QuoteIdent(ident string) string {
	return quoteIdent(MySQL, ident)
}

