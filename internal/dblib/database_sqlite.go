package dblib

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// SQLiteHandler implements DatabaseHandler for SQLite files.
type SQLiteHandler struct{}

// ListTables returns user tables and views, skipping SQLite's internal tables.
func (h *SQLiteHandler) ListTables(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT name FROM sqlite_master WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		return nil, err
	}
	return scanNames(rows)
}

// LoadColumns loads column metadata for a SQLite table.
func (h *SQLiteHandler) LoadColumns(db *sql.DB, tableName string) ([]Column, map[string]int, error) {
	columns, columnIndex, _, err := loadColumnsSQLite(db, tableName)
	return columns, columnIndex, err
}

// GetShortestLookupKey returns the best lookup key for a SQLite table.
func (h *SQLiteHandler) GetShortestLookupKey(db *sql.DB, tableName string) ([]string, error) {
	return getShortestLookupKeySQLite(db, tableName, sizeOf)
}

// QuoteIdent quotes an identifier for SQLite using double quotes.
func (h *SQLiteHandler) QuoteIdent(ident string) string {
	return quoteIdent(SQLite, ident)
}


// loadColumnsSQLite loads columns for a SQLite table. The primary key columns
// are returned in key order.
func loadColumnsSQLite(db *sql.DB, tableName string) ([]Column, map[string]int, []string, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", quoteIdent(SQLite, tableName)))
	if err != nil {
		return nil, nil, nil, err
	}
	defer rows.Close()

	var columns []Column
	columnIndex := make(map[string]int)
	type pkEntry struct {
		ord  int
		name string
	}
	var pkEntries []pkEntry

	for rows.Next() {
		var col Column
		var notNull int
		var cid int
		var dfltValue sql.NullString
		var pk int

		if err := rows.Scan(&cid, &col.Name, &col.Type, &notNull, &dfltValue, &pk); err != nil {
			return nil, nil, nil, err
		}

		col.Nullable = notNull != 1
		col.Table = tableName
		if pk > 0 {
			pkEntries = append(pkEntries, pkEntry{ord: pk, name: col.Name})
		}

		columnIndex[col.Name] = len(columns)
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, nil, err
	}
	if len(columns) == 0 {
		return nil, nil, nil, fmt.Errorf("table %s not found", tableName)
	}

	slices.SortFunc(pkEntries, func(a, b pkEntry) int { return a.ord - b.ord })
	primaryKey := make([]string, len(pkEntries))
	for i, e := range pkEntries {
		primaryKey[i] = e.name
	}
	return columns, columnIndex, primaryKey, nil
}

// getShortestLookupKeySQLite returns the primary key of a SQLite table, or the
// shortest unique index whose columns are all NOT NULL.
func getShortestLookupKeySQLite(db *sql.DB, tableName string, sizeOf func(string, int) int) ([]string, error) {
	columns, columnIndex, primaryKey, err := loadColumnsSQLite(db, tableName)
	if err != nil {
		return nil, err
	}
	if len(primaryKey) > 0 {
		// Primary key is always preferred; return early
		return primaryKey, nil
	}

	indexes, err := db.Query(fmt.Sprintf("PRAGMA index_list(%s)", quoteIdent(SQLite, tableName)))
	if err != nil {
		return nil, err
	}
	type uniqueIndex struct {
		name string
	}
	var unique []uniqueIndex
	for indexes.Next() {
		var seq, isUnique, partial int
		var name, origin string
		if err := indexes.Scan(&seq, &name, &isUnique, &origin, &partial); err != nil {
			continue
		}
		if isUnique == 1 && origin != "pk" && partial == 0 {
			unique = append(unique, uniqueIndex{name: name})
		}
	}
	indexes.Close()
	if err := indexes.Err(); err != nil {
		return nil, err
	}

	var candidates []keyCandidate
	for _, idx := range unique {
		info, err := db.Query(fmt.Sprintf("PRAGMA index_info(%s)", quoteIdent(SQLite, idx.name)))
		if err != nil {
			continue
		}
		type idxEntry struct {
			ord  int
			name string
		}
		var entries []idxEntry
		for info.Next() {
			var seqno, cid int
			var cname sql.NullString
			if err := info.Scan(&seqno, &cid, &cname); err == nil && cname.Valid {
				entries = append(entries, idxEntry{ord: seqno, name: cname.String})
			}
		}
		info.Close()
		if len(entries) == 0 {
			continue
		}
		slices.SortFunc(entries, func(a, b idxEntry) int { return a.ord - b.ord })

		// Require NOT NULL for unique in SQLite
		valid := true
		total := 0
		cols := make([]string, 0, len(entries))
		for _, e := range entries {
			i, ok := columnIndex[e.name]
			if !ok || columns[i].Nullable {
				valid = false
				break
			}
			cols = append(cols, e.name)
			total += sizeOf(columns[i].Type, -1)
		}
		if valid {
			candidates = append(candidates, keyCandidate{name: idx.name, cols: cols, totalSz: total})
		}
	}
	return pickShortestKey(candidates), nil
}

// sizeOf estimates the byte width of a database column type.
func sizeOf(typ string, charLen int) int {
	t := strings.ToLower(strings.TrimSpace(typ))
	if charLen <= 0 {
		if i := strings.Index(t, "("); i != -1 {
			if j := strings.Index(t[i+1:], ")"); j != -1 {
				if n, err := strconv.Atoi(strings.TrimSpace(t[i+1 : i+1+j])); err == nil {
					charLen = n
				}
			}
		}
	}
	switch {
	case strings.Contains(t, "tinyint"):
		return 1
	case strings.Contains(t, "smallint"):
		return 2
	case strings.Contains(t, "bigint"):
		return 8
	case strings.HasPrefix(t, "int") || strings.Contains(t, "integer"):
		return 4
	case strings.Contains(t, "real") || strings.Contains(t, "double") || strings.Contains(t, "float"):
		return 8
	case strings.Contains(t, "bool"):
		return 1
	case strings.Contains(t, "uuid"):
		return 16
	case strings.Contains(t, "date") || strings.Contains(t, "time"):
		return 8
	case strings.Contains(t, "char") || strings.Contains(t, "text") || strings.Contains(t, "clob"):
		if charLen > 0 {
			return charLen
		}
		return 1024 * 1024
	case strings.Contains(t, "decimal") || strings.Contains(t, "numeric"):
		return 16
	case strings.Contains(t, "bytea") || strings.Contains(t, "blob") || strings.Contains(t, "binary"):
		return 1024 * 1024
	default:
		return 8
	}
}
