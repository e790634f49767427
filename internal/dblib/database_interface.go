package dblib

import (
	"context"
	"database/sql"
	"fmt"
)

// DatabaseHandler defines database-specific operations for a particular database type.
// Each database backend (MySQL, PostgreSQL, SQLite) implements this interface
// to provide schema introspection, key selection and identifier quoting.
//
// The interface keeps the database-agnostic logic (in NewRelation and the record
// stream) apart from the system tables each backend has to query.
//
// Example: Adding a new database backend
//
//	type NewDBHandler struct{}
//
//	func (h *NewDBHandler) ListTables(ctx context.Context, db *sql.DB) ([]string, error) {
//	    // Query database-specific system tables
//	    return nil, nil
//	}
//	// ... implement remaining interface methods
//
//	// Register in NewDatabaseHandler factory
type DatabaseHandler interface {
	// ListTables returns the names of the user tables, sorted by name.
	ListTables(ctx context.Context, db *sql.DB) ([]string, error)

	// LoadColumns loads column metadata for a table or view.
	// Returns:
	//   - columns: slice of Column structs with name, type and nullability
	//   - columnIndex: map from column name to index in columns slice
	//   - error: if table doesn't exist or query fails
	LoadColumns(db *sql.DB, tableName string) ([]Column, map[string]int, error)

	// GetShortestLookupKey returns the best lookup key for a table by considering
	// the primary key and all suitable unique constraints, ranking by:
	//   - fewest columns
	//   - smallest estimated total byte width
	//
	// For PostgreSQL, NULLS NOT DISTINCT is supported so nullability is not a filter.
	// For SQLite/MySQL, requires all unique index columns to be NOT NULL.
	//
	// Returns the column names comprising the shortest lookup key, or empty slice as fallback.
	GetShortestLookupKey(db *sql.DB, tableName string) ([]string, error)

	// QuoteIdent quotes an identifier (table name, column name, etc.) for safe use in SQL.
	// Different databases use different quoting characters:
	//   - MySQL: backticks `identifier`
	//   - PostgreSQL, SQLite: double quotes "identifier"
	QuoteIdent(ident string) string
}

// NewDatabaseHandler creates a DatabaseHandler for the given database type.
// Returns an error if the database type is not supported.
//
// Example usage:
//
//	handler, err := NewDatabaseHandler(dbType)
//	if err != nil {
//	    return fmt.Errorf("unsupported database: %w", err)
//	}
//	tables, err := handler.ListTables(ctx, db)
func NewDatabaseHandler(dbType DatabaseType) (DatabaseHandler, error) {
	switch dbType {
	case MySQL:
		return &MySQLHandler{}, nil
	case PostgreSQL:
		return &PostgresHandler{}, nil
	case SQLite:
		return &SQLiteHandler{}, nil
	default:
		return nil, fmt.Errorf("unsupported database type: %v", dbType)
	}
}

// scanNames reads a single string column from rows.
func scanNames(rows *sql.Rows) ([]string, error) {
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return names, nil
}
