package dblib

import (
	"database/sql"
)

// should be configurable
const NullDisplay = "null"
const EmptyDisplay = "·"

type DatabaseType int

const (
	SQLite DatabaseType = iota
	PostgreSQL
	MySQL
)

func (t DatabaseType) String() string {
	switch t {
	case SQLite:
		return "sqlite"
	case PostgreSQL:
		return "postgres"
	case MySQL:
		return "mysql"
	}
	return "unknown"
}

type databaseFeature struct {
	driverName            string
	embedded              bool
	positionalPlaceholder bool
}

var databaseFeatures = map[DatabaseType]databaseFeature{
	SQLite: {
		driverName:            "sqlite3",
		embedded:              true,
		positionalPlaceholder: false,
	},
	PostgreSQL: {
		driverName:            "postgres",
		embedded:              false,
		positionalPlaceholder: true,
	},
	MySQL: {
		driverName:            "mysql",
		embedded:              false,
		positionalPlaceholder: false,
	},
}

// Record is one result row, ordered like Relation.Columns.
type Record []any

// database: table, attribute, record
// grid: columns, cells, rows
type Relation struct {
	DB      *sql.DB
	DBType  DatabaseType
	handler DatabaseHandler

	Name         string
	IsCustomSQL  bool   // true when built from a user query rather than a table name
	SQLStatement string // the SELECT that produces the records
	Columns      []Column
	ColumnIndex  map[string]int // column name -> column index
	Key          []int          // index into Columns for lookup key columns, empty when unknown
}

// Column describes one column of a relation.
type Column struct {
	Name     string
	Type     string
	Nullable bool
	Table    string // blank if derived/computed, base table name if passthrough
}
