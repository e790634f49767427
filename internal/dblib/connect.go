package dblib

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/user"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// ConnConfig describes how to reach a database.
type ConnConfig struct {
	Database string
	Host     string
	Port     string
	Username string
	Password string
	// TypeOverride selects the database type explicitly instead of guessing
	// it from the database name.
	TypeOverride *DatabaseType
}

// ParseDatabaseType maps a config or flag value to a DatabaseType.
func ParseDatabaseType(s string) (DatabaseType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sqlite", "sqlite3":
		return SQLite, nil
	case "postgres", "postgresql", "pg":
		return PostgreSQL, nil
	case "mysql", "mariadb":
		return MySQL, nil
	}
	return 0, fmt.Errorf("unsupported database type %q", s)
}

// DetectType guesses the database type: files with a SQLite extension are
// SQLite, everything else is assumed to be PostgreSQL.
func (c ConnConfig) DetectType() DatabaseType {
	if c.TypeOverride != nil {
		return *c.TypeOverride
	}
	for _, ext := range []string{".sqlite", ".sqlite3", ".db"} {
		if strings.HasSuffix(c.Database, ext) {
			return SQLite
		}
	}
	return PostgreSQL
}

// ConnectionString builds the driver DSN.
func (c ConnConfig) ConnectionString() (string, DatabaseType, error) {
	dbType := c.DetectType()

	switch dbType {
	case SQLite:
		if _, err := os.Stat(c.Database); os.IsNotExist(err) {
			return "", dbType, fmt.Errorf("sqlite file does not exist: %s", c.Database)
		}
		return "file:" + c.Database + "?mode=ro", dbType, nil

	case PostgreSQL:
		connStr := fmt.Sprintf("dbname=%s", c.Database)
		if c.Host != "" {
			connStr += fmt.Sprintf(" host=%s", c.Host)
		}
		if c.Port != "" {
			connStr += fmt.Sprintf(" port=%s", c.Port)
		}
		if c.Username != "" {
			connStr += fmt.Sprintf(" user=%s", c.Username)
		} else if currentUser, err := user.Current(); err == nil {
			connStr += fmt.Sprintf(" user=%s", currentUser.Username)
		}
		if c.Password != "" {
			connStr += fmt.Sprintf(" password=%s", c.Password)
		}
		connStr += " sslmode=disable"
		return connStr, dbType, nil

	case MySQL:
		connStr := c.Username
		if connStr == "" {
			if currentUser, err := user.Current(); err == nil {
				connStr = currentUser.Username
			}
		}
		if c.Password != "" {
			connStr += ":" + c.Password
		}
		connStr += "@"

		host, port := c.Host, c.Port
		if host == "" {
			host = "localhost"
		}
		if port == "" {
			port = "3306"
		}
		connStr += fmt.Sprintf("tcp(%s:%s)/%s", host, port, c.Database)
		return connStr, dbType, nil

	default:
		return "", dbType, fmt.Errorf("unsupported database type")
	}
}

// Open connects and pings the database.
func Open(ctx context.Context, c ConnConfig) (*sql.DB, DatabaseType, error) {
	connStr, dbType, err := c.ConnectionString()
	if err != nil {
		return nil, dbType, err
	}

	db, err := sql.Open(databaseFeatures[dbType].driverName, connStr)
	if err != nil {
		return nil, dbType, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, dbType, fmt.Errorf("failed to ping database: %w", err)
	}
	debugLog("connected to %s database %s\n", dbType, c.Database)
	return db, dbType, nil
}

// ListTables returns the user tables of db.
func ListTables(ctx context.Context, db *sql.DB, dbType DatabaseType) ([]string, error) {
	handler, err := NewDatabaseHandler(dbType)
	if err != nil {
		return nil, err
	}
	tables, err := handler.ListTables(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	return tables, nil
}
