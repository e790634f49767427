package dblib

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// selectQuery builds the SELECT that reads a whole table. Columns default to
// every column. Rows come back in key order when a key is known so repeated
// reads list rows the same way.
func selectQuery(handler DatabaseHandler, dbType DatabaseType, tableName string, columns []string, keyCols []string) (string, error) {
	if tableName == "" {
		return "", fmt.Errorf("table name is required")
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	if len(columns) == 0 {
		b.WriteString("*")
	} else {
		for i, c := range columns {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(handler.QuoteIdent(c))
		}
	}
	b.WriteString(" FROM ")
	b.WriteString(quoteQualified(dbType, tableName))

	if len(keyCols) > 0 {
		b.WriteString(" ORDER BY ")
		for i, c := range keyCols {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(handler.QuoteIdent(c))
		}
	}
	return b.String(), nil
}

// keyCandidate is a unique index that could serve as a lookup key.
type keyCandidate struct {
	name    string
	cols    []string
	totalSz int
}

// pickShortestKey ranks unique index candidates by column count, then
// estimated byte width, then name. Returns an empty slice without candidates.
func pickShortestKey(candidates []keyCandidate) []string {
	if len(candidates) == 0 {
		return []string{}
	}
	best := slices.MinFunc(candidates, func(a, b keyCandidate) int {
		if c := cmp.Compare(len(a.cols), len(b.cols)); c != 0 {
			return c
		}
		if c := cmp.Compare(a.totalSz, b.totalSz); c != 0 {
			return c
		}
		return strings.Compare(a.name, b.name)
	})
	return best.cols
}

// quoteIdent returns ident unquoted if it's
// obviously safe to do so:
// - comprised of lowercase letters, digits, and underscores
// - does not start with a digit
// - not a common SQL reserved keyword
// Otherwise it applies database-appropriate quoting with escaping.
func quoteIdent(dbType DatabaseType, ident string) string {
	// Fast-path: return plain if it's clearly safe to be unquoted
	if isSafeUnquotedIdent(ident) {
		return ident
	}

	switch dbType {
	case MySQL:
		// Escape backticks by doubling them
		escaped := strings.ReplaceAll(ident, "`", "``")
		return "`" + escaped + "`"
	default:
		// Escape double quotes by doubling them
		escaped := strings.ReplaceAll(ident, "\"", "\"\"")
		return "\"" + escaped + "\""
	}
}

// quoteQualified splits on '.' and quotes each identifier part independently.
func quoteQualified(dbType DatabaseType, qualified string) string {
	parts := strings.Split(qualified, ".")
	for i, p := range parts {
		parts[i] = quoteIdent(dbType, p)
	}
	return strings.Join(parts, ".")
}

// isSafeUnquotedIdent returns true if ident can be used without quotes in a
// portable way across supported databases (lowercase [a-z_][a-z0-9_]* and not a
// common reserved keyword).
func isSafeUnquotedIdent(ident string) bool {
	if ident == "" {
		return false
	}
	c0 := ident[0]
	if !((c0 >= 'a' && c0 <= 'z') || c0 == '_') {
		return false
	}
	for i := 1; i < len(ident); i++ {
		c := ident[i]
		if !((c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '_') {
			return false
		}
	}
	if _, ok := commonReservedIdents[ident]; ok {
		return false
	}
	return true
}

// Small, conservative set of common SQL reserved keywords to avoid unquoted.
var commonReservedIdents = map[string]struct{}{
	// DML/DDL
	"select": {}, "insert": {}, "update": {}, "delete": {}, "into": {}, "values": {},
	"create": {}, "alter": {}, "drop": {}, "table": {}, "index": {}, "view": {},
	// Clauses
	"from": {}, "where": {}, "group": {}, "order": {}, "by": {}, "having": {},
	"limit": {}, "offset": {}, "join": {}, "inner": {}, "left": {}, "right": {}, "full": {}, "outer": {},
	// Operators/Predicates
	"and": {}, "or": {}, "not": {}, "in": {}, "is": {}, "like": {}, "between": {}, "exists": {},
	// Literals
	"null": {}, "true": {}, "false": {},
	// Misc
	"as": {}, "on": {}, "user": {},
}
