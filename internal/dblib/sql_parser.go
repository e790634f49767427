package dblib

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pingcap/tidb/parser"
	"github.com/pingcap/tidb/parser/ast"
	"github.com/pingcap/tidb/parser/mysql"
	_ "github.com/pingcap/tidb/parser/test_driver"
)

var (
	ErrEmptyQuery         = errors.New("empty query")
	ErrMultipleStatements = errors.New("multiple SQL statements are not supported, enter a single SELECT or WITH query")
	ErrNotSelect          = errors.New("only SELECT queries are supported")
)

// QueryInfo is what the parser could learn about a user query.
type QueryInfo struct {
	SQL string // cleaned query, without trailing semicolons

	Parsed      bool     // false when the dialect was too far from MySQL to parse
	Tables      []string // base tables in the FROM clause, in order of appearance
	HasJoin     bool
	HasGroupBy  bool
	HasDistinct bool
	IsSetOp     bool // UNION / INTERSECT / EXCEPT
}

// SourceTable returns the table the query reads when there is exactly one.
func (q *QueryInfo) SourceTable() string {
	if len(q.Tables) != 1 {
		return ""
	}
	return q.Tables[0]
}

// KeyTable returns the table whose lookup key identifies the query's rows:
// a plain single-table SELECT. Anything that combines or folds rows has none.
func (q *QueryInfo) KeyTable() string {
	if !q.Parsed || q.HasJoin || q.HasGroupBy || q.HasDistinct || q.IsSetOp {
		return ""
	}
	return q.SourceTable()
}

// ValidateQuery checks that query is a single read-only statement and
// extracts its source tables. Queries the MySQL grammar cannot parse (for
// example PostgreSQL casts) fall back to a lexical check: one statement that
// starts with SELECT, WITH or VALUES.
func ValidateQuery(query string) (*QueryInfo, error) {
	cleaned := cleanSQL(query)
	if cleaned == "" {
		return nil, ErrEmptyQuery
	}

	p := parser.New()
	p.SetSQLMode(mysql.ModeANSIQuotes)
	stmtNodes, _, err := p.Parse(cleaned, "", "")
	if err != nil {
		debugLog("query did not parse, using lexical check: %v\n", err)
		return validateLexically(cleaned)
	}

	if len(stmtNodes) == 0 {
		return nil, ErrEmptyQuery
	}
	if len(stmtNodes) > 1 {
		return nil, ErrMultipleStatements
	}

	info := &QueryInfo{SQL: cleaned, Parsed: true}
	switch stmt := stmtNodes[0].(type) {
	case *ast.SelectStmt:
		info.HasDistinct = stmt.Distinct
		info.HasGroupBy = stmt.GroupBy != nil
		if stmt.From != nil && stmt.From.TableRefs != nil {
			tables, joined, err := extractTables(stmt.From.TableRefs)
			if err != nil {
				return nil, err
			}
			info.Tables = tables
			info.HasJoin = joined
		}
	case *ast.SetOprStmt:
		info.IsSetOp = true
	default:
		return nil, fmt.Errorf("%w, got %s", ErrNotSelect, statementKind(stmt))
	}
	return info, nil
}

// cleanSQL trims whitespace and trailing semicolons.
func cleanSQL(query string) string {
	query = strings.TrimSpace(query)
	for strings.HasSuffix(query, ";") {
		query = strings.TrimSpace(strings.TrimSuffix(query, ";"))
	}
	return query
}

func validateLexically(cleaned string) (*QueryInfo, error) {
	if containsStatementBreak(cleaned) {
		return nil, ErrMultipleStatements
	}
	fields := strings.Fields(cleaned)
	switch strings.ToUpper(strings.TrimLeft(fields[0], "(")) {
	case "SELECT", "WITH", "VALUES":
		return &QueryInfo{SQL: cleaned}, nil
	}
	return nil, fmt.Errorf("%w, got %s", ErrNotSelect, strings.ToUpper(fields[0]))
}

// containsStatementBreak reports a semicolon outside quotes and comments.
func containsStatementBreak(s string) bool {
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"' || c == '`':
			quote = c
		case c == '-' && i+1 < len(s) && s[i+1] == '-':
			for i < len(s) && s[i] != '\n' {
				i++
			}
		case c == ';':
			return true
		}
	}
	return false
}

// extractTables walks the FROM clause and returns base table names. The bool
// reports whether more than one source is combined.
func extractTables(ref ast.ResultSetNode) ([]string, bool, error) {
	if ref == nil {
		return nil, false, nil
	}

	switch ref := ref.(type) {
	case *ast.Join:
		left, leftJoined, err := extractTables(ref.Left)
		if err != nil {
			return nil, false, err
		}
		if ref.Right == nil {
			return left, leftJoined, nil
		}
		right, _, err := extractTables(ref.Right)
		if err != nil {
			return nil, false, err
		}
		return append(left, right...), true, nil
	case *ast.TableSource:
		switch src := ref.Source.(type) {
		case *ast.TableName:
			return []string{qualifiedName(src)}, false, nil
		case *ast.SelectStmt:
			// A derived table hides its rows' identity behind the subquery.
			if src.From == nil || src.From.TableRefs == nil {
				return nil, true, nil
			}
			tables, _, err := extractTables(src.From.TableRefs)
			return tables, true, err
		default:
			return extractTables(src)
		}
	case *ast.TableName:
		return []string{qualifiedName(ref)}, false, nil
	case *ast.SetOprStmt:
		return nil, true, nil
	default:
		return nil, false, fmt.Errorf("unsupported table reference type: %T", ref)
	}
}

func qualifiedName(t *ast.TableName) string {
	if t.Schema.O != "" {
		return t.Schema.O + "." + t.Name.O
	}
	return t.Name.O
}

// statementKind names a statement for error messages.
func statementKind(stmt ast.StmtNode) string {
	switch stmt.(type) {
	case *ast.InsertStmt:
		return "INSERT"
	case *ast.UpdateStmt:
		return "UPDATE"
	case *ast.DeleteStmt:
		return "DELETE"
	case ast.DDLNode:
		return "DDL"
	}
	name := fmt.Sprintf("%T", stmt)
	name = strings.TrimPrefix(name, "*ast.")
	return strings.ToUpper(strings.TrimSuffix(name, "Stmt"))
}
