package dblib

import (
	"cmp"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"
)

// FormatValue renders a database value as cell text. NULL renders as
// NullDisplay and an empty string as EmptyDisplay.
func FormatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return NullDisplay
	case string:
		if v == "" {
			return EmptyDisplay
		}
		return v
	case []byte:
		if len(v) == 0 {
			return EmptyDisplay
		}
		return string(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		if v.Hour() == 0 && v.Minute() == 0 && v.Second() == 0 && v.Nanosecond() == 0 {
			return v.Format(time.DateOnly)
		}
		return v.Format(time.DateTime)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// CompareValues orders two database values ascending. NULL sorts first and
// floating point NaN right after it. Numbers compare numerically, including
// numbers that drivers return as text such as MySQL integers and PostgreSQL
// numerics. Everything else compares by its text.
func CompareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	switch nanA, nanB := isNaN(a), isNaN(b); {
	case nanA && nanB:
		return 0
	case nanA:
		return -1
	case nanB:
		return 1
	}

	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Compare(tb)
		}
	}
	if ba, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ba == bb:
				return 0
			case !ba:
				return -1
			}
			return 1
		}
	}

	switch a := a.(type) {
	case int64:
		if b, ok := b.(int64); ok {
			return cmp.Compare(a, b)
		}
	case float64:
		if b, ok := b.(float64); ok {
			return cmp.Compare(a, b)
		}
	case string:
		if b, ok := b.(string); ok && !looksNumeric(a) && !looksNumeric(b) {
			return cmp.Compare(a, b)
		}
	}

	na, okA := numeric(a)
	nb, okB := numeric(b)
	switch {
	case okA && okB:
		return na.Cmp(nb)
	case okA:
		// Numbers before text in mixed columns, as SQLite orders them.
		return -1
	case okB:
		return 1
	}
	return cmp.Compare(FormatValue(a), FormatValue(b))
}

// numeric converts integer, float and numeric-text values to a big.Float.
func isNaN(v any) bool {
	switch v := v.(type) {
	case float64:
		return math.IsNaN(v)
	case float32:
		return math.IsNaN(float64(v))
	}
	return false
}

func numeric(v any) (*big.Float, bool) {
	switch v := v.(type) {
	case int64:
		return new(big.Float).SetInt64(v), true
	case int:
		return new(big.Float).SetInt64(int64(v)), true
	case float64:
		if math.IsNaN(v) {
			return nil, false
		}
		return new(big.Float).SetFloat64(v), true
	case float32:
		return numeric(float64(v))
	case string:
		return parseNumeric(v)
	case []byte:
		return parseNumeric(string(v))
	}
	return nil, false
}

func parseNumeric(s string) (*big.Float, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, "xXpP_iInN") {
		return nil, false
	}
	f, _, err := big.ParseFloat(s, 10, 128, big.ToNearestEven)
	if err != nil {
		return nil, false
	}
	return f, true
}

// looksNumeric is a cheap pre-check that avoids parsing plain text.
func looksNumeric(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	c := s[0]
	return c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9')
}
