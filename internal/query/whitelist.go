package query

const (
	// DefaultMaxLimit bounds the limit an intent may request.
	DefaultMaxLimit = 100
	// DefaultLimit applies when the intent carries no limit.
	DefaultLimit = 10
)

// DefaultColumns is the projection used when an intent names no columns.
// It is deliberately narrower than the allowed set.
var DefaultColumns = []string{"name", "price", "description", "category"}

// AllowedOperators are the filter operators an intent may use, lower-cased.
var AllowedOperators = []string{"=", "!=", ">", "<", ">=", "<=", "like", "in"}

// Whitelist maps a table name to its allowed columns.
type Whitelist map[string][]string

// DefaultWhitelist exposes only the menus table.
func DefaultWhitelist() Whitelist {
	return Whitelist{
		"menus": {"id", "name", "description", "category", "price", "order_count", "created_at"},
	}
}

// Columns returns the allowed columns of table.
func (w Whitelist) Columns(table string) ([]string, bool) {
	cols, ok := w[table]
	return cols, ok
}

// Allows reports whether column is allowed on table. The match is case-sensitive.
func (w Whitelist) Allows(table, column string) bool {
	for _, c := range w[table] {
		if c == column {
			return true
		}
	}
	return false
}

func isAllowedOperator(op string) bool {
	for _, o := range AllowedOperators {
		if o == op {
			return true
		}
	}
	return false
}
