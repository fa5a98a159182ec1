package query

import (
	"encoding/json"
	"fmt"
	"strings"

	"resto-chatbot/internal/common/database"
)

// Statement is a compiled, fully parameterized SELECT.
type Statement struct {
	SQL  string
	Args []interface{}
	// Dropped lists filters that were skipped during compilation.
	Dropped []Filter
}

// Compile renders a validated intent for dialect. Identifiers come only from
// the whitelist; every value, including the limit, is a bound argument.
func Compile(v ValidatedIntent, dialect database.Dialect, defaultLimit int) (Statement, error) {
	in := v.intent
	if in.Table == "" {
		return Statement{}, fmt.Errorf("intent has no table; it did not come from Validator.Validate")
	}
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}

	var (
		stmt Statement
		sb   strings.Builder
	)
	bind := func(val interface{}) string {
		stmt.Args = append(stmt.Args, val)
		return dialect.Placeholder(len(stmt.Args))
	}

	columns := in.Columns
	if len(columns) == 0 {
		columns = DefaultColumns
	}
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = dialect.QuoteIdent(c)
	}

	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(quoted, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(dialect.QuoteIdent(in.Table))

	var where []string
	for _, f := range in.Filters {
		col := dialect.QuoteIdent(f.Column)
		switch f.Op {
		case "in":
			items, ok := f.Value.([]interface{})
			if !ok {
				stmt.Dropped = append(stmt.Dropped, f)
				continue
			}
			if len(items) == 0 {
				where = append(where, "1 = 0")
				continue
			}
			marks := make([]string, len(items))
			for i, item := range items {
				val, err := bindValue(item)
				if err != nil {
					return Statement{}, fmt.Errorf("filter on %s: %w", f.Column, err)
				}
				marks[i] = bind(val)
			}
			where = append(where, fmt.Sprintf("%s IN (%s)", col, strings.Join(marks, ", ")))
		case "like":
			val, err := bindValue(f.Value)
			if err != nil {
				return Statement{}, fmt.Errorf("filter on %s: %w", f.Column, err)
			}
			where = append(where, dialect.LikeExpr(col, bind(val)))
		case "=", "!=", ">", "<", ">=", "<=":
			val, err := bindValue(f.Value)
			if err != nil {
				return Statement{}, fmt.Errorf("filter on %s: %w", f.Column, err)
			}
			where = append(where, fmt.Sprintf("%s %s %s", col, f.Op, bind(val)))
		default:
			stmt.Dropped = append(stmt.Dropped, f)
		}
	}
	if len(where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}

	if len(in.OrderBy) > 0 {
		orders := make([]string, len(in.OrderBy))
		for i, o := range in.OrderBy {
			orders[i] = dialect.QuoteIdent(o.Column) + " " + strings.ToUpper(o.Direction)
		}
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(orders, ", "))
	}

	limit := in.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	sb.WriteString(" LIMIT ")
	sb.WriteString(bind(limit))

	stmt.SQL = sb.String()
	return stmt, nil
}

// bindValue converts a decoded JSON scalar into a driver argument.
func bindValue(v interface{}) (interface{}, error) {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i, nil
		}
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", val.String())
		}
		return f, nil
	case string, bool, int, int64, float64:
		return val, nil
	default:
		return nil, fmt.Errorf("value of type %T cannot be bound", v)
	}
}
