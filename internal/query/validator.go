package query

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ValidationKind classifies why an intent was rejected.
type ValidationKind int

const (
	UnsupportedAction ValidationKind = iota + 1
	MissingTable
	UnknownTable
	InvalidColumns
	InvalidFilters
	InvalidOrderBy
	InvalidLimit
)

func (k ValidationKind) String() string {
	switch k {
	case UnsupportedAction:
		return "UnsupportedAction"
	case MissingTable:
		return "MissingTable"
	case UnknownTable:
		return "UnknownTable"
	case InvalidColumns:
		return "InvalidColumns"
	case InvalidFilters:
		return "InvalidFilters"
	case InvalidOrderBy:
		return "InvalidOrderBy"
	case InvalidLimit:
		return "InvalidLimit"
	default:
		return "Unknown"
	}
}

// ValidationError is the typed rejection returned by Validate. Reason is
// safe to show to the client.
type ValidationError struct {
	Kind   ValidationKind
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func reject(kind ValidationKind, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// ValidatedIntent can only be obtained from Validator.Validate, so anything
// holding one has passed the whitelist checks.
type ValidatedIntent struct {
	intent Intent
}

// Intent returns a copy of the validated intent.
func (v ValidatedIntent) Intent() Intent {
	out := v.intent
	out.Columns = append([]string(nil), v.intent.Columns...)
	out.Filters = append([]Filter(nil), v.intent.Filters...)
	out.OrderBy = append([]Order(nil), v.intent.OrderBy...)
	return out
}

// Validator checks raw intents against a whitelist.
type Validator struct {
	whitelist Whitelist
	maxLimit  int
}

func NewValidator(whitelist Whitelist, maxLimit int) *Validator {
	if whitelist == nil {
		whitelist = DefaultWhitelist()
	}
	if maxLimit <= 0 {
		maxLimit = DefaultMaxLimit
	}
	return &Validator{whitelist: whitelist, maxLimit: maxLimit}
}

// MaxLimit returns the largest limit an intent may request.
func (v *Validator) MaxLimit() int {
	return v.maxLimit
}

// Validate checks every field of raw in a fixed order and returns the first
// rejection as a *ValidationError.
func (v *Validator) Validate(raw RawIntent) (ValidatedIntent, error) {
	action, ok := raw.present("action")
	if !ok || strings.ToLower(scalarString(action)) != "select" {
		return ValidatedIntent{}, reject(UnsupportedAction, "Only select action allowed")
	}

	tableVal, ok := raw.present("table")
	if !ok {
		return ValidatedIntent{}, reject(MissingTable, "Missing table")
	}
	table := strings.ToLower(scalarString(tableVal))
	if _, ok := v.whitelist.Columns(table); !ok {
		return ValidatedIntent{}, reject(UnknownTable, "Table '%s' not allowed", table)
	}

	out := Intent{Action: "select", Table: table}

	if colsVal, ok := raw.present("columns"); ok {
		cols, isSeq := colsVal.([]interface{})
		if !isSeq {
			return ValidatedIntent{}, reject(InvalidColumns, "columns must be array")
		}
		out.Columns = make([]string, 0, len(cols))
		for _, c := range cols {
			name, isStr := c.(string)
			if !isStr || !v.whitelist.Allows(table, name) {
				return ValidatedIntent{}, reject(InvalidColumns, "column '%s' not allowed", scalarString(c))
			}
			out.Columns = append(out.Columns, name)
		}
	}

	if filtersVal, ok := raw.present("filters"); ok {
		filters, isSeq := filtersVal.([]interface{})
		if !isSeq {
			return ValidatedIntent{}, reject(InvalidFilters, "filters must be array")
		}
		for _, f := range filters {
			filter, err := v.validateFilter(table, f)
			if err != nil {
				return ValidatedIntent{}, err
			}
			out.Filters = append(out.Filters, filter)
		}
	}

	if orderVal, ok := raw.present("order_by"); ok {
		orders, isSeq := orderVal.([]interface{})
		if !isSeq {
			return ValidatedIntent{}, reject(InvalidOrderBy, "order_by must be array")
		}
		for _, o := range orders {
			order, err := v.validateOrder(table, o)
			if err != nil {
				return ValidatedIntent{}, err
			}
			out.OrderBy = append(out.OrderBy, order)
		}
	}

	if limitVal, ok := raw.present("limit"); ok {
		limit, isInt := coerceLimit(limitVal)
		if !isInt {
			return ValidatedIntent{}, reject(InvalidLimit, "limit must be integer")
		}
		if limit < 1 || limit > int64(v.maxLimit) {
			return ValidatedIntent{}, reject(InvalidLimit, "limit must be between 1 and %d", v.maxLimit)
		}
		out.Limit = int(limit)
	}

	return ValidatedIntent{intent: out}, nil
}

func (v *Validator) validateFilter(table string, f interface{}) (Filter, error) {
	m, ok := f.(map[string]interface{})
	if !ok {
		return Filter{}, reject(InvalidFilters, "filter missing fields")
	}
	col, hasCol := RawIntent(m).present("column")
	op, hasOp := RawIntent(m).present("op")
	val, hasVal := RawIntent(m).present("value")
	if !hasCol || !hasOp || !hasVal {
		return Filter{}, reject(InvalidFilters, "filter missing fields")
	}

	name, isStr := col.(string)
	if !isStr || !v.whitelist.Allows(table, name) {
		return Filter{}, reject(InvalidFilters, "filter column '%s' not allowed", scalarString(col))
	}

	opStr := scalarString(op)
	lowered := strings.ToLower(opStr)
	if !isAllowedOperator(lowered) {
		return Filter{}, reject(InvalidFilters, "filter op '%s' not allowed", opStr)
	}

	return Filter{Column: name, Op: lowered, Value: val}, nil
}

func (v *Validator) validateOrder(table string, o interface{}) (Order, error) {
	m, ok := o.(map[string]interface{})
	if !ok {
		return Order{}, reject(InvalidOrderBy, "order_by.column missing")
	}
	col, hasCol := RawIntent(m).present("column")
	if !hasCol {
		return Order{}, reject(InvalidOrderBy, "order_by.column missing")
	}
	name, isStr := col.(string)
	if !isStr || !v.whitelist.Allows(table, name) {
		return Order{}, reject(InvalidOrderBy, "order_by column '%s' not allowed", scalarString(col))
	}

	dir := "asc"
	if d, ok := RawIntent(m).present("direction"); ok {
		dir = strings.ToLower(scalarString(d))
	}
	if dir != "asc" && dir != "desc" {
		return Order{}, reject(InvalidOrderBy, "order_by.direction invalid")
	}

	return Order{Column: name, Direction: dir}, nil
}

// coerceLimit accepts integers, integral numbers and digit-only strings.
func coerceLimit(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		f, err := n.Float64()
		if err != nil || f != math.Trunc(f) || f < 0 {
			return 0, false
		}
		if f > math.MaxInt32 {
			return math.MaxInt32, true
		}
		return int64(f), true
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if n != math.Trunc(n) || n < 0 {
			return 0, false
		}
		if n > math.MaxInt32 {
			return math.MaxInt32, true
		}
		return int64(n), true
	case string:
		if n == "" {
			return 0, false
		}
		for _, r := range n {
			if r < '0' || r > '9' {
				return 0, false
			}
		}
		i, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			// digit-only but too large: still an integer, just out of range
			return math.MaxInt64, true
		}
		return i, true
	default:
		return 0, false
	}
}

func scalarString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(s)
	}
}
