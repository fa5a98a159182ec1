// Package menutool implements the keyword-path menu lookup: parameter
// extraction from free text, the bounded menu query and its result envelope.
package menutool

import (
	"strings"
)

const (
	DefaultLimit = 10
	MaxLimit     = 50
)

// SortFields are the columns a lookup may order by.
var SortFields = []string{"name", "price", "order_count", "created_at"}

// MenuColumns is the projection of every lookup.
var MenuColumns = []string{"id", "name", "description", "category", "price", "order_count", "created_at"}

// PriceRange bounds the price inclusively. Either side may be nil.
type PriceRange struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// Params are the lookup criteria. Empty strings count as absent.
type Params struct {
	Category   string      `json:"category,omitempty"`
	PriceRange *PriceRange `json:"price_range,omitempty"`
	Search     string      `json:"search,omitempty"`
	SortBy     *string     `json:"sort_by,omitempty"`
	SortOrder  string      `json:"sort_order,omitempty"`
	Limit      *int        `json:"limit,omitempty"`
}

// EffectiveLimit applies the default and clamps to MaxLimit.
func (p Params) EffectiveLimit() int {
	return p.ClampLimit(MaxLimit)
}

// ClampLimit applies the default and clamps to ceiling, which never exceeds MaxLimit.
func (p Params) ClampLimit(ceiling int) int {
	if ceiling < 1 || ceiling > MaxLimit {
		ceiling = MaxLimit
	}
	if p.Limit == nil || *p.Limit < 1 {
		return min(DefaultLimit, ceiling)
	}
	if *p.Limit > ceiling {
		return ceiling
	}
	return *p.Limit
}

// Ordering returns the sort column and direction. ok is false when the
// requested column is not sortable, in which case no ordering applies.
func (p Params) Ordering() (column, direction string, ok bool) {
	column = "name"
	if p.SortBy != nil {
		column = *p.SortBy
	}
	if !isSortField(column) {
		return "", "", false
	}
	direction = "asc"
	if strings.ToLower(p.SortOrder) == "desc" {
		direction = "desc"
	}
	return column, direction, true
}

func isSortField(column string) bool {
	for _, f := range SortFields {
		if f == column {
			return true
		}
	}
	return false
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }
