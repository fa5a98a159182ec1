// Package query turns an untrusted structured query description into a
// validated, parameterized SELECT against the whitelisted menu store.
package query

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// RawIntent is a decoded but unvalidated intent object. Numbers are kept as
// json.Number so integer limits survive decoding unchanged.
type RawIntent map[string]interface{}

// Filter is one conjunctive predicate of an intent.
type Filter struct {
	Column string      `json:"column"`
	Op     string      `json:"op"`
	Value  interface{} `json:"value"`
}

// Order is one ORDER BY entry.
type Order struct {
	Column    string `json:"column"`
	Direction string `json:"direction"`
}

// Intent is the typed form of a validated query description.
type Intent struct {
	Action  string   `json:"action"`
	Table   string   `json:"table"`
	Columns []string `json:"columns,omitempty"`
	Filters []Filter `json:"filters,omitempty"`
	OrderBy []Order  `json:"order_by,omitempty"`
	Limit   int      `json:"limit,omitempty"`
}

// ErrNotObject is returned by ParseIntent when the text is valid JSON but not an object.
var ErrNotObject = errors.New("intent is not a JSON object")

// ParseIntent decodes text as a single JSON object.
func ParseIntent(text string) (RawIntent, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected data after intent object")
	}

	obj, ok := v.(map[string]interface{})
	if !ok {
		return nil, ErrNotObject
	}
	return RawIntent(obj), nil
}

// present mirrors "set and not null".
func (r RawIntent) present(key string) (interface{}, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}
