package menutool

import (
	"context"
	"encoding/json"
	"fmt"

	"resto-chatbot/internal/common/errors"
	"resto-chatbot/internal/common/validation"
)

const (
	ToolName        = "get_menu_data"
	ToolDescription = "Get menu data from the restaurant database based on various criteria"
)

// parametersSchema is published to clients and enforced on direct tool calls.
const parametersSchema = `{
  "type": "object",
  "properties": {
    "category": {
      "type": ["string", "null"],
      "description": "Filter by menu category (e.g., \"makanan\", \"minuman\", \"dessert\")"
    },
    "price_range": {
      "type": ["object", "null"],
      "description": "Filter by price range",
      "properties": {
        "min": {"type": "number", "description": "Minimum price"},
        "max": {"type": "number", "description": "Maximum price"}
      }
    },
    "limit": {
      "type": ["integer", "null"],
      "minimum": 1,
      "description": "Limit number of results (default: 10, max: 50)"
    },
    "sort_by": {
      "type": ["string", "null"],
      "description": "Sort results by: \"price\", \"name\", \"order_count\", \"created_at\""
    },
    "sort_order": {
      "type": ["string", "null"],
      "description": "Sort order: \"asc\" or \"desc\" (default: \"asc\")"
    },
    "search": {
      "type": ["string", "null"],
      "description": "Search term for menu name or description"
    }
  }
}`

var paramsSchema = validation.MustCompile(ToolName, parametersSchema)

// Descriptor is the published shape of the tool.
type Descriptor struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"`
}

// Tool exposes a Lookup under the get_menu_data contract.
type Tool struct {
	lookup   Lookup
	maxLimit int
}

// NewTool bounds every lookup by maxLimit. Values outside [1, MaxLimit] mean MaxLimit.
func NewTool(lookup Lookup, maxLimit int) *Tool {
	if maxLimit < 1 || maxLimit > MaxLimit {
		maxLimit = MaxLimit
	}
	return &Tool{lookup: lookup, maxLimit: maxLimit}
}

// MaxLimit is the largest number of records one call returns.
func (t *Tool) MaxLimit() int {
	return t.maxLimit
}

func (t *Tool) Descriptor() Descriptor {
	var params map[string]interface{}
	_ = json.Unmarshal([]byte(parametersSchema), &params)
	if props, ok := params["properties"].(map[string]interface{}); ok {
		if limit, ok := props["limit"].(map[string]interface{}); ok {
			limit["description"] = fmt.Sprintf("Limit number of results (default: %d, max: %d)", min(DefaultLimit, t.maxLimit), t.maxLimit)
		}
	}
	return Descriptor{Name: ToolName, Description: ToolDescription, Parameters: params}
}

// Run executes the lookup for already built parameters, with the limit resolved.
func (t *Tool) Run(ctx context.Context, p Params) Envelope {
	p.Limit = intPtr(p.ClampLimit(t.maxLimit))
	return t.lookup.Lookup(ctx, p)
}

// Handle validates raw arguments against the parameter schema and runs the lookup.
func (t *Tool) Handle(ctx context.Context, args map[string]interface{}) (Envelope, error) {
	p, err := ParseParams(args)
	if err != nil {
		return Envelope{}, err
	}
	return t.Run(ctx, p), nil
}

// ParseParams checks args against the tool schema and decodes them.
func ParseParams(args map[string]interface{}) (Params, error) {
	if args == nil {
		args = map[string]interface{}{}
	}
	if res := paramsSchema.Validate(args); !res.Valid {
		return Params{}, errors.NewInvalidRequestError(res.Summary())
	}

	raw, err := json.Marshal(args)
	if err != nil {
		return Params{}, errors.NewInvalidRequestError(err.Error())
	}
	var p Params
	if err := json.Unmarshal(raw, &p); err != nil {
		return Params{}, errors.NewInvalidRequestError(fmt.Sprintf("decode params: %v", err))
	}
	return p, nil
}
