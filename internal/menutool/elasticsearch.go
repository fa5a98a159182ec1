package menutool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"resto-chatbot/internal/common/database"
	"resto-chatbot/internal/common/logger"
	"resto-chatbot/internal/common/metrics"
	"resto-chatbot/internal/common/observability"
)

// ESLookup runs lookups against a menu index mirrored into Elasticsearch.
// The index uses the default dynamic mapping: category, name and description
// are text with a .keyword subfield, which wildcard matching and sorting use.
type ESLookup struct {
	es     *database.ElasticsearchClient
	logger logger.Logger
}

func NewESLookup(es *database.ElasticsearchClient, log logger.Logger) *ESLookup {
	return &ESLookup{es: es, logger: logger.Component(log, "menu-lookup-es")}
}

type esHit struct {
	Source database.Row `json:"_source"`
}

type esSearchResponse struct {
	Hits struct {
		Hits []esHit `json:"hits"`
	} `json:"hits"`
}

func (l *ESLookup) Lookup(ctx context.Context, p Params) Envelope {
	ctx, span := observability.StartSpan(ctx, "menutool.ESLookup")

	rows, err := l.search(ctx, p)
	observability.EndSpan(span, err)
	if err != nil {
		l.logger.Error("Menu lookup failed", map[string]interface{}{"error": err, "index": l.es.Index})
		return errorEnvelope(err)
	}

	metrics.QueryRows.WithLabelValues(metrics.PathAgent).Observe(float64(len(rows)))
	return successEnvelope(rows)
}

func (l *ESLookup) search(ctx context.Context, p Params) ([]database.Row, error) {
	body, err := json.Marshal(BuildESQuery(p))
	if err != nil {
		return nil, err
	}

	client := l.es.Client
	res, err := client.Search(
		client.Search.WithContext(ctx),
		client.Search.WithIndex(l.es.Index),
		client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch search error: %s", res.Status())
	}

	var parsed esSearchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	rows := make([]database.Row, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		rows = append(rows, projectMenu(h.Source))
	}
	return rows, nil
}

// projectMenu orders a document by MenuColumns, dropping unknown fields.
func projectMenu(src database.Row) database.Row {
	out := make(database.Row, 0, len(MenuColumns))
	for _, c := range MenuColumns {
		if v, ok := src.Get(c); ok {
			out = append(out, database.Field{Name: c, Value: v})
		}
	}
	return out
}

// textFields are mapped as text and queried through their keyword subfield.
var textFields = map[string]bool{"name": true, "description": true, "category": true}

func esField(column string) string {
	if textFields[column] {
		return column + ".keyword"
	}
	return column
}

// BuildESQuery renders the lookup as an Elasticsearch bool query.
func BuildESQuery(p Params) map[string]interface{} {
	var filters []interface{}

	wildcard := func(field, value string) map[string]interface{} {
		return map[string]interface{}{
			"wildcard": map[string]interface{}{
				esField(field): map[string]interface{}{
					"value":            "*" + escapeWildcard(value) + "*",
					"case_insensitive": true,
				},
			},
		}
	}

	if p.Category != "" {
		filters = append(filters, wildcard("category", p.Category))
	}
	if p.PriceRange != nil && (p.PriceRange.Min != nil || p.PriceRange.Max != nil) {
		rng := map[string]interface{}{}
		if p.PriceRange.Min != nil {
			rng["gte"] = *p.PriceRange.Min
		}
		if p.PriceRange.Max != nil {
			rng["lte"] = *p.PriceRange.Max
		}
		filters = append(filters, map[string]interface{}{"range": map[string]interface{}{"price": rng}})
	}
	if p.Search != "" {
		filters = append(filters, map[string]interface{}{
			"bool": map[string]interface{}{
				"should":               []interface{}{wildcard("name", p.Search), wildcard("description", p.Search)},
				"minimum_should_match": 1,
			},
		})
	}

	query := map[string]interface{}{"match_all": map[string]interface{}{}}
	if len(filters) > 0 {
		query = map[string]interface{}{"bool": map[string]interface{}{"filter": filters}}
	}

	body := map[string]interface{}{
		"query":   query,
		"size":    p.EffectiveLimit(),
		"_source": MenuColumns,
	}
	if col, dir, ok := p.Ordering(); ok {
		body["sort"] = []interface{}{map[string]interface{}{esField(col): map[string]interface{}{"order": dir}}}
	}
	return body
}

func escapeWildcard(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)
	return r.Replace(s)
}
