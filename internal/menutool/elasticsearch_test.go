package menutool

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"resto-chatbot/internal/common/config"
	"resto-chatbot/internal/common/database"
	"resto-chatbot/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newESLookup(t *testing.T, handler http.HandlerFunc) *ESLookup {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	es, err := database.NewElasticsearch(config.ElasticsearchConfig{URL: srv.URL, Index: "menus"})
	require.NoError(t, err)
	return NewESLookup(es, logger.NewTestLogger(t))
}

func TestBuildESQuery(t *testing.T) {
	desc := "order_count"
	q := BuildESQuery(Params{
		Category:   "minuman",
		PriceRange: &PriceRange{Max: floatPtr(15000)},
		Search:     "es*teh",
		SortBy:     &desc,
		SortOrder:  "desc",
		Limit:      intPtr(99),
	})

	assert.Equal(t, 50, q["size"])
	assert.Equal(t, []interface{}{map[string]interface{}{"order_count": map[string]interface{}{"order": "desc"}}}, q["sort"])

	raw, err := json.Marshal(q)
	require.NoError(t, err)
	body := string(raw)
	assert.Contains(t, body, `"value":"*minuman*"`)
	assert.Contains(t, body, `"lte":15000`)
	assert.Contains(t, body, `"value":"*es\\*teh*"`)
	assert.Contains(t, body, `"minimum_should_match":1`)
	assert.Contains(t, body, `"category.keyword":{`)
	assert.Contains(t, body, `"name.keyword":{`)
	assert.Contains(t, body, `"description.keyword":{`)

	matchAll := BuildESQuery(Params{})
	assert.Contains(t, matchAll["query"], "match_all")
	assert.Equal(t, []interface{}{map[string]interface{}{"name.keyword": map[string]interface{}{"order": "asc"}}}, matchAll["sort"])
	assert.Equal(t, 10, matchAll["size"])
}

func TestESLookup_Success(t *testing.T) {
	l := newESLookup(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/menus/_search", r.URL.Path)
		b, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(b), "minuman")
		_, _ = w.Write([]byte(`{"hits":{"hits":[{"_source":{"price":8000,"name":"Es Teh","category":"minuman","extra":"x"}}]}}`))
	})

	env := l.Lookup(context.Background(), Params{Category: "minuman"})
	require.Equal(t, StatusSuccess, env.Status)
	require.Len(t, env.Data, 1)
	assert.Equal(t, "name", env.Data[0][0].Name)
	assert.Equal(t, "category", env.Data[0][1].Name)
	assert.Equal(t, "price", env.Data[0][2].Name)
	_, hasExtra := env.Data[0].Get("extra")
	assert.False(t, hasExtra)
}

func TestESLookup_NotFoundAndError(t *testing.T) {
	empty := newESLookup(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"hits":{"hits":[]}}`))
	})
	assert.Equal(t, StatusNotFound, empty.Lookup(context.Background(), Params{}).Status)

	failing := newESLookup(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"index_not_found"}`))
	})
	env := failing.Lookup(context.Background(), Params{})
	assert.Equal(t, StatusError, env.Status)
	assert.Contains(t, env.Message, MsgLookupFail)
}
