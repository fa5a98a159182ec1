package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"resto-chatbot/internal/common/config"
	"resto-chatbot/internal/common/logger"
	"resto-chatbot/internal/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedLLM map[string]string

func (f fixedLLM) Provider() string { return "fixed" }

func (f fixedLLM) Complete(_ context.Context, req llm.Request) (string, error) {
	return f[req.Stage], nil
}

const seedMenus = `
CREATE TABLE menus (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT,
	category TEXT,
	price REAL,
	order_count INTEGER,
	created_at TEXT
);
INSERT INTO menus (name, description, category, price, order_count, created_at) VALUES
	('Nasi Goreng Spesial', 'Nasi goreng dengan telur', 'Makanan Utama', 35000, 420, '2024-01-01'),
	('Es Teh Manis', 'Teh manis dingin', 'Minuman Dingin', 8000, 380, '2024-01-02'),
	('Es Jeruk', 'Jeruk peras dingin', 'Minuman Dingin', 12000, 150, '2024-01-03'),
	('Kopi Tubruk', 'Kopi hitam panas', 'Minuman Panas', 15000, 90, '2024-01-04');
`

func newSQLiteApp(t *testing.T, client llm.Client, chatbotYAML ...string) *App {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
server:
  mode: test
database:
  sql:
    driver: sqlite
    path: `+filepath.Join(dir, "menus.db")+`
llm:
  provider: gemini
  api_key: unused
chatbot:
  stream_chunk_delay: 1
`+strings.Join(chatbotYAML, "\n")), 0o600))

	cfg, err := config.LoadFromFile(cfgPath)
	require.NoError(t, err)

	a, err := New(cfg, logger.NewTestLogger(t), WithLLM(client))
	require.NoError(t, err)
	t.Cleanup(a.Close)

	_, err = a.SQL.DB.Exec(seedMenus)
	require.NoError(t, err)
	return a
}

func TestApp_StructuredPathAgainstSQLite(t *testing.T) {
	a := newSQLiteApp(t, fixedLLM{
		llm.StageExtract: `{"action":"select","table":"menus","columns":["name","price"],"order_by":[{"column":"order_count","direction":"desc"}],"limit":2}`,
		llm.StageCompose: "Favorit kami: Nasi Goreng Spesial dan Es Teh Manis.",
	})

	ans, err := a.Structured.Answer(context.Background(), "apa menu favorit?")
	require.NoError(t, err)
	require.Len(t, ans.Results, 2)

	name, _ := ans.Results[0].Get("name")
	assert.Equal(t, "Nasi Goreng Spesial", name)
	name, _ = ans.Results[1].Get("name")
	assert.Equal(t, "Es Teh Manis", name)
	assert.Equal(t, "Favorit kami: Nasi Goreng Spesial dan Es Teh Manis.", ans.Text)
}

func TestApp_AgentKeywordPathAgainstSQLite(t *testing.T) {
	a := newSQLiteApp(t, fixedLLM{})

	ans, err := a.Agent.Answer(context.Background(), "Menu minuman es")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(ans.Text, "Berikut adalah menu yang tersedia"))
	assert.Contains(t, ans.Text, "**Es Jeruk**\n- Kategori: Minuman Dingin\n- Harga: Rp 12.000\n")
	assert.NotContains(t, ans.Text, "Nasi Goreng")
	require.Len(t, ans.Results, 3)
	first, _ := ans.Results[0].Get("name")
	last, _ := ans.Results[2].Get("name")
	assert.Equal(t, "Es Jeruk", first)
	assert.Equal(t, "Kopi Tubruk", last)

	ans, err = a.Agent.Answer(context.Background(), "minuman di bawah 13000")
	require.NoError(t, err)
	assert.Equal(t, "Maaf, tidak ada menu yang sesuai dengan kriteria yang Anda cari. Silakan coba dengan kata kunci lain.", ans.Text)
}

func TestApp_MenuMaxLimitFromConfig(t *testing.T) {
	a := newSQLiteApp(t, fixedLLM{}, "  menu_max_limit: 2")
	assert.Equal(t, 2, a.Tool.MaxLimit())

	ans, err := a.Agent.Answer(context.Background(), "Menu minuman es")
	require.NoError(t, err)
	require.Len(t, ans.Results, 2)
	first, _ := ans.Results[0].Get("name")
	second, _ := ans.Results[1].Get("name")
	assert.Equal(t, "Es Jeruk", first)
	assert.Equal(t, "Es Teh Manis", second)
}

func TestApp_HTTPEndToEnd(t *testing.T) {
	a := newSQLiteApp(t, fixedLLM{
		llm.StageExtract: "```json\n{\"action\":\"select\",\"table\":\"menus\",\"filters\":[{\"column\":\"category\",\"op\":\"like\",\"value\":\"%panas%\"}]}\n```",
		llm.StageCompose: "Ada Kopi Tubruk.",
		llm.StageGeneral: "Kami buka setiap hari.",
	})
	srv := httptest.NewServer(a.Router())
	t.Cleanup(srv.Close)

	resp, err := http.Post(srv.URL+"/chatbot", "application/json", strings.NewReader(`{"message":"ada minuman panas?"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Question string                   `json:"question"`
		Results  []map[string]interface{} `json:"results"`
		Answer   string                   `json:"answer"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ada minuman panas?", body.Question)
	require.Len(t, body.Results, 1)
	assert.Equal(t, "Kopi Tubruk", body.Results[0]["name"])
	assert.Equal(t, "Ada Kopi Tubruk.", body.Answer)

	ready, err := http.Get(srv.URL + "/ready")
	require.NoError(t, err)
	ready.Body.Close()
	assert.Equal(t, http.StatusOK, ready.StatusCode)
}

func TestNew_RejectsUnknownProvider(t *testing.T) {
	cfg := &config.Config{}
	cfg.Database.SQL = config.SQLConfig{Driver: config.DriverSQLite, Path: filepath.Join(t.TempDir(), "x.db")}
	cfg.LLM.Provider = "mistral"

	_, err := New(cfg, logger.NewNoOpLogger())
	assert.Error(t, err)
}
