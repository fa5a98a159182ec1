package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const minimalSQLite = `
database:
  sql:
    driver: sqlite
    path: /tmp/menus.db
llm:
  provider: gemini
  api_key: test-key
`

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, minimalSQLite))
	require.NoError(t, err)

	assert.Equal(t, "resto-chatbot", cfg.App.Name)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, DriverSQLite, cfg.Database.SQL.Driver)
	assert.Equal(t, "gemini-2.0-flash", cfg.LLM.Model)
	assert.Equal(t, 100, cfg.Chatbot.MaxLimit)
	assert.Equal(t, 10, cfg.Chatbot.DefaultLimit)
	assert.Equal(t, 10, cfg.Chatbot.MenuDefaultLimit)
	assert.Equal(t, 50, cfg.Chatbot.MenuMaxLimit)
	assert.Equal(t, MenuBackendSQL, cfg.Chatbot.MenuBackend)
	assert.Equal(t, 10, cfg.Chatbot.StreamChunkDelay)
	assert.Equal(t, "menus", cfg.Database.Elasticsearch.Index)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Database.Redis.Enabled())
}

func TestLoadFromFile_ExpandsEnvPlaceholders(t *testing.T) {
	t.Setenv("TEST_PG_PASSWORD", "s3cret")
	cfg, err := LoadFromFile(writeConfig(t, `
database:
  sql:
    driver: postgres
    host: db
    database: resto
    user: app
    password: ${TEST_PG_PASSWORD}
llm:
  provider: openai
  base_url: http://localhost:11434
`))
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.Database.SQL.Password)
	assert.Equal(t, 5432, cfg.Database.SQL.Port)
	assert.Equal(t, "host=db port=5432 user=app password=s3cret dbname=resto sslmode=disable", cfg.Database.SQL.GetPostgresDSN())
}

func TestLoadFromFile_EnvOverridesFileValue(t *testing.T) {
	t.Setenv("CHATBOT_MAX_LIMIT", "25")
	cfg, err := LoadFromFile(writeConfig(t, minimalSQLite+`
chatbot:
  max_limit: 100
`))
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.Chatbot.MaxLimit)
}

func TestLoadFromFile_APIKeyFromEnvironment(t *testing.T) {
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "from-env")
	cfg, err := LoadFromFile(writeConfig(t, `
database:
  sql:
    driver: sqlite
    path: menus.db
llm:
  provider: anthropic
`))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.LLM.APIKey)
	assert.Equal(t, "claude-3-5-haiku-latest", cfg.LLM.Model)
}

func TestLoadFromFile_ValidationErrors(t *testing.T) {
	for _, name := range []string{"LLM_API_KEY", "GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "DB_USER"} {
		t.Setenv(name, "")
	}

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name: "unsupported driver",
			body: `
database:
  sql:
    driver: oracle
llm:
  api_key: k
`,
			wantErr: `database.sql.driver "oracle" is not supported`,
		},
		{
			name: "postgres without host",
			body: `
database:
  sql:
    driver: postgres
llm:
  api_key: k
`,
			wantErr: "database.sql.host is required",
		},
		{
			name: "gemini without key",
			body: `
database:
  sql:
    driver: sqlite
    path: x.db
llm:
  provider: gemini
`,
			wantErr: "llm.api_key is required",
		},
		{
			name: "elasticsearch backend without addresses",
			body: minimalSQLite + `
chatbot:
  menu_backend: elasticsearch
`,
			wantErr: "required for menu_backend elasticsearch",
		},
		{
			name: "menu max limit above the lookup ceiling",
			body: minimalSQLite + `
chatbot:
  menu_max_limit: 80
`,
			wantErr: "chatbot.menu_max_limit must be between 1 and 50",
		},
		{
			name: "camunda enabled without broker",
			body: minimalSQLite + `
camunda:
  enabled: true
`,
			wantErr: "camunda.broker_address is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestWorkerHelpers(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, minimalSQLite+`
workers:
  answer-question:
    enabled: false
`))
	require.NoError(t, err)

	assert.False(t, IsWorkerEnabled(cfg, "answer-question"))
	assert.True(t, IsWorkerEnabled(cfg, "unknown"))

	wc := GetWorkerConfig(cfg, "answer-question")
	assert.Equal(t, 10, wc.MaxJobsActive)
	assert.Equal(t, 30000, wc.Timeout)

	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
}

func TestElasticsearchConfig_GetURL(t *testing.T) {
	assert.Equal(t, "http://a:9200", ElasticsearchConfig{Addresses: []string{"http://a:9200"}}.GetURL())
	assert.Equal(t, "http://u:9200", ElasticsearchConfig{URL: "http://u:9200", Addresses: []string{"http://a:9200"}}.GetURL())
	assert.False(t, ElasticsearchConfig{}.Enabled())
}
