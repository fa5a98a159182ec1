// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml on top,
// then applies env overrides and defaults.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads the first .env found walking up from the working directory.
func loadEnvFile() string {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// findProjectRoot walks up looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig fills secrets that are commonly provided only through the environment.
func overrideEmptyConfig(cfg *Config) {
	if cfg.LLM.APIKey == "" {
		for _, name := range []string{"LLM_API_KEY", "GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY"} {
			if val := os.Getenv(name); val != "" {
				cfg.LLM.APIKey = val
				break
			}
		}
	}

	if cfg.Database.SQL.User == "" {
		if val := os.Getenv("DB_USER"); val != "" {
			cfg.Database.SQL.User = val
		}
	}
	if cfg.Database.SQL.Password == "" {
		if val := os.Getenv("DB_PASSWORD"); val != "" {
			cfg.Database.SQL.Password = val
		}
	}

	if cfg.Database.Redis.Address == "" {
		if val := os.Getenv("REDIS_ADDRESS"); val != "" {
			cfg.Database.Redis.Address = val
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "resto-chatbot"
	}

	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = "release"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 120000
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 30000
	}

	sqlCfg := &cfg.Database.SQL
	sqlCfg.Driver = normalizeLower(sqlCfg.Driver)
	if sqlCfg.Driver == "" {
		sqlCfg.Driver = DriverPostgres
	}
	if sqlCfg.Port == 0 {
		switch sqlCfg.Driver {
		case DriverPostgres:
			sqlCfg.Port = 5432
		case DriverMySQL:
			sqlCfg.Port = 3306
		}
	}
	if sqlCfg.MaxConnections == 0 {
		sqlCfg.MaxConnections = 25
	}
	if sqlCfg.MaxIdle == 0 {
		sqlCfg.MaxIdle = 5
	}
	if sqlCfg.SSLMode == "" {
		sqlCfg.SSLMode = "disable"
	}

	if cfg.Database.Elasticsearch.URL == "" && len(cfg.Database.Elasticsearch.Addresses) > 0 {
		cfg.Database.Elasticsearch.URL = cfg.Database.Elasticsearch.Addresses[0]
	}
	if len(cfg.Database.Elasticsearch.Addresses) == 0 && cfg.Database.Elasticsearch.URL != "" {
		cfg.Database.Elasticsearch.Addresses = []string{cfg.Database.Elasticsearch.URL}
	}
	if cfg.Database.Elasticsearch.Index == "" {
		cfg.Database.Elasticsearch.Index = "menus"
	}

	cfg.LLM.Provider = normalizeLower(cfg.LLM.Provider)
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = ProviderGemini
	}
	if cfg.LLM.Model == "" {
		switch cfg.LLM.Provider {
		case ProviderGemini:
			cfg.LLM.Model = "gemini-2.0-flash"
		case ProviderOpenAI:
			cfg.LLM.Model = "gpt-4o-mini"
		case ProviderAnthropic:
			cfg.LLM.Model = "claude-3-5-haiku-latest"
		}
	}
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = 60000
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 1024
	}

	if cfg.Chatbot.MaxLimit == 0 {
		cfg.Chatbot.MaxLimit = 100
	}
	if cfg.Chatbot.DefaultLimit == 0 {
		cfg.Chatbot.DefaultLimit = 10
	}
	if cfg.Chatbot.MenuDefaultLimit == 0 {
		cfg.Chatbot.MenuDefaultLimit = 10
	}
	if cfg.Chatbot.MenuMaxLimit == 0 {
		cfg.Chatbot.MenuMaxLimit = 50
	}
	cfg.Chatbot.MenuBackend = normalizeLower(cfg.Chatbot.MenuBackend)
	if cfg.Chatbot.MenuBackend == "" {
		cfg.Chatbot.MenuBackend = MenuBackendSQL
	}
	if cfg.Chatbot.StreamChunkDelay == 0 {
		cfg.Chatbot.StreamChunkDelay = 10
	}
	if cfg.Chatbot.RequestTimeout == 0 {
		cfg.Chatbot.RequestTimeout = 90000
	}

	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = cfg.Camunda.MaxJobsActive
		}
		if worker.Timeout == 0 {
			worker.Timeout = cfg.Camunda.Timeout
		}
		cfg.Workers[key] = worker
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	sqlCfg := cfg.Database.SQL
	switch sqlCfg.Driver {
	case DriverPostgres, DriverMySQL:
		if sqlCfg.Host == "" {
			return fmt.Errorf("database.sql.host is required for driver %s", sqlCfg.Driver)
		}
		if sqlCfg.Database == "" {
			return fmt.Errorf("database.sql.database is required for driver %s", sqlCfg.Driver)
		}
		if sqlCfg.User == "" {
			return fmt.Errorf("database.sql.user is required for driver %s", sqlCfg.Driver)
		}
	case DriverSQLite:
		if sqlCfg.Path == "" {
			return fmt.Errorf("database.sql.path is required for driver sqlite")
		}
	default:
		return fmt.Errorf("database.sql.driver %q is not supported", sqlCfg.Driver)
	}

	switch cfg.LLM.Provider {
	case ProviderGemini, ProviderAnthropic:
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("llm.api_key is required for provider %s", cfg.LLM.Provider)
		}
	case ProviderOpenAI:
		if cfg.LLM.APIKey == "" && cfg.LLM.BaseURL == "" {
			return fmt.Errorf("llm.api_key or llm.base_url is required for provider openai")
		}
	default:
		return fmt.Errorf("llm.provider %q is not supported", cfg.LLM.Provider)
	}

	if cfg.Chatbot.MaxLimit < 1 {
		return fmt.Errorf("chatbot.max_limit must be positive")
	}
	if cfg.Chatbot.MenuMaxLimit < 1 || cfg.Chatbot.MenuMaxLimit > 50 {
		return fmt.Errorf("chatbot.menu_max_limit must be between 1 and 50")
	}

	switch cfg.Chatbot.MenuBackend {
	case MenuBackendSQL:
	case MenuBackendElasticsearch:
		if !cfg.Database.Elasticsearch.Enabled() {
			return fmt.Errorf("database.elasticsearch.addresses or url is required for menu_backend elasticsearch")
		}
	default:
		return fmt.Errorf("chatbot.menu_backend %q is not supported", cfg.Chatbot.MenuBackend)
	}

	if cfg.Camunda.Enabled && cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required when camunda is enabled")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetWorkerConfig retrieves worker-specific configuration with fallback to defaults
func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}
	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: cfg.Camunda.MaxJobsActive,
		Timeout:       cfg.Camunda.Timeout,
	}
}

// IsWorkerEnabled checks if a specific worker is enabled
func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker.Enabled
	}
	return true
}
