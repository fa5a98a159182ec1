// Package app wires configuration, stores, the LLM client and the chatbot
// pipelines into one process.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"resto-chatbot/internal/api"
	"resto-chatbot/internal/chatbot"
	"resto-chatbot/internal/common/config"
	"resto-chatbot/internal/common/database"
	"resto-chatbot/internal/common/logger"
	"resto-chatbot/internal/common/metrics"
	"resto-chatbot/internal/common/observability"
	"resto-chatbot/internal/llm"
	"resto-chatbot/internal/menutool"
	"resto-chatbot/internal/query"

	"github.com/gin-gonic/gin"
)

type App struct {
	Config        *config.Config
	Logger        logger.Logger
	SQL           *database.SQLClient
	Redis         *database.RedisClient
	Elasticsearch *database.ElasticsearchClient
	LLM           llm.Client

	Structured chatbot.Answerer
	Agent      chatbot.Answerer
	Tool       *menutool.Tool

	obs *observability.Observability
}

// Option customizes New.
type Option func(*App)

// WithLLM replaces the configured provider client.
func WithLLM(c llm.Client) Option {
	return func(a *App) { a.LLM = c }
}

// WithObservability records chat metrics through obs.
func WithObservability(obs *observability.Observability) Option {
	return func(a *App) { a.obs = obs }
}

// New opens the stores and builds both answer paths. Redis and Elasticsearch
// are optional and only opened when configured.
func New(cfg *config.Config, log logger.Logger, opts ...Option) (*App, error) {
	a := &App{Config: cfg, Logger: log}
	for _, opt := range opts {
		opt(a)
	}

	sqlClient, err := database.NewSQL(cfg.Database.SQL)
	if err != nil {
		return nil, fmt.Errorf("open menu store: %w", err)
	}
	a.SQL = sqlClient

	if cfg.Database.Redis.Enabled() {
		a.Redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("open redis: %w", err)
		}
	}

	if cfg.Chatbot.MenuBackend == config.MenuBackendElasticsearch {
		a.Elasticsearch, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("open elasticsearch: %w", err)
		}
	}

	if a.LLM == nil {
		a.LLM, err = llm.New(cfg.LLM, log)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("create llm client: %w", err)
		}
	}

	a.buildPipelines()
	return a, nil
}

func (a *App) buildPipelines() {
	cfg := a.Config

	validator := query.NewValidator(query.DefaultWhitelist(), cfg.Chatbot.MaxLimit)
	executor := query.NewExecutor(a.SQL, a.Logger, cfg.Chatbot.DefaultLimit)
	cache := chatbot.NewCache(a.Redis, config.GetDuration(cfg.Chatbot.CacheTTL), a.Logger)
	structured := chatbot.NewStructured(a.LLM, validator, executor, cache, a.Logger)

	var lookup menutool.Lookup = menutool.NewSQLLookup(a.SQL, a.Logger)
	if a.Elasticsearch != nil {
		lookup = menutool.NewESLookup(a.Elasticsearch, a.Logger)
	}
	a.Tool = menutool.NewTool(lookup, cfg.Chatbot.MenuMaxLimit)

	extractor := menutool.DefaultExtractor()
	extractor.Limit = cfg.Chatbot.MenuDefaultLimit
	router := chatbot.NewRouter(
		extractor.Matches,
		chatbot.NewKeyword(extractor, a.Tool, a.Logger),
		chatbot.NewGeneral(a.LLM, a.Logger),
	)

	a.Structured = chatbot.Measure(metrics.PathStructured, structured, a.obs)
	a.Agent = chatbot.Measure(metrics.PathAgent, router, a.obs)

	a.Logger.Info("Chatbot pipelines ready", map[string]interface{}{
		"llm_provider":    a.LLM.Provider(),
		"query_max_limit": validator.MaxLimit(),
		"menu_max_limit":  a.Tool.MaxLimit(),
		"menu_backend":    cfg.Chatbot.MenuBackend,
		"answer_cache":    cache != nil,
	})
}

// Ready pings every store the pipelines depend on.
func (a *App) Ready(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := a.SQL.Ping(ctx); err != nil {
		return fmt.Errorf("menu store: %w", err)
	}
	if a.Redis != nil {
		if err := a.Redis.Ping(ctx); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	if a.Elasticsearch != nil {
		if err := a.Elasticsearch.Ping(ctx); err != nil {
			return fmt.Errorf("elasticsearch: %w", err)
		}
	}
	return nil
}

// Router returns the HTTP handler for the chatbot API.
func (a *App) Router() *gin.Engine {
	switch mode := a.Config.Server.Mode; mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		gin.SetMode(mode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}
	return api.NewRouter(api.Deps{
		Structured:     a.Structured,
		Agent:          a.Agent,
		Tool:           a.Tool,
		Ready:          a.Ready,
		Logger:         a.Logger,
		ServiceName:    a.Config.App.Name,
		StreamDelay:    config.GetDuration(a.Config.Chatbot.StreamChunkDelay),
		RequestTimeout: config.GetDuration(a.Config.Chatbot.RequestTimeout),
	})
}

// Serve runs the HTTP server until ctx is cancelled, then shuts it down.
func (a *App) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:         a.Config.Server.Address,
		Handler:      a.Router(),
		ReadTimeout:  config.GetDuration(a.Config.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(a.Config.Server.WriteTimeout),
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("HTTP server listening", map[string]interface{}{"address": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.Logger.Info("Shutting down HTTP server", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(a.Config.Server.ShutdownTimeout))
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// Close releases every opened store.
func (a *App) Close() {
	if a.SQL != nil {
		if err := a.SQL.Close(); err != nil {
			a.Logger.Warn("Error closing menu store", map[string]interface{}{"error": err})
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Logger.Warn("Error closing redis", map[string]interface{}{"error": err})
		}
	}
}
