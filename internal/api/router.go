// Package api exposes the chatbot over HTTP.
package api

import (
	"context"
	"time"

	"resto-chatbot/internal/chatbot"
	"resto-chatbot/internal/common/logger"
	"resto-chatbot/internal/menutool"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Deps are the collaborators of the HTTP layer.
type Deps struct {
	Structured     chatbot.Answerer
	Agent          chatbot.Answerer
	Tool           *menutool.Tool
	Ready          func(ctx context.Context) error
	Logger         logger.Logger
	ServiceName    string
	StreamDelay    time.Duration
	RequestTimeout time.Duration
}

type handlers struct {
	deps   Deps
	logger logger.Logger
}

// NewRouter builds the gin engine with every chatbot route registered.
func NewRouter(deps Deps) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = logger.NewNoOpLogger()
	}
	if deps.ServiceName == "" {
		deps.ServiceName = "resto-chatbot"
	}

	h := &handlers{deps: deps, logger: logger.Component(deps.Logger, "http")}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(deps.ServiceName))
	r.Use(RequestID())
	r.Use(RequestLogger(h.logger))

	r.GET("/health", h.health)
	r.GET("/ready", h.ready)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	chat := r.Group("/chatbot")
	chat.POST("", h.chat)
	chat.POST("/agent", h.agentChat)
	chat.GET("/tools", h.listTools)
	chat.POST("/tools/"+menutool.ToolName, h.callMenuTool)

	return r
}
