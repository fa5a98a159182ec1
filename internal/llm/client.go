// Package llm provides single-shot text completion against the configured
// model provider. Calls are never retried.
package llm

import (
	"context"
	"strings"
	"time"

	"resto-chatbot/internal/common/errors"
	"resto-chatbot/internal/common/logger"
	"resto-chatbot/internal/common/metrics"
	"resto-chatbot/internal/common/observability"

	"go.opentelemetry.io/otel/attribute"
)

// Pipeline stages, used as metric labels.
const (
	StageExtract = "extract"
	StageCompose = "compose"
	StageGeneral = "general"
)

// Request is one completion call. System may be empty.
type Request struct {
	Stage  string
	System string
	Prompt string
}

// Client completes a prompt and returns the raw model text.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
	Provider() string
}

type instrumented struct {
	next   Client
	logger logger.Logger
}

// Instrument adds tracing, metrics and logging to c and maps any failure to
// an UPSTREAM_LLM_FAILURE error.
func Instrument(c Client, log logger.Logger) Client {
	return &instrumented{next: c, logger: logger.Component(log, "llm")}
}

func (i *instrumented) Provider() string {
	return i.next.Provider()
}

func (i *instrumented) Complete(ctx context.Context, req Request) (text string, err error) {
	provider := i.next.Provider()
	ctx, span := observability.StartSpan(ctx, "llm.Complete",
		attribute.String("provider", provider),
		attribute.String("stage", req.Stage),
	)
	defer func() { observability.EndSpan(span, err) }()

	start := time.Now()
	text, err = i.next.Complete(ctx, req)
	metrics.LLMCalls.WithLabelValues(provider, req.Stage, metrics.Outcome(err)).Inc()

	if err != nil {
		i.logger.Error("LLM call failed", map[string]interface{}{
			"provider": provider,
			"stage":    req.Stage,
			"duration": time.Since(start).String(),
			"error":    err,
		})
		return "", errors.NewUpstreamLLMFailureError(provider, err)
	}

	i.logger.Debug("LLM call completed", map[string]interface{}{
		"provider":    provider,
		"stage":       req.Stage,
		"duration":    time.Since(start).String(),
		"outputBytes": len(text),
	})
	return text, nil
}

// joinParts concatenates text parts the way providers split long answers.
func joinParts(parts []string) string {
	return strings.Join(parts, "")
}
