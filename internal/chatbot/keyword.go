package chatbot

import (
	"context"

	"resto-chatbot/internal/common/logger"
	"resto-chatbot/internal/menutool"
)

// Keyword answers menu questions without an LLM: rule-based extraction,
// one lookup, and a templated reply.
type Keyword struct {
	extractor *menutool.Extractor
	tool      *menutool.Tool
	logger    logger.Logger
}

func NewKeyword(extractor *menutool.Extractor, tool *menutool.Tool, log logger.Logger) *Keyword {
	return &Keyword{
		extractor: extractor,
		tool:      tool,
		logger:    logger.Component(log, "keyword-answerer"),
	}
}

// Answer never fails once the question is non-empty; lookup errors are
// reported inside the reply text.
func (k *Keyword) Answer(ctx context.Context, question string) (Answer, error) {
	question, err := normalizeQuestion(question)
	if err != nil {
		return Answer{}, err
	}

	params := k.extractor.Extract(question)
	env := k.tool.Run(ctx, params)

	k.logger.Debug("Menu lookup finished", map[string]interface{}{
		"status":   env.Status,
		"count":    env.Count,
		"category": params.Category,
		"search":   params.Search,
	})

	return Answer{
		Question: question,
		Results:  env.Data,
		Text:     FormatMenuResponse(env),
	}, nil
}
