package chatbot

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"resto-chatbot/internal/common/database"
	"resto-chatbot/internal/common/errors"
	"resto-chatbot/internal/common/logger"
	"resto-chatbot/internal/llm"
	"resto-chatbot/internal/query"
)

// RowSource executes a validated intent.
type RowSource interface {
	Execute(ctx context.Context, v query.ValidatedIntent) ([]database.Row, error)
}

// Structured answers through the LLM: the model writes a structured query,
// which is validated and executed, then a second call phrases the rows.
type Structured struct {
	llm       llm.Client
	validator *query.Validator
	rows      RowSource
	cache     *Cache
	logger    logger.Logger
}

// NewStructured wires the structured path. cache may be nil.
func NewStructured(client llm.Client, validator *query.Validator, rows RowSource, cache *Cache, log logger.Logger) *Structured {
	return &Structured{
		llm:       client,
		validator: validator,
		rows:      rows,
		cache:     cache,
		logger:    logger.Component(log, "structured-answerer"),
	}
}

func (s *Structured) Answer(ctx context.Context, question string) (Answer, error) {
	question, err := normalizeQuestion(question)
	if err != nil {
		return Answer{}, err
	}

	if cached, ok := s.cache.Get(ctx, question); ok {
		return cached, nil
	}

	raw, err := s.llm.Complete(ctx, llm.Request{
		Stage:  llm.StageExtract,
		System: IntentSystemPrompt,
		Prompt: question,
	})
	if err != nil {
		return Answer{}, upstream(s.llm, err)
	}

	cleaned := StripCodeFence(raw)
	intent, err := query.ParseIntent(cleaned)
	if err != nil {
		s.logger.Warn("LLM JSON parse error", map[string]interface{}{"raw": cleaned, "error": err})
		return Answer{}, errors.NewMalformedIntentJSONError(cleaned, err)
	}

	validated, err := s.validator.Validate(intent)
	if err != nil {
		var ve *query.ValidationError
		if stderrors.As(err, &ve) {
			s.logger.Info("Structured query rejected", map[string]interface{}{"kind": ve.Kind.String(), "reason": ve.Reason})
			return Answer{}, errors.NewInvalidStructuredQueryError(ve.Reason, err)
		}
		return Answer{}, err
	}

	rows, err := s.rows.Execute(ctx, validated)
	if err != nil {
		return Answer{}, err
	}

	text, err := s.compose(ctx, question, rows)
	if err != nil {
		return Answer{}, err
	}

	ans := Answer{
		Question:        question,
		StructuredQuery: intent,
		Results:         rows,
		Text:            text,
	}
	s.cache.Set(ctx, question, ans)
	return ans, nil
}

func (s *Structured) compose(ctx context.Context, question string, rows []database.Row) (string, error) {
	if rows == nil {
		rows = []database.Row{}
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return "", errors.NewDataAccessFailureError("encode rows", err)
	}

	text, err := s.llm.Complete(ctx, llm.Request{
		Stage:  llm.StageCompose,
		System: ComposerSystemPrompt,
		Prompt: ComposerPrompt(question, string(data)),
	})
	if err != nil {
		return "", upstream(s.llm, err)
	}
	return cleanText(text), nil
}

// upstream classifies a raw client error as an LLM failure unless it already is one.
func upstream(c llm.Client, err error) error {
	if stderrors.Is(err, errors.ErrUpstreamLLMFailure) {
		return err
	}
	return errors.NewUpstreamLLMFailureError(c.Provider(), err)
}
