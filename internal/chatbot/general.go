package chatbot

import (
	"context"

	"resto-chatbot/internal/common/logger"
	"resto-chatbot/internal/llm"
)

// General answers non-menu questions with a single customer-support prompt.
type General struct {
	llm    llm.Client
	logger logger.Logger
}

func NewGeneral(client llm.Client, log logger.Logger) *General {
	return &General{llm: client, logger: logger.Component(log, "general-answerer")}
}

func (g *General) Answer(ctx context.Context, question string) (Answer, error) {
	question, err := normalizeQuestion(question)
	if err != nil {
		return Answer{}, err
	}

	text, err := g.llm.Complete(ctx, llm.Request{
		Stage:  llm.StageGeneral,
		Prompt: GeneralPrompt(question),
	})
	if err != nil {
		return Answer{}, upstream(g.llm, err)
	}
	return Answer{Question: question, Text: cleanText(text)}, nil
}
