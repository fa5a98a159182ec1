package chatbot

import (
	"context"
)

// Router picks the keyword path for menu questions and the fallback otherwise.
type Router struct {
	matches  func(string) bool
	menu     Answerer
	fallback Answerer
}

// NewRouter routes to menu when matches reports true for the trimmed question.
func NewRouter(matches func(string) bool, menu, fallback Answerer) *Router {
	return &Router{matches: matches, menu: menu, fallback: fallback}
}

func (r *Router) Answer(ctx context.Context, question string) (Answer, error) {
	question, err := normalizeQuestion(question)
	if err != nil {
		return Answer{}, err
	}
	if r.matches(question) {
		return r.menu.Answer(ctx, question)
	}
	return r.fallback.Answer(ctx, question)
}
