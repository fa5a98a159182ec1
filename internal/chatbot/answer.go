// Package chatbot turns a customer question into an answer. Two extraction
// paths implement the same Answerer: the LLM structured-query path and the
// keyword menu-lookup path, with a router in front of the latter.
package chatbot

import (
	"context"
	"strings"
	"time"

	"resto-chatbot/internal/common/database"
	"resto-chatbot/internal/common/errors"
	"resto-chatbot/internal/common/metrics"
	"resto-chatbot/internal/common/observability"
	"resto-chatbot/internal/query"
)

// Answer is the outcome of one question. StructuredQuery is only set on the
// structured path and is the intent object exactly as the model produced it.
type Answer struct {
	Question        string          `json:"question"`
	StructuredQuery query.RawIntent `json:"structured_query,omitempty"`
	Results         []database.Row  `json:"results,omitempty"`
	Text            string          `json:"answer"`
}

// Answerer produces an answer in one blocking call.
type Answerer interface {
	Answer(ctx context.Context, question string) (Answer, error)
}

// normalizeQuestion trims the question and rejects empty input.
func normalizeQuestion(q string) (string, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return "", errors.NewEmptyInputError()
	}
	return q, nil
}

type measured struct {
	path string
	next Answerer
	obs  *observability.Observability
}

// Measure records request count, duration and a span for every answer on path.
// obs may be nil.
func Measure(path string, a Answerer, obs *observability.Observability) Answerer {
	return &measured{path: path, next: a, obs: obs}
}

func (m *measured) Answer(ctx context.Context, question string) (ans Answer, err error) {
	ctx, span := observability.StartSpan(ctx, "chatbot."+m.path)
	start := time.Now()
	defer func() {
		observability.EndSpan(span, err)
		outcome := metrics.Outcome(err)
		metrics.ChatRequests.WithLabelValues(m.path, outcome).Inc()
		metrics.ChatRequestDuration.WithLabelValues(m.path).Observe(time.Since(start).Seconds())
		if m.obs != nil {
			m.obs.RecordChat(ctx, m.path, outcome, time.Since(start))
		}
	}()

	return m.next.Answer(ctx, question)
}
