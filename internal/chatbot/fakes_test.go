package chatbot

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"resto-chatbot/internal/common/database"
	"resto-chatbot/internal/common/logger"
	"resto-chatbot/internal/llm"
	"resto-chatbot/internal/query"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

// scriptedLLM answers each stage with a fixed reply or error.
type scriptedLLM struct {
	mu      sync.Mutex
	replies map[string]string
	errs    map[string]error
	calls   []llm.Request
}

func newScriptedLLM(replies map[string]string) *scriptedLLM {
	return &scriptedLLM{replies: replies, errs: map[string]error{}}
}

func (s *scriptedLLM) Provider() string { return "scripted" }

func (s *scriptedLLM) Complete(_ context.Context, req llm.Request) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, req)
	if err, ok := s.errs[req.Stage]; ok {
		return "", err
	}
	reply, ok := s.replies[req.Stage]
	if !ok {
		return "", fmt.Errorf("no reply scripted for stage %s", req.Stage)
	}
	return reply, nil
}

func (s *scriptedLLM) stages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.calls))
	for i, c := range s.calls {
		out[i] = c.Stage
	}
	return out
}

func newMySQLExecutor(t *testing.T) (*query.Executor, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return query.NewExecutor(database.NewSQLFromDB(db, database.DialectMySQL), logger.NewTestLogger(t), query.DefaultLimit), mock
}

func newStructured(t *testing.T, client llm.Client, cache *Cache) (*Structured, sqlmock.Sqlmock) {
	t.Helper()
	exec, mock := newMySQLExecutor(t)
	validator := query.NewValidator(query.DefaultWhitelist(), query.DefaultMaxLimit)
	return NewStructured(client, validator, exec, cache, logger.NewTestLogger(t)), mock
}
