package answerquestion

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"resto-chatbot/internal/chatbot"
	"resto-chatbot/internal/common/database"
	"resto-chatbot/internal/common/errors"
	"resto-chatbot/internal/common/logger"
	"resto-chatbot/internal/query"
)

// ==========================
// Test Helper Functions
// ==========================

type stubAnswerer struct {
	answer   chatbot.Answer
	err      error
	question string
}

func (s *stubAnswerer) Answer(_ context.Context, q string) (chatbot.Answer, error) {
	s.question = q
	return s.answer, s.err
}

func createTestHandler(t *testing.T, structured, agent chatbot.Answerer) *Handler {
	return NewHandler(&Config{Timeout: 5 * time.Second}, structured, agent, logger.NewZapAdapter(zaptest.NewLogger(t)))
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Structured(t *testing.T) {
	intent, err := query.ParseIntent(`{"action":"select","table":"menus","limit":1}`)
	require.NoError(t, err)

	structured := &stubAnswerer{answer: chatbot.Answer{
		Question:        "menu termurah?",
		StructuredQuery: intent,
		Results:         []database.Row{{{Name: "name", Value: "Es Teh"}}},
		Text:            "Es Teh paling murah.",
	}}
	agent := &stubAnswerer{}
	h := createTestHandler(t, structured, agent)

	for _, mode := range []string{"", "structured", " Structured "} {
		output, err := h.execute(context.Background(), &Input{Question: "menu termurah?", Mode: mode})
		require.NoError(t, err, mode)
		assert.Equal(t, "Es Teh paling murah.", output.Answer)
		assert.Equal(t, "select", output.StructuredQuery["action"])
		require.Len(t, output.Results, 1)
	}
	assert.Equal(t, "menu termurah?", structured.question)
	assert.Empty(t, agent.question)
}

func TestHandler_Execute_Agent(t *testing.T) {
	agent := &stubAnswerer{answer: chatbot.Answer{Question: "jam buka?", Text: "Jam 10."}}
	h := createTestHandler(t, &stubAnswerer{}, agent)

	output, err := h.execute(context.Background(), &Input{Question: "jam buka?", Mode: ModeAgent})
	require.NoError(t, err)
	assert.Equal(t, "Jam 10.", output.Answer)
	assert.Nil(t, output.StructuredQuery)
	assert.NotNil(t, output.Results)

	vars, err := json.Marshal(output)
	require.NoError(t, err)
	assert.JSONEq(t, `{"answer":"Jam 10.","results":[]}`, string(vars))
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    *Input
		err      error
		wantCode errors.ErrorCode
	}{
		{"nil input", nil, nil, errors.ErrCodeInvalidRequest},
		{"unknown mode", &Input{Question: "q", Mode: "sql"}, nil, errors.ErrCodeInvalidRequest},
		{"empty question", &Input{Question: ""}, errors.NewEmptyInputError(), errors.ErrCodeEmptyInput},
		{"invalid query", &Input{Question: "q"}, errors.NewInvalidStructuredQueryError("Missing table", nil), errors.ErrCodeInvalidStructuredQuery},
		{"llm failure", &Input{Question: "q"}, errors.NewUpstreamLLMFailureError("gemini", stderrors.New("503")), errors.ErrCodeUpstreamLLMFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := createTestHandler(t, &stubAnswerer{err: tt.err}, &stubAnswerer{err: tt.err})
			output, err := h.execute(context.Background(), tt.input)
			require.Error(t, err)
			assert.Nil(t, output)
			assert.Equal(t, tt.wantCode, errors.CodeOf(err))
		})
	}
}

func TestBPMNErrorForRejectedQuery(t *testing.T) {
	bpmn := errors.ConvertToBPMNError(errors.Normalize(errors.NewInvalidStructuredQueryError("Missing table", nil)))
	assert.Equal(t, "INVALID_STRUCTURED_QUERY", bpmn.Code)
	assert.Equal(t, "Invalid structured query: Missing table", bpmn.Message)
}

func TestLoadConfig(t *testing.T) {
	assert.Equal(t, 90*time.Second, LoadConfig().Timeout)
}
