// internal/workers/chatbot/answer-question/models.go
package answerquestion

import (
	"resto-chatbot/internal/common/database"
	"resto-chatbot/internal/query"
)

// Answer modes.
const (
	ModeStructured = "structured"
	ModeAgent      = "agent"
)

type Input struct {
	Question string `json:"question"`
	Mode     string `json:"mode"`
}

type Output struct {
	Answer          string          `json:"answer"`
	StructuredQuery query.RawIntent `json:"structuredQuery,omitempty"`
	Results         []database.Row  `json:"results"`
}
