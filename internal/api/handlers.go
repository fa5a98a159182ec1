package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"resto-chatbot/internal/chatbot"
	"resto-chatbot/internal/common/database"
	"resto-chatbot/internal/common/errors"
	"resto-chatbot/internal/common/validation"
	"resto-chatbot/internal/query"
	"resto-chatbot/internal/stream"

	"github.com/gin-gonic/gin"
)

var chatRequestSchema = validation.MustCompile("chat-request", `{
  "type": "object",
  "properties": {
    "message": {"type": ["string", "null"]}
  }
}`)

// chatResponse keeps the documented field order of the structured reply.
type chatResponse struct {
	Question        string          `json:"question"`
	StructuredQuery query.RawIntent `json:"structured_query"`
	Results         []database.Row  `json:"results"`
	Answer          string          `json:"answer"`
}

type agentResponse struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

func (h *handlers) chat(c *gin.Context) {
	h.answer(c, h.deps.Structured, func(ans chatbot.Answer) interface{} {
		results := ans.Results
		if results == nil {
			results = []database.Row{}
		}
		return chatResponse{
			Question:        ans.Question,
			StructuredQuery: ans.StructuredQuery,
			Results:         results,
			Answer:          ans.Text,
		}
	}, errors.UserMessage)
}

func (h *handlers) agentChat(c *gin.Context) {
	h.answer(c, h.deps.Agent, func(ans chatbot.Answer) interface{} {
		return agentResponse{Question: ans.Question, Answer: ans.Text}
	}, agentMessage)
}

// agentMessage hides every agent failure behind one apology, except bad input.
func agentMessage(err error) string {
	switch errors.CodeOf(err) {
	case errors.ErrCodeEmptyInput, errors.ErrCodeInvalidRequest:
		return errors.UserMessage(err)
	}
	return errors.MsgAgentFailure
}

func (h *handlers) answer(c *gin.Context, a chatbot.Answerer, render func(chatbot.Answer) interface{}, message func(error) string) {
	question, err := readMessage(c.Request.Body)
	if err != nil {
		h.fail(c, err, message)
		return
	}
	if strings.TrimSpace(question) == "" {
		h.fail(c, errors.NewEmptyInputError(), message)
		return
	}

	ctx := c.Request.Context()
	if h.deps.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.deps.RequestTimeout)
		defer cancel()
	}

	ans, err := a.Answer(ctx, question)
	if err != nil {
		h.fail(c, err, message)
		return
	}

	if stream.Wanted(c.GetHeader("Accept")) {
		h.stream(c, ans.Text)
		return
	}
	c.JSON(http.StatusOK, render(ans))
}

func (h *handlers) stream(c *gin.Context, text string) {
	stream.SetHeaders(c.Writer.Header())
	c.Status(http.StatusOK)
	c.Writer.WriteHeaderNow()
	c.Writer.Flush()

	delay := h.deps.StreamDelay
	if delay <= 0 {
		delay = stream.DefaultDelay
	}
	if err := stream.Write(c.Request.Context(), c.Writer, text, delay); err != nil {
		h.logger.Warn("Stream aborted", map[string]interface{}{"error": err})
	}
}

func (h *handlers) fail(c *gin.Context, err error, message func(error) string) {
	stdErr := errors.Normalize(err)
	status := errors.HTTPStatus(stdErr.Code)

	fields := map[string]interface{}{
		"code":      stdErr.Code,
		"details":   stdErr.Details,
		"requestId": c.GetString(requestIDKey),
	}
	if raw, ok := stdErr.Metadata["raw"]; ok {
		fields["raw"] = raw
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("Chat request failed", fields)
	} else {
		h.logger.Info("Chat request rejected", fields)
	}

	c.JSON(status, gin.H{"error": message(err)})
}

// readMessage extracts "message" from the body. A missing or unparseable
// body counts as an empty message.
func readMessage(body io.Reader) (string, error) {
	if body == nil {
		return "", nil
	}
	data, err := io.ReadAll(body)
	if err != nil || len(strings.TrimSpace(string(data))) == 0 {
		return "", nil
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", nil
	}
	if res := chatRequestSchema.Validate(doc); !res.Valid {
		return "", errors.NewInvalidRequestError(res.Summary())
	}

	obj, _ := doc.(map[string]interface{})
	msg, _ := obj["message"].(string)
	return msg, nil
}

func (h *handlers) listTools(c *gin.Context) {
	if h.deps.Tool == nil {
		c.JSON(http.StatusOK, gin.H{"tools": []interface{}{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tools": []interface{}{h.deps.Tool.Descriptor()}})
}

func (h *handlers) callMenuTool(c *gin.Context) {
	if h.deps.Tool == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": errors.MsgInvalidRequest})
		return
	}

	var args map[string]interface{}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&args); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errors.MsgInvalidRequest, "details": err.Error()})
			return
		}
	}

	env, err := h.deps.Tool.Handle(c.Request.Context(), args)
	if err != nil {
		c.JSON(errors.HTTPStatus(errors.CodeOf(err)), gin.H{
			"error":   errors.UserMessage(err),
			"details": errors.Normalize(err).Details,
		})
		return
	}
	c.JSON(http.StatusOK, env)
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handlers) ready(c *gin.Context) {
	if h.deps.Ready != nil {
		if err := h.deps.Ready(c.Request.Context()); err != nil {
			h.logger.Warn("Readiness check failed", map[string]interface{}{"error": err})
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
