package answerquestion

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"resto-chatbot/internal/chatbot"
	"resto-chatbot/internal/common/database"
	"resto-chatbot/internal/common/errors"
	"resto-chatbot/internal/common/logger"
)

const (
	TaskType = "answer-question"
)

type Handler struct {
	config       *Config
	structured   chatbot.Answerer
	agent        chatbot.Answerer
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, structured, agent chatbot.Answerer, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		structured:   structured,
		agent:        agent,
		errorHandler: errors.NewErrorHandler(l),
		logger:       l,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, errors.NewInvalidRequestError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, errors.NewInvalidRequestError("input cannot be nil")
	}

	var answerer chatbot.Answerer
	switch strings.ToLower(strings.TrimSpace(input.Mode)) {
	case "", ModeStructured:
		answerer = h.structured
	case ModeAgent:
		answerer = h.agent
	default:
		return nil, errors.NewInvalidRequestError(fmt.Sprintf("unknown mode %q", input.Mode))
	}

	ans, err := answerer.Answer(ctx, input.Question)
	if err != nil {
		return nil, err
	}

	results := ans.Results
	if results == nil {
		results = []database.Row{}
	}

	h.logger.Info("question answered", map[string]interface{}{
		"mode":        input.Mode,
		"resultCount": len(results),
	})

	return &Output{
		Answer:          ans.Text,
		StructuredQuery: ans.StructuredQuery,
		Results:         results,
	}, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}
