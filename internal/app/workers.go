package app

import (
	"resto-chatbot/internal/common/camunda"
	"resto-chatbot/internal/common/config"
	aq "resto-chatbot/internal/workers/chatbot/answer-question"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"
)

// StartWorkers opens a job worker for every enabled chatbot task type.
func (a *App) StartWorkers(client zbc.Client, zapLog *zap.Logger) []*camunda.CamundaWorker {
	var workers []*camunda.CamundaWorker

	if config.IsWorkerEnabled(a.Config, aq.TaskType) {
		wcfg := config.GetWorkerConfig(a.Config, aq.TaskType)
		handler := aq.NewHandler(
			&aq.Config{Timeout: config.GetDuration(a.Config.Chatbot.RequestTimeout)},
			a.Structured, a.Agent, a.Logger,
		)
		w := camunda.NewWorker(client, aq.TaskType, wcfg.MaxJobsActive, config.GetDuration(wcfg.Timeout), handler, zapLog)
		w.Start()
		workers = append(workers, w)
	} else {
		zapLog.Info("worker disabled", zap.String("taskType", aq.TaskType))
	}

	return workers
}
