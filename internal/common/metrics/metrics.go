// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Path labels.
const (
	PathStructured = "structured"
	PathAgent      = "agent"
	PathTool       = "tool"
	PathWorker     = "worker"
)

var (
	ChatRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatbot_requests_total",
			Help: "Total number of chat requests by path and outcome",
		},
		[]string{"path", "outcome"},
	)

	ChatRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chatbot_request_duration_seconds",
			Help:    "Duration of chat request processing in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"path"},
	)

	LLMCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatbot_llm_calls_total",
			Help: "Total number of LLM calls by provider, stage and outcome",
		},
		[]string{"provider", "stage", "outcome"},
	)

	QueryRows = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chatbot_query_rows",
			Help:    "Rows returned by menu queries",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
		},
		[]string{"path"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatbot_cache_hits_total",
			Help: "Answer cache lookups by result",
		},
		[]string{"result"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)
)

// Outcome returns the outcome label for err.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
