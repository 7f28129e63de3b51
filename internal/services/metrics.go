package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the custom Prometheus metrics for the assistant.
type Metrics struct {
	AssistantRequests prometheus.Counter
	AssistantLatency  prometheus.Histogram
	AssistantErrors   *prometheus.CounterVec

	ToolExecutions *prometheus.CounterVec
	LoopIterations prometheus.Histogram

	SearchRequests *prometheus.CounterVec
}

var globalMetrics *Metrics

// InitMetrics registers the metrics. Call once at startup.
func InitMetrics() *Metrics {
	metrics := &Metrics{
		AssistantRequests: promauto.NewCounter(prometheus.CounterOpts{
			Name: "dayflow_assistant_requests_total",
			Help: "Total assistant chat requests processed",
		}),
		AssistantLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "dayflow_assistant_request_duration_seconds",
			Help:    "End-to-end assistant request latency in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		}),
		AssistantErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "dayflow_assistant_errors_total",
			Help: "Assistant errors by type",
		}, []string{"error_type"}),
		ToolExecutions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "dayflow_tool_executions_total",
			Help: "Tool executions by tool name and outcome",
		}, []string{"tool", "status"}),
		LoopIterations: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "dayflow_agent_iterations",
			Help:    "Model calls spent per assistant request",
			Buckets: []float64{1, 2, 3, 4, 5, 6, 7},
		}),
		SearchRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "dayflow_search_requests_total",
			Help: "Web search requests by outcome",
		}, []string{"status"}),
	}
	globalMetrics = metrics
	return metrics
}

// GetMetrics returns the global metrics instance, nil before InitMetrics.
func GetMetrics() *Metrics {
	return globalMetrics
}

// RecordAssistantRequest counts one chat request.
func (m *Metrics) RecordAssistantRequest() {
	m.AssistantRequests.Inc()
}

// RecordAssistantLatency observes one request's latency.
func (m *Metrics) RecordAssistantLatency(seconds float64) {
	m.AssistantLatency.Observe(seconds)
}

// RecordAssistantError counts one error by type.
func (m *Metrics) RecordAssistantError(errorType string) {
	m.AssistantErrors.WithLabelValues(errorType).Inc()
}

// RecordToolExecution counts one tool run.
func (m *Metrics) RecordToolExecution(tool, status string) {
	m.ToolExecutions.WithLabelValues(tool, status).Inc()
}

// RecordLoopIterations observes how many model calls a request used.
func (m *Metrics) RecordLoopIterations(n int) {
	m.LoopIterations.Observe(float64(n))
}

// RecordSearchRequest counts one web search.
func (m *Metrics) RecordSearchRequest(status string) {
	m.SearchRequests.WithLabelValues(status).Inc()
}
