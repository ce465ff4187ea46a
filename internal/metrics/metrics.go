// Package metrics holds the prometheus collectors shared by the engine,
// the collaborators and the HTTP layer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docflow_http_requests_total",
			Help: "Total number of HTTP API requests",
		},
		[]string{"method", "endpoint", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "docflow_http_request_duration_seconds",
			Help: "Duration of HTTP API requests",
		},
		[]string{"method", "endpoint"},
	)
	WorkflowRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docflow_workflow_runs_total",
			Help: "Total number of workflow executions by final status",
		},
		[]string{"status"},
	)
	WorkflowRunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "docflow_workflow_run_duration_seconds",
			Help:    "Duration of workflow executions",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 14),
		},
	)
	NodeExecutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docflow_node_executions_total",
			Help: "Total number of node executions",
		},
		[]string{"kind", "status"},
	)
	NodeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "docflow_node_duration_seconds",
			Help: "Duration of a single node execution",
		},
		[]string{"kind"},
	)
	ExternalCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docflow_external_calls_total",
			Help: "Total number of calls to external collaborators",
		},
		[]string{"provider", "status"},
	)
	CacheHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "docflow_web_search_cache_hits_total",
			Help: "Total number of web search cache hits",
		},
	)
	CacheMissesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "docflow_web_search_cache_misses_total",
			Help: "Total number of web search cache misses",
		},
	)
	ChunksIndexedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "docflow_chunks_indexed_total",
			Help: "Total number of document chunks written to the vector store",
		},
	)
	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "docflow_conversation_sessions",
			Help: "Number of conversation sessions held in memory",
		},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(WorkflowRunsTotal)
	prometheus.MustRegister(WorkflowRunDuration)
	prometheus.MustRegister(NodeExecutionsTotal)
	prometheus.MustRegister(NodeDuration)
	prometheus.MustRegister(ExternalCallsTotal)
	prometheus.MustRegister(CacheHitsTotal)
	prometheus.MustRegister(CacheMissesTotal)
	prometheus.MustRegister(ChunksIndexedTotal)
	prometheus.MustRegister(ActiveSessions)
}

// ObserveExternal counts one call to an external provider.
func ObserveExternal(provider string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	ExternalCallsTotal.WithLabelValues(provider, status).Inc()
}
