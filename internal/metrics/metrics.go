// Package metrics defines Prometheus metrics for flowgraph.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flowgraph_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flowgraph_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flowgraph_errors_total",
			Help: "Total errors by type",
		},
		[]string{"type"},
	)

	RunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "flowgraph_run_duration_seconds",
			Help:    "End-to-end pipeline run duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		},
	)

	RunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flowgraph_runs_total",
			Help: "Total pipeline runs by outcome",
		},
		[]string{"status"},
	)

	WorkflowsIngested = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "flowgraph_workflows_ingested_total",
			Help: "Workflow records ingested into the co-occurrence graph",
		},
	)

	DegenerateWorkflows = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "flowgraph_workflows_degenerate_total",
			Help: "Workflow records with fewer than two distinct tools",
		},
	)

	EmbedQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "flowgraph_embed_queue_depth",
			Help: "Current embedding queue depth",
		},
	)

	WSConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "flowgraph_websocket_connections",
			Help: "Active WebSocket connections",
		},
	)

	NodeCount = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "flowgraph_nodes_total",
			Help: "Tool nodes in the latest assembled graph",
		},
	)

	EdgeCount = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "flowgraph_edges_total",
			Help: "Co-occurrence edges in the latest assembled graph",
		},
	)

	CommunityCount = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "flowgraph_communities_total",
			Help: "Communities at the coarsest level of the latest run",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestDuration, RequestsTotal, ErrorsTotal,
		RunDuration, RunsTotal,
		WorkflowsIngested, DegenerateWorkflows,
		EmbedQueueDepth, WSConnections,
		NodeCount, EdgeCount, CommunityCount,
	)
}
