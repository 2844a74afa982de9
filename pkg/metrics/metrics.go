// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// UpstreamDuration tracks calls to external AI and source endpoints.
	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_request_duration_seconds",
			Help:    "Duration of calls to external services",
			Buckets: []float64{.1, .25, .5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"upstream", "outcome"},
	)

	// ChatTurnsTotal tracks chat turns by outcome.
	ChatTurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_turns_total",
			Help: "Total chat turns handled",
		},
		[]string{"outcome"},
	)

	// PersistenceFailuresTotal tracks transcript writes that failed.
	PersistenceFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_persistence_failures_total",
			Help: "Chat message writes that failed and were skipped",
		},
		[]string{"role"},
	)

	// SummariesTotal tracks summarization requests by outcome.
	SummariesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "summaries_total",
			Help: "Total code summaries requested",
		},
		[]string{"provider", "outcome"},
	)

	// SummaryCacheHits counts summaries served from cache.
	SummaryCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "summary_cache_hits_total",
			Help: "Summaries served from the cache",
		},
	)

	// NATSStreamMessages tracks messages in the transcript stream.
	NATSStreamMessages = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nats_stream_messages",
			Help: "Number of messages in NATS stream",
		},
		[]string{"stream"},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordUpstream records one call to an external service.
func RecordUpstream(upstream, outcome string, duration float64) {
	UpstreamDuration.WithLabelValues(upstream, outcome).Observe(duration)
}

// RecordChatTurn records the outcome of a chat turn.
func RecordChatTurn(outcome string) {
	ChatTurnsTotal.WithLabelValues(outcome).Inc()
}

// RecordPersistenceFailure records a skipped transcript write.
func RecordPersistenceFailure(role string) {
	PersistenceFailuresTotal.WithLabelValues(role).Inc()
}

// RecordSummary records the outcome of a summary request.
func RecordSummary(provider, outcome string) {
	SummariesTotal.WithLabelValues(provider, outcome).Inc()
}
