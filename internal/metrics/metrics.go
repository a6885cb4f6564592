// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "solace"

// Registry is the registry every collector in this package is registered on.
var Registry = prometheus.NewRegistry()

var (
	FragmentsInserted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fragments_inserted_total",
		Help:      "Fragments written to the fragment store.",
	})

	Retrievals = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "retrievals_total",
		Help:      "Completed retrievals.",
	})

	StreamsStarted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "chat_streams_total",
		Help:      "Chat answer streams started, by mode (rag, plain).",
	}, []string{"mode"})

	StreamFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "chat_stream_failures_total",
		Help:      "Chat streams that ended with an error, by phase (before_first_byte, mid_stream).",
	}, []string{"phase"})

	EvaluationDecisions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "evaluation_decisions_total",
		Help:      "Evaluation cache decisions, by state (no_cache, fresh, stale).",
	}, []string{"state"})

	EvaluationFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "evaluation_failures_total",
		Help:      "Evaluations that failed before anything was persisted.",
	})

	RequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds.",
		Buckets:   []float64{0.005, 0.025, 0.1, 0.5, 1, 2.5, 5, 15, 60},
	}, []string{"method", "route", "status_class"})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		FragmentsInserted,
		Retrievals,
		StreamsStarted,
		StreamFailures,
		EvaluationDecisions,
		EvaluationFailures,
		RequestDuration,
	)
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
