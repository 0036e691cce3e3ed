// Package metrics holds the service's Prometheus collectors. Everything is
// registered on the default registry and served by promhttp in cmd/server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CommandsTotal counts processed commands by action kind and result.
	// Results: applied, failed, not_action, needs_value, parse_failure.
	CommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stocktalk",
		Subsystem: "commands",
		Name:      "processed_total",
		Help:      "Commands processed, labeled by action kind and result.",
	}, []string{"action", "result"})

	// LLMRequestDuration times round trips to the text-understanding service,
	// including retries.
	LLMRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "stocktalk",
		Subsystem: "llm",
		Name:      "request_seconds",
		Help:      "Chat completion round-trip time in seconds.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
	})

	// LLMRequestsTotal counts completion attempts by outcome (ok, error).
	LLMRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stocktalk",
		Subsystem: "llm",
		Name:      "requests_total",
		Help:      "Chat completion requests by outcome.",
	}, []string{"outcome"})
)
