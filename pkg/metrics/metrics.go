// Package metrics provides Prometheus instrumentation for MapStack's
// outgoing backend calls.
//
// The client records every API call by endpoint, method, and status so an
// operator can see which backend routes are slow or failing from the POS
// terminal's point of view. Gather() exposes the registry for the `mapstack
// metrics` command and for tests.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// APICallDuration tracks how long each backend call takes,
	// broken down by endpoint name, method, and status code.
	APICallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mapstack",
			Subsystem: "api",
			Name:      "call_duration_seconds",
			Help:      "Duration of backend API calls in seconds.",
			Buckets:   prometheus.DefBuckets, // .005 .01 .025 .05 .1 .25 .5 1 2.5 5 10
		},
		[]string{"endpoint", "method", "status"},
	)

	// APICallTotal counts all backend API calls.
	APICallTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mapstack",
			Subsystem: "api",
			Name:      "calls_total",
			Help:      "Total number of backend API calls.",
		},
		[]string{"endpoint", "method", "status"},
	)

	// SessionExpirations counts forced logouts caused by invalid tokens.
	SessionExpirations = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mapstack",
		Subsystem: "session",
		Name:      "expirations_total",
		Help:      "Forced logouts triggered by invalid-token responses.",
	})

	// StockRejections counts ticket mutations rejected by the reservation check.
	StockRejections = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mapstack",
		Subsystem: "ticket",
		Name:      "stock_rejections_total",
		Help:      "Ticket item changes rejected for insufficient available stock.",
	})
)

// Registry holds all MapStack client metrics. The `mapstack metrics`
// command and tests gather from it directly.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(
		APICallDuration,
		APICallTotal,
		SessionExpirations,
		StockRejections,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// ObserveCall records one backend call outcome.
func ObserveCall(endpoint, method, status string, elapsed time.Duration) {
	APICallTotal.WithLabelValues(endpoint, method, status).Inc()
	APICallDuration.WithLabelValues(endpoint, method, status).Observe(elapsed.Seconds())
}
