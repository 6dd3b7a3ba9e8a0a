// Package monitoring exposes Prometheus metrics for the assistant.
package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "crm_assistant"

var sankhyaQueries = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "sankhya",
		Name:      "queries_total",
		Help:      "loadRecords calls by entity and outcome",
	},
	[]string{"entity", "outcome"}, // outcome: ok, error
)

var cacheLookups = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "lookups_total",
		Help:      "Analysis cache reads by result",
	},
	[]string{"backend", "result"}, // result: hit, miss, error
)

var cacheWriteErrors = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "write_errors_total",
		Help:      "Failed analysis cache writes",
	},
	[]string{"backend"},
)

var aggregationLatency = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "analysis",
		Name:      "fetch_seconds",
		Help:      "Time spent building an analysis snapshot from the gateway",
		Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 15, 30, 60},
	},
)

var chatStreams = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "chat",
		Name:      "streams_total",
		Help:      "Chat replies by provider and outcome",
	},
	[]string{"provider", "outcome"}, // outcome: ok, error, canceled
)

var httpRequests = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route and status code",
	},
	[]string{"route", "code"},
)

func init() {
	prometheus.MustRegister(sankhyaQueries, cacheLookups, cacheWriteErrors, aggregationLatency, chatStreams, httpRequests)
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveQuery counts one gateway query.
func ObserveQuery(entity string, err error) {
	sankhyaQueries.WithLabelValues(entity, outcome(err)).Inc()
}

// CacheHit counts a cache read that returned a snapshot.
func CacheHit(backend string) { cacheLookups.WithLabelValues(backend, "hit").Inc() }

// CacheMiss counts a cache read that found nothing.
func CacheMiss(backend string) { cacheLookups.WithLabelValues(backend, "miss").Inc() }

// CacheError counts a cache read that failed and was treated as a miss.
func CacheError(backend string) { cacheLookups.WithLabelValues(backend, "error").Inc() }

// CacheWriteError counts a failed analysis cache write.
func CacheWriteError(backend string) {
	cacheWriteErrors.WithLabelValues(backend).Inc()
}

// ObserveAggregation records how long an uncached snapshot took.
func ObserveAggregation(d time.Duration) {
	aggregationLatency.Observe(d.Seconds())
}

// ObserveStream counts a finished chat reply.
func ObserveStream(provider, result string) {
	chatStreams.WithLabelValues(provider, result).Inc()
}

// ObserveRequest counts one HTTP response.
func ObserveRequest(route, code string) {
	httpRequests.WithLabelValues(route, code).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
