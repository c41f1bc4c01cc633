// Package metrics exposes the Prometheus collectors for decoding, search runs
// and the HTTP API. Collectors live on a package registry rather than the
// global default so that /metrics only reports xorsift series.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"
)

// Registry holds every xorsift collector.
var Registry = prometheus.NewRegistry()

var (
	factory = promauto.With(Registry)

	decodes = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "xorsift_decode_total",
		Help: "Decode attempts by resolved format and outcome.",
	}, []string{"format", "outcome"})

	runs = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "xorsift_runs_total",
		Help: "Analysis runs by mode (single or exhaustive) and outcome.",
	}, []string{"mode", "outcome"})

	runDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "xorsift_run_duration_seconds",
		Help:    "Wall time of analysis runs.",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
	}, []string{"mode"})

	combinations = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "xorsift_combinations_total",
		Help: "Search space combinations by scenario and outcome (evaluated or skipped).",
	}, []string{"scenario", "outcome"})

	bestMatch = factory.NewGauge(prometheus.GaugeOpts{
		Name: "xorsift_last_best_match_percentage",
		Help: "Match percentage of the top ranked result of the most recent exhaustive run.",
	})

	httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "xorsift_http_requests_total",
		Help: "HTTP API requests by route, method and status code.",
	}, []string{"route", "method", "code"})

	httpLatency = factory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "xorsift_http_request_duration_seconds",
		Help:    "Latency of HTTP API handlers.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	totalRequests uint64
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Handler exposes the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}

// RecordDecode counts a decode attempt.
func RecordDecode(format string, err error) {
	format = strings.TrimSpace(format)
	if format == "" {
		format = "unknown"
	}
	decodes.WithLabelValues(format, outcome(err)).Inc()
}

// RecordRun counts a finished run and observes its duration. When ctx carries
// a sampled span its trace ID is attached as an exemplar.
func RecordRun(ctx context.Context, mode string, dur time.Duration, err error) {
	runs.WithLabelValues(mode, outcome(err)).Inc()
	observe(ctx, runDuration.WithLabelValues(mode), dur.Seconds())
}

// RecordCombination counts one evaluated or skipped combination.
func RecordCombination(scenario string, skipped bool) {
	result := "evaluated"
	if skipped {
		result = "skipped"
	}
	combinations.WithLabelValues(scenario, result).Inc()
}

// SetBestMatch records the top percentage of the latest exhaustive run.
func SetBestMatch(pct float64) {
	bestMatch.Set(pct)
}

// ObserveHTTPRequest records one API request.
func ObserveHTTPRequest(ctx context.Context, route, method string, status int, dur time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	method = strings.ToUpper(strings.TrimSpace(method))
	httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	observe(ctx, httpLatency.WithLabelValues(route, method), dur.Seconds())
	atomic.AddUint64(&totalRequests, 1)
}

// TotalRequests returns the number of API requests served since process start.
func TotalRequests() uint64 {
	return atomic.LoadUint64(&totalRequests)
}

func observe(ctx context.Context, o prometheus.Observer, v float64) {
	if ctx != nil {
		if sc := trace.SpanContextFromContext(ctx); sc.IsSampled() {
			if eo, ok := o.(prometheus.ExemplarObserver); ok {
				eo.ObserveWithExemplar(v, prometheus.Labels{"trace_id": sc.TraceID().String()})
				return
			}
		}
	}
	o.Observe(v)
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
