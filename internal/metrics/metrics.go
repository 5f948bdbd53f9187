// Package metrics defines the Prometheus metrics exported on /metrics.
// All Record* methods are safe to call on a nil *Metrics, so components
// can be constructed without metrics in tests and tools.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Feed metrics
	FeedFetchTotal    *prometheus.CounterVec
	FeedFetchDuration *prometheus.HistogramVec
	FeedRecords       *prometheus.GaugeVec
	FeedDedupTotal    *prometheus.CounterVec
	CacheHitsTotal    *prometheus.CounterVec
	CacheMissesTotal  *prometheus.CounterVec

	// Chat metrics
	ChatRequestsTotal   *prometheus.CounterVec
	ChatDurationSeconds *prometheus.HistogramVec

	// LLM metrics
	LLMRequestsTotal   *prometheus.CounterVec
	LLMDurationSeconds *prometheus.HistogramVec
	LLMFallbackTotal   *prometheus.CounterVec

	// HTTP metrics
	HTTPErrorsTotal *prometheus.CounterVec

	// Rate limiter metrics
	RateLimiterDropped *prometheus.CounterVec
	RateLimiterClients prometheus.Gauge

	// Warmup metrics
	WarmupTasksTotal *prometheus.CounterVec
	WarmupDuration   prometheus.Histogram
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		FeedFetchTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tthc_feed_fetch_total",
				Help: "Total number of feed downloads by feed and status",
			},
			[]string{"feed", "status"}, // status: success, empty, error
		),

		FeedFetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tthc_feed_fetch_duration_seconds",
				Help:    "Feed download and parse duration in seconds",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10}, // Bounded by the 10s fetch timeout
			},
			[]string{"feed"},
		),

		FeedRecords: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tthc_feed_records",
				Help: "Number of records held in the feed cache",
			},
			[]string{"feed"},
		),

		FeedDedupTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tthc_feed_dedup_total",
				Help: "Requests that waited on an in-flight feed refresh instead of fetching",
			},
			[]string{"feed"},
		),

		CacheHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tthc_feed_cache_hits_total",
				Help: "Total number of feed cache hits",
			},
			[]string{"feed"},
		),

		CacheMissesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tthc_feed_cache_misses_total",
				Help: "Total number of feed cache misses",
			},
			[]string{"feed"},
		),

		ChatRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tthc_chat_requests_total",
				Help: "Total chat requests by route and outcome",
			},
			[]string{"route", "outcome"}, // route: procedure, document
		),

		ChatDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tthc_chat_duration_seconds",
				Help:    "End-to-end chat answer duration in seconds",
				Buckets: []float64{0.05, 0.25, 0.5, 1, 2, 5, 10, 20, 45},
			},
			[]string{"route"},
		),

		LLMRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tthc_llm_requests_total",
				Help: "Total generation calls by provider and status",
			},
			[]string{"provider", "status"}, // status: success, empty, error
		),

		LLMDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tthc_llm_duration_seconds",
				Help:    "Generation call duration in seconds",
				Buckets: []float64{0.5, 1, 2, 4, 8, 15, 30},
			},
			[]string{"provider"},
		),

		LLMFallbackTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tthc_llm_fallback_total",
				Help: "Times generation moved from one provider to the next",
			},
			[]string{"from", "to"},
		),

		HTTPErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tthc_http_errors_total",
				Help: "Total HTTP errors by type and module",
			},
			[]string{"error_type", "module"}, // error_type: bad_request, method_not_allowed, rate_limit, internal
		),

		RateLimiterDropped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tthc_rate_limiter_dropped_total",
				Help: "Total number of requests dropped by rate limiter",
			},
			[]string{"limiter_type"},
		),

		RateLimiterClients: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "tthc_rate_limiter_clients",
				Help: "Number of clients currently tracked by the rate limiter",
			},
		),

		WarmupTasksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tthc_warmup_tasks_total",
				Help: "Total number of warmup tasks by feed and status",
			},
			[]string{"feed", "status"},
		),

		WarmupDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "tthc_warmup_duration_seconds",
				Help:    "Total duration of the startup feed preload",
				Buckets: []float64{0.5, 1, 2, 5, 10, 30},
			},
		),
	}
}

// RecordFeedFetch records one feed download attempt.
func (m *Metrics) RecordFeedFetch(feed, status string, duration float64) {
	if m == nil {
		return
	}
	m.FeedFetchTotal.WithLabelValues(feed, status).Inc()
	m.FeedFetchDuration.WithLabelValues(feed).Observe(duration)
}

// SetFeedRecords sets the cached record count of a feed.
func (m *Metrics) SetFeedRecords(feed string, n int) {
	if m == nil {
		return
	}
	m.FeedRecords.WithLabelValues(feed).Set(float64(n))
}

// RecordFeedDedup records a request that joined an in-flight refresh.
func (m *Metrics) RecordFeedDedup(feed string) {
	if m == nil {
		return
	}
	m.FeedDedupTotal.WithLabelValues(feed).Inc()
}

// RecordCacheHit records a cache hit
func (m *Metrics) RecordCacheHit(feed string) {
	if m == nil {
		return
	}
	m.CacheHitsTotal.WithLabelValues(feed).Inc()
}

// RecordCacheMiss records a cache miss
func (m *Metrics) RecordCacheMiss(feed string) {
	if m == nil {
		return
	}
	m.CacheMissesTotal.WithLabelValues(feed).Inc()
}

// RecordChat records one answered chat request.
func (m *Metrics) RecordChat(route, outcome string, duration float64) {
	if m == nil {
		return
	}
	m.ChatRequestsTotal.WithLabelValues(route, outcome).Inc()
	m.ChatDurationSeconds.WithLabelValues(route).Observe(duration)
}

// RecordLLM records one generation call.
func (m *Metrics) RecordLLM(provider, status string, duration float64) {
	if m == nil {
		return
	}
	m.LLMRequestsTotal.WithLabelValues(provider, status).Inc()
	m.LLMDurationSeconds.WithLabelValues(provider).Observe(duration)
}

// RecordLLMFallback records a switch between providers.
func (m *Metrics) RecordLLMFallback(from, to string) {
	if m == nil {
		return
	}
	m.LLMFallbackTotal.WithLabelValues(from, to).Inc()
}

// RecordHTTPError records HTTP error metrics
func (m *Metrics) RecordHTTPError(errorType, module string) {
	if m == nil {
		return
	}
	m.HTTPErrorsTotal.WithLabelValues(errorType, module).Inc()
}

// RecordRateLimiterDrop records a request dropped by rate limiter
func (m *Metrics) RecordRateLimiterDrop(limiterType string) {
	if m == nil {
		return
	}
	m.RateLimiterDropped.WithLabelValues(limiterType).Inc()
}

// SetRateLimiterClients sets the number of tracked clients.
func (m *Metrics) SetRateLimiterClients(n int) {
	if m == nil {
		return
	}
	m.RateLimiterClients.Set(float64(n))
}

// RecordWarmupTask records a warmup task completion
func (m *Metrics) RecordWarmupTask(feed, status string) {
	if m == nil {
		return
	}
	m.WarmupTasksTotal.WithLabelValues(feed, status).Inc()
}

// RecordWarmupDuration records total warmup duration
func (m *Metrics) RecordWarmupDuration(duration float64) {
	if m == nil {
		return
	}
	m.WarmupDuration.Observe(duration)
}
