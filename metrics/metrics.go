package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for FeedFetches
const (
	OutcomeSuccess       = "success"
	OutcomeProviderError = "provider_error"
)

// Reason labels for IndicatorsSkipped
const (
	SkipTypeCap     = "type_cap"
	SkipRecordError = "record_error"
	SkipTruncated   = "truncated"
)

var (
	FeedFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ctidash_feed_fetches_total",
			Help: "Total number of bulk pulse fetches by outcome",
		},
		[]string{"outcome"},
	)

	FeedFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ctidash_feed_fetch_duration_seconds",
			Help:    "Time taken to fetch and normalize pulses",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	PulsesFetched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ctidash_pulses_fetched_total",
			Help: "Total number of pulses received from the provider",
		},
	)

	IndicatorsEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ctidash_indicators_emitted_total",
			Help: "Total number of normalized indicators returned, by source",
		},
		[]string{"source"},
	)

	IndicatorsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ctidash_indicators_skipped_total",
			Help: "Total number of provider indicators dropped, by reason",
		},
		[]string{"reason"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ctidash_http_requests_total",
			Help: "Total number of HTTP requests served",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ctidash_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)
