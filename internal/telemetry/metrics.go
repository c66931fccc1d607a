// Package telemetry holds the Prometheus collectors and the OpenTelemetry bootstrap.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "photofeed"

// Outcome label values
const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeCacheHit = "cache_hit"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests served, by route, method and status code.",
	}, []string{"route", "method", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})

	GraphRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "graph_requests_total",
		Help:      "Calls made to the Graph API, by operation and outcome.",
	}, []string{"operation", "outcome"})

	TokenExchanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_requests_total",
		Help:      "Access token lookups, by outcome (success, failure, cache_hit).",
	}, []string{"outcome"})

	TranscodeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "image_transcode_duration_seconds",
		Help:      "Time spent decoding and re-encoding images to WebP.",
		Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
	})

	FeedPhotos = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "feed_photos",
		Help:      "Number of photos found by the last successful feed build.",
	})
)
