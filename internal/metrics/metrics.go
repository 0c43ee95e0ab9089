// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

// Package metrics declares the Prometheus collectors exported at /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 40}, // sessions wait on several model calls
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Language model calls
	LLMRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_requests_total",
			Help: "Total number of language model calls",
		},
		[]string{"provider", "phase", "result"}, // result: success, error, malformed
	)

	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_request_duration_seconds",
			Help:    "Language model call duration in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		},
		[]string{"provider", "phase"},
	)

	// External metadata providers (TMDB, OMDb)
	MetadataRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metadata_requests_total",
			Help: "Total number of metadata provider requests",
		},
		[]string{"provider", "operation", "result"}, // result: hit, miss, error, cached
	)

	MetadataRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "metadata_request_duration_seconds",
			Help:    "Metadata provider request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"provider", "operation"},
	)

	// Recommendation pipeline
	SessionsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_sessions_total",
			Help: "Total number of recommendation sessions by delivery mode and outcome",
		},
		[]string{"mode", "outcome"}, // mode: batch, stream
	)

	CardsEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_cards_total",
			Help: "Total number of recommendation cards delivered",
		},
		[]string{"mode"},
	)

	TopUpAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_topup_attempts_total",
			Help: "Total number of top-up generation attempts",
		},
		[]string{"mode", "result"}, // result: satisfied, short, failed
	)

	CandidatesRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_candidates_rejected_total",
			Help: "Total number of generated candidates rejected during resolution",
		},
		[]string{"reason"}, // excluded_title, excluded_key, type, not_found, enrich_failed
	)

	AvailabilityWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "availability_writes_total",
			Help: "Total number of background availability persistence jobs",
		},
		[]string{"result"}, // success, failure, skipped
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: success, failure, rejected, canceled
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Store maintenance
	StoreGCRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_gc_runs_total",
			Help: "Total number of value log GC runs",
		},
		[]string{"result"},
	)
)

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks in-flight API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordLLMCall records one language model round trip.
func RecordLLMCall(provider, phase, result string, duration time.Duration) {
	LLMRequests.WithLabelValues(provider, phase, result).Inc()
	LLMRequestDuration.WithLabelValues(provider, phase).Observe(duration.Seconds())
}

// RecordMetadataCall records one metadata provider request.
func RecordMetadataCall(provider, operation, result string, duration time.Duration) {
	MetadataRequests.WithLabelValues(provider, operation, result).Inc()
	if result != "cached" {
		MetadataRequestDuration.WithLabelValues(provider, operation).Observe(duration.Seconds())
	}
}
