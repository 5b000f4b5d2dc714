// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "moviecat"

var (
	// HTTPRequests counts served requests.
	// Labels: method, route (gin route template), status
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests served",
	}, []string{"method", "route", "status"})

	// HTTPDuration measures request latency.
	// Labels: method, route
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	// Recommendations counts recommendation lists produced.
	// Labels: kind (movies, sequels)
	Recommendations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "recommendations_total",
		Help:      "Total recommendation lists computed",
	}, []string{"kind"})

	// Ratings counts rate operations.
	// Labels: outcome (created, updated, conflict)
	Ratings = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ratings_total",
		Help:      "Total rating submissions by outcome",
	}, []string{"outcome"})

	// TMDBRequests counts calls to the metadata API.
	// Labels: endpoint, status (HTTP status, "error" or "open")
	TMDBRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "tmdb",
		Name:      "requests_total",
		Help:      "Total TMDB API requests",
	}, []string{"endpoint", "status"})

	// IngestMovies counts movies processed by catalog ingestion.
	// Labels: result (imported, skipped, failed)
	IngestMovies = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ingest",
		Name:      "movies_total",
		Help:      "Total movies processed by ingestion",
	}, []string{"result"})
)
