package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	searchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_requests_total",
			Help: "Total number of search service calls by operation",
		},
		[]string{"operation"},
	)

	searchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "search_duration_seconds",
			Help:    "Duration of search service calls, retrieval included",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"operation"},
	)

	retrievalFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_retrieval_failures_total",
			Help: "Candidate retrievals that failed and were served as empty",
		},
		[]string{"reason"},
	)

	candidateCount = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "search_candidates",
			Help:    "Number of candidate listings retrieved per search",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	listingWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_listing_writes_total",
			Help: "Listing index writes by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)
)
