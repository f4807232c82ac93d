// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_submissions_total",
			Help: "Total number of loan application submissions by outcome",
		},
		[]string{"outcome"},
	)

	ValidationFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_validation_failures_total",
			Help: "Total number of field validation failures",
		},
		[]string{"field", "code"},
	)

	PredictionRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "intake_prediction_request_duration_seconds",
			Help: "Duration of prediction service requests in seconds",
		},
		[]string{"outcome"},
	)

	PredictionRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "intake_prediction_retries_total",
			Help: "Total number of prediction request retries after transport errors",
		},
	)

	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_cache_lookups_total",
			Help: "Total number of prediction cache lookups by result",
		},
		[]string{"result"},
	)
)
