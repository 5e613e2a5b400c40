package matching

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	gymsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gym_matching_gyms_processed_total",
		Help: "Incoming gyms evaluated by matching passes",
	})
	passOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gym_matching_outcomes_total",
		Help: "Matching outcomes by classification",
	}, []string{"outcome"})
	passErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gym_matching_errors_total",
		Help: "Gyms that failed to process during a matching pass",
	})
	passDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gym_matching_pass_duration_seconds",
		Help:    "Wall time of a full matching pass",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	})
)
