package evaluate

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// metricOutcomes counts metric runs by metric name and outcome status
	metricOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fidelity_metric_outcomes_total",
		Help: "Total metric evaluations by metric and status",
	}, []string{"metric", "status"})

	// evaluationDuration tracks end-to-end evaluation latency
	evaluationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fidelity_evaluation_duration_seconds",
		Help:    "Evaluation duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 16), // 1ms to ~33s
	})

	// distanceRows tracks rows entering the distance computer per side
	distanceRows = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fidelity_distance_rows",
		Help:    "Rows projected for nearest-neighbour distances",
		Buckets: prometheus.ExponentialBuckets(10, 4, 8),
	}, []string{"side"})
)
