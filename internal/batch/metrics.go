package batch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	recordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hrbulk",
		Subsystem: "batch",
		Name:      "records_total",
		Help:      "Total number of records mutated broken down by operation and outcome.",
	}, []string{"operation", "outcome"})

	batchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "hrbulk",
		Subsystem: "batch",
		Name:      "duration_seconds",
		Help:      "Latency distribution for one batch of mutations.",
		Buckets: []float64{
			0.005, 0.01, 0.02, 0.05,
			0.1, 0.2, 0.5, 1,
			2, 5, 10, 30,
		},
	}, []string{"operation"})
)
