package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hrbulk",
		Subsystem: "pipeline",
		Name:      "runs_total",
		Help:      "Bulk pipeline runs by operation and outcome (ok, denied, error).",
	}, []string{"operation", "outcome"})

	runDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "hrbulk",
		Subsystem: "pipeline",
		Name:      "run_duration_seconds",
		Help:      "End-to-end latency of one bulk pipeline run.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	}, []string{"operation"})
)
