package async

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	queuedJobs = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "hrbulk",
		Subsystem: "queue",
		Name:      "pending_jobs",
		Help:      "Uploads waiting for a worker.",
	})
	processedJobs = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hrbulk",
		Subsystem: "queue",
		Name:      "jobs_total",
		Help:      "Uploads taken off the queue, by result.",
	}, []string{"result"})
)
