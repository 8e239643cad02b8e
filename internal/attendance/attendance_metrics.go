package attendance

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	recordTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "attendance_record_total",
		Help: "Attendance pipeline runs by outcome",
	}, []string{"outcome"})

	recordDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "attendance_record_duration_seconds",
		Help:    "End-to-end duration of an attendance pipeline run",
		Buckets: prometheus.DefBuckets,
	})

	leaseWait = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "attendance_lease_wait_seconds",
		Help:    "Time spent waiting for the employee-day lease",
		Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 3},
	})
)

func observeRecord(outcome Outcome, start time.Time) {
	recordTotal.WithLabelValues(string(outcome)).Inc()
	recordDuration.Observe(time.Since(start).Seconds())
}
