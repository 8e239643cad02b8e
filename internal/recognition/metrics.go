package recognition

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registered once per process; every Client shares them.
var (
	attemptTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "attendance_recognition_attempts_total",
		Help: "Recognition service calls by convention and result",
	}, []string{"convention", "result"}) // result: ok, error

	attemptDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "attendance_recognition_attempt_duration_seconds",
		Help:    "Duration of a single recognition convention attempt",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"convention"})

	outcomeTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "attendance_recognition_outcomes_total",
		Help: "Recognition outcomes by kind",
	}, []string{"kind"})
)

func observeAttempt(convention string, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	attemptTotal.WithLabelValues(convention, result).Inc()
	attemptDuration.WithLabelValues(convention).Observe(d.Seconds())
}

func observeOutcome(kind Kind) {
	outcomeTotal.WithLabelValues(string(kind)).Inc()
}
