package producer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	published = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "attendance",
		Subsystem: "outbox",
		Name:      "published_total",
		Help:      "Outbox rows handed to Kafka, by event type and result.",
	}, []string{"event_type", "result"})

	flushBatch = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "attendance",
		Subsystem: "outbox",
		Name:      "batch_size",
		Help:      "Pending rows picked up per flush.",
		Buckets:   []float64{1, 5, 10, 25, 50},
	})
)
