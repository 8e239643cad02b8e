package producer

import (
	"context"
	"time"

	"face-attendance/internal/messaging/kafka"

	"go.uber.org/zap"
)

const (
	DefaultBatchSize    = 50
	DefaultPollInterval = 3 * time.Second
	// sent rows are kept this long for troubleshooting
	DefaultRetention = 7 * 24 * time.Hour
	purgeEvery       = time.Hour
)

// Relay drains the transactional outbox into Kafka. A row is marked sent
// only after the broker acknowledged it, so delivery is at least once.
type Relay struct {
	repo      kafka.OutboxRepository
	writer    MessageWriter
	logger    *zap.Logger
	interval  time.Duration
	batchSize int
	retention time.Duration
	lastPurge time.Time
	now       func() time.Time
}

func NewRelay(repo kafka.OutboxRepository, writer MessageWriter, interval time.Duration, logger ...*zap.Logger) *Relay {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	l := zap.L()
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0]
	}
	return &Relay{
		repo:      repo,
		writer:    writer,
		logger:    l.Named("kafka.producer.relay"),
		interval:  interval,
		batchSize: DefaultBatchSize,
		retention: DefaultRetention,
		now:       time.Now,
	}
}

// Run polls until ctx is cancelled. A full batch triggers an immediate
// follow-up instead of waiting for the next tick.
func (r *Relay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("outbox relay started", zap.Duration("poll_interval", r.interval))
	defer r.logger.Info("outbox relay stopped")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		for ctx.Err() == nil {
			n, err := r.Flush(ctx)
			if err != nil {
				r.logger.Error("flush outbox failed", zap.Error(err))
				break
			}
			if n < r.batchSize {
				break
			}
		}
		r.purge(ctx)
	}
}

// purge drops old sent rows at most once per purgeEvery.
func (r *Relay) purge(ctx context.Context) {
	now := r.now()
	if !r.lastPurge.IsZero() && now.Sub(r.lastPurge) < purgeEvery {
		return
	}
	r.lastPurge = now

	n, err := r.repo.PurgeSent(ctx, now.Add(-r.retention))
	if err != nil {
		r.logger.Warn("purge sent outbox rows failed", zap.Error(err))
		return
	}
	if n > 0 {
		r.logger.Info("purged sent outbox rows", zap.Int64("count", n))
	}
}

// Flush publishes one batch of pending rows and returns how many rows were
// picked up, whether or not each publish succeeded.
func (r *Relay) Flush(ctx context.Context) (int, error) {
	pending, err := r.repo.ListPending(ctx, r.batchSize)
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}
	flushBatch.Observe(float64(len(pending)))

	for _, event := range pending {
		log := r.logger.With(
			zap.String("outbox_id", event.ID),
			zap.String("event_type", event.EventType),
			zap.String("aggregate_id", event.AggregateID),
		)

		if err := publishEvent(ctx, r.writer, event); err != nil {
			published.WithLabelValues(event.EventType, "failed").Inc()
			log.Warn("publish outbox event failed", zap.Int("retry_count", event.RetryCount), zap.Error(err))
			if markErr := r.repo.MarkFailed(ctx, event.ID, err.Error()); markErr != nil {
				log.Error("mark outbox failed", zap.Error(markErr))
			}
			continue
		}

		published.WithLabelValues(event.EventType, "sent").Inc()
		if err := r.repo.MarkSent(ctx, event.ID); err != nil {
			// the row will be published again; consumers dedupe by sequence
			log.Error("mark outbox sent failed", zap.Error(err))
			continue
		}
		log.Debug("outbox event sent")
	}

	return len(pending), nil
}
