package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"face-attendance/internal/events"
	summaryerrors "face-attendance/internal/summary/errors"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

var retryBackoff = time.Second

type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

type SummaryApplier interface {
	Apply(ctx context.Context, event events.AttendanceRecordedEvent) (bool, error)
}

// ConsumeAttendanceRecorded feeds attendance_recorded events into the daily
// summary projection until ctx is cancelled. Poison messages are committed
// and skipped. A transient apply failure is retried on the same message, so
// no later offset is committed past it.
func ConsumeAttendanceRecorded(
	ctx context.Context,
	reader MessageReader,
	applier SummaryApplier,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.attendance_recorded")
	log.Info("attendance recorded consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("attendance recorded consumer stopped")
				return
			}
			log.Error("fetch attendance message failed", zap.Error(err))
			sleep(ctx, retryBackoff)
			continue
		}

		var event events.AttendanceRecordedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode attendance_recorded event failed",
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		applied, err := applyWithRetry(ctx, applier, event, log)
		if err != nil {
			if errors.Is(err, summaryerrors.ErrInvalidEvent) {
				log.Warn("invalid attendance event, skipping",
					zap.String("attendance_id", event.AttendanceID),
					zap.Error(err),
				)
				_ = reader.CommitMessages(ctx, msg)
				continue
			}
			// cancelled mid-retry; the offset stays uncommitted for the next run
			log.Info("attendance recorded consumer stopped",
				zap.Int64("uncommitted_offset", msg.Offset),
			)
			return
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit attendance message failed", zap.Error(err))
			continue
		}

		log.Debug("attendance event consumed",
			zap.String("attendance_id", event.AttendanceID),
			zap.String("employee_id", event.EmployeeID),
			zap.Int("sequence", event.Sequence),
			zap.Bool("applied", applied),
		)
	}
}

// applyWithRetry keeps applying event until it succeeds, the event is
// rejected as invalid, or ctx is done.
func applyWithRetry(
	ctx context.Context,
	applier SummaryApplier,
	event events.AttendanceRecordedEvent,
	log *zap.Logger,
) (bool, error) {
	for attempt := 1; ; attempt++ {
		applied, err := applier.Apply(ctx, event)
		if err == nil || errors.Is(err, summaryerrors.ErrInvalidEvent) {
			return applied, err
		}
		log.Error("apply attendance event failed",
			zap.String("attendance_id", event.AttendanceID),
			zap.String("employee_id", event.EmployeeID),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		sleep(ctx, retryBackoff)
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
