package app

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"face-attendance/internal/config"
	"face-attendance/internal/events"
	"face-attendance/internal/messaging/kafka/consumer"
	"face-attendance/internal/summary"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// RunConsumer projects attendance_recorded events into daily summaries
// until SIGINT/SIGTERM.
func RunConsumer(cfg *config.Config) error {
	if cfg.Kafka.Broker == "" {
		return errors.New("KAFKA_BROKER is required")
	}
	logger := zap.L().Named("app.consumer")

	db, closeDB, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	// offsets are committed explicitly after each applied message
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{cfg.Kafka.Broker},
		Topic:       events.AttendanceRecordedTopic,
		GroupID:     cfg.Kafka.ConsumerGroup,
		StartOffset: kafkago.FirstOffset,
	})
	defer reader.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	applier := summary.NewService(summary.NewRepository(db), logger)
	consumer.ConsumeAttendanceRecorded(ctx, reader, applier, logger)
	logger.Info("consumer shut down")
	return nil
}
