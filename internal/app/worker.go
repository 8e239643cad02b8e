package app

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"face-attendance/internal/config"
	"face-attendance/internal/messaging/kafka"
	"face-attendance/internal/messaging/kafka/producer"
	"face-attendance/internal/shared/connection"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RunWorker relays outbox rows to Kafka until SIGINT/SIGTERM.
func RunWorker(cfg *config.Config) error {
	if cfg.Kafka.Broker == "" {
		return errors.New("KAFKA_BROKER is required")
	}
	logger := zap.L().Named("app.worker")

	db, closeDB, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	writer, err := connection.ConnectKafkaWithRetry(cfg.Kafka.Broker, cfg.Database.MaxRetries)
	if err != nil {
		return err
	}
	defer writer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	producer.NewRelay(kafka.NewOutboxRepository(db), writer, cfg.Kafka.PollInterval, logger).Run(ctx)
	logger.Info("worker shut down")
	return nil
}

// openDatabase is shared by the background processes, which never migrate.
func openDatabase(cfg *config.Config) (*gorm.DB, func(), error) {
	db, err := connection.ConnectGORMWithRetry(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, err
	}
	return db, func() { _ = sqlDB.Close() }, nil
}
