package main

import (
	"face-attendance/internal/app"

	"go.uber.org/zap"
)

func main() {
	cfg, logger, err := app.Setup()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := app.RunConsumer(cfg); err != nil {
		logger.Fatal("consumer stopped with error", zap.Error(err))
	}
}
