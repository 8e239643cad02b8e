package app

import (
	"face-attendance/internal/config"
	"face-attendance/internal/shared/apperror"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Setup is the common process preamble: optional .env, typed config, the
// global zap logger and validator messages. Callers own logger.Sync.
func Setup() (*config.Config, *zap.Logger, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	logger, err := zap.NewDevelopment()
	if cfg.IsProduction() {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, nil, err
	}
	zap.ReplaceGlobals(logger)

	apperror.Init()
	return cfg, logger, nil
}
