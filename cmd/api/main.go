package main

import (
	"face-attendance/internal/app"
	"face-attendance/internal/audit"
	"face-attendance/internal/bootstrap"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, logger, err := app.Setup()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	auditLogger := audit.NewStdoutLogger(logger)

	if err := app.BuildApp(r, cfg, auditLogger); err != nil {
		logger.Fatal("build app failed", zap.Error(err))
	}

	err = bootstrap.StartHTTPServer(r, bootstrap.ServerConfig{
		Port:         cfg.HTTP.Port,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}, auditLogger)
	if err != nil {
		logger.Fatal("http server failed", zap.Error(err))
	}
}
