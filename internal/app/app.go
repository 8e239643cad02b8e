package app

import (
	"context"
	"net/http"
	"time"

	"face-attendance/internal/audit"
	"face-attendance/internal/config"
	"face-attendance/internal/middleware"
	"face-attendance/internal/shared/connection"
	"face-attendance/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func BuildApp(router *gin.Engine, cfg *config.Config, auditLogger audit.Logger) error {
	logger := zap.L().Named("app")

	// 1. Setup Infrastructure
	gormDB, err := connection.ConnectGORMWithRetry(cfg.Database)
	if err != nil {
		return err
	}

	redisClient, err := connection.ConnectRedisWithRetry(cfg.Redis, cfg.Database.MaxRetries)
	if err != nil {
		return err
	}
	if redisClient == nil {
		logger.Warn("REDIS_ADDR not set, using in-process locks and no idempotency replay")
	}

	if cfg.Database.AutoMigrate {
		if err := Migrate(gormDB); err != nil {
			return err
		}
	}

	router.Use(middleware.ContextLogger(zap.L()))
	router.GET("/healthz", healthHandler(gormDB, redisClient))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 2. Register Modules & Routes
	return registerModules(router, cfg, gormDB, redisClient, auditLogger)
}

func healthHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := map[string]string{"database": "ok"}
		healthy := true

		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			status["database"] = "down"
			healthy = false
		}
		if rdb != nil {
			status["redis"] = "ok"
			if err := rdb.Ping(ctx).Err(); err != nil {
				// the lease degrades to the database lock, so redis is not fatal
				status["redis"] = "degraded"
			}
		}

		code := http.StatusOK
		if !healthy {
			code = http.StatusServiceUnavailable
		}
		response.Success(c, code, status, nil)
	}
}
