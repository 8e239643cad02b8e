package app

import (
	"face-attendance/internal/attendance"
	"face-attendance/internal/audit"
	"face-attendance/internal/config"
	"face-attendance/internal/employee"
	"face-attendance/internal/messaging/kafka"
	"face-attendance/internal/recognition"
	"face-attendance/internal/summary"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	cfg *config.Config,
	gormDB *gorm.DB,
	rdb *redis.Client,
	auditLogger audit.Logger,
) error {
	logger := zap.L()

	policy, err := attendance.NewPolicy(cfg.Attendance)
	if err != nil {
		return err
	}

	// --- Repositories ---
	attendanceRepo := attendance.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(gormDB)
	summaryRepo := summary.NewRepository(gormDB)

	// --- Pipeline components ---
	recognizer := recognition.NewClient(recognition.Config{
		BaseURL:     cfg.Recognition.BaseURL,
		Path:        cfg.Recognition.Path,
		Timeout:     cfg.Recognition.Timeout,
		APIKey:      cfg.Recognition.APIKey,
		BearerToken: cfg.Recognition.BearerToken,
		Threshold:   cfg.Recognition.Threshold,
	}, recognition.WithLogger(logger))
	resolver := employee.NewResolver(employeeRepo, logger)
	locker := attendance.NewLocker(rdb, cfg.Attendance.LockTTL, cfg.Attendance.LockWait, logger)
	ledger := attendance.NewLedger(attendanceRepo, outboxRepo, policy, attendance.WithLedgerLogger(logger))

	// --- Services ---
	attendanceService := attendance.NewService(attendance.ServiceDeps{
		Recognizer: recognizer,
		Resolver:   resolver,
		Locker:     locker,
		Ledger:     ledger,
		Repo:       attendanceRepo,
		Policy:     policy,
		Audit:      auditLogger,
	}, logger)
	summaryService := summary.NewService(summaryRepo, logger)

	// --- Handlers ---
	attendanceHandler := attendance.NewHandler(attendanceService, cfg.Attendance.MaxImageBytes, logger)
	summaryHandler := summary.NewHandler(summaryService)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		attendance.RegisterRoutes(api, attendanceHandler, attendance.RouteConfig{
			JWTSecret:  cfg.JWTSecret,
			KioskRPS:   cfg.HTTP.KioskRPS,
			KioskBurst: cfg.HTTP.KioskBurst,
		}, rdb)
		summary.RegisterRoutes(api, summaryHandler, cfg.JWTSecret)
	}

	return nil
}
