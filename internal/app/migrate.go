package app

import (
	"face-attendance/internal/attendance"
	"face-attendance/internal/employee"
	"face-attendance/internal/messaging/kafka"
	"face-attendance/internal/summary"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Migrate creates the tables this service needs. employees is owned by the
// HR system; it is migrated here only so a fresh database is usable.
func Migrate(db *gorm.DB) error {
	zap.L().Named("app.migrate").Info("running auto migration")
	return db.AutoMigrate(
		&employee.Employee{},
		&attendance.Attendance{},
		&kafka.OutboxEvent{},
		&summary.DailySummary{},
	)
}
