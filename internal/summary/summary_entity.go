package summary

import (
	"time"

	"github.com/google/uuid"
)

// DailySummary is a read model folded from attendance_recorded events, one
// row per employee-day.
type DailySummary struct {
	EmployeeID     uuid.UUID  `gorm:"column:employee_id;type:uuid;primaryKey"`
	AttendanceDate time.Time  `gorm:"column:attendance_date;type:date;primaryKey"`
	EmployeeName   string     `gorm:"column:employee_name;type:varchar(150)"`
	FirstCheckIn   *time.Time `gorm:"column:first_check_in;type:timestamptz"`
	LastCheckOut   *time.Time `gorm:"column:last_check_out;type:timestamptz"`
	CheckInStatus  string     `gorm:"column:check_in_status;type:varchar(20)"`
	EventCount     int        `gorm:"column:event_count;not null;default:0"`
	LastSequence   int        `gorm:"column:last_sequence;not null;default:0"`
	UpdatedAt      time.Time  `gorm:"column:updated_at"`
}

func (DailySummary) TableName() string {
	return "attendance_daily_summaries"
}
