package attendance

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventCheckIn  EventType = "CHECK_IN"
	EventCheckOut EventType = "CHECK_OUT"
)

type Timeliness string

const (
	StatusOnTime Timeliness = "ON_TIME"
	StatusLate   Timeliness = "LATE"
	StatusNone   Timeliness = "NONE"
)

// Attendance is one append-only ledger row. Rows are never updated; the
// sequence orders events within an employee-day and backs the uniqueness
// guard against concurrent writers.
type Attendance struct {
	ID             uuid.UUID    `gorm:"column:id;type:uuid;primaryKey"`
	EmployeeID     uuid.UUID    `gorm:"column:employee_id;type:uuid;not null;uniqueIndex:uq_attendance_employee_day_seq,priority:1"`
	AttendanceDate time.Time    `gorm:"column:attendance_date;type:date;not null;uniqueIndex:uq_attendance_employee_day_seq,priority:2;index"`
	Sequence       int          `gorm:"column:sequence;not null;uniqueIndex:uq_attendance_employee_day_seq,priority:3"`
	EventType      EventType    `gorm:"column:event_type;type:varchar(20);not null"`
	Status         Timeliness   `gorm:"column:status;type:varchar(20);not null"`
	Confidence     float64      `gorm:"column:confidence;not null"`
	PersonName     string       `gorm:"column:person_name;type:varchar(150)"`
	RecordedAt     time.Time    `gorm:"column:recorded_at;type:timestamptz;not null;index"`
	CreatedAt      time.Time    `gorm:"column:created_at"`
	Employee       *EmployeeRef `gorm:"foreignKey:EmployeeID;references:ID"`
}

func (Attendance) TableName() string {
	return "attendance_events"
}

type EmployeeRef struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	FullName string    `gorm:"column:full_name"`
}

func (EmployeeRef) TableName() string {
	return "employees"
}
