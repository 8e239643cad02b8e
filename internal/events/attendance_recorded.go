package events

import "time"

const (
	AttendanceRecordedTopic     = "hr.attendance.recorded.v1"
	AttendanceRecordedEventType = "attendance_recorded"
)

type AttendanceRecordedEvent struct {
	EventType      string    `json:"event_type"`
	RequestID      string    `json:"request_id,omitempty"`
	AttendanceID   string    `json:"attendance_id"`
	EmployeeID     string    `json:"employee_id"`
	EmployeeName   string    `json:"employee_name"`
	AttendanceDate string    `json:"attendance_date"`
	Sequence       int       `json:"sequence"`
	Type           string    `json:"type"`
	Status         string    `json:"status"`
	Confidence     float64   `json:"confidence"`
	RecordedAt     time.Time `json:"recorded_at"`
	OccurredAt     time.Time `json:"occurred_at"`
}
