package attendance

import "time"

type Outcome string

const (
	OutcomeRecorded        Outcome = "RECORDED"
	OutcomeUnknownIdentity Outcome = "UNKNOWN_IDENTITY"
)

// RecordResult is the typed answer of one pipeline run. On failure Outcome
// carries the error code and the fields filled so far.
type RecordResult struct {
	Outcome    Outcome             `json:"outcome"`
	PersonName string              `json:"person_name,omitempty"`
	Confidence float64             `json:"confidence"`
	Convention string              `json:"convention,omitempty"`
	Employee   *EmployeeSummary    `json:"employee,omitempty"`
	Event      *AttendanceResponse `json:"event,omitempty"`
}

type EmployeeSummary struct {
	ID           string `json:"id"`
	FullName     string `json:"full_name"`
	EmployeeCode string `json:"employee_code,omitempty"`
}

type AttendanceResponse struct {
	ID             string  `json:"id"`
	EmployeeID     string  `json:"employee_id"`
	EmployeeName   string  `json:"employee_name,omitempty"`
	AttendanceDate string  `json:"attendance_date"`
	Sequence       int     `json:"sequence"`
	EventType      string  `json:"event_type"`
	Status         string  `json:"status"`
	Confidence     float64 `json:"confidence"`
	RecordedAt     string  `json:"recorded_at"`
}

type ListAttendanceRequest struct {
	StartDate  string `form:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate    string `form:"end_date" binding:"omitempty,datetime=2006-01-02"`
	EmployeeID string `form:"employee_id" binding:"omitempty,uuid"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

type HistoryRequest struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

func mapToResponse(a Attendance) AttendanceResponse {
	resp := AttendanceResponse{
		ID:             a.ID.String(),
		EmployeeID:     a.EmployeeID.String(),
		AttendanceDate: a.AttendanceDate.Format(dateLayout),
		Sequence:       a.Sequence,
		EventType:      string(a.EventType),
		Status:         string(a.Status),
		Confidence:     a.Confidence,
		RecordedAt:     a.RecordedAt.Format(time.RFC3339),
	}
	if a.Employee != nil {
		resp.EmployeeName = a.Employee.FullName
	}
	return resp
}
