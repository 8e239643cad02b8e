package summary

import "time"

type SummaryResponse struct {
	EmployeeID     string  `json:"employee_id"`
	EmployeeName   string  `json:"employee_name"`
	AttendanceDate string  `json:"attendance_date"`
	FirstCheckIn   *string `json:"first_check_in,omitempty"`
	LastCheckOut   *string `json:"last_check_out,omitempty"`
	CheckInStatus  string  `json:"check_in_status,omitempty"`
	EventCount     int     `json:"event_count"`
}

type ListSummaryRequest struct {
	Date       string `form:"date" binding:"omitempty,datetime=2006-01-02"`
	EmployeeID string `form:"employee_id" binding:"omitempty,uuid"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

func mapToResponse(s DailySummary) SummaryResponse {
	resp := SummaryResponse{
		EmployeeID:     s.EmployeeID.String(),
		EmployeeName:   s.EmployeeName,
		AttendanceDate: s.AttendanceDate.Format(dateLayout),
		CheckInStatus:  s.CheckInStatus,
		EventCount:     s.EventCount,
	}
	if s.FirstCheckIn != nil {
		v := s.FirstCheckIn.Format(time.RFC3339)
		resp.FirstCheckIn = &v
	}
	if s.LastCheckOut != nil {
		v := s.LastCheckOut.Format(time.RFC3339)
		resp.LastCheckOut = &v
	}
	return resp
}
