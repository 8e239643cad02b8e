package attendance_test

import (
	"bytes"
	"testing"

	"face-attendance/internal/attendance"

	"github.com/stretchr/testify/assert"
	"github.com/xuri/excelize/v2"
)

func TestWriteWorkbook(t *testing.T) {
	rows := []attendance.AttendanceResponse{
		{EmployeeName: "Somchai", AttendanceDate: "2025-03-14", Sequence: 1, EventType: "CHECK_IN", Status: "ON_TIME", Confidence: 0.92, RecordedAt: "2025-03-14T08:45:00+07:00"},
		{EmployeeID: "6f1c2a4e-8d55-4b7a-9a61-0c1d5e2f3a10", AttendanceDate: "2025-03-14", Sequence: 2, EventType: "CHECK_OUT", Status: "NONE", Confidence: 0.88, RecordedAt: "2025-03-14T17:30:00+07:00"},
	}

	var buf bytes.Buffer
	assert.NoError(t, attendance.WriteWorkbook(&buf, rows))

	f, err := excelize.OpenReader(&buf)
	if !assert.NoError(t, err) {
		return
	}
	defer f.Close()

	got, err := f.GetRows("Attendance Report")
	assert.NoError(t, err)
	if assert.Len(t, got, 3) {
		assert.Equal(t, []string{"No", "Employee", "Date", "Sequence", "Event", "Status", "Confidence", "Recorded At"}, got[0])
		assert.Equal(t, "Somchai", got[1][1])
		assert.Equal(t, "ON_TIME", got[1][5])
		// unnamed rows fall back to the employee id
		assert.Equal(t, "6f1c2a4e-8d55-4b7a-9a61-0c1d5e2f3a10", got[2][1])
		assert.Equal(t, "CHECK_OUT", got[2][4])
	}
}
