package attendance

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	exportSheet       = "Attendance Report"
	ExportContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var exportColumns = []struct {
	title string
	width float64
}{
	{"No", 6},
	{"Employee", 30},
	{"Date", 12},
	{"Sequence", 10},
	{"Event", 12},
	{"Status", 10},
	{"Confidence", 12},
	{"Recorded At", 28},
}

// WriteWorkbook streams rows as a single-sheet xlsx report.
func WriteWorkbook(w io.Writer, rows []AttendanceResponse) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return err
	}
	sw, err := f.NewStreamWriter(exportSheet)
	if err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	header := make([]any, len(exportColumns))
	for i, col := range exportColumns {
		if err := sw.SetColWidth(i+1, i+1, col.width); err != nil {
			return err
		}
		header[i] = excelize.Cell{StyleID: bold, Value: col.title}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	for i, r := range rows {
		name := r.EmployeeName
		if name == "" {
			name = r.EmployeeID
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		err = sw.SetRow(cell, []any{
			i + 1, name, r.AttendanceDate, r.Sequence, r.EventType, r.Status, r.Confidence, r.RecordedAt,
		})
		if err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return err
	}
	return f.Write(w)
}
