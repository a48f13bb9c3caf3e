package reports

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	summarySheet = "Summary"
	gridSheet    = "Grid"
)

var markLabels = map[AttendanceMark]string{
	AttendanceMarkPresent: "P",
	AttendanceMarkAbsent:  "A",
	AttendanceMarkBenched: "B",
	AttendanceMarkNone:    "",
}

// BuildAttendanceWorkbook lays the report out on two sheets: per character
// totals, and a character x raid grid of marks.
func BuildAttendanceWorkbook(report *TeamAttendanceReport) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(gridSheet); err != nil {
		return nil, err
	}

	// Add headers
	headers := []string{"Character", "Class", "Raids", "Present", "Absent", "Benched", "Attendance Rate"}
	if err := f.SetSheetRow(summarySheet, "A1", &headers); err != nil {
		return nil, err
	}

	// Add data
	for i, c := range report.Characters {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		rate, _ := c.AttendanceRate.Float64()
		row := []interface{}{c.CharacterName, c.Class, c.RaidCount, c.PresentCount, c.AbsentCount, c.BenchedCount, rate}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return nil, err
		}
	}
	if len(report.Characters) > 0 {
		style, err := f.NewStyle(&excelize.Style{NumFmt: 10})
		if err != nil {
			return nil, err
		}
		last := fmt.Sprintf("G%d", len(report.Characters)+1)
		if err := f.SetCellStyle(summarySheet, "G2", last, style); err != nil {
			return nil, err
		}
	}

	gridHeader := []interface{}{"Character"}
	for _, raid := range report.Raids {
		gridHeader = append(gridHeader, raid.ScheduledAt.Format("2006-01-02"))
	}
	if err := f.SetSheetRow(gridSheet, "A1", &gridHeader); err != nil {
		return nil, err
	}
	for i, c := range report.Characters {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []interface{}{c.CharacterName}
		for _, mark := range c.Marks {
			row = append(row, markLabels[mark])
		}
		if err := f.SetSheetRow(gridSheet, cell, &row); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func WriteAttendanceExcel(w io.Writer, report *TeamAttendanceReport) error {
	f, err := BuildAttendanceWorkbook(report)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}
