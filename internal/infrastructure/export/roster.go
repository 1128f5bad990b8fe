package export

import (
	"fmt"

	"course-marketplace/internal/domain"
	interfaces "course-marketplace/internal/interfaces/infrastructure"

	"github.com/xuri/excelize/v2"
)

const rosterSheet = "Roster"

var rosterHeader = []any{"Registration ID", "Student ID", "Full Name", "Email", "Phone", "Status", "Registered At"}

// ExcelRoster renders course registrations as an xlsx workbook.
type ExcelRoster struct{}

func NewExcelRoster() *ExcelRoster {
	return &ExcelRoster{}
}

func (ExcelRoster) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (ExcelRoster) Extension() string {
	return ".xlsx"
}

func (ExcelRoster) Export(course *domain.Course, rows []*domain.RegistrationWithStudent) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), rosterSheet); err != nil {
		return nil, err
	}

	title := fmt.Sprintf("%s (%d registrations)", course.Title, len(rows))
	if err := f.SetCellValue(rosterSheet, "A1", title); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(rosterSheet, "A2", &rosterHeader); err != nil {
		return nil, err
	}

	for i, row := range rows {
		values := []any{row.ID, row.StudentID, "", "", "", string(row.Status), row.CreatedAt.Format("2006-01-02 15:04:05")}
		if row.Student != nil {
			values[2] = row.Student.FullName
			values[3] = row.Student.Email
			values[4] = row.Student.Phone
		}
		cell, err := excelize.CoordinatesToCellName(1, i+3)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(rosterSheet, cell, &values); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render roster: %w", err)
	}
	return buf.Bytes(), nil
}

var _ interfaces.RosterExporter = ExcelRoster{}
