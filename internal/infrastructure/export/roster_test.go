package export

import (
	"bytes"
	"testing"
	"time"

	"course-marketplace/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExcelRoster_Export(t *testing.T) {
	course := &domain.Course{ID: domain.NewID(), Title: "Pottery"}
	registeredAt := time.Date(2025, 5, 4, 9, 30, 0, 0, time.UTC)

	rows := []*domain.RegistrationWithStudent{
		{
			Registration: domain.Registration{ID: "r1", StudentID: "s1", Status: domain.RegistrationPaid, CreatedAt: registeredAt},
			Student:      &domain.User{FullName: "Noa Levi", Email: "noa@example.com", Phone: "0521234567"},
		},
		{
			// the student account was removed
			Registration: domain.Registration{ID: "r2", StudentID: "s2", Status: domain.RegistrationPending, CreatedAt: registeredAt},
		},
	}

	data, err := NewExcelRoster().Export(course, rows)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	sheet, err := f.GetRows(rosterSheet)
	require.NoError(t, err)
	require.Len(t, sheet, 4)

	assert.Equal(t, "Pottery (2 registrations)", sheet[0][0])
	assert.Equal(t, "Registration ID", sheet[1][0])
	assert.Equal(t, []string{"r1", "s1", "Noa Levi", "noa@example.com", "0521234567", "Paid", "2025-05-04 09:30:00"}, sheet[2])
	assert.Equal(t, "r2", sheet[3][0])
	assert.Equal(t, "Pending", sheet[3][5])
}

func TestExcelRoster_EmptyCourse(t *testing.T) {
	data, err := NewExcelRoster().Export(&domain.Course{Title: "Empty"}, nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue(rosterSheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Empty (0 registrations)", title)
	assert.Equal(t, ".xlsx", NewExcelRoster().Extension())
}
