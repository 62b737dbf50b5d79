package reports

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xuri/excelize/v2"

	"attendgate.com/attendgate/core"
	"attendgate.com/attendgate/rtdb/memory"
)

func TestDailyWorkbook(t *testing.T) {
	store := memory.New()
	store.Seed("attendance/2025-06-02/emp_001", core.AttendanceRecord{
		IdentityID:  "emp_001",
		Name:        "Budi",
		Department:  "Operations",
		Plate:       "PBL666",
		Date:        "2025-06-02",
		Checkin:     "08:10:00",
		Shift:       "A",
		Punctuality: core.Punctual,
		Checkout:    "17:20:00",
		Status:      core.StatusComplete,
		WorkedHours: "9 hour 10 min",
	})
	store.Seed("attendance/2025-06-02/emp_002", core.AttendanceRecord{
		IdentityID:  "emp_002",
		Name:        "Sari",
		Date:        "2025-06-02",
		Checkin:     "08:40:00",
		Shift:       "A",
		Punctuality: core.Late,
		Status:      core.StatusCheckedIn,
		WorkedHours: "0 hour 0 min",
	})

	buf, found, err := DailyWorkbook(context.Background(), store, "2025-06-02")
	assert.NoError(t, err)
	assert.True(t, found)

	f, err := excelize.OpenReader(buf)
	assert.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Attendance 2025-06-02")
	assert.NoError(t, err)
	if assert.Len(t, rows, 3) {
		assert.Equal(t, dailyHeaders, rows[0])
		// Sorted by check-in time.
		assert.Equal(t, "emp_001", rows[1][0])
		assert.Equal(t, "Budi", rows[1][1])
		assert.Equal(t, "9 hour 10 min", rows[1][8])
		assert.Equal(t, "emp_002", rows[2][0])
		assert.Equal(t, core.StatusCheckedIn, rows[2][9])
	}
}

func TestDailyWorkbookEmptyDay(t *testing.T) {
	store := memory.New()

	buf, found, err := DailyWorkbook(context.Background(), store, "2025-06-03")
	assert.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, buf)
}
