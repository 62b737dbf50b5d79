// Package reports renders attendance data into spreadsheets for the
// HR export endpoint.
package reports

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"attendgate.com/attendgate/core"
	"attendgate.com/attendgate/utils"
)

var dailyHeaders = []string{
	"Identity", "Name", "Department", "Plate", "Shift", "Check-in",
	"Punctuality", "Checkout", "Worked Hours", "Status",
}

// DailyWorkbook builds an xlsx report of every attendance record for
// the given date (formatted 2006-01-02). The second return value is
// false when the day has no records at all.
func DailyWorkbook(ctx context.Context, store core.Store, date string) (*bytes.Buffer, bool, error) {
	var day map[string]core.AttendanceRecord
	found, err := store.Get(ctx, "attendance/"+date, &day)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load attendance for %s: %w", date, err)
	}
	if !found || len(day) == 0 {
		return nil, false, nil
	}

	records := make([]core.AttendanceRecord, 0, len(day))
	for _, rec := range day {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].Checkin != records[j].Checkin {
			return records[i].Checkin < records[j].Checkin
		}
		return records[i].IdentityID < records[j].IdentityID
	})

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Attendance " + date
	f.SetSheetName("Sheet1", sheet)

	for col, header := range dailyHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, false, err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, false, err
		}
	}

	lines := utils.Map(records, func(rec core.AttendanceRecord) []string {
		return []string{
			rec.IdentityID, rec.Name, rec.Department, rec.Plate, rec.Shift,
			rec.Checkin, rec.Punctuality, rec.Checkout, rec.WorkedHours, rec.Status,
		}
	})
	for row, values := range lines {
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, false, err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, false, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, false, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf, true, nil
}
