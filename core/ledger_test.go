package core_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"attendgate.com/attendgate/core"
	"attendgate.com/attendgate/rtdb/memory"
)

var budi = &core.Identity{
	IdentityID: "emp_001",
	Name:       "Budi",
	Department: "Operations",
	Plate:      "PBL666",
}

func plateEvent(key string, at time.Time) core.RecognitionEvent {
	return core.RecognitionEvent{
		ID:            "ev-" + at.Format("150405"),
		Kind:          core.KindPlate,
		RawKey:        key,
		NormalizedKey: key,
		OccurredAt:    at,
	}
}

func TestLedgerCheckin(t *testing.T) {
	store := memory.New()
	ledger := core.NewLedger(store, core.DefaultSchedule())
	monday := time.Date(2025, 6, 2, 8, 10, 0, 0, time.UTC)

	rec, outcome, err := ledger.Record(context.Background(), plateEvent("PBL666", monday), budi)
	assert.NoError(t, err)
	assert.Equal(t, core.OutcomeCheckedIn, outcome)
	assert.Equal(t, "08:10:00", rec.Checkin)
	assert.Equal(t, "A", rec.Shift)
	assert.Equal(t, core.Punctual, rec.Punctuality)
	assert.Equal(t, core.StatusCheckedIn, rec.Status)
	assert.Equal(t, "0 hour 0 min", rec.WorkedHours)
	assert.Empty(t, rec.Checkout)

	var stored core.AttendanceRecord
	found, err := store.Get(context.Background(), "attendance/2025-06-02/emp_001", &stored)
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, *rec, stored)

	var latest core.LatestEvent
	found, err = store.Get(context.Background(), core.LatestPlatePath, &latest)
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "PBL666", latest.Plate)
}

func TestLedgerCheckout(t *testing.T) {
	store := memory.New()
	ledger := core.NewLedger(store, core.DefaultSchedule())
	ctx := context.Background()
	monday := time.Date(2025, 6, 2, 8, 10, 0, 0, time.UTC)

	_, _, err := ledger.Record(ctx, plateEvent("PBL666", monday), budi)
	assert.NoError(t, err)

	rec, outcome, err := ledger.Record(ctx, plateEvent("PBL666", monday.Add(9*time.Hour+10*time.Minute)), budi)
	assert.NoError(t, err)
	assert.Equal(t, core.OutcomeCheckedOut, outcome)
	assert.Equal(t, "17:20:00", rec.Checkout)
	assert.Equal(t, "9 hour 10 min", rec.WorkedHours)
	assert.Equal(t, core.StatusComplete, rec.Status)
	assert.Equal(t, core.Punctual, rec.Punctuality)
}

func TestLedgerLastCheckoutWins(t *testing.T) {
	store := memory.New()
	ledger := core.NewLedger(store, core.DefaultSchedule())
	ctx := context.Background()
	monday := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

	_, _, err := ledger.Record(ctx, plateEvent("PBL666", monday), budi)
	assert.NoError(t, err)
	_, _, err = ledger.Record(ctx, plateEvent("PBL666", monday.Add(4*time.Hour)), budi)
	assert.NoError(t, err)

	rec, outcome, err := ledger.Record(ctx, plateEvent("PBL666", monday.Add(9*time.Hour+30*time.Minute)), budi)
	assert.NoError(t, err)
	assert.Equal(t, core.OutcomeCheckedOut, outcome)
	assert.Equal(t, "17:30:00", rec.Checkout)
	assert.Equal(t, "9 hour 30 min", rec.WorkedHours)
	assert.Equal(t, "08:00:00", rec.Checkin)
}

func TestLedgerMinimumHoursByWeekday(t *testing.T) {
	tests := []struct {
		name     string
		day      time.Time
		worked   time.Duration
		expected string
	}{
		{
			name:     "Six and a half hours on a full day",
			day:      time.Date(2025, 6, 3, 8, 0, 0, 0, time.UTC),
			worked:   6*time.Hour + 30*time.Minute,
			expected: core.StatusIncomplete,
		},
		{
			name:     "Four and a half hours on the short day",
			day:      time.Date(2025, 6, 6, 8, 0, 0, 0, time.UTC),
			worked:   4*time.Hour + 30*time.Minute,
			expected: core.StatusComplete,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.New()
			ledger := core.NewLedger(store, core.DefaultSchedule())
			ctx := context.Background()

			_, _, err := ledger.Record(ctx, plateEvent("PBL666", tt.day), budi)
			assert.NoError(t, err)
			rec, _, err := ledger.Record(ctx, plateEvent("PBL666", tt.day.Add(tt.worked)), budi)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, rec.Status)
		})
	}
}

func TestLedgerOvernightWrap(t *testing.T) {
	store := memory.New()
	ledger := core.NewLedger(store, core.DefaultSchedule())
	ctx := context.Background()

	store.Seed("attendance/2025-06-02/emp_001", core.AttendanceRecord{
		IdentityID:    "emp_001",
		Name:          "Budi",
		Date:          "2025-06-02",
		Checkin:       "23:50:00",
		CheckinMethod: string(core.KindPlate),
		CheckinValue:  "PBL666",
		Shift:         "B",
		Punctuality:   core.Late,
		Status:        core.StatusCheckedIn,
	})

	checkout := time.Date(2025, 6, 2, 0, 10, 0, 0, time.UTC)
	rec, outcome, err := ledger.Record(ctx, plateEvent("PBL666", checkout), budi)
	assert.NoError(t, err)
	assert.Equal(t, core.OutcomeCheckedOut, outcome)
	assert.Equal(t, "0 hour 20 min", rec.WorkedHours)
	assert.Equal(t, core.Late, rec.Punctuality)
}

func TestLedgerUnparseableCheckinFallback(t *testing.T) {
	store := memory.New()
	ledger := core.NewLedger(store, core.DefaultSchedule())
	ctx := context.Background()

	store.Seed("attendance/2025-06-02/emp_001", core.AttendanceRecord{
		IdentityID:    "emp_001",
		Date:          "2025-06-02",
		Checkin:       "not-a-time",
		CheckinMethod: string(core.KindPlate),
		Status:        core.StatusCheckedIn,
		Punctuality:   core.Punctual,
	})

	checkout := time.Date(2025, 6, 2, 17, 0, 0, 0, time.UTC)
	rec, _, err := ledger.Record(ctx, plateEvent("PBL666", checkout), budi)
	assert.NoError(t, err)
	assert.Equal(t, "1 hour 0 min", rec.WorkedHours)
}

func TestLedgerStoreFailure(t *testing.T) {
	store := memory.New()
	store.FailWith = core.ErrStoreUnavailable
	ledger := core.NewLedger(store, core.DefaultSchedule())

	_, _, err := ledger.Record(context.Background(), plateEvent("PBL666", time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)), budi)
	assert.ErrorIs(t, err, core.ErrStoreUnavailable)
}
