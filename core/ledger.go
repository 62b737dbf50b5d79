package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

// casAttempts bounds the compare-and-set retry loop; two events for the
// same identity in the same instant should settle on the second read.
const casAttempts = 3

// Ledger runs the per-identity, per-day attendance state machine against
// the external store. The first admitted event of a day checks an
// identity in; every later one overwrites the checkout fields, with no
// terminal state.
type Ledger struct {
	store    Store
	schedule ShiftSchedule
}

func NewLedger(store Store, schedule ShiftSchedule) *Ledger {
	return &Ledger{store: store, schedule: schedule}
}

// Record applies one admitted, resolved event to the ledger and updates
// the latest-event pointer. The read-decide-write sequence runs as a
// compare-and-set keyed by (date, identityId) so concurrent events for
// the same identity cannot lose updates.
func (l *Ledger) Record(ctx context.Context, ev RecognitionEvent, identity *Identity) (*AttendanceRecord, Outcome, error) {
	date := ev.OccurredAt.Format(DateLayout)
	path := "attendance/" + date + "/" + identity.IdentityID

	for attempt := 0; attempt < casAttempts; attempt++ {
		var existing AttendanceRecord
		found, etag, err := l.store.GetWithETag(ctx, path, &existing)
		if err != nil {
			return nil, "", err
		}

		var rec AttendanceRecord
		var outcome Outcome
		if !found {
			rec, err = l.buildCheckin(ev, identity, date)
			outcome = OutcomeCheckedIn
		} else {
			rec, err = l.applyCheckout(existing, ev, date)
			outcome = OutcomeCheckedOut
		}
		if err != nil {
			return nil, "", err
		}

		err = l.store.SetIfMatch(ctx, path, rec, etag)
		if errors.Is(err, ErrConflict) {
			continue
		}
		if err != nil {
			return nil, "", err
		}

		l.writeLatest(ctx, ev, identity, date)
		return &rec, outcome, nil
	}
	return nil, "", fmt.Errorf("attendance update %s: %w", path, ErrConflict)
}

func (l *Ledger) buildCheckin(ev RecognitionEvent, identity *Identity, date string) (AttendanceRecord, error) {
	shift, punctuality, err := l.schedule.ShiftAndPunctuality(ev.OccurredAt)
	if err != nil {
		return AttendanceRecord{}, err
	}

	plate := identity.Plate
	if ev.Kind == KindPlate {
		plate = ev.NormalizedKey
	}

	return AttendanceRecord{
		IdentityID:    identity.IdentityID,
		Name:          identity.Name,
		Department:    identity.Department,
		Plate:         plate,
		Date:          date,
		Checkin:       ev.OccurredAt.Format(TimeLayout),
		CheckinMethod: string(ev.Kind),
		CheckinValue:  ev.NormalizedKey,
		Shift:         shift,
		Punctuality:   punctuality,
		Status:        StatusCheckedIn,
		WorkedHours:   "0 hour 0 min",
		Timestamp:     ev.OccurredAt.Format(TimestampLayout),
	}, nil
}

func (l *Ledger) applyCheckout(rec AttendanceRecord, ev RecognitionEvent, date string) (AttendanceRecord, error) {
	checkin, err := time.ParseInLocation(TimestampLayout, date+" "+rec.Checkin, ev.OccurredAt.Location())
	if err != nil {
		// Malformed stored check-in: assume one hour before this event.
		log.Printf("[ledger] unparseable checkin %q for %s on %s, assuming checkout-1h", rec.Checkin, rec.IdentityID, date)
		checkin = ev.OccurredAt.Add(-time.Hour)
	}

	checkout := ev.OccurredAt
	if checkout.Before(checkin) {
		// Shift crossed midnight.
		checkout = checkout.Add(24 * time.Hour)
	}

	delta := checkout.Sub(checkin)
	worked := fmt.Sprintf("%d hour %d min", int(delta.Hours()), int(delta.Minutes())%60)

	status := StatusIncomplete
	if delta.Hours() >= l.schedule.MinimumHours(ev.OccurredAt) {
		status = StatusComplete
	}

	if ev.Kind == KindPlate && rec.CheckinMethod == string(KindPlate) && rec.CheckinValue != ev.NormalizedKey {
		log.Printf("[ledger] %s changed vehicle: %s -> %s", rec.IdentityID, rec.CheckinValue, ev.NormalizedKey)
	} else if string(ev.Kind) != rec.CheckinMethod {
		log.Printf("[ledger] %s changed method: %s -> %s", rec.IdentityID, rec.CheckinMethod, ev.Kind)
	}

	rec.Checkout = ev.OccurredAt.Format(TimeLayout)
	rec.CheckoutMethod = string(ev.Kind)
	rec.CheckoutValue = ev.NormalizedKey
	rec.WorkedHours = worked
	rec.Status = status
	rec.Timestamp = ev.OccurredAt.Format(TimestampLayout)
	if rec.Punctuality == "" {
		// Punctuality is decided at check-in; recompute only if the
		// stored record predates the field.
		if _, p, err := l.schedule.ShiftAndPunctuality(ev.OccurredAt); err == nil {
			rec.Punctuality = p
		}
	}
	if ev.Kind == KindPlate {
		rec.Plate = ev.NormalizedKey
	}
	return rec, nil
}

// writeLatest refreshes the per-method latest-event pointer. The pointer
// is informational only, so a failed write is logged and swallowed.
func (l *Ledger) writeLatest(ctx context.Context, ev RecognitionEvent, identity *Identity, date string) {
	latest := LatestEvent{
		UID:        ev.NormalizedKey,
		Name:       identity.Name,
		Date:       date,
		Time:       ev.OccurredAt.Format(TimeLayout),
		Timestamp:  ev.OccurredAt.Format(TimestampLayout),
		Method:     string(ev.Kind),
		Registered: true,
	}
	path := LatestCredentialPath
	if ev.Kind == KindPlate {
		latest.Plate = ev.NormalizedKey
		path = LatestPlatePath
	} else {
		latest.Credential = ev.NormalizedKey
	}
	if err := l.store.Set(ctx, path, latest); err != nil {
		log.Printf("[ledger] latest pointer write failed: %v", err)
	}
}

const (
	LatestPlatePath      = "latestPlateEvent"
	LatestCredentialPath = "latestCredentialEvent"
)
