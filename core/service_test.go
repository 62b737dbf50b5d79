package core_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"attendgate.com/attendgate/core"
	"attendgate.com/attendgate/rtdb/memory"
)

type recordingArchiver struct {
	calls int
	key   string
}

func (a *recordingArchiver) Archive(ctx context.Context, image []byte, identityID, key string, at time.Time) (string, error) {
	a.calls++
	a.key = at.Format(core.DateLayout) + "/" + identityID + "/" + key + ".jpg"
	return a.key, nil
}

type recordingRecorder struct {
	entries []core.EventLogEntry
}

func (r *recordingRecorder) Record(ctx context.Context, entry core.EventLogEntry) error {
	r.entries = append(r.entries, entry)
	return nil
}

type recordingNotifier struct {
	late   int
	outage int
}

func (n *recordingNotifier) LateArrival(name, shift, at string) error {
	n.late++
	return nil
}

func (n *recordingNotifier) StoreUnavailable(op string, err error) error {
	n.outage++
	return nil
}

func seededService(t *testing.T) (*core.Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	store.Seed("plates/PBL666", map[string]any{
		"identityId": "emp_001",
		"name":       "Budi",
		"department": "Operations",
	})
	store.Seed("credentialMap/04A2B9C1", "emp_001")
	store.Seed("users/emp_001", map[string]any{
		"identityId": "emp_001",
		"name":       "Budi",
	})
	return core.NewService(store, core.DefaultSchedule(), 30*time.Second), store
}

func TestProcessPlateLifecycle(t *testing.T) {
	service, _ := seededService(t)
	ctx := context.Background()
	monday := time.Date(2025, 6, 2, 8, 10, 0, 0, time.UTC)

	first, err := service.ProcessPlate(ctx, "pbl-666", 0.93, nil, monday)
	assert.NoError(t, err)
	assert.Equal(t, core.OutcomeCheckedIn, first.Outcome)
	assert.Equal(t, "PBL666", first.Key)
	assert.True(t, first.Registered)
	assert.Equal(t, "emp_001", first.Identity.IdentityID)

	// Same plate inside the window is discarded without a ledger write.
	second, err := service.ProcessPlate(ctx, "PBL666", 0.91, nil, monday.Add(5*time.Second))
	assert.NoError(t, err)
	assert.Equal(t, core.OutcomeRejected, second.Outcome)
	assert.Equal(t, uint64(1), second.RejectCount)
	assert.InDelta(t, 25.0, second.WaitSeconds, 0.001)

	// Past the window the same plate checks the identity out.
	third, err := service.ProcessPlate(ctx, "PBL666", 0.95, nil, monday.Add(31*time.Second))
	assert.NoError(t, err)
	assert.Equal(t, core.OutcomeCheckedOut, third.Outcome)
	assert.NotNil(t, third.Record)
	assert.Equal(t, "08:10:31", third.Record.Checkout)
}

func TestProcessPlateShortKey(t *testing.T) {
	service, _ := seededService(t)
	monday := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

	result, err := service.ProcessPlate(context.Background(), "-x", 0.2, nil, monday)
	assert.NoError(t, err)
	assert.Equal(t, core.OutcomeNoKey, result.Outcome)

	// Noise must not occupy a protection slot.
	assert.Empty(t, service.SuppressionStatus())
}

func TestProcessPlateUnregistered(t *testing.T) {
	service, store := seededService(t)
	ctx := context.Background()
	monday := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

	result, err := service.ProcessPlate(ctx, "ZZZ999", 0.9, nil, monday)
	assert.NoError(t, err)
	assert.Equal(t, core.OutcomeUnregistered, result.Outcome)
	assert.False(t, result.Registered)

	// Unregistered keys still hold their protection window.
	repeat, err := service.ProcessPlate(ctx, "ZZZ999", 0.9, nil, monday.Add(3*time.Second))
	assert.NoError(t, err)
	assert.Equal(t, core.OutcomeRejected, repeat.Outcome)

	var day map[string]core.AttendanceRecord
	found, err := store.Get(ctx, "attendance/2025-06-02", &day)
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestProcessPlateArchivesRegisteredOnly(t *testing.T) {
	service, _ := seededService(t)
	archiver := &recordingArchiver{}
	service.Archiver = archiver
	ctx := context.Background()
	monday := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

	result, err := service.ProcessPlate(ctx, "PBL666", 0.9, []byte{0xff, 0xd8}, monday)
	assert.NoError(t, err)
	assert.Equal(t, 1, archiver.calls)
	assert.Equal(t, archiver.key, result.ArchivedKey)

	_, err = service.ProcessPlate(ctx, "ZZZ999", 0.9, []byte{0xff, 0xd8}, monday)
	assert.NoError(t, err)
	assert.Equal(t, 1, archiver.calls)
}

func TestProcessCredential(t *testing.T) {
	service, _ := seededService(t)
	monday := time.Date(2025, 6, 2, 8, 5, 0, 0, time.UTC)

	result, err := service.ProcessCredential(context.Background(), " 04a2b9c1 ", monday)
	assert.NoError(t, err)
	assert.Equal(t, core.OutcomeCheckedIn, result.Outcome)
	assert.Equal(t, "04A2B9C1", result.Key)
	assert.Equal(t, "emp_001", result.Identity.IdentityID)
}

func TestProcessLateCheckinNotifies(t *testing.T) {
	service, _ := seededService(t)
	notifier := &recordingNotifier{}
	service.Notifier = notifier
	monday := time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC)

	result, err := service.ProcessPlate(context.Background(), "PBL666", 0.9, nil, monday)
	assert.NoError(t, err)
	assert.Equal(t, core.Late, result.Record.Punctuality)
	assert.Equal(t, 1, notifier.late)
}

func TestProcessStoreFailure(t *testing.T) {
	service, store := seededService(t)
	notifier := &recordingNotifier{}
	service.Notifier = notifier
	store.FailWith = core.ErrStoreUnavailable

	_, err := service.ProcessPlate(context.Background(), "PBL666", 0.9, nil, time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, core.ErrStoreUnavailable)
	assert.Equal(t, 1, notifier.outage)
}

func TestProcessAudits(t *testing.T) {
	service, _ := seededService(t)
	recorder := &recordingRecorder{}
	service.Recorder = recorder
	ctx := context.Background()
	monday := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

	_, err := service.ProcessPlate(ctx, "PBL666", 0.9, nil, monday)
	assert.NoError(t, err)
	_, err = service.ProcessPlate(ctx, "PBL666", 0.9, nil, monday.Add(2*time.Second))
	assert.NoError(t, err)

	if assert.Len(t, recorder.entries, 2) {
		assert.Equal(t, core.OutcomeCheckedIn, recorder.entries[0].Outcome)
		assert.Equal(t, "emp_001", recorder.entries[0].IdentityID)
		assert.Equal(t, core.OutcomeRejected, recorder.entries[1].Outcome)
	}
}

func TestSnapshotsNewestFirst(t *testing.T) {
	service, _ := seededService(t)
	ctx := context.Background()
	monday := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

	_, err := service.ProcessPlate(ctx, "PBL666", 0.9, nil, monday)
	assert.NoError(t, err)
	_, err = service.ProcessPlate(ctx, "PBL666", 0.9, nil, monday.Add(2*time.Second))
	assert.NoError(t, err)

	snaps := service.Snapshots()
	if assert.Len(t, snaps, 2) {
		assert.Equal(t, "REJECTED_PBL666", snaps[0].Key)
		assert.Equal(t, "PBL666", snaps[1].Key)
	}

	last := service.LastResult()
	if assert.NotNil(t, last) {
		assert.Equal(t, core.OutcomeRejected, last.Outcome)
	}
}

func TestClearSuppression(t *testing.T) {
	service, _ := seededService(t)
	ctx := context.Background()
	monday := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

	_, err := service.ProcessPlate(ctx, "PBL666", 0.9, nil, monday)
	assert.NoError(t, err)
	assert.Equal(t, 1, service.ClearSuppression())

	// With the window cleared the next event goes straight through.
	result, err := service.ProcessPlate(ctx, "PBL666", 0.9, nil, monday.Add(time.Second))
	assert.NoError(t, err)
	assert.Equal(t, core.OutcomeCheckedOut, result.Outcome)
}

func TestLatest(t *testing.T) {
	service, _ := seededService(t)
	ctx := context.Background()

	latest, err := service.Latest(ctx, core.KindPlate)
	assert.NoError(t, err)
	assert.Nil(t, latest)

	_, err = service.ProcessPlate(ctx, "PBL666", 0.9, nil, time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC))
	assert.NoError(t, err)

	latest, err = service.Latest(ctx, core.KindPlate)
	assert.NoError(t, err)
	if assert.NotNil(t, latest) {
		assert.Equal(t, "PBL666", latest.Plate)
		assert.Equal(t, "Budi", latest.Name)
	}
}
