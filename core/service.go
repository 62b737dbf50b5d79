package core

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// snapshotHistory is how many recent results the service keeps for the
// status endpoint.
const snapshotHistory = 5

// Snapshot is one remembered processing result.
type Snapshot struct {
	Time    string  `json:"time"`
	Key     string  `json:"key"`
	Kind    string  `json:"kind"`
	Outcome Outcome `json:"outcome"`
}

// Service owns every piece of shared mutable state in the event path:
// the suppression cache, the last result and the snapshot history. One
// instance is constructed at process start and shared by all requests.
//
// Archiver, Recorder and Notifier are optional collaborators; when nil
// the corresponding side effect is skipped.
type Service struct {
	store       Store
	suppression *SuppressionCache
	resolver    *Resolver
	ledger      *Ledger

	Archiver Archiver
	Recorder Recorder
	Notifier Notifier

	now func() time.Time

	mu         sync.Mutex
	lastResult *ProcessResult
	snapshots  []Snapshot
}

func NewService(store Store, schedule ShiftSchedule, window time.Duration) *Service {
	return &Service{
		store:       store,
		suppression: NewSuppressionCache(window),
		resolver:    NewResolver(store),
		ledger:      NewLedger(store, schedule),
		now:         time.Now,
	}
}

// ProcessPlate runs one plate recognition through the admission cache,
// the resolver and the ledger. at may be zero for "now"; image, when
// present, is archived for registered identities only.
func (s *Service) ProcessPlate(ctx context.Context, raw string, confidence float64, image []byte, at time.Time) (*ProcessResult, error) {
	if at.IsZero() {
		at = s.now()
	}
	ev := RecognitionEvent{
		ID:            uuid.NewString(),
		Kind:          KindPlate,
		RawKey:        raw,
		NormalizedKey: NormalizeKey(raw),
		OccurredAt:    at,
		Confidence:    confidence,
	}
	return s.process(ctx, ev, image)
}

// ProcessCredential runs one credential tap. Credential ids are matched
// trimmed and uppercased.
func (s *Service) ProcessCredential(ctx context.Context, rawID string, at time.Time) (*ProcessResult, error) {
	if at.IsZero() {
		at = s.now()
	}
	ev := RecognitionEvent{
		ID:            uuid.NewString(),
		Kind:          KindCredential,
		RawKey:        rawID,
		NormalizedKey: strings.ToUpper(strings.TrimSpace(rawID)),
		OccurredAt:    at,
	}
	return s.process(ctx, ev, nil)
}

func (s *Service) process(ctx context.Context, ev RecognitionEvent, image []byte) (*ProcessResult, error) {
	result := &ProcessResult{
		Kind: ev.Kind,
		Key:  ev.NormalizedKey,
		Time: ev.OccurredAt.Format(TimestampLayout),
	}

	// Too little signal to be a real key: no cache interaction at all.
	if len(ev.NormalizedKey) < MinKeyLength {
		result.Outcome = OutcomeNoKey
		s.remember(ev, result)
		return result, nil
	}

	adm := s.suppression.Admit(ev.NormalizedKey, ev.OccurredAt)
	if !adm.Admitted {
		result.Outcome = OutcomeRejected
		result.RejectCount = adm.RejectedCount
		result.WaitSeconds = adm.Wait.Seconds()
		s.audit(ctx, ev, result)
		s.remember(ev, result)
		return result, nil
	}

	identity, err := s.resolve(ctx, ev)
	if err != nil {
		s.reportStoreFailure("resolve", err)
		return nil, err
	}
	if identity == nil {
		// Unregistered keys keep their protection window; they just
		// produce no ledger write and no archival.
		result.Outcome = OutcomeUnregistered
		s.audit(ctx, ev, result)
		s.remember(ev, result)
		return result, nil
	}
	result.Registered = true
	result.Identity = identity

	if s.Archiver != nil && len(image) > 0 {
		key, err := s.Archiver.Archive(ctx, image, identity.IdentityID, ev.NormalizedKey, ev.OccurredAt)
		if err != nil {
			log.Printf("[service] archive failed for %s: %v", ev.NormalizedKey, err)
		} else {
			result.ArchivedKey = key
		}
	}

	rec, outcome, err := s.ledger.Record(ctx, ev, identity)
	if err != nil {
		s.reportStoreFailure("ledger", err)
		return nil, err
	}
	result.Outcome = outcome
	result.Record = rec

	if outcome == OutcomeCheckedIn && rec.Punctuality == Late && s.Notifier != nil {
		if err := s.Notifier.LateArrival(rec.Name, rec.Shift, rec.Checkin); err != nil {
			log.Printf("[service] late-arrival notification failed: %v", err)
		}
	}

	s.audit(ctx, ev, result)
	s.remember(ev, result)
	return result, nil
}

func (s *Service) resolve(ctx context.Context, ev RecognitionEvent) (*Identity, error) {
	if ev.Kind == KindCredential {
		return s.resolver.ResolveByCredential(ctx, ev.NormalizedKey)
	}
	identity, _, err := s.resolver.ResolveByPlate(ctx, ev.NormalizedKey)
	return identity, err
}

// DebugResolvePlate runs the matcher chain and reports which matcher
// produced the hit.
func (s *Service) DebugResolvePlate(ctx context.Context, raw string) (*Identity, string, error) {
	return s.resolver.ResolveByPlate(ctx, NormalizeKey(raw))
}

func (s *Service) audit(ctx context.Context, ev RecognitionEvent, result *ProcessResult) {
	if s.Recorder == nil {
		return
	}
	entry := EventLogEntry{
		EventID:       ev.ID,
		Kind:          ev.Kind,
		RawKey:        ev.RawKey,
		NormalizedKey: ev.NormalizedKey,
		Outcome:       result.Outcome,
		OccurredAt:    ev.OccurredAt,
		Confidence:    ev.Confidence,
	}
	if result.Identity != nil {
		entry.IdentityID = result.Identity.IdentityID
		entry.Name = result.Identity.Name
	}
	if err := s.Recorder.Record(ctx, entry); err != nil {
		log.Printf("[service] audit write failed for %s: %v", ev.ID, err)
	}
}

func (s *Service) remember(ev RecognitionEvent, result *ProcessResult) {
	snap := Snapshot{
		Time:    ev.OccurredAt.Format(TimestampLayout),
		Key:     ev.NormalizedKey,
		Kind:    string(ev.Kind),
		Outcome: result.Outcome,
	}
	if result.Outcome == OutcomeRejected {
		snap.Key = "REJECTED_" + snap.Key
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastResult = result
	s.snapshots = append([]Snapshot{snap}, s.snapshots...)
	if len(s.snapshots) > snapshotHistory {
		s.snapshots = s.snapshots[:snapshotHistory]
	}
}

func (s *Service) reportStoreFailure(op string, err error) {
	log.Printf("[service] %s: store failure: %v", op, err)
	if s.Notifier != nil {
		if nerr := s.Notifier.StoreUnavailable(op, err); nerr != nil {
			log.Printf("[service] store-failure notification failed: %v", nerr)
		}
	}
}

// LastResult returns the most recent processing result, or nil before
// the first event.
func (s *Service) LastResult() *ProcessResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastResult
}

// Snapshots returns the recent-result history, newest first.
func (s *Service) Snapshots() []Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Snapshot, len(s.snapshots))
	copy(out, s.snapshots)
	return out
}

// SuppressionStatus lists currently protected keys.
func (s *Service) SuppressionStatus() []ProtectedKey {
	return s.suppression.Snapshot(s.now())
}

// SuppressionWindow reports the configured protection window.
func (s *Service) SuppressionWindow() time.Duration {
	return s.suppression.Window()
}

// ClearSuppression drops all protection entries and returns how many
// were removed.
func (s *Service) ClearSuppression() int {
	return s.suppression.Clear()
}

// Latest reads a latest-event pointer from the store.
func (s *Service) Latest(ctx context.Context, kind EventKind) (*LatestEvent, error) {
	path := LatestCredentialPath
	if kind == KindPlate {
		path = LatestPlatePath
	}
	var latest LatestEvent
	found, err := s.store.Get(ctx, path, &latest)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &latest, nil
}
