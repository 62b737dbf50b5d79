package core

import (
	"context"
	"errors"
	"time"
)

// ErrStoreUnavailable marks transport or server failures talking to the
// external store, as opposed to a path that simply has no value.
var ErrStoreUnavailable = errors.New("store unavailable")

// ErrConflict is returned by SetIfMatch when the path changed since the
// read that produced the etag.
var ErrConflict = errors.New("store write conflict")

// Store is the external hierarchical key-value store, addressed by
// slash-delimited paths such as "attendance/2025-12-09/user_PBL666".
//
// Get decodes the value at path into out and reports whether a value was
// present; an absent path is (false, nil), never an error. Set replaces
// the value at path, Update shallow-merges fields into it. GetWithETag and
// SetIfMatch form a compare-and-set pair for read-modify-write sequences.
type Store interface {
	Get(ctx context.Context, path string, out any) (bool, error)
	GetWithETag(ctx context.Context, path string, out any) (bool, string, error)
	Set(ctx context.Context, path string, value any) error
	SetIfMatch(ctx context.Context, path string, value any, etag string) error
	Update(ctx context.Context, path string, fields map[string]any) error
}

// Archiver stores a captured image for a resolved identity and returns
// the stored object key.
type Archiver interface {
	Archive(ctx context.Context, image []byte, identityID, key string, at time.Time) (string, error)
}

// Recorder appends one processed event to the local audit trail.
type Recorder interface {
	Record(ctx context.Context, entry EventLogEntry) error
}

// Notifier pushes informational alerts. Implementations must be safe to
// call concurrently; failures are logged by the caller, never propagated.
type Notifier interface {
	LateArrival(name, shift, at string) error
	StoreUnavailable(op string, err error) error
}
