package core

import (
	"sort"
	"sync"
	"time"
)

// DefaultSuppressionWindow is how long an admitted key is protected
// against re-processing.
const DefaultSuppressionWindow = 30 * time.Second

// Admission is the outcome of one Admit call. When rejected, Wait is the
// remaining protection time and RejectedCount the running tally of
// rejections since the last admission of the key.
type Admission struct {
	Admitted      bool
	Wait          time.Duration
	AdmittedCount uint64
	RejectedCount uint64
}

// ProtectedKey describes one currently protected cache entry, for the
// introspection endpoint.
type ProtectedKey struct {
	Key           string  `json:"key"`
	LastAdmitted  string  `json:"lastAdmitted"`
	SecondsAgo    float64 `json:"secondsAgo"`
	ProtectedFor  float64 `json:"protectedFor"`
	AdmittedCount uint64  `json:"admittedCount"`
	RejectedCount uint64  `json:"rejectedCount"`
}

type suppressionEntry struct {
	lastAdmittedAt time.Time
	admitted       uint64
	rejected       uint64
}

// SuppressionCache is the admission-control map that discards bursts of
// near-duplicate recognitions. It is a fixed-window limiter whose window
// restarts on every admission: an admitted key is protected for exactly
// the window from the admission instant.
//
// All methods are safe for concurrent use; eviction, lookup and update
// happen under one lock so two concurrent events for the same key can
// never both be admitted.
type SuppressionCache struct {
	mu      sync.Mutex
	window  time.Duration
	entries map[string]*suppressionEntry
}

func NewSuppressionCache(window time.Duration) *SuppressionCache {
	if window <= 0 {
		window = DefaultSuppressionWindow
	}
	return &SuppressionCache{
		window:  window,
		entries: make(map[string]*suppressionEntry),
	}
}

func (c *SuppressionCache) Window() time.Duration {
	return c.window
}

// Admit decides whether an event for key observed at now is processed or
// discarded. Expired entries are swept lazily on every call.
func (c *SuppressionCache) Admit(key string, now time.Time) Admission {
	c.mu.Lock()
	defer c.mu.Unlock()

	for k, e := range c.entries {
		if now.Sub(e.lastAdmittedAt) > c.window {
			delete(c.entries, k)
		}
	}

	if e, ok := c.entries[key]; ok {
		elapsed := now.Sub(e.lastAdmittedAt)
		if elapsed < c.window {
			e.rejected++
			return Admission{
				Admitted:      false,
				Wait:          c.window - elapsed,
				AdmittedCount: e.admitted,
				RejectedCount: e.rejected,
			}
		}
	}

	e, ok := c.entries[key]
	if !ok {
		e = &suppressionEntry{}
		c.entries[key] = e
	}
	e.lastAdmittedAt = now
	e.admitted++
	e.rejected = 0
	return Admission{Admitted: true, AdmittedCount: e.admitted}
}

// Snapshot lists every key still inside its protection window, most
// recently admitted first.
func (c *SuppressionCache) Snapshot(now time.Time) []ProtectedKey {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]ProtectedKey, 0, len(c.entries))
	for k, e := range c.entries {
		elapsed := now.Sub(e.lastAdmittedAt)
		if elapsed >= c.window {
			continue
		}
		keys = append(keys, ProtectedKey{
			Key:           k,
			LastAdmitted:  e.lastAdmittedAt.Format(TimestampLayout),
			SecondsAgo:    elapsed.Seconds(),
			ProtectedFor:  (c.window - elapsed).Seconds(),
			AdmittedCount: e.admitted,
			RejectedCount: e.rejected,
		})
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].SecondsAgo < keys[j].SecondsAgo
	})
	return keys
}

// Clear drops every entry and reports how many were removed.
func (c *SuppressionCache) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.entries)
	c.entries = make(map[string]*suppressionEntry)
	return n
}
