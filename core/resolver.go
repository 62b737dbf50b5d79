package core

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// plateFields are the alternate field names under which registrations
// have been seen to store a plate.
var plateFields = []string{
	"plate", "plateNumber", "car_plate", "vehicle_plate",
	"number_plate", "registration", "carNumber",
}

// PlateMatcher is one strategy for resolving a normalized plate key to a
// registered identity. A miss is (nil, nil); errors are reserved for
// store failures.
type PlateMatcher interface {
	Name() string
	TryMatch(ctx context.Context, key string) (*Identity, error)
}

// Resolver finds registered identities for recognized keys. Plate
// resolution runs an ordered matcher chain and stops at the first hit;
// credential resolution goes through the credential mapping with casing
// retries.
type Resolver struct {
	store    Store
	matchers []PlateMatcher
}

func NewResolver(store Store) *Resolver {
	return &Resolver{
		store: store,
		matchers: []PlateMatcher{
			exactIndexMatcher{store},
			normalizedIndexMatcher{store},
			spacedVariantMatcher{store},
			deepScanMatcher{store},
		},
	}
}

// ResolveByPlate returns the matched identity and the name of the
// matcher that found it, or (nil, "", nil) when no strategy matches.
func (r *Resolver) ResolveByPlate(ctx context.Context, key string) (*Identity, string, error) {
	for _, m := range r.matchers {
		id, err := m.TryMatch(ctx, key)
		if err != nil {
			return nil, "", fmt.Errorf("plate matcher %s: %w", m.Name(), err)
		}
		if id != nil {
			return id, m.Name(), nil
		}
	}
	return nil, "", nil
}

// ResolveByCredential looks up the credential mapping and then fetches
// the identity by id, tolerating inconsistent casing of the stored id.
// A found identity under a different casing is logged, not self-healed.
func (r *Resolver) ResolveByCredential(ctx context.Context, credentialID string) (*Identity, error) {
	var mapped string
	found, err := r.store.Get(ctx, "credentialMap/"+credentialID, &mapped)
	if err != nil {
		return nil, fmt.Errorf("credential mapping %s: %w", credentialID, err)
	}
	if !found || mapped == "" {
		return nil, nil
	}

	for _, candidate := range casingVariants(mapped) {
		var raw any
		found, err := r.store.Get(ctx, "users/"+candidate, &raw)
		if err != nil {
			return nil, fmt.Errorf("identity %s: %w", candidate, err)
		}
		rec, ok := raw.(map[string]any)
		if !found || !ok {
			continue
		}
		if candidate != mapped {
			log.Printf("[resolver] credential %s maps to %q but identity is stored as %q", credentialID, mapped, candidate)
		}
		id := identityFromRecord(rec, candidate)
		id.CredentialID = credentialID
		return id, nil
	}
	return nil, nil
}

// casingVariants returns the id verbatim, lowercased, uppercased and
// capitalized, deduplicated in that order.
func casingVariants(id string) []string {
	variants := []string{id, strings.ToLower(id), strings.ToUpper(id)}
	if len(id) > 0 {
		variants = append(variants, strings.ToUpper(id[:1])+strings.ToLower(id[1:]))
	}
	seen := make(map[string]struct{}, len(variants))
	out := variants[:0]
	for _, v := range variants {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// identityFromRecord maps a stored registration record onto an Identity,
// tolerating the field spellings found in the live data.
func identityFromRecord(rec map[string]any, fallbackID string) *Identity {
	id := &Identity{}
	id.IdentityID = firstString(rec, "identityId", "user_id", "uid")
	if id.IdentityID == "" {
		id.IdentityID = fallbackID
	}
	id.Name = firstString(rec, "name")
	id.Department = firstString(rec, "department", "jabatan")
	id.Plate = firstString(rec, plateFields...)
	id.CredentialID = firstString(rec, "credentialId", "rfid")
	return id
}

func firstString(rec map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := rec[k]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

// exactIndexMatcher checks the plate index under the key exactly as
// normalized.
type exactIndexMatcher struct{ store Store }

func (exactIndexMatcher) Name() string { return "exact" }

func (m exactIndexMatcher) TryMatch(ctx context.Context, key string) (*Identity, error) {
	var raw any
	found, err := m.store.Get(ctx, "plates/"+key, &raw)
	if err != nil || !found {
		return nil, err
	}
	rec, ok := raw.(map[string]any)
	if !ok {
		return nil, nil
	}
	return identityFromRecord(rec, "user_"+key), nil
}

// normalizedIndexMatcher scans the plate index comparing normalized
// stored keys, covering entries registered with spaces or odd casing.
// Non-object index children (stray strings, corrupt entries) are
// skipped, not treated as failures.
type normalizedIndexMatcher struct{ store Store }

func (normalizedIndexMatcher) Name() string { return "normalized" }

func (m normalizedIndexMatcher) TryMatch(ctx context.Context, key string) (*Identity, error) {
	var index map[string]any
	found, err := m.store.Get(ctx, "plates", &index)
	if err != nil || !found {
		return nil, err
	}
	for stored, child := range index {
		rec, ok := child.(map[string]any)
		if !ok {
			continue
		}
		if NormalizeKey(stored) == key {
			return identityFromRecord(rec, "user_"+key), nil
		}
	}
	return nil, nil
}

// spacedVariantMatcher retries the index under regional spaced
// spellings of the key.
type spacedVariantMatcher struct{ store Store }

func (spacedVariantMatcher) Name() string { return "spaced-variant" }

func (m spacedVariantMatcher) TryMatch(ctx context.Context, key string) (*Identity, error) {
	for _, variant := range SpacedVariants(key) {
		var raw any
		found, err := m.store.Get(ctx, "plates/"+variant, &raw)
		if err != nil {
			return nil, err
		}
		if rec, ok := raw.(map[string]any); found && ok {
			return identityFromRecord(rec, "user_"+key), nil
		}
	}
	return nil, nil
}

// deepScanMatcher is the last resort: walk every record in the store
// looking for any plate-tagged field whose normalized value equals the
// key.
type deepScanMatcher struct{ store Store }

func (deepScanMatcher) Name() string { return "deep-scan" }

func (m deepScanMatcher) TryMatch(ctx context.Context, key string) (*Identity, error) {
	var root any
	found, err := m.store.Get(ctx, "", &root)
	if err != nil || !found {
		return nil, err
	}
	if rec := deepSearch(root, key); rec != nil {
		return identityFromRecord(rec, "user_"+key), nil
	}
	return nil, nil
}

func deepSearch(node any, key string) map[string]any {
	switch v := node.(type) {
	case map[string]any:
		for _, field := range plateFields {
			if raw, ok := v[field]; ok {
				if s, ok := raw.(string); ok && NormalizeKey(s) == key {
					return v
				}
			}
		}
		for _, child := range v {
			if rec := deepSearch(child, key); rec != nil {
				return rec
			}
		}
	case []any:
		for _, child := range v {
			if rec := deepSearch(child, key); rec != nil {
				return rec
			}
		}
	}
	return nil
}
