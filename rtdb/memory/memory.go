// Package memory is an in-process implementation of core.Store, used in
// tests and for running the server without a remote database.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"attendgate.com/attendgate/core"
)

type Store struct {
	mu   sync.Mutex
	root map[string]any
	revs map[string]int

	// FailWith, when set, makes every operation return that error.
	// Tests use it to simulate an unreachable store.
	FailWith error
}

func New() *Store {
	return &Store{
		root: make(map[string]any),
		revs: make(map[string]int),
	}
}

// Seed writes a value without error handling, for test setup.
func (s *Store) Seed(path string, value any) {
	if err := s.Set(context.Background(), path, value); err != nil {
		panic(err)
	}
}

func (s *Store) Get(ctx context.Context, path string, out any) (bool, error) {
	found, _, err := s.GetWithETag(ctx, path, out)
	return found, err
}

func (s *Store) GetWithETag(ctx context.Context, path string, out any) (bool, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return false, "", s.FailWith
	}

	etag := strconv.Itoa(s.revs[clean(path)])
	node, ok := s.lookup(path)
	if !ok {
		return false, etag, nil
	}
	raw, err := json.Marshal(node)
	if err != nil {
		return false, "", err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, "", fmt.Errorf("decode %s: %w", path, err)
	}
	return true, etag, nil
}

func (s *Store) Set(ctx context.Context, path string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	return s.set(path, value)
}

func (s *Store) SetIfMatch(ctx context.Context, path string, value any, etag string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	if etag != strconv.Itoa(s.revs[clean(path)]) {
		return fmt.Errorf("set %s: %w", path, core.ErrConflict)
	}
	return s.set(path, value)
}

func (s *Store) Update(ctx context.Context, path string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}

	existing, ok := s.lookup(path)
	merged := make(map[string]any)
	if ok {
		if m, isMap := existing.(map[string]any); isMap {
			for k, v := range m {
				merged[k] = v
			}
		}
	}
	for k, v := range fields {
		merged[k] = v
	}
	return s.set(path, merged)
}

func (s *Store) set(path string, value any) error {
	// Round-trip through JSON so stored subtrees always look the way a
	// remote store would return them.
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	var normalized any
	if err := json.Unmarshal(raw, &normalized); err != nil {
		return err
	}

	segments := split(path)
	if len(segments) == 0 {
		m, ok := normalized.(map[string]any)
		if !ok {
			return fmt.Errorf("root value must be an object")
		}
		s.root = m
	} else {
		node := s.root
		for _, seg := range segments[:len(segments)-1] {
			child, ok := node[seg].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[seg] = child
			}
			node = child
		}
		node[segments[len(segments)-1]] = normalized
	}
	s.revs[clean(path)]++
	return nil
}

func (s *Store) lookup(path string) (any, bool) {
	segments := split(path)
	var node any = s.root
	for _, seg := range segments {
		m, ok := node.(map[string]any)
		if !ok {
			return nil, false
		}
		node, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	if node == nil {
		return nil, false
	}
	return node, true
}

func clean(path string) string {
	return strings.Trim(path, "/")
}

func split(path string) []string {
	path = clean(path)
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
