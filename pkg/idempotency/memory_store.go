package idempotency

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryStore is the reference Store.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[Key]json.RawMessage
}

// NewMemoryStore creates an empty in-memory cache.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[Key]json.RawMessage)}
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, key Key) (json.RawMessage, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	output, ok := s.entries[key]
	return output, ok, nil
}

// Set implements Store.
func (s *MemoryStore) Set(_ context.Context, key Key, output json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = append(json.RawMessage(nil), output...)
	return nil
}

// Len returns the number of cached outputs (test helper).
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Snapshot returns a copy of the cache for unit-of-work staging.
func (s *MemoryStore) Snapshot() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := make(map[Key]json.RawMessage, len(s.entries))
	for k, v := range s.entries {
		snap[k] = v
	}
	return snap
}

// Restore replaces the cache with an earlier snapshot.
func (s *MemoryStore) Restore(snapshot any) {
	snap, ok := snapshot.(map[Key]json.RawMessage)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[Key]json.RawMessage, len(snap))
	for k, v := range snap {
		s.entries[k] = v
	}
}
