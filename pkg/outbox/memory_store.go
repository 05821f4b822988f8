package outbox

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/45ck/Portarium-sub005/pkg/events"
)

// MemoryStore is the reference Store.
type MemoryStore struct {
	mu      sync.Mutex
	nextID  int64
	entries []*Entry
	byID    map[int64]*Entry
}

// NewMemoryStore creates an empty in-memory outbox.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1, byID: make(map[int64]*Entry)}
}

// Enqueue implements Store.
func (s *MemoryStore) Enqueue(_ context.Context, event events.CloudEvent) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := &Entry{
		EntryID: s.nextID,
		Event:   event,
		Status:  StatusPending,
	}
	s.nextID++
	s.entries = append(s.entries, entry)
	s.byID[entry.EntryID] = entry
	return *entry, nil
}

// FetchPending implements Store.
func (s *MemoryStore) FetchPending(_ context.Context, limit int, now time.Time) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, 0, limit)
	for _, entry := range s.entries {
		if len(out) >= limit {
			break
		}
		if entry.Status != StatusPending {
			continue
		}
		if !entry.NextRetryAt.IsZero() && entry.NextRetryAt.After(now) {
			continue
		}
		out = append(out, *entry)
	}
	return out, nil
}

// MarkPublished implements Store.
func (s *MemoryStore) MarkPublished(_ context.Context, entryID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.byID[entryID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrEntryNotFound, entryID)
	}
	entry.Status = StatusPublished
	return nil
}

// MarkFailed implements Store.
func (s *MemoryStore) MarkFailed(_ context.Context, entryID int64, reason string, nextRetryAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.byID[entryID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrEntryNotFound, entryID)
	}
	entry.RetryCount++
	entry.FailedReason = reason
	entry.NextRetryAt = nextRetryAt
	if entry.RetryCount >= MaxRetries {
		entry.Status = StatusFailed
	}
	return nil
}

// All returns every entry in enqueue order (test helper).
func (s *MemoryStore) All() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, 0, len(s.entries))
	for _, entry := range s.entries {
		out = append(out, *entry)
	}
	return out
}

// Snapshot returns a deep copy of the outbox state for unit-of-work staging.
func (s *MemoryStore) Snapshot() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := memorySnapshot{nextID: s.nextID, entries: make([]Entry, len(s.entries))}
	for i, entry := range s.entries {
		snap.entries[i] = *entry
	}
	return snap
}

// Restore replaces the outbox state with an earlier snapshot.
func (s *MemoryStore) Restore(snapshot any) {
	snap, ok := snapshot.(memorySnapshot)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID = snap.nextID
	s.entries = make([]*Entry, len(snap.entries))
	s.byID = make(map[int64]*Entry, len(snap.entries))
	for i := range snap.entries {
		entry := snap.entries[i]
		s.entries[i] = &entry
		s.byID[entry.EntryID] = &entry
	}
}

type memorySnapshot struct {
	nextID  int64
	entries []Entry
}
