package evidence

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"
)

// ErrPayloadExists is returned by PayloadStore.Put when the (bucket, key)
// pair was written before. A repeat write signals evidence-id reuse, which
// is a data-integrity bug, so callers should treat it as fatal to the
// operation rather than a business outcome.
var ErrPayloadExists = errors.New("evidence payload already exists")

// ErrPayloadNotFound is returned by PayloadStore.Get for unknown refs.
var ErrPayloadNotFound = errors.New("evidence payload not found")

// LockMode mirrors object-lock retention modes of compliance storage
// backends.
type LockMode string

const (
	LockGovernance LockMode = "GOVERNANCE"
	LockCompliance LockMode = "COMPLIANCE"
)

// PayloadRef identifies a WORM payload.
type PayloadRef struct {
	Bucket string
	Key    string
}

// payloadURI renders a ref under the scheme of the backend that stores it.
func payloadURI(scheme string, ref PayloadRef) string {
	return fmt.Sprintf("%s://%s/%s", scheme, ref.Bucket, ref.Key)
}

// PutOptions carries the retention lock applied at write time.
type PutOptions struct {
	LockMode    LockMode
	RetainUntil time.Time
}

// StoredPayload is a written payload together with its retention lock.
type StoredPayload struct {
	Payload     []byte
	LockMode    LockMode
	RetainUntil time.Time
}

// PayloadStore is a write-once payload store. Put never overwrites: a
// second write for the same ref fails with ErrPayloadExists. URI renders a
// ref under the backend's native scheme (s3, gs, mem) so evidence
// payloadRefs record where the snapshot actually lives.
type PayloadStore interface {
	Put(ctx context.Context, ref PayloadRef, payload []byte, opts PutOptions) error
	Get(ctx context.Context, ref PayloadRef) (StoredPayload, error)
	URI(ref PayloadRef) string
}

// PayloadKey renders the object key convention
// {collection}/{tenantId}/{aggregateType}/{aggregateId}/{eventId}.json
// with each path segment escaped.
func PayloadKey(collection, tenantID, aggregateType, aggregateID, eventID string) string {
	return fmt.Sprintf("%s/%s/%s/%s/%s.json",
		collection,
		url.PathEscape(tenantID),
		aggregateType,
		url.PathEscape(aggregateID),
		url.PathEscape(eventID),
	)
}

// MemoryPayloadStore is the reference WORM store.
type MemoryPayloadStore struct {
	mu      sync.RWMutex
	objects map[PayloadRef]StoredPayload
}

// NewMemoryPayloadStore creates an empty in-memory WORM store.
func NewMemoryPayloadStore() *MemoryPayloadStore {
	return &MemoryPayloadStore{objects: make(map[PayloadRef]StoredPayload)}
}

// Put implements PayloadStore.
func (s *MemoryPayloadStore) Put(_ context.Context, ref PayloadRef, payload []byte, opts PutOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.objects[ref]; exists {
		return fmt.Errorf("%w: %s", ErrPayloadExists, s.URI(ref))
	}
	stored := make([]byte, len(payload))
	copy(stored, payload)
	s.objects[ref] = StoredPayload{Payload: stored, LockMode: opts.LockMode, RetainUntil: opts.RetainUntil}
	return nil
}

// Get implements PayloadStore.
func (s *MemoryPayloadStore) Get(_ context.Context, ref PayloadRef) (StoredPayload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.objects[ref]
	if !ok {
		return StoredPayload{}, fmt.Errorf("%w: %s", ErrPayloadNotFound, s.URI(ref))
	}
	out := make([]byte, len(stored.Payload))
	copy(out, stored.Payload)
	return StoredPayload{Payload: out, LockMode: stored.LockMode, RetainUntil: stored.RetainUntil}, nil
}

// URI implements PayloadStore.
func (s *MemoryPayloadStore) URI(ref PayloadRef) string {
	return payloadURI("mem", ref)
}

// Len reports the number of stored payloads.
func (s *MemoryPayloadStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
