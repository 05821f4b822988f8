// Package outbox implements the transactional outbox: integration events
// are persisted alongside the state change that produced them and delivered
// asynchronously by a dispatcher with per-entry retry and backoff.
package outbox

import (
	"context"
	"errors"
	"time"

	"github.com/45ck/Portarium-sub005/pkg/events"
)

const (
	// MaxRetries is the number of failed delivery attempts after which an
	// entry becomes terminally Failed and requires operator intervention.
	MaxRetries = 10

	// DefaultBatchSize is the dispatcher's default sweep batch size.
	DefaultBatchSize = 50
)

// ErrEntryNotFound is returned for status transitions on unknown entries.
var ErrEntryNotFound = errors.New("outbox entry not found")

// Status is the delivery state of an outbox entry.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusPublished Status = "Published"
	StatusFailed    Status = "Failed"
)

// Entry is one persisted integration event awaiting delivery. EntryID is
// assigned at enqueue time in strictly increasing order and is the sole
// delivery-ordering key.
type Entry struct {
	EntryID      int64
	Event        events.CloudEvent
	Status       Status
	RetryCount   int
	FailedReason string
	NextRetryAt  time.Time
}

// Store persists outbox entries. Enqueue happens inside the same unit of
// work as the entity write; the status transitions belong to the
// dispatcher alone.
type Store interface {
	// Enqueue stores event as Pending under the next entry id.
	Enqueue(ctx context.Context, event events.CloudEvent) (Entry, error)
	// FetchPending returns up to limit entries that are Pending and due
	// (NextRetryAt unset or <= now), ascending by entry id.
	FetchPending(ctx context.Context, limit int, now time.Time) ([]Entry, error)
	// MarkPublished transitions an entry to Published. Idempotent.
	MarkPublished(ctx context.Context, entryID int64) error
	// MarkFailed records a failed attempt. The retry count is incremented;
	// at MaxRetries the entry becomes terminally Failed, otherwise it
	// stays Pending with the new retry time.
	MarkFailed(ctx context.Context, entryID int64, reason string, nextRetryAt time.Time) error
}

// Publisher delivers one event to the downstream bus. Any error is treated
// as a delivery failure subject to retry; delivery is at-least-once, so
// consumers must deduplicate on event id.
type Publisher interface {
	Publish(ctx context.Context, event events.CloudEvent) error
}
