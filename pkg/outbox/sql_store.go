package outbox

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/45ck/Portarium-sub005/pkg/events"
	"github.com/45ck/Portarium-sub005/pkg/uow"
)

// SQLStore persists outbox entries through database/sql. Enqueue joins an
// open unit-of-work transaction when one is carried by the context, which
// is what makes the outbox transactional: the entry commits or rolls back
// together with the entity write that produced it.
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore creates an outbox on db.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

const sqlStoreSchema = `
CREATE TABLE IF NOT EXISTS outbox_entries (
	entry_id INTEGER PRIMARY KEY,
	event_json TEXT NOT NULL,
	status TEXT NOT NULL,
	retry_count INTEGER NOT NULL DEFAULT 0,
	failed_reason TEXT NOT NULL DEFAULT '',
	next_retry_at TIMESTAMP
);
CREATE INDEX IF NOT EXISTS outbox_entries_pending ON outbox_entries (status, next_retry_at);
`

// Init creates the backing table.
func (s *SQLStore) Init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqlStoreSchema)
	return err
}

// Enqueue implements Store.
func (s *SQLStore) Enqueue(ctx context.Context, event events.CloudEvent) (Entry, error) {
	q := uow.Querier(ctx, s.db)

	eventJSON, err := json.Marshal(event)
	if err != nil {
		return Entry{}, fmt.Errorf("outbox: marshal event: %w", err)
	}

	var nextID int64
	row := q.QueryRowContext(ctx, `SELECT COALESCE(MAX(entry_id), 0) + 1 FROM outbox_entries`)
	if err := row.Scan(&nextID); err != nil {
		return Entry{}, fmt.Errorf("outbox: next entry id: %w", err)
	}

	if _, err := q.ExecContext(ctx, `
		INSERT INTO outbox_entries (entry_id, event_json, status)
		VALUES ($1, $2, $3)
	`, nextID, string(eventJSON), string(StatusPending)); err != nil {
		return Entry{}, fmt.Errorf("outbox: insert entry: %w", err)
	}

	return Entry{EntryID: nextID, Event: event, Status: StatusPending}, nil
}

// FetchPending implements Store.
func (s *SQLStore) FetchPending(ctx context.Context, limit int, now time.Time) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT entry_id, event_json, status, retry_count, failed_reason, next_retry_at
		FROM outbox_entries
		WHERE status = $1 AND (next_retry_at IS NULL OR next_retry_at <= $2)
		ORDER BY entry_id ASC
		LIMIT $3
	`, string(StatusPending), now.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("outbox: fetch pending: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := make([]Entry, 0)
	for rows.Next() {
		var (
			entry       Entry
			eventJSON   string
			status      string
			nextRetryAt sql.NullTime
		)
		if err := rows.Scan(&entry.EntryID, &eventJSON, &status, &entry.RetryCount,
			&entry.FailedReason, &nextRetryAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(eventJSON), &entry.Event); err != nil {
			return nil, fmt.Errorf("outbox: corrupt entry %d: %w", entry.EntryID, err)
		}
		entry.Status = Status(status)
		if nextRetryAt.Valid {
			entry.NextRetryAt = nextRetryAt.Time
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// MarkPublished implements Store.
func (s *SQLStore) MarkPublished(ctx context.Context, entryID int64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE outbox_entries SET status = $1 WHERE entry_id = $2
	`, string(StatusPublished), entryID)
	if err != nil {
		return fmt.Errorf("outbox: mark published: %w", err)
	}
	return requireRow(res, entryID)
}

// MarkFailed implements Store.
func (s *SQLStore) MarkFailed(ctx context.Context, entryID int64, reason string, nextRetryAt time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE outbox_entries
		SET retry_count = retry_count + 1,
			failed_reason = $1,
			next_retry_at = $2,
			status = CASE WHEN retry_count + 1 >= $3 THEN $4 ELSE status END
		WHERE entry_id = $5
	`, reason, nextRetryAt.UTC(), MaxRetries, string(StatusFailed), entryID)
	if err != nil {
		return fmt.Errorf("outbox: mark failed: %w", err)
	}
	return requireRow(res, entryID)
}

func requireRow(res sql.Result, entryID int64) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %d", ErrEntryNotFound, entryID)
	}
	return nil
}
