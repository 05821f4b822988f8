package idempotency

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/45ck/Portarium-sub005/pkg/uow"
)

// SQLStore caches command outputs in a relational table. Set joins an open
// unit-of-work transaction when one is carried by the context, so the
// cached output commits atomically with the command's other writes.
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore creates a cache on db.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

const sqlStoreSchema = `
CREATE TABLE IF NOT EXISTS idempotency_entries (
	tenant_id TEXT NOT NULL,
	command_name TEXT NOT NULL,
	request_key TEXT NOT NULL,
	output_json TEXT NOT NULL,
	PRIMARY KEY (tenant_id, command_name, request_key)
);
`

// Init creates the backing table.
func (s *SQLStore) Init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqlStoreSchema)
	return err
}

// Get implements Store.
func (s *SQLStore) Get(ctx context.Context, key Key) (json.RawMessage, bool, error) {
	var output string
	row := uow.Querier(ctx, s.db).QueryRowContext(ctx, `
		SELECT output_json FROM idempotency_entries
		WHERE tenant_id = $1 AND command_name = $2 AND request_key = $3
	`, string(key.TenantID), key.CommandName, key.RequestKey)
	if err := row.Scan(&output); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("idempotency: get: %w", err)
	}
	return json.RawMessage(output), true, nil
}

// Set implements Store.
func (s *SQLStore) Set(ctx context.Context, key Key, output json.RawMessage) error {
	_, err := uow.Querier(ctx, s.db).ExecContext(ctx, `
		INSERT INTO idempotency_entries (tenant_id, command_name, request_key, output_json)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (tenant_id, command_name, request_key) DO UPDATE SET output_json = excluded.output_json
	`, string(key.TenantID), key.CommandName, key.RequestKey, string(output))
	if err != nil {
		return fmt.Errorf("idempotency: set: %w", err)
	}
	return nil
}
