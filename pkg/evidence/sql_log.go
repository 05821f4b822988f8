package evidence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/45ck/Portarium-sub005/pkg/primitives"
	"github.com/45ck/Portarium-sub005/pkg/uow"
)

// SQLLog persists the evidence ledger through database/sql. It works with
// both Postgres and SQLite drivers.
//
// Per-tenant single-writer is enforced structurally: each append runs in a
// transaction that reads the tenant's tail and inserts at seq+1 under a
// (tenant_id, seq) primary key, so a concurrent append for the same tenant
// loses the race with a constraint violation instead of forking the chain.
type SQLLog struct {
	db     *sql.DB
	hasher Hasher
}

// NewSQLLog creates an evidence log on db.
func NewSQLLog(db *sql.DB, hasher Hasher) *SQLLog {
	return &SQLLog{db: db, hasher: hasher}
}

const sqlLogSchema = `
CREATE TABLE IF NOT EXISTS evidence_entries (
	tenant_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	evidence_id TEXT NOT NULL,
	entry_json TEXT NOT NULL,
	previous_hash TEXT,
	hash_sha256 TEXT NOT NULL,
	PRIMARY KEY (tenant_id, seq)
);
`

// Init creates the backing table.
func (l *SQLLog) Init(ctx context.Context) error {
	_, err := l.db.ExecContext(ctx, sqlLogSchema)
	return err
}

// AppendEntry implements Log. When ctx carries an open unit-of-work
// transaction the append joins it, so the chain entry commits or rolls
// back with the rest of the command's writes; otherwise the append runs in
// its own transaction.
func (l *SQLLog) AppendEntry(ctx context.Context, tenantID primitives.TenantID, input EntryInput) (Entry, error) {
	q := uow.Querier(ctx, l.db)
	var ownTx *sql.Tx
	if _, isTx := q.(*sql.Tx); !isTx {
		tx, err := l.db.BeginTx(ctx, nil)
		if err != nil {
			return Entry{}, fmt.Errorf("evidence: begin append tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()
		q, ownTx = tx, tx
	}

	var (
		tailSeq  sql.NullInt64
		tailJSON sql.NullString
	)
	row := q.QueryRowContext(ctx, `
		SELECT seq, entry_json FROM evidence_entries
		WHERE tenant_id = $1
		ORDER BY seq DESC LIMIT 1
	`, string(tenantID))
	if err := row.Scan(&tailSeq, &tailJSON); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("evidence: read chain tail: %w", err)
	}

	var previous *Entry
	nextSeq := int64(1)
	if tailSeq.Valid {
		nextSeq = tailSeq.Int64 + 1
		var tail Entry
		if err := json.Unmarshal([]byte(tailJSON.String), &tail); err != nil {
			return Entry{}, fmt.Errorf("evidence: corrupt chain tail for tenant %s: %w", tenantID, err)
		}
		previous = &tail
	}

	sealed, err := AppendEntry(previous, input, l.hasher)
	if err != nil {
		return Entry{}, err
	}
	entryJSON, err := json.Marshal(sealed)
	if err != nil {
		return Entry{}, fmt.Errorf("evidence: marshal entry: %w", err)
	}

	if _, err := q.ExecContext(ctx, `
		INSERT INTO evidence_entries (tenant_id, seq, evidence_id, entry_json, previous_hash, hash_sha256)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, string(tenantID), nextSeq, string(sealed.EvidenceID), string(entryJSON),
		string(sealed.PreviousHash), string(sealed.HashSHA256)); err != nil {
		return Entry{}, fmt.Errorf("evidence: insert entry: %w", err)
	}

	if ownTx != nil {
		if err := ownTx.Commit(); err != nil {
			return Entry{}, fmt.Errorf("evidence: commit append: %w", err)
		}
	}
	return sealed, nil
}

// ListTenants returns every tenant with at least one ledger entry. It backs
// the integrity sweep run at daemon start.
func (l *SQLLog) ListTenants(ctx context.Context) ([]primitives.TenantID, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT DISTINCT tenant_id FROM evidence_entries ORDER BY tenant_id
	`)
	if err != nil {
		return nil, fmt.Errorf("evidence: list tenants: %w", err)
	}
	defer func() { _ = rows.Close() }()

	tenants := make([]primitives.TenantID, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		tenants = append(tenants, primitives.TenantID(id))
	}
	return tenants, rows.Err()
}

// ListEntries implements Log.
func (l *SQLLog) ListEntries(ctx context.Context, tenantID primitives.TenantID) ([]Entry, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT entry_json FROM evidence_entries
		WHERE tenant_id = $1
		ORDER BY seq ASC
	`, string(tenantID))
	if err != nil {
		return nil, fmt.Errorf("evidence: list entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := make([]Entry, 0)
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var entry Entry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			return nil, fmt.Errorf("evidence: corrupt entry for tenant %s: %w", tenantID, err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
