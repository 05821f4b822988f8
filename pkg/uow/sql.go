package uow

import (
	"context"
	"database/sql"
	"fmt"
)

type txKey struct{}

// DBTX is the subset of database/sql shared by *sql.DB and *sql.Tx. Stores
// written against it transparently join an open unit-of-work transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Querier returns the transaction carried by ctx, or db when no unit of
// work is open.
func Querier(ctx context.Context, db *sql.DB) DBTX {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return db
}

// SQL is the production UnitOfWork: one database transaction per Execute,
// carried through the context so participating stores write into it.
type SQL struct {
	db *sql.DB
}

// NewSQL creates a unit of work on db.
func NewSQL(db *sql.DB) *SQL {
	return &SQL{db: db}
}

// Execute implements UnitOfWork.
func (s *SQL) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("uow: begin: %w", err)
	}
	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("uow: commit: %w", err)
	}
	return nil
}
