// Package uow provides the unit-of-work boundary: every write performed
// inside Execute commits or rolls back together.
package uow

import "context"

// UnitOfWork runs fn with all-or-nothing semantics across every write
// performed inside it. If fn returns an error, none of the writes are
// retained.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(ctx context.Context) error) error
}

// Participant is an in-memory store that can stage its state for the
// reference unit of work: Snapshot before fn, Restore if fn fails.
type Participant interface {
	Snapshot() any
	Restore(snapshot any)
}

// Memory is the reference UnitOfWork. It snapshots every participant
// before running fn and restores them all, in reverse registration order,
// when fn returns an error. It is only safe under serialized execution;
// production deployments use SQL with a real transaction.
type Memory struct {
	participants []Participant
}

// NewMemory creates a reference unit of work over the given participants.
func NewMemory(participants ...Participant) *Memory {
	return &Memory{participants: participants}
}

// Execute implements UnitOfWork.
func (m *Memory) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	snapshots := make([]any, len(m.participants))
	for i, p := range m.participants {
		snapshots[i] = p.Snapshot()
	}
	if err := fn(ctx); err != nil {
		for i := len(m.participants) - 1; i >= 0; i-- {
			m.participants[i].Restore(snapshots[i])
		}
		return err
	}
	return nil
}
