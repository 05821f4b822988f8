package evidence

import (
	"context"
	"sync"

	"github.com/45ck/Portarium-sub005/pkg/primitives"
)

// Log is the append port for the evidence ledger. Implementations must
// serialize appends per tenant; cross-tenant appends are independent.
type Log interface {
	// AppendEntry seals input onto the tenant's chain and returns the
	// sealed entry.
	AppendEntry(ctx context.Context, tenantID primitives.TenantID, input EntryInput) (Entry, error)
	// ListEntries returns the tenant's chain in append order.
	ListEntries(ctx context.Context, tenantID primitives.TenantID) ([]Entry, error)
}

// MemoryLog is the reference Log. A per-tenant mutex serializes appends so
// concurrent writers cannot fork a tenant's chain.
type MemoryLog struct {
	hasher Hasher

	mu      sync.Mutex
	tenants map[primitives.TenantID]*tenantChain
}

type tenantChain struct {
	mu      sync.Mutex
	entries []Entry
}

// NewMemoryLog creates an empty in-memory evidence log.
func NewMemoryLog(hasher Hasher) *MemoryLog {
	return &MemoryLog{hasher: hasher, tenants: make(map[primitives.TenantID]*tenantChain)}
}

func (l *MemoryLog) chain(tenantID primitives.TenantID) *tenantChain {
	l.mu.Lock()
	defer l.mu.Unlock()
	c, ok := l.tenants[tenantID]
	if !ok {
		c = &tenantChain{}
		l.tenants[tenantID] = c
	}
	return c
}

// AppendEntry implements Log.
func (l *MemoryLog) AppendEntry(_ context.Context, tenantID primitives.TenantID, input EntryInput) (Entry, error) {
	c := l.chain(tenantID)
	c.mu.Lock()
	defer c.mu.Unlock()

	var previous *Entry
	if n := len(c.entries); n > 0 {
		previous = &c.entries[n-1]
	}
	sealed, err := AppendEntry(previous, input, l.hasher)
	if err != nil {
		return Entry{}, err
	}
	c.entries = append(c.entries, sealed)
	return sealed, nil
}

// ListEntries implements Log.
func (l *MemoryLog) ListEntries(_ context.Context, tenantID primitives.TenantID) ([]Entry, error) {
	c := l.chain(tenantID)
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out, nil
}

// Snapshot returns a deep copy of the log state for unit-of-work staging.
func (l *MemoryLog) Snapshot() any {
	l.mu.Lock()
	defer l.mu.Unlock()
	snap := make(map[primitives.TenantID][]Entry, len(l.tenants))
	for id, c := range l.tenants {
		c.mu.Lock()
		entries := make([]Entry, len(c.entries))
		copy(entries, c.entries)
		c.mu.Unlock()
		snap[id] = entries
	}
	return snap
}

// Restore replaces the log state with a snapshot taken earlier.
func (l *MemoryLog) Restore(snapshot any) {
	snap, ok := snapshot.(map[primitives.TenantID][]Entry)
	if !ok {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tenants = make(map[primitives.TenantID]*tenantChain, len(snap))
	for id, entries := range snap {
		copied := make([]Entry, len(entries))
		copy(copied, entries)
		l.tenants[id] = &tenantChain{entries: copied}
	}
}
