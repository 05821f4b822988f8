// Package idempotency caches command outputs keyed by the caller-supplied
// request key, so a repeated command call returns its original output
// instead of re-executing. The cache holds outcomes only; it carries no
// business logic.
package idempotency

import (
	"context"
	"encoding/json"

	"github.com/45ck/Portarium-sub005/pkg/primitives"
)

// Key identifies one cached command output. Two keys are equal iff all
// three fields are equal, case-sensitive; the tenant field keeps identical
// request keys from different tenants in separate slots.
type Key struct {
	TenantID    primitives.TenantID
	CommandName string
	RequestKey  string
}

// Store is the idempotency cache. Get must never partially match: a value
// comes back only for an exact key. Set is a pure upsert.
type Store interface {
	Get(ctx context.Context, key Key) (json.RawMessage, bool, error)
	Set(ctx context.Context, key Key, output json.RawMessage) error
}
