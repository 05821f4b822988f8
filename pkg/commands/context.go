// Package commands implements the mutating commands of the control plane.
// Every command follows the same envelope: validate the idempotency key,
// authorize, parse the payload, consult the idempotency cache, check
// business preconditions, then commit the entity write, the outbox event,
// one evidence entry and the cached output inside a single unit of work.
package commands

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/45ck/Portarium-sub005/pkg/primitives"
)

// Command action names used for authorization decisions.
const (
	ActionWorkspaceRegister    = "workspace.register"
	ActionMachineAgentRegister = "machine-agent.register"
	ActionRunStart             = "run.start"
	ActionApprovalSubmit       = "approval.submit"
	ActionWorkforceAssign      = "workforce.assign"
)

// AppContext carries the authenticated caller identity for one command
// invocation. It is established at the trust boundary (see pkg/authz) and
// treated as fact below it.
type AppContext struct {
	TenantID      primitives.TenantID
	PrincipalID   primitives.UserID
	CorrelationID primitives.CorrelationID
	Roles         []string
}

// AuthorizationPort decides whether the caller may perform an action. The
// decision content lives outside this package.
type AuthorizationPort interface {
	IsAllowed(ctx context.Context, app AppContext, action string) (bool, error)
}

// Clock supplies command timestamps.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// IDGenerator mints identifiers for events, evidence entries and runs.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator is the production IDGenerator.
type UUIDGenerator struct{}

// NewID implements IDGenerator.
func (UUIDGenerator) NewID() string { return uuid.NewString() }

func validateIdempotencyKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return &ValidationFailed{Message: "idempotencyKey must be a non-empty string"}
	}
	return nil
}

func ensureTenantMatch(app AppContext, workspaceID primitives.WorkspaceID, action string) error {
	if strings.TrimSpace(string(workspaceID)) == "" {
		return &ValidationFailed{Message: "workspaceId must be a non-empty string"}
	}
	if workspaceID != app.TenantID {
		return &Forbidden{Action: action, Message: "tenant mismatch"}
	}
	return nil
}
