package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/45ck/Portarium-sub005/pkg/domain"
	"github.com/45ck/Portarium-sub005/pkg/events"
	"github.com/45ck/Portarium-sub005/pkg/primitives"
)

const registerWorkspaceCommand = "RegisterWorkspace"

// RegisterWorkspaceInput carries the raw workspace payload; it is parsed
// and validated inside the command.
type RegisterWorkspaceInput struct {
	IdempotencyKey string
	Workspace      json.RawMessage
}

// RegisterWorkspaceOutput is the cached command output.
type RegisterWorkspaceOutput struct {
	WorkspaceID primitives.WorkspaceID `json:"workspaceId"`
}

// RegisterWorkspace registers a new workspace and emits a
// WorkspaceRegistered event.
func RegisterWorkspace(ctx context.Context, d Deps, app AppContext, input RegisterWorkspaceInput) (RegisterWorkspaceOutput, error) {
	var zero RegisterWorkspaceOutput

	if err := validateIdempotencyKey(input.IdempotencyKey); err != nil {
		return zero, err
	}
	if err := d.checkRateLimit(app); err != nil {
		return zero, err
	}
	if err := d.authorize(ctx, app, ActionWorkspaceRegister, "caller is not permitted to register workspaces"); err != nil {
		return zero, err
	}

	ws, err := domain.ParseWorkspaceV1(input.Workspace)
	if err != nil {
		return zero, &ValidationFailed{Message: err.Error()}
	}
	if err := ensureTenantMatch(app, ws.WorkspaceID, ActionWorkspaceRegister); err != nil {
		return zero, err
	}

	key := commandKey(app, registerWorkspaceCommand, input.IdempotencyKey)
	if cached, err := cachedOutput[RegisterWorkspaceOutput](ctx, d.Idempotency, key); err != nil {
		return zero, err
	} else if cached != nil {
		return *cached, nil
	}

	existing, err := d.Workspaces.GetWorkspaceByID(ctx, app.TenantID, ws.WorkspaceID)
	if err != nil {
		return zero, dependencyFailure(err, "workspace lookup failed")
	}
	if existing != nil {
		return zero, &Conflict{Message: fmt.Sprintf("workspace %s already exists", ws.WorkspaceID)}
	}
	sameName, err := d.Workspaces.GetWorkspaceByName(ctx, app.TenantID, ws.Name)
	if err != nil {
		return zero, dependencyFailure(err, "workspace lookup failed")
	}
	if sameName != nil {
		return zero, &Conflict{Message: fmt.Sprintf("workspace name %q already in use", ws.Name)}
	}

	eventID := primitives.EventID("evt-" + d.IDs.NewID())
	occurredAt := d.nowISO()
	event, err := domainCloudEvent(app, "workspace", "workspaces/"+string(ws.WorkspaceID), events.DomainEvent{
		SchemaVersion: 1,
		EventID:       eventID,
		EventType:     "WorkspaceRegistered",
		AggregateKind: "Workspace",
		AggregateID:   string(ws.WorkspaceID),
		OccurredAtISO: occurredAt,
		WorkspaceID:   ws.WorkspaceID,
		CorrelationID: app.CorrelationID,
		ActorUserID:   app.PrincipalID,
		Payload: map[string]any{
			"workspaceId": string(ws.WorkspaceID),
			"name":        ws.Name,
		},
	})
	if err != nil {
		return zero, dependencyFailure(err, "unable to build event envelope")
	}

	output := RegisterWorkspaceOutput{WorkspaceID: ws.WorkspaceID}
	entry := d.actionEvidence(app, fmt.Sprintf("Registered workspace %s.", ws.WorkspaceID))
	err = d.commit(ctx, app, key, event, entry, output, func(ctx context.Context) error {
		return d.Workspaces.SaveWorkspace(ctx, app.TenantID, ws)
	})
	if err != nil {
		return zero, err
	}
	return output, nil
}
