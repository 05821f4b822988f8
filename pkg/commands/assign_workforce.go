package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/45ck/Portarium-sub005/pkg/domain"
	"github.com/45ck/Portarium-sub005/pkg/events"
	"github.com/45ck/Portarium-sub005/pkg/evidence"
	"github.com/45ck/Portarium-sub005/pkg/primitives"
)

const assignWorkforceMemberCommand = "AssignWorkforceMember"

// AssignWorkforceMemberInput assigns a work item to a workforce member.
type AssignWorkforceMemberInput struct {
	IdempotencyKey    string
	WorkspaceID       string
	WorkItemID        string
	WorkforceMemberID string
}

// AssignWorkforceMemberOutput is the cached command output.
type AssignWorkforceMemberOutput struct {
	WorkItemID        primitives.WorkItemID        `json:"workItemId"`
	WorkforceMemberID primitives.WorkforceMemberID `json:"workforceMemberId"`
	OwnerUserID       primitives.UserID            `json:"ownerUserId"`
}

// AssignWorkforceMember hands a work item to a workforce member. The member
// must be available and cover every capability the item requires; operators
// without the admin role may only reassign items they own. Ownership moves
// to the member's linked user.
func AssignWorkforceMember(ctx context.Context, d Deps, app AppContext, input AssignWorkforceMemberInput) (AssignWorkforceMemberOutput, error) {
	var zero AssignWorkforceMemberOutput

	if err := validateIdempotencyKey(input.IdempotencyKey); err != nil {
		return zero, err
	}
	if err := d.checkRateLimit(app); err != nil {
		return zero, err
	}
	if err := d.authorize(ctx, app, ActionWorkforceAssign, "caller is not permitted to assign workforce members"); err != nil {
		return zero, err
	}

	if strings.TrimSpace(input.WorkItemID) == "" {
		return zero, &ValidationFailed{Message: "workItemId must be a non-empty string"}
	}
	if strings.TrimSpace(input.WorkforceMemberID) == "" {
		return zero, &ValidationFailed{Message: "workforceMemberId must be a non-empty string"}
	}
	if err := ensureTenantMatch(app, primitives.WorkspaceID(input.WorkspaceID), ActionWorkforceAssign); err != nil {
		return zero, err
	}

	key := commandKey(app, assignWorkforceMemberCommand, input.IdempotencyKey)
	if cached, err := cachedOutput[AssignWorkforceMemberOutput](ctx, d.Idempotency, key); err != nil {
		return zero, err
	} else if cached != nil {
		return *cached, nil
	}

	memberID := primitives.WorkforceMemberID(input.WorkforceMemberID)
	member, err := d.Workforce.GetWorkforceMemberByID(ctx, app.TenantID, memberID)
	if err != nil {
		return zero, dependencyFailure(err, "workforce member lookup failed")
	}
	if member == nil {
		return zero, &NotFound{Resource: "WorkforceMember", Message: fmt.Sprintf("workforce member %s not found", input.WorkforceMemberID)}
	}
	if member.Availability != domain.AvailabilityAvailable {
		return zero, &Conflict{Message: fmt.Sprintf("workforce member %s is unavailable for assignment", input.WorkforceMemberID)}
	}

	workItemID := primitives.WorkItemID(input.WorkItemID)
	item, err := d.Workforce.GetWorkItemByID(ctx, app.TenantID, workItemID)
	if err != nil {
		return zero, dependencyFailure(err, "work item lookup failed")
	}
	if item == nil {
		return zero, &NotFound{Resource: "WorkItem", Message: fmt.Sprintf("work item %s not found", input.WorkItemID)}
	}
	if operatorWithoutAdmin(app) && item.OwnerUserID != app.PrincipalID {
		return zero, &Forbidden{Action: ActionWorkforceAssign, Message: "operators may only assign workforce members to work items they own"}
	}
	if missing := domain.UncoveredCapabilities(*member, *item); len(missing) > 0 {
		return zero, &Conflict{Message: fmt.Sprintf(
			"workforce member %s does not satisfy required capabilities: %s", memberID, strings.Join(missing, ", "))}
	}

	assigned := *item
	assigned.OwnerUserID = member.LinkedUserID
	assigned.AssignedMemberID = member.MemberID

	occurredAt := d.nowISO()
	event, err := domainCloudEvent(app, "work-item", "work-items/"+input.WorkItemID, events.DomainEvent{
		SchemaVersion: 1,
		EventID:       primitives.EventID("evt-" + d.IDs.NewID()),
		EventType:     "WorkforceMemberAssigned",
		AggregateKind: "WorkItem",
		AggregateID:   input.WorkItemID,
		OccurredAtISO: occurredAt,
		WorkspaceID:   app.TenantID,
		CorrelationID: app.CorrelationID,
		ActorUserID:   app.PrincipalID,
		Payload: map[string]any{
			"workItemId":        input.WorkItemID,
			"workforceMemberId": input.WorkforceMemberID,
			"ownerUserId":       string(member.LinkedUserID),
			"runId":             string(item.RunID),
		},
	})
	if err != nil {
		return zero, dependencyFailure(err, "unable to build event envelope")
	}

	output := AssignWorkforceMemberOutput{
		WorkItemID:        workItemID,
		WorkforceMemberID: memberID,
		OwnerUserID:       member.LinkedUserID,
	}
	entry := d.actionEvidence(app, fmt.Sprintf("Assigned workforce member %s to work item %s.", memberID, workItemID))
	entry.Links = &evidence.Links{WorkItemID: workItemID, RunID: item.RunID}
	err = d.commit(ctx, app, key, event, entry, output, func(ctx context.Context) error {
		return d.Workforce.SaveWorkItem(ctx, app.TenantID, assigned)
	})
	if err != nil {
		return zero, err
	}
	return output, nil
}

func operatorWithoutAdmin(app AppContext) bool {
	hasOperator, hasAdmin := false, false
	for _, role := range app.Roles {
		switch role {
		case "operator":
			hasOperator = true
		case "admin":
			hasAdmin = true
		}
	}
	return hasOperator && !hasAdmin
}
