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

const submitApprovalCommand = "SubmitApproval"

// SubmitApprovalInput carries a reviewer's verdict on a pending approval.
type SubmitApprovalInput struct {
	IdempotencyKey string
	WorkspaceID    string
	ApprovalID     string
	Decision       domain.ApprovalDecision
	Rationale      string
}

// SubmitApprovalOutput is the cached command output.
type SubmitApprovalOutput struct {
	ApprovalID primitives.ApprovalID `json:"approvalId"`
	Status     domain.ApprovalStatus `json:"status"`
}

func decisionEventType(d domain.ApprovalDecision) string {
	switch d {
	case domain.DecisionApproved:
		return evidence.EventApprovalGranted
	case domain.DecisionRequestChanges:
		return evidence.EventApprovalChangesRequested
	default:
		return evidence.EventApprovalDenied
	}
}

// SubmitApproval records a reviewer decision on a pending approval. The
// decision event is snapshotted into the WORM store and chained as
// Approval-category evidence through the approval hooks; a decided
// approval never accepts a second verdict.
func SubmitApproval(ctx context.Context, d Deps, app AppContext, input SubmitApprovalInput) (SubmitApprovalOutput, error) {
	var zero SubmitApprovalOutput

	if err := validateIdempotencyKey(input.IdempotencyKey); err != nil {
		return zero, err
	}
	if err := d.checkRateLimit(app); err != nil {
		return zero, err
	}
	if err := d.authorize(ctx, app, ActionApprovalSubmit, "caller is not permitted to submit approval decisions"); err != nil {
		return zero, err
	}

	if strings.TrimSpace(input.ApprovalID) == "" {
		return zero, &ValidationFailed{Message: "approvalId must be a non-empty string"}
	}
	if !domain.ValidApprovalDecision(input.Decision) {
		return zero, &ValidationFailed{Message: fmt.Sprintf("unknown approval decision %q", input.Decision)}
	}
	if strings.TrimSpace(input.Rationale) == "" {
		return zero, &ValidationFailed{Message: "rationale must be a non-empty string"}
	}
	if err := ensureTenantMatch(app, primitives.WorkspaceID(input.WorkspaceID), ActionApprovalSubmit); err != nil {
		return zero, err
	}

	key := commandKey(app, submitApprovalCommand, input.IdempotencyKey)
	if cached, err := cachedOutput[SubmitApprovalOutput](ctx, d.Idempotency, key); err != nil {
		return zero, err
	} else if cached != nil {
		return *cached, nil
	}

	approvalID := primitives.ApprovalID(input.ApprovalID)
	existing, err := d.Approvals.GetApprovalByID(ctx, app.TenantID, approvalID)
	if err != nil {
		return zero, dependencyFailure(err, "approval lookup failed")
	}
	if existing == nil {
		return zero, &NotFound{Resource: "Approval", Message: fmt.Sprintf("approval %s not found", input.ApprovalID)}
	}
	if existing.Status != domain.ApprovalPending {
		return zero, &Conflict{Message: fmt.Sprintf("approval %s is already decided", input.ApprovalID)}
	}
	if existing.WorkspaceID != app.TenantID {
		return zero, &Forbidden{Action: ActionApprovalSubmit, Message: "approval workspace does not match requested workspace"}
	}

	decidedAt := d.nowISO()
	decided := *existing
	decided.Status = domain.DecisionStatus(input.Decision)
	decided.DecidedAtISO = decidedAt
	decided.DecidedByUserID = app.PrincipalID
	decided.Rationale = input.Rationale

	domainEvent := events.DomainEvent{
		SchemaVersion: 1,
		EventID:       primitives.EventID("evt-" + d.IDs.NewID()),
		EventType:     decisionEventType(input.Decision),
		AggregateKind: "Approval",
		AggregateID:   input.ApprovalID,
		OccurredAtISO: decidedAt,
		WorkspaceID:   app.TenantID,
		CorrelationID: app.CorrelationID,
		ActorUserID:   app.PrincipalID,
		Payload: map[string]any{
			"approvalId": input.ApprovalID,
			"runId":      string(existing.RunID),
			"status":     string(decided.Status),
			"rationale":  input.Rationale,
		},
	}
	event, err := domainCloudEvent(app, "approval", "approvals/"+input.ApprovalID, domainEvent)
	if err != nil {
		return zero, dependencyFailure(err, "unable to build event envelope")
	}

	output := SubmitApprovalOutput{ApprovalID: approvalID, Status: decided.Status}
	err = d.commitWith(ctx, key, event, output,
		func(ctx context.Context) error {
			return d.Approvals.SaveApproval(ctx, app.TenantID, decided)
		},
		func(ctx context.Context) error {
			_, err := d.ApprovalEvidence.Record(ctx, domainEvent)
			return err
		})
	if err != nil {
		return zero, err
	}
	return output, nil
}
