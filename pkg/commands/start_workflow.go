package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/45ck/Portarium-sub005/pkg/domain"
	"github.com/45ck/Portarium-sub005/pkg/events"
	"github.com/45ck/Portarium-sub005/pkg/primitives"
)

const startWorkflowCommand = "StartWorkflow"

// StartWorkflowInput references an active workflow definition to execute.
type StartWorkflowInput struct {
	IdempotencyKey string
	WorkspaceID    string
	WorkflowID     string
}

// StartWorkflowOutput is the cached command output.
type StartWorkflowOutput struct {
	RunID primitives.RunID `json:"runId"`
}

// StartWorkflow creates a Pending run for an active workflow and emits a
// RunStarted event. The run inherits the workflow's execution tier at
// start time.
func StartWorkflow(ctx context.Context, d Deps, app AppContext, input StartWorkflowInput) (StartWorkflowOutput, error) {
	var zero StartWorkflowOutput

	if err := validateIdempotencyKey(input.IdempotencyKey); err != nil {
		return zero, err
	}
	if err := d.checkRateLimit(app); err != nil {
		return zero, err
	}
	if err := d.authorize(ctx, app, ActionRunStart, "caller is not permitted to start runs"); err != nil {
		return zero, err
	}

	if strings.TrimSpace(input.WorkspaceID) == "" {
		return zero, &ValidationFailed{Message: "workspaceId must be a non-empty string"}
	}
	if strings.TrimSpace(input.WorkflowID) == "" {
		return zero, &ValidationFailed{Message: "workflowId must be a non-empty string"}
	}
	workspaceID := primitives.WorkspaceID(input.WorkspaceID)
	workflowID := primitives.WorkflowID(input.WorkflowID)
	if err := ensureTenantMatch(app, workspaceID, ActionRunStart); err != nil {
		return zero, err
	}

	key := commandKey(app, startWorkflowCommand, input.IdempotencyKey)
	if cached, err := cachedOutput[StartWorkflowOutput](ctx, d.Idempotency, key); err != nil {
		return zero, err
	} else if cached != nil {
		return *cached, nil
	}

	workflow, err := d.Workflows.GetWorkflowByID(ctx, app.TenantID, workflowID)
	if err != nil {
		return zero, dependencyFailure(err, "workflow lookup failed")
	}
	if workflow == nil {
		return zero, &NotFound{Resource: "Workflow", Message: fmt.Sprintf("workflow %s not found", input.WorkflowID)}
	}
	if !workflow.Active {
		return zero, &Conflict{Message: fmt.Sprintf("workflow %s is not active", input.WorkflowID)}
	}
	if workflow.WorkspaceID != workspaceID {
		return zero, &Forbidden{Action: ActionRunStart, Message: "workspace mismatch for workflow reference"}
	}

	runID := primitives.RunID("run-" + d.IDs.NewID())
	createdAt := d.nowISO()
	run := domain.RunV1{
		SchemaVersion:     1,
		RunID:             runID,
		WorkspaceID:       workspaceID,
		WorkflowID:        workflowID,
		CorrelationID:     app.CorrelationID,
		ExecutionTier:     workflow.ExecutionTier,
		InitiatedByUserID: app.PrincipalID,
		Status:            domain.RunPending,
		CreatedAtISO:      createdAt,
	}

	event, err := domainCloudEvent(app, "run", "runs/"+string(runID), events.DomainEvent{
		SchemaVersion: 1,
		EventID:       primitives.EventID("evt-" + d.IDs.NewID()),
		EventType:     "RunStarted",
		AggregateKind: "Run",
		AggregateID:   string(runID),
		OccurredAtISO: createdAt,
		WorkspaceID:   workspaceID,
		CorrelationID: app.CorrelationID,
		ActorUserID:   app.PrincipalID,
		Payload: map[string]any{
			"runId":       string(runID),
			"workflowId":  string(workflowID),
			"workspaceId": string(workspaceID),
		},
	})
	if err != nil {
		return zero, dependencyFailure(err, "unable to build event envelope")
	}

	output := StartWorkflowOutput{RunID: runID}
	entry := d.actionEvidence(app, fmt.Sprintf("Started workflow %s as run %s.", workflowID, runID))
	err = d.commit(ctx, app, key, event, entry, output, func(ctx context.Context) error {
		return d.Runs.SaveRun(ctx, app.TenantID, run)
	})
	if err != nil {
		return zero, err
	}
	return output, nil
}
