package domain

import "github.com/45ck/Portarium-sub005/pkg/primitives"

// WorkflowV1 is a startable workflow definition reference. Only active
// workflows may be started.
type WorkflowV1 struct {
	SchemaVersion int                    `json:"schemaVersion"`
	WorkflowID    primitives.WorkflowID  `json:"workflowId"`
	WorkspaceID   primitives.WorkspaceID `json:"workspaceId"`
	Name          string                 `json:"name"`
	Active        bool                   `json:"active"`
	ExecutionTier ExecutionTier          `json:"executionTier"`
}

// ParseWorkflowV1 validates and decodes a workflow payload.
func ParseWorkflowV1(raw []byte) (WorkflowV1, error) {
	var w WorkflowV1
	if err := parseRecord("workflow-v1", "Workflow", raw, &w); err != nil {
		return WorkflowV1{}, err
	}
	return w, nil
}

// RunV1 is one execution of a workflow. The execution tier is copied from
// the workflow at start time so later workflow edits cannot change the
// approval requirements of a run already in flight.
type RunV1 struct {
	SchemaVersion     int                      `json:"schemaVersion"`
	RunID             primitives.RunID         `json:"runId"`
	WorkspaceID       primitives.WorkspaceID   `json:"workspaceId"`
	WorkflowID        primitives.WorkflowID    `json:"workflowId"`
	CorrelationID     primitives.CorrelationID `json:"correlationId"`
	ExecutionTier     ExecutionTier            `json:"executionTier"`
	InitiatedByUserID primitives.UserID        `json:"initiatedByUserId"`
	Status            RunStatus                `json:"status"`
	CreatedAtISO      string                   `json:"createdAtIso"`
}

// ParseRunV1 validates and decodes a run payload.
func ParseRunV1(raw []byte) (RunV1, error) {
	var r RunV1
	if err := parseRecord("run-v1", "Run", raw, &r); err != nil {
		return RunV1{}, err
	}
	return r, nil
}
