package domain

import "github.com/45ck/Portarium-sub005/pkg/primitives"

// ApprovalStatus is the lifecycle state of an approval request. Pending is
// the only state that accepts a decision; every other state is terminal.
type ApprovalStatus string

const (
	ApprovalPending          ApprovalStatus = "Pending"
	ApprovalApproved         ApprovalStatus = "Approved"
	ApprovalDenied           ApprovalStatus = "Denied"
	ApprovalChangesRequested ApprovalStatus = "ChangesRequested"
)

// ApprovalDecision is the verdict a reviewer submits on a pending approval.
type ApprovalDecision string

const (
	DecisionApproved       ApprovalDecision = "Approved"
	DecisionDenied         ApprovalDecision = "Denied"
	DecisionRequestChanges ApprovalDecision = "RequestChanges"
)

// ValidApprovalDecision reports whether d names a known decision.
func ValidApprovalDecision(d ApprovalDecision) bool {
	switch d {
	case DecisionApproved, DecisionDenied, DecisionRequestChanges:
		return true
	}
	return false
}

// DecisionStatus maps a reviewer decision to the resulting approval status.
func DecisionStatus(d ApprovalDecision) ApprovalStatus {
	switch d {
	case DecisionApproved:
		return ApprovalApproved
	case DecisionRequestChanges:
		return ApprovalChangesRequested
	default:
		return ApprovalDenied
	}
}

// ApprovalV1 is an approval request raised by a run step that needs a human
// verdict. Decision fields are empty while the approval is Pending and set
// exactly once when it is decided.
type ApprovalV1 struct {
	SchemaVersion     int                    `json:"schemaVersion"`
	ApprovalID        primitives.ApprovalID  `json:"approvalId"`
	WorkspaceID       primitives.WorkspaceID `json:"workspaceId"`
	RunID             primitives.RunID       `json:"runId,omitempty"`
	Prompt            string                 `json:"prompt"`
	Status            ApprovalStatus         `json:"status"`
	RequestedByUserID primitives.UserID      `json:"requestedByUserId"`
	CreatedAtISO      string                 `json:"createdAtIso"`
	DecidedAtISO      string                 `json:"decidedAtIso,omitempty"`
	DecidedByUserID   primitives.UserID      `json:"decidedByUserId,omitempty"`
	Rationale         string                 `json:"rationale,omitempty"`
}
