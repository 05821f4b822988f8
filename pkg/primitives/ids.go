// Package primitives defines the opaque identifier types shared across the
// control plane. Each identifier is a distinct string type so that a RunID
// cannot be passed where a WorkflowID is expected; the wrappers carry no
// runtime cost.
package primitives

// TenantID identifies a tenant.
//
// In v1 a tenant and a workspace are the same identity: WorkspaceID is a
// type alias for TenantID, sharing one underlying type. Operational objects
// (runs, approvals, machine registrations) use the WorkspaceID spelling;
// cache and ledger keys use TenantID.
type TenantID string

// WorkspaceID identifies a workspace (exact alias for TenantID in v1).
type WorkspaceID = TenantID

// UserID identifies a human principal.
type UserID string

// MachineID identifies a registered machine.
type MachineID string

// AgentID identifies an agent hosted on a machine.
type AgentID string

// WorkflowID identifies a workflow definition.
type WorkflowID string

// RunID identifies a single workflow execution.
type RunID string

// CorrelationID links commands, events and evidence across aggregates.
type CorrelationID string

// EvidenceID identifies an evidence ledger entry.
type EvidenceID string

// ApprovalID identifies an approval request.
type ApprovalID string

// PlanID identifies a plan object.
type PlanID string

// WorkItemID identifies a unit of assigned work.
type WorkItemID string

// WorkforceMemberID identifies a human operator registered for work
// assignment.
type WorkforceMemberID string

// EventID identifies an integration event.
type EventID string

// HashSHA256 is a lowercase hex-encoded SHA-256 digest.
type HashSHA256 string

func (t TenantID) String() string      { return string(t) }
func (u UserID) String() string        { return string(u) }
func (m MachineID) String() string     { return string(m) }
func (a AgentID) String() string       { return string(a) }
func (w WorkflowID) String() string    { return string(w) }
func (r RunID) String() string         { return string(r) }
func (c CorrelationID) String() string { return string(c) }
func (e EvidenceID) String() string    { return string(e) }
func (a ApprovalID) String() string    { return string(a) }
func (p PlanID) String() string        { return string(p) }
func (w WorkItemID) String() string    { return string(w) }

func (w WorkforceMemberID) String() string { return string(w) }
func (e EventID) String() string       { return string(e) }
func (h HashSHA256) String() string    { return string(h) }
