// Package store persists the control plane's entity records. Every read
// and write is scoped to one tenant; absence is reported as a nil record,
// not an error. Each store ships a reference in-memory implementation and
// a database/sql implementation that joins an open unit-of-work
// transaction.
package store

import (
	"context"

	"github.com/45ck/Portarium-sub005/pkg/domain"
	"github.com/45ck/Portarium-sub005/pkg/primitives"
)

// WorkspaceStore persists workspace records.
type WorkspaceStore interface {
	GetWorkspaceByID(ctx context.Context, tenantID primitives.TenantID, workspaceID primitives.WorkspaceID) (*domain.WorkspaceV1, error)
	GetWorkspaceByName(ctx context.Context, tenantID primitives.TenantID, name string) (*domain.WorkspaceV1, error)
	SaveWorkspace(ctx context.Context, tenantID primitives.TenantID, workspace domain.WorkspaceV1) error
}

// MachineRegistryStore persists machine registrations and the agent
// configurations bound to them.
type MachineRegistryStore interface {
	GetMachineRegistrationByID(ctx context.Context, tenantID primitives.TenantID, machineID primitives.MachineID) (*domain.MachineRegistrationV1, error)
	SaveMachineRegistration(ctx context.Context, tenantID primitives.TenantID, machine domain.MachineRegistrationV1) error
	GetAgentConfigByID(ctx context.Context, tenantID primitives.TenantID, agentID primitives.AgentID) (*domain.AgentConfigV1, error)
	SaveAgentConfig(ctx context.Context, tenantID primitives.TenantID, agent domain.AgentConfigV1) error
}

// WorkflowStore persists workflow definitions.
type WorkflowStore interface {
	GetWorkflowByID(ctx context.Context, tenantID primitives.TenantID, workflowID primitives.WorkflowID) (*domain.WorkflowV1, error)
	SaveWorkflow(ctx context.Context, tenantID primitives.TenantID, workflow domain.WorkflowV1) error
}

// RunStore persists workflow runs.
type RunStore interface {
	GetRunByID(ctx context.Context, tenantID primitives.TenantID, runID primitives.RunID) (*domain.RunV1, error)
	SaveRun(ctx context.Context, tenantID primitives.TenantID, run domain.RunV1) error
}

// ApprovalStore persists approval requests and their recorded decisions.
type ApprovalStore interface {
	GetApprovalByID(ctx context.Context, tenantID primitives.TenantID, approvalID primitives.ApprovalID) (*domain.ApprovalV1, error)
	SaveApproval(ctx context.Context, tenantID primitives.TenantID, approval domain.ApprovalV1) error
}

// WorkforceStore persists workforce members and the work items assigned to
// them.
type WorkforceStore interface {
	GetWorkforceMemberByID(ctx context.Context, tenantID primitives.TenantID, memberID primitives.WorkforceMemberID) (*domain.WorkforceMemberV1, error)
	SaveWorkforceMember(ctx context.Context, tenantID primitives.TenantID, member domain.WorkforceMemberV1) error
	GetWorkItemByID(ctx context.Context, tenantID primitives.TenantID, workItemID primitives.WorkItemID) (*domain.WorkItemV1, error)
	SaveWorkItem(ctx context.Context, tenantID primitives.TenantID, item domain.WorkItemV1) error
}
