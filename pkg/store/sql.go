package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/45ck/Portarium-sub005/pkg/domain"
	"github.com/45ck/Portarium-sub005/pkg/primitives"
	"github.com/45ck/Portarium-sub005/pkg/uow"
)

// SQLEntityStore implements every entity store interface over one
// relational database. Records are kept as JSON rows keyed by
// (tenant_id, id); writes join an open unit-of-work transaction.
type SQLEntityStore struct {
	db *sql.DB
}

// NewSQLEntityStore creates an entity store on db.
func NewSQLEntityStore(db *sql.DB) *SQLEntityStore {
	return &SQLEntityStore{db: db}
}

const sqlEntitySchema = `
CREATE TABLE IF NOT EXISTS workspaces (
	tenant_id TEXT NOT NULL,
	workspace_id TEXT NOT NULL,
	name TEXT NOT NULL,
	record_json TEXT NOT NULL,
	PRIMARY KEY (tenant_id, workspace_id)
);
CREATE TABLE IF NOT EXISTS machine_registrations (
	tenant_id TEXT NOT NULL,
	machine_id TEXT NOT NULL,
	record_json TEXT NOT NULL,
	PRIMARY KEY (tenant_id, machine_id)
);
CREATE TABLE IF NOT EXISTS agent_configs (
	tenant_id TEXT NOT NULL,
	agent_id TEXT NOT NULL,
	record_json TEXT NOT NULL,
	PRIMARY KEY (tenant_id, agent_id)
);
CREATE TABLE IF NOT EXISTS workflows (
	tenant_id TEXT NOT NULL,
	workflow_id TEXT NOT NULL,
	record_json TEXT NOT NULL,
	PRIMARY KEY (tenant_id, workflow_id)
);
CREATE TABLE IF NOT EXISTS runs (
	tenant_id TEXT NOT NULL,
	run_id TEXT NOT NULL,
	record_json TEXT NOT NULL,
	PRIMARY KEY (tenant_id, run_id)
);
CREATE TABLE IF NOT EXISTS approvals (
	tenant_id TEXT NOT NULL,
	approval_id TEXT NOT NULL,
	record_json TEXT NOT NULL,
	PRIMARY KEY (tenant_id, approval_id)
);
CREATE TABLE IF NOT EXISTS workforce_members (
	tenant_id TEXT NOT NULL,
	member_id TEXT NOT NULL,
	record_json TEXT NOT NULL,
	PRIMARY KEY (tenant_id, member_id)
);
CREATE TABLE IF NOT EXISTS work_items (
	tenant_id TEXT NOT NULL,
	work_item_id TEXT NOT NULL,
	record_json TEXT NOT NULL,
	PRIMARY KEY (tenant_id, work_item_id)
);
`

// Init creates the backing tables.
func (s *SQLEntityStore) Init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqlEntitySchema)
	return err
}

func getRecord[T any](ctx context.Context, q uow.DBTX, query string, args ...any) (*T, error) {
	var raw string
	if err := q.QueryRowContext(ctx, query, args...).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: get record: %w", err)
	}
	var record T
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, fmt.Errorf("store: corrupt record: %w", err)
	}
	return &record, nil
}

func (s *SQLEntityStore) upsert(ctx context.Context, table, idColumn string, tenantID primitives.TenantID, id string, record any) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("store: marshal record: %w", err)
	}
	_, err = uow.Querier(ctx, s.db).ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (tenant_id, %s, record_json)
		VALUES ($1, $2, $3)
		ON CONFLICT (tenant_id, %s) DO UPDATE SET record_json = excluded.record_json
	`, table, idColumn, idColumn), string(tenantID), id, string(raw))
	if err != nil {
		return fmt.Errorf("store: save %s: %w", table, err)
	}
	return nil
}

// GetWorkspaceByID implements WorkspaceStore.
func (s *SQLEntityStore) GetWorkspaceByID(ctx context.Context, tenantID primitives.TenantID, workspaceID primitives.WorkspaceID) (*domain.WorkspaceV1, error) {
	return getRecord[domain.WorkspaceV1](ctx, uow.Querier(ctx, s.db),
		`SELECT record_json FROM workspaces WHERE tenant_id = $1 AND workspace_id = $2`,
		string(tenantID), string(workspaceID))
}

// GetWorkspaceByName implements WorkspaceStore.
func (s *SQLEntityStore) GetWorkspaceByName(ctx context.Context, tenantID primitives.TenantID, name string) (*domain.WorkspaceV1, error) {
	return getRecord[domain.WorkspaceV1](ctx, uow.Querier(ctx, s.db),
		`SELECT record_json FROM workspaces WHERE tenant_id = $1 AND name = $2`,
		string(tenantID), name)
}

// SaveWorkspace implements WorkspaceStore.
func (s *SQLEntityStore) SaveWorkspace(ctx context.Context, tenantID primitives.TenantID, workspace domain.WorkspaceV1) error {
	raw, err := json.Marshal(workspace)
	if err != nil {
		return fmt.Errorf("store: marshal record: %w", err)
	}
	_, err = uow.Querier(ctx, s.db).ExecContext(ctx, `
		INSERT INTO workspaces (tenant_id, workspace_id, name, record_json)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (tenant_id, workspace_id) DO UPDATE SET name = excluded.name, record_json = excluded.record_json
	`, string(tenantID), string(workspace.WorkspaceID), workspace.Name, string(raw))
	if err != nil {
		return fmt.Errorf("store: save workspaces: %w", err)
	}
	return nil
}

// GetMachineRegistrationByID implements MachineRegistryStore.
func (s *SQLEntityStore) GetMachineRegistrationByID(ctx context.Context, tenantID primitives.TenantID, machineID primitives.MachineID) (*domain.MachineRegistrationV1, error) {
	return getRecord[domain.MachineRegistrationV1](ctx, uow.Querier(ctx, s.db),
		`SELECT record_json FROM machine_registrations WHERE tenant_id = $1 AND machine_id = $2`,
		string(tenantID), string(machineID))
}

// SaveMachineRegistration implements MachineRegistryStore.
func (s *SQLEntityStore) SaveMachineRegistration(ctx context.Context, tenantID primitives.TenantID, machine domain.MachineRegistrationV1) error {
	return s.upsert(ctx, "machine_registrations", "machine_id", tenantID, string(machine.MachineID), machine)
}

// GetAgentConfigByID implements MachineRegistryStore.
func (s *SQLEntityStore) GetAgentConfigByID(ctx context.Context, tenantID primitives.TenantID, agentID primitives.AgentID) (*domain.AgentConfigV1, error) {
	return getRecord[domain.AgentConfigV1](ctx, uow.Querier(ctx, s.db),
		`SELECT record_json FROM agent_configs WHERE tenant_id = $1 AND agent_id = $2`,
		string(tenantID), string(agentID))
}

// SaveAgentConfig implements MachineRegistryStore.
func (s *SQLEntityStore) SaveAgentConfig(ctx context.Context, tenantID primitives.TenantID, agent domain.AgentConfigV1) error {
	return s.upsert(ctx, "agent_configs", "agent_id", tenantID, string(agent.AgentID), agent)
}

// GetWorkflowByID implements WorkflowStore.
func (s *SQLEntityStore) GetWorkflowByID(ctx context.Context, tenantID primitives.TenantID, workflowID primitives.WorkflowID) (*domain.WorkflowV1, error) {
	return getRecord[domain.WorkflowV1](ctx, uow.Querier(ctx, s.db),
		`SELECT record_json FROM workflows WHERE tenant_id = $1 AND workflow_id = $2`,
		string(tenantID), string(workflowID))
}

// SaveWorkflow implements WorkflowStore.
func (s *SQLEntityStore) SaveWorkflow(ctx context.Context, tenantID primitives.TenantID, workflow domain.WorkflowV1) error {
	return s.upsert(ctx, "workflows", "workflow_id", tenantID, string(workflow.WorkflowID), workflow)
}

// GetApprovalByID implements ApprovalStore.
func (s *SQLEntityStore) GetApprovalByID(ctx context.Context, tenantID primitives.TenantID, approvalID primitives.ApprovalID) (*domain.ApprovalV1, error) {
	return getRecord[domain.ApprovalV1](ctx, uow.Querier(ctx, s.db),
		`SELECT record_json FROM approvals WHERE tenant_id = $1 AND approval_id = $2`,
		string(tenantID), string(approvalID))
}

// SaveApproval implements ApprovalStore.
func (s *SQLEntityStore) SaveApproval(ctx context.Context, tenantID primitives.TenantID, approval domain.ApprovalV1) error {
	return s.upsert(ctx, "approvals", "approval_id", tenantID, string(approval.ApprovalID), approval)
}

// GetWorkforceMemberByID implements WorkforceStore.
func (s *SQLEntityStore) GetWorkforceMemberByID(ctx context.Context, tenantID primitives.TenantID, memberID primitives.WorkforceMemberID) (*domain.WorkforceMemberV1, error) {
	return getRecord[domain.WorkforceMemberV1](ctx, uow.Querier(ctx, s.db),
		`SELECT record_json FROM workforce_members WHERE tenant_id = $1 AND member_id = $2`,
		string(tenantID), string(memberID))
}

// SaveWorkforceMember implements WorkforceStore.
func (s *SQLEntityStore) SaveWorkforceMember(ctx context.Context, tenantID primitives.TenantID, member domain.WorkforceMemberV1) error {
	return s.upsert(ctx, "workforce_members", "member_id", tenantID, string(member.MemberID), member)
}

// GetWorkItemByID implements WorkforceStore.
func (s *SQLEntityStore) GetWorkItemByID(ctx context.Context, tenantID primitives.TenantID, workItemID primitives.WorkItemID) (*domain.WorkItemV1, error) {
	return getRecord[domain.WorkItemV1](ctx, uow.Querier(ctx, s.db),
		`SELECT record_json FROM work_items WHERE tenant_id = $1 AND work_item_id = $2`,
		string(tenantID), string(workItemID))
}

// SaveWorkItem implements WorkforceStore.
func (s *SQLEntityStore) SaveWorkItem(ctx context.Context, tenantID primitives.TenantID, item domain.WorkItemV1) error {
	return s.upsert(ctx, "work_items", "work_item_id", tenantID, string(item.WorkItemID), item)
}

// GetRunByID implements RunStore.
func (s *SQLEntityStore) GetRunByID(ctx context.Context, tenantID primitives.TenantID, runID primitives.RunID) (*domain.RunV1, error) {
	return getRecord[domain.RunV1](ctx, uow.Querier(ctx, s.db),
		`SELECT record_json FROM runs WHERE tenant_id = $1 AND run_id = $2`,
		string(tenantID), string(runID))
}

// SaveRun implements RunStore.
func (s *SQLEntityStore) SaveRun(ctx context.Context, tenantID primitives.TenantID, run domain.RunV1) error {
	return s.upsert(ctx, "runs", "run_id", tenantID, string(run.RunID), run)
}
