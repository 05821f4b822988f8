package store

import (
	"context"
	"sync"

	"github.com/45ck/Portarium-sub005/pkg/domain"
	"github.com/45ck/Portarium-sub005/pkg/primitives"
)

type tenantKey struct {
	tenant primitives.TenantID
	id     string
}

// memoryTable is a tenant-scoped record map shared by the in-memory stores.
type memoryTable[T any] struct {
	mu      sync.RWMutex
	records map[tenantKey]T
}

func newMemoryTable[T any]() *memoryTable[T] {
	return &memoryTable[T]{records: make(map[tenantKey]T)}
}

func (t *memoryTable[T]) get(tenant primitives.TenantID, id string) *T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	record, ok := t.records[tenantKey{tenant: tenant, id: id}]
	if !ok {
		return nil
	}
	return &record
}

func (t *memoryTable[T]) put(tenant primitives.TenantID, id string, record T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records[tenantKey{tenant: tenant, id: id}] = record
}

func (t *memoryTable[T]) snapshot() map[tenantKey]T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	snap := make(map[tenantKey]T, len(t.records))
	for k, v := range t.records {
		snap[k] = v
	}
	return snap
}

func (t *memoryTable[T]) restore(snap map[tenantKey]T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records = make(map[tenantKey]T, len(snap))
	for k, v := range snap {
		t.records[k] = v
	}
}

// MemoryWorkspaceStore is the reference WorkspaceStore.
type MemoryWorkspaceStore struct {
	table *memoryTable[domain.WorkspaceV1]
}

// NewMemoryWorkspaceStore creates an empty workspace store.
func NewMemoryWorkspaceStore() *MemoryWorkspaceStore {
	return &MemoryWorkspaceStore{table: newMemoryTable[domain.WorkspaceV1]()}
}

// GetWorkspaceByID implements WorkspaceStore.
func (s *MemoryWorkspaceStore) GetWorkspaceByID(_ context.Context, tenantID primitives.TenantID, workspaceID primitives.WorkspaceID) (*domain.WorkspaceV1, error) {
	return s.table.get(tenantID, string(workspaceID)), nil
}

// GetWorkspaceByName implements WorkspaceStore.
func (s *MemoryWorkspaceStore) GetWorkspaceByName(_ context.Context, tenantID primitives.TenantID, name string) (*domain.WorkspaceV1, error) {
	s.table.mu.RLock()
	defer s.table.mu.RUnlock()
	for key, ws := range s.table.records {
		if key.tenant == tenantID && ws.Name == name {
			match := ws
			return &match, nil
		}
	}
	return nil, nil
}

// SaveWorkspace implements WorkspaceStore.
func (s *MemoryWorkspaceStore) SaveWorkspace(_ context.Context, tenantID primitives.TenantID, workspace domain.WorkspaceV1) error {
	s.table.put(tenantID, string(workspace.WorkspaceID), workspace)
	return nil
}

// Snapshot returns a copy of the store for unit-of-work staging.
func (s *MemoryWorkspaceStore) Snapshot() any { return s.table.snapshot() }

// Restore replaces the store with an earlier snapshot.
func (s *MemoryWorkspaceStore) Restore(snapshot any) {
	if snap, ok := snapshot.(map[tenantKey]domain.WorkspaceV1); ok {
		s.table.restore(snap)
	}
}

// MemoryMachineRegistryStore is the reference MachineRegistryStore.
type MemoryMachineRegistryStore struct {
	machines *memoryTable[domain.MachineRegistrationV1]
	agents   *memoryTable[domain.AgentConfigV1]
}

// NewMemoryMachineRegistryStore creates an empty machine registry.
func NewMemoryMachineRegistryStore() *MemoryMachineRegistryStore {
	return &MemoryMachineRegistryStore{
		machines: newMemoryTable[domain.MachineRegistrationV1](),
		agents:   newMemoryTable[domain.AgentConfigV1](),
	}
}

// GetMachineRegistrationByID implements MachineRegistryStore.
func (s *MemoryMachineRegistryStore) GetMachineRegistrationByID(_ context.Context, tenantID primitives.TenantID, machineID primitives.MachineID) (*domain.MachineRegistrationV1, error) {
	return s.machines.get(tenantID, string(machineID)), nil
}

// SaveMachineRegistration implements MachineRegistryStore.
func (s *MemoryMachineRegistryStore) SaveMachineRegistration(_ context.Context, tenantID primitives.TenantID, machine domain.MachineRegistrationV1) error {
	s.machines.put(tenantID, string(machine.MachineID), machine)
	return nil
}

// GetAgentConfigByID implements MachineRegistryStore.
func (s *MemoryMachineRegistryStore) GetAgentConfigByID(_ context.Context, tenantID primitives.TenantID, agentID primitives.AgentID) (*domain.AgentConfigV1, error) {
	return s.agents.get(tenantID, string(agentID)), nil
}

// SaveAgentConfig implements MachineRegistryStore.
func (s *MemoryMachineRegistryStore) SaveAgentConfig(_ context.Context, tenantID primitives.TenantID, agent domain.AgentConfigV1) error {
	s.agents.put(tenantID, string(agent.AgentID), agent)
	return nil
}

type machineRegistrySnapshot struct {
	machines map[tenantKey]domain.MachineRegistrationV1
	agents   map[tenantKey]domain.AgentConfigV1
}

// Snapshot returns a copy of the registry for unit-of-work staging.
func (s *MemoryMachineRegistryStore) Snapshot() any {
	return machineRegistrySnapshot{machines: s.machines.snapshot(), agents: s.agents.snapshot()}
}

// Restore replaces the registry with an earlier snapshot.
func (s *MemoryMachineRegistryStore) Restore(snapshot any) {
	if snap, ok := snapshot.(machineRegistrySnapshot); ok {
		s.machines.restore(snap.machines)
		s.agents.restore(snap.agents)
	}
}

// MemoryWorkflowStore is the reference WorkflowStore.
type MemoryWorkflowStore struct {
	table *memoryTable[domain.WorkflowV1]
}

// NewMemoryWorkflowStore creates an empty workflow store.
func NewMemoryWorkflowStore() *MemoryWorkflowStore {
	return &MemoryWorkflowStore{table: newMemoryTable[domain.WorkflowV1]()}
}

// GetWorkflowByID implements WorkflowStore.
func (s *MemoryWorkflowStore) GetWorkflowByID(_ context.Context, tenantID primitives.TenantID, workflowID primitives.WorkflowID) (*domain.WorkflowV1, error) {
	return s.table.get(tenantID, string(workflowID)), nil
}

// SaveWorkflow implements WorkflowStore.
func (s *MemoryWorkflowStore) SaveWorkflow(_ context.Context, tenantID primitives.TenantID, workflow domain.WorkflowV1) error {
	s.table.put(tenantID, string(workflow.WorkflowID), workflow)
	return nil
}

// Snapshot returns a copy of the store for unit-of-work staging.
func (s *MemoryWorkflowStore) Snapshot() any { return s.table.snapshot() }

// Restore replaces the store with an earlier snapshot.
func (s *MemoryWorkflowStore) Restore(snapshot any) {
	if snap, ok := snapshot.(map[tenantKey]domain.WorkflowV1); ok {
		s.table.restore(snap)
	}
}

// MemoryApprovalStore is the reference ApprovalStore.
type MemoryApprovalStore struct {
	table *memoryTable[domain.ApprovalV1]
}

// NewMemoryApprovalStore creates an empty approval store.
func NewMemoryApprovalStore() *MemoryApprovalStore {
	return &MemoryApprovalStore{table: newMemoryTable[domain.ApprovalV1]()}
}

// GetApprovalByID implements ApprovalStore.
func (s *MemoryApprovalStore) GetApprovalByID(_ context.Context, tenantID primitives.TenantID, approvalID primitives.ApprovalID) (*domain.ApprovalV1, error) {
	return s.table.get(tenantID, string(approvalID)), nil
}

// SaveApproval implements ApprovalStore.
func (s *MemoryApprovalStore) SaveApproval(_ context.Context, tenantID primitives.TenantID, approval domain.ApprovalV1) error {
	s.table.put(tenantID, string(approval.ApprovalID), approval)
	return nil
}

// Snapshot returns a copy of the store for unit-of-work staging.
func (s *MemoryApprovalStore) Snapshot() any { return s.table.snapshot() }

// Restore replaces the store with an earlier snapshot.
func (s *MemoryApprovalStore) Restore(snapshot any) {
	if snap, ok := snapshot.(map[tenantKey]domain.ApprovalV1); ok {
		s.table.restore(snap)
	}
}

// MemoryWorkforceStore is the reference WorkforceStore.
type MemoryWorkforceStore struct {
	members *memoryTable[domain.WorkforceMemberV1]
	items   *memoryTable[domain.WorkItemV1]
}

// NewMemoryWorkforceStore creates an empty workforce store.
func NewMemoryWorkforceStore() *MemoryWorkforceStore {
	return &MemoryWorkforceStore{
		members: newMemoryTable[domain.WorkforceMemberV1](),
		items:   newMemoryTable[domain.WorkItemV1](),
	}
}

// GetWorkforceMemberByID implements WorkforceStore.
func (s *MemoryWorkforceStore) GetWorkforceMemberByID(_ context.Context, tenantID primitives.TenantID, memberID primitives.WorkforceMemberID) (*domain.WorkforceMemberV1, error) {
	return s.members.get(tenantID, string(memberID)), nil
}

// SaveWorkforceMember implements WorkforceStore.
func (s *MemoryWorkforceStore) SaveWorkforceMember(_ context.Context, tenantID primitives.TenantID, member domain.WorkforceMemberV1) error {
	s.members.put(tenantID, string(member.MemberID), member)
	return nil
}

// GetWorkItemByID implements WorkforceStore.
func (s *MemoryWorkforceStore) GetWorkItemByID(_ context.Context, tenantID primitives.TenantID, workItemID primitives.WorkItemID) (*domain.WorkItemV1, error) {
	return s.items.get(tenantID, string(workItemID)), nil
}

// SaveWorkItem implements WorkforceStore.
func (s *MemoryWorkforceStore) SaveWorkItem(_ context.Context, tenantID primitives.TenantID, item domain.WorkItemV1) error {
	s.items.put(tenantID, string(item.WorkItemID), item)
	return nil
}

type workforceSnapshot struct {
	members map[tenantKey]domain.WorkforceMemberV1
	items   map[tenantKey]domain.WorkItemV1
}

// Snapshot returns a copy of the store for unit-of-work staging.
func (s *MemoryWorkforceStore) Snapshot() any {
	return workforceSnapshot{members: s.members.snapshot(), items: s.items.snapshot()}
}

// Restore replaces the store with an earlier snapshot.
func (s *MemoryWorkforceStore) Restore(snapshot any) {
	if snap, ok := snapshot.(workforceSnapshot); ok {
		s.members.restore(snap.members)
		s.items.restore(snap.items)
	}
}

// MemoryRunStore is the reference RunStore.
type MemoryRunStore struct {
	table *memoryTable[domain.RunV1]
}

// NewMemoryRunStore creates an empty run store.
func NewMemoryRunStore() *MemoryRunStore {
	return &MemoryRunStore{table: newMemoryTable[domain.RunV1]()}
}

// GetRunByID implements RunStore.
func (s *MemoryRunStore) GetRunByID(_ context.Context, tenantID primitives.TenantID, runID primitives.RunID) (*domain.RunV1, error) {
	return s.table.get(tenantID, string(runID)), nil
}

// SaveRun implements RunStore.
func (s *MemoryRunStore) SaveRun(_ context.Context, tenantID primitives.TenantID, run domain.RunV1) error {
	s.table.put(tenantID, string(run.RunID), run)
	return nil
}

// Snapshot returns a copy of the store for unit-of-work staging.
func (s *MemoryRunStore) Snapshot() any { return s.table.snapshot() }

// Restore replaces the store with an earlier snapshot.
func (s *MemoryRunStore) Restore(snapshot any) {
	if snap, ok := snapshot.(map[tenantKey]domain.RunV1); ok {
		s.table.restore(snap)
	}
}
