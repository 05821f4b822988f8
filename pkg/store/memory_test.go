package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/45ck/Portarium-sub005/pkg/domain"
)

func TestMemoryWorkspaceStoreTenantScoping(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryWorkspaceStore()
	ws := domain.WorkspaceV1{SchemaVersion: 1, WorkspaceID: "ws-1", TenantID: "t-1", Name: "Primary"}
	require.NoError(t, s.SaveWorkspace(ctx, "t-1", ws))

	got, err := s.GetWorkspaceByID(ctx, "t-1", "ws-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Primary", got.Name)

	other, err := s.GetWorkspaceByID(ctx, "t-2", "ws-1")
	require.NoError(t, err)
	assert.Nil(t, other)
}

func TestMemoryWorkspaceStoreGetByName(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryWorkspaceStore()
	require.NoError(t, s.SaveWorkspace(ctx, "t-1", domain.WorkspaceV1{WorkspaceID: "ws-1", Name: "Primary"}))

	got, err := s.GetWorkspaceByName(ctx, "t-1", "Primary")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "ws-1", string(got.WorkspaceID))

	missing, err := s.GetWorkspaceByName(ctx, "t-1", "Secondary")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemoryMachineRegistrySnapshotRestore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryMachineRegistryStore()
	require.NoError(t, s.SaveMachineRegistration(ctx, "t-1",
		domain.MachineRegistrationV1{MachineID: "mach-1", Capabilities: []string{"email.send"}}))

	snapshot := s.Snapshot()
	require.NoError(t, s.SaveAgentConfig(ctx, "t-1", domain.AgentConfigV1{AgentID: "agent-1"}))
	s.Restore(snapshot)

	agent, err := s.GetAgentConfigByID(ctx, "t-1", "agent-1")
	require.NoError(t, err)
	assert.Nil(t, agent)

	machine, err := s.GetMachineRegistrationByID(ctx, "t-1", "mach-1")
	require.NoError(t, err)
	assert.NotNil(t, machine)
}

func TestMemoryApprovalStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryApprovalStore()
	require.NoError(t, s.SaveApproval(ctx, "t-1",
		domain.ApprovalV1{ApprovalID: "ap-1", WorkspaceID: "t-1", Status: domain.ApprovalPending}))

	got, err := s.GetApprovalByID(ctx, "t-1", "ap-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, domain.ApprovalPending, got.Status)

	other, err := s.GetApprovalByID(ctx, "t-2", "ap-1")
	require.NoError(t, err)
	assert.Nil(t, other)
}

func TestMemoryWorkforceSnapshotRestore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryWorkforceStore()
	require.NoError(t, s.SaveWorkforceMember(ctx, "t-1",
		domain.WorkforceMemberV1{MemberID: "wm-1", Availability: domain.AvailabilityAvailable}))

	snapshot := s.Snapshot()
	require.NoError(t, s.SaveWorkItem(ctx, "t-1", domain.WorkItemV1{WorkItemID: "wi-1"}))
	s.Restore(snapshot)

	item, err := s.GetWorkItemByID(ctx, "t-1", "wi-1")
	require.NoError(t, err)
	assert.Nil(t, item)

	member, err := s.GetWorkforceMemberByID(ctx, "t-1", "wm-1")
	require.NoError(t, err)
	assert.NotNil(t, member)
}

func TestMemoryRunStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryRunStore()
	run := domain.RunV1{RunID: "run-1", WorkflowID: "wf-1", Status: domain.RunPending}
	require.NoError(t, s.SaveRun(ctx, "t-1", run))

	got, err := s.GetRunByID(ctx, "t-1", "run-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, domain.RunPending, got.Status)
}
