package evidence

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/45ck/Portarium-sub005/pkg/events"
	"github.com/45ck/Portarium-sub005/pkg/primitives"
)

func approvalEvent(eventType, eventID string, payload map[string]any) events.DomainEvent {
	return events.DomainEvent{
		SchemaVersion: 1,
		EventID:       primitives.EventID("evt-" + eventID),
		EventType:     eventType,
		AggregateKind: "Approval",
		AggregateID:   "approval-1",
		OccurredAtISO: "2026-02-23T10:00:00Z",
		WorkspaceID:   "ws-approval-test",
		CorrelationID: "corr-approval-1",
		ActorUserID:   "user-reviewer-1",
		Payload:       payload,
	}
}

func TestApprovalHooksChainAllLifecycleEvents(t *testing.T) {
	ctx := context.Background()
	payloadStore := NewMemoryPayloadStore()
	log := NewMemoryLog(SHA256Hasher{})
	hooks := NewApprovalHooks(payloadStore, log, "evidence")

	for i, eventType := range []string{
		EventApprovalRequested, EventApprovalGranted, EventApprovalDenied, EventApprovalChangesRequested,
	} {
		_, err := hooks.Record(ctx, approvalEvent(eventType, string(rune('a'+i)), map[string]any{"runId": "run-1"}))
		require.NoError(t, err)
	}

	entries, err := log.ListEntries(ctx, "ws-approval-test")
	require.NoError(t, err)
	assert.Len(t, entries, 4)
	assert.True(t, VerifyChain(entries, SHA256Hasher{}).OK)
	for _, entry := range entries {
		assert.Equal(t, CategoryApproval, entry.Category)
		require.NotNil(t, entry.Links)
		assert.Equal(t, "approval-1", string(entry.Links.ApprovalID))
		require.Len(t, entry.PayloadRefs, 1)
		assert.Equal(t, PayloadRefSnapshot, entry.PayloadRefs[0].Kind)
		assert.True(t, strings.HasPrefix(entry.PayloadRefs[0].URI, "mem://evidence/"),
			"snapshot URI must carry the backend scheme, got %s", entry.PayloadRefs[0].URI)
	}
}

func TestApprovalHooksDecisionGetsComplianceLock(t *testing.T) {
	ctx := context.Background()
	payloadStore := NewMemoryPayloadStore()
	hooks := NewApprovalHooks(payloadStore, NewMemoryLog(SHA256Hasher{}), "evidence")

	_, err := hooks.Record(ctx, approvalEvent(EventApprovalGranted, "grant-1", map[string]any{"runId": "run-1"}))
	require.NoError(t, err)

	ref := PayloadRef{
		Bucket: "evidence",
		Key:    PayloadKey("workspaces", "ws-approval-test", "approvals", "approval-1", "evt-grant-1"),
	}
	stored, err := payloadStore.Get(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, LockCompliance, stored.LockMode)

	eventAt := time.Date(2026, 2, 23, 10, 0, 0, 0, time.UTC)
	assert.GreaterOrEqual(t, stored.RetainUntil.Sub(eventAt), MinComplianceRetention)
}

func TestApprovalHooksRequestGetsGovernanceLock(t *testing.T) {
	ctx := context.Background()
	payloadStore := NewMemoryPayloadStore()
	hooks := NewApprovalHooks(payloadStore, NewMemoryLog(SHA256Hasher{}), "evidence")

	_, err := hooks.Record(ctx, approvalEvent(EventApprovalRequested, "req-1", nil))
	require.NoError(t, err)

	ref := PayloadRef{
		Bucket: "evidence",
		Key:    PayloadKey("workspaces", "ws-approval-test", "approvals", "approval-1", "evt-req-1"),
	}
	stored, err := payloadStore.Get(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, LockGovernance, stored.LockMode)
}

func TestApprovalHooksEventIDReuseIsFatal(t *testing.T) {
	ctx := context.Background()
	hooks := NewApprovalHooks(NewMemoryPayloadStore(), NewMemoryLog(SHA256Hasher{}), "evidence")

	evt := approvalEvent(EventApprovalRequested, "dup-1", nil)
	_, err := hooks.Record(ctx, evt)
	require.NoError(t, err)

	_, err = hooks.Record(ctx, evt)
	assert.True(t, errors.Is(err, ErrPayloadExists), "evidence-id reuse must surface the WORM error, got %v", err)
}

func TestApprovalHooksRejectsBadTimestamp(t *testing.T) {
	hooks := NewApprovalHooks(NewMemoryPayloadStore(), NewMemoryLog(SHA256Hasher{}), "evidence")
	evt := approvalEvent(EventApprovalRequested, "bad-ts", nil)
	evt.OccurredAtISO = "yesterday"
	_, err := hooks.Record(context.Background(), evt)
	assert.Error(t, err)
}
