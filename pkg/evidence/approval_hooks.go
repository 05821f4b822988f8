package evidence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/45ck/Portarium-sub005/pkg/events"
	"github.com/45ck/Portarium-sub005/pkg/primitives"
)

// Approval lifecycle event types recorded as evidence.
const (
	EventApprovalRequested        = "ApprovalRequested"
	EventApprovalGranted          = "ApprovalGranted"
	EventApprovalDenied           = "ApprovalDenied"
	EventApprovalChangesRequested = "ApprovalChangesRequested"
)

// ApprovalHooks records approval lifecycle domain events as hash-chained
// evidence entries with the full event payload snapshotted in the WORM
// store. Decision events (granted/denied) are compliance records and get a
// COMPLIANCE lock with the minimum seven-year retention; request-side
// events use a GOVERNANCE lock.
type ApprovalHooks struct {
	payloadStore PayloadStore
	log          Log
	bucket       string
}

// NewApprovalHooks wires hooks onto a payload store and evidence log.
// bucket names the WORM bucket receiving payload snapshots.
func NewApprovalHooks(payloadStore PayloadStore, log Log, bucket string) *ApprovalHooks {
	return &ApprovalHooks{payloadStore: payloadStore, log: log, bucket: bucket}
}

func isApprovalDecision(eventType string) bool {
	return eventType == EventApprovalGranted || eventType == EventApprovalDenied
}

func approvalSummary(evt events.DomainEvent) string {
	switch evt.EventType {
	case EventApprovalRequested:
		return fmt.Sprintf("Approval %s requested.", evt.AggregateID)
	case EventApprovalGranted:
		return fmt.Sprintf("Approval %s granted.", evt.AggregateID)
	case EventApprovalDenied:
		return fmt.Sprintf("Approval %s denied.", evt.AggregateID)
	case EventApprovalChangesRequested:
		return fmt.Sprintf("Changes requested on approval %s.", evt.AggregateID)
	default:
		return fmt.Sprintf("Approval %s event %s.", evt.AggregateID, evt.EventType)
	}
}

// Record snapshots the event payload into the WORM store and appends one
// chained evidence entry referencing it. The WORM write happens first so a
// chain entry never references a snapshot that was not durably stored.
func (h *ApprovalHooks) Record(ctx context.Context, evt events.DomainEvent) (Entry, error) {
	occurredAt, err := time.Parse(time.RFC3339, evt.OccurredAtISO)
	if err != nil {
		return Entry{}, fmt.Errorf("evidence: approval event %s has invalid timestamp: %w", evt.EventID, err)
	}

	snapshot, err := json.Marshal(evt)
	if err != nil {
		return Entry{}, fmt.Errorf("evidence: marshal approval event %s: %w", evt.EventID, err)
	}

	opts := PutOptions{LockMode: LockGovernance, RetainUntil: occurredAt.Add(MinComplianceRetention)}
	if isApprovalDecision(evt.EventType) {
		opts.LockMode = LockCompliance
	}
	if err := ValidatePutOptions(opts, occurredAt); err != nil {
		return Entry{}, err
	}

	ref := PayloadRef{
		Bucket: h.bucket,
		Key:    PayloadKey("workspaces", string(evt.WorkspaceID), "approvals", evt.AggregateID, string(evt.EventID)),
	}
	if err := h.payloadStore.Put(ctx, ref, snapshot, opts); err != nil {
		return Entry{}, err
	}

	actor := Actor{Kind: ActorSystem}
	if evt.ActorUserID != "" {
		actor = Actor{Kind: ActorUser, UserID: evt.ActorUserID}
	}

	var runID primitives.RunID
	if raw, ok := evt.Payload["runId"].(string); ok {
		runID = primitives.RunID(raw)
	}

	entry, err := h.log.AppendEntry(ctx, evt.WorkspaceID, EntryInput{
		SchemaVersion: 1,
		EvidenceID:    primitives.EvidenceID("evd-" + string(evt.EventID)),
		WorkspaceID:   evt.WorkspaceID,
		CorrelationID: evt.CorrelationID,
		OccurredAtISO: evt.OccurredAtISO,
		Category:      CategoryApproval,
		Summary:       approvalSummary(evt),
		Actor:         actor,
		Links: &Links{
			ApprovalID: primitives.ApprovalID(evt.AggregateID),
			RunID:      runID,
		},
		PayloadRefs: []EntryPayloadRef{{Kind: PayloadRefSnapshot, URI: h.payloadStore.URI(ref)}},
	})
	if err != nil {
		return Entry{}, fmt.Errorf("evidence: append approval entry for %s: %w", evt.EventID, err)
	}
	return entry, nil
}
