// Package evidence implements the tamper-evident audit ledger: hash-chained
// evidence entries, per-tenant append serialization, and a write-once
// (WORM) payload store for full event snapshots.
package evidence

import "github.com/45ck/Portarium-sub005/pkg/primitives"

// Category classifies an evidence entry.
type Category string

const (
	CategoryAction   Category = "Action"
	CategoryApproval Category = "Approval"
	CategoryPlan     Category = "Plan"
	CategorySystem   Category = "System"
)

// ActorKind identifies who caused an evidence entry.
type ActorKind string

const (
	ActorUser    ActorKind = "User"
	ActorSystem  ActorKind = "System"
	ActorMachine ActorKind = "Machine"
)

// Actor records the principal behind an entry. UserID is set only for
// ActorUser.
type Actor struct {
	Kind   ActorKind         `json:"kind"`
	UserID primitives.UserID `json:"userId,omitempty"`
}

// Links connects an entry to the aggregates it describes.
type Links struct {
	ApprovalID primitives.ApprovalID `json:"approvalId,omitempty"`
	RunID      primitives.RunID      `json:"runId,omitempty"`
	PlanID     primitives.PlanID     `json:"planId,omitempty"`
	WorkItemID primitives.WorkItemID `json:"workItemId,omitempty"`
}

// PayloadRefKind names the kind of external payload a reference points at.
type PayloadRefKind string

// PayloadRefSnapshot marks a full-event snapshot held in the WORM store.
const PayloadRefSnapshot PayloadRefKind = "Snapshot"

// EntryPayloadRef points at a payload persisted outside the chain.
type EntryPayloadRef struct {
	Kind PayloadRefKind `json:"kind"`
	URI  string         `json:"uri"`
}

// EntryInput is the unsealed body of an evidence entry: everything except
// the chain fields (PreviousHash, HashSHA256), which are computed on append.
type EntryInput struct {
	SchemaVersion int                      `json:"schemaVersion"`
	EvidenceID    primitives.EvidenceID    `json:"evidenceId"`
	WorkspaceID   primitives.WorkspaceID   `json:"workspaceId"`
	CorrelationID primitives.CorrelationID `json:"correlationId"`
	OccurredAtISO string                   `json:"occurredAtIso"`
	Category      Category                 `json:"category"`
	Summary       string                   `json:"summary"`
	Actor         Actor                    `json:"actor"`
	Links         *Links                   `json:"links,omitempty"`
	PayloadRefs   []EntryPayloadRef        `json:"payloadRefs,omitempty"`
}

// Entry is a sealed, immutable evidence ledger entry. Once produced by
// AppendEntry it is never mutated; the chain fields make any retroactive
// edit detectable.
type Entry struct {
	SchemaVersion int                      `json:"schemaVersion"`
	EvidenceID    primitives.EvidenceID    `json:"evidenceId"`
	WorkspaceID   primitives.WorkspaceID   `json:"workspaceId"`
	CorrelationID primitives.CorrelationID `json:"correlationId"`
	OccurredAtISO string                   `json:"occurredAtIso"`
	Category      Category                 `json:"category"`
	Summary       string                   `json:"summary"`
	Actor         Actor                    `json:"actor"`
	Links         *Links                   `json:"links,omitempty"`
	PayloadRefs   []EntryPayloadRef        `json:"payloadRefs,omitempty"`
	PreviousHash  primitives.HashSHA256    `json:"previousHash,omitempty"`
	HashSHA256    primitives.HashSHA256    `json:"hashSha256"`
}

func (e Entry) body() EntryInput {
	return EntryInput{
		SchemaVersion: e.SchemaVersion,
		EvidenceID:    e.EvidenceID,
		WorkspaceID:   e.WorkspaceID,
		CorrelationID: e.CorrelationID,
		OccurredAtISO: e.OccurredAtISO,
		Category:      e.Category,
		Summary:       e.Summary,
		Actor:         e.Actor,
		Links:         e.Links,
		PayloadRefs:   e.PayloadRefs,
	}
}
