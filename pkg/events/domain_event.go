package events

import "github.com/45ck/Portarium-sub005/pkg/primitives"

// DomainEvent is the internal record of a state change, carried as the
// CloudEvent data payload and consumed by evidence hooks.
type DomainEvent struct {
	SchemaVersion int                      `json:"schemaVersion"`
	EventID       primitives.EventID       `json:"eventId"`
	EventType     string                   `json:"eventType"`
	AggregateKind string                   `json:"aggregateKind"`
	AggregateID   string                   `json:"aggregateId"`
	OccurredAtISO string                   `json:"occurredAtIso"`
	WorkspaceID   primitives.WorkspaceID   `json:"workspaceId"`
	CorrelationID primitives.CorrelationID `json:"correlationId"`
	ActorUserID   primitives.UserID        `json:"actorUserId,omitempty"`
	Payload       map[string]any           `json:"payload,omitempty"`
}
