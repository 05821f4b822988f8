// Package events defines the integration event envelopes produced by the
// control plane: the CloudEvents 1.0 wire shape handed to subscribers and
// the internal domain event record it carries.
package events

import (
	"fmt"
	"strings"

	"github.com/45ck/Portarium-sub005/pkg/primitives"
)

// SpecVersion is the only CloudEvents spec version this plane emits.
const SpecVersion = "1.0"

// EventTypePrefix is the reverse-DNS prefix for all event type names.
const EventTypePrefix = "com.portarium."

// CloudEvent is the CloudEvents-compatible wire envelope. It is produced by
// domain logic, carried unchanged through the outbox and handed to the
// publisher verbatim. Extension attribute names are lowercase per the
// CloudEvents attribute naming rules.
type CloudEvent struct {
	ID            string                   `json:"id"`
	Type          string                   `json:"type"`
	SpecVersion   string                   `json:"specversion"`
	Source        string                   `json:"source"`
	TenantID      primitives.TenantID      `json:"tenantid"`
	CorrelationID primitives.CorrelationID `json:"correlationid"`
	Subject       string                   `json:"subject,omitempty"`
	Time          string                   `json:"time,omitempty"`
	Data          any                      `json:"data,omitempty"`
}

// NewCloudEventInput carries the fields required to build a wire event.
type NewCloudEventInput struct {
	Source        string
	EventType     string // reverse-DNS, e.g. "com.portarium.run.RunStarted"
	EventID       primitives.EventID
	TenantID      primitives.TenantID
	CorrelationID primitives.CorrelationID
	Subject       string
	OccurredAtISO string
	Data          any
}

// NewCloudEvent builds a CloudEvent envelope, validating the envelope-level
// attributes that downstream subscribers depend on.
func NewCloudEvent(in NewCloudEventInput) (CloudEvent, error) {
	if strings.TrimSpace(string(in.EventID)) == "" {
		return CloudEvent{}, fmt.Errorf("events: event id must be non-empty")
	}
	if strings.TrimSpace(in.Source) == "" {
		return CloudEvent{}, fmt.Errorf("events: source must be non-empty")
	}
	if !strings.HasPrefix(in.EventType, EventTypePrefix) {
		return CloudEvent{}, fmt.Errorf("events: event type %q must start with %q", in.EventType, EventTypePrefix)
	}
	if strings.TrimSpace(string(in.TenantID)) == "" {
		return CloudEvent{}, fmt.Errorf("events: tenant id must be non-empty")
	}
	if strings.TrimSpace(string(in.CorrelationID)) == "" {
		return CloudEvent{}, fmt.Errorf("events: correlation id must be non-empty")
	}
	return CloudEvent{
		ID:            string(in.EventID),
		Type:          in.EventType,
		SpecVersion:   SpecVersion,
		Source:        in.Source,
		TenantID:      in.TenantID,
		CorrelationID: in.CorrelationID,
		Subject:       in.Subject,
		Time:          in.OccurredAtISO,
		Data:          in.Data,
	}, nil
}
