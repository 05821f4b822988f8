package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/45ck/Portarium-sub005/pkg/events"
	"github.com/45ck/Portarium-sub005/pkg/evidence"
	"github.com/45ck/Portarium-sub005/pkg/idempotency"
	"github.com/45ck/Portarium-sub005/pkg/outbox"
	"github.com/45ck/Portarium-sub005/pkg/primitives"
	"github.com/45ck/Portarium-sub005/pkg/store"
	"github.com/45ck/Portarium-sub005/pkg/uow"
)

// EventSource is the CloudEvents source attribute for events emitted by
// the command layer.
const EventSource = "portarium.control-plane"

// ApprovalRecorder snapshots an approval lifecycle event into the WORM
// store and appends the chained evidence entry referencing it. Satisfied by
// *evidence.ApprovalHooks.
type ApprovalRecorder interface {
	Record(ctx context.Context, evt events.DomainEvent) (evidence.Entry, error)
}

// Deps wires the ports every command needs. Limiter is optional; a nil
// limiter disables rate limiting.
type Deps struct {
	Authorization    AuthorizationPort
	Clock            Clock
	IDs              IDGenerator
	Idempotency      idempotency.Store
	UnitOfWork       uow.UnitOfWork
	Workspaces       store.WorkspaceStore
	Machines         store.MachineRegistryStore
	Workflows        store.WorkflowStore
	Runs             store.RunStore
	Approvals        store.ApprovalStore
	Workforce        store.WorkforceStore
	Evidence         evidence.Log
	ApprovalEvidence ApprovalRecorder
	Outbox           outbox.Store
	Limiter          *RateLimiter
}

func (d Deps) authorize(ctx context.Context, app AppContext, action, denied string) error {
	allowed, err := d.Authorization.IsAllowed(ctx, app, action)
	if err != nil {
		return dependencyFailure(err, "authorization check failed")
	}
	if !allowed {
		return &Forbidden{Action: action, Message: denied}
	}
	return nil
}

func commandKey(app AppContext, commandName, requestKey string) idempotency.Key {
	return idempotency.Key{
		TenantID:    app.TenantID,
		CommandName: commandName,
		RequestKey:  requestKey,
	}
}

// cachedOutput returns the previously produced output for key, decoded
// into T, or nil on a cache miss.
func cachedOutput[T any](ctx context.Context, cache idempotency.Store, key idempotency.Key) (*T, error) {
	raw, ok, err := cache.Get(ctx, key)
	if err != nil {
		return nil, dependencyFailure(err, "idempotency lookup failed")
	}
	if !ok {
		return nil, nil
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, dependencyFailure(err, "cached command output is corrupt")
	}
	return &out, nil
}

func cacheOutput(ctx context.Context, cache idempotency.Store, key idempotency.Key, output any) error {
	raw, err := json.Marshal(output)
	if err != nil {
		return fmt.Errorf("commands: marshal output: %w", err)
	}
	return cache.Set(ctx, key, raw)
}

func (d Deps) nowISO() string {
	return d.Clock.Now().UTC().Format(time.RFC3339Nano)
}

// actionEvidence builds the single Action-category evidence entry a
// command appends on success.
func (d Deps) actionEvidence(app AppContext, summary string) evidence.EntryInput {
	return evidence.EntryInput{
		SchemaVersion: 1,
		EvidenceID:    primitives.EvidenceID("evd-" + d.IDs.NewID()),
		WorkspaceID:   app.TenantID,
		CorrelationID: app.CorrelationID,
		OccurredAtISO: d.nowISO(),
		Category:      evidence.CategoryAction,
		Summary:       summary,
		Actor:         evidence.Actor{Kind: evidence.ActorUser, UserID: app.PrincipalID},
	}
}

// domainCloudEvent wraps a domain event in the CloudEvents envelope that
// travels through the outbox.
func domainCloudEvent(app AppContext, aggregate, subject string, event events.DomainEvent) (events.CloudEvent, error) {
	return events.NewCloudEvent(events.NewCloudEventInput{
		Source:        EventSource,
		EventType:     events.EventTypePrefix + aggregate + "." + event.EventType,
		EventID:       event.EventID,
		TenantID:      app.TenantID,
		CorrelationID: app.CorrelationID,
		Subject:       subject,
		OccurredAtISO: event.OccurredAtISO,
		Data:          event,
	})
}

// commit runs the four command effects inside one unit of work: the
// entity write performed by persist, the outbox enqueue, the evidence
// append and the idempotency cache write. Any failure rolls back all four
// and surfaces as DependencyFailure with nothing cached.
func (d Deps) commit(
	ctx context.Context,
	app AppContext,
	key idempotency.Key,
	event events.CloudEvent,
	entry evidence.EntryInput,
	output any,
	persist func(ctx context.Context) error,
) error {
	return d.commitWith(ctx, key, event, output, persist, func(ctx context.Context) error {
		_, err := d.Evidence.AppendEntry(ctx, app.TenantID, entry)
		return err
	})
}

// commitWith is commit with the evidence append supplied by the caller;
// approval commands record through ApprovalEvidence instead of a plain
// Action entry.
func (d Deps) commitWith(
	ctx context.Context,
	key idempotency.Key,
	event events.CloudEvent,
	output any,
	persist func(ctx context.Context) error,
	record func(ctx context.Context) error,
) error {
	err := d.UnitOfWork.Execute(ctx, func(ctx context.Context) error {
		if err := persist(ctx); err != nil {
			return err
		}
		if _, err := d.Outbox.Enqueue(ctx, event); err != nil {
			return err
		}
		if err := record(ctx); err != nil {
			return err
		}
		return cacheOutput(ctx, d.Idempotency, key, output)
	})
	if err != nil {
		return dependencyFailure(err, "command commit failed")
	}
	return nil
}
