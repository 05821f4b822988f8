package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/45ck/Portarium-sub005/pkg/domain"
	"github.com/45ck/Portarium-sub005/pkg/events"
	"github.com/45ck/Portarium-sub005/pkg/primitives"
)

const (
	registerMachineCommand         = "RegisterMachine"
	createAgentCommand             = "CreateAgent"
	updateAgentCapabilitiesCommand = "UpdateAgentCapabilities"
)

// RegisterMachineInput carries the raw machine registration payload.
type RegisterMachineInput struct {
	IdempotencyKey string
	Machine        json.RawMessage
}

// RegisterMachineOutput is the cached command output.
type RegisterMachineOutput struct {
	MachineID primitives.MachineID `json:"machineId"`
}

// RegisterMachine registers a machine runtime endpoint.
func RegisterMachine(ctx context.Context, d Deps, app AppContext, input RegisterMachineInput) (RegisterMachineOutput, error) {
	var zero RegisterMachineOutput

	if err := validateIdempotencyKey(input.IdempotencyKey); err != nil {
		return zero, err
	}
	if err := d.checkRateLimit(app); err != nil {
		return zero, err
	}
	if err := d.authorize(ctx, app, ActionMachineAgentRegister, "caller is not permitted to register machine/agent resources"); err != nil {
		return zero, err
	}

	machine, err := domain.ParseMachineRegistrationV1(input.Machine)
	if err != nil {
		return zero, &ValidationFailed{Message: err.Error()}
	}
	if err := ensureTenantMatch(app, machine.WorkspaceID, ActionMachineAgentRegister); err != nil {
		return zero, err
	}

	key := commandKey(app, registerMachineCommand, input.IdempotencyKey)
	if cached, err := cachedOutput[RegisterMachineOutput](ctx, d.Idempotency, key); err != nil {
		return zero, err
	} else if cached != nil {
		return *cached, nil
	}

	existing, err := d.Machines.GetMachineRegistrationByID(ctx, app.TenantID, machine.MachineID)
	if err != nil {
		return zero, dependencyFailure(err, "machine lookup failed")
	}
	if existing != nil {
		return zero, &Conflict{Message: fmt.Sprintf("machine %s already exists", machine.MachineID)}
	}

	event, err := machineAgentEvent(d, app, "machine", "MachineRegistered", string(machine.MachineID), map[string]any{
		"machineId":    string(machine.MachineID),
		"capabilities": machine.Capabilities,
	})
	if err != nil {
		return zero, err
	}

	output := RegisterMachineOutput{MachineID: machine.MachineID}
	entry := d.actionEvidence(app, fmt.Sprintf("Registered machine %s.", machine.MachineID))
	err = d.commit(ctx, app, key, event, entry, output, func(ctx context.Context) error {
		return d.Machines.SaveMachineRegistration(ctx, app.TenantID, machine)
	})
	if err != nil {
		return zero, err
	}
	return output, nil
}

// CreateAgentInput carries the raw agent configuration payload.
type CreateAgentInput struct {
	IdempotencyKey string
	Agent          json.RawMessage
}

// CreateAgentOutput is the cached command output.
type CreateAgentOutput struct {
	AgentID primitives.AgentID `json:"agentId"`
}

// CreateAgent binds a new agent configuration to a registered machine.
// Every allowed tool must be routable on the machine's capability
// allowlist.
func CreateAgent(ctx context.Context, d Deps, app AppContext, input CreateAgentInput) (CreateAgentOutput, error) {
	var zero CreateAgentOutput

	if err := validateIdempotencyKey(input.IdempotencyKey); err != nil {
		return zero, err
	}
	if err := d.checkRateLimit(app); err != nil {
		return zero, err
	}
	if err := d.authorize(ctx, app, ActionMachineAgentRegister, "caller is not permitted to register machine/agent resources"); err != nil {
		return zero, err
	}

	agent, err := domain.ParseAgentConfigV1(input.Agent)
	if err != nil {
		return zero, &ValidationFailed{Message: err.Error()}
	}
	if err := ensureTenantMatch(app, agent.WorkspaceID, ActionMachineAgentRegister); err != nil {
		return zero, err
	}

	key := commandKey(app, createAgentCommand, input.IdempotencyKey)
	if cached, err := cachedOutput[CreateAgentOutput](ctx, d.Idempotency, key); err != nil {
		return zero, err
	} else if cached != nil {
		return *cached, nil
	}

	machine, err := d.Machines.GetMachineRegistrationByID(ctx, app.TenantID, agent.MachineID)
	if err != nil {
		return zero, dependencyFailure(err, "machine lookup failed")
	}
	if machine == nil {
		return zero, &NotFound{Resource: "MachineRegistration", Message: fmt.Sprintf("machine %s not found", agent.MachineID)}
	}
	if missing := domain.NonRoutableCapabilities(agent, *machine); len(missing) > 0 {
		return zero, &ValidationFailed{Message: fmt.Sprintf(
			"agent capabilities are not routable on machine %s: %s", agent.MachineID, strings.Join(missing, ", "))}
	}

	existingAgent, err := d.Machines.GetAgentConfigByID(ctx, app.TenantID, agent.AgentID)
	if err != nil {
		return zero, dependencyFailure(err, "agent lookup failed")
	}
	if existingAgent != nil {
		return zero, &Conflict{Message: fmt.Sprintf("agent %s already exists", agent.AgentID)}
	}

	event, err := machineAgentEvent(d, app, "agent", "AgentCreated", string(agent.AgentID), map[string]any{
		"agentId":   string(agent.AgentID),
		"machineId": string(agent.MachineID),
	})
	if err != nil {
		return zero, err
	}

	output := CreateAgentOutput{AgentID: agent.AgentID}
	entry := d.actionEvidence(app, fmt.Sprintf("Created agent %s.", agent.AgentID))
	err = d.commit(ctx, app, key, event, entry, output, func(ctx context.Context) error {
		return d.Machines.SaveAgentConfig(ctx, app.TenantID, agent)
	})
	if err != nil {
		return zero, err
	}
	return output, nil
}

// UpdateAgentCapabilitiesInput updates the allowlisted tools of an agent.
type UpdateAgentCapabilitiesInput struct {
	IdempotencyKey string
	WorkspaceID    string
	AgentID        string
	AllowedTools   []string
}

// UpdateAgentCapabilitiesOutput is the cached command output.
type UpdateAgentCapabilitiesOutput struct {
	AgentID      primitives.AgentID `json:"agentId"`
	AllowedTools []string           `json:"allowedTools"`
}

// UpdateAgentCapabilities replaces the agent's allowed tool list.
func UpdateAgentCapabilities(ctx context.Context, d Deps, app AppContext, input UpdateAgentCapabilitiesInput) (UpdateAgentCapabilitiesOutput, error) {
	var zero UpdateAgentCapabilitiesOutput

	if err := validateIdempotencyKey(input.IdempotencyKey); err != nil {
		return zero, err
	}
	if err := d.checkRateLimit(app); err != nil {
		return zero, err
	}
	if err := d.authorize(ctx, app, ActionMachineAgentRegister, "caller is not permitted to register machine/agent resources"); err != nil {
		return zero, err
	}

	if strings.TrimSpace(input.AgentID) == "" {
		return zero, &ValidationFailed{Message: "agentId must be a non-empty string"}
	}
	for _, tool := range input.AllowedTools {
		if strings.TrimSpace(tool) == "" {
			return zero, &ValidationFailed{Message: "allowedTools entries must be non-empty strings"}
		}
	}
	if err := ensureTenantMatch(app, primitives.WorkspaceID(input.WorkspaceID), ActionMachineAgentRegister); err != nil {
		return zero, err
	}

	key := commandKey(app, updateAgentCapabilitiesCommand, input.IdempotencyKey)
	if cached, err := cachedOutput[UpdateAgentCapabilitiesOutput](ctx, d.Idempotency, key); err != nil {
		return zero, err
	} else if cached != nil {
		return *cached, nil
	}

	agentID := primitives.AgentID(input.AgentID)
	existing, err := d.Machines.GetAgentConfigByID(ctx, app.TenantID, agentID)
	if err != nil {
		return zero, dependencyFailure(err, "agent lookup failed")
	}
	if existing == nil {
		return zero, &NotFound{Resource: "AgentConfig", Message: fmt.Sprintf("agent %s not found", input.AgentID)}
	}

	updated := *existing
	updated.AllowedTools = append([]string(nil), input.AllowedTools...)

	event, err := machineAgentEvent(d, app, "agent", "AgentCapabilitiesUpdated", input.AgentID, map[string]any{
		"agentId":      input.AgentID,
		"allowedTools": updated.AllowedTools,
	})
	if err != nil {
		return zero, err
	}

	output := UpdateAgentCapabilitiesOutput{AgentID: agentID, AllowedTools: updated.AllowedTools}
	entry := d.actionEvidence(app, fmt.Sprintf("Updated allowed tools for agent %s.", agentID))
	err = d.commit(ctx, app, key, event, entry, output, func(ctx context.Context) error {
		return d.Machines.SaveAgentConfig(ctx, app.TenantID, updated)
	})
	if err != nil {
		return zero, err
	}
	return output, nil
}

func machineAgentEvent(d Deps, app AppContext, aggregate, eventType, aggregateID string, payload map[string]any) (events.CloudEvent, error) {
	subject := aggregate + "s/" + aggregateID
	event, err := domainCloudEvent(app, aggregate, subject, events.DomainEvent{
		SchemaVersion: 1,
		EventID:       primitives.EventID("evt-" + d.IDs.NewID()),
		EventType:     eventType,
		AggregateKind: strings.ToUpper(aggregate[:1]) + aggregate[1:],
		AggregateID:   aggregateID,
		OccurredAtISO: d.nowISO(),
		WorkspaceID:   app.TenantID,
		CorrelationID: app.CorrelationID,
		ActorUserID:   app.PrincipalID,
		Payload:       payload,
	})
	if err != nil {
		return events.CloudEvent{}, dependencyFailure(err, "unable to build event envelope")
	}
	return event, nil
}
