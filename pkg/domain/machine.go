package domain

import "github.com/45ck/Portarium-sub005/pkg/primitives"

// MachineAuthKind is how the control plane authenticates to a machine
// runtime endpoint. "none" is for development trust boundaries only.
type MachineAuthKind string

const (
	AuthBearer MachineAuthKind = "bearer"
	AuthAPIKey MachineAuthKind = "apiKey"
	AuthMTLS   MachineAuthKind = "mtls"
	AuthNone   MachineAuthKind = "none"
)

// MachineAuthConfigV1 carries the endpoint authentication configuration.
// SecretRef points at a credential grant or vault path holding the material.
type MachineAuthConfigV1 struct {
	Kind      MachineAuthKind `json:"kind"`
	SecretRef string          `json:"secretRef,omitempty"`
}

// MachineRegistrationV1 registers a machine runtime endpoint with the
// control plane. Capabilities is an allowlist: only the listed capability
// strings may be invoked on this machine.
type MachineRegistrationV1 struct {
	SchemaVersion   int                    `json:"schemaVersion"`
	MachineID       primitives.MachineID   `json:"machineId"`
	WorkspaceID     primitives.WorkspaceID `json:"workspaceId"`
	EndpointURL     string                 `json:"endpointUrl"`
	Active          bool                   `json:"active"`
	DisplayName     string                 `json:"displayName"`
	Capabilities    []string               `json:"capabilities"`
	RegisteredAtISO string                 `json:"registeredAtIso"`
	AuthConfig      *MachineAuthConfigV1   `json:"authConfig,omitempty"`
}

// ParseMachineRegistrationV1 validates and decodes a machine registration
// payload.
func ParseMachineRegistrationV1(raw []byte) (MachineRegistrationV1, error) {
	var m MachineRegistrationV1
	if err := parseRecord("machine-registration-v1", "MachineRegistration", raw, &m); err != nil {
		return MachineRegistrationV1{}, err
	}
	return m, nil
}

// AgentConfigV1 binds an agent identity to a machine runtime, declares the
// policy tier under which it executes, and enumerates the tool names it is
// permitted to call. Multiple agents can share one machine endpoint. An
// empty AllowedTools list means the agent may not call any tools.
type AgentConfigV1 struct {
	SchemaVersion   int                    `json:"schemaVersion"`
	AgentID         primitives.AgentID     `json:"agentId"`
	WorkspaceID     primitives.WorkspaceID `json:"workspaceId"`
	MachineID       primitives.MachineID   `json:"machineId"`
	DisplayName     string                 `json:"displayName"`
	PolicyTier      ExecutionTier          `json:"policyTier"`
	AllowedTools    []string               `json:"allowedTools"`
	RegisteredAtISO string                 `json:"registeredAtIso"`
}

// ParseAgentConfigV1 validates and decodes an agent configuration payload.
func ParseAgentConfigV1(raw []byte) (AgentConfigV1, error) {
	var a AgentConfigV1
	if err := parseRecord("agent-config-v1", "AgentConfig", raw, &a); err != nil {
		return AgentConfigV1{}, err
	}
	return a, nil
}

// NonRoutableCapabilities returns the agent capabilities (allowed tools)
// that the machine's capability allowlist cannot route.
func NonRoutableCapabilities(agent AgentConfigV1, machine MachineRegistrationV1) []string {
	routable := make(map[string]struct{}, len(machine.Capabilities))
	for _, c := range machine.Capabilities {
		routable[c] = struct{}{}
	}
	var missing []string
	for _, tool := range agent.AllowedTools {
		if _, ok := routable[tool]; !ok {
			missing = append(missing, tool)
		}
	}
	return missing
}
