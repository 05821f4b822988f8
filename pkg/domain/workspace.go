package domain

import "github.com/45ck/Portarium-sub005/pkg/primitives"

// WorkspaceV1 is the tenancy root: every command, event and evidence entry
// is scoped to one workspace.
type WorkspaceV1 struct {
	SchemaVersion int                    `json:"schemaVersion"`
	WorkspaceID   primitives.WorkspaceID `json:"workspaceId"`
	TenantID      primitives.TenantID    `json:"tenantId"`
	Name          string                 `json:"name"`
	CreatedAtISO  string                 `json:"createdAtIso"`
}

// ParseWorkspaceV1 validates and decodes a workspace payload.
func ParseWorkspaceV1(raw []byte) (WorkspaceV1, error) {
	var ws WorkspaceV1
	if err := parseRecord("workspace-v1", "Workspace", raw, &ws); err != nil {
		return WorkspaceV1{}, err
	}
	return ws, nil
}
