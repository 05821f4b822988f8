package domain

import "github.com/45ck/Portarium-sub005/pkg/primitives"

// WorkforceAvailability is a member's current availability for new work.
type WorkforceAvailability string

const (
	AvailabilityAvailable WorkforceAvailability = "available"
	AvailabilityBusy      WorkforceAvailability = "busy"
	AvailabilityOffline   WorkforceAvailability = "offline"
)

// WorkforceMemberV1 is a human operator registered for work assignment.
// Capabilities is the set of capability strings the member can take on.
type WorkforceMemberV1 struct {
	SchemaVersion int                          `json:"schemaVersion"`
	MemberID      primitives.WorkforceMemberID `json:"workforceMemberId"`
	WorkspaceID   primitives.WorkspaceID       `json:"workspaceId"`
	LinkedUserID  primitives.UserID            `json:"linkedUserId"`
	DisplayName   string                       `json:"displayName"`
	Capabilities  []string                     `json:"capabilities"`
	Availability  WorkforceAvailability        `json:"availabilityStatus"`
	CreatedAtISO  string                       `json:"createdAtIso"`
}

// WorkItemV1 is a unit of work a run hands to the workforce. An item can
// require capabilities; assignment only succeeds for a member covering all
// of them.
type WorkItemV1 struct {
	SchemaVersion        int                          `json:"schemaVersion"`
	WorkItemID           primitives.WorkItemID        `json:"workItemId"`
	WorkspaceID          primitives.WorkspaceID       `json:"workspaceId"`
	RunID                primitives.RunID             `json:"runId,omitempty"`
	Title                string                       `json:"title"`
	RequiredCapabilities []string                     `json:"requiredCapabilities,omitempty"`
	OwnerUserID          primitives.UserID            `json:"ownerUserId,omitempty"`
	AssignedMemberID     primitives.WorkforceMemberID `json:"assignedMemberId,omitempty"`
	CreatedAtISO         string                       `json:"createdAtIso"`
}

// UncoveredCapabilities returns the work item's required capabilities the
// member does not hold.
func UncoveredCapabilities(member WorkforceMemberV1, item WorkItemV1) []string {
	held := make(map[string]struct{}, len(member.Capabilities))
	for _, c := range member.Capabilities {
		held[c] = struct{}{}
	}
	var missing []string
	for _, c := range item.RequiredCapabilities {
		if _, ok := held[c]; !ok {
			missing = append(missing, c)
		}
	}
	return missing
}
