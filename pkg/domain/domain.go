// Package domain holds the versioned aggregate records accepted by the
// control plane and their strict parse functions. Parsing is
// schema-first: every record is validated against an embedded JSON Schema
// before it is decoded, so malformed or unknown fields are rejected at the
// boundary.
package domain

import "fmt"

// ExecutionTier controls the approval requirements for actions executed
// under a workflow or agent.
type ExecutionTier string

const (
	TierAuto         ExecutionTier = "Auto"
	TierAssisted     ExecutionTier = "Assisted"
	TierHumanApprove ExecutionTier = "HumanApprove"
	TierManualOnly   ExecutionTier = "ManualOnly"
)

// RunStatus is the lifecycle state of a workflow run.
type RunStatus string

const (
	RunPending   RunStatus = "Pending"
	RunRunning   RunStatus = "Running"
	RunSucceeded RunStatus = "Succeeded"
	RunFailed    RunStatus = "Failed"
	RunCancelled RunStatus = "Cancelled"
)

// ParseError reports a payload that failed structural validation for one
// of the versioned records.
type ParseError struct {
	Record string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("domain: invalid %s payload: %v", e.Record, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
