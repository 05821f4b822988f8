package commands

import "fmt"

// The command error taxonomy. Every expected failure of a command maps to
// exactly one of these typed errors; raw storage or publish errors surface
// as DependencyFailure. Callers branch with errors.As.

// Forbidden means the caller is not permitted to perform the action, or a
// tenant boundary was crossed.
type Forbidden struct {
	Action  string
	Message string
}

func (e *Forbidden) Error() string {
	return fmt.Sprintf("forbidden (%s): %s", e.Action, e.Message)
}

// ValidationFailed means the request payload or idempotency key is
// malformed. Nothing was executed.
type ValidationFailed struct {
	Message string
}

func (e *ValidationFailed) Error() string {
	return "validation failed: " + e.Message
}

// NotFound means a referenced resource does not exist in the caller's
// tenant.
type NotFound struct {
	Resource string
	Message  string
}

func (e *NotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Message)
}

// Conflict means the command would contradict existing state, e.g. a
// duplicate registration.
type Conflict struct {
	Message string
}

func (e *Conflict) Error() string {
	return "conflict: " + e.Message
}

// RateLimited means the tenant exceeded its command rate; the command was
// not executed at all.
type RateLimited struct {
	Message string
}

func (e *RateLimited) Error() string {
	return "rate limited: " + e.Message
}

// DependencyFailure means a storage or infrastructure dependency failed
// mid-command. The unit of work rolled back and nothing was cached, so a
// retry with the same idempotency key re-attempts the full operation.
type DependencyFailure struct {
	Message string
	Err     error
}

func (e *DependencyFailure) Error() string {
	return "dependency failure: " + e.Message
}

func (e *DependencyFailure) Unwrap() error { return e.Err }

func dependencyFailure(err error, fallback string) *DependencyFailure {
	msg := fallback
	if err != nil {
		msg = err.Error()
	}
	return &DependencyFailure{Message: msg, Err: err}
}
