package authz

import (
	"context"
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/45ck/Portarium-sub005/pkg/commands"
)

// AllowAllPolicy is the default policy expression.
const AllowAllPolicy = "true"

// CELAuthorizer evaluates a CEL policy expression per authorization check.
// The expression sees the caller's tenant, principal, roles, and the
// requested action, and must evaluate to a bool.
type CELAuthorizer struct {
	program cel.Program
}

// NewCELAuthorizer compiles the policy expression.
func NewCELAuthorizer(expression string) (*CELAuthorizer, error) {
	env, err := cel.NewEnv(
		cel.Variable("tenant", cel.StringType),
		cel.Variable("principal", cel.StringType),
		cel.Variable("action", cel.StringType),
		cel.Variable("roles", cel.ListType(cel.StringType)),
	)
	if err != nil {
		return nil, fmt.Errorf("authz: cel env: %w", err)
	}
	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("authz: compile policy: %w", issues.Err())
	}
	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("authz: policy must evaluate to bool, got %v", ast.OutputType())
	}
	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("authz: build policy program: %w", err)
	}
	return &CELAuthorizer{program: program}, nil
}

// IsAllowed implements commands.AuthorizationPort.
func (a *CELAuthorizer) IsAllowed(_ context.Context, app commands.AppContext, action string) (bool, error) {
	roles := app.Roles
	if roles == nil {
		roles = []string{}
	}
	out, _, err := a.program.Eval(map[string]any{
		"tenant":    string(app.TenantID),
		"principal": string(app.PrincipalID),
		"action":    action,
		"roles":     roles,
	})
	if err != nil {
		return false, fmt.Errorf("authz: evaluate policy: %w", err)
	}
	allowed, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("authz: policy returned %T, want bool", out.Value())
	}
	return allowed, nil
}
