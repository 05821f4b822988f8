// Package authz holds the trust-boundary adapters for the command layer:
// bearer-token claims are verified and lowered into an AppContext, and a
// CEL policy expression implements the authorization port. The policy
// content itself lives in deployment configuration, not here.
package authz

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/45ck/Portarium-sub005/pkg/commands"
	"github.com/45ck/Portarium-sub005/pkg/primitives"
)

// ErrUnauthorized is returned for tokens that fail verification or lack
// the required workspace-scoped claims.
var ErrUnauthorized = errors.New("unauthorized")

// ClaimsVerifier verifies bearer tokens and extracts the standard claim
// set: sub, workspaceId (tenant scope) and roles.
type ClaimsVerifier struct {
	secret   []byte
	issuer   string
	audience string
}

// NewClaimsVerifier creates a verifier for HMAC-signed tokens from the
// given issuer and audience.
func NewClaimsVerifier(secret []byte, issuer, audience string) *ClaimsVerifier {
	return &ClaimsVerifier{secret: secret, issuer: issuer, audience: audience}
}

// AppContextFromToken verifies tokenString and lowers its claims into the
// command context. The correlation id comes from the caller's request when
// present, otherwise a fresh one is minted.
func (v *ClaimsVerifier) AppContextFromToken(tokenString, correlationID string) (commands.AppContext, error) {
	var zero commands.AppContext

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	},
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(v.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return zero, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return zero, fmt.Errorf("%w: unexpected claims type", ErrUnauthorized)
	}

	sub, _ := claims["sub"].(string)
	if strings.TrimSpace(sub) == "" {
		return zero, fmt.Errorf("%w: missing sub claim", ErrUnauthorized)
	}
	workspaceID, _ := claims["workspaceId"].(string)
	if strings.TrimSpace(workspaceID) == "" {
		return zero, fmt.Errorf("%w: token is not workspace-scoped", ErrUnauthorized)
	}

	var roles []string
	if raw, ok := claims["roles"].([]any); ok {
		for _, r := range raw {
			if s, ok := r.(string); ok && strings.TrimSpace(s) != "" {
				roles = append(roles, s)
			}
		}
	}

	if strings.TrimSpace(correlationID) == "" {
		correlationID = "corr-" + uuid.NewString()
	}

	return commands.AppContext{
		TenantID:      primitives.TenantID(workspaceID),
		PrincipalID:   primitives.UserID(sub),
		CorrelationID: primitives.CorrelationID(correlationID),
		Roles:         roles,
	}, nil
}
