package authz

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/45ck/Portarium-sub005/pkg/commands"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func baseClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":         "user-1",
		"iss":         "https://idp.example.com",
		"aud":         "portarium",
		"workspaceId": "ws-1",
		"tenantId":    "ws-1",
		"roles":       []string{"WorkspaceAdmin"},
		"exp":         time.Now().Add(time.Hour).Unix(),
	}
}

func TestAppContextFromToken(t *testing.T) {
	v := NewClaimsVerifier([]byte(testSecret), "https://idp.example.com", "portarium")

	app, err := v.AppContextFromToken(signToken(t, baseClaims()), "corr-7")
	require.NoError(t, err)

	assert.Equal(t, "ws-1", string(app.TenantID))
	assert.Equal(t, "user-1", string(app.PrincipalID))
	assert.Equal(t, "corr-7", string(app.CorrelationID))
	assert.Equal(t, []string{"WorkspaceAdmin"}, app.Roles)
}

func TestAppContextFromTokenMintsCorrelationID(t *testing.T) {
	v := NewClaimsVerifier([]byte(testSecret), "https://idp.example.com", "portarium")

	app, err := v.AppContextFromToken(signToken(t, baseClaims()), "")
	require.NoError(t, err)
	assert.NotEmpty(t, app.CorrelationID)
}

func TestAppContextFromTokenRejections(t *testing.T) {
	v := NewClaimsVerifier([]byte(testSecret), "https://idp.example.com", "portarium")

	t.Run("bad signature", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, baseClaims())
		signed, err := token.SignedString([]byte("other-secret"))
		require.NoError(t, err)
		_, err = v.AppContextFromToken(signed, "")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("expired", func(t *testing.T) {
		claims := baseClaims()
		claims["exp"] = time.Now().Add(-time.Hour).Unix()
		_, err := v.AppContextFromToken(signToken(t, claims), "")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("wrong audience", func(t *testing.T) {
		claims := baseClaims()
		claims["aud"] = "someone-else"
		_, err := v.AppContextFromToken(signToken(t, claims), "")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("not workspace scoped", func(t *testing.T) {
		claims := baseClaims()
		delete(claims, "workspaceId")
		_, err := v.AppContextFromToken(signToken(t, claims), "")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestCELAuthorizerRoleGate(t *testing.T) {
	a, err := NewCELAuthorizer(`action == "run.start" ? "WorkspaceAdmin" in roles : true`)
	require.NoError(t, err)

	admin := commands.AppContext{TenantID: "ws-1", PrincipalID: "user-1", Roles: []string{"WorkspaceAdmin"}}
	viewer := commands.AppContext{TenantID: "ws-1", PrincipalID: "user-2", Roles: []string{"Viewer"}}

	allowed, err := a.IsAllowed(context.Background(), admin, commands.ActionRunStart)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = a.IsAllowed(context.Background(), viewer, commands.ActionRunStart)
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, err = a.IsAllowed(context.Background(), viewer, commands.ActionWorkspaceRegister)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestCELAuthorizerRejectsNonBoolPolicy(t *testing.T) {
	_, err := NewCELAuthorizer(`"yes"`)
	assert.Error(t, err)
}

func TestCELAuthorizerAllowAllDefault(t *testing.T) {
	a, err := NewCELAuthorizer(AllowAllPolicy)
	require.NoError(t, err)

	allowed, err := a.IsAllowed(context.Background(), commands.AppContext{TenantID: "ws-1"}, commands.ActionWorkspaceRegister)
	require.NoError(t, err)
	assert.True(t, allowed)
}
