package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairdesk/fairdesk/internal/rbac"
)

func TestRoleFromTokenIgnoresSignature(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"role": "Sales", "username": "sam", "email": "sam@fair.test"})

	role, claims, err := RoleFromToken(token, time.Now())

	require.NoError(t, err)
	assert.Equal(t, rbac.RoleSales, role)
	assert.Equal(t, "sam", claims.Username)
	assert.Equal(t, "sam@fair.test", claims.Email)
	assert.True(t, claims.ExpiresAt.IsZero())
}

func TestRoleFromTokenErrors(t *testing.T) {
	now := time.Now()
	cases := []struct {
		name  string
		token string
		want  error
	}{
		{"garbage", "abc", ErrTokenMalformed},
		{"missing role", signedToken(t, jwt.MapClaims{"username": "x"}), ErrRoleMissing},
		{"unknown role", signedToken(t, jwt.MapClaims{"role": "owner"}), ErrRoleUnknown},
		{"expired", signedToken(t, jwt.MapClaims{"role": "admin", "exp": now.Add(-time.Hour).Unix()}), ErrTokenExpired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := RoleFromToken(tc.token, now)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}
