package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fairdesk/fairdesk/internal/rbac"
)

// Claims is the subset of the access token payload the dashboard reads.
type Claims struct {
	Role      string
	Username  string
	Email     string
	ExpiresAt time.Time
}

// DecodeClaims reads the token payload without verifying its signature.
// The backend verifies tokens on every call; the payload only drives routing.
func DecodeClaims(token string) (Claims, error) {
	mapClaims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mapClaims); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}

	var claims Claims
	claims.Role, _ = mapClaims["role"].(string)
	claims.Username, _ = mapClaims["username"].(string)
	claims.Email, _ = mapClaims["email"].(string)
	exp, err := mapClaims.GetExpirationTime()
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
	if exp != nil {
		claims.ExpiresAt = exp.Time
	}
	return claims, nil
}

// RoleFromToken decodes token and returns its recognised role.
func RoleFromToken(token string, now time.Time) (rbac.Role, Claims, error) {
	claims, err := DecodeClaims(token)
	if err != nil {
		return "", Claims{}, err
	}
	if !claims.ExpiresAt.IsZero() && !now.Before(claims.ExpiresAt) {
		return "", claims, ErrTokenExpired
	}
	if claims.Role == "" {
		return "", claims, ErrRoleMissing
	}
	role, ok := rbac.ParseRole(claims.Role)
	if !ok {
		return "", claims, fmt.Errorf("%w: %q", ErrRoleUnknown, claims.Role)
	}
	return role, claims, nil
}
