package auth

import (
	"context"
	"errors"

	"github.com/fairdesk/fairdesk/internal/rbac"
)

// Authorization failures. All of them end in a redirect to the login page.
var (
	ErrNoSession      = errors.New("not logged in")
	ErrTokenMalformed = errors.New("access token malformed")
	ErrTokenExpired   = errors.New("access token expired")
	ErrRoleMissing    = errors.New("access token carries no role")
	ErrRoleUnknown    = errors.New("access token role not recognised")
)

// Tokens is the pair returned by login and password creation.
type Tokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Principal is the resolved identity of an authenticated request.
type Principal struct {
	Role        rbac.Role
	Username    string
	AccessToken string
}

// Tabs returns the dashboard tabs the principal may open.
func (p Principal) Tabs() []rbac.Tab {
	return rbac.AllowedTabs(p.Role)
}

type principalContextKey struct{}

// ContextWithPrincipal stores p in ctx together with its role.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	ctx = context.WithValue(ctx, principalContextKey{}, p)
	return rbac.ContextWithRole(ctx, p.Role)
}

// PrincipalFromContext returns the principal stored by RequireLogin.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(Principal)
	return p, ok
}
