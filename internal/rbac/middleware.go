package rbac

import (
	"context"
	"log/slog"
	"net/http"
)

type roleContextKey struct{}

// ContextWithRole stores the resolved role in context.
func ContextWithRole(ctx context.Context, role Role) context.Context {
	return context.WithValue(ctx, roleContextKey{}, role)
}

// RoleFromContext returns the resolved role, if any.
func RoleFromContext(ctx context.Context) (Role, bool) {
	role, ok := ctx.Value(roleContextKey{}).(Role)
	return role, ok && role.Valid()
}

// Middleware wires tab authorization for HTTP handlers.
type Middleware struct {
	Logger *slog.Logger
}

// RequireTab refuses requests whose role may not open tab.
func (m Middleware) RequireTab(tab Tab) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := RoleFromContext(r.Context())
			if !ok || !IsAllowed(role, tab) {
				if m.Logger != nil {
					m.Logger.Warn("tab access denied",
						slog.String("role", string(role)),
						slog.String("tab", string(tab)),
						slog.String("path", r.URL.Path))
				}
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
