package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/fairdesk/fairdesk/internal/platform/httpx"
	"github.com/fairdesk/fairdesk/internal/shared"
	"github.com/fairdesk/fairdesk/internal/view"
)

// LoginPath is where unauthenticated dashboard requests are sent.
const LoginPath = "/admin/login"

// RequireLogin resolves the session before any protected handler runs.
// Requests that cannot be resolved are redirected to the login page and
// nothing protected is rendered.
func RequireLogin(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := resolve(r)
			if err != nil {
				if logger != nil {
					logger.Debug("dashboard access redirected", slog.String("path", r.URL.Path), slog.Any("reason", err))
				}
				message := ""
				if !errors.Is(err, ErrNoSession) {
					message = "Please sign in again."
				}
				shared.RedirectWithFlash(w, r, LoginPath, shared.FlashError, message)
				return
			}
			next.ServeHTTP(w, r.WithContext(withPrincipal(r, principal)))
		})
	}
}

// RequireLoginAPI is RequireLogin for JSON endpoints: it answers 401 instead of redirecting.
func RequireLoginAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, err := resolve(r)
		if err != nil {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", err.Error())
			return
		}
		next.ServeHTTP(w, r.WithContext(withPrincipal(r, principal)))
	})
}

// Expire clears the session after the backend refused the access token
// and sends the user back to the login page.
func Expire(w http.ResponseWriter, r *http.Request) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		NewSession(sess).Clear()
	}
	shared.RedirectWithFlash(w, r, LoginPath, shared.FlashError, "Your session has expired. Please sign in again.")
}

func resolve(r *http.Request) (Principal, error) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return Principal{}, ErrNoSession
	}
	return NewSession(sess).Resolve()
}

func withPrincipal(r *http.Request, p Principal) context.Context {
	ctx := ContextWithPrincipal(r.Context(), p)
	return view.ContextWithUser(ctx, p.Username)
}
