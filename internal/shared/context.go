package shared

import (
	"context"
	"net/http"
	"net/url"
)

type sessionContextKey struct{}

// ContextWithSession stores the session in context.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext extracts the session from context.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}

// RedirectWithFlash queues a flash and answers 303 to location.
func RedirectWithFlash(w http.ResponseWriter, r *http.Request, location, kind, message string) {
	if sess := SessionFromContext(r.Context()); sess != nil && message != "" {
		sess.AddFlash(FlashMessage{Kind: kind, Message: message})
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}

// TabURL builds the dashboard URL for tab, keeping extra query values.
func TabURL(tab string, extra url.Values) string {
	q := url.Values{}
	for k, v := range extra {
		if k == "tab" {
			continue
		}
		q[k] = v
	}
	q.Set("tab", tab)
	return "/admin?" + q.Encode()
}
