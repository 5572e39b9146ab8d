package shared

import "errors"

var (
	// ErrSessionMissing occurs when no session is attached to the request.
	ErrSessionMissing = errors.New("session missing")
	// ErrCSRFTokenMissing occurs when the CSRF token is missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
	// ErrBusy indicates another change from the same session is still running.
	ErrBusy = errors.New("another change is still in progress")
)
