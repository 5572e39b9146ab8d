package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Sentinel errors for backend failures.
var (
	// ErrTransport indicates the backend could not be reached.
	ErrTransport = errors.New("backend unreachable")
	// ErrMalformed indicates a 2xx body that could not be decoded.
	ErrMalformed = errors.New("malformed backend response")
	// ErrUnexpectedShape indicates a list body that is neither an array nor a results envelope.
	ErrUnexpectedShape = fmt.Errorf("%w: unexpected list shape", ErrMalformed)

	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
)

const nonFieldErrors = "non_field_errors"

// StatusError is returned for any non-2xx backend response.
type StatusError struct {
	StatusCode int
	Detail     string
	Fields     map[string][]string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend: status %d: %s", e.StatusCode, e.Message())
}

// Is maps status codes onto the package sentinels.
func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrForbidden:
		return e.StatusCode == http.StatusForbidden
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrValidation:
		return e.StatusCode == http.StatusBadRequest || e.StatusCode == http.StatusUnprocessableEntity
	}
	return false
}

// Message flattens detail and field errors into one display string.
func (e *StatusError) Message() string {
	parts := make([]string, 0, len(e.Fields)+1)
	if e.Detail != "" {
		parts = append(parts, e.Detail)
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		msg := strings.Join(e.Fields[k], " ")
		if k == nonFieldErrors {
			parts = append(parts, msg)
			continue
		}
		parts = append(parts, k+": "+msg)
	}
	if len(parts) == 0 {
		return http.StatusText(e.StatusCode)
	}
	return strings.Join(parts, "; ")
}

func newStatusError(code int, body []byte) *StatusError {
	e := &StatusError{StatusCode: code}

	var object map[string]json.RawMessage
	if err := json.Unmarshal(body, &object); err == nil {
		fields := make(map[string][]string, len(object))
		for key, raw := range object {
			if msgs := decodeMessages(raw); len(msgs) > 0 {
				fields[key] = msgs
			}
		}
		for _, key := range []string{"detail", "error", "message"} {
			if msgs, ok := fields[key]; ok {
				if e.Detail == "" {
					e.Detail = strings.Join(msgs, " ")
				}
				delete(fields, key)
			}
		}
		if len(fields) > 0 {
			e.Fields = fields
		}
		return e
	}

	var list []string
	if err := json.Unmarshal(body, &list); err == nil {
		e.Detail = strings.Join(list, " ")
	}
	return e
}

func decodeMessages(raw json.RawMessage) []string {
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		if single = strings.TrimSpace(single); single != "" {
			return []string{single}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err == nil {
		return many
	}
	var nested map[string]json.RawMessage
	if err := json.Unmarshal(raw, &nested); err == nil {
		keys := make([]string, 0, len(nested))
		for k := range nested {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var out []string
		for _, k := range keys {
			for _, msg := range decodeMessages(nested[k]) {
				out = append(out, k+": "+msg)
			}
		}
		return out
	}
	return nil
}

// Message reduces any backend error to a short user-facing string.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var statusErr *StatusError
	switch {
	case errors.As(err, &statusErr):
		return statusErr.Message()
	case errors.Is(err, ErrTransport):
		return "the server could not be reached"
	case errors.Is(err, ErrMalformed):
		return "unexpected response from the server"
	case errors.Is(err, context.DeadlineExceeded):
		return "the server took too long to respond"
	}
	return err.Error()
}
