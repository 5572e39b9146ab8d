package resource

import (
	"fmt"

	"github.com/fairdesk/fairdesk/internal/backend"
)

// Payload is the body of a mutation: JSON, multipart, or nothing.
type Payload struct {
	JSON any
	Form *backend.Form
}

// JSON wraps v as a JSON payload.
func JSON(v any) Payload {
	return Payload{JSON: v}
}

// Multipart wraps form as a multipart payload.
func Multipart(form *backend.Form) Payload {
	return Payload{Form: form}
}

// Confirmer gates destructive operations.
type Confirmer interface {
	Confirm(prompt string) bool
}

// Confirmed is a Confirmer with a fixed answer, typically taken from a submitted form.
type Confirmed bool

// Confirm implements Confirmer.
func (c Confirmed) Confirm(string) bool {
	return bool(c)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

// Confirm implements Confirmer.
func (f ConfirmFunc) Confirm(prompt string) bool {
	return f(prompt)
}

// Confirm asks c, treating a nil Confirmer as a refusal.
func Confirm(c Confirmer, prompt string) bool {
	return c != nil && c.Confirm(prompt)
}

// DeletePrompt is the confirmation question for deleting one item.
func DeletePrompt(name string) string {
	return fmt.Sprintf("Are you sure you want to delete this %s?", name)
}
