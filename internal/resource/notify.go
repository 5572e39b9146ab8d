package resource

import (
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Notification kinds.
const (
	KindSuccess = "success"
	KindError   = "error"
)

// Notifier receives transient user-visible notifications.
type Notifier interface {
	Notify(kind, message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(kind, message string)

// Notify implements Notifier.
func (f NotifierFunc) Notify(kind, message string) {
	f(kind, message)
}

// Notification is one recorded notification.
type Notification struct {
	Kind    string
	Message string
}

// Recorder keeps notifications in memory.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

// Notify implements Notifier.
func (r *Recorder) Notify(kind, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, Notification{Kind: kind, Message: message})
}

// Notifications returns everything recorded so far.
func (r *Recorder) Notifications() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.items))
	copy(out, r.items)
	return out
}

// Count returns how many notifications of kind were recorded.
func (r *Recorder) Count(kind string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, item := range r.items {
		if item.Kind == kind {
			n++
		}
	}
	return n
}

// capitalize title-cases the first word of s only: "gallery image" becomes
// "Gallery image".
func capitalize(s string) string {
	first, rest, found := strings.Cut(s, " ")
	first = cases.Title(language.English).String(first)
	if !found {
		return first
	}
	return first + " " + rest
}
