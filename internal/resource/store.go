// Package resource implements the per-entity list store shared by every
// dashboard tab: fetch, refetch-after-write mutations and derived counts.
package resource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/fairdesk/fairdesk/internal/backend"
)

var (
	// ErrBusy is returned when a mutation is attempted while another is in flight.
	ErrBusy = errors.New("another change is still in progress")
	// ErrNotConfirmed is returned when a delete was not confirmed.
	ErrNotConfirmed = errors.New("delete not confirmed")
)

// Options configures a Store.
type Options struct {
	// Name is the singular label used in notifications, e.g. "exhibitor".
	Name string
	// Plural is used for load failures, e.g. "exhibitors".
	Plural string
	// Collection is the REST collection path.
	Collection string
	// ListPath and CreatePath default to Collection.
	ListPath   string
	CreatePath string
	// ItemPath defaults to backend.ItemPath(Collection, id).
	ItemPath func(id int64) string
	// KeepStale keeps last-known-good items on fetch failure and flags them stale.
	KeepStale bool

	Logger   *slog.Logger
	Notifier Notifier
}

// Store owns one entity list and mediates all writes to its collection.
type Store[T any] struct {
	client  *backend.Client
	token   string
	opts    Options
	arrange func([]T) []T

	mu      sync.RWMutex
	items   []T
	loading bool
	stale   bool
	fetched bool
	editing *T

	busy atomic.Bool
}

// NewStore constructs a Store bound to the caller's access token.
func NewStore[T any](client *backend.Client, token string, opts Options) *Store[T] {
	if opts.ListPath == "" {
		opts.ListPath = opts.Collection
	}
	if opts.CreatePath == "" {
		opts.CreatePath = opts.Collection
	}
	if opts.ItemPath == nil {
		collection := opts.Collection
		opts.ItemPath = func(id int64) string { return backend.ItemPath(collection, id) }
	}
	if opts.Plural == "" {
		opts.Plural = opts.Name + "s"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Store[T]{client: client, token: token, opts: opts, items: []T{}}
}

// WithArrange installs a post-fetch ordering for the list.
func (s *Store[T]) WithArrange(fn func([]T) []T) *Store[T] {
	s.arrange = fn
	return s
}

// Name returns the singular entity label.
func (s *Store[T]) Name() string {
	return s.opts.Name
}

// Items returns a copy of the current snapshot.
func (s *Store[T]) Items() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// Loading reports whether a fetch is in flight.
func (s *Store[T]) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Stale reports whether Items is last-known-good data after a failed fetch.
func (s *Store[T]) Stale() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stale
}

// Busy reports whether a mutation is in flight.
func (s *Store[T]) Busy() bool {
	return s.busy.Load()
}

// Editing returns the item currently selected for editing, if any.
func (s *Store[T]) Editing() *T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.editing
}

// SetEditing selects an item for editing. Pass nil to clear.
func (s *Store[T]) SetEditing(item *T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editing = item
}

// Seed installs a list fetched earlier, such as a cached snapshot. Under
// KeepStale a failing FetchAll then keeps it and marks it stale.
func (s *Store[T]) Seed(items []T) {
	if items == nil {
		items = []T{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = items
	s.fetched = true
	s.stale = false
}

// Find returns the first item matching pred.
func (s *Store[T]) Find(pred func(T) bool) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.items {
		if pred(item) {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// FetchAll replaces the list with the server's current snapshot.
func (s *Store[T]) FetchAll(ctx context.Context) error {
	s.setLoading(true)
	defer s.setLoading(false)

	items, err := backend.GetList[T](ctx, s.client, s.opts.ListPath, s.token)
	if ctx.Err() != nil {
		// Owner went away; leave state untouched.
		return ctx.Err()
	}
	if err != nil {
		s.opts.Logger.Error("fetch list failed",
			slog.String("resource", s.opts.Plural),
			slog.String("path", s.opts.ListPath),
			slog.Any("error", err))
		s.mu.Lock()
		if s.opts.KeepStale && s.fetched {
			s.stale = true
		} else {
			s.items = []T{}
			s.stale = false
		}
		s.mu.Unlock()
		s.notify(KindError, "Failed to load "+s.opts.Plural+".")
		return err
	}

	if s.arrange != nil {
		items = s.arrange(items)
	}
	s.mu.Lock()
	s.items = items
	s.stale = false
	s.fetched = true
	s.mu.Unlock()
	return nil
}

// Mutation describes one write against the backend.
type Mutation struct {
	// Action names the operation in failure notifications, e.g. "update status".
	Action string
	// Success is the notification emitted once the write is accepted.
	Success string
	Method  string
	Path    string
	Payload Payload
}

// Mutate performs m and then refetches the list before returning.
// Two mutations on one Store never overlap; the second gets ErrBusy.
func (s *Store[T]) Mutate(ctx context.Context, m Mutation) error {
	if !s.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer s.busy.Store(false)

	req := backend.Request{
		Method: m.Method,
		Path:   m.Path,
		Token:  s.token,
		JSON:   m.Payload.JSON,
		Form:   m.Payload.Form,
	}
	if err := s.client.Do(ctx, req, nil); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.opts.Logger.Error("mutation failed",
			slog.String("resource", s.opts.Name),
			slog.String("action", m.Action),
			slog.String("method", m.Method),
			slog.String("path", m.Path),
			slog.Any("error", err))
		s.notify(KindError, FailureMessage(m.Action, err))
		return err
	}

	if m.Success != "" {
		s.notify(KindSuccess, m.Success)
	}
	if err := s.FetchAll(ctx); err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return nil
}

// Create POSTs payload to the collection.
func (s *Store[T]) Create(ctx context.Context, payload Payload) error {
	return s.Mutate(ctx, Mutation{
		Action:  "create " + s.opts.Name,
		Success: capitalize(s.opts.Name) + " created successfully.",
		Method:  http.MethodPost,
		Path:    s.opts.CreatePath,
		Payload: payload,
	})
}

// Update PUTs a full record.
func (s *Store[T]) Update(ctx context.Context, id int64, payload Payload) error {
	return s.Mutate(ctx, Mutation{
		Action:  "update " + s.opts.Name,
		Success: capitalize(s.opts.Name) + " updated successfully.",
		Method:  http.MethodPut,
		Path:    s.opts.ItemPath(id),
		Payload: payload,
	})
}

// Patch sends a partial update. action names it in notifications.
func (s *Store[T]) Patch(ctx context.Context, id int64, action, success string, payload Payload) error {
	return s.Mutate(ctx, Mutation{
		Action:  action,
		Success: success,
		Method:  http.MethodPatch,
		Path:    s.opts.ItemPath(id),
		Payload: payload,
	})
}

// Remove deletes an item once confirm agrees. No request is sent otherwise.
func (s *Store[T]) Remove(ctx context.Context, id int64, confirm Confirmer) error {
	if !Confirm(confirm, DeletePrompt(s.opts.Name)) {
		return ErrNotConfirmed
	}
	return s.Mutate(ctx, Mutation{
		Action:  "delete " + s.opts.Name,
		Success: capitalize(s.opts.Name) + " deleted successfully.",
		Method:  http.MethodDelete,
		Path:    s.opts.ItemPath(id),
	})
}

// FailureMessage builds "Failed to <action>" with any server detail appended.
func FailureMessage(action string, err error) string {
	msg := "Failed to " + action + "."
	if errors.Is(err, backend.ErrValidation) {
		if detail := backend.Message(err); detail != "" {
			msg = fmt.Sprintf("Failed to %s: %s", action, detail)
		}
	}
	return msg
}

func (s *Store[T]) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func (s *Store[T]) notify(kind, message string) {
	if s.opts.Notifier == nil {
		return
	}
	s.opts.Notifier.Notify(kind, message)
}
