package events

import (
	"context"

	"github.com/fairdesk/fairdesk/internal/backend"
	"github.com/fairdesk/fairdesk/internal/resource"
)

// Options describes the event collection to resource.Store.
func Options() resource.Options {
	return resource.Options{
		Name:       "event",
		Plural:     "events",
		Collection: backend.PathEvents,
	}
}

// Service applies event operations to one request-scoped store.
type Service struct {
	store *resource.Store[Event]
}

// NewService wraps store and orders its list by start date.
func NewService(store *resource.Store[Event]) *Service {
	store.WithArrange(ByStartDate)
	return &Service{store: store}
}

// Store exposes the underlying store.
func (s *Service) Store() *resource.Store[Event] {
	return s.store
}

// Find returns the loaded event with id.
func (s *Service) Find(id int64) (Event, bool) {
	return s.store.Find(func(e Event) bool { return e.ID == id })
}

// Create POSTs a new event.
func (s *Service) Create(ctx context.Context, input Input) error {
	if err := input.Validate(); err != nil {
		return err
	}
	return s.store.Create(ctx, resource.JSON(input))
}

// Update PUTs the full event.
func (s *Service) Update(ctx context.Context, id int64, input Input) error {
	if err := input.Validate(); err != nil {
		return err
	}
	return s.store.Update(ctx, id, resource.JSON(input))
}

// Delete removes an event once confirm agrees.
func (s *Service) Delete(ctx context.Context, id int64, confirm resource.Confirmer) error {
	return s.store.Remove(ctx, id, confirm)
}

// Public lists events without a token, earliest first.
func Public(ctx context.Context, client *backend.Client) ([]Event, error) {
	items, err := backend.GetList[Event](ctx, client, backend.PathEvents, "")
	if err != nil {
		return nil, err
	}
	return ByStartDate(items), nil
}
