package categories

import (
	"context"

	"github.com/fairdesk/fairdesk/internal/backend"
	"github.com/fairdesk/fairdesk/internal/resource"
	"github.com/fairdesk/fairdesk/internal/shared"
)

// Options describes the category collection to resource.Store.
func Options() resource.Options {
	return resource.Options{
		Name:       "category",
		Plural:     "categories",
		Collection: backend.PathCategories,
	}
}

// Service applies category operations to one request-scoped store.
type Service struct {
	store *resource.Store[Category]
}

// NewService wraps store.
func NewService(store *resource.Store[Category]) *Service {
	return &Service{store: store}
}

// Store exposes the underlying store.
func (s *Service) Store() *resource.Store[Category] {
	return s.store
}

// Find returns the loaded category with id.
func (s *Service) Find(id int64) (Category, bool) {
	return s.store.Find(func(c Category) bool { return c.ID == id })
}

// Create POSTs a category. The picture is optional.
func (s *Service) Create(ctx context.Context, input Input, image *backend.Upload) error {
	if err := shared.ValidateStruct(input); err != nil {
		return err
	}
	return s.store.Create(ctx, payload(input, image))
}

// Update PUTs a category. Without a new picture the current one is kept.
func (s *Service) Update(ctx context.Context, id int64, input Input, image *backend.Upload) error {
	if err := shared.ValidateStruct(input); err != nil {
		return err
	}
	return s.store.Update(ctx, id, payload(input, image))
}

// Delete removes a category once confirm agrees.
func (s *Service) Delete(ctx context.Context, id int64, confirm resource.Confirmer) error {
	return s.store.Remove(ctx, id, confirm)
}

// Public lists categories without a token.
func Public(ctx context.Context, client *backend.Client) ([]Category, error) {
	return backend.GetList[Category](ctx, client, backend.PathCategories, "")
}

// payload sends JSON unless a picture is attached.
func payload(input Input, image *backend.Upload) resource.Payload {
	if image == nil {
		return resource.JSON(input)
	}
	form := backend.NewForm().
		Set("name", input.Name).
		Set("description", input.Description).
		Set("icon", input.Icon).
		Attach(image)
	return resource.Multipart(form)
}
