package gallery

import (
	"context"

	"github.com/fairdesk/fairdesk/internal/backend"
	"github.com/fairdesk/fairdesk/internal/resource"
	"github.com/fairdesk/fairdesk/internal/shared"
)

// Options describes the gallery collection to resource.Store.
func Options() resource.Options {
	return resource.Options{
		Name:       "gallery image",
		Plural:     "gallery images",
		Collection: backend.PathGallery,
	}
}

// Service applies gallery operations to one request-scoped store.
type Service struct {
	store *resource.Store[Image]
}

// NewService wraps store.
func NewService(store *resource.Store[Image]) *Service {
	return &Service{store: store}
}

// Store exposes the underlying store.
func (s *Service) Store() *resource.Store[Image] {
	return s.store
}

// Find returns the loaded entry with id.
func (s *Service) Find(id int64) (Image, bool) {
	return s.store.Find(func(i Image) bool { return i.ID == id })
}

// Create uploads a new entry. The picture is required.
func (s *Service) Create(ctx context.Context, input Input, image *backend.Upload) error {
	errs := shared.FieldErrors(shared.ValidateStruct(input))
	if image == nil {
		if errs == nil {
			errs = shared.ValidationErrors{}
		}
		errs.Add(backend.ImageField, "is required")
	}
	if err := errs.Err(); err != nil {
		return err
	}
	return s.store.Create(ctx, resource.Multipart(form(input, image)))
}

// Update replaces an entry. Without a new picture no image part is sent
// and the server keeps the current one.
func (s *Service) Update(ctx context.Context, id int64, input Input, image *backend.Upload) error {
	if err := shared.ValidateStruct(input); err != nil {
		return err
	}
	return s.store.Update(ctx, id, resource.Multipart(form(input, image)))
}

// Delete removes an entry once confirm agrees.
func (s *Service) Delete(ctx context.Context, id int64, confirm resource.Confirmer) error {
	return s.store.Remove(ctx, id, confirm)
}

// Public lists the gallery without a token.
func Public(ctx context.Context, client *backend.Client) ([]Image, error) {
	return backend.GetList[Image](ctx, client, backend.PathGallery, "")
}

func form(input Input, image *backend.Upload) *backend.Form {
	f := backend.NewForm().
		Set("title", input.Title).
		Set("description", input.Description)
	optional := []struct{ name, value string }{
		{"location", input.Location},
		{"gallery_type", input.GalleryType},
		{"about_type", input.AboutType},
	}
	for _, field := range optional {
		if field.value != "" {
			f.Set(field.name, field.value)
		}
	}
	if image != nil {
		f.Attach(image)
	}
	return f
}
