package exhibitors

import (
	"context"
	"net/http"
	"strings"

	"github.com/fairdesk/fairdesk/internal/admin"
	"github.com/fairdesk/fairdesk/internal/backend"
	"github.com/fairdesk/fairdesk/internal/resource"
	"github.com/fairdesk/fairdesk/internal/shared"
)

// Options describes the exhibitor collection to resource.Store.
func Options() resource.Options {
	return resource.Options{
		Name:       "exhibitor",
		Plural:     "exhibitors",
		Collection: backend.PathExhibitors,
	}
}

// Service applies exhibitor operations to one request-scoped store.
type Service struct {
	store *resource.Store[Exhibitor]
}

// NewService wraps store.
func NewService(store *resource.Store[Exhibitor]) *Service {
	return &Service{store: store}
}

// Store exposes the underlying store.
func (s *Service) Store() *resource.Store[Exhibitor] {
	return s.store
}

// Load fetches the list.
func (s *Service) Load(ctx context.Context) error {
	return s.store.FetchAll(ctx)
}

// List returns the loaded exhibitors matching q and status.
func (s *Service) List(q, status string) []Exhibitor {
	return resource.Filter(s.store.Items(), func(e Exhibitor) bool { return e.Matches(q, status) })
}

// Stats counts the loaded exhibitors by status.
func (s *Service) Stats() admin.StatusStats {
	return admin.CountStatuses(s.store.Items(), func(e Exhibitor) admin.Status { return e.Status })
}

// Find returns the loaded exhibitor with id.
func (s *Service) Find(id int64) (Exhibitor, bool) {
	return s.store.Find(func(e Exhibitor) bool { return e.ID == id })
}

// UpdateStatus PATCHes the status of one registration.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status admin.Status) error {
	if !status.Valid() {
		errs := shared.ValidationErrors{}
		errs.Add("status", "must be one of "+statusList())
		return errs
	}
	return s.store.Patch(ctx, id, "update status", "Status updated successfully.",
		resource.JSON(map[string]string{"status": string(status)}))
}

// Update PUTs the full registration.
func (s *Service) Update(ctx context.Context, id int64, input Input) error {
	if err := shared.ValidateStruct(input); err != nil {
		return err
	}
	return s.store.Update(ctx, id, resource.JSON(input))
}

// Delete removes a registration once confirm agrees.
func (s *Service) Delete(ctx context.Context, id int64, confirm resource.Confirmer) error {
	return s.store.Remove(ctx, id, confirm)
}

// Register submits a public registration. No token is sent and nothing is refetched.
func Register(ctx context.Context, client *backend.Client, input Input) error {
	if err := shared.ValidateStruct(input); err != nil {
		return err
	}
	return client.Do(ctx, backend.Request{
		Method: http.MethodPost,
		Path:   backend.PathExhibitors,
		JSON:   input,
	}, nil)
}

func statusList() string {
	names := make([]string, 0, len(admin.Statuses()))
	for _, s := range admin.Statuses() {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}
