package visitors

import (
	"context"
	"net/http"

	"github.com/fairdesk/fairdesk/internal/admin"
	"github.com/fairdesk/fairdesk/internal/backend"
	"github.com/fairdesk/fairdesk/internal/resource"
	"github.com/fairdesk/fairdesk/internal/shared"
)

// Options describes the visitor collection to resource.Store.
func Options() resource.Options {
	return resource.Options{
		Name:       "visitor",
		Plural:     "visitors",
		Collection: backend.PathVisitors,
	}
}

// Service applies visitor operations to one request-scoped store.
type Service struct {
	store *resource.Store[Visitor]
}

// NewService wraps store.
func NewService(store *resource.Store[Visitor]) *Service {
	return &Service{store: store}
}

// Store exposes the underlying store.
func (s *Service) Store() *resource.Store[Visitor] {
	return s.store
}

// List returns the loaded visitors matching q and status.
func (s *Service) List(q, status string) []Visitor {
	return resource.Filter(s.store.Items(), func(v Visitor) bool { return v.Matches(q, status) })
}

// Stats counts the loaded visitors by status.
func (s *Service) Stats() admin.StatusStats {
	return admin.CountStatuses(s.store.Items(), Visitor.CurrentStatus)
}

// UpdateStatus PATCHes the status of one registration.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status admin.Status) error {
	if !status.Valid() {
		errs := shared.ValidationErrors{}
		errs.Add("status", "must be one of pending, contacted, paid, rejected")
		return errs
	}
	return s.store.Patch(ctx, id, "update status", "Status updated successfully.",
		resource.JSON(map[string]string{"status": string(status)}))
}

// Delete removes a registration once confirm agrees.
func (s *Service) Delete(ctx context.Context, id int64, confirm resource.Confirmer) error {
	return s.store.Remove(ctx, id, confirm)
}

// Register submits a public registration without a token.
func Register(ctx context.Context, client *backend.Client, input Input) error {
	if err := shared.ValidateStruct(input); err != nil {
		return err
	}
	return client.Do(ctx, backend.Request{
		Method: http.MethodPost,
		Path:   backend.PathVisitors,
		JSON:   input,
	}, nil)
}
