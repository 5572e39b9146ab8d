package team

import (
	"context"

	"github.com/fairdesk/fairdesk/internal/backend"
	"github.com/fairdesk/fairdesk/internal/resource"
	"github.com/fairdesk/fairdesk/internal/shared"
)

// Options describes the team endpoints to resource.Store. They do not
// follow the REST layout of the other collections.
func Options() resource.Options {
	return resource.Options{
		Name:       "team member",
		Plural:     "team members",
		Collection: backend.PathTeamList,
		ListPath:   backend.PathTeamList,
		CreatePath: backend.PathTeamCreate,
		ItemPath:   func(id int64) string { return backend.ItemPath(backend.PathTeamDelete, id) },
	}
}

// Service applies team operations to one request-scoped store.
type Service struct {
	store *resource.Store[Member]
}

// NewService wraps store and lists admins first.
func NewService(store *resource.Store[Member]) *Service {
	store.WithArrange(AdminsFirst)
	return &Service{store: store}
}

// Store exposes the underlying store.
func (s *Service) Store() *resource.Store[Member] {
	return s.store
}

// Find returns the loaded member with id.
func (s *Service) Find(id int64) (Member, bool) {
	return s.store.Find(func(m Member) bool { return m.ID == id })
}

// Invite creates a manager or sales account.
func (s *Service) Invite(ctx context.Context, input Input) error {
	if err := shared.ValidateStruct(input); err != nil {
		return err
	}
	return s.store.Create(ctx, resource.JSON(input))
}

// Delete removes member once confirm agrees. Admins are refused before
// anything is sent.
func (s *Service) Delete(ctx context.Context, member Member, confirm resource.Confirmer) error {
	if member.Protected() {
		return ErrAdminProtected
	}
	return s.store.Remove(ctx, member.ID, confirm)
}
