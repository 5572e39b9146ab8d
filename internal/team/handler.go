package team

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/fairdesk/fairdesk/internal/admin"
	"github.com/fairdesk/fairdesk/internal/rbac"
	"github.com/fairdesk/fairdesk/internal/shared"
	"github.com/fairdesk/fairdesk/internal/view"
)

const adminProtectedMessage = "Admin accounts cannot be removed."

// Handler serves the team tab and its write routes.
type Handler struct {
	kit  *admin.Kit
	rbac rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(kit *admin.Kit, rbac rbac.Middleware) *Handler {
	return &Handler{kit: kit, rbac: rbac}
}

// MountRoutes registers the team routes under the dashboard prefix.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/team", func(r chi.Router) {
		r.Use(h.rbac.RequireTab(rbac.TabTeam))
		r.Post("/", h.invite)
		r.Get("/{id}/delete", h.confirmDelete)
		r.Post("/{id}/delete", h.delete)
	})
}

type listPage struct {
	admin.Listing
	Items  []Member
	Roles  []rbac.Role
	Form   Input
	Errors shared.ValidationErrors
}

// ServeTab renders the team tab of the dashboard.
func (h *Handler) ServeTab(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, Input{Role: rbac.RoleSales}, nil)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, form Input, errs shared.ValidationErrors) {
	svc := h.service(r)
	if !admin.Load(h.kit, w, r, svc.Store()) {
		return
	}
	h.kit.Pages.Render(w, r, view.Page{
		Name:   "pages/team.html",
		Title:  "Team",
		Tab:    rbac.TabTeam,
		Status: status,
		Data: listPage{
			Listing: h.kit.Listing(r, rbac.TabTeam, svc.Store().Stale()),
			Items:   svc.Store().Items(),
			Roles:   AssignableRoles(),
			Form:    form,
			Errors:  errs,
		},
	})
}

func (h *Handler) invite(w http.ResponseWriter, r *http.Request) {
	input := Input{
		Name:  strings.TrimSpace(r.PostFormValue("name")),
		Email: strings.TrimSpace(r.PostFormValue("email")),
		Role:  rbac.Role(strings.TrimSpace(r.PostFormValue("role"))),
	}
	if errs := shared.FieldErrors(shared.ValidateStruct(input)); errs != nil {
		h.render(w, r, http.StatusUnprocessableEntity, input, errs)
		return
	}
	svc := h.service(r)
	h.kit.Mutate(w, r, rbac.TabTeam, func(ctx context.Context) error {
		return svc.Invite(ctx, input)
	})
}

func (h *Handler) confirmDelete(w http.ResponseWriter, r *http.Request) {
	id, err := admin.ParseID(r)
	if err != nil {
		h.kit.NotFound(w, r, rbac.TabTeam)
		return
	}
	svc := h.service(r)
	if !admin.Load(h.kit, w, r, svc.Store()) {
		return
	}
	member, ok := svc.Find(id)
	switch {
	case !ok:
		h.kit.NotFound(w, r, rbac.TabTeam)
	case member.Protected():
		h.refuseAdmin(w, r)
	default:
		h.kit.ConfirmDelete(w, r, rbac.TabTeam, "team member", member.Name)
	}
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := admin.ParseID(r)
	if err != nil {
		h.kit.NotFound(w, r, rbac.TabTeam)
		return
	}
	svc := h.service(r)
	h.kit.Mutate(w, r, rbac.TabTeam, func(ctx context.Context) error {
		if err := svc.Store().FetchAll(ctx); err != nil {
			return err
		}
		member, ok := svc.Find(id)
		if !ok {
			return admin.Refusal{Message: "That item no longer exists."}
		}
		err := svc.Delete(ctx, member, admin.Confirmation(r))
		if errors.Is(err, ErrAdminProtected) {
			return admin.Refusal{Message: adminProtectedMessage}
		}
		return err
	})
}

func (h *Handler) refuseAdmin(w http.ResponseWriter, r *http.Request) {
	shared.RedirectWithFlash(w, r, shared.TabURL(string(rbac.TabTeam), nil), shared.FlashError, adminProtectedMessage)
}

// Summarize counts the tab for the dashboard overview.
func (h *Handler) Summarize(ctx context.Context, r *http.Request) (admin.Summary, error) {
	return admin.Count[Member](ctx, h.kit, r, rbac.TabTeam, Options(), nil)
}

func (h *Handler) service(r *http.Request) *Service {
	return NewService(admin.NewStore[Member](h.kit, r, Options()))
}
