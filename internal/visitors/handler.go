package visitors

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/fairdesk/fairdesk/internal/admin"
	"github.com/fairdesk/fairdesk/internal/rbac"
	"github.com/fairdesk/fairdesk/internal/view"
)

// Handler serves the visitors tab and its write routes.
type Handler struct {
	kit  *admin.Kit
	rbac rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(kit *admin.Kit, rbac rbac.Middleware) *Handler {
	return &Handler{kit: kit, rbac: rbac}
}

// MountRoutes registers the visitor routes under the dashboard prefix.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/visitors", func(r chi.Router) {
		r.Use(h.rbac.RequireTab(rbac.TabVisitors))
		r.Get("/{id}/delete", h.confirmDelete)
		r.Post("/{id}/status", h.updateStatus)
		r.Post("/{id}/delete", h.delete)
	})
}

type listPage struct {
	admin.Listing
	Items    []Visitor
	Stats    admin.StatusStats
	Statuses []admin.Status
}

// ServeTab renders the visitors tab of the dashboard.
func (h *Handler) ServeTab(w http.ResponseWriter, r *http.Request) {
	svc := h.service(r)
	if !admin.Load(h.kit, w, r, svc.Store()) {
		return
	}
	listing := h.kit.Listing(r, rbac.TabVisitors, svc.Store().Stale())
	h.kit.Pages.Render(w, r, view.Page{
		Name:  "pages/visitors.html",
		Title: "Visitors",
		Tab:   rbac.TabVisitors,
		Data: listPage{
			Listing:  listing,
			Items:    svc.List(listing.Query, listing.Status),
			Stats:    svc.Stats(),
			Statuses: admin.Statuses(),
		},
	})
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := admin.ParseID(r)
	if err != nil {
		h.kit.NotFound(w, r, rbac.TabVisitors)
		return
	}
	status := admin.Status(strings.TrimSpace(r.PostFormValue("status")))
	svc := h.service(r)
	h.kit.Mutate(w, r, rbac.TabVisitors, func(ctx context.Context) error {
		return svc.UpdateStatus(ctx, id, status)
	})
}

func (h *Handler) confirmDelete(w http.ResponseWriter, r *http.Request) {
	h.kit.ConfirmDelete(w, r, rbac.TabVisitors, "visitor", r.URL.Query().Get("label"))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := admin.ParseID(r)
	if err != nil {
		h.kit.NotFound(w, r, rbac.TabVisitors)
		return
	}
	svc := h.service(r)
	h.kit.Mutate(w, r, rbac.TabVisitors, func(ctx context.Context) error {
		return svc.Delete(ctx, id, admin.Confirmation(r))
	})
}

// Summarize counts the tab for the dashboard overview.
func (h *Handler) Summarize(ctx context.Context, r *http.Request) (admin.Summary, error) {
	return admin.Count[Visitor](ctx, h.kit, r, rbac.TabVisitors, Options(), Visitor.CurrentStatus)
}

func (h *Handler) service(r *http.Request) *Service {
	return NewService(admin.NewStore[Visitor](h.kit, r, Options()))
}

// ParseInput reads the public registration form.
func ParseInput(r *http.Request) Input {
	field := func(name string) string { return strings.TrimSpace(r.PostFormValue(name)) }
	return Input{
		FirstName:        field("first_name"),
		LastName:         field("last_name"),
		CompanyName:      field("company_name"),
		EmailAddress:     field("email_address"),
		PhoneNumber:      field("phone_number"),
		IndustryInterest: field("industry_interest"),
	}
}
