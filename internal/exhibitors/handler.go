package exhibitors

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/fairdesk/fairdesk/internal/admin"
	"github.com/fairdesk/fairdesk/internal/rbac"
	"github.com/fairdesk/fairdesk/internal/shared"
	"github.com/fairdesk/fairdesk/internal/view"
)

// Handler serves the exhibitors tab and its write routes.
type Handler struct {
	kit  *admin.Kit
	rbac rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(kit *admin.Kit, rbac rbac.Middleware) *Handler {
	return &Handler{kit: kit, rbac: rbac}
}

// MountRoutes registers the exhibitor routes under the dashboard prefix.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/exhibitors", func(r chi.Router) {
		r.Use(h.rbac.RequireTab(rbac.TabExhibitors))
		r.Get("/{id}/edit", h.showEdit)
		r.Get("/{id}/delete", h.confirmDelete)
		r.Post("/{id}", h.update)
		r.Post("/{id}/status", h.updateStatus)
		r.Post("/{id}/delete", h.delete)
	})
}

type listPage struct {
	admin.Listing
	Items    []Exhibitor
	Stats    admin.StatusStats
	Statuses []admin.Status
}

type formPage struct {
	ID       int64
	Form     Input
	Errors   shared.ValidationErrors
	Statuses []admin.Status
	Busy     bool
}

// ServeTab renders the exhibitors tab of the dashboard.
func (h *Handler) ServeTab(w http.ResponseWriter, r *http.Request) {
	svc := h.service(r)
	if !admin.Load(h.kit, w, r, svc.Store()) {
		return
	}
	listing := h.kit.Listing(r, rbac.TabExhibitors, svc.Store().Stale())
	h.kit.Pages.Render(w, r, view.Page{
		Name:  "pages/exhibitors.html",
		Title: "Exhibitors",
		Tab:   rbac.TabExhibitors,
		Data: listPage{
			Listing:  listing,
			Items:    svc.List(listing.Query, listing.Status),
			Stats:    svc.Stats(),
			Statuses: admin.Statuses(),
		},
	})
}

func (h *Handler) showEdit(w http.ResponseWriter, r *http.Request) {
	id, err := admin.ParseID(r)
	if err != nil {
		h.kit.NotFound(w, r, rbac.TabExhibitors)
		return
	}
	svc := h.service(r)
	if !admin.Load(h.kit, w, r, svc.Store()) {
		return
	}
	item, ok := svc.Find(id)
	if !ok {
		h.kit.NotFound(w, r, rbac.TabExhibitors)
		return
	}
	h.renderForm(w, r, http.StatusOK, formPage{ID: id, Form: InputFrom(item)})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := admin.ParseID(r)
	if err != nil {
		h.kit.NotFound(w, r, rbac.TabExhibitors)
		return
	}
	input := ParseInput(r)
	if errs := shared.FieldErrors(shared.ValidateStruct(input)); errs != nil {
		h.renderForm(w, r, http.StatusUnprocessableEntity, formPage{ID: id, Form: input, Errors: errs})
		return
	}
	svc := h.service(r)
	h.kit.Mutate(w, r, rbac.TabExhibitors, func(ctx context.Context) error {
		return svc.Update(ctx, id, input)
	})
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := admin.ParseID(r)
	if err != nil {
		h.kit.NotFound(w, r, rbac.TabExhibitors)
		return
	}
	status := admin.Status(strings.TrimSpace(r.PostFormValue("status")))
	svc := h.service(r)
	h.kit.Mutate(w, r, rbac.TabExhibitors, func(ctx context.Context) error {
		return svc.UpdateStatus(ctx, id, status)
	})
}

func (h *Handler) confirmDelete(w http.ResponseWriter, r *http.Request) {
	h.kit.ConfirmDelete(w, r, rbac.TabExhibitors, "exhibitor", r.URL.Query().Get("label"))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := admin.ParseID(r)
	if err != nil {
		h.kit.NotFound(w, r, rbac.TabExhibitors)
		return
	}
	svc := h.service(r)
	h.kit.Mutate(w, r, rbac.TabExhibitors, func(ctx context.Context) error {
		return svc.Delete(ctx, id, admin.Confirmation(r))
	})
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, status int, page formPage) {
	page.Busy = h.kit.Held(r, rbac.TabExhibitors)
	page.Statuses = admin.Statuses()
	h.kit.Pages.Render(w, r, view.Page{
		Name:   "pages/exhibitor_form.html",
		Title:  "Edit exhibitor",
		Tab:    rbac.TabExhibitors,
		Status: status,
		Data:   page,
	})
}

// Summarize counts the tab for the dashboard overview.
func (h *Handler) Summarize(ctx context.Context, r *http.Request) (admin.Summary, error) {
	return admin.Count[Exhibitor](ctx, h.kit, r, rbac.TabExhibitors, Options(), func(e Exhibitor) admin.Status { return e.Status })
}

func (h *Handler) service(r *http.Request) *Service {
	return NewService(admin.NewStore[Exhibitor](h.kit, r, Options()))
}

// ParseInput reads a registration form.
func ParseInput(r *http.Request) Input {
	field := func(name string) string { return strings.TrimSpace(r.PostFormValue(name)) }
	return Input{
		CompanyName:       field("company_name"),
		ContactPersonName: field("contact_person_name"),
		Designation:       field("designation"),
		EmailAddress:      field("email_address"),
		ContactNumber:     field("contact_number"),
		ProductCategory:   field("product_category"),
		CompanyAddress:    field("company_address"),
	}
}
