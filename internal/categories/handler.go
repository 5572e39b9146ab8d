package categories

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

// Handler serves the categories tab and its write routes.
type Handler struct {
	kit  *admin.Kit
	rbac rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(kit *admin.Kit, rbac rbac.Middleware) *Handler {
	return &Handler{kit: kit, rbac: rbac}
}

// MountRoutes registers the category routes under the dashboard prefix.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/categories", func(r chi.Router) {
		r.Use(h.rbac.RequireTab(rbac.TabCategories))
		r.Get("/new", h.showNew)
		r.Post("/", h.create)
		r.Get("/{id}/edit", h.showEdit)
		r.Get("/{id}/delete", h.confirmDelete)
		r.Post("/{id}", h.update)
		r.Post("/{id}/delete", h.delete)
	})
}

type listPage struct {
	admin.Listing
	Items []Category
}

type formPage struct {
	ID     int64
	Form   Input
	Image  string
	Errors shared.ValidationErrors
	Busy   bool
}

// ServeTab renders the categories tab of the dashboard.
func (h *Handler) ServeTab(w http.ResponseWriter, r *http.Request) {
	svc := h.service(r)
	if !admin.Load(h.kit, w, r, svc.Store()) {
		return
	}
	h.kit.Pages.Render(w, r, view.Page{
		Name:  "pages/categories.html",
		Title: "Categories",
		Tab:   rbac.TabCategories,
		Data: listPage{
			Listing: h.kit.Listing(r, rbac.TabCategories, svc.Store().Stale()),
			Items:   svc.Store().Items(),
		},
	})
}

func (h *Handler) showNew(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, formPage{})
}

func (h *Handler) showEdit(w http.ResponseWriter, r *http.Request) {
	id, err := admin.ParseID(r)
	if err != nil {
		h.kit.NotFound(w, r, rbac.TabCategories)
		return
	}
	svc := h.service(r)
	if !admin.Load(h.kit, w, r, svc.Store()) {
		return
	}
	item, ok := svc.Find(id)
	if !ok {
		h.kit.NotFound(w, r, rbac.TabCategories)
		return
	}
	h.renderForm(w, r, http.StatusOK, formPage{ID: id, Form: InputFrom(item), Image: item.Image})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, 0)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := admin.ParseID(r)
	if err != nil {
		h.kit.NotFound(w, r, rbac.TabCategories)
		return
	}
	h.save(w, r, id)
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request, id int64) {
	input := ParseInput(r)
	image, errs := h.kit.FormImage(r, shared.FieldErrors(shared.ValidateStruct(input)))
	if errs != nil {
		h.renderForm(w, r, http.StatusUnprocessableEntity, formPage{ID: id, Form: input, Errors: errs})
		return
	}

	svc := h.service(r)
	h.kit.Mutate(w, r, rbac.TabCategories, func(ctx context.Context) error {
		if id == 0 {
			return svc.Create(ctx, input, image)
		}
		return svc.Update(ctx, id, input, image)
	})
}

func (h *Handler) confirmDelete(w http.ResponseWriter, r *http.Request) {
	h.kit.ConfirmDelete(w, r, rbac.TabCategories, "category", r.URL.Query().Get("label"))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := admin.ParseID(r)
	if err != nil {
		h.kit.NotFound(w, r, rbac.TabCategories)
		return
	}
	svc := h.service(r)
	h.kit.Mutate(w, r, rbac.TabCategories, func(ctx context.Context) error {
		return svc.Delete(ctx, id, admin.Confirmation(r))
	})
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, status int, page formPage) {
	page.Busy = h.kit.Held(r, rbac.TabCategories)
	title := "New category"
	if page.ID != 0 {
		title = "Edit category"
	}
	h.kit.Pages.Render(w, r, view.Page{
		Name:   "pages/category_form.html",
		Title:  title,
		Tab:    rbac.TabCategories,
		Status: status,
		Data:   page,
	})
}

// Summarize counts the tab for the dashboard overview.
func (h *Handler) Summarize(ctx context.Context, r *http.Request) (admin.Summary, error) {
	return admin.Count[Category](ctx, h.kit, r, rbac.TabCategories, Options(), nil)
}

func (h *Handler) service(r *http.Request) *Service {
	return NewService(admin.NewStore[Category](h.kit, r, Options()))
}

// ParseInput reads the category form.
func ParseInput(r *http.Request) Input {
	return Input{
		Name:        strings.TrimSpace(r.PostFormValue("name")),
		Description: strings.TrimSpace(r.PostFormValue("description")),
		Icon:        strings.TrimSpace(r.PostFormValue("icon")),
	}
}
