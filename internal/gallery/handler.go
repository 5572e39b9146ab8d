package gallery

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/fairdesk/fairdesk/internal/admin"
	"github.com/fairdesk/fairdesk/internal/backend"
	"github.com/fairdesk/fairdesk/internal/rbac"
	"github.com/fairdesk/fairdesk/internal/shared"
	"github.com/fairdesk/fairdesk/internal/view"
)

// Handler serves the gallery tab and its write routes.
type Handler struct {
	kit  *admin.Kit
	rbac rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(kit *admin.Kit, rbac rbac.Middleware) *Handler {
	return &Handler{kit: kit, rbac: rbac}
}

// MountRoutes registers the gallery routes under the dashboard prefix.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/gallery", func(r chi.Router) {
		r.Use(h.rbac.RequireTab(rbac.TabGallery))
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
	Items []Image
}

type formPage struct {
	ID     int64
	Form   Input
	Image  string
	Errors shared.ValidationErrors
	Busy   bool
}

// ServeTab renders the gallery tab of the dashboard.
func (h *Handler) ServeTab(w http.ResponseWriter, r *http.Request) {
	svc := h.service(r)
	if !admin.Load(h.kit, w, r, svc.Store()) {
		return
	}
	h.kit.Pages.Render(w, r, view.Page{
		Name:  "pages/gallery.html",
		Title: "Gallery",
		Tab:   rbac.TabGallery,
		Data: listPage{
			Listing: h.kit.Listing(r, rbac.TabGallery, svc.Store().Stale()),
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
		h.kit.NotFound(w, r, rbac.TabGallery)
		return
	}
	svc := h.service(r)
	if !admin.Load(h.kit, w, r, svc.Store()) {
		return
	}
	item, ok := svc.Find(id)
	if !ok {
		h.kit.NotFound(w, r, rbac.TabGallery)
		return
	}
	h.renderForm(w, r, http.StatusOK, formPage{ID: id, Form: InputFrom(item), Image: item.Src()})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, 0)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := admin.ParseID(r)
	if err != nil {
		h.kit.NotFound(w, r, rbac.TabGallery)
		return
	}
	h.save(w, r, id)
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request, id int64) {
	input := ParseInput(r)
	image, errs := h.kit.FormImage(r, shared.FieldErrors(shared.ValidateStruct(input)))
	if id == 0 && image == nil {
		if errs == nil {
			errs = shared.ValidationErrors{}
		}
		errs.Add(backend.ImageField, "is required")
	}
	if errs != nil {
		h.renderForm(w, r, http.StatusUnprocessableEntity, formPage{ID: id, Form: input, Errors: errs})
		return
	}

	svc := h.service(r)
	h.kit.Mutate(w, r, rbac.TabGallery, func(ctx context.Context) error {
		if id == 0 {
			return svc.Create(ctx, input, image)
		}
		return svc.Update(ctx, id, input, image)
	})
}

func (h *Handler) confirmDelete(w http.ResponseWriter, r *http.Request) {
	h.kit.ConfirmDelete(w, r, rbac.TabGallery, "gallery image", r.URL.Query().Get("label"))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := admin.ParseID(r)
	if err != nil {
		h.kit.NotFound(w, r, rbac.TabGallery)
		return
	}
	svc := h.service(r)
	h.kit.Mutate(w, r, rbac.TabGallery, func(ctx context.Context) error {
		return svc.Delete(ctx, id, admin.Confirmation(r))
	})
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, status int, page formPage) {
	page.Busy = h.kit.Held(r, rbac.TabGallery)
	title := "New gallery image"
	if page.ID != 0 {
		title = "Edit gallery image"
	}
	h.kit.Pages.Render(w, r, view.Page{
		Name:   "pages/gallery_form.html",
		Title:  title,
		Tab:    rbac.TabGallery,
		Status: status,
		Data:   page,
	})
}

// Summarize counts the tab for the dashboard overview.
func (h *Handler) Summarize(ctx context.Context, r *http.Request) (admin.Summary, error) {
	return admin.Count[Image](ctx, h.kit, r, rbac.TabGallery, Options(), nil)
}

func (h *Handler) service(r *http.Request) *Service {
	return NewService(admin.NewStore[Image](h.kit, r, Options()))
}

// ParseInput reads the gallery form.
func ParseInput(r *http.Request) Input {
	field := func(name string) string { return strings.TrimSpace(r.PostFormValue(name)) }
	return Input{
		Title:       field("title"),
		Description: field("description"),
		Location:    field("location"),
		GalleryType: field("gallery_type"),
		AboutType:   field("about_type"),
	}
}
