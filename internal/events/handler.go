package events

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

// Handler serves the events tab and its write routes.
type Handler struct {
	kit  *admin.Kit
	rbac rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(kit *admin.Kit, rbac rbac.Middleware) *Handler {
	return &Handler{kit: kit, rbac: rbac}
}

// MountRoutes registers the event routes under the dashboard prefix.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/events", func(r chi.Router) {
		r.Use(h.rbac.RequireTab(rbac.TabEvents))
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
	Items []Event
}

type formPage struct {
	ID     int64
	Form   Input
	Errors shared.ValidationErrors
	Busy   bool
}

// ServeTab renders the events tab of the dashboard.
func (h *Handler) ServeTab(w http.ResponseWriter, r *http.Request) {
	svc := h.service(r)
	if !admin.Load(h.kit, w, r, svc.Store()) {
		return
	}
	h.kit.Pages.Render(w, r, view.Page{
		Name:  "pages/events.html",
		Title: "Events",
		Tab:   rbac.TabEvents,
		Data: listPage{
			Listing: h.kit.Listing(r, rbac.TabEvents, svc.Store().Stale()),
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
		h.kit.NotFound(w, r, rbac.TabEvents)
		return
	}
	svc := h.service(r)
	if !admin.Load(h.kit, w, r, svc.Store()) {
		return
	}
	item, ok := svc.Find(id)
	if !ok {
		h.kit.NotFound(w, r, rbac.TabEvents)
		return
	}
	h.renderForm(w, r, http.StatusOK, formPage{ID: id, Form: InputFrom(item)})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	input, errs := ParseInput(r)
	if errs != nil {
		h.renderForm(w, r, http.StatusUnprocessableEntity, formPage{Form: input, Errors: errs})
		return
	}
	svc := h.service(r)
	h.kit.Mutate(w, r, rbac.TabEvents, func(ctx context.Context) error {
		return svc.Create(ctx, input)
	})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := admin.ParseID(r)
	if err != nil {
		h.kit.NotFound(w, r, rbac.TabEvents)
		return
	}
	input, errs := ParseInput(r)
	if errs != nil {
		h.renderForm(w, r, http.StatusUnprocessableEntity, formPage{ID: id, Form: input, Errors: errs})
		return
	}
	svc := h.service(r)
	h.kit.Mutate(w, r, rbac.TabEvents, func(ctx context.Context) error {
		return svc.Update(ctx, id, input)
	})
}

func (h *Handler) confirmDelete(w http.ResponseWriter, r *http.Request) {
	h.kit.ConfirmDelete(w, r, rbac.TabEvents, "event", r.URL.Query().Get("label"))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := admin.ParseID(r)
	if err != nil {
		h.kit.NotFound(w, r, rbac.TabEvents)
		return
	}
	svc := h.service(r)
	h.kit.Mutate(w, r, rbac.TabEvents, func(ctx context.Context) error {
		return svc.Delete(ctx, id, admin.Confirmation(r))
	})
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, status int, page formPage) {
	page.Busy = h.kit.Held(r, rbac.TabEvents)
	title := "New event"
	if page.ID != 0 {
		title = "Edit event"
	}
	h.kit.Pages.Render(w, r, view.Page{
		Name:   "pages/event_form.html",
		Title:  title,
		Tab:    rbac.TabEvents,
		Status: status,
		Data:   page,
	})
}

// Summarize counts the tab for the dashboard overview.
func (h *Handler) Summarize(ctx context.Context, r *http.Request) (admin.Summary, error) {
	return admin.Count[Event](ctx, h.kit, r, rbac.TabEvents, Options(), nil)
}

func (h *Handler) service(r *http.Request) *Service {
	return NewService(admin.NewStore[Event](h.kit, r, Options()))
}

// ParseInput reads the event form. Count fields must be whole numbers;
// blank counts are zero.
func ParseInput(r *http.Request) (Input, shared.ValidationErrors) {
	field := func(name string) string { return strings.TrimSpace(r.PostFormValue(name)) }
	input := Input{
		Title:       field("title"),
		Location:    field("location"),
		StartDate:   field("start_date"),
		EndDate:     field("end_date"),
		Time:        field("time"),
		Description: field("description"),
		IsPast:      ParseFlag(r.PostFormValue("is_past")),
	}

	errs := shared.ValidationErrors{}
	for name, dst := range map[string]*int{
		"exhibitors": &input.Exhibitors,
		"buyers":     &input.Buyers,
		"countries":  &input.Countries,
		"sectors":    &input.Sectors,
	} {
		n, ok := ParseCount(r.PostFormValue(name))
		if !ok {
			errs.Add(name, "must be a whole number")
			continue
		}
		*dst = n
	}
	for field, msg := range shared.FieldErrors(input.Validate()) {
		errs.Add(field, msg)
	}
	if len(errs) == 0 {
		return input, nil
	}
	return input, errs
}
