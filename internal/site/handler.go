// Package site serves the public pages: event listings, categories, the
// gallery and the two registration forms.
package site

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/singleflight"

	"github.com/fairdesk/fairdesk/internal/backend"
	"github.com/fairdesk/fairdesk/internal/categories"
	"github.com/fairdesk/fairdesk/internal/events"
	"github.com/fairdesk/fairdesk/internal/exhibitors"
	"github.com/fairdesk/fairdesk/internal/gallery"
	"github.com/fairdesk/fairdesk/internal/shared"
	"github.com/fairdesk/fairdesk/internal/view"
	"github.com/fairdesk/fairdesk/internal/visitors"
)

const registeredMessage = "Thank you for registering. We will be in touch soon."

const defaultFetchTimeout = 15 * time.Second

// Handler serves the public site. List fetches for the same page are
// collapsed while one is in flight.
type Handler struct {
	client *backend.Client
	pages  *view.Responder
	logger *slog.Logger
	group  singleflight.Group
	now    func() time.Time

	fetchTimeout time.Duration
}

// NewHandler builds Handler instance.
func NewHandler(client *backend.Client, pages *view.Responder, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{client: client, pages: pages, logger: logger, now: time.Now, fetchTimeout: defaultFetchTimeout}
}

// MountRoutes registers the public routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.home)
	r.Get("/exhibitions", h.exhibitions)
	r.Get("/categories", h.categories)
	r.Get("/gallery", h.gallery)
	r.Get("/visitors/register", h.showVisitorForm)
	r.Post("/visitors/register", h.registerVisitor)
	r.Get("/exhibitors/register", h.showExhibitorForm)
	r.Post("/exhibitors/register", h.registerExhibitor)
}

type homePage struct {
	Upcoming []events.Event
	Error    string
}

type exhibitionsPage struct {
	Upcoming []events.Event
	Past     []events.Event
	Error    string
}

type listPage[T any] struct {
	Items []T
	Error string
}

type registerPage[T any] struct {
	Form   T
	Errors shared.ValidationErrors
	Error  string
}

func (h *Handler) home(w http.ResponseWriter, r *http.Request) {
	items, err := fetch(h, r, "events", events.Public)
	page := homePage{Error: h.loadError(err, "events")}
	page.Upcoming, _ = events.Split(items, h.now())
	h.render(w, r, "pages/home.html", "Welcome", err, page)
}

func (h *Handler) exhibitions(w http.ResponseWriter, r *http.Request) {
	items, err := fetch(h, r, "events", events.Public)
	page := exhibitionsPage{Error: h.loadError(err, "exhibitions")}
	page.Upcoming, page.Past = events.Split(items, h.now())
	h.render(w, r, "pages/exhibitions.html", "Exhibitions", err, page)
}

func (h *Handler) categories(w http.ResponseWriter, r *http.Request) {
	items, err := fetch(h, r, "categories", categories.Public)
	page := listPage[categories.Category]{Items: items, Error: h.loadError(err, "categories")}
	h.render(w, r, "pages/site_categories.html", "Categories", err, page)
}

func (h *Handler) gallery(w http.ResponseWriter, r *http.Request) {
	items, err := fetch(h, r, "gallery", gallery.Public)
	page := listPage[gallery.Image]{Items: items, Error: h.loadError(err, "the gallery")}
	h.render(w, r, "pages/site_gallery.html", "Gallery", err, page)
}

func (h *Handler) showVisitorForm(w http.ResponseWriter, r *http.Request) {
	h.pages.Render(w, r, view.Page{
		Name:  "pages/register_visitor.html",
		Title: "Visitor registration",
		Data:  registerPage[visitors.Input]{},
	})
}

func (h *Handler) registerVisitor(w http.ResponseWriter, r *http.Request) {
	input := visitors.ParseInput(r)
	err := visitors.Register(r.Context(), h.client, input)
	h.finishRegistration(w, r, "pages/register_visitor.html", "Visitor registration", err, func(errs shared.ValidationErrors, msg string) any {
		return registerPage[visitors.Input]{Form: input, Errors: errs, Error: msg}
	})
}

func (h *Handler) showExhibitorForm(w http.ResponseWriter, r *http.Request) {
	h.pages.Render(w, r, view.Page{
		Name:  "pages/register_exhibitor.html",
		Title: "Exhibitor registration",
		Data:  registerPage[exhibitors.Input]{},
	})
}

func (h *Handler) registerExhibitor(w http.ResponseWriter, r *http.Request) {
	input := exhibitors.ParseInput(r)
	err := exhibitors.Register(r.Context(), h.client, input)
	h.finishRegistration(w, r, "pages/register_exhibitor.html", "Exhibitor registration", err, func(errs shared.ValidationErrors, msg string) any {
		return registerPage[exhibitors.Input]{Form: input, Errors: errs, Error: msg}
	})
}

// finishRegistration redirects after a successful submission and re-renders
// the form otherwise. Field errors reported by the backend are shown next to
// the fields like local ones.
func (h *Handler) finishRegistration(w http.ResponseWriter, r *http.Request, name, title string, err error, model func(shared.ValidationErrors, string) any) {
	if err == nil {
		shared.RedirectWithFlash(w, r, r.URL.Path, shared.FlashSuccess, registeredMessage)
		return
	}
	if errs := shared.FieldErrors(err); errs != nil {
		h.pages.Render(w, r, view.Page{Name: name, Title: title, Status: http.StatusUnprocessableEntity, Data: model(errs, "")})
		return
	}
	var statusErr *backend.StatusError
	if errors.As(err, &statusErr) && len(statusErr.Fields) > 0 {
		errs := shared.ValidationErrors{}
		for field, messages := range statusErr.Fields {
			errs.Add(field, strings.Join(messages, " "))
		}
		h.pages.Render(w, r, view.Page{Name: name, Title: title, Status: http.StatusUnprocessableEntity, Data: model(errs, "")})
		return
	}
	h.logger.Error("public registration", slog.String("path", r.URL.Path), slog.Any("error", err))
	h.pages.Render(w, r, view.Page{
		Name:   name,
		Title:  title,
		Status: http.StatusBadGateway,
		Data:   model(nil, "Registration failed: "+backend.Message(err)+"."),
	})
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, name, title string, err error, data any) {
	status := http.StatusOK
	if err != nil {
		status = http.StatusBadGateway
	}
	h.pages.Render(w, r, view.Page{Name: name, Title: title, Status: status, Data: data})
}

func (h *Handler) loadError(err error, what string) string {
	if err == nil {
		return ""
	}
	h.logger.Warn("public list fetch", slog.String("list", what), slog.Any("error", err))
	return "Failed to load " + what + "."
}

// fetch loads one public list. Concurrent requests for the same key share
// a single backend call, which runs detached from any one caller and is
// bounded by fetchTimeout. Each caller still gives up on its own context.
func fetch[T any](h *Handler, r *http.Request, key string, load func(context.Context, *backend.Client) ([]T, error)) ([]T, error) {
	ctx := r.Context()
	ch := h.group.DoChan(key, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.fetchTimeout)
		defer cancel()
		return load(loadCtx, h.client)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]T), nil
	}
}
