// Package admin holds the plumbing shared by the dashboard tab handlers:
// per-request stores, the busy guard around writes and the redirect that
// follows every mutation.
package admin

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fairdesk/fairdesk/internal/auth"
	"github.com/fairdesk/fairdesk/internal/backend"
	"github.com/fairdesk/fairdesk/internal/rbac"
	"github.com/fairdesk/fairdesk/internal/resource"
	"github.com/fairdesk/fairdesk/internal/shared"
	"github.com/fairdesk/fairdesk/internal/view"
)

// ErrInvalidID is returned when the {id} URL parameter is not a positive integer.
var ErrInvalidID = errors.New("invalid id")

// Refusal is an error whose message is shown to the user as is.
type Refusal struct {
	Message string
}

func (e Refusal) Error() string {
	return e.Message
}

// Kit carries the dependencies every tab handler needs.
type Kit struct {
	Logger    *slog.Logger
	Client    *backend.Client
	Pages     *view.Responder
	Busy      *shared.BusyGuard
	Snapshots *shared.SnapshotCache
	// KeepStale shows the last good list, flagged stale, when a fetch fails.
	KeepStale bool
}

// Listing is embedded by every tab page model.
type Listing struct {
	Tab    rbac.Tab
	Busy   bool
	Stale  bool
	Query  string
	Status string
}

// Principal returns the authenticated principal of r.
func Principal(r *http.Request) auth.Principal {
	p, _ := auth.PrincipalFromContext(r.Context())
	return p
}

// NewStore builds a store for one request, bound to the caller's token and
// reporting into the caller's session.
func NewStore[T any](k *Kit, r *http.Request, opts resource.Options) *resource.Store[T] {
	opts.Logger = k.logger()
	opts.KeepStale = opts.KeepStale || k.KeepStale
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		opts.Notifier = sess
	}
	return resource.NewStore[T](k.Client, Principal(r).AccessToken, opts)
}

// Load fetches a store for a page render. It reports false when the response
// has already been written because the backend refused the session.
func Load[T any](k *Kit, w http.ResponseWriter, r *http.Request, store *resource.Store[T]) bool {
	ctx := r.Context()
	key := shared.SnapshotKey(snapshotOwner(r), store.Name())
	if k.KeepStale {
		var items []T
		if ok, err := k.Snapshots.Load(ctx, key, &items); err != nil {
			k.logger().Warn("load list snapshot", slog.String("key", key), slog.Any("error", err))
		} else if ok {
			store.Seed(items)
		}
	}

	err := store.FetchAll(ctx)
	switch {
	case errors.Is(err, backend.ErrUnauthorized):
		auth.Expire(w, r)
		return false
	case err == nil && k.KeepStale:
		if err := k.Snapshots.Save(ctx, key, store.Items()); err != nil {
			k.logger().Warn("save list snapshot", slog.String("key", key), slog.Any("error", err))
		}
	}
	return true
}

// Listing builds the common part of a tab page model.
func (k *Kit) Listing(r *http.Request, tab rbac.Tab, stale bool) Listing {
	q := r.URL.Query()
	return Listing{
		Tab:    tab,
		Busy:   k.Held(r, tab),
		Stale:  stale,
		Query:  q.Get("q"),
		Status: q.Get("status"),
	}
}

// Held reports whether a write to tab from the caller's session is still
// running. Pages use it to disable their submit buttons.
func (k *Kit) Held(r *http.Request, tab rbac.Tab) bool {
	return k.Busy.Held(r.Context(), sessionID(r), string(tab))
}

// Mutate runs op under the busy guard for tab and finishes with a 303 back to
// the tab. Store operations report their own outcome as notifications, so
// only errors the store does not describe are flashed here.
func (k *Kit) Mutate(w http.ResponseWriter, r *http.Request, tab rbac.Tab, op func(ctx context.Context) error) {
	release, err := k.Busy.Acquire(r.Context(), sessionID(r), string(tab))
	if err != nil {
		if errors.Is(err, shared.ErrBusy) {
			shared.RedirectWithFlash(w, r, ReturnURL(r, tab), shared.FlashError, "Another change is still in progress. Please wait.")
			return
		}
		k.logger().Error("acquire busy guard", slog.String("tab", string(tab)), slog.Any("error", err))
		shared.RedirectWithFlash(w, r, ReturnURL(r, tab), shared.FlashError, "The change could not be started. Please try again.")
		return
	}
	err = op(r.Context())
	release()

	var (
		fieldErrs shared.ValidationErrors
		refusal   Refusal
	)
	switch {
	case err == nil:
	case errors.Is(err, backend.ErrUnauthorized):
		auth.Expire(w, r)
		return
	case errors.Is(err, resource.ErrNotConfirmed):
		shared.RedirectWithFlash(w, r, ReturnURL(r, tab), shared.FlashInfo, "Deletion cancelled.")
		return
	case errors.Is(err, resource.ErrBusy):
		shared.RedirectWithFlash(w, r, ReturnURL(r, tab), shared.FlashError, "Another change is still in progress. Please wait.")
		return
	case errors.As(err, &refusal):
		shared.RedirectWithFlash(w, r, ReturnURL(r, tab), shared.FlashError, refusal.Message)
		return
	case errors.As(err, &fieldErrs):
		shared.RedirectWithFlash(w, r, ReturnURL(r, tab), shared.FlashError, "Please fix the form: "+fieldErrs.Error()+".")
		return
	case errors.Is(err, context.Canceled):
		k.logger().Warn("mutation cancelled", slog.String("tab", string(tab)))
	}
	http.Redirect(w, r, ReturnURL(r, tab), http.StatusSeeOther)
}

// ConfirmDelete renders the confirmation page for deleting item id of tab.
func (k *Kit) ConfirmDelete(w http.ResponseWriter, r *http.Request, tab rbac.Tab, name, label string) {
	id, err := ParseID(r)
	if err != nil {
		k.NotFound(w, r, tab)
		return
	}
	k.Pages.Render(w, r, view.Page{
		Name:  "pages/confirm_delete.html",
		Title: "Delete " + name,
		Tab:   tab,
		Data: ConfirmData{
			Prompt: resource.DeletePrompt(name),
			Label:  label,
			Action: "/admin/" + string(tab) + "/" + strconv.FormatInt(id, 10) + "/delete",
			Cancel: shared.TabURL(string(tab), nil),
			Busy:   k.Held(r, tab),
		},
	})
}

// ConfirmData is the model of the delete confirmation page.
type ConfirmData struct {
	Prompt string
	Label  string
	Action string
	Cancel string
	Busy   bool
}

// Confirmation reads the answer of the confirmation page.
func Confirmation(r *http.Request) resource.Confirmer {
	return resource.Confirmed(r.PostFormValue("confirm") == "yes")
}

// NotFound sends the user back to tab with an error notification.
func (k *Kit) NotFound(w http.ResponseWriter, r *http.Request, tab rbac.Tab) {
	shared.RedirectWithFlash(w, r, shared.TabURL(string(tab), nil), shared.FlashError, "That item no longer exists.")
}

// ParseID reads the {id} URL parameter.
func ParseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}

// ReturnURL is the tab URL with the list filters the form was posted from,
// carried in the filter_q and filter_status fields.
func ReturnURL(r *http.Request, tab rbac.Tab) string {
	extra := url.Values{}
	for key, field := range map[string]string{"q": "filter_q", "status": "filter_status"} {
		if v := r.PostFormValue(field); v != "" {
			extra.Set(key, v)
		}
	}
	return shared.TabURL(string(tab), extra)
}

func (k *Kit) logger() *slog.Logger {
	if k.Logger == nil {
		return slog.Default()
	}
	return k.Logger
}

func snapshotOwner(r *http.Request) string {
	if p := Principal(r); p.Username != "" {
		return p.Username
	}
	return sessionID(r)
}

func sessionID(r *http.Request) string {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		return sess.ID
	}
	return ""
}
