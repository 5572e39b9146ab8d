// Package dashboard routes /admin to the tab the caller's role may open and
// serves the overview counts for those tabs.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/fairdesk/fairdesk/internal/admin"
	"github.com/fairdesk/fairdesk/internal/auth"
	"github.com/fairdesk/fairdesk/internal/platform/httpx"
	"github.com/fairdesk/fairdesk/internal/rbac"
	"github.com/fairdesk/fairdesk/internal/shared"
)

// Tab is what the dashboard needs from one tab handler.
type Tab interface {
	ServeTab(w http.ResponseWriter, r *http.Request)
	Summarize(ctx context.Context, r *http.Request) (admin.Summary, error)
}

// Handler dispatches dashboard requests by the role/tab table.
type Handler struct {
	logger *slog.Logger
	tabs   map[rbac.Tab]Tab
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, tabs map[rbac.Tab]Tab) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, tabs: tabs}
}

// MountRoutes registers the tab router at the dashboard root.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.serveIndex)
}

// MountAPI registers the JSON endpoints.
func (h *Handler) MountAPI(r chi.Router) {
	r.Get("/overview", h.overview)
}

func (h *Handler) serveIndex(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, auth.LoginPath, http.StatusSeeOther)
		return
	}
	query := r.URL.Query()
	active, rewrite := rbac.ResolveTab(principal.Role, query.Get("tab"))
	if active == "" {
		auth.Expire(w, r)
		return
	}
	if rewrite {
		keep := url.Values{}
		for _, key := range []string{"q", "status"} {
			if v := query.Get(key); v != "" {
				keep.Set(key, v)
			}
		}
		http.Redirect(w, r, shared.TabURL(string(active), keep), http.StatusSeeOther)
		return
	}
	tab, ok := h.tabs[active]
	if !ok {
		h.logger.Error("dashboard tab not wired", slog.String("tab", string(active)))
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}
	tab.ServeTab(w, r)
}

// Overview is the body of GET /admin/api/overview.
type Overview struct {
	Role rbac.Role       `json:"role"`
	Tabs []admin.Summary `json:"tabs"`
}

func (h *Handler) overview(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}
	allowed := rbac.AllowedTabs(principal.Role)
	summaries := make([]admin.Summary, len(allowed))
	g, ctx := errgroup.WithContext(r.Context())
	for i, name := range allowed {
		i, name := i, name
		tab, ok := h.tabs[name]
		if !ok {
			summaries[i] = admin.Summary{Tab: name}
			continue
		}
		g.Go(func() error {
			summary, err := tab.Summarize(ctx, r)
			if err != nil {
				return fmt.Errorf("summarize %s: %w", name, err)
			}
			summary.Tab = name
			summaries[i] = summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		h.logger.Warn("dashboard overview", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, Overview{Role: principal.Role, Tabs: summaries})
}
