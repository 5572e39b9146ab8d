package view

import (
	"context"
	"log/slog"
	"net/http"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/fairdesk/fairdesk/internal/rbac"
	"github.com/fairdesk/fairdesk/internal/shared"
)

type userContextKey struct{}

// ContextWithUser records the display name of the logged-in user.
func ContextWithUser(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, userContextKey{}, name)
}

func userFromContext(ctx context.Context) string {
	name, _ := ctx.Value(userContextKey{}).(string)
	return name
}

// Page describes one rendered response.
type Page struct {
	Name   string
	Title  string
	Tab    rbac.Tab
	Status int
	Data   any
}

// Responder fills TemplateData from the request and renders pages.
type Responder struct {
	engine *Engine
	csrf   *shared.CSRFManager
	logger *slog.Logger
}

// NewResponder constructs a Responder.
func NewResponder(engine *Engine, csrf *shared.CSRFManager, logger *slog.Logger) *Responder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Responder{engine: engine, csrf: csrf, logger: logger}
}

// Render writes p. Flashes queued so far are drained into the page.
func (rs *Responder) Render(w http.ResponseWriter, r *http.Request, p Page) {
	sess := shared.SessionFromContext(r.Context())
	var csrfToken string
	if sess != nil && rs.csrf != nil {
		token, err := rs.csrf.EnsureToken(sess)
		if err != nil {
			rs.logger.Error("ensure csrf token", slog.Any("error", err))
		}
		csrfToken = token
	}

	data := TemplateData{
		Title:       p.Title,
		CSRFToken:   csrfToken,
		Flashes:     sess.PopFlashes(),
		CurrentPath: r.URL.Path,
		User:        userFromContext(r.Context()),
		Data:        p.Data,
	}
	if role, ok := rbac.RoleFromContext(r.Context()); ok {
		data.Role = string(role)
		data.Nav = Nav(role, p.Tab)
	}

	status := p.Status
	if status == 0 {
		status = http.StatusOK
	}
	if err := rs.engine.RenderStatus(w, status, p.Name, data); err != nil {
		rs.logger.Error("render page", slog.String("template", p.Name), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// Nav builds the tab bar for role with active highlighted.
func Nav(role rbac.Role, active rbac.Tab) []NavItem {
	tabs := rbac.AllowedTabs(role)
	items := make([]NavItem, 0, len(tabs))
	caser := cases.Title(language.English)
	for _, tab := range tabs {
		items = append(items, NavItem{
			Tab:    string(tab),
			Label:  caser.String(string(tab)),
			URL:    shared.TabURL(string(tab), nil),
			Active: tab == active,
		})
	}
	return items
}
