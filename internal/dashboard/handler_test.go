package dashboard_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairdesk/fairdesk/internal/admin"
	"github.com/fairdesk/fairdesk/internal/admin/admintest"
	"github.com/fairdesk/fairdesk/internal/dashboard"
	"github.com/fairdesk/fairdesk/internal/exhibitors"
	"github.com/fairdesk/fairdesk/internal/platform/httpx"
	"github.com/fairdesk/fairdesk/internal/rbac"
	"github.com/fairdesk/fairdesk/internal/visitors"
	_ "github.com/fairdesk/fairdesk/testing"
)

type stubTab struct {
	name    rbac.Tab
	served  int
	summary admin.Summary
	err     error
}

func (s *stubTab) ServeTab(w http.ResponseWriter, r *http.Request) {
	s.served++
	_, _ = w.Write([]byte("tab:" + string(s.name)))
}

func (s *stubTab) Summarize(context.Context, *http.Request) (admin.Summary, error) {
	return s.summary, s.err
}

func stubTabs() map[rbac.Tab]dashboard.Tab {
	tabs := map[rbac.Tab]dashboard.Tab{}
	for _, role := range rbac.Roles() {
		for _, tab := range rbac.AllowedTabs(role) {
			tabs[tab] = &stubTab{name: tab}
		}
	}
	return tabs
}

func newRouter(tabs map[rbac.Tab]dashboard.Tab) chi.Router {
	h := dashboard.NewHandler(nil, tabs)
	r := chi.NewRouter()
	r.Route("/admin", func(r chi.Router) {
		h.MountRoutes(r)
		r.Route("/api", h.MountAPI)
	})
	return r
}

func TestDisallowedTabRedirectsToLandingTab(t *testing.T) {
	env := admintest.NewEnv(t)
	tabs := stubTabs()
	router := newRouter(tabs)

	rec, _ := env.Serve(t, router, httptest.NewRequest(http.MethodGet, "/admin?tab=categories", nil), rbac.RoleSales)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin?tab=exhibitors", rec.Header().Get("Location"))
	assert.Zero(t, tabs[rbac.TabCategories].(*stubTab).served, "the disallowed tab is never rendered")
}

func TestRewriteKeepsFilters(t *testing.T) {
	env := admintest.NewEnv(t)
	router := newRouter(stubTabs())

	rec, _ := env.Serve(t, router, httptest.NewRequest(http.MethodGet, "/admin?q=acme&status=paid&page=2", nil), rbac.RoleManager)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin?q=acme&status=paid&tab=exhibitors", rec.Header().Get("Location"))
}

func TestAllowedTabIsServed(t *testing.T) {
	env := admintest.NewEnv(t)
	tabs := stubTabs()
	router := newRouter(tabs)

	rec, _ := env.Serve(t, router, httptest.NewRequest(http.MethodGet, "/admin?tab=team", nil), rbac.RoleAdmin)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tab:team", rec.Body.String())
	assert.Equal(t, 1, tabs[rbac.TabTeam].(*stubTab).served)
}

func TestMissingPrincipalGoesToLogin(t *testing.T) {
	env := admintest.NewEnv(t)
	router := newRouter(stubTabs())

	rec, _ := env.Serve(t, router, httptest.NewRequest(http.MethodGet, "/admin?tab=events", nil), "")

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/login", rec.Header().Get("Location"))
}

func TestOverviewCountsAllowedTabs(t *testing.T) {
	env := admintest.NewEnv(t)
	env.Backend.Seed("exhibitor-registrations",
		map[string]any{"id": 1, "company_name": "Acme", "status": "pending"},
		map[string]any{"id": 2, "company_name": "Globex", "status": "paid"},
	)
	env.Backend.Seed("visitor-registrations",
		map[string]any{"id": 1, "first_name": "Omar", "last_name": "Faruk"},
	)
	tabs := map[rbac.Tab]dashboard.Tab{
		rbac.TabExhibitors: exhibitors.NewHandler(env.Kit, rbac.Middleware{}),
		rbac.TabVisitors:   visitors.NewHandler(env.Kit, rbac.Middleware{}),
	}
	router := newRouter(tabs)

	rec, sess := env.Serve(t, router, httptest.NewRequest(http.MethodGet, "/admin/api/overview", nil), rbac.RoleSales)

	require.Equal(t, http.StatusOK, rec.Code)
	var body dashboard.Overview
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, rbac.RoleSales, body.Role)
	require.Len(t, body.Tabs, 2)

	assert.Equal(t, rbac.TabExhibitors, body.Tabs[0].Tab)
	assert.Equal(t, 2, body.Tabs[0].Total)
	require.NotNil(t, body.Tabs[0].Stats)
	assert.Equal(t, 1, body.Tabs[0].Stats.Paid)

	assert.Equal(t, rbac.TabVisitors, body.Tabs[1].Tab)
	require.NotNil(t, body.Tabs[1].Stats)
	assert.Equal(t, 1, body.Tabs[1].Stats.Pending, "a visitor without status counts as pending")

	assert.Len(t, env.Backend.Calls(http.MethodGet), 2)
	assert.Empty(t, admintest.Messages(sess))
}

func TestOverviewUpstreamFailure(t *testing.T) {
	env := admintest.NewEnv(t)
	tabs := stubTabs()
	tabs[rbac.TabVisitors].(*stubTab).err = errors.New("boom")
	router := newRouter(tabs)

	rec, _ := env.Serve(t, router, httptest.NewRequest(http.MethodGet, "/admin/api/overview", nil), rbac.RoleSales)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, httpx.ProblemContentType, rec.Header().Get("Content-Type"))
}
