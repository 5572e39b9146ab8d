package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEveryRoleHasTabs(t *testing.T) {
	for _, role := range Roles() {
		tabs := AllowedTabs(role)
		require.NotEmpty(t, tabs, "role %s", role)
		def, ok := DefaultTab(role)
		require.True(t, ok)
		assert.Equal(t, tabs[0], def)
	}
	assert.Nil(t, AllowedTabs(Role("guest")))
}

func TestResolveTabAlwaysLandsOnAllowedTab(t *testing.T) {
	requests := []string{"", "exhibitors", "visitors", "events", "categories", "gallery", "team", "bogus", "TEAM", " gallery "}
	for _, role := range Roles() {
		for _, req := range requests {
			active, _ := ResolveTab(role, req)
			assert.True(t, IsAllowed(role, active), "role=%s requested=%q got %s", role, req, active)
		}
	}
}

func TestResolveTabSalesCategoriesRedirects(t *testing.T) {
	active, rewrite := ResolveTab(RoleSales, "categories")
	assert.Equal(t, TabExhibitors, active)
	assert.True(t, rewrite)
}

func TestResolveTabKeepsAllowedTab(t *testing.T) {
	active, rewrite := ResolveTab(RoleManager, "gallery")
	assert.Equal(t, TabGallery, active)
	assert.False(t, rewrite)

	active, rewrite = ResolveTab(RoleManager, "Gallery")
	assert.Equal(t, TabGallery, active)
	assert.True(t, rewrite, "non-canonical spelling is rewritten")

	_, rewrite = ResolveTab(RoleAdmin, "")
	assert.True(t, rewrite)
}

func TestTeamTabIsAdminOnly(t *testing.T) {
	assert.True(t, IsAllowed(RoleAdmin, TabTeam))
	assert.False(t, IsAllowed(RoleManager, TabTeam))
	assert.False(t, IsAllowed(RoleSales, TabTeam))
}

func TestParseRole(t *testing.T) {
	role, ok := ParseRole(" Manager ")
	assert.True(t, ok)
	assert.Equal(t, RoleManager, role)

	_, ok = ParseRole("superuser")
	assert.False(t, ok)
}

func TestRequireTab(t *testing.T) {
	mw := Middleware{}
	handler := mw.RequireTab(TabCategories)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	cases := []struct {
		name string
		role Role
		want int
	}{
		{"manager allowed", RoleManager, http.StatusNoContent},
		{"sales denied", RoleSales, http.StatusForbidden},
		{"no role", "", http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/admin/categories", nil)
			if tc.role != "" {
				req = req.WithContext(ContextWithRole(req.Context(), tc.role))
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}
