package gallery_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairdesk/fairdesk/internal/admin/admintest"
	"github.com/fairdesk/fairdesk/internal/gallery"
	"github.com/fairdesk/fairdesk/internal/rbac"
	_ "github.com/fairdesk/fairdesk/testing"
)

func setup(t *testing.T) (*admintest.Env, chi.Router, *gallery.Handler) {
	t.Helper()
	env := admintest.NewEnv(t)
	env.Backend.Seed("gallery", map[string]any{"id": 9, "title": "Opening ceremony", "description": "Ribbon cutting", "image_url": "/media/gallery/opening.jpg"})
	handler := gallery.NewHandler(env.Kit, rbac.Middleware{})
	r := chi.NewRouter()
	handler.MountRoutes(r)
	return env, r, handler
}

func TestEditWithoutFileOmitsImagePart(t *testing.T) {
	env, router, _ := setup(t)

	form := url.Values{"title": {"Opening ceremony"}, "description": {"Ribbon cutting, day one"}}
	_, sess := env.Serve(t, router, admintest.PostMultipart(t, "/gallery/9", form, "", nil), rbac.RoleAdmin)

	assert.Equal(t, []string{"success: Gallery image updated successfully."}, admintest.Messages(sess))
	puts := env.Backend.Calls(http.MethodPut)
	require.Len(t, puts, 1)
	assert.Equal(t, "gallery/9/", puts[0].Path)
	require.NotNil(t, puts[0].Fields, "gallery writes are always multipart")
	assert.Equal(t, "Ribbon cutting, day one", puts[0].Fields["description"])
	assert.Empty(t, puts[0].Files)
	_, hasImage := puts[0].Fields["image"]
	assert.False(t, hasImage)
}

func TestEditWithFileSendsImagePart(t *testing.T) {
	env, router, _ := setup(t)

	form := url.Values{"title": {"Opening ceremony"}, "description": {"Ribbon cutting"}}
	_, sess := env.Serve(t, router, admintest.PostMultipart(t, "/gallery/9", form, "ribbon.png", admintest.PNG), rbac.RoleAdmin)

	assert.Equal(t, []string{"success: Gallery image updated successfully."}, admintest.Messages(sess))
	puts := env.Backend.Calls(http.MethodPut)
	require.Len(t, puts, 1)
	assert.Equal(t, "ribbon.png", puts[0].Files["image"])
}

func TestCreateRequiresImage(t *testing.T) {
	env, router, _ := setup(t)

	form := url.Values{"title": {"Hall B"}, "description": {"Machinery pavilion"}}
	rec, _ := env.Serve(t, router, admintest.PostMultipart(t, "/gallery", form, "", nil), rbac.RoleManager)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "is required")
	assert.Equal(t, 0, env.Backend.Writes())
}

func TestCreateUploadsMultipart(t *testing.T) {
	env, router, handler := setup(t)

	form := url.Values{"title": {"Hall B"}, "description": {"Machinery pavilion"}, "location": {"Dhaka"}}
	_, sess := env.Serve(t, router, admintest.PostMultipart(t, "/gallery", form, "hall-b.png", admintest.PNG), rbac.RoleManager)

	assert.Equal(t, []string{"success: Gallery image created successfully."}, admintest.Messages(sess))
	posts := env.Backend.Calls(http.MethodPost)
	require.Len(t, posts, 1)
	assert.Equal(t, "hall-b.png", posts[0].Files["image"])
	assert.Equal(t, "Dhaka", posts[0].Fields["location"])

	rec, _ := env.Serve(t, http.HandlerFunc(handler.ServeTab), httptest.NewRequest(http.MethodGet, "/admin?tab=gallery", nil), rbac.RoleManager)
	assert.Contains(t, rec.Body.String(), "/media/hall-b.png")
}

func TestGalleryLoadFailureClearsList(t *testing.T) {
	env, _, handler := setup(t)
	env.Backend.Fail(http.MethodGet, "gallery/", http.StatusBadGateway, "")

	rec, _ := env.Serve(t, http.HandlerFunc(handler.ServeTab), httptest.NewRequest(http.MethodGet, "/admin?tab=gallery", nil), rbac.RoleAdmin)

	assert.NotContains(t, rec.Body.String(), "Opening ceremony")
	assert.Contains(t, rec.Body.String(), "Failed to load gallery images.")
}

func TestGalleryKeepsStaleListWhenConfigured(t *testing.T) {
	env, _, handler := setup(t)
	env.Kit.KeepStale = true
	tab := func() string {
		rec, _ := env.Serve(t, http.HandlerFunc(handler.ServeTab), httptest.NewRequest(http.MethodGet, "/admin?tab=gallery", nil), rbac.RoleAdmin)
		return rec.Body.String()
	}

	assert.Contains(t, tab(), "Opening ceremony")

	env.Backend.Fail(http.MethodGet, "gallery/", http.StatusBadGateway, "")
	body := tab()
	assert.Contains(t, body, "Failed to load gallery images.")
	assert.Contains(t, body, "Opening ceremony", "last good list is kept")
	assert.Contains(t, body, "data-stale")
}
