package auth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairdesk/fairdesk/internal/backend"
	"github.com/fairdesk/fairdesk/internal/shared"
	_ "github.com/fairdesk/fairdesk/internal/testing/guard"
	"github.com/fairdesk/fairdesk/internal/view"
)

func signedToken(t testing.TB, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return token
}

func managerToken(t testing.TB) string {
	return signedToken(t, jwt.MapClaims{
		"role":     "manager",
		"username": "mara",
		"exp":      time.Now().Add(time.Hour).Unix(),
	})
}

type apiCall struct {
	path string
	body map[string]string
}

// fakeAPI answers the login and password endpoints with canned responses.
type fakeAPI struct {
	mu        sync.Mutex
	calls     []apiCall
	responses map[string]func(w http.ResponseWriter)
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/")
	raw, _ := io.ReadAll(r.Body)
	body := map[string]string{}
	_ = json.Unmarshal(raw, &body)

	f.mu.Lock()
	f.calls = append(f.calls, apiCall{path: path, body: body})
	respond, ok := f.responses[path]
	f.mu.Unlock()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	respond(w)
}

func (f *fakeAPI) Calls() []apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]apiCall(nil), f.calls...)
}

func reply(status int, body string) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

type harness struct {
	api      *fakeAPI
	sessions *shared.SessionManager
	router   chi.Router
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	api := &fakeAPI{responses: map[string]func(http.ResponseWriter){}}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	engine, err := view.NewEngine()
	require.NoError(t, err)
	csrf := shared.NewCSRFManager("csrf-secret")
	sessions := shared.NewSessionManager(client, "test_session", time.Hour, false)
	handler := NewHandler(nil, NewService(backend.NewClient(srv.URL+"/api/")), view.NewResponder(engine, csrf, nil), sessions, csrf, 0)

	r := chi.NewRouter()
	handler.MountPasswordRoutes(r)
	r.Route("/admin", handler.MountRoutes)
	return &harness{api: api, sessions: sessions, router: r}
}

// serve runs req against the router with sess in context.
func (h *harness) serve(req *http.Request, sess *shared.Session) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req.WithContext(shared.ContextWithSession(req.Context(), sess)))
	return rec
}

func (h *harness) newSession(t *testing.T) *shared.Session {
	t.Helper()
	sess, err := h.sessions.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	return sess
}

func postForm(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func flashes(sess *shared.Session) []string {
	var out []string
	for _, f := range sess.PopFlashes() {
		out = append(out, f.Kind+": "+f.Message)
	}
	return out
}

func TestLoginPage(t *testing.T) {
	h := newHarness(t)
	rec := h.serve(httptest.NewRequest(http.MethodGet, "/admin/login", nil), h.newSession(t))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<form")
	assert.Contains(t, rec.Body.String(), `name="csrf_token"`)
}

func TestLoginStoresTokensAndRedirects(t *testing.T) {
	h := newHarness(t)
	access := managerToken(t)
	h.api.responses[backend.PathLogin] = reply(http.StatusOK, `{"access":"`+access+`","refresh":"refresh-1"}`)
	sess := h.newSession(t)

	rec := h.serve(postForm("/admin/login", url.Values{"username": {" mara "}, "password": {"secret"}}), sess)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin", rec.Header().Get("Location"))
	assert.Equal(t, access, sess.Get(KeyAccessToken))
	assert.Equal(t, "refresh-1", sess.Get(KeyRefreshToken))
	assert.Equal(t, "true", sess.Get(KeyLoggedIn))
	assert.Equal(t, "manager", sess.Get(KeyUserRole))

	calls := h.api.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, map[string]string{"username": "mara", "password": "secret"}, calls[0].body)
}

func TestLoginInvalidCredentials(t *testing.T) {
	h := newHarness(t)
	h.api.responses[backend.PathLogin] = reply(http.StatusUnauthorized, `{"detail":"No active account found with the given credentials"}`)
	sess := h.newSession(t)

	rec := h.serve(postForm("/admin/login", url.Values{"username": {"mara"}, "password": {"wrong"}}), sess)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid username or password.")
	assert.Empty(t, sess.Get(KeyAccessToken))
}

func TestLoginUpstreamFailure(t *testing.T) {
	h := newHarness(t)
	h.api.responses[backend.PathLogin] = reply(http.StatusInternalServerError, `{"detail":"database offline"}`)

	rec := h.serve(postForm("/admin/login", url.Values{"username": {"mara"}, "password": {"secret"}}), h.newSession(t))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sign in failed: database offline.")
}

func TestLoginValidationSkipsBackend(t *testing.T) {
	h := newHarness(t)

	rec := h.serve(postForm("/admin/login", url.Values{"username": {""}}), h.newSession(t))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "is required")
	assert.Empty(t, h.api.Calls())
}

func TestLoginTokenWithoutRoleIsRefused(t *testing.T) {
	h := newHarness(t)
	access := signedToken(t, jwt.MapClaims{"username": "nobody", "exp": time.Now().Add(time.Hour).Unix()})
	h.api.responses[backend.PathLogin] = reply(http.StatusOK, `{"access":"`+access+`","refresh":"r"}`)
	sess := h.newSession(t)

	rec := h.serve(postForm("/admin/login", url.Values{"username": {"nobody"}, "password": {"secret"}}), sess)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, LoginPath, rec.Header().Get("Location"))
	assert.Equal(t, []string{"error: This account has no access to the dashboard."}, flashes(sess))
	assert.Empty(t, sess.Get(KeyAccessToken))
}

func TestShowLoginRedirectsSignedInUser(t *testing.T) {
	h := newHarness(t)
	sess := h.newSession(t)
	_, err := NewSession(sess).Init(Tokens{Access: managerToken(t)})
	require.NoError(t, err)

	rec := h.serve(httptest.NewRequest(http.MethodGet, "/admin/login", nil), sess)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin", rec.Header().Get("Location"))
}

func TestLogoutClearsSession(t *testing.T) {
	h := newHarness(t)
	sess := h.newSession(t)
	_, err := NewSession(sess).Init(Tokens{Access: managerToken(t), Refresh: "r"})
	require.NoError(t, err)

	rec := h.serve(postForm("/admin/logout", url.Values{}), sess)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, LoginPath, rec.Header().Get("Location"))
	for _, key := range []string{KeyAccessToken, KeyRefreshToken, KeyLoggedIn, KeyUserRole} {
		assert.Empty(t, sess.Get(key), key)
	}
}

func TestCreatePasswordFlow(t *testing.T) {
	h := newHarness(t)
	access := managerToken(t)
	h.api.responses[backend.PathSendOTP] = reply(http.StatusOK, `{"detail":"sent"}`)
	h.api.responses[backend.PathVerifyOTP] = reply(http.StatusOK, `{"detail":"ok"}`)
	h.api.responses[backend.PathCreatePassword] = reply(http.StatusCreated, `{"access":"`+access+`","refresh":"r"}`)
	sess := h.newSession(t)

	rec := h.serve(httptest.NewRequest(http.MethodGet, "/create-password?token=invite-1", nil), sess)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = h.serve(postForm("/create-password", url.Values{"email": {"mara@fair.test"}}), sess)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, StepOTP, sess.Get(keySetupStep))

	rec = h.serve(postForm("/create-password", url.Values{"otp": {"123456"}}), sess)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, StepPassword, sess.Get(keySetupStep))

	rec = h.serve(postForm("/create-password", url.Values{
		"username": {"mara"}, "password": {"longenough"}, "confirm_password": {"different"},
	}), sess)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "does not match")

	rec = h.serve(postForm("/create-password", url.Values{
		"username": {"mara"}, "password": {"longenough"}, "confirm_password": {"longenough"},
	}), sess)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin", rec.Header().Get("Location"))
	assert.Equal(t, access, sess.Get(KeyAccessToken))
	assert.Empty(t, sess.Get(keySetupToken))

	calls := h.api.Calls()
	require.Len(t, calls, 3, "the mismatched confirmation never reaches the backend")
	assert.Equal(t, map[string]string{"email": "mara@fair.test", "token": "invite-1"}, calls[0].body)
	assert.Equal(t, map[string]string{"email": "mara@fair.test", "otp": "123456"}, calls[1].body)
	assert.Equal(t, "invite-1", calls[2].body["token"])
	assert.Equal(t, "123456", calls[2].body["otp"])
}

func TestCreatePasswordWithoutInvitation(t *testing.T) {
	h := newHarness(t)
	sess := h.newSession(t)

	rec := h.serve(httptest.NewRequest(http.MethodGet, "/create-password", nil), sess)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, LoginPath, rec.Header().Get("Location"))
	assert.Equal(t, []string{"error: The invitation link is invalid or incomplete."}, flashes(sess))
}

func TestCreatePasswordBackendRejectsCode(t *testing.T) {
	h := newHarness(t)
	h.api.responses[backend.PathSendOTP] = reply(http.StatusOK, `{}`)
	h.api.responses[backend.PathVerifyOTP] = reply(http.StatusBadRequest, `{"otp":["Invalid or expired OTP."]}`)
	sess := h.newSession(t)

	h.serve(httptest.NewRequest(http.MethodGet, "/create-password?token=invite-1", nil), sess)
	h.serve(postForm("/create-password", url.Values{"email": {"mara@fair.test"}}), sess)
	rec := h.serve(postForm("/create-password", url.Values{"otp": {"000000"}}), sess)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Failed to verify the code")
	assert.Equal(t, StepOTP, sess.Get(keySetupStep))
}
