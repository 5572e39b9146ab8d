package admintest

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/fairdesk/fairdesk/internal/admin"
	"github.com/fairdesk/fairdesk/internal/auth"
	"github.com/fairdesk/fairdesk/internal/backend"
	"github.com/fairdesk/fairdesk/internal/rbac"
	"github.com/fairdesk/fairdesk/internal/shared"
	"github.com/fairdesk/fairdesk/internal/view"
)

// AccessToken is the bearer token attached to every test principal.
const AccessToken = "test-access-token"

// Env wires a Kit against a Backend and a miniredis instance.
type Env struct {
	Backend  *Backend
	Kit      *admin.Kit
	Sessions *shared.SessionManager
	Redis    *miniredis.Miniredis
	Client   *redis.Client
}

// NewEnv builds an Env cleaned up with the test.
func NewEnv(t testing.TB) *Env {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	engine, err := view.NewEngine()
	if err != nil {
		t.Fatalf("templates: %v", err)
	}
	b := NewBackend(t)
	return &Env{
		Backend:  b,
		Sessions: shared.NewSessionManager(client, "test_session", time.Hour, false),
		Redis:    mr,
		Client:   client,
		Kit: &admin.Kit{
			Client:    backend.NewClient(b.BaseURL(), backend.WithTimeout(5*time.Second)),
			Pages:     view.NewResponder(engine, shared.NewCSRFManager("csrf-secret"), nil),
			Busy:      shared.NewBusyGuard(client, time.Minute),
			Snapshots: shared.NewSnapshotCache(client, time.Hour),
		},
	}
}

// Serve runs req through h as a signed-in user with role. The session is
// returned so tests can inspect queued flashes.
func (e *Env) Serve(t testing.TB, h http.Handler, req *http.Request, role rbac.Role) (*httptest.ResponseRecorder, *shared.Session) {
	t.Helper()
	sess, err := e.Sessions.Load(context.Background(), req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	ctx := shared.ContextWithSession(req.Context(), sess)
	if role != "" {
		ctx = auth.ContextWithPrincipal(ctx, auth.Principal{Role: role, Username: "tester", AccessToken: AccessToken})
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req.WithContext(ctx))
	return rec, sess
}

// PostForm builds a urlencoded POST request.
func PostForm(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// Messages returns the text of the flashes queued on sess.
func Messages(sess *shared.Session) []string {
	flashes := sess.PopFlashes()
	out := make([]string, 0, len(flashes))
	for _, f := range flashes {
		out = append(out, f.Kind+": "+f.Message)
	}
	return out
}

// PNG is the smallest byte sequence sniffed as image/png.
var PNG = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

// PostMultipart builds a multipart POST request. An empty filename sends no
// file part.
func PostMultipart(t testing.TB, target string, values url.Values, filename string, content []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, vals := range values {
		for _, v := range vals {
			if err := writer.WriteField(key, v); err != nil {
				t.Fatalf("write field: %v", err)
			}
		}
	}
	if filename != "" {
		part, err := writer.CreateFormFile("image", filename)
		if err != nil {
			t.Fatalf("create file part: %v", err)
		}
		if _, err := part.Write(content); err != nil {
			t.Fatalf("write file part: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

// HoldBusy stores a session for req and takes the busy guard of tab for it,
// as an unfinished write from the same browser would. Requests served with
// req afterwards see the guard held.
func (e *Env) HoldBusy(t testing.TB, req *http.Request, tab rbac.Tab) {
	t.Helper()
	ctx := context.Background()
	sess, err := e.Sessions.Load(ctx, req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	rec := httptest.NewRecorder()
	if err := e.Sessions.Commit(ctx, rec, sess); err != nil {
		t.Fatalf("commit session: %v", err)
	}
	for _, cookie := range rec.Result().Cookies() {
		req.AddCookie(cookie)
	}
	if _, err := e.Kit.Busy.Acquire(ctx, sess.ID, string(tab)); err != nil {
		t.Fatalf("acquire busy guard: %v", err)
	}
}
