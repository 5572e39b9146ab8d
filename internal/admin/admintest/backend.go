// Package admintest provides an in-memory remote API and request helpers for
// dashboard handler tests.
package admintest

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// Call is one request received by the Backend.
type Call struct {
	Method      string
	Path        string
	Auth        string
	ContentType string
	Body        []byte
	Fields      map[string]string
	Files       map[string]string
}

type failure struct {
	status int
	body   string
}

// Backend mimics the REST collections of the remote API.
type Backend struct {
	Server *httptest.Server

	// Envelope wraps list responses in {"results": [...]}.
	Envelope bool

	mu          sync.Mutex
	collections map[string][]map[string]any
	nextID      int64
	calls       []Call
	failures    map[string]failure
}

// NewBackend starts a Backend that is closed with the test.
func NewBackend(t testing.TB) *Backend {
	t.Helper()
	b := &Backend{
		collections: make(map[string][]map[string]any),
		failures:    make(map[string]failure),
		nextID:      100,
	}
	b.Server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.Server.Close)
	return b
}

// BaseURL is the API root to hand to backend.NewClient.
func (b *Backend) BaseURL() string {
	return b.Server.URL + "/api/"
}

// Seed appends items to collection, e.g. "events".
func (b *Backend) Seed(collection string, items ...map[string]any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.collections[collection] = append(b.collections[collection], items...)
}

// Items returns a copy of collection.
func (b *Backend) Items(collection string) []map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]map[string]any, len(b.collections[collection]))
	copy(out, b.collections[collection])
	return out
}

// Fail makes method on path answer status with body until cleared with status 0.
func (b *Backend) Fail(method, path string, status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := method + " " + path
	if status == 0 {
		delete(b.failures, key)
		return
	}
	b.failures[key] = failure{status: status, body: body}
}

// Calls returns the received requests, optionally only those with method.
func (b *Backend) Calls(method string) []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Call, 0, len(b.calls))
	for _, c := range b.calls {
		if method == "" || c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// Writes counts the non-GET requests received.
func (b *Backend) Writes() int {
	n := 0
	for _, c := range b.Calls("") {
		if c.Method != http.MethodGet {
			n++
		}
	}
	return n
}

func (b *Backend) serve(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/")
	call := Call{
		Method: r.Method,
		Path:   path,
		Auth:   r.Header.Get("Authorization"),
	}
	call.ContentType = r.Header.Get("Content-Type")
	values := map[string]any{}
	if mediaType, _, _ := mime.ParseMediaType(call.ContentType); mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		call.Fields = map[string]string{}
		call.Files = map[string]string{}
		for k, v := range r.MultipartForm.Value {
			call.Fields[k] = v[0]
			values[k] = v[0]
		}
		for k, files := range r.MultipartForm.File {
			call.Files[k] = files[0].Filename
			values[k+"_url"] = "/media/" + files[0].Filename
		}
	} else if r.Body != nil {
		call.Body, _ = io.ReadAll(r.Body)
		if len(call.Body) > 0 {
			_ = json.Unmarshal(call.Body, &values)
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, call)

	if f, ok := b.failures[r.Method+" "+path]; ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.status)
		_, _ = io.WriteString(w, f.body)
		return
	}

	collection, id := route(path)
	switch {
	case path == "health/":
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	case r.Method == http.MethodGet && id == 0:
		items := b.collections[collection]
		if items == nil {
			items = []map[string]any{}
		}
		if b.Envelope {
			writeJSON(w, http.StatusOK, map[string]any{"results": items})
			return
		}
		writeJSON(w, http.StatusOK, items)
	case r.Method == http.MethodPost && id == 0:
		b.nextID++
		values["id"] = b.nextID
		b.collections[collection] = append(b.collections[collection], values)
		writeJSON(w, http.StatusCreated, values)
	case (r.Method == http.MethodPut || r.Method == http.MethodPatch) && id != 0:
		item := b.find(collection, id)
		if item == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
			return
		}
		for k, v := range values {
			item[k] = v
		}
		writeJSON(w, http.StatusOK, item)
	case r.Method == http.MethodDelete && id != 0:
		items := b.collections[collection]
		for i, item := range items {
			if itemID(item) == id {
				b.collections[collection] = append(items[:i:i], items[i+1:]...)
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"detail": "Method not allowed."})
	}
}

func (b *Backend) find(collection string, id int64) map[string]any {
	for _, item := range b.collections[collection] {
		if itemID(item) == id {
			return item
		}
	}
	return nil
}

// route maps an API path to its collection and item id. The team endpoints
// use verb segments instead of REST methods.
func route(path string) (string, int64) {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) > 0 && segments[0] == "team" {
		var id int64
		if len(segments) == 3 {
			id, _ = strconv.ParseInt(segments[2], 10, 64)
		}
		return "team", id
	}
	if len(segments) == 2 {
		id, _ := strconv.ParseInt(segments[1], 10, 64)
		return segments[0], id
	}
	return segments[0], 0
}

func itemID(item map[string]any) int64 {
	switch v := item["id"].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
