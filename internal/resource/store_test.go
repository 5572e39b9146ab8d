package resource_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairdesk/fairdesk/internal/backend"
	"github.com/fairdesk/fairdesk/internal/resource"
)

type booth struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

type fakeAPI struct {
	mu       sync.Mutex
	items    []booth
	nextID   int64
	envelope bool
	failList int
	failNext int

	requests atomic.Int32
	writes   atomic.Int32
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.requests.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/booths"), "/")
	if r.Method != http.MethodGet {
		f.writes.Add(1)
		if f.failNext > 0 {
			w.WriteHeader(f.failNext)
			_, _ = w.Write([]byte(`{"name":["This field is required."]}`))
			return
		}
	}

	switch {
	case r.Method == http.MethodGet && path == "":
		if f.failList > 0 {
			w.WriteHeader(f.failList)
			return
		}
		if f.envelope {
			_ = json.NewEncoder(w).Encode(map[string]any{"count": len(f.items), "results": f.items})
			return
		}
		_ = json.NewEncoder(w).Encode(f.items)
	case r.Method == http.MethodPost && path == "":
		var b booth
		_ = json.NewDecoder(r.Body).Decode(&b)
		f.nextID++
		b.ID = f.nextID
		f.items = append(f.items, b)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(b)
	case r.Method == http.MethodPatch:
		id, _ := strconv.ParseInt(path, 10, 64)
		var patch map[string]string
		_ = json.NewDecoder(r.Body).Decode(&patch)
		for i := range f.items {
			if f.items[i].ID == id {
				f.items[i].Status = patch["status"]
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"id": id})
	case r.Method == http.MethodDelete:
		id, _ := strconv.ParseInt(path, 10, 64)
		kept := f.items[:0]
		for _, item := range f.items {
			if item.ID != id {
				kept = append(kept, item)
			}
		}
		f.items = kept
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newStore(t *testing.T, api *fakeAPI, opts resource.Options) (*resource.Store[booth], *resource.Recorder) {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	rec := &resource.Recorder{}
	opts.Name = "booth"
	opts.Collection = "booths/"
	opts.Notifier = rec
	return resource.NewStore[booth](backend.NewClient(srv.URL), "tok", opts), rec
}

func TestFetchAllShapesAgree(t *testing.T) {
	seed := []booth{{ID: 1, Name: "A", Status: "pending"}, {ID: 2, Name: "B", Status: "paid"}}

	bareStore, _ := newStore(t, &fakeAPI{items: seed}, resource.Options{})
	require.NoError(t, bareStore.FetchAll(context.Background()))

	envStore, _ := newStore(t, &fakeAPI{items: seed, envelope: true}, resource.Options{})
	require.NoError(t, envStore.FetchAll(context.Background()))

	assert.Equal(t, bareStore.Items(), envStore.Items())
	assert.Len(t, envStore.Items(), 2)
}

func TestFetchAllFailureClearsItems(t *testing.T) {
	api := &fakeAPI{items: []booth{{ID: 1, Name: "A"}}}
	store, rec := newStore(t, api, resource.Options{})
	require.NoError(t, store.FetchAll(context.Background()))
	require.Len(t, store.Items(), 1)

	api.failList = http.StatusInternalServerError
	err := store.FetchAll(context.Background())
	require.Error(t, err)

	assert.Empty(t, store.Items())
	assert.NotNil(t, store.Items())
	assert.False(t, store.Loading())
	assert.False(t, store.Stale())
	assert.Equal(t, 1, rec.Count(resource.KindError))
	assert.Equal(t, "Failed to load booths.", rec.Notifications()[0].Message)
}

func TestFetchAllFailureKeepsStaleWhenConfigured(t *testing.T) {
	api := &fakeAPI{items: []booth{{ID: 1, Name: "A"}}}
	store, rec := newStore(t, api, resource.Options{KeepStale: true})
	require.NoError(t, store.FetchAll(context.Background()))

	api.failList = http.StatusBadGateway
	require.Error(t, store.FetchAll(context.Background()))

	assert.Len(t, store.Items(), 1)
	assert.True(t, store.Stale())
	assert.False(t, store.Loading())
	assert.Equal(t, 1, rec.Count(resource.KindError))

	api.failList = 0
	require.NoError(t, store.FetchAll(context.Background()))
	assert.False(t, store.Stale())
}

func TestCreateThenFetchContainsItem(t *testing.T) {
	api := &fakeAPI{}
	store, rec := newStore(t, api, resource.Options{})

	err := store.Create(context.Background(), resource.JSON(booth{Name: "Hall 3", Status: "pending"}))
	require.NoError(t, err)

	_, found := store.Find(func(b booth) bool { return b.Name == "Hall 3" && b.ID != 0 })
	assert.True(t, found, "list refetched after create should contain the new item")
	assert.Equal(t, 1, rec.Count(resource.KindSuccess))
	assert.Equal(t, "Booth created successfully.", rec.Notifications()[0].Message)
	assert.False(t, store.Busy())
}

func TestPatchTwiceIssuesTwoRequests(t *testing.T) {
	api := &fakeAPI{items: []booth{{ID: 7, Name: "A", Status: "pending"}}, nextID: 7}
	store, _ := newStore(t, api, resource.Options{})

	patch := resource.JSON(map[string]string{"status": "paid"})
	require.NoError(t, store.Patch(context.Background(), 7, "update status", "Status updated.", patch))
	require.NoError(t, store.Patch(context.Background(), 7, "update status", "Status updated.", patch))

	assert.Equal(t, int32(2), api.writes.Load())
	item, ok := store.Find(func(b booth) bool { return b.ID == 7 })
	require.True(t, ok)
	assert.Equal(t, "paid", item.Status)
}

func TestMutationFailureNamesActionAndKeepsList(t *testing.T) {
	api := &fakeAPI{items: []booth{{ID: 1, Name: "A", Status: "pending"}}}
	store, rec := newStore(t, api, resource.Options{})
	require.NoError(t, store.FetchAll(context.Background()))
	requestsBefore := api.requests.Load()

	api.failNext = http.StatusUnprocessableEntity
	err := store.Patch(context.Background(), 1, "update status", "Status updated.", resource.JSON(map[string]string{"status": "paid"}))
	require.Error(t, err)

	assert.Equal(t, requestsBefore+1, api.requests.Load(), "no refetch after a failed write")
	assert.Len(t, store.Items(), 1)
	require.Equal(t, 1, rec.Count(resource.KindError))
	assert.Equal(t, "Failed to update status: name: This field is required.", rec.Notifications()[0].Message)
}

func TestRemoveRequiresConfirmation(t *testing.T) {
	api := &fakeAPI{items: []booth{{ID: 1, Name: "A"}}}
	store, _ := newStore(t, api, resource.Options{})

	err := store.Remove(context.Background(), 1, resource.Confirmed(false))
	assert.ErrorIs(t, err, resource.ErrNotConfirmed)
	err = store.Remove(context.Background(), 1, nil)
	assert.ErrorIs(t, err, resource.ErrNotConfirmed)
	assert.Equal(t, int32(0), api.requests.Load())

	var prompt string
	err = store.Remove(context.Background(), 1, resource.ConfirmFunc(func(p string) bool {
		prompt = p
		return true
	}))
	require.NoError(t, err)
	assert.Equal(t, "Are you sure you want to delete this booth?", prompt)
	assert.Empty(t, store.Items())
}

func TestMutateRejectsOverlap(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && calls.Add(1) == 1 {
			close(entered)
			<-release
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)

	store := resource.NewStore[booth](backend.NewClient(srv.URL), "tok", resource.Options{Name: "booth", Collection: "booths/"})

	done := make(chan error, 1)
	go func() {
		done <- store.Create(context.Background(), resource.JSON(booth{Name: "A"}))
	}()
	<-entered
	assert.True(t, store.Busy())
	assert.ErrorIs(t, store.Create(context.Background(), resource.JSON(booth{Name: "B"})), resource.ErrBusy)
	close(release)
	require.NoError(t, <-done)
	assert.False(t, store.Busy())
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchAllCancelledLeavesStateUntouched(t *testing.T) {
	api := &fakeAPI{items: []booth{{ID: 1, Name: "A"}}}
	store, rec := newStore(t, api, resource.Options{})
	require.NoError(t, store.FetchAll(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	api.failList = http.StatusInternalServerError
	err := store.FetchAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, store.Items(), 1)
	assert.Empty(t, rec.Notifications())
	assert.False(t, store.Loading())
}

func TestArrangeAppliesToFetchedList(t *testing.T) {
	api := &fakeAPI{items: []booth{{ID: 1, Name: "B"}, {ID: 2, Name: "A"}}}
	store, _ := newStore(t, api, resource.Options{})
	store.WithArrange(func(items []booth) []booth {
		return []booth{items[1], items[0]}
	})
	require.NoError(t, store.FetchAll(context.Background()))
	assert.Equal(t, "A", store.Items()[0].Name)
}

func TestCountByAndFilter(t *testing.T) {
	items := []booth{{Status: "paid"}, {Status: "paid"}, {Status: "pending"}}
	counts := resource.CountBy(items, func(b booth) string { return b.Status })
	assert.Equal(t, map[string]int{"paid": 2, "pending": 1}, counts)

	paid := resource.Filter(items, func(b booth) bool { return b.Status == "paid" })
	assert.Len(t, paid, 2)
}
