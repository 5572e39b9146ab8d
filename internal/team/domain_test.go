package team

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairdesk/fairdesk/internal/backend"
	"github.com/fairdesk/fairdesk/internal/rbac"
	"github.com/fairdesk/fairdesk/internal/resource"
)

func TestAdminsFirstIsStable(t *testing.T) {
	items := AdminsFirst([]Member{
		{ID: 1, Role: rbac.RoleSales},
		{ID: 2, Role: rbac.RoleAdmin},
		{ID: 3, Role: rbac.RoleManager},
		{ID: 4, Role: rbac.RoleAdmin},
	})
	ids := make([]int64, 0, len(items))
	for _, m := range items {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []int64{2, 4, 1, 3}, ids)
}

func TestDeleteAdminSendsNothing(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	store := resource.NewStore[Member](backend.NewClient(srv.URL), "tok", Options())
	err := NewService(store).Delete(context.Background(), Member{ID: 9, Role: rbac.RoleAdmin}, resource.Confirmed(true))

	require.ErrorIs(t, err, ErrAdminProtected)
	assert.Zero(t, hits.Load())
}

func TestItemPathUsesDeleteEndpoint(t *testing.T) {
	assert.Equal(t, "team/delete/7/", Options().ItemPath(7))
}
