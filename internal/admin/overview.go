package admin

import (
	"context"
	"net/http"

	"github.com/fairdesk/fairdesk/internal/rbac"
	"github.com/fairdesk/fairdesk/internal/resource"
)

// Summary is one tab's entry in the dashboard overview.
type Summary struct {
	Tab   rbac.Tab     `json:"tab"`
	Total int          `json:"total"`
	Stats *StatusStats `json:"stats,omitempty"`
}

// Count fetches the collection in opts with the caller's token and counts it.
// Items are tallied by status when status is non-nil. Nothing is reported to
// the session.
func Count[T any](ctx context.Context, k *Kit, r *http.Request, tab rbac.Tab, opts resource.Options, status func(T) Status) (Summary, error) {
	opts.Logger = k.logger()
	store := resource.NewStore[T](k.Client, Principal(r).AccessToken, opts)
	if err := store.FetchAll(ctx); err != nil {
		return Summary{}, err
	}
	items := store.Items()
	summary := Summary{Tab: tab, Total: len(items)}
	if status != nil {
		stats := CountStatuses(items, status)
		summary.Stats = &stats
	}
	return summary, nil
}
