package exhibitors

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fairdesk/fairdesk/internal/admin"
)

func TestMatchesFilter(t *testing.T) {
	pending := Exhibitor{CompanyName: "Acme", EmailAddress: "sales@acme.test", Status: admin.StatusPending}
	odd := Exhibitor{CompanyName: "Initech", Status: "archived"}

	assert.True(t, pending.Matches("", ""))
	assert.True(t, pending.Matches("ACME", "all"))
	assert.True(t, pending.Matches("sales@", "pending"))
	assert.False(t, pending.Matches("", "paid"))
	assert.False(t, pending.Matches("", "archived"), "unknown filters match nothing")

	assert.True(t, odd.Matches("", "all"))
	assert.False(t, odd.Matches("", "pending"))
	assert.Equal(t, admin.StatusUnknown, odd.DisplayStatus())
}

func TestStatsCountUnknownSeparately(t *testing.T) {
	items := []Exhibitor{
		{Status: admin.StatusPaid},
		{Status: admin.StatusPaid},
		{Status: admin.StatusRejected},
		{Status: "archived"},
	}
	stats := admin.CountStatuses(items, func(e Exhibitor) admin.Status { return e.Status })

	assert.Equal(t, admin.StatusStats{Total: 4, Paid: 2, Rejected: 1, Unknown: 1}, stats)
}
