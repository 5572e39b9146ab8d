package admin

import (
	"strings"

	"github.com/fairdesk/fairdesk/internal/resource"
)

// Status is the follow-up state of an exhibitor or visitor registration.
type Status string

// Registration statuses. StatusUnknown is only ever a display value.
const (
	StatusPending   Status = "pending"
	StatusContacted Status = "contacted"
	StatusPaid      Status = "paid"
	StatusRejected  Status = "rejected"
	StatusUnknown   Status = "unknown"
)

// FilterAll is the status filter that matches every item.
const FilterAll = "all"

var statuses = []Status{StatusPending, StatusContacted, StatusPaid, StatusRejected}

// Statuses lists the recognised statuses in display order.
func Statuses() []Status {
	out := make([]Status, len(statuses))
	copy(out, statuses)
	return out
}

// Valid reports whether s is a recognised status.
func (s Status) Valid() bool {
	for _, known := range statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Display returns s, or StatusUnknown for anything unrecognised.
func (s Status) Display() Status {
	if s.Valid() {
		return s
	}
	return StatusUnknown
}

// MatchesFilter reports whether an item with status s is listed under filter.
// An empty filter means all. An unrecognised filter matches nothing.
func (s Status) MatchesFilter(filter string) bool {
	filter = strings.ToLower(strings.TrimSpace(filter))
	if filter == "" || filter == FilterAll {
		return true
	}
	f := Status(filter)
	return f.Valid() && s == f
}

// StatusStats counts items per status.
type StatusStats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Contacted int `json:"contacted"`
	Paid      int `json:"paid"`
	Rejected  int `json:"rejected"`
	Unknown   int `json:"unknown"`
}

// CountStatuses tallies items by the status key returns.
func CountStatuses[T any](items []T, key func(T) Status) StatusStats {
	counts := resource.CountBy(items, func(item T) string { return string(key(item).Display()) })
	return StatusStats{
		Total:     len(items),
		Pending:   counts[string(StatusPending)],
		Contacted: counts[string(StatusContacted)],
		Paid:      counts[string(StatusPaid)],
		Rejected:  counts[string(StatusRejected)],
		Unknown:   counts[string(StatusUnknown)],
	}
}

// Matches reports whether any of fields contains q, ignoring case.
func Matches(q string, fields ...string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}
