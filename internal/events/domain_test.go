package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseCount(t *testing.T) {
	n, ok := ParseCount("")
	assert.True(t, ok)
	assert.Zero(t, n)

	n, ok = ParseCount(" 42 ")
	assert.True(t, ok)
	assert.Equal(t, 42, n)

	_, ok = ParseCount("40+")
	assert.False(t, ok)
}

func TestParseFlag(t *testing.T) {
	assert.True(t, ParseFlag("on"))
	assert.True(t, ParseFlag("TRUE"))
	assert.False(t, ParseFlag(""))
	assert.False(t, ParseFlag("yes"))
}

func TestSplitAndOrder(t *testing.T) {
	items := ByStartDate([]Event{
		{Title: "C", StartDate: "2027-02-01", EndDate: "2027-02-03"},
		{Title: "A", StartDate: "2025-01-01", EndDate: "2025-01-03"},
		{Title: "B", StartDate: "2026-12-01", EndDate: "2026-12-03", IsPast: true},
	})
	assert.Equal(t, "A", items[0].Title)

	upcoming, past := Split(items, time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC))
	assert.Len(t, upcoming, 1)
	assert.Equal(t, "C", upcoming[0].Title)
	assert.Len(t, past, 2)
}

func TestValidateDateOrder(t *testing.T) {
	in := Input{Title: "Expo", Location: "Dhaka", StartDate: "2026-05-02", EndDate: "2026-05-01"}
	err := in.Validate()
	assert.EqualError(t, err, "end_date: must not be before the start date")

	in.EndDate = "2026-05-02"
	assert.NoError(t, in.Validate())
}
