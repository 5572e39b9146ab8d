// Package events manages the fair's event calendar.
package events

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fairdesk/fairdesk/internal/shared"
)

// DateLayout is the wire format of start_date and end_date.
const DateLayout = "2006-01-02"

// Event is one fair edition as served by the API.
type Event struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Location    string `json:"location"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Time        string `json:"time"`
	Exhibitors  int    `json:"exhibitors"`
	Buyers      int    `json:"buyers"`
	Countries   int    `json:"countries"`
	Sectors     int    `json:"sectors"`
	Description string `json:"description"`
	IsPast      bool   `json:"is_past"`
}

// Input is the create and edit form of an event.
type Input struct {
	Title       string `json:"title" form:"title" validate:"required,max=200"`
	Location    string `json:"location" form:"location" validate:"required"`
	StartDate   string `json:"start_date" form:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate     string `json:"end_date" form:"end_date" validate:"required,datetime=2006-01-02"`
	Time        string `json:"time" form:"time" validate:"max=100"`
	Exhibitors  int    `json:"exhibitors" form:"exhibitors" validate:"min=0"`
	Buyers      int    `json:"buyers" form:"buyers" validate:"min=0"`
	Countries   int    `json:"countries" form:"countries" validate:"min=0"`
	Sectors     int    `json:"sectors" form:"sectors" validate:"min=0"`
	Description string `json:"description" form:"description"`
	IsPast      bool   `json:"is_past" form:"is_past"`
}

// InputFrom copies the editable fields of e.
func InputFrom(e Event) Input {
	return Input{
		Title:       e.Title,
		Location:    e.Location,
		StartDate:   e.StartDate,
		EndDate:     e.EndDate,
		Time:        e.Time,
		Exhibitors:  e.Exhibitors,
		Buyers:      e.Buyers,
		Countries:   e.Countries,
		Sectors:     e.Sectors,
		Description: e.Description,
		IsPast:      e.IsPast,
	}
}

// Validate checks field rules and the date order.
func (in Input) Validate() error {
	errs := shared.FieldErrors(shared.ValidateStruct(in))
	if errs == nil {
		errs = shared.ValidationErrors{}
	}
	start, startErr := time.Parse(DateLayout, in.StartDate)
	end, endErr := time.Parse(DateLayout, in.EndDate)
	if startErr == nil && endErr == nil && end.Before(start) {
		errs.Add("end_date", "must not be before the start date")
	}
	return errs.Err()
}

// ParseCount reads a count field. Blank means zero.
func ParseCount(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	return n, err == nil
}

// ParseFlag reads a checkbox value.
func ParseFlag(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "on", "true":
		return true
	}
	return false
}

// ByStartDate orders events by start date, earliest first.
func ByStartDate(items []Event) []Event {
	sort.SliceStable(items, func(i, j int) bool { return items[i].StartDate < items[j].StartDate })
	return items
}

// Split separates past and upcoming events. An event is past when it is
// flagged so or its end date lies before today.
func Split(items []Event, today time.Time) (upcoming, past []Event) {
	cutoff := today.Format(DateLayout)
	for _, e := range items {
		if e.IsPast || (e.EndDate != "" && e.EndDate < cutoff) {
			past = append(past, e)
			continue
		}
		upcoming = append(upcoming, e)
	}
	return upcoming, past
}
