package calendar

import (
	"time"

	calendar "google.golang.org/api/calendar/v3"

	"github.com/teemow/calbridge/internal/apierror"
)

// EventInput is the client-supplied payload for creating an event.
// Start and End are ISO 8601 timestamps.
type EventInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Start       string `json:"start"`
	End         string `json:"end"`
}

// Validate checks required fields and parses the timestamps.
func (in EventInput) Validate() (start, end time.Time, err error) {
	if in.Title == "" || in.Start == "" || in.End == "" {
		return time.Time{}, time.Time{}, apierror.InvalidRequest("Missing required fields: title, start, and end are required")
	}

	start, serr := time.Parse(time.RFC3339, in.Start)
	end, eerr := time.Parse(time.RFC3339, in.End)
	if serr != nil || eerr != nil {
		return time.Time{}, time.Time{}, apierror.InvalidRequest("Invalid date format. Use ISO 8601 format (e.g., 2025-07-30T14:00:00.000Z)")
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, apierror.InvalidRequest("End time must be after start time")
	}
	return start, end, nil
}

// CreateResult is returned after a successful event insert.
type CreateResult struct {
	EventID  string
	HTMLLink string
	Event    *EventSummary
}

// EventSummary is a trimmed view of a calendar event for API responses.
type EventSummary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Start       string `json:"start"`
	End         string `json:"end"`
	HTMLLink    string `json:"htmlLink,omitempty"`
	Status      string `json:"status,omitempty"`
}

func toEventSummary(ev *calendar.Event) *EventSummary {
	if ev == nil {
		return nil
	}
	s := &EventSummary{
		ID:          ev.Id,
		Title:       ev.Summary,
		Description: ev.Description,
		HTMLLink:    ev.HtmlLink,
		Status:      ev.Status,
	}
	if ev.Start != nil {
		s.Start = eventTime(ev.Start)
	}
	if ev.End != nil {
		s.End = eventTime(ev.End)
	}
	return s
}

// eventTime prefers the timed form and falls back to the all-day date.
func eventTime(t *calendar.EventDateTime) string {
	if t.DateTime != "" {
		return t.DateTime
	}
	return t.Date
}
