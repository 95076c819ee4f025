package models

import "time"

// DateLayout is the all-day date format used by the calendar.
const DateLayout = "2006-01-02"

// EventStatus places an event relative to a reference day.
type EventStatus string

const (
	EventPast    EventStatus = "past"
	EventOngoing EventStatus = "ongoing"
	EventFuture  EventStatus = "future"
)

// CalendarEvent is one all-day stint of a member in a role. Start is inclusive,
// End exclusive, both at UTC midnight.
type CalendarEvent struct {
	ID         string    `json:"id,omitempty"`
	Role       Role      `json:"role"`
	Summary    string    `json:"summary"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	HolderID   string    `json:"holder_id,omitempty"`
	HolderName string    `json:"holder_name,omitempty"`
}

// Status reports whether the event is past, ongoing or future on day.
func (e CalendarEvent) Status(day time.Time) EventStatus {
	switch {
	case !e.End.After(day):
		return EventPast
	case e.Start.After(day):
		return EventFuture
	default:
		return EventOngoing
	}
}

// StartDate returns Start formatted as YYYY-MM-DD.
func (e CalendarEvent) StartDate() string { return e.Start.Format(DateLayout) }

// EndDate returns End formatted as YYYY-MM-DD.
func (e CalendarEvent) EndDate() string { return e.End.Format(DateLayout) }
