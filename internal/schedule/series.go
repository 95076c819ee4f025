package schedule

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/daniloc96/team-roles/internal/models"
	"github.com/daniloc96/team-roles/internal/rotation"
)

// ErrNoSeries is returned when a role has no events to continue from.
var ErrNoSeries = errors.New("no events found for role")

// Summary renders the event title, e.g. "Support Steward: Alice".
func Summary(role models.Role, holder models.Member) string {
	return fmt.Sprintf("%s: %s", role.Title(), holder.FirstName())
}

// HolderName extracts the member name from an event summary.
func HolderName(summary string) string {
	if i := strings.LastIndex(summary, ":"); i >= 0 {
		return strings.TrimSpace(summary[i+1:])
	}
	return strings.TrimSpace(summary)
}

// MatchesRole reports whether event belongs to the series of role, either by
// its recorded role or by its summary prefix.
func MatchesRole(event models.CalendarEvent, role models.Role) bool {
	if event.Role != "" {
		return event.Role == role
	}
	return strings.HasPrefix(event.Summary, role.Title()+":")
}

// NewEvent builds the event for holder serving in role between start and end.
func NewEvent(role models.Role, holder models.Member, start, end time.Time) models.CalendarEvent {
	return models.CalendarEvent{
		Role:       role,
		Summary:    Summary(role, holder),
		Start:      Day(start),
		End:        Day(end),
		HolderID:   holder.ID,
		HolderName: holder.Name,
	}
}

// Plan generates n consecutive events. The first starts at first and is held
// by the member after previous; each following event advances one member.
func Plan(role models.Role, first time.Time, previous models.Member, members models.Members, n int) ([]models.CalendarEvent, error) {
	c, err := CycleFor(role)
	if err != nil {
		return nil, err
	}
	holders, err := rotation.Sequence(previous, members, n)
	if err != nil {
		return nil, err
	}
	events := make([]models.CalendarEvent, 0, n)
	for i, holder := range holders {
		start, end := EventDates(c, first, i)
		events = append(events, NewEvent(role, holder, start, end))
	}
	return events, nil
}

// Series is the time-ordered list of events of one role.
type Series struct {
	Role   models.Role
	Events []models.CalendarEvent
}

// NewSeries keeps the events of role and orders them by start date.
func NewSeries(role models.Role, events []models.CalendarEvent) Series {
	kept := make([]models.CalendarEvent, 0, len(events))
	for _, e := range events {
		if MatchesRole(e, role) {
			e.Role = role
			kept = append(kept, e)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Start.Before(kept[j].Start)
	})
	return Series{Role: role, Events: kept}
}

// Len returns the number of events.
func (s Series) Len() int { return len(s.Events) }

// Last returns the latest-starting event.
func (s Series) Last() (models.CalendarEvent, bool) {
	if len(s.Events) == 0 {
		return models.CalendarEvent{}, false
	}
	return s.Events[len(s.Events)-1], true
}

// Latest returns the most recent event that started on or before day.
func (s Series) Latest(day time.Time) (models.CalendarEvent, bool) {
	day = Day(day)
	for i := len(s.Events) - 1; i >= 0; i-- {
		if !s.Events[i].Start.After(day) {
			return s.Events[i], true
		}
	}
	return models.CalendarEvent{}, false
}

// NextAfter returns the first event starting strictly after day.
func (s Series) NextAfter(day time.Time) (models.CalendarEvent, bool) {
	day = Day(day)
	for _, e := range s.Events {
		if e.Start.After(day) {
			return e, true
		}
	}
	return models.CalendarEvent{}, false
}

// After returns every event starting strictly after day.
func (s Series) After(day time.Time) []models.CalendarEvent {
	day = Day(day)
	var out []models.CalendarEvent
	for _, e := range s.Events {
		if e.Start.After(day) {
			out = append(out, e)
		}
	}
	return out
}

// Holder resolves the member of event against the usergroup, by ID when the
// event records one and by summary name otherwise.
func Holder(event models.CalendarEvent, members models.Members) (models.Member, error) {
	if event.HolderID != "" {
		return members.FindByID(event.HolderID)
	}
	name := event.HolderName
	if name == "" {
		name = HolderName(event.Summary)
	}
	return members.FindByName(name)
}
