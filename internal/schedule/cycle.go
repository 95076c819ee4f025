// Package schedule computes the calendar series of role events: stint dates,
// reference date alignment and event summaries.
package schedule

import (
	"fmt"
	"time"

	"github.com/daniloc96/team-roles/internal/models"
)

// Unit is the calendar unit a cycle is measured in.
type Unit int

const (
	Days Unit = iota
	Months
)

// Cycle describes how often a role changes hands.
type Cycle struct {
	Unit Unit
	// Frequency is the distance between the starts of consecutive events.
	Frequency int
	// Period is the length of one event.
	Period int
	// EventsPerYear is the default size of a bulk-generated series.
	EventsPerYear int
	// Overlap is how many events of the series are running at once.
	Overlap int
	// Weekday events start on, for day-based cycles.
	Weekday time.Weekday
}

var cycles = map[models.Role]Cycle{
	models.RoleMeetingFacilitator: {Unit: Months, Frequency: 1, Period: 1, EventsPerYear: 12, Overlap: 1},
	models.RoleSupportSteward:     {Unit: Days, Frequency: 7, Period: 14, EventsPerYear: 52, Overlap: 2, Weekday: time.Wednesday},
	models.RoleSupportTriager:     {Unit: Days, Frequency: 7, Period: 14, EventsPerYear: 52, Overlap: 2, Weekday: time.Wednesday},
}

// CycleFor returns the cycle of role.
func CycleFor(role models.Role) (Cycle, error) {
	c, ok := cycles[role]
	if !ok {
		return Cycle{}, fmt.Errorf("no cycle defined for role %q", role)
	}
	return c, nil
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

// EventDates returns the start and end of the event offset positions after
// the one starting at first. Month cycles always start on the 1st.
func EventDates(c Cycle, first time.Time, offset int) (start, end time.Time) {
	first = Day(first)
	switch c.Unit {
	case Months:
		first = time.Date(first.Year(), first.Month(), 1, 0, 0, 0, 0, time.UTC)
		start = first.AddDate(0, c.Frequency*offset, 0)
		end = start.AddDate(0, c.Period, 0)
	default:
		start = first.AddDate(0, 0, c.Frequency*offset)
		end = start.AddDate(0, 0, c.Period)
	}
	return start, end
}

// NextStart returns the start of the event that follows last in its series.
// In a contiguous series it equals the end of the event Overlap positions back.
func NextStart(c Cycle, last models.CalendarEvent) time.Time {
	start, _ := EventDates(c, last.Start, 1)
	return start
}

// AlignToWeekday moves d forward to the next occurrence of weekday, or keeps
// it when it already falls on it.
func AlignToWeekday(d time.Time, weekday time.Weekday) time.Time {
	d = Day(d)
	delta := (int(weekday) - int(d.Weekday()) + 7) % 7
	return d.AddDate(0, 0, delta)
}

// AlignToWednesday moves d forward to the next Wednesday.
func AlignToWednesday(d time.Time) time.Time {
	return AlignToWeekday(d, time.Wednesday)
}

// FirstOfNextMonth returns the 1st of the month after d.
func FirstOfNextMonth(d time.Time) time.Time {
	d = Day(d)
	return time.Date(d.Year(), d.Month()+1, 1, 0, 0, 0, 0, time.UTC)
}

// AlignReference adjusts a user-supplied reference date to the cycle: month
// cycles snap to the 1st, day cycles move forward to their weekday.
func AlignReference(c Cycle, d time.Time) time.Time {
	d = Day(d)
	if c.Unit == Months {
		return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	return AlignToWeekday(d, c.Weekday)
}

// DefaultReference is where a new series starts when the calendar is empty:
// the 1st of next month for monthly roles, the next handover weekday otherwise.
func DefaultReference(c Cycle, today time.Time) time.Time {
	if c.Unit == Months {
		return FirstOfNextMonth(today)
	}
	return AlignToWeekday(today, c.Weekday)
}
