package google

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/daniloc96/team-roles/internal/models"
)

// MockClient is an in-memory calendar for tests. Function fields override the
// default behaviour.
type MockClient struct {
	ListEventsFunc  func(ctx context.Context, calendarID string, from, to time.Time) ([]models.CalendarEvent, error)
	CreateEventFunc func(ctx context.Context, calendarID string, event models.CalendarEvent) (string, error)
	DeleteEventFunc func(ctx context.Context, calendarID string, eventID string) error

	Events  []models.CalendarEvent
	Created []models.CalendarEvent
	Deleted []string
	nextID  int
}

func (m *MockClient) ListEvents(ctx context.Context, calendarID string, from, to time.Time) ([]models.CalendarEvent, error) {
	if m.ListEventsFunc != nil {
		return m.ListEventsFunc(ctx, calendarID, from, to)
	}
	var out []models.CalendarEvent
	for _, e := range m.Events {
		if !e.End.After(from) {
			continue
		}
		if !to.IsZero() && !e.Start.Before(to) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func (m *MockClient) CreateEvent(ctx context.Context, calendarID string, event models.CalendarEvent) (string, error) {
	if m.CreateEventFunc != nil {
		return m.CreateEventFunc(ctx, calendarID, event)
	}
	m.nextID++
	event.ID = fmt.Sprintf("evt-%d", m.nextID)
	m.Events = append(m.Events, event)
	m.Created = append(m.Created, event)
	return event.ID, nil
}

func (m *MockClient) DeleteEvent(ctx context.Context, calendarID string, eventID string) error {
	if m.DeleteEventFunc != nil {
		return m.DeleteEventFunc(ctx, calendarID, eventID)
	}
	for i, e := range m.Events {
		if e.ID == eventID {
			m.Events = append(m.Events[:i], m.Events[i+1:]...)
			m.Deleted = append(m.Deleted, eventID)
			return nil
		}
	}
	return fmt.Errorf("event %s not found", eventID)
}
