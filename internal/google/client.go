package google

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/oauth2/google"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/daniloc96/team-roles/internal/models"
)

const (
	propRole       = "role"
	propMemberID   = "member_id"
	propMemberName = "member_name"

	eventTimeZone = "Etc/UTC"
	pageSize      = 250
)

type eventService interface {
	List(ctx context.Context, calendarID string, timeMin, timeMax string, pageToken string) ([]*calendar.Event, string, error)
	Insert(ctx context.Context, calendarID string, event *calendar.Event) (*calendar.Event, error)
	Delete(ctx context.Context, calendarID string, eventID string) error
}

// Client implements role calendar operations on Google Calendar.
type Client struct {
	events eventService
}

// NewClient creates a Google Calendar client from service account credentials.
// subject is optional and enables domain-wide delegation.
func NewClient(ctx context.Context, credentialsJSON []byte, subject string) (*Client, error) {
	if len(credentialsJSON) == 0 {
		return nil, fmt.Errorf("credentials JSON is required")
	}

	config, err := google.JWTConfigFromJSON(credentialsJSON, calendar.CalendarEventsScope)
	if err != nil {
		return nil, fmt.Errorf("parsing calendar credentials: %w", err)
	}
	config.Subject = subject

	svc, err := calendar.NewService(ctx, option.WithTokenSource(config.TokenSource(ctx)))
	if err != nil {
		return nil, err
	}

	return &Client{events: &calendarService{svc: svc}}, nil
}

// ListEvents returns the events overlapping [from, to). A zero to leaves the
// range open-ended.
func (c *Client) ListEvents(ctx context.Context, calendarID string, from, to time.Time) ([]models.CalendarEvent, error) {
	if calendarID == "" {
		return nil, fmt.Errorf("calendar ID is required")
	}

	timeMin := from.UTC().Format(time.RFC3339)
	timeMax := ""
	if !to.IsZero() {
		timeMax = to.UTC().Format(time.RFC3339)
	}

	var events []models.CalendarEvent
	pageToken := ""
	for {
		var (
			items     []*calendar.Event
			nextToken string
			err       error
		)
		err = retryOnGoogleError(ctx, func() error {
			items, nextToken, err = c.events.List(ctx, calendarID, timeMin, timeMax, pageToken)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("listing events: %w", err)
		}
		for _, item := range items {
			event, convErr := fromCalendarEvent(item)
			if convErr != nil {
				// Timed events are not part of any role series.
				continue
			}
			events = append(events, event)
		}
		if nextToken == "" {
			break
		}
		pageToken = nextToken
	}

	return events, nil
}

// CreateEvent inserts an all-day event and returns its ID.
func (c *Client) CreateEvent(ctx context.Context, calendarID string, event models.CalendarEvent) (string, error) {
	if calendarID == "" {
		return "", fmt.Errorf("calendar ID is required")
	}

	var created *calendar.Event
	err := retryOnGoogleError(ctx, func() error {
		var insertErr error
		created, insertErr = c.events.Insert(ctx, calendarID, toCalendarEvent(event))
		return insertErr
	})
	if err != nil {
		return "", fmt.Errorf("creating event %q: %w", event.Summary, err)
	}
	if created == nil {
		return "", nil
	}
	return created.Id, nil
}

// DeleteEvent removes an event without notifying attendees.
func (c *Client) DeleteEvent(ctx context.Context, calendarID string, eventID string) error {
	if calendarID == "" || eventID == "" {
		return fmt.Errorf("calendar ID and event ID are required")
	}
	err := retryOnGoogleError(ctx, func() error {
		return c.events.Delete(ctx, calendarID, eventID)
	})
	if err != nil {
		return fmt.Errorf("deleting event %s: %w", eventID, err)
	}
	return nil
}

func toCalendarEvent(e models.CalendarEvent) *calendar.Event {
	private := map[string]string{propRole: string(e.Role)}
	if e.HolderID != "" {
		private[propMemberID] = e.HolderID
	}
	if e.HolderName != "" {
		private[propMemberName] = e.HolderName
	}
	return &calendar.Event{
		Summary: e.Summary,
		Start:   &calendar.EventDateTime{Date: e.StartDate(), TimeZone: eventTimeZone},
		End:     &calendar.EventDateTime{Date: e.EndDate(), TimeZone: eventTimeZone},
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: private,
		},
		Transparency: "transparent",
	}
}

var errNotAllDay = errors.New("event has no all-day dates")

func fromCalendarEvent(item *calendar.Event) (models.CalendarEvent, error) {
	if item == nil || item.Start == nil || item.End == nil {
		return models.CalendarEvent{}, errNotAllDay
	}
	start, err := eventDate(item.Start)
	if err != nil {
		return models.CalendarEvent{}, err
	}
	end, err := eventDate(item.End)
	if err != nil {
		return models.CalendarEvent{}, err
	}

	event := models.CalendarEvent{
		ID:      item.Id,
		Summary: item.Summary,
		Start:   start,
		End:     end,
	}
	if item.ExtendedProperties != nil {
		props := item.ExtendedProperties.Private
		if role, parseErr := models.ParseRole(props[propRole]); parseErr == nil {
			event.Role = role
		}
		event.HolderID = props[propMemberID]
		event.HolderName = props[propMemberName]
	}
	return event, nil
}

// eventDate reads an all-day date, or the date part of a timed event created
// by hand in the calendar UI.
func eventDate(dt *calendar.EventDateTime) (time.Time, error) {
	raw := dt.Date
	if raw == "" && len(dt.DateTime) >= len(models.DateLayout) {
		raw = dt.DateTime[:len(models.DateLayout)]
	}
	if raw == "" {
		return time.Time{}, errNotAllDay
	}
	return time.Parse(models.DateLayout, raw)
}

func retryOnGoogleError(ctx context.Context, fn func() error) error {
	const maxRetries = 3
	backoff := 200 * time.Millisecond
	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if !isRetryableGoogleError(err) || attempt == maxRetries {
			return err
		}
		if backoff > 2*time.Second {
			backoff = 2 * time.Second
		}
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		backoff *= 2
	}
	return nil
}

func isRetryableGoogleError(err error) bool {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == 429 || apiErr.Code == 503
}

type calendarService struct {
	svc *calendar.Service
}

func (c *calendarService) List(ctx context.Context, calendarID string, timeMin, timeMax string, pageToken string) ([]*calendar.Event, string, error) {
	call := c.svc.Events.List(calendarID).
		TimeMin(timeMin).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(pageSize)
	if timeMax != "" {
		call = call.TimeMax(timeMax)
	}
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}
	resp, err := call.Context(ctx).Do()
	if err != nil {
		return nil, "", err
	}
	return resp.Items, resp.NextPageToken, nil
}

func (c *calendarService) Insert(ctx context.Context, calendarID string, event *calendar.Event) (*calendar.Event, error) {
	return c.svc.Events.Insert(calendarID, event).Context(ctx).Do()
}

func (c *calendarService) Delete(ctx context.Context, calendarID string, eventID string) error {
	return c.svc.Events.Delete(calendarID, eventID).SendUpdates("none").Context(ctx).Do()
}
