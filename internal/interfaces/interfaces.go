package interfaces

import (
	"context"
	"time"

	"github.com/daniloc96/team-roles/internal/models"
)

// MembershipProvider lists the members of a chat usergroup.
type MembershipProvider interface {
	// ListMembers returns the usergroup members sorted by display name.
	ListMembers(ctx context.Context, usergroup string) (models.Members, error)
}

// StandupClient manages recurring standup prompts.
type StandupClient interface {
	// UpsertStandup creates the standup or updates the one with the same name.
	UpsertStandup(ctx context.Context, standup models.Standup) (*models.StandupResult, error)
}

// CalendarClient defines operations needed on the role calendar.
type CalendarClient interface {
	ListEvents(ctx context.Context, calendarID string, from, to time.Time) ([]models.CalendarEvent, error)
	CreateEvent(ctx context.Context, calendarID string, event models.CalendarEvent) (string, error)
	DeleteEvent(ctx context.Context, calendarID string, eventID string) error
}

// StateStore persists the role-state snapshot.
type StateStore interface {
	// Load returns the latest snapshot.
	Load(ctx context.Context) (*models.RoleState, error)

	// Save replaces the snapshot. state.Version must equal the stored version;
	// on success it is incremented in place.
	Save(ctx context.Context, state *models.RoleState) error
}

// StatePublisher copies a saved snapshot somewhere people can read it.
type StatePublisher interface {
	Publish(ctx context.Context, state *models.RoleState, message string) error
}

// MetricsEmitter publishes run counters.
type MetricsEmitter interface {
	EmitRun(ctx context.Context, result *models.RunResult) error
}
