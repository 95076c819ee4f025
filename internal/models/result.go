package models

import (
	"fmt"
	"time"
)

// Action names an operation the tool performs on a role.
type Action string

const (
	ActionRotate     Action = "rotate"
	ActionStandup    Action = "standup"
	ActionCreateNext Action = "create-next"
	ActionCreateBulk Action = "create-bulk"
	ActionDelete     Action = "delete"
)

// ParseAction validates an action name.
func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionRotate, ActionStandup, ActionCreateNext, ActionCreateBulk, ActionDelete:
		return a, nil
	}
	return "", fmt.Errorf("unknown action %q", s)
}

// HolderSource records where a holder was resolved from.
type HolderSource string

const (
	SourceCalendar HolderSource = "calendar"
	SourceSnapshot HolderSource = "snapshot"
	SourceRotation HolderSource = "rotation"
)

// Rotation describes one handover of a role.
type Rotation struct {
	Previous Member       `json:"previous"`
	Next     Member       `json:"next"`
	Buddy    *Member      `json:"buddy,omitempty"`
	Source   HolderSource `json:"source"`
	// Unchanged is set when the next holder already held the role, e.g. a
	// second rotation on the same day.
	Unchanged bool `json:"unchanged,omitempty"`
}

// StandupResult is the outcome of creating or updating a standup.
type StandupResult struct {
	ID      string   `json:"id,omitempty"`
	Name    string   `json:"name"`
	Created bool     `json:"created"`
	Users   []string `json:"users"`
	Channel string   `json:"channel"`
}

// RunResult contains the outcome of one invocation.
type RunResult struct {
	Action     Action          `json:"action"`
	Role       Role            `json:"role"`
	DryRun     bool            `json:"dry_run"`
	StartTime  time.Time       `json:"start_time"`
	EndTime    time.Time       `json:"end_time"`
	DurationMs int64           `json:"duration_ms"`
	Rotation   *Rotation       `json:"rotation,omitempty"`
	Events     []CalendarEvent `json:"events,omitempty"`
	Deleted    []CalendarEvent `json:"deleted,omitempty"`
	Standup    *StandupResult  `json:"standup,omitempty"`
	Summary    RunSummary      `json:"summary"`
	Errors     []string        `json:"errors,omitempty"`
}

// NewRunResult starts a result clock for action on role.
func NewRunResult(action Action, role Role, dryRun bool) *RunResult {
	return &RunResult{Action: action, Role: role, DryRun: dryRun, StartTime: time.Now()}
}

// Finish stamps the end time and duration.
func (r *RunResult) Finish() *RunResult {
	r.EndTime = time.Now()
	r.DurationMs = r.EndTime.Sub(r.StartTime).Milliseconds()
	return r
}

// RunSummary provides aggregate counters for a run.
type RunSummary struct {
	Rotations        int `json:"rotations"`
	EventsPlanned    int `json:"events_planned"`
	EventsCreated    int `json:"events_created"`
	EventsDeleted    int `json:"events_deleted"`
	StandupsUpserted int `json:"standups_upserted"`
	Errors           int `json:"errors"`
}

// String returns a human-readable representation of the run summary.
func (s RunSummary) String() string {
	return fmt.Sprintf(
		"run completed: Rotations: %d, Events: %d planned / %d created / %d deleted, Standups: %d, Errors: %d",
		s.Rotations, s.EventsPlanned, s.EventsCreated, s.EventsDeleted, s.StandupsUpserted, s.Errors,
	)
}
