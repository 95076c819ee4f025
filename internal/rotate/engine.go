// Package rotate runs role handovers: it reads the usergroup, the role
// calendar and the snapshot, decides who serves next and writes the result
// back to the calendar, the snapshot and the standup.
package rotate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/daniloc96/team-roles/internal/config"
	"github.com/daniloc96/team-roles/internal/interfaces"
	teamlog "github.com/daniloc96/team-roles/internal/log"
	"github.com/daniloc96/team-roles/internal/models"
	"github.com/daniloc96/team-roles/internal/schedule"
)

// ErrNoAssignment is returned when the snapshot has no entry for a role and
// the calendar cannot stand in for it.
var ErrNoAssignment = errors.New("no assignment recorded for role")

// historyWindow is how far back the calendar is read to find the current holder.
const historyWindow = 366 * 24 * time.Hour

// Engine orchestrates role operations.
type Engine struct {
	members   interfaces.MembershipProvider
	calendar  interfaces.CalendarClient
	standups  interfaces.StandupClient
	store     interfaces.StateStore
	publisher interfaces.StatePublisher
	metrics   interfaces.MetricsEmitter
	cfg       *config.Config
	now       func() time.Time

	mu      sync.Mutex
	running bool
}

// NewEngine creates a rotation engine.
func NewEngine(members interfaces.MembershipProvider, calendar interfaces.CalendarClient, standups interfaces.StandupClient, store interfaces.StateStore, cfg *config.Config) *Engine {
	return &Engine{
		members:  members,
		calendar: calendar,
		standups: standups,
		store:    store,
		cfg:      cfg,
		now:      time.Now,
	}
}

// SetPublisher sets where saved snapshots are published. If nil, publishing is skipped.
func (e *Engine) SetPublisher(p interfaces.StatePublisher) {
	e.publisher = p
}

// SetMetrics sets the run metrics emitter. If nil, metrics are skipped.
func (e *Engine) SetMetrics(m interfaces.MetricsEmitter) {
	e.metrics = m
}

func (e *Engine) dryRun() bool {
	return e.cfg.Run.DryRun
}

func (e *Engine) today() time.Time {
	return schedule.Day(e.now())
}

// Request selects the operation performed by Run.
type Request struct {
	Action models.Action
	Role   models.Role

	// Bulk applies to ActionCreateBulk.
	Bulk BulkOptions
	// Reference is the cut-off date of ActionDelete. Zero means today.
	Reference time.Time
}

// Run performs one operation and reports its outcome. Only one run may be in
// progress per engine.
func (e *Engine) Run(ctx context.Context, req Request) (*models.RunResult, error) {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return nil, fmt.Errorf("run already in progress")
	}
	e.running = true
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
	}()

	if !req.Role.Valid() {
		return nil, fmt.Errorf("unknown role %q", req.Role)
	}

	result := models.NewRunResult(req.Action, req.Role, e.dryRun())
	entry := teamlog.ForRun(logrus.StandardLogger(), string(req.Action), string(req.Role), e.dryRun())
	entry.Info("🚀 Starting run")

	var err error
	switch req.Action {
	case models.ActionRotate:
		result.Rotation, err = e.Rotate(ctx, req.Role)
		if err == nil && !result.Rotation.Unchanged {
			result.Summary.Rotations = 1
		}
	case models.ActionStandup:
		result.Standup, err = e.Standup(ctx, req.Role)
		if err == nil && !result.DryRun {
			result.Summary.StandupsUpserted = 1
		}
	case models.ActionCreateNext:
		var event *models.CalendarEvent
		event, err = e.CreateNext(ctx, req.Role)
		if event != nil {
			result.Events = []models.CalendarEvent{*event}
		}
	case models.ActionCreateBulk:
		result.Events, err = e.CreateBulk(ctx, req.Role, req.Bulk)
	case models.ActionDelete:
		result.Deleted, err = e.DeleteAfter(ctx, req.Role, req.Reference)
	default:
		err = fmt.Errorf("unknown action %q", req.Action)
	}

	result.Summary.EventsPlanned = len(result.Events)
	if !result.DryRun {
		result.Summary.EventsCreated = len(result.Events)
		result.Summary.EventsDeleted = len(result.Deleted)
	}
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
	}
	result.Summary.Errors = len(result.Errors)
	result.Finish()

	if e.metrics != nil {
		if mErr := e.metrics.EmitRun(ctx, result); mErr != nil {
			entry.WithError(mErr).Warn("⚠ Failed to emit metrics")
		}
	}

	if err != nil {
		entry.WithError(err).Error("❌ Run failed")
		return result, err
	}
	entry.WithField("duration_ms", result.DurationMs).Info("✅ " + result.Summary.String())
	return result, nil
}

func (e *Engine) listMembers(ctx context.Context) (models.Members, error) {
	members, err := e.members.ListMembers(ctx, e.cfg.Slack.Usergroup)
	if err != nil {
		return nil, fmt.Errorf("listing usergroup %s: %w", e.cfg.Slack.Usergroup, err)
	}
	if len(members) == 0 {
		return nil, fmt.Errorf("usergroup %s has no members", e.cfg.Slack.Usergroup)
	}
	logrus.WithFields(logrus.Fields{
		"usergroup": e.cfg.Slack.Usergroup,
		"members":   len(members),
	}).Info("👥 Usergroup loaded")
	for _, m := range members {
		logrus.WithFields(logrus.Fields{"name": m.Name, "id": m.ID}).Debug("  usergroup member")
	}
	return members, nil
}

func (e *Engine) loadSeries(ctx context.Context, role models.Role) (schedule.Series, error) {
	return e.loadSeriesFrom(ctx, role, e.today().Add(-historyWindow))
}

// loadSeriesFrom reads the role's events that end after from.
func (e *Engine) loadSeriesFrom(ctx context.Context, role models.Role, from time.Time) (schedule.Series, error) {
	events, err := e.calendar.ListEvents(ctx, e.cfg.Calendar.ID, from, time.Time{})
	if err != nil {
		return schedule.Series{}, fmt.Errorf("reading calendar: %w", err)
	}
	series := schedule.NewSeries(role, events)
	logrus.WithFields(logrus.Fields{
		teamlog.FieldRole: role,
		"events":          series.Len(),
	}).Info("📅 Calendar series loaded")
	for _, ev := range series.Events {
		logrus.WithFields(logrus.Fields{
			"summary": ev.Summary,
			"start":   ev.StartDate(),
			"end":     ev.EndDate(),
			"status":  ev.Status(e.today()),
		}).Debug("  role event")
	}
	return series, nil
}
