package rotate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/daniloc96/team-roles/internal/models"
	"github.com/daniloc96/team-roles/internal/rotation"
	"github.com/daniloc96/team-roles/internal/schedule"
	"github.com/daniloc96/team-roles/internal/snapshot"
)

// BulkOptions controls bulk event generation. Member is the holder the series
// continues from and the first generated event starts on Reference. Either
// may be left empty.
type BulkOptions struct {
	Count     int
	Reference time.Time
	Member    string
}

// AppendNextEvent creates the event following the last one of the role's
// series, held by holder.
func (e *Engine) AppendNextEvent(ctx context.Context, role models.Role, holder models.Member) (*models.CalendarEvent, error) {
	series, err := e.loadSeries(ctx, role)
	if err != nil {
		return nil, err
	}
	last, ok := series.Last()
	if !ok {
		return nil, fmt.Errorf("%w: %s", schedule.ErrNoSeries, role)
	}
	return e.appendAfter(ctx, role, last, holder)
}

// CreateNext extends the series by one event for the member after the holder
// of its last event.
func (e *Engine) CreateNext(ctx context.Context, role models.Role) (*models.CalendarEvent, error) {
	members, err := e.listMembers(ctx)
	if err != nil {
		return nil, err
	}
	series, err := e.loadSeries(ctx, role)
	if err != nil {
		return nil, err
	}
	last, ok := series.Last()
	if !ok {
		return nil, fmt.Errorf("%w: %s", schedule.ErrNoSeries, role)
	}
	previous, err := schedule.Holder(last, members)
	if err != nil {
		return nil, fmt.Errorf("holder of last event %q: %w", last.Summary, err)
	}
	next, err := rotation.Advance(previous, members)
	if err != nil {
		return nil, err
	}
	return e.appendAfter(ctx, role, last, next)
}

func (e *Engine) appendAfter(ctx context.Context, role models.Role, last models.CalendarEvent, holder models.Member) (*models.CalendarEvent, error) {
	c, err := schedule.CycleFor(role)
	if err != nil {
		return nil, err
	}
	start, end := schedule.EventDates(c, schedule.NextStart(c, last), 0)
	event := schedule.NewEvent(role, holder, start, end)
	if err := e.createEvents(ctx, []models.CalendarEvent{event}); err != nil {
		return nil, err
	}
	return &event, nil
}

// PlanBulk computes a series of events without writing them.
//
// Each half of the starting point is filled independently. The previous
// holder is Member, else the holder of the last calendar event, else the
// snapshot cursor. The first start is Reference aligned to the cycle, else
// the start after the last calendar event, else the role's default reference.
func (e *Engine) PlanBulk(ctx context.Context, role models.Role, opts BulkOptions) ([]models.CalendarEvent, error) {
	c, err := schedule.CycleFor(role)
	if err != nil {
		return nil, err
	}
	count := opts.Count
	if count == 0 {
		count = c.EventsPerYear
	}
	if count < 0 {
		return nil, fmt.Errorf("event count must be positive, got %d", count)
	}

	members, err := e.listMembers(ctx)
	if err != nil {
		return nil, err
	}

	var (
		first    time.Time
		previous models.Member
		last     models.CalendarEvent
		hasLast  bool
	)
	if opts.Member != "" {
		previous, err = members.FindByName(opts.Member)
		if err != nil {
			return nil, err
		}
	}
	if !opts.Reference.IsZero() {
		first = schedule.AlignReference(c, opts.Reference)
	}

	if opts.Member == "" || opts.Reference.IsZero() {
		series, err := e.loadSeries(ctx, role)
		if err != nil {
			return nil, err
		}
		last, hasLast = series.Last()
	}

	if opts.Member == "" {
		if hasLast {
			previous, err = schedule.Holder(last, members)
			if err != nil {
				return nil, fmt.Errorf("holder of last event %q: %w", last.Summary, err)
			}
		} else {
			previous, err = e.snapshotCursor(ctx, role, members)
			if err != nil {
				return nil, err
			}
			logrus.WithFields(logrus.Fields{
				"role":   role,
				"member": previous.Name,
			}).Warn("⚠ No events in the calendar and no member given; continuing from the snapshot holder. Check the plan before creating it")
		}
	}

	if opts.Reference.IsZero() {
		if hasLast {
			first = schedule.NextStart(c, last)
		} else {
			first = schedule.DefaultReference(c, e.today())
			logrus.WithFields(logrus.Fields{
				"role":      role,
				"reference": first.Format(models.DateLayout),
			}).Warn("⚠ No events in the calendar and no reference date given; using the default reference. Check the plan before creating it")
		}
	}

	return schedule.Plan(role, first, previous, members, count)
}

func (e *Engine) snapshotCursor(ctx context.Context, role models.Role, members models.Members) (models.Member, error) {
	state, err := e.store.Load(ctx)
	if err != nil {
		if errors.Is(err, snapshot.ErrNotFound) {
			return models.Member{}, fmt.Errorf("calendar is empty and no snapshot exists; pass a member: %w", err)
		}
		return models.Member{}, err
	}
	a, ok := state.Assignment(role)
	if !ok {
		return models.Member{}, fmt.Errorf("%w: %s", ErrNoAssignment, role)
	}
	return refresh(a.Cursor(), members)
}

// CreateBulk plans a series and creates its events.
func (e *Engine) CreateBulk(ctx context.Context, role models.Role, opts BulkOptions) ([]models.CalendarEvent, error) {
	events, err := e.PlanBulk(ctx, role, opts)
	if err != nil {
		return nil, err
	}
	if err := e.createEvents(ctx, events); err != nil {
		return events, err
	}
	return events, nil
}

func (e *Engine) createEvents(ctx context.Context, events []models.CalendarEvent) error {
	for i := range events {
		fields := logrus.Fields{
			"summary": events[i].Summary,
			"start":   events[i].StartDate(),
			"end":     events[i].EndDate(),
		}
		if e.dryRun() {
			logrus.WithFields(fields).Info("  [DRY RUN] would create event")
			continue
		}
		id, err := e.calendar.CreateEvent(ctx, e.cfg.Calendar.ID, events[i])
		if err != nil {
			return fmt.Errorf("creating %q on %s: %w", events[i].Summary, events[i].StartDate(), err)
		}
		events[i].ID = id
		logrus.WithFields(fields).Info("🗓️  Created event")
	}
	return nil
}

// DeleteAfter removes every event of role starting strictly after ref. A zero
// ref means today. The removed events are returned.
func (e *Engine) DeleteAfter(ctx context.Context, role models.Role, ref time.Time) ([]models.CalendarEvent, error) {
	if ref.IsZero() {
		ref = e.today()
	}
	// Events starting after ref all end after it.
	from := e.today().Add(-historyWindow)
	if ref.Before(from) {
		from = schedule.Day(ref)
	}
	series, err := e.loadSeriesFrom(ctx, role, from)
	if err != nil {
		return nil, err
	}

	doomed := series.After(ref)
	logrus.WithFields(logrus.Fields{
		"role":      role,
		"reference": schedule.Day(ref).Format(models.DateLayout),
		"events":    len(doomed),
	}).Info("🗑️  Deleting events after the reference date")

	var deleted []models.CalendarEvent
	for _, ev := range doomed {
		fields := logrus.Fields{"summary": ev.Summary, "start": ev.StartDate()}
		if e.dryRun() {
			logrus.WithFields(fields).Info("  [DRY RUN] would delete event")
			deleted = append(deleted, ev)
			continue
		}
		if err := e.calendar.DeleteEvent(ctx, e.cfg.Calendar.ID, ev.ID); err != nil {
			return deleted, fmt.Errorf("deleting %q on %s: %w", ev.Summary, ev.StartDate(), err)
		}
		deleted = append(deleted, ev)
		logrus.WithFields(fields).Info("  Deleted event")
	}
	return deleted, nil
}
