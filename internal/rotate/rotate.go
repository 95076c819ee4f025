package rotate

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/daniloc96/team-roles/internal/models"
	"github.com/daniloc96/team-roles/internal/rotation"
	"github.com/daniloc96/team-roles/internal/schedule"
	"github.com/daniloc96/team-roles/internal/snapshot"
)

// Rotate hands role to its next holder and saves the snapshot.
//
// The next holder is whoever holds the first calendar event starting after
// today. With no such event the rotation advances one member from the current
// holder. Overlapping roles shift: the incoming member becomes current and the
// next holder comes in.
func (e *Engine) Rotate(ctx context.Context, role models.Role) (*models.Rotation, error) {
	members, err := e.listMembers(ctx)
	if err != nil {
		return nil, err
	}

	state, err := e.store.Load(ctx)
	if err != nil {
		if errors.Is(err, snapshot.ErrNotFound) {
			return nil, fmt.Errorf("no role snapshot yet, run `roles init` first: %w", err)
		}
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}
	logrus.WithField("version", state.Version).Info("📂 Snapshot loaded")

	if err := fillManagerID(state, members); err != nil {
		return nil, err
	}

	series, err := e.loadSeries(ctx, role)
	if err != nil {
		return nil, err
	}

	current, _, currentErr := e.currentHolder(series, role, state, members)

	var (
		next   models.Member
		source models.HolderSource
	)
	if event, ok := series.NextAfter(e.today()); ok {
		next, err = schedule.Holder(event, members)
		if err != nil {
			return nil, fmt.Errorf("holder of upcoming event %q: %w", event.Summary, err)
		}
		source = models.SourceCalendar
	} else {
		if currentErr != nil {
			return nil, currentErr
		}
		logrus.Warn("⚠ No upcoming event in the calendar, falling back to the rotation order")
		next, err = rotation.Advance(current, members)
		if err != nil {
			return nil, err
		}
		source = models.SourceRotation
	}

	rot := &models.Rotation{Next: next, Source: source}
	switch role.Kind() {
	case models.KindOverlapping:
		var outgoing models.Member
		if a, ok := state.Assignment(role); ok {
			o, isOverlapping := a.(models.Overlapping)
			if !isOverlapping {
				return nil, fmt.Errorf("%s snapshot entry has no current and incoming member", role.Title())
			}
			outgoing, err = refresh(o.Incoming, members)
			if err != nil {
				return nil, fmt.Errorf("incoming %s in the snapshot: %w", role.Title(), err)
			}
		} else if currentErr == nil {
			outgoing = current
		} else {
			return nil, currentErr
		}
		rot.Previous = outgoing
		buddy := outgoing
		rot.Buddy = &buddy
		if next.ID != outgoing.ID {
			err = state.Set(role, models.Overlapping{Current: outgoing, Incoming: next})
		}
	default:
		if a, ok := state.Assignment(role); ok {
			rot.Previous = a.Cursor()
		} else if currentErr == nil {
			rot.Previous = current
		}
		if next.ID != rot.Previous.ID {
			err = state.Set(role, models.Simple{Holder: next})
		}
	}
	if err != nil {
		return nil, err
	}

	if next.ID == rot.Previous.ID {
		rot.Unchanged = true
		rot.Buddy = nil
		logrus.WithFields(logrus.Fields{
			"role":   role,
			"holder": next.Name,
		}).Warn("⚠ Next holder already holds the role, the snapshot is left as is")
		return rot, nil
	}

	fields := logrus.Fields{
		"role":     role,
		"previous": rot.Previous.Name,
		"next":     next.Name,
		"source":   source,
	}
	if rot.Buddy != nil {
		fields["buddy"] = rot.Buddy.Name
	}
	logrus.WithFields(fields).Infof("🔁 Next %s: %s", role.Title(), next.Name)

	if e.dryRun() {
		logrus.WithFields(fields).Info("  [DRY RUN] would save the snapshot")
		return rot, nil
	}

	if err := e.store.Save(ctx, state); err != nil {
		return rot, fmt.Errorf("saving snapshot: %w", err)
	}
	logrus.WithField("version", state.Version).Info("💾 Snapshot saved")

	if e.publisher != nil {
		msg := fmt.Sprintf("Rotate %s to %s", role.Title(), next.FirstName())
		if err := e.publisher.Publish(ctx, state, msg); err != nil {
			logrus.WithError(err).Warn("⚠ Publishing the snapshot failed (non-fatal, the snapshot is saved)")
		}
	}

	return rot, nil
}

// fillManagerID resolves the standup manager's user ID from the usergroup
// when the snapshot only records a name.
func fillManagerID(state *models.RoleState, members models.Members) error {
	manager := state.StandupManager
	if manager.ID != "" || manager.Name == "" {
		return nil
	}
	found, err := members.FindByName(manager.Name)
	if err != nil {
		return fmt.Errorf("standup manager: %w", err)
	}
	state.StandupManager.ID = found.ID
	logrus.WithField("manager", found.Name).Info("Standup manager ID filled in from the usergroup")
	return nil
}
