package rotate

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/daniloc96/team-roles/internal/models"
	"github.com/daniloc96/team-roles/internal/schedule"
)

// ResolveCurrentHolder returns who holds role today. The calendar wins: the
// holder of the most recent event that has started. Without such an event the
// snapshot's rotation cursor is used. The holder must still be in members.
func (e *Engine) ResolveCurrentHolder(ctx context.Context, role models.Role, state *models.RoleState, members models.Members) (models.Member, models.HolderSource, error) {
	series, err := e.loadSeries(ctx, role)
	if err != nil {
		return models.Member{}, "", err
	}
	return e.currentHolder(series, role, state, members)
}

func (e *Engine) currentHolder(series schedule.Series, role models.Role, state *models.RoleState, members models.Members) (models.Member, models.HolderSource, error) {
	if event, ok := series.Latest(e.today()); ok {
		holder, err := schedule.Holder(event, members)
		if err != nil {
			return models.Member{}, "", fmt.Errorf("holder of %q on %s: %w", event.Summary, event.StartDate(), err)
		}
		logrus.WithFields(logrus.Fields{
			"role":   role,
			"member": holder.Name,
			"start":  event.StartDate(),
		}).Debug("current holder taken from the calendar")
		return holder, models.SourceCalendar, nil
	}

	a, ok := state.Assignment(role)
	if !ok {
		return models.Member{}, "", fmt.Errorf("%w: %s", ErrNoAssignment, role)
	}
	holder, err := refresh(a.Cursor(), members)
	if err != nil {
		return models.Member{}, "", fmt.Errorf("snapshot holder of %s: %w", role, err)
	}
	logrus.WithFields(logrus.Fields{
		"role":   role,
		"member": holder.Name,
	}).Warn("⚠ No started event in the calendar, using the snapshot holder")
	return holder, models.SourceSnapshot, nil
}

// refresh looks m up in the current membership list, by ID when the snapshot
// recorded one and by name otherwise.
func refresh(m models.Member, members models.Members) (models.Member, error) {
	if m.ID != "" {
		return members.FindByID(m.ID)
	}
	return members.FindByName(m.Name)
}
