package rotate

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/daniloc96/team-roles/internal/models"
	"github.com/daniloc96/team-roles/internal/snapshot"
)

// InitOptions names the members of a fresh snapshot. Simple roles take one
// name; overlapping roles take the current and the incoming member.
type InitOptions struct {
	Manager string
	Holders map[models.Role][]string
}

// InitRoles replaces the snapshot with the given holders, resolved against
// the usergroup. The stored version is carried over so the write does not
// conflict.
func (e *Engine) InitRoles(ctx context.Context, opts InitOptions) (*models.RoleState, error) {
	if len(opts.Holders) == 0 {
		return nil, fmt.Errorf("at least one role holder is required")
	}

	members, err := e.listMembers(ctx)
	if err != nil {
		return nil, err
	}

	state := models.NewRoleState()
	if opts.Manager != "" {
		state.StandupManager, err = members.FindByName(opts.Manager)
		if err != nil {
			return nil, fmt.Errorf("standup manager: %w", err)
		}
	}

	for _, role := range models.Roles {
		names, ok := opts.Holders[role]
		if !ok {
			continue
		}
		resolved := make([]models.Member, 0, len(names))
		for _, name := range names {
			m, err := members.FindByName(name)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", role.Title(), err)
			}
			resolved = append(resolved, m)
		}

		var a models.Assignment
		switch role.Kind() {
		case models.KindOverlapping:
			if len(resolved) != 2 {
				return nil, fmt.Errorf("%s needs a current and an incoming member, got %d", role.Title(), len(resolved))
			}
			a = models.Overlapping{Current: resolved[0], Incoming: resolved[1]}
		default:
			if len(resolved) != 1 {
				return nil, fmt.Errorf("%s needs exactly one member, got %d", role.Title(), len(resolved))
			}
			a = models.Simple{Holder: resolved[0]}
		}
		if err := state.Set(role, a); err != nil {
			return nil, err
		}
		logrus.WithFields(logrus.Fields{"role": role, "member": a.Cursor().Name}).Info("Role holder set")
	}

	existing, err := e.store.Load(ctx)
	switch {
	case err == nil:
		state.Version = existing.Version
	case errors.Is(err, snapshot.ErrNotFound):
	default:
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}

	if e.dryRun() {
		logrus.Info("  [DRY RUN] would write the new snapshot")
		return state, nil
	}
	if err := e.store.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("saving snapshot: %w", err)
	}
	logrus.WithField("version", state.Version).Info("💾 Snapshot saved")

	if e.publisher != nil {
		if err := e.publisher.Publish(ctx, state, "Initialise team roles"); err != nil {
			logrus.WithError(err).Warn("⚠ Publishing the snapshot failed (non-fatal, the snapshot is saved)")
		}
	}
	return state, nil
}

// ListMembers returns the members of usergroup in rotation order. An empty
// usergroup uses the configured one.
func (e *Engine) ListMembers(ctx context.Context, usergroup string) (models.Members, error) {
	if usergroup == "" {
		usergroup = e.cfg.Slack.Usergroup
	}
	members, err := e.members.ListMembers(ctx, usergroup)
	if err != nil {
		return nil, fmt.Errorf("listing usergroup %s: %w", usergroup, err)
	}
	return members, nil
}
