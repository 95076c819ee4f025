package slack

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	goslack "github.com/slack-go/slack"

	"github.com/daniloc96/team-roles/internal/models"
)

// ErrUsergroupNotFound is returned when no usergroup has the requested handle.
var ErrUsergroupNotFound = errors.New("usergroup not found")

// Usergroup is the subset of a Slack usergroup the client uses.
type Usergroup struct {
	ID     string
	Handle string
	Name   string
}

// Profile is the subset of a Slack user the client uses.
type Profile struct {
	ID          string
	DisplayName string
	RealName    string
	Deleted     bool
}

type directory interface {
	Usergroups(ctx context.Context) ([]Usergroup, error)
	UsergroupMembers(ctx context.Context, usergroupID string) ([]string, error)
	User(ctx context.Context, userID string) (*Profile, error)
}

// Client resolves usergroup membership through the Slack Web API.
type Client struct {
	dir directory
}

// NewClient creates a Slack client authenticated with a bot token.
func NewClient(token string) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("slack bot token is required")
	}
	return &Client{dir: &webAPI{api: goslack.New(token)}}, nil
}

// ListMembers returns the members of the usergroup with the given handle,
// keyed by display name (real name when no display name is set) and sorted.
func (c *Client) ListMembers(ctx context.Context, usergroup string) (models.Members, error) {
	if usergroup == "" {
		return nil, fmt.Errorf("usergroup is required")
	}

	id, err := c.usergroupID(ctx, usergroup)
	if err != nil {
		return nil, err
	}

	logrus.WithField("usergroup", usergroup).Debug("retrieving usergroup members")

	var userIDs []string
	err = retryOnRateLimit(ctx, func() error {
		var listErr error
		userIDs, listErr = c.dir.UsergroupMembers(ctx, id)
		return listErr
	})
	if err != nil {
		return nil, fmt.Errorf("listing members of %s: %w", usergroup, err)
	}

	members := make([]models.Member, 0, len(userIDs))
	for _, userID := range userIDs {
		var profile *Profile
		err := retryOnRateLimit(ctx, func() error {
			var userErr error
			profile, userErr = c.dir.User(ctx, userID)
			return userErr
		})
		if err != nil {
			return nil, fmt.Errorf("looking up user %s: %w", userID, err)
		}
		if profile.Deleted {
			continue
		}
		name := profile.DisplayName
		if name == "" {
			name = profile.RealName
		}
		members = append(members, models.Member{Name: name, ID: userID})
	}

	return models.NewMembers(members), nil
}

func (c *Client) usergroupID(ctx context.Context, handle string) (string, error) {
	var groups []Usergroup
	err := retryOnRateLimit(ctx, func() error {
		var listErr error
		groups, listErr = c.dir.Usergroups(ctx)
		return listErr
	})
	if err != nil {
		return "", fmt.Errorf("listing usergroups: %w", err)
	}
	for _, g := range groups {
		if g.Handle == handle || g.ID == handle {
			return g.ID, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUsergroupNotFound, handle)
}

func retryOnRateLimit(ctx context.Context, fn func() error) error {
	const maxRetries = 3
	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		var rateErr *goslack.RateLimitedError
		if !errors.As(err, &rateErr) || attempt == maxRetries {
			return err
		}
		wait := rateErr.RetryAfter
		if wait <= 0 || wait > 30*time.Second {
			wait = time.Second
		}
		logrus.WithField("retry_after", wait).Warn("⚠ Slack rate limit hit, backing off")
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

type webAPI struct {
	api *goslack.Client
}

func (w *webAPI) Usergroups(ctx context.Context) ([]Usergroup, error) {
	groups, err := w.api.GetUserGroupsContext(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Usergroup, 0, len(groups))
	for _, g := range groups {
		out = append(out, Usergroup{ID: g.ID, Handle: g.Handle, Name: g.Name})
	}
	return out, nil
}

func (w *webAPI) UsergroupMembers(ctx context.Context, usergroupID string) ([]string, error) {
	return w.api.GetUserGroupMembersContext(ctx, usergroupID)
}

func (w *webAPI) User(ctx context.Context, userID string) (*Profile, error) {
	user, err := w.api.GetUserInfoContext(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Profile{
		ID:          user.ID,
		DisplayName: user.Profile.DisplayNameNormalized,
		RealName:    user.Profile.RealNameNormalized,
		Deleted:     user.Deleted,
	}, nil
}
