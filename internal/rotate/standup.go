package rotate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/sirupsen/logrus"

	"github.com/daniloc96/team-roles/internal/models"
	"github.com/daniloc96/team-roles/internal/snapshot"
)

const (
	standupTime     = "10:00:00"
	standupTimezone = "user_local"
	standupWaitTime = 10
)

var questions = map[models.Role]*template.Template{
	models.RoleMeetingFacilitator: template.Must(template.New("meeting-facilitator").Parse(
		`{{.Name}} - it is your turn to facilitate this month's team meeting!{{if .Link}} The meeting date is on the team calendar:
{{.Link}}{{end}}

Reply 'ok' to acknowledge the role. If you can't take it on right now, please arrange cover with another team member, and tag them here if you've already swapped.

As meeting facilitator you are expected to:
:white_check_mark: Collect agenda items in the meeting notes (linked from the calendar event)
:white_check_mark: Facilitate the meeting
:white_check_mark: Open follow-up issues or discussions and link them from the notes
:white_check_mark: Move the notes into the team compass`)),
	models.RoleSupportSteward: template.Must(template.New("support-steward").Parse(
		`{{.Name}} - it is your turn to be the support steward!{{if .Link}} Keep an eye on incoming tickets here:

{{.Link}}{{end}}

Reply 'ok' to acknowledge the role. If you'll be away for much of your rotation, please arrange cover with another team member, and tag them here if you've already swapped.{{if .Buddy}}

Your support steward buddy is: {{.Buddy}}{{end}}`)),
	models.RoleSupportTriager: template.Must(template.New("support-triager").Parse(
		`{{.Name}} - it is your turn to be the support triager!{{if .Link}} Keep an eye on incoming tickets here:

{{.Link}}{{end}}

Reply 'ok' to acknowledge the role. If you'll be away for much of your rotation, please arrange cover with another team member, and tag them here if you've already swapped.{{if .Buddy}}

Your support triager buddy is: {{.Buddy}}{{end}}`)),
}

type questionData struct {
	Name  string
	Buddy string
	Link  string
}

// Question renders the standup prompt for holder. buddy is the outgoing
// member of an overlapping role and may be zero.
func Question(role models.Role, holder, buddy models.Member, link string) (string, error) {
	tmpl, ok := questions[role]
	if !ok {
		return "", fmt.Errorf("no standup question for role %q", role)
	}
	var b strings.Builder
	data := questionData{Name: holder.FirstName(), Buddy: buddy.FirstName(), Link: link}
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("rendering %s question: %w", role, err)
	}
	return b.String(), nil
}

// BuildStandup describes the standup that prompts the holder of role in state.
func (e *Engine) BuildStandup(role models.Role, state *models.RoleState) (models.Standup, error) {
	a, ok := state.Assignment(role)
	if !ok {
		return models.Standup{}, fmt.Errorf("%w: %s", ErrNoAssignment, role)
	}

	holder := a.Cursor()
	var buddy models.Member
	if o, ok := a.(models.Overlapping); ok {
		buddy = o.Current
	}
	if holder.ID == "" {
		return models.Standup{}, fmt.Errorf("%s holder %s has no user ID", role.Title(), holder.Name)
	}

	cfg := e.cfg.Standup(role)
	question, err := Question(role, holder, buddy, cfg.Link)
	if err != nil {
		return models.Standup{}, err
	}

	return models.Standup{
		Name:     cfg.Name,
		Channel:  cfg.Channel,
		Day:      cfg.Day,
		Time:     standupTime,
		Timezone: standupTimezone,
		WaitTime: standupWaitTime,
		Users:    models.Participants(holder, state.StandupManager),
		Question: question,
	}, nil
}

// Standup creates or updates the standup that hands role over to its holder
// in the snapshot.
func (e *Engine) Standup(ctx context.Context, role models.Role) (*models.StandupResult, error) {
	state, err := e.store.Load(ctx)
	if err != nil {
		if errors.Is(err, snapshot.ErrNotFound) {
			return nil, fmt.Errorf("no role snapshot yet, run `roles init` first: %w", err)
		}
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}

	if state.StandupManager.ID == "" && state.StandupManager.Name != "" {
		members, err := e.listMembers(ctx)
		if err != nil {
			return nil, err
		}
		if err := fillManagerID(state, members); err != nil {
			return nil, err
		}
	}

	standup, err := e.BuildStandup(role, state)
	if err != nil {
		return nil, err
	}

	fields := logrus.Fields{
		"role":    role,
		"standup": standup.Name,
		"channel": standup.Channel,
		"day":     standup.Day,
		"users":   standup.Users,
	}
	logrus.WithFields(fields).Info("📣 Standup prepared")
	logrus.WithField("question", standup.Question).Debug("  standup question")

	if e.dryRun() {
		logrus.WithFields(fields).Info("  [DRY RUN] would create or update the standup")
		return &models.StandupResult{Name: standup.Name, Users: standup.Users, Channel: standup.Channel}, nil
	}

	result, err := e.standups.UpsertStandup(ctx, standup)
	if err != nil {
		return nil, fmt.Errorf("upserting standup %s: %w", standup.Name, err)
	}
	logrus.WithFields(fields).WithField("created", result.Created).Info("✅ Standup saved")
	return result, nil
}
