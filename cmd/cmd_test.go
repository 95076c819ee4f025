package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/daniloc96/team-roles/internal/config"
	"github.com/daniloc96/team-roles/internal/models"
	"github.com/daniloc96/team-roles/internal/rotate"
)

type fakeEngine struct {
	requests []rotate.Request
	inits    []rotate.InitOptions
	result   *models.RunResult
}

func (f *fakeEngine) Run(ctx context.Context, req rotate.Request) (*models.RunResult, error) {
	f.requests = append(f.requests, req)
	if f.result != nil {
		return f.result, nil
	}
	return models.NewRunResult(req.Action, req.Role, true), nil
}

func (f *fakeEngine) InitRoles(ctx context.Context, opts rotate.InitOptions) (*models.RoleState, error) {
	f.inits = append(f.inits, opts)
	state := models.NewRoleState()
	_ = state.Set(models.RoleSupportSteward, models.Overlapping{
		Current:  models.Member{ID: "U1", Name: "Alice"},
		Incoming: models.Member{ID: "U2", Name: "Bob"},
	})
	return state, nil
}

func (f *fakeEngine) ListMembers(ctx context.Context, usergroup string) (models.Members, error) {
	return models.Members{{ID: "U1", Name: "Alice"}, {ID: "U2", Name: "Bob"}}, nil
}

func setLocalEnv(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("AWS_LAMBDA_FUNCTION_NAME", "")
	t.Setenv("SLACK_BOT_TOKEN", "xoxb-test")
	t.Setenv("GEEKBOT_API_KEY", "gb-test")
	t.Setenv("CALENDAR_ID", "team@group.calendar.google.com")
	t.Setenv("GOOGLE_CREDENTIALS_FILE", "/tmp/creds.json")
}

func execute(t *testing.T, args ...string) (*fakeEngine, string, error) {
	t.Helper()
	setLocalEnv(t)

	engine := &fakeEngine{}
	original := newEngine
	t.Cleanup(func() { newEngine = original })
	SetEngineBuilder(func(ctx context.Context, cfg *config.Config) (Engine, error) {
		return engine, nil
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return engine, out.String(), err
}

func TestRotateCommand(t *testing.T) {
	engine, _, err := execute(t, "rotate", "support_steward")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	want := []rotate.Request{{Action: models.ActionRotate, Role: models.RoleSupportSteward}}
	if diff := cmp.Diff(want, engine.requests); diff != "" {
		t.Fatalf("requests mismatch (-want +got):\n%s", diff)
	}
}

func TestRotateCommandRejectsUnknownRole(t *testing.T) {
	engine, _, err := execute(t, "rotate", "janitor")
	if err == nil || !strings.Contains(err.Error(), "unknown role") {
		t.Fatalf("expected unknown role error, got %v", err)
	}
	if len(engine.requests) != 0 {
		t.Fatalf("expected no run, got %#v", engine.requests)
	}
}

func TestCreateBulkCommand(t *testing.T) {
	engine, _, err := execute(t, "events", "create-bulk", "support-triager", "-n", "4", "-d", "2026-11-04", "-m", "Alice")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	want := rotate.BulkOptions{Count: 4, Reference: time.Date(2026, 11, 4, 0, 0, 0, 0, time.UTC), Member: "Alice"}
	if len(engine.requests) != 1 {
		t.Fatalf("expected one run, got %d", len(engine.requests))
	}
	if diff := cmp.Diff(want, engine.requests[0].Bulk); diff != "" {
		t.Fatalf("bulk options mismatch (-want +got):\n%s", diff)
	}
}

func TestBulkOptionsAcceptsEitherHalf(t *testing.T) {
	opts, err := bulkOptions(0, "2026-11-04", "")
	if err != nil || opts.Reference.IsZero() || opts.Member != "" {
		t.Fatalf("expected a date-only plan, got %#v (%v)", opts, err)
	}
	opts, err = bulkOptions(0, "", "Alice")
	if err != nil || !opts.Reference.IsZero() || opts.Member != "Alice" {
		t.Fatalf("expected a member-only plan, got %#v (%v)", opts, err)
	}
	if _, err := bulkOptions(-1, "", ""); err == nil {
		t.Fatalf("expected error for negative count")
	}
	if _, err := bulkOptions(0, "04/11/2026", "Alice"); err == nil {
		t.Fatalf("expected error for malformed date")
	}
}

func TestDeleteCommandParsesDate(t *testing.T) {
	engine, _, err := execute(t, "events", "delete", "meeting-facilitator", "--date", "2026-12-01")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	got := engine.requests[0]
	if got.Action != models.ActionDelete || !got.Reference.Equal(time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected request %#v", got)
	}
}

func TestInitOptionsSplitsOverlappingHolders(t *testing.T) {
	steward := "Alice, Bob"
	empty := ""
	opts, err := initOptions("Dana", map[models.Role]*string{
		models.RoleSupportSteward:     &steward,
		models.RoleMeetingFacilitator: &empty,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	want := rotate.InitOptions{
		Manager: "Dana",
		Holders: map[models.Role][]string{models.RoleSupportSteward: {"Alice", "Bob"}},
	}
	if diff := cmp.Diff(want, opts); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}

	if _, err := initOptions("", map[models.Role]*string{}); err == nil {
		t.Fatalf("expected error without holders")
	}
}

func TestMembersCommandPrintsOrder(t *testing.T) {
	_, out, err := execute(t, "members")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(out, "1. Alice (U1)") || !strings.Contains(out, "2. Bob (U2)") {
		t.Fatalf("unexpected output %q", out)
	}
}
