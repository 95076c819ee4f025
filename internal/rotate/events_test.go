package rotate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/daniloc96/team-roles/internal/models"
	"github.com/daniloc96/team-roles/internal/schedule"
)

type span struct {
	Holder string
	Start  string
	End    string
}

func spans(events []models.CalendarEvent) []span {
	out := make([]span, 0, len(events))
	for _, e := range events {
		out = append(out, span{Holder: e.HolderName, Start: e.StartDate(), End: e.EndDate()})
	}
	return out
}

func TestAppendNextEventContinuesOverlappingSeries(t *testing.T) {
	f := newFixture(t, false, nil,
		event("e1", models.RoleSupportSteward, alice, "2026-10-07"),
		event("e2", models.RoleSupportSteward, bob, "2026-10-14"),
	)

	created, err := f.engine.AppendNextEvent(context.Background(), models.RoleSupportSteward, carol)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	want := span{Holder: "Carol", Start: "2026-10-21", End: "2026-11-04"}
	if diff := cmp.Diff(want, spans([]models.CalendarEvent{*created})[0]); diff != "" {
		t.Fatalf("unexpected event (-want +got):\n%s", diff)
	}
	if created.ID == "" || len(f.calendar.Created) != 1 {
		t.Fatalf("expected the event to be created in the calendar")
	}
	if f.calendar.Created[0].Summary != "Support Steward: Carol" || f.calendar.Created[0].HolderID != carol.ID {
		t.Fatalf("unexpected created event %#v", f.calendar.Created[0])
	}
}

func TestAppendNextEventWithoutSeries(t *testing.T) {
	f := newFixture(t, false, nil, event("e1", models.RoleMeetingFacilitator, alice, "2026-10-01"))
	_, err := f.engine.AppendNextEvent(context.Background(), models.RoleSupportTriager, carol)
	if !errors.Is(err, schedule.ErrNoSeries) {
		t.Fatalf("expected ErrNoSeries, got %v", err)
	}
}

func TestCreateNextAdvancesFromLastHolder(t *testing.T) {
	f := newFixture(t, false, nil,
		event("e1", models.RoleMeetingFacilitator, bob, "2026-10-01"),
		event("e2", models.RoleMeetingFacilitator, carol, "2026-11-01"),
	)

	created, err := f.engine.CreateNext(context.Background(), models.RoleMeetingFacilitator)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	want := span{Holder: "Dana", Start: "2026-12-01", End: "2027-01-01"}
	if diff := cmp.Diff(want, spans([]models.CalendarEvent{*created})[0]); diff != "" {
		t.Fatalf("unexpected event (-want +got):\n%s", diff)
	}
}

func TestCreateNextDryRun(t *testing.T) {
	f := newFixture(t, true, nil, event("e1", models.RoleMeetingFacilitator, dana, "2026-10-01"))

	created, err := f.engine.CreateNext(context.Background(), models.RoleMeetingFacilitator)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if created.HolderID != alice.ID || len(f.calendar.Created) != 0 {
		t.Fatalf("expected Alice planned and nothing created, got %#v", created)
	}
}

func TestPlanBulkMemberOnlyUsesDefaultReference(t *testing.T) {
	f := newFixture(t, false, nil)

	events, err := f.engine.PlanBulk(context.Background(), models.RoleSupportSteward, BulkOptions{Count: 2, Member: "Bob"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	want := []span{
		{Holder: "Carol", Start: "2026-10-21", End: "2026-11-04"},
		{Holder: "Dana", Start: "2026-10-28", End: "2026-11-11"},
	}
	if diff := cmp.Diff(want, spans(events)); diff != "" {
		t.Fatalf("unexpected plan (-want +got):\n%s", diff)
	}
}

func TestPlanBulkMemberOnlyContinuesCalendarDates(t *testing.T) {
	f := newFixture(t, false, nil,
		event("e1", models.RoleMeetingFacilitator, bob, "2026-10-01"),
		event("e2", models.RoleMeetingFacilitator, carol, "2026-11-01"),
	)

	events, err := f.engine.PlanBulk(context.Background(), models.RoleMeetingFacilitator, BulkOptions{Count: 1, Member: "Alice"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	want := []span{{Holder: "Bob", Start: "2026-12-01", End: "2027-01-01"}}
	if diff := cmp.Diff(want, spans(events)); diff != "" {
		t.Fatalf("unexpected plan (-want +got):\n%s", diff)
	}
}

func TestPlanBulkReferenceOnlyContinuesLastHolder(t *testing.T) {
	f := newFixture(t, false, nil,
		event("e1", models.RoleSupportTriager, alice, "2026-10-07"),
		event("e2", models.RoleSupportTriager, bob, "2026-10-14"),
	)

	events, err := f.engine.PlanBulk(context.Background(), models.RoleSupportTriager, BulkOptions{Count: 2, Reference: date("2026-11-02")})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	want := []span{
		{Holder: "Carol", Start: "2026-11-04", End: "2026-11-18"},
		{Holder: "Dana", Start: "2026-11-11", End: "2026-11-25"},
	}
	if diff := cmp.Diff(want, spans(events)); diff != "" {
		t.Fatalf("unexpected plan (-want +got):\n%s", diff)
	}
}

func TestPlanBulkReferenceOnlyEmptyCalendarUsesSnapshot(t *testing.T) {
	state := stateWith(t, models.RoleMeetingFacilitator, models.Simple{Holder: alice})
	f := newFixture(t, false, state)

	events, err := f.engine.PlanBulk(context.Background(), models.RoleMeetingFacilitator, BulkOptions{Count: 1, Reference: date("2027-02-10")})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	want := []span{{Holder: "Bob", Start: "2027-02-01", End: "2027-03-01"}}
	if diff := cmp.Diff(want, spans(events)); diff != "" {
		t.Fatalf("unexpected plan (-want +got):\n%s", diff)
	}
}

func TestPlanBulkFromReferenceAlignsToWednesday(t *testing.T) {
	f := newFixture(t, false, nil)

	events, err := f.engine.PlanBulk(context.Background(), models.RoleSupportSteward, BulkOptions{
		Count:     3,
		Reference: date("2026-10-19"),
		Member:    "alice",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	want := []span{
		{Holder: "Bob", Start: "2026-10-21", End: "2026-11-04"},
		{Holder: "Carol", Start: "2026-10-28", End: "2026-11-11"},
		{Holder: "Dana", Start: "2026-11-04", End: "2026-11-18"},
	}
	if diff := cmp.Diff(want, spans(events)); diff != "" {
		t.Fatalf("unexpected plan (-want +got):\n%s", diff)
	}
}

func TestPlanBulkContinuesCalendar(t *testing.T) {
	f := newFixture(t, false, nil,
		event("e1", models.RoleSupportTriager, alice, "2026-10-07"),
		event("e2", models.RoleSupportTriager, bob, "2026-10-14"),
	)

	events, err := f.engine.PlanBulk(context.Background(), models.RoleSupportTriager, BulkOptions{Count: 2})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	want := []span{
		{Holder: "Carol", Start: "2026-10-21", End: "2026-11-04"},
		{Holder: "Dana", Start: "2026-10-28", End: "2026-11-11"},
	}
	if diff := cmp.Diff(want, spans(events)); diff != "" {
		t.Fatalf("unexpected plan (-want +got):\n%s", diff)
	}
}

func TestPlanBulkEmptyCalendarUsesSnapshot(t *testing.T) {
	state := stateWith(t, models.RoleMeetingFacilitator, models.Simple{Holder: alice})
	f := newFixture(t, false, state)

	events, err := f.engine.PlanBulk(context.Background(), models.RoleMeetingFacilitator, BulkOptions{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(events) != 12 {
		t.Fatalf("expected a year of monthly events, got %d", len(events))
	}
	first := spans(events[:1])[0]
	if diff := cmp.Diff(span{Holder: "Bob", Start: "2026-11-01", End: "2026-12-01"}, first); diff != "" {
		t.Fatalf("unexpected first event (-want +got):\n%s", diff)
	}
	if events[3].HolderID != alice.ID {
		t.Fatalf("expected the rotation to wrap back to Alice on the fourth event, got %s", events[3].HolderName)
	}
}

func TestPlanBulkEmptyCalendarWithoutSnapshot(t *testing.T) {
	f := newFixture(t, false, nil)
	if _, err := f.engine.PlanBulk(context.Background(), models.RoleMeetingFacilitator, BulkOptions{}); err == nil {
		t.Fatalf("expected error with an empty calendar and no snapshot")
	}
}

func TestCreateBulkCreatesEvents(t *testing.T) {
	f := newFixture(t, false, nil)

	events, err := f.engine.CreateBulk(context.Background(), models.RoleMeetingFacilitator, BulkOptions{
		Count:     2,
		Reference: date("2026-12-15"),
		Member:    "Dana",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(f.calendar.Created) != 2 || events[0].ID == "" {
		t.Fatalf("expected two created events with IDs, got %#v", f.calendar.Created)
	}
	if events[0].StartDate() != "2026-12-01" || events[0].HolderID != alice.ID {
		t.Fatalf("expected Alice from the 1st of the reference month, got %#v", events[0])
	}
}

func TestDeleteAfterIsExclusiveOfReference(t *testing.T) {
	before := event("before", models.RoleSupportSteward, alice, "2026-10-18")
	on := event("on", models.RoleSupportSteward, bob, "2026-10-19")
	after := event("after", models.RoleSupportSteward, carol, "2026-10-20")
	other := event("other", models.RoleMeetingFacilitator, dana, "2026-11-01")
	f := newFixture(t, false, nil, before, on, after, other)

	deleted, err := f.engine.DeleteAfter(context.Background(), models.RoleSupportSteward, date("2026-10-19"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if diff := cmp.Diff([]string{"after"}, f.calendar.Deleted); diff != "" {
		t.Fatalf("unexpected deletions (-want +got):\n%s", diff)
	}
	if len(deleted) != 1 || deleted[0].ID != "after" {
		t.Fatalf("unexpected deleted events %#v", deleted)
	}
}

func TestDeleteAfterDefaultsToTodayAndHonoursDryRun(t *testing.T) {
	f := newFixture(t, true, nil,
		event("past", models.RoleMeetingFacilitator, alice, "2026-10-01"),
		event("future", models.RoleMeetingFacilitator, bob, "2026-11-01"),
	)

	deleted, err := f.engine.DeleteAfter(context.Background(), models.RoleMeetingFacilitator, time.Time{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(deleted) != 1 || deleted[0].ID != "future" {
		t.Fatalf("expected only the future event planned for deletion, got %#v", deleted)
	}
	if len(f.calendar.Deleted) != 0 {
		t.Fatalf("expected nothing deleted in dry run")
	}
}

func TestDeleteAfterReachesPastTheHistoryWindow(t *testing.T) {
	f := newFixture(t, false, nil,
		event("old", models.RoleMeetingFacilitator, alice, "2025-03-01"),
		event("recent", models.RoleMeetingFacilitator, bob, "2026-11-01"),
	)

	deleted, err := f.engine.DeleteAfter(context.Background(), models.RoleMeetingFacilitator, date("2025-01-01"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(deleted) != 2 {
		t.Fatalf("expected both events deleted, got %#v", deleted)
	}
	if diff := cmp.Diff([]string{"old", "recent"}, f.calendar.Deleted); diff != "" {
		t.Fatalf("unexpected deletions (-want +got):\n%s", diff)
	}
	if len(f.calendar.Events) != 0 {
		t.Fatalf("expected an empty calendar, got %#v", f.calendar.Events)
	}
}
