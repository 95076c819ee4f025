package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestNewMembersSortsByName(t *testing.T) {
	members := NewMembers([]Member{{Name: "Carol", ID: "U3"}, {Name: "Alice", ID: "U1"}, {Name: "Bob", ID: "U2"}})
	got := members.Names()
	want := []string{"Alice", "Bob", "Carol"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected order (-want +got):\n%s", diff)
	}
}

func TestFindByName(t *testing.T) {
	members := NewMembers([]Member{
		{Name: "Alice Smith", ID: "U1"},
		{Name: "Alex Jones", ID: "U2"},
		{Name: "Bob", ID: "U3"},
	})

	cases := []struct {
		name    string
		input   string
		wantID  string
		wantErr error
	}{
		{name: "exact", input: "Bob", wantID: "U3"},
		{name: "case insensitive", input: "alice smith", wantID: "U1"},
		{name: "first name", input: "Alice", wantID: "U1"},
		{name: "ambiguous prefix", input: "Al", wantErr: ErrAmbiguousMember},
		{name: "missing", input: "Zed", wantErr: ErrMemberNotFound},
		{name: "empty", input: " ", wantErr: ErrMemberNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m, err := members.FindByName(tc.input)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if m.ID != tc.wantID {
				t.Fatalf("expected %s, got %s", tc.wantID, m.ID)
			}
		})
	}
}

func TestParseRole(t *testing.T) {
	for _, input := range []string{"support-steward", "support_steward", " Support-Steward "} {
		role, err := ParseRole(input)
		if err != nil {
			t.Fatalf("%q: expected no error, got %v", input, err)
		}
		if role != RoleSupportSteward {
			t.Fatalf("%q: expected support-steward, got %s", input, role)
		}
	}
	if _, err := ParseRole("tea-maker"); err == nil {
		t.Fatalf("expected error for unknown role")
	}
	if got := RoleMeetingFacilitator.Title(); got != "Meeting Facilitator" {
		t.Fatalf("unexpected title %q", got)
	}
	if got := RoleSupportTriager.SnapshotKey(); got != "support_triager" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestRoleStateRoundTrip(t *testing.T) {
	state := NewRoleState()
	state.Version = 3
	state.StandupManager = Member{Name: "Alice", ID: "U1"}
	if err := state.Set(RoleMeetingFacilitator, Simple{Holder: Member{Name: "Bob", ID: "U2"}}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := state.Set(RoleSupportSteward, Overlapping{
		Current:  Member{Name: "Carol", ID: "U3"},
		Incoming: Member{Name: "Alice", ID: "U1"},
	}); err != nil {
		t.Fatalf("set: %v", err)
	}

	data, err := json.Marshal(state)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded RoleState
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff(*state, decoded); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestRoleStateDecodesLegacyLayout(t *testing.T) {
	legacy := `{
		"standup_manager": {"name": "Alice", "id": "U1"},
		"meeting_facilitator": {"name": "Bob", "id": "U2"},
		"support_triager": {"incoming": {"name": "Carol", "id": "U3"}, "current": {"name": "Bob", "id": "U2"}}
	}`

	var state RoleState
	if err := json.Unmarshal([]byte(legacy), &state); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if state.Version != 0 {
		t.Fatalf("expected version 0, got %d", state.Version)
	}
	a, ok := state.Assignment(RoleSupportTriager)
	if !ok {
		t.Fatalf("expected support triager assignment")
	}
	o, ok := a.(Overlapping)
	if !ok {
		t.Fatalf("expected overlapping assignment, got %T", a)
	}
	if o.Cursor().ID != "U3" || o.Current.ID != "U2" {
		t.Fatalf("unexpected assignment %#v", o)
	}
}

func TestRoleStateRejectsMismatchedShape(t *testing.T) {
	var state RoleState
	err := json.Unmarshal([]byte(`{"support_steward": {"name": "Bob", "id": "U2"}}`), &state)
	if err == nil {
		t.Fatalf("expected error for simple shape on overlapping role")
	}
	if err := NewRoleState().Set(RoleMeetingFacilitator, Overlapping{}); err == nil {
		t.Fatalf("expected error for overlapping assignment on simple role")
	}
}

func TestRoleStateRejectsUnknownKey(t *testing.T) {
	var state RoleState
	if err := json.Unmarshal([]byte(`{"tea_maker": {"name": "Bob", "id": "U2"}}`), &state); err == nil {
		t.Fatalf("expected error for unknown role key")
	}
}

func TestEventStatus(t *testing.T) {
	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	event := CalendarEvent{
		Start: time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC),
	}
	if got := event.Status(day); got != EventOngoing {
		t.Fatalf("expected ongoing, got %s", got)
	}
	if got := event.Status(event.End); got != EventPast {
		t.Fatalf("expected past on end date, got %s", got)
	}
	if got := event.Status(event.Start.AddDate(0, 0, -1)); got != EventFuture {
		t.Fatalf("expected future, got %s", got)
	}
}

func TestParticipants(t *testing.T) {
	holder := Member{Name: "Bob", ID: "U2"}
	if got := Participants(holder, Member{Name: "Alice", ID: "U1"}); len(got) != 2 {
		t.Fatalf("expected holder and manager, got %v", got)
	}
	if got := Participants(holder, holder); len(got) != 1 {
		t.Fatalf("expected manager to be deduplicated, got %v", got)
	}
}
