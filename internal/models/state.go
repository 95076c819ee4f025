package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Assignment is who serves in a role. It is either Simple or Overlapping.
type Assignment interface {
	// Cursor is the member the rotation advances from.
	Cursor() Member
	isAssignment()
}

// Simple is the assignment of a single-holder role.
type Simple struct {
	Holder Member
}

// Cursor returns the holder.
func (s Simple) Cursor() Member { return s.Holder }

func (Simple) isAssignment() {}

// Overlapping is the assignment of a role whose holders overlap: the incoming
// member shadows the current one before taking over.
type Overlapping struct {
	Current  Member `json:"current"`
	Incoming Member `json:"incoming"`
}

// Cursor returns the incoming member, the latest to join the rotation.
func (o Overlapping) Cursor() Member { return o.Incoming }

func (Overlapping) isAssignment() {}

// RoleState is the persisted snapshot of who holds which role.
type RoleState struct {
	Version        int
	StandupManager Member
	Assignments    map[Role]Assignment
}

// NewRoleState returns an empty state at version 0.
func NewRoleState() *RoleState {
	return &RoleState{Assignments: map[Role]Assignment{}}
}

// Assignment returns the assignment of role or false if none is recorded.
func (s *RoleState) Assignment(role Role) (Assignment, bool) {
	if s == nil || s.Assignments == nil {
		return nil, false
	}
	a, ok := s.Assignments[role]
	return a, ok
}

// Set records the assignment of role. The assignment shape must match the role kind.
func (s *RoleState) Set(role Role, a Assignment) error {
	if err := checkKind(role, a); err != nil {
		return err
	}
	if s.Assignments == nil {
		s.Assignments = map[Role]Assignment{}
	}
	s.Assignments[role] = a
	return nil
}

// Clone returns a deep copy of the state.
func (s *RoleState) Clone() *RoleState {
	out := &RoleState{Version: s.Version, StandupManager: s.StandupManager, Assignments: make(map[Role]Assignment, len(s.Assignments))}
	for role, a := range s.Assignments {
		out.Assignments[role] = a
	}
	return out
}

func checkKind(role Role, a Assignment) error {
	if !role.Valid() {
		return fmt.Errorf("unknown role %q", role)
	}
	switch a.(type) {
	case Simple:
		if role.Kind() != KindSimple {
			return fmt.Errorf("role %s needs a current/incoming assignment", role)
		}
	case Overlapping:
		if role.Kind() != KindOverlapping {
			return fmt.Errorf("role %s needs a single holder", role)
		}
	default:
		return fmt.Errorf("role %s: unsupported assignment %T", role, a)
	}
	return nil
}

const (
	keyVersion        = "version"
	keyStandupManager = "standup_manager"
)

// MarshalJSON renders the snapshot file layout: one key per role plus the
// standup manager and version.
func (s RoleState) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	write := func(key string, v any) error {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		k, _ := json.Marshal(key)
		val, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encoding %s: %w", key, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(val)
		return nil
	}

	if err := write(keyVersion, s.Version); err != nil {
		return nil, err
	}
	if err := write(keyStandupManager, s.StandupManager); err != nil {
		return nil, err
	}
	// Roles in declaration order so the file diffs cleanly between runs.
	for _, role := range Roles {
		a, ok := s.Assignments[role]
		if !ok {
			continue
		}
		var v any
		switch a := a.(type) {
		case Simple:
			v = a.Holder
		case Overlapping:
			v = a
		default:
			return nil, fmt.Errorf("role %s: unsupported assignment %T", role, a)
		}
		if err := write(role.SnapshotKey(), v); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes the snapshot layout, using the role name to pick the
// assignment shape.
func (s *RoleState) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := RoleState{Assignments: map[Role]Assignment{}}
	for key, value := range raw {
		switch key {
		case keyVersion:
			if err := json.Unmarshal(value, &out.Version); err != nil {
				return fmt.Errorf("decoding version: %w", err)
			}
		case keyStandupManager:
			if err := json.Unmarshal(value, &out.StandupManager); err != nil {
				return fmt.Errorf("decoding standup manager: %w", err)
			}
		default:
			role, err := ParseRole(key)
			if err != nil {
				return fmt.Errorf("snapshot key %q: %w", key, err)
			}
			a, err := decodeAssignment(role, value)
			if err != nil {
				return err
			}
			out.Assignments[role] = a
		}
	}

	*s = out
	return nil
}

func decodeAssignment(role Role, value json.RawMessage) (Assignment, error) {
	switch role.Kind() {
	case KindOverlapping:
		var o struct {
			Current  *Member `json:"current"`
			Incoming *Member `json:"incoming"`
		}
		if err := json.Unmarshal(value, &o); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", role, err)
		}
		if o.Current == nil || o.Incoming == nil {
			return nil, fmt.Errorf("decoding %s: both current and incoming are required", role)
		}
		return Overlapping{Current: *o.Current, Incoming: *o.Incoming}, nil
	default:
		var m Member
		if err := json.Unmarshal(value, &m); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", role, err)
		}
		return Simple{Holder: m}, nil
	}
}
