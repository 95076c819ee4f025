package models

import (
	"fmt"
	"strings"
)

// Role names a recurring duty rotated through the usergroup.
type Role string

const (
	RoleMeetingFacilitator Role = "meeting-facilitator"
	RoleSupportSteward     Role = "support-steward"
	RoleSupportTriager     Role = "support-triager"
)

// RoleKind describes the shape of a role's assignment.
type RoleKind int

const (
	// KindSimple roles have a single holder at a time.
	KindSimple RoleKind = iota
	// KindOverlapping roles hand over gradually: a current and an incoming holder.
	KindOverlapping
)

// Roles lists every recognized role.
var Roles = []Role{RoleMeetingFacilitator, RoleSupportSteward, RoleSupportTriager}

// ParseRole accepts the CLI form ("support-steward") or the snapshot key form
// ("support_steward").
func ParseRole(s string) (Role, error) {
	normalized := Role(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-"))
	for _, r := range Roles {
		if r == normalized {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role %q (expected one of %s)", s, strings.Join(RoleNames(), ", "))
}

// RoleNames returns the CLI names of all roles.
func RoleNames() []string {
	names := make([]string, 0, len(Roles))
	for _, r := range Roles {
		names = append(names, string(r))
	}
	return names
}

// Kind returns the assignment shape of the role.
func (r Role) Kind() RoleKind {
	switch r {
	case RoleSupportSteward, RoleSupportTriager:
		return KindOverlapping
	default:
		return KindSimple
	}
}

// Title returns the human-readable role name, e.g. "Support Steward".
func (r Role) Title() string {
	words := strings.Split(string(r), "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// SnapshotKey returns the JSON key used in the role-state snapshot.
func (r Role) SnapshotKey() string {
	return strings.ReplaceAll(string(r), "-", "_")
}

// Valid reports whether r is a recognized role.
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}
