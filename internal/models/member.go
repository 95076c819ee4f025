package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrMemberNotFound is returned when a member is not part of the usergroup.
	ErrMemberNotFound = errors.New("member not found in usergroup")
	// ErrAmbiguousMember is returned when a name matches more than one member.
	ErrAmbiguousMember = errors.New("member name is ambiguous")
)

// Member is a usergroup member eligible to serve in a role.
type Member struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// FirstName returns the first word of the display name.
func (m Member) FirstName() string {
	fields := strings.Fields(m.Name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// IsZero reports whether the member is unset.
func (m Member) IsZero() bool {
	return m.Name == "" && m.ID == ""
}

func (m Member) String() string {
	if m.ID == "" {
		return m.Name
	}
	return fmt.Sprintf("%s (%s)", m.Name, m.ID)
}

// Members is the rotation order: usergroup members sorted by display name.
type Members []Member

// NewMembers copies and sorts members alphabetically by display name.
func NewMembers(members []Member) Members {
	sorted := make(Members, len(members))
	copy(sorted, members)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})
	return sorted
}

// IndexOf returns the position of the member with the given ID, or -1.
func (ms Members) IndexOf(id string) int {
	for i, m := range ms {
		if m.ID == id {
			return i
		}
	}
	return -1
}

// FindByID returns the member with the given ID.
func (ms Members) FindByID(id string) (Member, error) {
	if i := ms.IndexOf(id); i >= 0 {
		return ms[i], nil
	}
	return Member{}, fmt.Errorf("%w: id %q", ErrMemberNotFound, id)
}

// FindByName resolves a display name, full or first name only, to a member.
// Calendar summaries only carry first names, so a unique case-insensitive
// prefix match is accepted when no display name matches exactly.
func (ms Members) FindByName(name string) (Member, error) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return Member{}, fmt.Errorf("%w: empty name", ErrMemberNotFound)
	}

	for _, m := range ms {
		if strings.ToLower(m.Name) == needle {
			return m, nil
		}
	}

	var matches []Member
	for _, m := range ms {
		if strings.HasPrefix(strings.ToLower(m.Name), needle) {
			matches = append(matches, m)
		}
	}
	switch len(matches) {
	case 0:
		return Member{}, fmt.Errorf("%w: %q", ErrMemberNotFound, name)
	case 1:
		return matches[0], nil
	default:
		names := make([]string, 0, len(matches))
		for _, m := range matches {
			names = append(names, m.Name)
		}
		return Member{}, fmt.Errorf("%w: %q matches %s", ErrAmbiguousMember, name, strings.Join(names, ", "))
	}
}

// Names returns the display names in rotation order.
func (ms Members) Names() []string {
	names := make([]string, 0, len(ms))
	for _, m := range ms {
		names = append(names, m.Name)
	}
	return names
}
