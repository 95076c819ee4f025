// Package rotation computes who is next in line for a role.
package rotation

import (
	"errors"
	"fmt"

	"github.com/daniloc96/team-roles/internal/models"
)

var (
	// ErrMemberNotFound is returned when the current holder is not in the
	// usergroup, e.g. after leaving it. The run stops so an operator can decide
	// who takes over.
	ErrMemberNotFound = models.ErrMemberNotFound
	// ErrEmptyRotation is returned when the usergroup has no members.
	ErrEmptyRotation = errors.New("rotation has no members")
)

// Advance returns the member after current in the rotation, wrapping at the end.
func Advance(current models.Member, members models.Members) (models.Member, error) {
	return AdvanceBy(current, members, 1)
}

// AdvanceBy returns the member steps positions after current, wrapping around.
func AdvanceBy(current models.Member, members models.Members, steps int) (models.Member, error) {
	if len(members) == 0 {
		return models.Member{}, ErrEmptyRotation
	}
	if steps < 0 {
		return models.Member{}, fmt.Errorf("steps must not be negative, got %d", steps)
	}
	index := members.IndexOf(current.ID)
	if index < 0 {
		return models.Member{}, fmt.Errorf("%w: %s", ErrMemberNotFound, current)
	}
	return members[(index+steps)%len(members)], nil
}

// Sequence returns the next n holders after current, in order.
func Sequence(current models.Member, members models.Members, n int) ([]models.Member, error) {
	out := make([]models.Member, 0, n)
	for i := 0; i < n; i++ {
		next, err := AdvanceBy(current, members, i+1)
		if err != nil {
			return nil, err
		}
		out = append(out, next)
	}
	return out, nil
}
