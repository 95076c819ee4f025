package github

import (
	"context"

	"github.com/daniloc96/team-roles/internal/models"
)

// MockPublisher records published snapshots.
type MockPublisher struct {
	PublishFunc func(ctx context.Context, state *models.RoleState, message string) error
	Published   []*models.RoleState
	Messages    []string
}

func (m *MockPublisher) Publish(ctx context.Context, state *models.RoleState, message string) error {
	m.Published = append(m.Published, state.Clone())
	m.Messages = append(m.Messages, message)
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, state, message)
	}
	return nil
}
