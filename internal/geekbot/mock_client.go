package geekbot

import (
	"context"

	"github.com/daniloc96/team-roles/internal/models"
)

// MockClient records standups instead of calling Geekbot.
type MockClient struct {
	UpsertStandupFunc func(ctx context.Context, standup models.Standup) (*models.StandupResult, error)
	Upserted          []models.Standup
}

func (m *MockClient) UpsertStandup(ctx context.Context, standup models.Standup) (*models.StandupResult, error) {
	m.Upserted = append(m.Upserted, standup)
	if m.UpsertStandupFunc != nil {
		return m.UpsertStandupFunc(ctx, standup)
	}
	return &models.StandupResult{Name: standup.Name, Users: standup.Users, Channel: standup.Channel}, nil
}
