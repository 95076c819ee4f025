package slack

import (
	"context"

	"github.com/daniloc96/team-roles/internal/models"
)

// MockClient is a simple mock implementation of the membership provider.
type MockClient struct {
	ListMembersFunc func(ctx context.Context, usergroup string) (models.Members, error)
	Calls           int
}

func (m *MockClient) ListMembers(ctx context.Context, usergroup string) (models.Members, error) {
	m.Calls++
	if m.ListMembersFunc == nil {
		return nil, nil
	}
	return m.ListMembersFunc(ctx, usergroup)
}

// StaticMembers returns a mock that always lists members in rotation order.
func StaticMembers(members ...models.Member) *MockClient {
	sorted := models.NewMembers(members)
	return &MockClient{ListMembersFunc: func(ctx context.Context, usergroup string) (models.Members, error) {
		return sorted, nil
	}}
}
