package snapshot

import (
	"context"
	"fmt"

	"github.com/daniloc96/team-roles/internal/models"
)

// MemoryStore is an in-process StateStore used in tests.
type MemoryStore struct {
	State *models.RoleState
	Saves int

	// SaveErr, when set, is returned by Save without touching State.
	SaveErr error
}

// NewMemoryStore returns a store seeded with state.
func NewMemoryStore(state *models.RoleState) *MemoryStore {
	return &MemoryStore{State: state}
}

func (m *MemoryStore) Load(ctx context.Context) (*models.RoleState, error) {
	if m.State == nil {
		return nil, ErrNotFound
	}
	return m.State.Clone(), nil
}

func (m *MemoryStore) Save(ctx context.Context, state *models.RoleState) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	stored := 0
	if m.State != nil {
		stored = m.State.Version
	}
	if stored != state.Version {
		return fmt.Errorf("%w: stored version %d, writing from %d", ErrVersionConflict, stored, state.Version)
	}
	state.Version++
	m.State = state.Clone()
	m.Saves++
	return nil
}
