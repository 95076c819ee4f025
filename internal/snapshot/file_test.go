package snapshot

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/daniloc96/team-roles/internal/models"
)

func sampleState(t *testing.T) *models.RoleState {
	t.Helper()
	state := models.NewRoleState()
	state.StandupManager = models.Member{Name: "Dana", ID: "U9"}
	if err := state.Set(models.RoleMeetingFacilitator, models.Simple{Holder: models.Member{Name: "Alice", ID: "U1"}}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := state.Set(models.RoleSupportSteward, models.Overlapping{
		Current:  models.Member{Name: "Bob", ID: "U2"},
		Incoming: models.Member{Name: "Carol", ID: "U3"},
	}); err != nil {
		t.Fatalf("set: %v", err)
	}
	return state
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roles.json")
	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	if _, err := store.Load(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound before first save, got %v", err)
	}

	state := sampleState(t)
	if err := store.Save(ctx, state); err != nil {
		t.Fatalf("save: %v", err)
	}
	if state.Version != 1 {
		t.Fatalf("expected version 1 after first save, got %d", state.Version)
	}

	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Version != 1 || loaded.StandupManager.ID != "U9" {
		t.Fatalf("unexpected snapshot %#v", loaded)
	}
	a, ok := loaded.Assignment(models.RoleSupportSteward)
	if !ok || a.Cursor().Name != "Carol" {
		t.Fatalf("expected Carol as incoming steward, got %#v", a)
	}
}

func TestFileStoreRejectsStaleVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roles.json")
	store, _ := NewFileStore(path)
	ctx := context.Background()

	first := sampleState(t)
	if err := store.Save(ctx, first); err != nil {
		t.Fatalf("save: %v", err)
	}

	stale := sampleState(t)
	err := store.Save(ctx, stale)
	if !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}
	if stale.Version != 0 {
		t.Fatalf("expected caller version untouched on conflict, got %d", stale.Version)
	}
}

func TestFileStoreFailedWriteKeepsPreviousSnapshot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "roles.json")
	store, _ := NewFileStore(path)
	ctx := context.Background()

	state := sampleState(t)
	if err := store.Save(ctx, state); err != nil {
		t.Fatalf("save: %v", err)
	}
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	replaceFile = func(oldpath, newpath string) error { return errors.New("disk full") }
	t.Cleanup(func() { replaceFile = os.Rename })

	if err := state.Set(models.RoleMeetingFacilitator, models.Simple{Holder: models.Member{Name: "Eve", ID: "U5"}}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Save(ctx, state); err == nil {
		t.Fatalf("expected save to fail")
	}
	if state.Version != 1 {
		t.Fatalf("expected version to stay at 1 after a failed save, got %d", state.Version)
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(before) != string(after) {
		t.Fatalf("expected snapshot unchanged after failed write")
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("expected temp file cleanup, found %d entries", len(entries))
	}
}

func TestDecodeRejectsUnknownRole(t *testing.T) {
	if _, err := Decode([]byte(`{"version":1,"tech_lead":{"name":"A","id":"U1"}}`)); err == nil {
		t.Fatalf("expected error for unknown role key")
	}
}

func TestMemoryStoreVersioning(t *testing.T) {
	store := NewMemoryStore(nil)
	ctx := context.Background()
	if _, err := store.Load(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	state := sampleState(t)
	if err := store.Save(ctx, state); err != nil {
		t.Fatalf("save: %v", err)
	}
	stale := sampleState(t)
	if err := store.Save(ctx, stale); !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}
}
