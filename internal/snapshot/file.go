package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/daniloc96/team-roles/internal/models"
)

var (
	// ErrNotFound is returned by Load when no snapshot has been written yet.
	ErrNotFound = errors.New("snapshot not found")

	// ErrVersionConflict is returned by Save when the stored snapshot changed
	// since the caller loaded it.
	ErrVersionConflict = errors.New("snapshot version conflict")
)

// FileStore keeps the snapshot in a single JSON file.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by path.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("snapshot path is required")
	}
	return &FileStore{path: path}, nil
}

// Path returns the snapshot file location.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the whole snapshot file.
func (s *FileStore) Load(ctx context.Context) (*models.RoleState, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s: %w", ErrNotFound, s.path, err)
		}
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	return Decode(data)
}

// Save writes state as version state.Version+1. The file is replaced through
// a temporary file in the same directory, so a failed write leaves the
// previous snapshot intact.
func (s *FileStore) Save(ctx context.Context, state *models.RoleState) error {
	if state == nil {
		return fmt.Errorf("state is required")
	}

	stored, err := s.storedVersion()
	if err != nil {
		return err
	}
	if stored != state.Version {
		return fmt.Errorf("%w: stored version %d, writing from %d", ErrVersionConflict, stored, state.Version)
	}

	next := state.Clone()
	next.Version = state.Version + 1
	data, err := Encode(next)
	if err != nil {
		return err
	}

	if err := writeAtomic(s.path, data); err != nil {
		return err
	}

	state.Version = next.Version
	logrus.WithFields(logrus.Fields{
		"path":    s.path,
		"version": state.Version,
	}).Debug("snapshot saved")
	return nil
}

func (s *FileStore) storedVersion() (int, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading snapshot: %w", err)
	}
	current, err := Decode(data)
	if err != nil {
		return 0, err
	}
	return current.Version, nil
}

// Encode renders the snapshot file contents.
func Encode(state *models.RoleState) ([]byte, error) {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode parses snapshot file contents.
func Decode(data []byte) (*models.RoleState, error) {
	state := models.NewRoleState()
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	return state, nil
}

// replaceFile is swapped in tests to simulate a crash before the rename.
var replaceFile = os.Rename

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp snapshot: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("setting snapshot permissions: %w", err)
	}
	if err := replaceFile(tmpName, path); err != nil {
		return fmt.Errorf("replacing snapshot: %w", err)
	}
	return nil
}
