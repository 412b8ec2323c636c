package accounts

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

var _ Persister = (*FileStore)(nil)

// FileStore persists State as JSON in a single file.
type FileStore struct {
	path string
}

func NewFileStore(path string) (*FileStore, error) {
	p := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create state directory %s: %w", filepath.Dir(p), err)
	}
	return &FileStore{path: p}, nil
}

func (f *FileStore) Path() string {
	return f.path
}

// Load returns the empty state when the file does not exist yet.
func (f *FileStore) Load() (State, error) {
	var state State
	raw, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return state, nil
		}
		return state, fmt.Errorf("failed to read %s: %w", f.path, err)
	}
	if err := json.Unmarshal(raw, &state); err != nil {
		return State{}, fmt.Errorf("failed to decode %s: %w", f.path, err)
	}
	return state, nil
}

// Save writes to a temporary file in the same directory and renames it over
// the target, so a crash never leaves a half-written state file.
func (f *FileStore) Save(state State) error {
	raw, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".accounts-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to chmod state: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", f.path, err)
	}
	return nil
}

// MemoryStore keeps the state in memory. Used by tests and by dry runs.
type MemoryStore struct {
	mu    sync.Mutex
	state State
	saves int
}

var _ Persister = (*MemoryStore)(nil)

func NewMemoryStore(initial State) *MemoryStore {
	return &MemoryStore{state: initial}
}

func (m *MemoryStore) Load() (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state, nil
}

func (m *MemoryStore) Save(state State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = state
	m.saves++
	return nil
}

func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
