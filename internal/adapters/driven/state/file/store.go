// Package file implements the SyncStateStore port as a single JSON
// object on disk mapping remote file identifier to the last-seen
// modification timestamp.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/askhub-ai/askhub/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.SyncStateStore = (*Store)(nil)

// Store persists the sync state at a fixed path.
//
// Not safe for concurrent writers; the ingestion service guarantees
// a single active run.
type Store struct {
	path string
}

// New creates a store persisting at path.
func New(path string) *Store {
	return &Store{path: path}
}

// Load returns the persisted mapping, or an empty map when nothing
// has been persisted yet.
func (s *Store) Load(_ context.Context) (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, fmt.Errorf("read sync state: %w", err)
	}

	state := make(map[string]string)
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode sync state: %w", err)
	}
	return state, nil
}

// Save persists the full mapping, replacing prior content. The
// write goes through a temporary file and a rename so a crash never
// leaves a torn state file.
func (s *Store) Save(_ context.Context, state map[string]string) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode sync state: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write sync state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp state file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace sync state: %w", err)
	}
	return nil
}
