package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/termweave/termweave/internal/session"
)

// Store reads and writes the session state file. Save is atomic: the
// file is written beside the target and renamed into place, so a crash
// mid-save leaves the previous state intact.
type Store struct {
	path string
}

// NewStore creates a store for the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the state file location.
func (s *Store) Path() string { return s.path }

// Save writes the snapshot to the state file.
func (s *Store) Save(snap session.Snapshot) error {
	data, err := json.MarshalIndent(encode(snap), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating state dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".termweave-state-*")
	if err != nil {
		return fmt.Errorf("creating temp state file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing state file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing state file: %w", err)
	}
	return nil
}

// Load reads the state file. A missing file is not an error; it
// returns ok=false so callers start a fresh session.
func (s *Store) Load() (session.Snapshot, bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return session.Snapshot{}, false, nil
		}
		return session.Snapshot{}, false, fmt.Errorf("reading state: %w", err)
	}

	var fs fileState
	if err := json.Unmarshal(data, &fs); err != nil {
		return session.Snapshot{}, false, fmt.Errorf("parsing state: %w", err)
	}
	snap, err := decode(fs)
	if err != nil {
		return session.Snapshot{}, false, err
	}
	return snap, true, nil
}

// Remove deletes the state file. Removing a file that does not exist
// succeeds.
func (s *Store) Remove() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing state: %w", err)
	}
	return nil
}
