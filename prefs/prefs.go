// Package prefs persists the last-used backup location and the world
// discovery path.
package prefs

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/SteamServerUI/WorldBackupManager/logging"
)

// Preferences is the persisted record.
type Preferences struct {
	LastBackup string `json:"last_backup" yaml:"last_backup"`
	WorldPath  string `json:"world_path" yaml:"world_path"`
}

// Defaults returns the record used when no preferences file exists.
func Defaults() Preferences {
	return Preferences{LastBackup: "", WorldPath: DefaultWorldPath()}
}

// Load reads the preferences file. A missing or unreadable file yields the
// defaults; a corrupt file is logged and treated as missing.
func Load(path string) Preferences {
	p, err := read(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logging.Log(fmt.Sprintf("Ignoring preferences file %s: %s", path, err.Error()), "Warn")
		}
		return Defaults()
	}
	if p.WorldPath == "" {
		p.WorldPath = DefaultWorldPath()
	}
	return p
}

func read(path string) (Preferences, error) {
	var p Preferences
	data, err := os.ReadFile(path)
	if err != nil {
		return p, err
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("failed to parse preferences: %w", err)
	}
	return p, nil
}

// Save writes p to path via a temp file and rename.
func Save(path string, p Preferences) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create preferences dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp preferences file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace preferences file %s: %w", path, err)
	}
	return nil
}

// Store is the in-memory preferences record, loaded once and written back on
// every change.
type Store struct {
	path    string
	mu      sync.Mutex
	current Preferences
}

// Open loads the preferences at path.
func Open(path string) *Store {
	return &Store{path: path, current: Load(path)}
}

// Path returns the preferences file location.
func (s *Store) Path() string {
	return s.path
}

// Preferences returns a copy of the current record.
func (s *Store) Preferences() Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Save replaces both fields and persists them.
func (s *Store) Save(lastBackup, worldPath string) error {
	return s.update(func(p *Preferences) {
		p.LastBackup = lastBackup
		p.WorldPath = worldPath
	})
}

// SetLastBackup records the most recent backup location, keeping the world path.
func (s *Store) SetLastBackup(location string) error {
	return s.update(func(p *Preferences) { p.LastBackup = location })
}

// SetWorldPath changes the discovery path, keeping the last backup location.
func (s *Store) SetWorldPath(path string) error {
	return s.update(func(p *Preferences) { p.WorldPath = path })
}

// update applies change to a copy of the record and persists it. The record
// only changes when the write succeeds.
func (s *Store) update(change func(*Preferences)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current
	change(&next)
	if err := Save(s.path, next); err != nil {
		return err
	}
	s.current = next
	return nil
}
