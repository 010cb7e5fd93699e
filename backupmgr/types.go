package backupmgr

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

const (
	defaultContainerName = "Minecraft_Backups"
	defaultBackupSuffix  = "_backup"
)

var (
	// ErrNoSelection is returned when an operation is triggered with nothing chosen.
	ErrNoSelection = errors.New("no worlds selected")
	// ErrDestinationExists is the per-item failure for a copy into an existing directory.
	ErrDestinationExists = errors.New("destination already exists")
	// ErrBackupNotFound is returned by Export when the world has no backup.
	ErrBackupNotFound = errors.New("backup not found")
	// ErrInvalidWorldName is returned for a name that is not a single directory name.
	ErrInvalidWorldName = errors.New("invalid world name")
)

// BackupConfig holds configuration for backup operations
type BackupConfig struct {
	ContainerName string
	BackupSuffix  string
	Identifier    string
}

// PreferenceRecorder persists the last used backup location.
type PreferenceRecorder interface {
	SetLastBackup(location string) error
}

// Status is the terminal state of one copy.
type Status int

const (
	StatusSucceeded Status = iota
	StatusFailed
	StatusSkipped
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	case StatusCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("unknown_status(%d)", int(s))
	}
}

// CopyError is a failed world copy.
type CopyError struct {
	World       string
	Source      string
	Destination string
	Err         error
}

func (e *CopyError) Error() string {
	return fmt.Sprintf("copying world '%s' from %s to %s: %v", e.World, e.Source, e.Destination, e.Err)
}

func (e *CopyError) Unwrap() error {
	return e.Err
}

// Outcome is the result for a single world.
type Outcome struct {
	World       string
	Source      string
	Destination string
	Status      Status
	Err         error
}

// BackupResult holds the per-world outcomes of one Backup call, in selection order.
type BackupResult struct {
	Location string
	Items    []Outcome
}

// Count returns the number of items with status s.
func (r BackupResult) Count(s Status) int {
	n := 0
	for _, item := range r.Items {
		if item.Status == s {
			n++
		}
	}
	return n
}

// Failed reports whether any item did not succeed.
func (r BackupResult) Failed() bool {
	return r.Count(StatusSucceeded) != len(r.Items)
}

// Progress is reported after each world finishes.
type Progress struct {
	Done  int
	Total int
	Item  Outcome
}

// ProgressFunc receives progress synchronously from the copy loop.
type ProgressFunc func(Progress)

// ConfirmFunc decides whether an existing destination may be overwritten.
type ConfirmFunc func(destination string) (bool, error)

// BackupInfo describes one backup record in the container.
type BackupInfo struct {
	World   string    `json:"world" yaml:"world"`
	Path    string    `json:"path" yaml:"path"`
	ModTime time.Time `json:"modified" yaml:"modified"`
	Size    int64     `json:"size" yaml:"size"`
}

// WorldEventOp is the kind of change seen in the discovery path.
type WorldEventOp int

const (
	WorldAdded WorldEventOp = iota
	WorldRemoved
)

func (op WorldEventOp) String() string {
	switch op {
	case WorldAdded:
		return "added"
	case WorldRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// WorldEvent is a world appearing in or leaving the discovery path.
type WorldEvent struct {
	World string
	Path  string
	Op    WorldEventOp
	Time  time.Time
}

// BackupManager manages backup operations
type BackupManager struct {
	config  BackupConfig
	prefs   PreferenceRecorder
	mu      sync.Mutex
	watcher *fsWatcher
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}
