// Package api turns user actions into backup manager calls and reports the
// result as notices for whichever front-end is showing them.
package api

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/SteamServerUI/WorldBackupManager/backupmgr"
	"github.com/SteamServerUI/WorldBackupManager/prefs"
)

// Level is the severity of a notice.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is a user-facing message.
type Notice struct {
	Level   Level
	Title   string
	Message string
}

var (
	// ErrNoBackupLocation means no location was given and none was remembered.
	ErrNoBackupLocation = errors.New("no backup location chosen")
	// ErrNotADirectory is returned when a chosen world path is not a directory.
	ErrNotADirectory = errors.New("not a directory")
)

// Handler holds the shared state of one front-end session.
type Handler struct {
	mu      sync.RWMutex
	manager *backupmgr.BackupManager
	store   *prefs.Store
}

// NewHandler registers a handler that follows manager reloads.
func NewHandler(store *prefs.Store) *Handler {
	h := &Handler{store: store}
	backupmgr.RegisterConsumer(h)
	return h
}

// SetManager implements backupmgr.ManagerConsumer.
func (h *Handler) SetManager(m *backupmgr.BackupManager) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.manager = m
}

// Manager returns the current backup manager.
func (h *Handler) Manager() *backupmgr.BackupManager {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.manager
}

// Preferences returns the current preferences.
func (h *Handler) Preferences() prefs.Preferences {
	return h.store.Preferences()
}

// Worlds lists the worlds in the discovery path.
func (h *Handler) Worlds() ([]string, error) {
	return backupmgr.ListWorlds(h.store.Preferences().WorldPath)
}

// Backups lists the worlds backed up under location, or under the last backup
// location when location is empty.
func (h *Handler) Backups(location string) ([]string, error) {
	location = h.location(location)
	if location == "" {
		return []string{}, nil
	}
	return h.Manager().ListBackups(location)
}

// BackupDetails is Backups with size and modification time.
func (h *Handler) BackupDetails(location string, limit int) ([]backupmgr.BackupInfo, error) {
	location = h.location(location)
	if location == "" {
		return []backupmgr.BackupInfo{}, nil
	}
	return h.Manager().ListBackupDetails(location, limit)
}

func (h *Handler) location(location string) string {
	if location != "" {
		return location
	}
	return h.store.Preferences().LastBackup
}

// HandleBackup backs up the named worlds of the discovery path to location.
func (h *Handler) HandleBackup(ctx context.Context, worlds []string, location string, progress backupmgr.ProgressFunc) (backupmgr.BackupResult, []Notice) {
	if len(worlds) == 0 {
		return backupmgr.BackupResult{}, []Notice{{Level: LevelError, Title: "Error", Message: "No worlds selected for backup."}}
	}
	location = h.location(location)
	if location == "" {
		return backupmgr.BackupResult{}, []Notice{{Level: LevelError, Title: "Error", Message: "No backup location chosen."}}
	}

	var invalid []Notice
	for _, w := range worlds {
		if err := backupmgr.ValidateWorldName(w); err != nil {
			invalid = append(invalid, invalidWorldNotice(w))
		}
	}
	if len(invalid) > 0 {
		return backupmgr.BackupResult{}, invalid
	}

	worldPath := h.store.Preferences().WorldPath
	paths := make([]string, 0, len(worlds))
	for _, w := range worlds {
		paths = append(paths, filepath.Join(worldPath, w))
	}

	result, err := h.Manager().Backup(ctx, paths, location, progress)
	if err != nil {
		return result, []Notice{{Level: LevelError, Title: "Error", Message: fmt.Sprintf("Backup failed: %s", err.Error())}}
	}

	var notices []Notice
	for _, item := range result.Items {
		switch item.Status {
		case backupmgr.StatusFailed:
			notices = append(notices, Notice{
				Level:   LevelError,
				Title:   "Error",
				Message: fmt.Sprintf("An error occurred while backing up the world '%s': %s", item.World, describe(item.Err)),
			})
		case backupmgr.StatusCancelled:
			notices = append(notices, Notice{
				Level:   LevelWarning,
				Title:   "Cancelled",
				Message: fmt.Sprintf("Backup of '%s' was cancelled.", item.World),
			})
		}
	}

	ok := result.Count(backupmgr.StatusSucceeded)
	level := LevelSuccess
	if ok != len(result.Items) {
		level = LevelWarning
	}
	notices = append(notices, Notice{
		Level:   level,
		Title:   "Backup",
		Message: fmt.Sprintf("%d of %d world(s) backed up to %s.", ok, len(result.Items), h.Manager().ContainerPath(location)),
	})
	return result, notices
}

// HandleExport restores a backed-up world to the discovery path, failing
// early when the backup does not exist.
func (h *Handler) HandleExport(ctx context.Context, world, location string, confirm backupmgr.ConfirmFunc) (backupmgr.Outcome, Notice) {
	if world == "" {
		return backupmgr.Outcome{Status: backupmgr.StatusSkipped}, Notice{Level: LevelError, Title: "Error", Message: "No world selected."}
	}
	if err := backupmgr.ValidateWorldName(world); err != nil {
		return backupmgr.Outcome{World: world, Status: backupmgr.StatusFailed, Err: err}, invalidWorldNotice(world)
	}
	location = h.location(location)
	if location == "" {
		return backupmgr.Outcome{Status: backupmgr.StatusFailed, Err: ErrNoBackupLocation}, Notice{Level: LevelError, Title: "Error", Message: "No backup location chosen."}
	}
	outcome, err := h.Manager().Export(ctx, location, world, h.store.Preferences().WorldPath, confirm)
	return outcome, restoreNotice(world, outcome, err)
}

// HandleExtract restores a backed-up world to the discovery path.
func (h *Handler) HandleExtract(ctx context.Context, world, location string, confirm backupmgr.ConfirmFunc) (backupmgr.Outcome, Notice) {
	if world == "" {
		return backupmgr.Outcome{Status: backupmgr.StatusSkipped}, Notice{Level: LevelError, Title: "Error", Message: "No world selected."}
	}
	if err := backupmgr.ValidateWorldName(world); err != nil {
		return backupmgr.Outcome{World: world, Status: backupmgr.StatusFailed, Err: err}, invalidWorldNotice(world)
	}
	location = h.location(location)
	if location == "" {
		return backupmgr.Outcome{Status: backupmgr.StatusFailed, Err: ErrNoBackupLocation}, Notice{Level: LevelError, Title: "Error", Message: "No backup location chosen."}
	}
	outcome, err := h.Manager().Extract(ctx, location, world, h.store.Preferences().WorldPath, confirm)
	return outcome, restoreNotice(world, outcome, err)
}

func invalidWorldNotice(world string) Notice {
	return Notice{Level: LevelError, Title: "Error", Message: fmt.Sprintf("'%s' is not a valid world name.", world)}
}

func restoreNotice(world string, outcome backupmgr.Outcome, err error) Notice {
	switch {
	case errors.Is(err, backupmgr.ErrBackupNotFound):
		return Notice{Level: LevelError, Title: "Error", Message: fmt.Sprintf("The world '%s' does not exist in backups.", world)}
	case err != nil:
		return Notice{Level: LevelError, Title: "Error", Message: fmt.Sprintf("An error occurred while extracting the world '%s': %s", world, describe(err))}
	case outcome.Status == backupmgr.StatusSkipped:
		return Notice{Level: LevelInfo, Title: "Skipped", Message: fmt.Sprintf("The world '%s' already exists and was left unchanged.", world)}
	default:
		return Notice{Level: LevelSuccess, Title: "Success", Message: fmt.Sprintf("World '%s' has been restored to the main location.", world)}
	}
}

// HandleChangeWorldPath makes path the new discovery path.
func (h *Handler) HandleChangeWorldPath(path string) Notice {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Notice{Level: LevelError, Title: "Error", Message: err.Error()}
	}
	info, err := os.Stat(abs)
	if err != nil {
		return Notice{Level: LevelError, Title: "Error", Message: fmt.Sprintf("Cannot use %s: %s", abs, err.Error())}
	}
	if !info.IsDir() {
		return Notice{Level: LevelError, Title: "Error", Message: fmt.Sprintf("Cannot use %s: %s", abs, ErrNotADirectory)}
	}
	if err := h.store.SetWorldPath(abs); err != nil {
		return Notice{Level: LevelError, Title: "Error", Message: fmt.Sprintf("Failed to save preferences: %s", err.Error())}
	}
	return Notice{Level: LevelSuccess, Title: "World Path", Message: fmt.Sprintf("Current World Path: %s", abs)}
}

// describe drops the CopyError wrapper, whose context the notice already names.
func describe(err error) string {
	var copyErr *backupmgr.CopyError
	if errors.As(err, &copyErr) {
		if errors.Is(copyErr.Err, backupmgr.ErrDestinationExists) {
			return fmt.Sprintf("%s already exists", copyErr.Destination)
		}
		return copyErr.Err.Error()
	}
	return err.Error()
}
