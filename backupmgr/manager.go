package backupmgr

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/SteamServerUI/WorldBackupManager/logging"
)

/*
The BackupManager copies worlds into a backup container and back. Each instance is independent with its
own config and context. Copies run on the caller's goroutine; only WatchWorlds starts background work,
which Shutdown stops.
*/

// Backup copies every world directory in worldPaths into the container under
// backupLocation as <world><suffix>. A failing world is recorded and the
// remaining worlds are still copied. progress may be nil.
func (m *BackupManager) Backup(ctx context.Context, worldPaths []string, backupLocation string, progress ProgressFunc) (BackupResult, error) {
	result := BackupResult{Location: backupLocation}
	if len(worldPaths) == 0 {
		return result, ErrNoSelection
	}

	container := m.ContainerPath(backupLocation)
	if err := os.MkdirAll(container, os.ModePerm); err != nil {
		return result, fmt.Errorf("%s error creating backup folder %s: %w", m.config.Identifier, container, err)
	}

	total := len(worldPaths)
	m.log(fmt.Sprintf("Backing up %d world(s) to %s", total, container), "Info")

	for idx, worldPath := range worldPaths {
		world := filepath.Base(worldPath)
		item := Outcome{
			World:       world,
			Source:      worldPath,
			Destination: m.BackupPath(backupLocation, world),
		}

		if ctx.Err() != nil {
			item.Status = StatusCancelled
			item.Err = ctx.Err()
		} else if err := ValidateWorldName(world); err != nil {
			item.Status = StatusFailed
			item.Err = err
			m.log(fmt.Sprintf("Skipping %s: %s", worldPath, err.Error()), "Error")
		} else if err := copyTree(ctx, worldPath, item.Destination); err != nil {
			item.Status = StatusFailed
			if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
				item.Status = StatusCancelled
			}
			item.Err = &CopyError{World: world, Source: worldPath, Destination: item.Destination, Err: err}
			m.log(fmt.Sprintf("An error occurred while backing up the world '%s': %s", world, err.Error()), "Error")
		} else {
			item.Status = StatusSucceeded
			m.log(fmt.Sprintf("World '%s' backed up successfully!", world), "Info")
		}

		result.Items = append(result.Items, item)
		if progress != nil {
			progress(Progress{Done: idx + 1, Total: total, Item: item})
		}
	}

	if m.prefs != nil {
		if err := m.prefs.SetLastBackup(backupLocation); err != nil {
			m.log(fmt.Sprintf("Failed to save last backup location: %s", err.Error()), "Warn")
		}
	}

	return result, nil
}

// Restore copies backupPath to <discoveryPath>/<worldName>. An existing
// destination is only replaced when confirm agrees; otherwise the restore is
// skipped. A replacement is staged next to the destination and swapped in
// once the copy is complete, so a failed restore leaves the old world intact.
func (m *BackupManager) Restore(ctx context.Context, backupPath, worldName, discoveryPath string, confirm ConfirmFunc) (Outcome, error) {
	dst := filepath.Join(discoveryPath, worldName)
	outcome := Outcome{World: worldName, Source: backupPath, Destination: dst}
	fail := func(err error) (Outcome, error) {
		outcome.Status = StatusFailed
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			outcome.Status = StatusCancelled
		}
		outcome.Err = &CopyError{World: worldName, Source: backupPath, Destination: dst, Err: err}
		return outcome, outcome.Err
	}

	if err := ValidateWorldName(worldName); err != nil {
		outcome.Status = StatusFailed
		outcome.Err = err
		return outcome, err
	}

	info, err := os.Stat(backupPath)
	if err != nil {
		m.log(fmt.Sprintf("Backup of '%s' is not readable: %s", worldName, err.Error()), "Error")
		return fail(err)
	}
	if !info.IsDir() {
		return fail(fmt.Errorf("%s is not a directory", backupPath))
	}

	exists := false
	if _, err := os.Lstat(dst); err == nil {
		exists = true
	} else if !os.IsNotExist(err) {
		return fail(err)
	}

	if exists {
		overwrite := false
		if confirm != nil {
			if overwrite, err = confirm(dst); err != nil {
				return outcome, fmt.Errorf("overwrite confirmation for %s: %w", dst, err)
			}
		}
		if !overwrite {
			outcome.Status = StatusSkipped
			m.log(fmt.Sprintf("Restore of '%s' skipped, %s already exists", worldName, dst), "Info")
			return outcome, nil
		}
	}

	if err := os.MkdirAll(discoveryPath, os.ModePerm); err != nil {
		return fail(err)
	}

	if exists {
		err = replaceTree(ctx, backupPath, dst)
	} else {
		err = copyTree(ctx, backupPath, dst)
	}
	if err != nil {
		m.log(fmt.Sprintf("An error occurred while extracting the world '%s': %s", worldName, err.Error()), "Error")
		return fail(err)
	}

	outcome.Status = StatusSucceeded
	m.log(fmt.Sprintf("World '%s' has been restored to %s", worldName, dst), "Info")
	return outcome, nil
}

// Export restores the backup of worldName stored under backupLocation,
// failing with ErrBackupNotFound when there is none.
func (m *BackupManager) Export(ctx context.Context, backupLocation, worldName, discoveryPath string, confirm ConfirmFunc) (Outcome, error) {
	if err := ValidateWorldName(worldName); err != nil {
		return Outcome{World: worldName, Status: StatusFailed, Err: err}, err
	}
	backupPath := m.BackupPath(backupLocation, worldName)
	if _, err := os.Stat(backupPath); err != nil {
		outcome := Outcome{World: worldName, Source: backupPath, Destination: filepath.Join(discoveryPath, worldName), Status: StatusFailed}
		if os.IsNotExist(err) {
			outcome.Err = fmt.Errorf("the world '%s' does not exist in backups: %w", worldName, ErrBackupNotFound)
		} else {
			outcome.Err = fmt.Errorf("checking backup %s: %w", backupPath, err)
		}
		return outcome, outcome.Err
	}
	return m.Restore(ctx, backupPath, worldName, discoveryPath, confirm)
}

// Extract restores the backup of worldName stored under backupLocation
// without checking for it first; a missing backup fails as a copy error.
func (m *BackupManager) Extract(ctx context.Context, backupLocation, worldName, discoveryPath string, confirm ConfirmFunc) (Outcome, error) {
	return m.Restore(ctx, m.BackupPath(backupLocation, worldName), worldName, discoveryPath, confirm)
}

// Config returns the manager's configuration.
func (m *BackupManager) Config() BackupConfig {
	return m.config
}

func (m *BackupManager) log(message, level string) {
	logging.Log(fmt.Sprintf("%s %s", m.config.Identifier, message), level)
}

// Shutdown stops all backup operations
func (m *BackupManager) Shutdown() {
	m.log("Shutting down backup manager...", "Debug")

	m.mu.Lock()
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}

	if m.watcher != nil {
		m.watcher.close()
		m.watcher = nil
		m.log("File watcher closed", "Debug")
	}
	m.mu.Unlock()

	// Wait for all goroutines to finish
	m.wg.Wait()

	m.log("Backup manager shut down completely", "Debug")
}

// NewBackupManager creates a new BackupManager instance. prefs may be nil.
func NewBackupManager(cfg BackupConfig, prefs PreferenceRecorder) *BackupManager {
	ctx, cancel := context.WithCancel(context.Background())

	if cfg.ContainerName == "" {
		cfg.ContainerName = defaultContainerName
	}
	if cfg.BackupSuffix == "" {
		cfg.BackupSuffix = defaultBackupSuffix
	}

	return &BackupManager{
		config: cfg,
		prefs:  prefs,
		ctx:    ctx,
		cancel: cancel,
	}
}
