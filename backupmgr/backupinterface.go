package backupmgr

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/SteamServerUI/WorldBackupManager/config"
	"github.com/SteamServerUI/WorldBackupManager/logging"
)

// GlobalBackupManager is the singleton instance of the backup manager
var GlobalBackupManager *BackupManager

// ManagerConsumer is anything holding a manager reference that must follow reloads.
type ManagerConsumer interface {
	SetManager(m *BackupManager)
}

// Track all consumers that need updating when manager changes
var activeConsumers []ManagerConsumer

// initMutex ensures thread-safe initialization of the global backup manager
var initMutex sync.Mutex

// InitGlobalBackupManager initializes the global backup manager instance
func InitGlobalBackupManager(config BackupConfig, prefs PreferenceRecorder) error {
	// Lock to prevent concurrent initialization
	initMutex.Lock()
	defer initMutex.Unlock()

	// Shut down existing manager if it exists
	if GlobalBackupManager != nil {
		logging.Log(fmt.Sprintf("%s Previous Backup manager found. Shutting it down.", config.Identifier), "Debug")
		GlobalBackupManager.Shutdown()
		GlobalBackupManager = nil // Clear the manager to avoid stale references
	}

	GlobalBackupManager = NewBackupManager(config, prefs)

	// Update all registered consumers with the new manager
	for _, c := range activeConsumers {
		c.SetManager(GlobalBackupManager)
	}

	logging.Log(fmt.Sprintf("%s Backup manager ready (container %s, suffix %s)", config.Identifier, GlobalBackupManager.config.ContainerName, GlobalBackupManager.config.BackupSuffix), "Debug")
	return nil
}

// RegisterConsumer registers c to be updated when the manager changes and
// hands it the current one.
func RegisterConsumer(c ManagerConsumer) {
	initMutex.Lock()
	defer initMutex.Unlock()

	activeConsumers = append(activeConsumers, c)
	if GlobalBackupManager != nil {
		c.SetManager(GlobalBackupManager)
	}
}

// GetBackupConfig returns a properly configured BackupConfig
func GetBackupConfig(cfg *config.Config) BackupConfig {
	id := uuid.New()
	bmIdentifier := "[BM" + id.String()[:6] + "]:"
	return BackupConfig{
		ContainerName: cfg.ContainerName,
		BackupSuffix:  cfg.BackupSuffix,
		Identifier:    bmIdentifier,
	}
}

// ReloadBackupManagerFromConfig reloads the global backup manager with the current config. This should be called whenever the config is changed.
func ReloadBackupManagerFromConfig(cfg *config.Config, prefs PreferenceRecorder) error {
	return InitGlobalBackupManager(GetBackupConfig(cfg), prefs)
}
