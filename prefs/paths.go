package prefs

import (
	"os"
	"path/filepath"
	"runtime"
)

// DefaultWorldPath returns the platform's Minecraft saves directory.
func DefaultWorldPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	switch runtime.GOOS {
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		return filepath.Join(appData, ".minecraft", "saves")
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "minecraft", "saves")
	default:
		return filepath.Join(home, ".minecraft", "saves")
	}
}
