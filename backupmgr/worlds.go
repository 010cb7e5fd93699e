package backupmgr

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ListWorlds returns the names of the immediate subdirectories of path. A
// missing path has no worlds.
func ListWorlds(path string) ([]string, error) {
	return listDirs(path)
}

func listDirs(path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	names := []string{}
	for _, entry := range entries {
		if isDir(filepath.Join(path, entry.Name()), entry) {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

// isDir follows symlinks so that a linked world still counts as a world.
func isDir(path string, entry fs.DirEntry) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// ValidateWorldName checks that name is a single directory name, so that
// joining it onto a discovery path or backup container stays inside it.
func ValidateWorldName(name string) error {
	if name == "" || name == "." || name == ".." || name != filepath.Base(name) || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidWorldName, name)
	}
	return nil
}

// ContainerPath returns the backup container under backupRoot.
func (m *BackupManager) ContainerPath(backupRoot string) string {
	return filepath.Join(backupRoot, m.config.ContainerName)
}

// BackupPath returns where the backup of world lives under backupRoot.
func (m *BackupManager) BackupPath(backupRoot, world string) string {
	return filepath.Join(m.ContainerPath(backupRoot), world+m.config.BackupSuffix)
}

// ListBackups returns the world names that have a backup under backupRoot.
// The suffix is stripped from each directory name; a directory without it is
// listed as is.
func (m *BackupManager) ListBackups(backupRoot string) ([]string, error) {
	dirs, err := listDirs(m.ContainerPath(backupRoot))
	if err != nil {
		return nil, err
	}

	worlds := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		worlds = append(worlds, m.backupWorld(dir))
	}
	return worlds, nil
}

func (m *BackupManager) backupWorld(dir string) string {
	world, ok := strings.CutSuffix(dir, m.config.BackupSuffix)
	if !ok || world == "" {
		return dir
	}
	return world
}

// ListBackupDetails returns information about available backups
// limit: number of recent backups to return (0 for all)
func (m *BackupManager) ListBackupDetails(backupRoot string, limit int) ([]BackupInfo, error) {
	container := m.ContainerPath(backupRoot)
	dirs, err := listDirs(container)
	if err != nil {
		return nil, err
	}

	backups := make([]BackupInfo, 0, len(dirs))
	for _, dir := range dirs {
		path := filepath.Join(container, dir)
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		size, err := treeSize(path)
		if err != nil {
			m.log(fmt.Sprintf("Could not size backup %s: %s", path, err.Error()), "Debug")
		}
		backups = append(backups, BackupInfo{
			World:   m.backupWorld(dir),
			Path:    path,
			ModTime: info.ModTime(),
			Size:    size,
		})
	}

	// newest first
	sort.SliceStable(backups, func(i, j int) bool {
		return backups[i].ModTime.After(backups[j].ModTime)
	})

	if limit > 0 && limit < len(backups) {
		backups = backups[:limit]
	}
	return backups, nil
}

func treeSize(root string) (int64, error) {
	var total int64
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			info, err := d.Info()
			if err != nil {
				return err
			}
			total += info.Size()
		}
		return nil
	})
	return total, err
}
