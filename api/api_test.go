package api

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SteamServerUI/WorldBackupManager/backupmgr"
	"github.com/SteamServerUI/WorldBackupManager/prefs"
)

type fixture struct {
	handler *Handler
	store   *prefs.Store
	saves   string
	backups string
}

func newFixture(t *testing.T, worlds ...string) fixture {
	t.Helper()
	root := t.TempDir()
	f := fixture{
		saves:   filepath.Join(root, "saves"),
		backups: filepath.Join(root, "backups"),
	}
	for _, w := range worlds {
		dir := filepath.Join(f.saves, w)
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "region"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "level.dat"), []byte(w), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "region", "r.0.0.mca"), []byte("r-"+w), 0o644))
	}

	f.store = prefs.Open(filepath.Join(root, "backup_memory.json"))
	require.NoError(t, f.store.SetWorldPath(f.saves))

	f.handler = NewHandler(f.store)
	m := backupmgr.NewBackupManager(backupmgr.BackupConfig{Identifier: "[BMapi]:"}, f.store)
	t.Cleanup(m.Shutdown)
	f.handler.SetManager(m)
	return f
}

func TestHandleBackupScenario(t *testing.T) {
	f := newFixture(t, "Survival", "Creative")

	worlds, err := f.handler.Worlds()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Survival", "Creative"}, worlds)

	result, notices := f.handler.HandleBackup(context.Background(), []string{"Survival"}, f.backups, nil)
	require.Len(t, result.Items, 1)
	assert.Equal(t, backupmgr.StatusSucceeded, result.Items[0].Status)
	require.Len(t, notices, 1)
	assert.Equal(t, LevelSuccess, notices[0].Level)
	assert.Contains(t, notices[0].Message, "1 of 1")

	entries, err := os.ReadDir(filepath.Join(f.backups, "Minecraft_Backups"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Survival_backup", entries[0].Name())

	p := prefs.Load(f.store.Path())
	assert.Equal(t, f.backups, p.LastBackup)
	assert.Equal(t, f.saves, p.WorldPath)
}

func TestHandleBackupNoSelection(t *testing.T) {
	f := newFixture(t, "Survival")

	result, notices := f.handler.HandleBackup(context.Background(), nil, f.backups, nil)
	assert.Empty(t, result.Items)
	require.Len(t, notices, 1)
	assert.Equal(t, LevelError, notices[0].Level)
	assert.Equal(t, "No worlds selected for backup.", notices[0].Message)
	assert.NoDirExists(t, f.backups)
}

func TestHandleBackupNeedsLocation(t *testing.T) {
	f := newFixture(t, "Survival")

	_, notices := f.handler.HandleBackup(context.Background(), []string{"Survival"}, "", nil)
	require.Len(t, notices, 1)
	assert.Equal(t, LevelError, notices[0].Level)
}

func TestHandleBackupUsesLastLocation(t *testing.T) {
	f := newFixture(t, "Survival", "Creative")

	f.handler.HandleBackup(context.Background(), []string{"Survival"}, f.backups, nil)
	result, _ := f.handler.HandleBackup(context.Background(), []string{"Creative"}, "", nil)

	require.Len(t, result.Items, 1)
	assert.Equal(t, backupmgr.StatusSucceeded, result.Items[0].Status)
	assert.Equal(t, f.backups, result.Location)

	backups, err := f.handler.Backups("")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Survival", "Creative"}, backups)
}

func TestHandleBackupReportsEachFailure(t *testing.T) {
	f := newFixture(t, "Survival", "Creative")

	f.handler.HandleBackup(context.Background(), []string{"Survival"}, f.backups, nil)
	result, notices := f.handler.HandleBackup(context.Background(), []string{"Survival", "Creative"}, f.backups, nil)

	assert.Equal(t, backupmgr.StatusFailed, result.Items[0].Status)
	assert.Equal(t, backupmgr.StatusSucceeded, result.Items[1].Status)
	require.Len(t, notices, 2)
	assert.Equal(t, LevelError, notices[0].Level)
	assert.Contains(t, notices[0].Message, "'Survival'")
	assert.Contains(t, notices[0].Message, "already exists")
	assert.Equal(t, LevelWarning, notices[1].Level)
	assert.Contains(t, notices[1].Message, "1 of 2")
}

func TestHandleExport(t *testing.T) {
	f := newFixture(t, "Survival")
	f.handler.HandleBackup(context.Background(), []string{"Survival"}, f.backups, nil)

	_, notice := f.handler.HandleExport(context.Background(), "Ghost", "", nil)
	assert.Equal(t, LevelError, notice.Level)
	assert.Equal(t, "The world 'Ghost' does not exist in backups.", notice.Message)

	outcome, notice := f.handler.HandleExport(context.Background(), "Survival", "", func(string) (bool, error) { return false, nil })
	assert.Equal(t, backupmgr.StatusSkipped, outcome.Status)
	assert.Equal(t, LevelInfo, notice.Level)

	require.NoError(t, os.RemoveAll(filepath.Join(f.saves, "Survival")))
	outcome, notice = f.handler.HandleExport(context.Background(), "Survival", "", nil)
	assert.Equal(t, backupmgr.StatusSucceeded, outcome.Status)
	assert.Equal(t, LevelSuccess, notice.Level)
	assert.FileExists(t, filepath.Join(f.saves, "Survival", "region", "r.0.0.mca"))
}

func TestHandleExtract(t *testing.T) {
	f := newFixture(t, "Survival")
	f.handler.HandleBackup(context.Background(), []string{"Survival"}, f.backups, nil)

	_, notice := f.handler.HandleExtract(context.Background(), "Ghost", "", nil)
	assert.Equal(t, LevelError, notice.Level)
	assert.Contains(t, notice.Message, "An error occurred while extracting the world 'Ghost'")

	outcome, notice := f.handler.HandleExtract(context.Background(), "Survival", "", func(string) (bool, error) { return true, nil })
	assert.Equal(t, backupmgr.StatusSucceeded, outcome.Status)
	assert.Equal(t, "World 'Survival' has been restored to the main location.", notice.Message)

	_, notice = f.handler.HandleExtract(context.Background(), "", "", nil)
	assert.Equal(t, "No world selected.", notice.Message)
}

func TestHandleRestoreWithoutLocation(t *testing.T) {
	f := newFixture(t, "Survival")

	outcome, notice := f.handler.HandleExtract(context.Background(), "Survival", "", nil)
	assert.ErrorIs(t, outcome.Err, ErrNoBackupLocation)
	assert.Equal(t, LevelError, notice.Level)

	backups, err := f.handler.Backups("")
	require.NoError(t, err)
	assert.Empty(t, backups)
}

func TestHandleChangeWorldPath(t *testing.T) {
	f := newFixture(t)
	other := t.TempDir()

	notice := f.handler.HandleChangeWorldPath(other)
	assert.Equal(t, LevelSuccess, notice.Level)
	assert.Equal(t, other, f.handler.Preferences().WorldPath)
	assert.Equal(t, other, prefs.Load(f.store.Path()).WorldPath)

	file := filepath.Join(other, "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	notice = f.handler.HandleChangeWorldPath(file)
	assert.Equal(t, LevelError, notice.Level)
	assert.Equal(t, other, f.handler.Preferences().WorldPath)

	notice = f.handler.HandleChangeWorldPath(filepath.Join(other, "missing"))
	assert.Equal(t, LevelError, notice.Level)
}

func TestBackupDetails(t *testing.T) {
	f := newFixture(t, "Survival", "Creative")
	f.handler.HandleBackup(context.Background(), []string{"Survival", "Creative"}, f.backups, nil)

	details, err := f.handler.BackupDetails("", 0)
	require.NoError(t, err)
	require.Len(t, details, 2)
	for _, d := range details {
		assert.Positive(t, d.Size)
	}
}

func TestHandlersRejectInvalidWorldNames(t *testing.T) {
	f := newFixture(t, "Survival", "Creative")
	f.handler.HandleBackup(context.Background(), []string{"Survival"}, f.backups, nil)
	yes := func(string) (bool, error) { return true, nil }

	for _, name := range []string{".", "..", "Survival/region", "/etc"} {
		t.Run(name, func(t *testing.T) {
			result, notices := f.handler.HandleBackup(context.Background(), []string{"Creative", name}, f.backups, nil)
			assert.Empty(t, result.Items)
			require.Len(t, notices, 1)
			assert.Equal(t, LevelError, notices[0].Level)
			assert.Contains(t, notices[0].Message, "is not a valid world name")

			outcome, notice := f.handler.HandleExtract(context.Background(), name, "", yes)
			assert.ErrorIs(t, outcome.Err, backupmgr.ErrInvalidWorldName)
			assert.Equal(t, LevelError, notice.Level)

			outcome, notice = f.handler.HandleExport(context.Background(), name, "", yes)
			assert.ErrorIs(t, outcome.Err, backupmgr.ErrInvalidWorldName)
			assert.Equal(t, LevelError, notice.Level)

			worlds, err := f.handler.Worlds()
			require.NoError(t, err)
			assert.ElementsMatch(t, []string{"Survival", "Creative"}, worlds)
			assert.FileExists(t, filepath.Join(f.saves, "Survival", "region", "r.0.0.mca"))
			assert.NoDirExists(t, filepath.Join(f.backups, "Minecraft_Backups", "Creative_backup"))
		})
	}
}
