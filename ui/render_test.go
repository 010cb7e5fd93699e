package ui

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/SteamServerUI/WorldBackupManager/api"
	"github.com/SteamServerUI/WorldBackupManager/backupmgr"
	"github.com/SteamServerUI/WorldBackupManager/prefs"
)

func TestNames(t *testing.T) {
	worlds := []string{"Survival", "Creative"}

	var buf bytes.Buffer
	require.NoError(t, Names(&buf, "worlds", worlds, FormatText))
	assert.Contains(t, buf.String(), "Survival")
	assert.Contains(t, buf.String(), "Creative")

	buf.Reset()
	require.NoError(t, Names(&buf, "worlds", worlds, FormatJSON))
	var fromJSON map[string][]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &fromJSON))
	assert.Equal(t, worlds, fromJSON["worlds"])

	buf.Reset()
	require.NoError(t, Names(&buf, "worlds", worlds, FormatYAML))
	var fromYAML map[string][]string
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &fromYAML))
	assert.Equal(t, worlds, fromYAML["worlds"])

	buf.Reset()
	require.NoError(t, Names(&buf, "worlds", nil, FormatText))
	assert.Contains(t, buf.String(), "(none)")

	assert.Error(t, Names(&buf, "worlds", worlds, "xml"))
}

func TestBackups(t *testing.T) {
	backups := []backupmgr.BackupInfo{
		{World: "Survival", Path: "/b/Minecraft_Backups/Survival_backup", ModTime: time.Now().Add(-2 * time.Hour), Size: 2048},
		{World: "Creative", Path: "/b/Minecraft_Backups/Creative_backup", ModTime: time.Now().Add(-48 * time.Hour), Size: 10},
	}

	var buf bytes.Buffer
	require.NoError(t, Backups(&buf, backups, FormatText))
	assert.Contains(t, buf.String(), "Survival")
	assert.Contains(t, buf.String(), "2.0 kB")
	assert.Contains(t, buf.String(), "2 hours ago")

	buf.Reset()
	require.NoError(t, Backups(&buf, backups, FormatYAML))
	var decoded struct {
		Backups []struct {
			World string `yaml:"world"`
			Size  int64  `yaml:"size"`
		} `yaml:"backups"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded.Backups, 2)
	assert.Equal(t, "Creative", decoded.Backups[1].World)
	assert.Equal(t, int64(2048), decoded.Backups[0].Size)
}

func TestPreferences(t *testing.T) {
	p := prefs.Preferences{WorldPath: "/saves"}

	var buf bytes.Buffer
	require.NoError(t, Preferences(&buf, p, "backup_memory.json", FormatText))
	assert.Contains(t, buf.String(), "(not set)")
	assert.Contains(t, buf.String(), "/saves")

	buf.Reset()
	require.NoError(t, Preferences(&buf, p, "backup_memory.json", FormatJSON))
	assert.JSONEq(t, `{"last_backup":"","world_path":"/saves"}`, buf.String())
}

func TestItemLine(t *testing.T) {
	tests := []struct {
		name string
		item backupmgr.Outcome
		want string
	}{
		{"succeeded", backupmgr.Outcome{World: "Survival", Status: backupmgr.StatusSucceeded}, "Survival"},
		{"failed", backupmgr.Outcome{World: "Survival", Status: backupmgr.StatusFailed, Err: errors.New("boom")}, "boom"},
		{"cancelled", backupmgr.Outcome{World: "Survival", Status: backupmgr.StatusCancelled}, "cancelled"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := ItemLine(backupmgr.Progress{Done: 1, Total: 3, Item: tt.item})
			assert.Contains(t, line, "[1/3]")
			assert.Contains(t, line, tt.want)
		})
	}
}

func TestPlainProgressAndNotices(t *testing.T) {
	var buf bytes.Buffer
	PlainProgress(&buf)(backupmgr.Progress{Done: 1, Total: 1, Item: backupmgr.Outcome{World: "Survival", Status: backupmgr.StatusSucceeded}})
	Notices(&buf, []api.Notice{
		{Level: api.LevelError, Message: "No worlds selected for backup."},
		{Level: api.LevelSuccess, Message: "1 of 1 world(s) backed up"},
	})

	out := buf.String()
	assert.Contains(t, out, "[1/1]")
	assert.Contains(t, out, "No worlds selected for backup.")
	assert.Contains(t, out, "1 of 1 world(s) backed up")
}

func TestEvent(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 30, 0, 0, time.Local)
	assert.Contains(t, Event(backupmgr.WorldEvent{World: "Fresh", Op: backupmgr.WorldAdded, Time: at}), "added")
	assert.Contains(t, Event(backupmgr.WorldEvent{World: "Old", Op: backupmgr.WorldRemoved, Time: at}), "removed")
	assert.Contains(t, Event(backupmgr.WorldEvent{World: "Old", Op: backupmgr.WorldRemoved, Time: at}), "12:30:00")
}
