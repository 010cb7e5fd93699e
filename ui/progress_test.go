package ui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SteamServerUI/WorldBackupManager/backupmgr"
)

func TestProgressModelItems(t *testing.T) {
	m := newProgressModel("Backing up worlds", 2, nil)
	assert.Zero(t, m.percent())

	next, cmd := m.Update(itemDoneMsg{
		Done:  1,
		Total: 2,
		Item:  backupmgr.Outcome{World: "Survival", Status: backupmgr.StatusSucceeded},
	})
	assert.Nil(t, cmd)
	m = next.(progressModel)
	assert.Equal(t, 1, m.done)
	assert.InDelta(t, 0.5, m.percent(), 0.001)

	next, _ = m.Update(itemDoneMsg{
		Done:  2,
		Total: 2,
		Item:  backupmgr.Outcome{World: "Creative", Status: backupmgr.StatusFailed, Err: errors.New("disk full")},
	})
	m = next.(progressModel)

	view := m.View()
	assert.Contains(t, view, "Backing up worlds")
	assert.Contains(t, view, "2/2")
	assert.Contains(t, view, "Survival")
	assert.Contains(t, view, "disk full")
	assert.Contains(t, view, "esc to cancel")
}

func TestProgressModelCancelOnce(t *testing.T) {
	for _, key := range []tea.KeyMsg{
		{Type: tea.KeyEsc},
		{Type: tea.KeyCtrlC},
		{Type: tea.KeyRunes, Runes: []rune{'q'}},
	} {
		t.Run(key.String(), func(t *testing.T) {
			calls := 0
			m := newProgressModel("t", 1, func() { calls++ })

			next, cmd := m.Update(key)
			assert.Nil(t, cmd)
			next, cmd = next.(progressModel).Update(key)
			m = next.(progressModel)

			require.NotNil(t, cmd)
			_, quit := cmd().(tea.QuitMsg)
			assert.True(t, quit)
			assert.Equal(t, 1, calls)
			assert.True(t, m.cancelling)
			assert.Contains(t, m.View(), "Cancelling")
		})
	}
}

func TestProgressModelDoneQuits(t *testing.T) {
	m := newProgressModel("t", 1, nil)
	result := backupmgr.BackupResult{Location: "/backups"}

	next, cmd := m.Update(backupDoneMsg{result: result})
	require.NotNil(t, cmd)
	_, quit := cmd().(tea.QuitMsg)
	assert.True(t, quit)

	m = next.(progressModel)
	assert.True(t, m.finished)
	assert.Equal(t, result, m.result)
	assert.NoError(t, m.err)
	assert.NotContains(t, m.View(), "esc to cancel")
}

func TestProgressModelResize(t *testing.T) {
	m := newProgressModel("t", 1, nil)

	next, _ := m.Update(tea.WindowSizeMsg{Width: 200, Height: 40})
	assert.Equal(t, maxBarWidth, next.(progressModel).bar.Width)

	next, _ = m.Update(tea.WindowSizeMsg{Width: 30, Height: 40})
	assert.Equal(t, 26, next.(progressModel).bar.Width)
}

func TestRunBackupProgressWaitsForBackupAfterQuit(t *testing.T) {
	var finished atomic.Bool
	want := backupmgr.BackupResult{
		Location: "/backups",
		Items:    []backupmgr.Outcome{{World: "Survival", Status: backupmgr.StatusCancelled}},
	}

	// first ctrl+c cancels, the second leaves the view while the backup is still winding down
	in := strings.NewReader("\x03\x03")
	var out bytes.Buffer
	result, err := RunBackupProgress(context.Background(), in, &out, "Backing up worlds", 1,
		func(ctx context.Context, progress backupmgr.ProgressFunc) (backupmgr.BackupResult, error) {
			<-ctx.Done()
			time.Sleep(100 * time.Millisecond)
			progress(backupmgr.Progress{Done: 1, Total: 1, Item: want.Items[0]})
			finished.Store(true)
			return want, ctx.Err()
		})

	assert.True(t, finished.Load())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, want, result)
}

func TestRunBackupProgressReturnsBackupResult(t *testing.T) {
	want := backupmgr.BackupResult{
		Location: "/backups",
		Items:    []backupmgr.Outcome{{World: "Survival", Status: backupmgr.StatusSucceeded}},
	}

	var out bytes.Buffer
	result, err := RunBackupProgress(context.Background(), strings.NewReader(""), &out, "Backing up worlds", 1,
		func(ctx context.Context, progress backupmgr.ProgressFunc) (backupmgr.BackupResult, error) {
			progress(backupmgr.Progress{Done: 1, Total: 1, Item: want.Items[0]})
			return want, nil
		})

	require.NoError(t, err)
	assert.Equal(t, want, result)
}
