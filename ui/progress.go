package ui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/SteamServerUI/WorldBackupManager/backupmgr"
)

const maxBarWidth = 60

// BackupRunner performs a backup, reporting through progress.
type BackupRunner func(ctx context.Context, progress backupmgr.ProgressFunc) (backupmgr.BackupResult, error)

type itemDoneMsg backupmgr.Progress

type backupDoneMsg struct {
	result backupmgr.BackupResult
	err    error
}

type progressModel struct {
	title      string
	bar        progress.Model
	total      int
	done       int
	lines      []string
	cancel     context.CancelFunc
	cancelling bool
	finished   bool
	result     backupmgr.BackupResult
	err        error
}

func newProgressModel(title string, total int, cancel context.CancelFunc) progressModel {
	return progressModel{
		title:  title,
		bar:    progress.New(progress.WithGradient(string(ColorDirt), string(ColorGrass)), progress.WithWidth(40)),
		total:  total,
		cancel: cancel,
	}
}

func (m progressModel) Init() tea.Cmd {
	return nil
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			// a second press leaves the view; the backup still stops first
			if m.cancelling {
				return m, tea.Quit
			}
			if m.cancel != nil {
				m.cancel()
			}
			m.cancelling = true
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.bar.Width = min(msg.Width-4, maxBarWidth)
		return m, nil
	case itemDoneMsg:
		m.done = msg.Done
		m.lines = append(m.lines, ItemLine(backupmgr.Progress(msg)))
		return m, nil
	case backupDoneMsg:
		m.finished = true
		m.result = msg.result
		m.err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m progressModel) percent() float64 {
	if m.total == 0 {
		return 0
	}
	return float64(m.done) / float64(m.total)
}

func (m progressModel) View() string {
	var b strings.Builder
	b.WriteString(Styles.Title.Render(m.title))
	b.WriteString("\n\n")
	b.WriteString(m.bar.ViewAs(m.percent()))
	b.WriteString(Styles.Muted.Render(fmt.Sprintf("  %d/%d", m.done, m.total)))
	b.WriteString("\n\n")
	for _, line := range m.lines {
		b.WriteString(line)
		b.WriteString("\n")
	}
	switch {
	case m.finished:
	case m.cancelling:
		b.WriteString(Styles.Warning.Render("Cancelling after the current file... (press again to leave)"))
		b.WriteString("\n")
	default:
		b.WriteString(Styles.Muted.Render("esc to cancel"))
		b.WriteString("\n")
	}
	return b.String()
}

// RunBackupProgress runs the backup on its own goroutine while a progress bar
// is drawn on out. Cancelling from the keyboard cancels the copy. It returns
// only after the backup has stopped, with the backup's own result.
func RunBackupProgress(ctx context.Context, in io.Reader, out io.Writer, title string, total int, run BackupRunner) (backupmgr.BackupResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newProgressModel(title, total, cancel), tea.WithInput(in), tea.WithOutput(out))

	var (
		result backupmgr.BackupResult
		runErr error
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		result, runErr = run(ctx, func(pr backupmgr.Progress) {
			p.Send(itemDoneMsg(pr))
		})
		p.Send(backupDoneMsg{result: result, err: runErr})
	}()

	_, err := p.Run()
	// the view can exit before the backup does (signals, a second cancel key)
	cancel()
	<-done

	if err != nil {
		return result, fmt.Errorf("progress view failed: %w", err)
	}
	return result, runErr
}
