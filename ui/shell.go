package ui

import (
	"context"
	"fmt"
	"io"

	"github.com/SteamServerUI/WorldBackupManager/api"
	"github.com/SteamServerUI/WorldBackupManager/backupmgr"
	"github.com/SteamServerUI/WorldBackupManager/global"
)

// Shell is the interactive menu over one api.Handler.
type Shell struct {
	handler *api.Handler
	in      io.Reader
	out     io.Writer
}

// NewShell creates a shell drawing on out and reading keys from in.
func NewShell(handler *api.Handler, in io.Reader, out io.Writer) *Shell {
	return &Shell{handler: handler, in: in, out: out}
}

// Run shows the main menu until the user quits or ctx is done.
func (s *Shell) Run(ctx context.Context) error {
	Header(s.out, global.AppTitle, "by "+global.AppAuthor)
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		action, err := MainMenu(s.handler.Preferences().WorldPath)
		if Aborted(err) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("menu failed: %w", err)
		}

		switch action {
		case ActionBackup:
			err = s.backup(ctx)
		case ActionExport:
			err = s.restore(ctx, "Export a World to Main Location", s.handler.HandleExport)
		case ActionExtract:
			err = s.restore(ctx, "Extract Backed-up World", s.handler.HandleExtract)
		case ActionChangeWorldPath:
			err = s.changeWorldPath()
		case ActionQuit:
			return nil
		}
		if err != nil && !Aborted(err) {
			return err
		}
		fmt.Fprintln(s.out)
	}
}

func (s *Shell) backup(ctx context.Context) error {
	worlds, err := s.handler.Worlds()
	if err != nil {
		Notice(s.out, api.Notice{Level: api.LevelError, Message: err.Error()})
		return nil
	}
	if len(worlds) == 0 {
		Notice(s.out, api.Notice{Level: api.LevelWarning, Message: "No worlds found in " + s.handler.Preferences().WorldPath})
		return nil
	}
	selected, err := SelectWorlds(worlds)
	if err != nil {
		return err
	}
	if len(selected) == 0 {
		Notice(s.out, api.Notice{Level: api.LevelError, Message: "No worlds selected for backup."})
		return nil
	}
	location, err := AskDirectory("Select Backup Location", s.handler.Preferences().LastBackup)
	if err != nil {
		return err
	}

	var notices []api.Notice
	_, err = RunBackupProgress(ctx, s.in, s.out, "Backing up worlds", len(selected),
		func(ctx context.Context, progress backupmgr.ProgressFunc) (backupmgr.BackupResult, error) {
			var result backupmgr.BackupResult
			result, notices = s.handler.HandleBackup(ctx, selected, location, progress)
			return result, nil
		})
	if err != nil {
		return err
	}
	Notices(s.out, notices)
	return nil
}

type restoreFunc func(ctx context.Context, world, location string, confirm backupmgr.ConfirmFunc) (backupmgr.Outcome, api.Notice)

func (s *Shell) restore(ctx context.Context, title string, handle restoreFunc) error {
	location, err := AskDirectory("Backup Location", s.handler.Preferences().LastBackup)
	if err != nil {
		return err
	}
	backups, err := s.handler.Backups(location)
	if err != nil {
		Notice(s.out, api.Notice{Level: api.LevelError, Message: err.Error()})
		return nil
	}
	if len(backups) == 0 {
		Notice(s.out, api.Notice{Level: api.LevelWarning, Message: "No backups found in " + s.handler.Manager().ContainerPath(location)})
		return nil
	}
	world, err := SelectBackup(title, backups)
	if err != nil {
		return err
	}
	_, notice := handle(ctx, world, location, ConfirmOverwrite())
	Notice(s.out, notice)
	return nil
}

func (s *Shell) changeWorldPath() error {
	path, err := AskDirectory("Change Default World Path", s.handler.Preferences().WorldPath)
	if err != nil {
		return err
	}
	Notice(s.out, s.handler.HandleChangeWorldPath(path))
	return nil
}
