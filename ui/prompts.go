package ui

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"

	"github.com/SteamServerUI/WorldBackupManager/backupmgr"
)

// IsInteractive reports whether f is a terminal.
func IsInteractive(f *os.File) bool {
	if f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Aborted reports whether err came from the user leaving a prompt.
func Aborted(err error) bool {
	return errors.Is(err, huh.ErrUserAborted)
}

// Action is a main menu entry.
type Action string

const (
	ActionBackup          Action = "backup"
	ActionExport          Action = "export"
	ActionExtract         Action = "extract"
	ActionChangeWorldPath Action = "world-path"
	ActionQuit            Action = "quit"
)

// MainMenu asks for the next action.
func MainMenu(worldPath string) (Action, error) {
	action := ActionBackup
	err := huh.NewSelect[Action]().
		Title("Current World Path: " + worldPath).
		Options(
			huh.NewOption("Backup Minecraft World", ActionBackup),
			huh.NewOption("Export a World to Main Location", ActionExport),
			huh.NewOption("Extract Backed-up World", ActionExtract),
			huh.NewOption("Change Default World Path", ActionChangeWorldPath),
			huh.NewOption("Quit", ActionQuit),
		).
		Value(&action).
		Run()
	return action, err
}

// SelectWorlds lets the user tick the worlds to back up.
func SelectWorlds(worlds []string) ([]string, error) {
	var selected []string
	err := huh.NewForm(huh.NewGroup(
		huh.NewMultiSelect[string]().
			Title("Select Worlds to Backup").
			Options(huh.NewOptions(worlds...)...).
			Height(min(len(worlds)+2, 15)).
			Value(&selected),
	)).Run()
	return selected, err
}

// AskDirectory asks for a directory path, prefilled with current.
func AskDirectory(title, current string) (string, error) {
	value := current
	err := huh.NewInput().
		Title(title).
		Value(&value).
		Validate(func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("a directory is required")
			}
			return nil
		}).
		Run()
	return strings.TrimSpace(value), err
}

// SelectBackup lets the user pick one backed-up world.
func SelectBackup(title string, worlds []string) (string, error) {
	var world string
	err := huh.NewSelect[string]().
		Title(title).
		Options(huh.NewOptions(worlds...)...).
		Value(&world).
		Run()
	return world, err
}

// ConfirmOverwrite asks before an existing world is replaced.
func ConfirmOverwrite() backupmgr.ConfirmFunc {
	return func(destination string) (bool, error) {
		overwrite := false
		err := huh.NewConfirm().
			Title("Overwrite").
			Description(fmt.Sprintf("The world at %s already exists. Do you want to overwrite it?", destination)).
			Affirmative("Yes").
			Negative("No").
			Value(&overwrite).
			Run()
		if Aborted(err) {
			return false, nil
		}
		return overwrite, err
	}
}

// FixedAnswer returns a ConfirmFunc that always answers yes.
func FixedAnswer(yes bool) backupmgr.ConfirmFunc {
	return func(string) (bool, error) {
		return yes, nil
	}
}
