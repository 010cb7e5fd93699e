// Package ui is the terminal front-end: styled notices, listings, prompts and
// the backup progress view.
package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/SteamServerUI/WorldBackupManager/api"
)

// Palette, grass and dirt.
var (
	ColorGrass    = lipgloss.Color("#5FAF3A")
	ColorLeaf     = lipgloss.Color("#8BD35A")
	ColorDirt     = lipgloss.Color("#8B5A2B")
	ColorStone    = lipgloss.Color("#7F7F7F")
	ColorGold     = lipgloss.Color("#F4D03F")
	ColorRedstone = lipgloss.Color("#E74C3C")
	ColorDiamond  = lipgloss.Color("#4AEDD9")
)

// Styles provides pre-configured lipgloss styles
var Styles = struct {
	Title   lipgloss.Style
	Muted   lipgloss.Style
	Bold    lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style

	Box      lipgloss.Style
	ErrorBox lipgloss.Style
}{
	Title:   lipgloss.NewStyle().Bold(true).Foreground(ColorLeaf),
	Muted:   lipgloss.NewStyle().Foreground(ColorStone),
	Bold:    lipgloss.NewStyle().Bold(true),
	Success: lipgloss.NewStyle().Foreground(ColorGrass),
	Warning: lipgloss.NewStyle().Foreground(ColorGold),
	Error:   lipgloss.NewStyle().Foreground(ColorRedstone),
	Info:    lipgloss.NewStyle().Foreground(ColorDiamond),

	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDirt).
		Padding(0, 1),
	ErrorBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorRedstone).
		Padding(0, 1),
}

// Icon is a status marker.
type Icon string

const (
	IconSuccess Icon = "✓"
	IconWarning Icon = "⚠"
	IconError   Icon = "✗"
	IconInfo    Icon = "•"
	IconSkipped Icon = "○"
)

// Render returns the icon with appropriate styling
func (i Icon) Render() string {
	switch i {
	case IconSuccess:
		return Styles.Success.Render(string(i))
	case IconWarning:
		return Styles.Warning.Render(string(i))
	case IconError:
		return Styles.Error.Render(string(i))
	case IconSkipped:
		return Styles.Muted.Render(string(i))
	default:
		return Styles.Info.Render(string(i))
	}
}

func levelIcon(l api.Level) Icon {
	switch l {
	case api.LevelSuccess:
		return IconSuccess
	case api.LevelWarning:
		return IconWarning
	case api.LevelError:
		return IconError
	default:
		return IconInfo
	}
}
