package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/SteamServerUI/WorldBackupManager/api"
	"github.com/SteamServerUI/WorldBackupManager/backupmgr"
	"github.com/SteamServerUI/WorldBackupManager/prefs"
)

// Output formats for listings.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Notice writes n as one styled line.
func Notice(w io.Writer, n api.Notice) {
	fmt.Fprintf(w, "%s %s\n", levelIcon(n.Level).Render(), noticeStyle(n.Level).Render(n.Message))
}

// Notices writes every notice.
func Notices(w io.Writer, notices []api.Notice) {
	for _, n := range notices {
		Notice(w, n)
	}
}

func noticeStyle(l api.Level) lipgloss.Style {
	switch l {
	case api.LevelSuccess:
		return Styles.Success
	case api.LevelWarning:
		return Styles.Warning
	case api.LevelError:
		return Styles.Error
	default:
		return Styles.Bold
	}
}

// Header writes a title with a muted subtitle.
func Header(w io.Writer, title, subtitle string) {
	fmt.Fprintln(w, Styles.Title.Render(title))
	if subtitle != "" {
		fmt.Fprintln(w, Styles.Muted.Render(subtitle))
	}
}

// Names writes a listing of names in the given format.
func Names(w io.Writer, key string, names []string, format string) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, map[string][]string{key: names})
	case FormatYAML:
		return writeYAML(w, map[string][]string{key: names})
	case FormatText, "":
		if len(names) == 0 {
			fmt.Fprintln(w, Styles.Muted.Render("(none)"))
			return nil
		}
		for _, n := range names {
			fmt.Fprintf(w, "%s %s\n", IconInfo.Render(), n)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// Backups writes backup details in the given format.
func Backups(w io.Writer, backups []backupmgr.BackupInfo, format string) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, map[string][]backupmgr.BackupInfo{"backups": backups})
	case FormatYAML:
		return writeYAML(w, map[string][]backupmgr.BackupInfo{"backups": backups})
	case FormatText, "":
		if len(backups) == 0 {
			fmt.Fprintln(w, Styles.Muted.Render("(none)"))
			return nil
		}
		width := 0
		for _, b := range backups {
			width = max(width, len(b.World))
		}
		for _, b := range backups {
			fmt.Fprintf(w, "%s %s  %s  %s\n",
				IconInfo.Render(),
				Styles.Bold.Render(b.World+strings.Repeat(" ", width-len(b.World))),
				Styles.Muted.Render(humanize.Time(b.ModTime)),
				humanize.Bytes(uint64(b.Size)))
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// Preferences writes the preferences record in the given format.
func Preferences(w io.Writer, p prefs.Preferences, path, format string) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, p)
	case FormatYAML:
		return writeYAML(w, p)
	case FormatText, "":
		last := p.LastBackup
		if last == "" {
			last = Styles.Muted.Render("(not set)")
		}
		fmt.Fprintf(w, "%s %s\n", Styles.Bold.Render("Preferences file:"), path)
		fmt.Fprintf(w, "%s %s\n", Styles.Bold.Render("Last backup:     "), last)
		fmt.Fprintf(w, "%s %s\n", Styles.Bold.Render("World path:      "), p.WorldPath)
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// Event renders one discovery path change.
func Event(e backupmgr.WorldEvent) string {
	stamp := Styles.Muted.Render(e.Time.Format("15:04:05"))
	if e.Op == backupmgr.WorldAdded {
		return fmt.Sprintf("%s %s %s %s", stamp, IconSuccess.Render(), e.World, Styles.Muted.Render("added"))
	}
	return fmt.Sprintf("%s %s %s %s", stamp, IconWarning.Render(), e.World, Styles.Muted.Render("removed"))
}

// ItemLine renders one finished backup item.
func ItemLine(p backupmgr.Progress) string {
	prefix := Styles.Muted.Render(fmt.Sprintf("[%d/%d]", p.Done, p.Total))
	switch p.Item.Status {
	case backupmgr.StatusSucceeded:
		return fmt.Sprintf("%s %s %s", prefix, IconSuccess.Render(), p.Item.World)
	case backupmgr.StatusCancelled:
		return fmt.Sprintf("%s %s %s %s", prefix, IconSkipped.Render(), p.Item.World, Styles.Muted.Render("cancelled"))
	default:
		return fmt.Sprintf("%s %s %s %s", prefix, IconError.Render(), p.Item.World, Styles.Error.Render(errText(p.Item.Err)))
	}
}

// PlainProgress returns a progress callback writing one line per finished world.
func PlainProgress(w io.Writer) backupmgr.ProgressFunc {
	return func(p backupmgr.Progress) {
		fmt.Fprintln(w, ItemLine(p))
	}
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
