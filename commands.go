package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/SteamServerUI/WorldBackupManager/api"
	"github.com/SteamServerUI/WorldBackupManager/backupmgr"
	"github.com/SteamServerUI/WorldBackupManager/config"
	"github.com/SteamServerUI/WorldBackupManager/global"
	"github.com/SteamServerUI/WorldBackupManager/logging"
	"github.com/SteamServerUI/WorldBackupManager/prefs"
	"github.com/SteamServerUI/WorldBackupManager/ui"
)

var errFailures = errors.New("one or more operations failed")

// app is the state shared by all commands of one invocation.
type app struct {
	configFile string
	prefsFile  string
	logLevel   string

	cfg     *config.Config
	store   *prefs.Store
	handler *api.Handler
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configFile)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if a.prefsFile != "" {
		cfg.PreferencesFile = a.prefsFile
	}
	if err := logging.Init(cfg.LogLevel, cfg.LogFormat, cfg.LogFile); err != nil {
		return err
	}
	a.cfg = cfg

	a.store = prefs.Open(cfg.PreferencesFile)
	if err := backupmgr.ReloadBackupManagerFromConfig(cfg, a.store); err != nil {
		return fmt.Errorf("failed to start backup manager: %w", err)
	}
	a.handler = api.NewHandler(a.store)
	logging.Log(fmt.Sprintf("Using preferences file %s", a.store.Path()), "Debug")
	return nil
}

func interactive(cmd *cobra.Command) bool {
	in, ok := cmd.InOrStdin().(*os.File)
	if !ok {
		return false
	}
	out, ok := cmd.OutOrStdout().(*os.File)
	if !ok {
		return false
	}
	return ui.IsInteractive(in) && ui.IsInteractive(out)
}

// report prints notices and fails if any of them is an error.
func report(w io.Writer, notices ...api.Notice) error {
	ui.Notices(w, notices)
	for _, n := range notices {
		if n.Level == api.LevelError {
			return errFailures
		}
	}
	return nil
}

// newRootCommand creates the worldbackup command tree.
func newRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   global.AppName,
		Short: "Back up and restore Minecraft worlds",
		Long: "Copy Minecraft worlds from the saves directory into a " + global.ContainerName +
			" folder and restore them back. Run without arguments in a terminal for the interactive menu.",
		Version:           global.Version,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !interactive(cmd) {
				return cmd.Help()
			}
			return ui.NewShell(a.handler, cmd.InOrStdin(), cmd.OutOrStdout()).Run(cmd.Context())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "config file (default ./"+global.ConfigName+".yaml)")
	pf.StringVar(&a.prefsFile, "prefs", "", "preferences file (default "+global.PreferencesFile+")")
	pf.StringVar(&a.logLevel, "log-level", "", "log level: Debug, Info, Warn or Error")

	root.AddCommand(
		newWorldsCommand(a),
		newBackupsCommand(a),
		newBackupCommand(a),
		newRestoreCommand(a),
		newExportCommand(a),
		newSetWorldPathCommand(a),
		newPrefsCommand(a),
		newWatchCommand(a),
		newShellCommand(a),
	)
	return root
}

// newWorldsCommand creates the worlds command
func newWorldsCommand(a *app) *cobra.Command {
	var path, output string
	cmd := &cobra.Command{
		Use:   "worlds",
		Short: "List the worlds in the world path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := path
			if dir == "" {
				dir = a.store.Preferences().WorldPath
			}
			worlds, err := backupmgr.ListWorlds(dir)
			if err != nil {
				return err
			}
			return ui.Names(cmd.OutOrStdout(), "worlds", worlds, output)
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "world path (default from preferences)")
	cmd.Flags().StringVarP(&output, "output", "o", ui.FormatText, "output format: text, json or yaml")
	return cmd
}

// newBackupsCommand creates the backups command
func newBackupsCommand(a *app) *cobra.Command {
	var from, output string
	var limit int
	cmd := &cobra.Command{
		Use:   "backups",
		Short: "List backed-up worlds, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if from == "" && a.store.Preferences().LastBackup == "" {
				return fmt.Errorf("%w: pass --from", api.ErrNoBackupLocation)
			}
			backups, err := a.handler.BackupDetails(from, limit)
			if err != nil {
				return err
			}
			return ui.Backups(cmd.OutOrStdout(), backups, output)
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "backup location (default last used)")
	cmd.Flags().IntVar(&limit, "limit", 0, "show at most this many backups (0 for all)")
	cmd.Flags().StringVarP(&output, "output", "o", ui.FormatText, "output format: text, json or yaml")
	return cmd
}

// newBackupCommand creates the backup command
func newBackupCommand(a *app) *cobra.Command {
	var to string
	var all bool
	cmd := &cobra.Command{
		Use:   "backup [world...]",
		Short: "Back up worlds from the world path",
		Long: "Copy each named world into <location>/" + global.ContainerName + "/<world>" + global.BackupSuffix +
			". Existing backups are never overwritten.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			tty := interactive(cmd)

			worlds := args
			switch {
			case all && len(args) > 0:
				return errors.New("pass world names or --all, not both")
			case all:
				found, err := a.handler.Worlds()
				if err != nil {
					return err
				}
				worlds = found
			case len(worlds) == 0 && tty:
				found, err := a.handler.Worlds()
				if err != nil {
					return err
				}
				if len(found) == 0 {
					return fmt.Errorf("no worlds found in %s", a.store.Preferences().WorldPath)
				}
				if worlds, err = ui.SelectWorlds(found); err != nil {
					return promptErr(err)
				}
			}

			location := to
			if location == "" && tty && len(worlds) > 0 {
				var err error
				if location, err = ui.AskDirectory("Select Backup Location", a.store.Preferences().LastBackup); err != nil {
					return promptErr(err)
				}
			}

			var (
				result  backupmgr.BackupResult
				notices []api.Notice
			)
			if tty && len(worlds) > 0 {
				var err error
				result, err = ui.RunBackupProgress(cmd.Context(), cmd.InOrStdin(), out, "Backing up worlds", len(worlds),
					func(ctx context.Context, progress backupmgr.ProgressFunc) (backupmgr.BackupResult, error) {
						var r backupmgr.BackupResult
						r, notices = a.handler.HandleBackup(ctx, worlds, location, progress)
						return r, nil
					})
				if err != nil {
					return err
				}
			} else {
				result, notices = a.handler.HandleBackup(cmd.Context(), worlds, location, ui.PlainProgress(out))
			}

			if err := report(out, notices...); err != nil {
				return err
			}
			if result.Failed() {
				return errFailures
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "backup location (default last used)")
	cmd.Flags().BoolVar(&all, "all", false, "back up every world in the world path")
	return cmd
}

type restoreAction func(h *api.Handler, ctx context.Context, world, location string, confirm backupmgr.ConfirmFunc) (backupmgr.Outcome, api.Notice)

// newRestoreCommand creates the restore command
func newRestoreCommand(a *app) *cobra.Command {
	return restoreCommand(a, "restore <world>", "Restore a backed-up world to the world path", (*api.Handler).HandleExtract)
}

// newExportCommand creates the export command
func newExportCommand(a *app) *cobra.Command {
	cmd := restoreCommand(a, "export <world>", "Export a backed-up world to the main location", (*api.Handler).HandleExport)
	cmd.Long = "Like restore, but fails before touching the world path when the backup does not exist."
	return cmd
}

func restoreCommand(a *app, use, short string, action restoreAction) *cobra.Command {
	var from string
	var yes bool
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var confirm backupmgr.ConfirmFunc
			switch {
			case yes:
				confirm = ui.FixedAnswer(true)
			case interactive(cmd):
				confirm = ui.ConfirmOverwrite()
			}

			outcome, notice := action(a.handler, cmd.Context(), args[0], from, confirm)
			if err := report(cmd.OutOrStdout(), notice); err != nil {
				return err
			}
			if outcome.Status == backupmgr.StatusFailed {
				return errFailures
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "backup location (default last used)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "overwrite an existing world without asking")
	return cmd
}

// newSetWorldPathCommand creates the set-world-path command
func newSetWorldPathCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set-world-path <dir>",
		Short: "Change the default world path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return report(cmd.OutOrStdout(), a.handler.HandleChangeWorldPath(args[0]))
		},
	}
}

// newPrefsCommand creates the prefs command
func newPrefsCommand(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Print the saved preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ui.Preferences(cmd.OutOrStdout(), a.store.Preferences(), a.store.Path(), output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", ui.FormatText, "output format: text, json or yaml")
	return cmd
}

// newWatchCommand creates the watch command
func newWatchCommand(a *app) *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Report worlds appearing in or leaving the world path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := path
			if dir == "" {
				dir = a.store.Preferences().WorldPath
			}
			out := cmd.OutOrStdout()
			ui.Header(out, "Watching "+dir, "ctrl+c to stop")
			return a.handler.Manager().WatchWorlds(cmd.Context(), dir, func(e backupmgr.WorldEvent) {
				fmt.Fprintln(out, ui.Event(e))
			})
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "world path (default from preferences)")
	return cmd
}

// newShellCommand creates the shell command
func newShellCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Open the interactive menu",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !interactive(cmd) {
				return errors.New("the interactive menu needs a terminal")
			}
			return ui.NewShell(a.handler, cmd.InOrStdin(), cmd.OutOrStdout()).Run(cmd.Context())
		},
	}
}

func promptErr(err error) error {
	if ui.Aborted(err) {
		return nil
	}
	return err
}
