package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/SteamServerUI/WorldBackupManager/backupmgr"
	"github.com/SteamServerUI/WorldBackupManager/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCommand().ExecuteContext(ctx)

	stop()
	if backupmgr.GlobalBackupManager != nil {
		backupmgr.GlobalBackupManager.Shutdown()
	}
	logging.Sync()

	if err != nil {
		os.Exit(1)
	}
}
