package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli"

	cmdcommon "github.com/todostudio/todostudio/cmd/common"
)

func stopDaemon(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		cmdcommon.PrintRuntimeErr(ctx, "stop", "load_config", err)
		return nil
	}
	pid, err := ReadPidFile(cfg.Dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Println("Daemon is not running (PID file not found)")
			return nil
		}
		cmdcommon.PrintRuntimeErr(ctx, "stop", "read_pid", err)
		return nil
	}
	if !isProcessRunning(pid) {
		fmt.Printf("Daemon is not running (stale PID %d)\n", pid)
		_ = RemovePidFile(cfg.Dir)
		return nil
	}

	fmt.Printf("Stopping daemon (PID %d)...\n", pid)
	if err := killDaemon(pid); err != nil {
		cmdcommon.PrintRuntimeErr(ctx, "stop", "kill", err)
		return nil
	}
	// The daemon removes its PID file on exit.
	fmt.Println("Daemon stopped successfully")
	return nil
}
