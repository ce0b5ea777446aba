package cmd

import (
	"errors"

	"github.com/urfave/cli"

	cmdcommon "github.com/todostudio/todostudio/cmd/common"
	"github.com/todostudio/todostudio/internal/ui"
	"github.com/todostudio/todostudio/pkg/logger"
	"github.com/todostudio/todostudio/pkg/todolib"
)

func tui(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	cfg, err := loadConfig(ctx)
	if err != nil {
		cmdcommon.PrintRuntimeErr(ctx, "tui", "load_config", err)
		return nil
	}
	log := logger.NewNopLogger()
	var seed []todolib.Task
	if cfg.Tasks.SeedExamples {
		seed = todolib.ExampleTasks()
	}

	sctx, cancel := setupShutdownHandler()
	defer cancel()
	err = ui.RunTUI(sctx, &ui.Options{
		Sink:   newSink(cfg, log),
		Seed:   seed,
		Logger: log,
	})
	if errors.Is(err, ui.ErrNotTTY) {
		cmdcommon.PrintRuntimeErr(ctx, "tui", "run", err)
		return nil
	}
	return err
}
