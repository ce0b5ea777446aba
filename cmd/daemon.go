package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli"
	"golang.org/x/sync/errgroup"

	cmdcommon "github.com/todostudio/todostudio/cmd/common"
)

func daemon(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	cfg, err := loadConfig(ctx)
	if err != nil {
		cmdcommon.PrintRuntimeErr(ctx, "daemon", "load_config", err)
		return nil
	}
	log := newDaemonLogger(cfg)
	defer log.Close()

	secret, err := resolveToken(cfg, true)
	if err != nil {
		cmdcommon.PrintRuntimeErr(ctx, "daemon", "resolve_token", err)
		return nil
	}

	sctx, cancel := setupShutdownHandler()
	defer cancel()

	comps, err := initDaemonComponents(sctx, cfg, secret, log)
	if err != nil {
		cmdcommon.PrintRuntimeErr(ctx, "daemon", "init_components", err)
		return nil
	}

	if err := WritePidFile(cfg.Dir); err != nil {
		log.Warning("Could not write PID file: %v", err)
	}
	defer func() {
		if err := RemovePidFile(cfg.Dir); err != nil {
			log.Warning("Could not remove PID file: %v", err)
		}
	}()

	log.Info("Listening on %s", cfg.Listen)
	g, gctx := errgroup.WithContext(sctx)
	g.Go(func() error {
		return comps.Studio.Run(gctx)
	})
	g.Go(func() error {
		err := comps.Runner.Start(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	runErr := g.Wait()
	if err := comps.Close(); err != nil {
		log.Error("Shutdown: %v", err)
	}
	if runErr != nil {
		cmdcommon.PrintRuntimeErr(ctx, "daemon", "serve", fmt.Errorf("listen on %s: %w", cfg.Listen, runErr))
	}
	return nil
}
