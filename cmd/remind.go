package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli"

	cmdcommon "github.com/todostudio/todostudio/cmd/common"
	"github.com/todostudio/todostudio/common"
	"github.com/todostudio/todostudio/pkg/todocli"
	"github.com/todostudio/todostudio/pkg/todolib"
)

var errNoReminder = errors.New("one of --at or --in is required")

func remind(ctx *cli.Context) error {
	opts, err := reminderOpts(ctx)
	if err != nil {
		return cmdcommon.PrintErrWithCmdHelp(ctx, err)
	}
	if opts.At == "" && !ctx.IsSet("in") && ctx.Args().First() != "help" {
		return cmdcommon.PrintErrWithCmdHelp(ctx, errNoReminder)
	}
	return withTask(ctx, "remind", "set_reminder", func(c *todocli.Client, cctx context.Context, id string) error {
		t, err := c.SetReminder(cctx, id, opts)
		if err != nil {
			return err
		}
		printTask("Reminder set:", t)
		return nil
	})
}

func unremind(ctx *cli.Context) error {
	return withTask(ctx, "unremind", "clear_reminder", func(c *todocli.Client, cctx context.Context, id string) error {
		t, err := c.ClearReminder(cctx, id)
		if err != nil {
			return err
		}
		printTask("Reminder cleared:", t)
		return nil
	})
}

func pending(ctx *cli.Context) error {
	client := newClient(ctx, "pending", nil)
	if client == nil {
		return nil
	}
	defer client.Close()
	cctx, cancel := callCtx()
	defer cancel()
	res, err := client.Pending(cctx)
	if err != nil {
		cmdcommon.PrintRuntimeErr(ctx, "pending", "get_pending", err)
		return nil
	}
	fmt.Print(renderPending(res.Pending, time.Now()))
	return nil
}

func renderPending(items []common.PendingReminder, now time.Time) string {
	if len(items) == 0 {
		return "No reminders scheduled.\n"
	}
	txt := "Scheduled reminders:\n"
	for _, p := range items {
		due := p.DueAt
		txt += fmt.Sprintf("  %-8s  %s  %s (%s)\n",
			shortID(p.ID), todolib.FormatReminder(&due, time.Local), p.Text, todolib.Relative(&due, now))
	}
	return txt
}
