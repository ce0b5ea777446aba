package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli"

	cmdcommon "github.com/todostudio/todostudio/cmd/common"
	"github.com/todostudio/todostudio/common"
	"github.com/todostudio/todostudio/pkg/todocli"
	"github.com/todostudio/todostudio/pkg/todolib"
)

const callTimeout = 10 * time.Second

var (
	listFilter string

	lsFlags = []cli.Flag{
		cli.StringFlag{
			Name:        "filter, f",
			Usage:       "show all, active or completed tasks",
			Value:       string(todolib.FilterAll),
			Destination: &listFilter,
		},
	}

	reminderFlags = []cli.Flag{
		cli.StringFlag{
			Name:  "at",
			Usage: `remind at this time, e.g. "2026-03-04T09:30" or RFC 3339`,
		},
		cli.DurationFlag{
			Name:  "in",
			Usage: "remind after this delay, e.g. 45m or 2h30m",
		},
	}
)

var (
	errMissingID     = errors.New("missing task id")
	errMissingText   = errors.New("missing task text")
	errBothReminders = errors.New("--at and --in are mutually exclusive")
)

// reminderOpts reads --at/--in. An --at value that cannot be parsed is
// rejected here rather than silently dropped by the daemon.
func reminderOpts(ctx *cli.Context) (todocli.ReminderOpts, error) {
	at, in := strings.TrimSpace(ctx.String("at")), ctx.Duration("in")
	if at != "" && ctx.IsSet("in") {
		return todocli.ReminderOpts{}, errBothReminders
	}
	if at == "" {
		return todocli.ReminderOpts{In: in}, nil
	}
	t := todolib.ParseReminder(at, time.Local)
	if t == nil {
		return todocli.ReminderOpts{}, fmt.Errorf("invalid --at value %q", at)
	}
	return todocli.ReminderOpts{At: t.Format(time.RFC3339)}, nil
}

func callCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), callTimeout)
}

// printTaskErr reports a failed call, naming the task when it was not found.
func printTaskErr(ctx *cli.Context, cmdName, action, id string, err error) {
	if todocli.IsNotFound(err) {
		fmt.Printf("%s: no task matches %q\n", ctx.App.HelpName, id)
		return
	}
	cmdcommon.PrintRuntimeErr(ctx, cmdName, action, err)
}

func printTask(prefix string, t *common.TaskView) {
	fmt.Printf("%s %s (%s)\n", prefix, t.Text, shortID(t.ID))
	if t.ReminderLabel != "" {
		fmt.Printf("Reminder: %s [%s]\n", t.ReminderLabel, t.Status)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func add(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	text := strings.Join(ctx.Args(), " ")
	if strings.TrimSpace(text) == "" {
		return cmdcommon.PrintErrWithCmdHelp(ctx, errMissingText)
	}
	opts, err := reminderOpts(ctx)
	if err != nil {
		return cmdcommon.PrintErrWithCmdHelp(ctx, err)
	}
	client := newClient(ctx, "add", nil)
	if client == nil {
		return nil
	}
	defer client.Close()
	cctx, cancel := callCtx()
	defer cancel()
	t, err := client.Add(cctx, text, opts)
	if err != nil {
		cmdcommon.PrintRuntimeErr(ctx, "add", "add_task", err)
		return nil
	}
	printTask("Added:", t)
	return nil
}

func list(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	// list is also the app action, so a mistyped command lands here.
	if ctx.Command.Name == "" && ctx.Args().Present() {
		return cmdcommon.PrintErrWithHelp(ctx, fmt.Errorf("unknown command %q", ctx.Args().First()))
	}
	client := newClient(ctx, "list", nil)
	if client == nil {
		return nil
	}
	defer client.Close()
	cctx, cancel := callCtx()
	defer cancel()
	l, err := client.List(cctx, ctx.String("filter"))
	if err != nil {
		cmdcommon.PrintRuntimeErr(ctx, "list", "get_list", err)
		return nil
	}
	fmt.Print(renderList(l))
	return nil
}

func renderList(l *common.ListResponse) string {
	txt := fmt.Sprintf("%s tasks (%s):\n", todolib.Filter(l.Filter).Label(), l.Summary)
	if len(l.Tasks) == 0 {
		return txt + "\n" + l.Empty + "\n"
	}
	txt += "\n---------------------------------------------------------------------------"
	txt += "\n|    ID    | Done |             Task             |        Reminder        |"
	txt += "\n|----------|------|------------------------------|------------------------|"
	for _, t := range l.Tasks {
		mark := " "
		if t.Done {
			mark = "x"
		}
		name := t.Text
		switch n := len(name); {
		case n > 28:
			name = name[:25] + "..."
		case n < 28:
			name += strings.Repeat(" ", 28-n)
		}
		reminder := reminderCell(t)
		txt += fmt.Sprintf("\n| %s | %s | %s | %s |",
			cmdcommon.Beaut(shortID(t.ID), 8), cmdcommon.Beaut(mark, 4), name, cmdcommon.Beaut(reminder, 22))
	}
	txt += "\n---------------------------------------------------------------------------\n"
	return txt
}

func reminderCell(t common.TaskView) string {
	switch t.Status {
	case todolib.ReminderNotSet:
		return "-"
	case todolib.ReminderScheduled:
		return t.ReminderLabel
	default:
		return string(t.Status)
	}
}

func done(ctx *cli.Context) error {
	return withTask(ctx, "done", "toggle_task", func(c *todocli.Client, cctx context.Context, id string) error {
		t, err := c.Toggle(cctx, id)
		if err != nil {
			return err
		}
		if t.Done {
			printTask("Completed:", t)
		} else {
			printTask("Reopened:", t)
		}
		return nil
	})
}

func remove(ctx *cli.Context) error {
	return withTask(ctx, "rm", "remove_task", func(c *todocli.Client, cctx context.Context, id string) error {
		t, err := c.Remove(cctx, id)
		if err != nil {
			return err
		}
		printTask("Removed:", t)
		return nil
	})
}

func clearCompleted(ctx *cli.Context) error {
	client := newClient(ctx, "clear", nil)
	if client == nil {
		return nil
	}
	defer client.Close()
	cctx, cancel := callCtx()
	defer cancel()
	res, err := client.ClearCompleted(cctx)
	if err != nil {
		cmdcommon.PrintRuntimeErr(ctx, "clear", "clear_completed", err)
		return nil
	}
	if res.Removed == 0 {
		fmt.Println("No completed tasks to clear.")
		return nil
	}
	fmt.Printf("Cleared %d completed task(s). %s\n", res.Removed, res.Message)
	return nil
}

// withTask runs fn against the task named by the first argument.
func withTask(ctx *cli.Context, cmdName, action string, fn func(*todocli.Client, context.Context, string) error) error {
	id := ctx.Args().First()
	if id == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	if id == "" {
		return cmdcommon.PrintErrWithCmdHelp(ctx, errMissingID)
	}
	client := newClient(ctx, cmdName, nil)
	if client == nil {
		return nil
	}
	defer client.Close()
	cctx, cancel := callCtx()
	defer cancel()
	if err := fn(client, cctx, id); err != nil {
		printTaskErr(ctx, cmdName, action, id, err)
	}
	return nil
}
