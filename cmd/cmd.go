package cmd

import (
	"fmt"
	"runtime"

	"github.com/urfave/cli"

	cmdcommon "github.com/todostudio/todostudio/cmd/common"
)

type BuildArgs struct {
	Version   string
	BuildType string
	Date      string
	Commit    string
}

var currentBuildArgs BuildArgs

func Execute(args []string, bArgs BuildArgs) error {
	currentBuildArgs = bArgs
	app := cli.App{
		Name:                  "todostudio",
		HelpName:              "todostudio",
		Usage:                 "A task list with one-time reminders.",
		Version:               fmt.Sprintf("%s-%s", bArgs.Version, bArgs.BuildType),
		UsageText:             "todostudio [global options] <command> [arguments...]",
		Description:           DESCRIPTION,
		CustomAppHelpTemplate: HELP_TEMPL,
		OnUsageError:          cmdcommon.UsageErrorCallback,
		Flags:                 globalFlags,
		Commands: []cli.Command{
			{
				Name:               "daemon",
				Usage:              "run the reminder daemon",
				Description:        DaemonDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				OnUsageError:       cmdcommon.UsageErrorCallback,
				Action:             daemon,
			},
			{
				Name:               "stop",
				Usage:              "stop the running daemon",
				Description:        StopDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             stopDaemon,
			},
			{
				Name:                   "add",
				Aliases:                []string{"a"},
				Usage:                  "add a task",
				ArgsUsage:              "<text>",
				Description:            AddDescription,
				CustomHelpTemplate:     CMD_HELP_TEMPL,
				OnUsageError:           cmdcommon.UsageErrorCallback,
				UseShortOptionHandling: true,
				Flags:                  reminderFlags,
				Action:                 add,
			},
			{
				Name:               "list",
				Aliases:            []string{"l", "ls"},
				Usage:              "display tasks",
				Description:        ListDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				OnUsageError:       cmdcommon.UsageErrorCallback,
				Flags:              lsFlags,
				Action:             list,
			},
			{
				Name:               "done",
				Usage:              "toggle a task's completion",
				ArgsUsage:          "<id>",
				Description:        DoneDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				OnUsageError:       cmdcommon.UsageErrorCallback,
				Action:             done,
			},
			{
				Name:               "rm",
				Usage:              "delete a task",
				ArgsUsage:          "<id>",
				Description:        RemoveDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				OnUsageError:       cmdcommon.UsageErrorCallback,
				Action:             remove,
			},
			{
				Name:               "clear",
				Usage:              "delete completed tasks",
				Description:        ClearDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				OnUsageError:       cmdcommon.UsageErrorCallback,
				Action:             clearCompleted,
			},
			{
				Name:                   "remind",
				Usage:                  "set a task's reminder",
				ArgsUsage:              "<id>",
				Description:            RemindDescription,
				CustomHelpTemplate:     CMD_HELP_TEMPL,
				OnUsageError:           cmdcommon.UsageErrorCallback,
				UseShortOptionHandling: true,
				Flags:                  reminderFlags,
				Action:                 remind,
			},
			{
				Name:               "unremind",
				Usage:              "remove a task's reminder",
				ArgsUsage:          "<id>",
				Description:        UnremindDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				OnUsageError:       cmdcommon.UsageErrorCallback,
				Action:             unremind,
			},
			{
				Name:               "pending",
				Aliases:            []string{"p"},
				Usage:              "list scheduled reminders",
				Description:        PendingDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				OnUsageError:       cmdcommon.UsageErrorCallback,
				Action:             pending,
			},
			{
				Name:               "watch",
				Aliases:            []string{"w"},
				Usage:              "follow reminders as they come due",
				Description:        WatchDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				OnUsageError:       cmdcommon.UsageErrorCallback,
				Action:             watch,
			},
			{
				Name:               "tui",
				Usage:              "open the interactive task list",
				Description:        TuiDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				OnUsageError:       cmdcommon.UsageErrorCallback,
				Action:             tui,
			},
			{
				Name:   "token",
				Usage:  "print the RPC token",
				Action: token,
			},
			{
				Name:         "config",
				Usage:        "print the effective configuration",
				OnUsageError: cmdcommon.UsageErrorCallback,
				Flags:        configFlags,
				Action:       showConfig,
			},
			{
				Name:    "help",
				Aliases: []string{"h"},
				Usage:   "prints the help message",
				Action:  cmdcommon.Help,
			},
			{
				Name:               "version",
				Aliases:            []string{"v"},
				Usage:              "prints installed version of todostudio",
				UsageText:          " ",
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             cmdcommon.GetVersion,
			},
		},
		Action:      list,
		HideHelp:    true,
		HideVersion: true,
	}
	cmdcommon.VersionCmdStr = fmt.Sprintf("%s %s (%s_%s)\nBuild: %s=%s\n",
		app.Name,
		app.Version,
		runtime.GOOS,
		runtime.GOARCH,
		bArgs.Date, bArgs.Commit,
	)
	return app.Run(args)
}
