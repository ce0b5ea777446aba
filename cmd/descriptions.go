package cmd

const DESCRIPTION = `
todostudio keeps a task list with one-time reminders. A background daemon
owns the list and raises a desktop notification (or a terminal alert when
notifications are unavailable) when a reminder comes due.
`

const (
	DaemonDescription = `The daemon command starts the todostudio daemon. It owns the task
list, schedules reminders and serves JSON-RPC on the configured address.
An RPC token is generated on first start and stored in the system keyring.

Example:
        todostudio daemon

`
	AddDescription = `The add command creates a task. Attach a reminder with either an
absolute time (--at) or a delay (--in), not both.

Example:
        todostudio add "Water the plants" --in 2h
        todostudio add "Call mom" --at 2026-03-04T18:30

`
	ListDescription = `The list command displays your tasks along with their ids, which
can be abbreviated to any unique prefix in other commands.

Example:
        todostudio list --filter active

`
	DoneDescription = `The done command toggles a task between open and completed.

Example:
        todostudio done 3f2a

`
	RemoveDescription = `The rm command deletes a task and its reminder.

Example:
        todostudio rm 3f2a

`
	ClearDescription = `The clear command deletes every completed task.

Example:
        todostudio clear

`
	RemindDescription = `The remind command sets or replaces a task's reminder. Setting a
reminder in the past fires it right away.

Example:
        todostudio remind 3f2a --in 45m
        todostudio remind 3f2a --at "2026-03-04 09:30"

`
	UnremindDescription = `The unremind command removes a task's reminder.

Example:
        todostudio unremind 3f2a

`
	PendingDescription = `The pending command lists the reminders the daemon is waiting on,
soonest first.

Example:
        todostudio pending

`
	WatchDescription = `The watch command shows a countdown for every pending reminder and
prints reminders as the daemon delivers them. Press Ctrl+C to stop.

Example:
        todostudio watch

`
	TuiDescription = `The tui command opens an interactive task list in the terminal. It
runs its own scheduler, so reminders fire while it is open even without
the daemon.

Example:
        todostudio tui

`
	StopDescription = `The stop command stops a daemon started on this machine.

Example:
        todostudio stop

`
)
