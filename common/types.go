package common

import (
	"time"

	"github.com/todostudio/todostudio/pkg/todolib"
)

type IDParams struct {
	ID string `json:"id"`
}

// AddParams creates a task. Reminder is an absolute instant in any layout
// todolib.ParseReminder accepts; RemindIn is a Go duration relative to the
// daemon's clock. At most one of them may be set.
type AddParams struct {
	Text     string `json:"text"`
	Reminder string `json:"reminder,omitempty"`
	RemindIn string `json:"remindIn,omitempty"`
}

type ListParams struct {
	Filter string `json:"filter,omitempty"`
}

// ReminderParams sets or replaces a task's reminder.
type ReminderParams struct {
	ID string `json:"id"`
	At string `json:"at,omitempty"`
	In string `json:"in,omitempty"`
}

// TaskView is a task with its reminder rendered for display.
type TaskView struct {
	todolib.Task
	Status        todolib.ReminderStatus `json:"status"`
	ReminderLabel string                 `json:"reminderLabel,omitempty"`
}

type ListResponse struct {
	Tasks   []TaskView `json:"tasks"`
	Filter  string     `json:"filter"`
	Done    int        `json:"done"`
	Left    int        `json:"left"`
	Summary string     `json:"summary"`
	Empty   string     `json:"empty,omitempty"`
}

type ClearResponse struct {
	Removed int    `json:"removed"`
	Message string `json:"message,omitempty"`
}

type PendingReminder struct {
	ID    string    `json:"id"`
	Text  string    `json:"text"`
	DueAt time.Time `json:"dueAt"`
}

type PendingResponse struct {
	Pending []PendingReminder `json:"pending"`
}

type VersionResponse struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildType string `json:"buildType,omitempty"`
}

// ReminderEvent is pushed to WebSocket clients when a reminder is delivered.
type ReminderEvent struct {
	ID      string    `json:"id"`
	Text    string    `json:"text"`
	Method  string    `json:"method"`
	Message string    `json:"message,omitempty"`
	At      time.Time `json:"at"`
}

// NewTaskView renders task at now in loc.
func NewTaskView(task todolib.Task, now time.Time, loc *time.Location) TaskView {
	return TaskView{
		Task:          task,
		Status:        todolib.Status(task, now),
		ReminderLabel: todolib.FormatReminder(task.Reminder, loc),
	}
}
