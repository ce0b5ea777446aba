package scheduler

import (
	"context"
	"time"

	"github.com/todostudio/todostudio/pkg/todolib"
)

// Notifier performs the user-visible side effect of a due reminder.
// It must not fail: delivery problems degrade to a fallback internally.
// Notify may block, for example on a permission prompt, and should return
// once ctx is done.
type Notifier interface {
	Notify(ctx context.Context, task todolib.Task)
}

// Marker is the mutation entry point of the task list the scheduler reports
// delivered reminders to.
type Marker interface {
	MarkReminderSent(taskID string) error
}

// Pending describes one armed reminder callback.
type Pending struct {
	// TaskID identifies the task the callback fires for.
	TaskID string `json:"taskId"`
	// Text is the task text captured when the callback was armed.
	Text string `json:"text"`
	// DueAt is the wall-clock reminder instant.
	DueAt time.Time `json:"dueAt"`
}
