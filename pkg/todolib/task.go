// Package todolib holds the task model and the in-memory task list that the
// reminder scheduler and every frontend (RPC daemon, CLI, terminal UI) read
// from.
package todolib

import (
	"time"

	"github.com/google/uuid"
)

// Task is a single to-do entry with optional reminder metadata.
type Task struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Done bool   `json:"done"`
	// Reminder is the instant at which a notification should be raised.
	// Nil means no reminder.
	Reminder *time.Time `json:"reminder"`
	// ReminderSent is true once the notification for the current Reminder
	// value has been delivered. Every write to Reminder resets it.
	ReminderSent bool `json:"reminderSent"`
}

// HasReminder reports whether the task carries a usable reminder instant.
func (t Task) HasReminder() bool {
	return t.Reminder != nil && !t.Reminder.IsZero()
}

// NeedsReminder reports whether a callback should be armed (or fired) for
// the task: it has a reminder, is not done, and has not been notified yet.
func (t Task) NeedsReminder() bool {
	return t.HasReminder() && !t.Done && !t.ReminderSent
}

// clone returns a copy that shares no pointers with t.
func (t Task) clone() Task {
	if t.Reminder != nil {
		at := *t.Reminder
		t.Reminder = &at
	}
	return t
}

// NewTask creates an open task with a fresh random id.
func NewTask(text string, reminder *time.Time) Task {
	return Task{
		ID:       newID(),
		Text:     text,
		Reminder: copyTime(reminder),
	}
}

var newID = func() string {
	return uuid.NewString()
}

func copyTime(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	at := *t
	return &at
}

// ExampleTasks returns the starter tasks shown on a fresh list.
func ExampleTasks() []Task {
	return []Task{
		{ID: "welcome", Text: "Sketch today's plan"},
		{ID: "ui", Text: "Build the new todo UI", Done: true},
		{ID: "review", Text: "Clear out or archive finished tasks"},
	}
}
