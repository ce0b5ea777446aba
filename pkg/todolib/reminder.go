package todolib

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// InputLayout is the layout of a datetime-local style reminder input.
const InputLayout = "2006-01-02T15:04"

// displayLayout renders reminders like "Mar 4, 2026 9:30 AM".
const displayLayout = "Jan 2, 2006 3:04 PM"

// zoned layouts carry their own offset; local layouts are read in the
// caller's location.
var (
	zonedLayouts = []string{time.RFC3339Nano, time.RFC3339}
	localLayouts = []string{"2006-01-02T15:04:05", InputLayout, "2006-01-02 15:04"}
)

// ParseReminder reads a reminder instant. Empty or unparseable input yields
// nil, meaning "no reminder"; it is never reported as an error.
// A nil loc means time.Local.
func ParseReminder(raw string, loc *time.Location) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return &t
		}
	}
	return nil
}

// ReminderIn resolves a relative reminder against now. Negative durations
// yield an instant in the past, which fires on the next reconcile.
func ReminderIn(d time.Duration, now time.Time) *time.Time {
	at := now.Add(d)
	return &at
}

// FormatReminder renders the reminder for display, or "" when unset.
func FormatReminder(at *time.Time, loc *time.Location) string {
	if at == nil || at.IsZero() {
		return ""
	}
	if loc == nil {
		loc = time.Local
	}
	return at.In(loc).Format(displayLayout)
}

// InputValue renders the reminder in InputLayout for pre-filling an edit
// field, or "" when unset.
func InputValue(at *time.Time, loc *time.Location) string {
	if at == nil || at.IsZero() {
		return ""
	}
	if loc == nil {
		loc = time.Local
	}
	return at.In(loc).Format(InputLayout)
}

// Relative renders the reminder relative to now ("3 minutes from now").
func Relative(at *time.Time, now time.Time) string {
	if at == nil || at.IsZero() {
		return ""
	}
	return humanize.RelTime(*at, now, "ago", "from now")
}

// ReminderStatus describes a task's reminder for display.
type ReminderStatus string

const (
	ReminderNotSet    ReminderStatus = "Not set"
	ReminderSent      ReminderStatus = "Reminder sent"
	ReminderDue       ReminderStatus = "Due now"
	ReminderScheduled ReminderStatus = "Scheduled"
)

// Status classifies the task's reminder at now. A reminder at or before now
// that has not been sent is due.
func Status(t Task, now time.Time) ReminderStatus {
	switch {
	case !t.HasReminder():
		return ReminderNotSet
	case t.ReminderSent:
		return ReminderSent
	case !t.Reminder.After(now):
		return ReminderDue
	default:
		return ReminderScheduled
	}
}
