package common

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/todostudio/todostudio/pkg/todolib"
)

func TestNewTaskView(t *testing.T) {
	now := time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)
	at := now.Add(time.Hour)
	view := NewTaskView(todolib.Task{ID: "a", Text: "call", Reminder: &at}, now, time.UTC)
	if view.Status != todolib.ReminderScheduled {
		t.Errorf("Status = %q", view.Status)
	}
	if view.ReminderLabel != "Mar 4, 2026 10:00 AM" {
		t.Errorf("ReminderLabel = %q", view.ReminderLabel)
	}
}

func TestTaskViewFlattensTask(t *testing.T) {
	view := NewTaskView(todolib.Task{ID: "a", Text: "call"}, time.Now(), time.UTC)
	b, err := json.Marshal(view)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	s := string(b)
	for _, want := range []string{`"id":"a"`, `"text":"call"`, `"status":"Not set"`, `"reminderSent":false`} {
		if !strings.Contains(s, want) {
			t.Errorf("expected %s in %s", want, s)
		}
	}
	if strings.Contains(s, "reminderLabel") {
		t.Errorf("empty label should be omitted: %s", s)
	}
}
