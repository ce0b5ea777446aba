package ui

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/todostudio/todostudio/pkg/todolib"
)

var testNow = time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)

func newTestModel(t *testing.T, seed ...todolib.Task) (*tuiModel, *todolib.List) {
	t.Helper()
	list := todolib.NewList(seed...)
	m := newTUIModel(list, nil, func() time.Time { return testNow }, time.UTC)
	t.Cleanup(m.cancel)
	return m, list
}

func key(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends keys and refreshes after each, as a list change signal would.
func press(m *tuiModel, keys ...string) {
	for _, k := range keys {
		m.Update(key(k))
		m.refresh()
	}
}

func TestView_ExampleTasks(t *testing.T) {
	m, _ := newTestModel(t, todolib.ExampleTasks()...)
	view := m.View()
	for _, want := range []string{
		"1 done | 2 left",
		"> [ ] Sketch today's plan",
		"  [x] Build the new todo UI",
		"Nice work - 1 task done.",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestView_Empty(t *testing.T) {
	m, _ := newTestModel(t)
	if view := m.View(); !strings.Contains(view, "No tasks yet.") {
		t.Fatalf("expected empty message:\n%s", view)
	}
}

func TestToggleAndFilter(t *testing.T) {
	m, list := newTestModel(t, todolib.ExampleTasks()...)
	press(m, " ")
	if task, _ := list.Get("welcome"); !task.Done {
		t.Fatal("space should toggle the selected task")
	}

	press(m, "1")
	if len(m.visible) != 1 || m.visible[0].ID != "review" {
		t.Fatalf("active filter shows %+v", m.visible)
	}
	press(m, "2")
	if len(m.visible) != 2 {
		t.Fatalf("completed filter shows %d tasks", len(m.visible))
	}
	press(m, "c")
	if list.Len() != 1 {
		t.Fatalf("clear completed left %d tasks", list.Len())
	}
	if view := m.View(); !strings.Contains(view, "Nothing to show for this filter.") {
		t.Fatalf("expected filtered empty message:\n%s", view)
	}
}

func TestAddWithReminder(t *testing.T) {
	m, list := newTestModel(t)
	press(m, "a", "W", "a", "t", "e", "r", " ", "x", "backspace", "p", "enter")
	if m.mode != modeAddReminder {
		t.Fatalf("mode = %v, want reminder prompt", m.mode)
	}
	press(m, "2026-03-04T10:30", "enter")

	tasks := list.Tasks()
	if len(tasks) != 1 || tasks[0].Text != "Water p" {
		t.Fatalf("unexpected tasks: %+v", tasks)
	}
	want := time.Date(2026, 3, 4, 10, 30, 0, 0, time.UTC)
	if tasks[0].Reminder == nil || !tasks[0].Reminder.Equal(want) {
		t.Fatalf("reminder = %v, want %v", tasks[0].Reminder, want)
	}
	if view := m.View(); !strings.Contains(view, "(Scheduled: Mar 4, 2026 10:30 AM)") {
		t.Fatalf("row should show reminder:\n%s", view)
	}
}

func TestAddWithoutReminderAndCancel(t *testing.T) {
	m, list := newTestModel(t)
	press(m, "a", "enter")
	if m.mode != modeList || list.Len() != 0 {
		t.Fatal("empty text should cancel the add")
	}
	press(m, "a", "x", "enter", "garbage", "enter")
	tasks := list.Tasks()
	if len(tasks) != 1 || tasks[0].Reminder != nil {
		t.Fatalf("unparseable reminder should mean none: %+v", tasks)
	}
	press(m, "a", "y", "esc")
	if m.mode != modeList || list.Len() != 1 {
		t.Fatal("esc should cancel the add")
	}
}

func TestEditAndClearReminder(t *testing.T) {
	at := testNow.Add(time.Hour)
	m, list := newTestModel(t, todolib.Task{ID: "t1", Text: "stretch", Reminder: &at})
	press(m, "r")
	if m.input != "2026-03-04T10:00" {
		t.Fatalf("reminder input prefilled with %q", m.input)
	}
	press(m, "backspace", "backspace", "4", "5", "enter")
	task, _ := list.Get("t1")
	if !task.Reminder.Equal(testNow.Add(time.Hour + 45*time.Minute)) {
		t.Fatalf("reminder = %v", task.Reminder)
	}

	press(m, "R")
	if task, _ := list.Get("t1"); task.Reminder != nil {
		t.Fatal("R should clear the reminder")
	}
}

func TestDeleteMovesCursor(t *testing.T) {
	m, list := newTestModel(t, todolib.ExampleTasks()...)
	press(m, "down", "down", "d")
	if list.Len() != 2 {
		t.Fatalf("expected 2 tasks, got %d", list.Len())
	}
	if m.cursor != 1 {
		t.Fatalf("cursor = %d, want 1", m.cursor)
	}
}

func TestAlertBannerUntilKeyPress(t *testing.T) {
	m, _ := newTestModel(t, todolib.ExampleTasks()...)
	m.Update(alertMsg("Reminder: Sketch today's plan"))
	if view := m.View(); !strings.Contains(view, "!! Reminder: Sketch today's plan") {
		t.Fatalf("banner missing:\n%s", view)
	}
	press(m, "j")
	if strings.Contains(m.View(), "!!") {
		t.Fatal("banner should clear on key press")
	}
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t)
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("q should return a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("q should quit")
	}
}

func TestIsTTY(t *testing.T) {
	if IsTTY(&bytes.Buffer{}) {
		t.Fatal("buffer is not a TTY")
	}
}

func TestIsTTY_Pipe(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	defer w.Close()
	if IsTTY(w) {
		t.Fatal("pipe is not a TTY")
	}
}
