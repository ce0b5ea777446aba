// Package ui provides the interactive terminal task list.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/todostudio/todostudio/internal/notify"
	"github.com/todostudio/todostudio/internal/studio"
	"github.com/todostudio/todostudio/pkg/logger"
	"github.com/todostudio/todostudio/pkg/todolib"
)

// ErrNotTTY is returned when stdout is not a terminal.
var ErrNotTTY = errors.New("tui requires a TTY")

// Options configures the TUI.
type Options struct {
	// Sink shows desktop notifications; nil means alerts only.
	Sink notify.Sink
	// Seed is the initial task list.
	Seed []todolib.Task
	// Logger defaults to a NopLogger. The TUI owns the screen, so it
	// should not write to the terminal.
	Logger logger.Logger
}

// RunTUI runs an in-process studio behind the task list until the user
// quits or ctx is done.
func RunTUI(ctx context.Context, opts *Options) error {
	if opts == nil {
		opts = &Options{}
	}
	if !IsTTY(os.Stdout) {
		return ErrNotTTY
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	alerts := make(chan string, 8)
	notifier := notify.NewNotifier(opts.Sink, notify.AlerterFunc(func(msg string) {
		select {
		case alerts <- msg:
		default:
		}
	}), opts.Logger)

	list := todolib.NewList(opts.Seed...)
	st := studio.New(ctx, list, notifier, &studio.Options{Logger: opts.Logger})
	runErr := make(chan error, 1)
	go func() {
		runErr <- st.Run(ctx)
	}()

	model := newTUIModel(list, alerts, time.Now, time.Local)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	cancel()
	<-runErr
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

type inputMode int

const (
	modeList inputMode = iota
	modeAddText
	modeAddReminder
	modeEditReminder
)

type tuiModel struct {
	list    *todolib.List
	changes <-chan struct{}
	cancel  func()
	alerts  <-chan string
	now     func() time.Time
	loc     *time.Location

	filter  todolib.Filter
	visible []todolib.Task
	cursor  int

	mode    inputMode
	input   string
	newText string
	editID  string

	banner  string
	message string
}

type tickMsg time.Time

type changedMsg struct{}

type alertMsg string

func newTUIModel(list *todolib.List, alerts <-chan string, now func() time.Time, loc *time.Location) *tuiModel {
	changes, cancel := list.Subscribe()
	m := &tuiModel{
		list:    list,
		changes: changes,
		cancel:  cancel,
		alerts:  alerts,
		now:     now,
		loc:     loc,
		filter:  todolib.FilterAll,
	}
	m.refresh()
	return m
}

func (m *tuiModel) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(time.Second), waitForChange(m.changes)}
	if m.alerts != nil {
		cmds = append(cmds, waitForAlert(m.alerts))
	}
	return tea.Batch(cmds...)
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.banner = ""
		if msg.Type == tea.KeyCtrlC {
			m.cancel()
			return m, tea.Quit
		}
		if m.mode != modeList {
			m.updateInput(msg)
			return m, nil
		}
		return m, m.updateList(msg)
	case tickMsg:
		return m, tickCmd(time.Second)
	case changedMsg:
		m.refresh()
		return m, waitForChange(m.changes)
	case alertMsg:
		m.banner = string(msg)
		return m, waitForAlert(m.alerts)
	}
	return m, nil
}

func (m *tuiModel) updateList(msg tea.KeyMsg) tea.Cmd {
	m.message = ""
	switch msg.String() {
	case "q":
		m.cancel()
		return tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.visible)-1 {
			m.cursor++
		}
	case "0":
		m.setFilter(todolib.FilterAll)
	case "1":
		m.setFilter(todolib.FilterActive)
	case "2":
		m.setFilter(todolib.FilterCompleted)
	case "a":
		m.mode, m.input = modeAddText, ""
	case " ", "enter":
		if t, ok := m.selected(); ok {
			m.report(m.list.Toggle(t.ID))
		}
	case "r":
		if t, ok := m.selected(); ok {
			m.mode, m.editID = modeEditReminder, t.ID
			m.input = todolib.InputValue(t.Reminder, m.loc)
		}
	case "R":
		if t, ok := m.selected(); ok {
			m.report(m.list.ClearReminder(t.ID))
		}
	case "d":
		if t, ok := m.selected(); ok {
			if err := m.list.Remove(t.ID); err != nil {
				m.message = err.Error()
			}
		}
	case "c":
		if n := m.list.ClearCompleted(); n == 0 {
			m.message = "No completed tasks to clear."
		}
	}
	return nil
}

func (m *tuiModel) updateInput(msg tea.KeyMsg) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode, m.input, m.newText, m.editID = modeList, "", "", ""
	case tea.KeyEnter:
		m.submit()
	case tea.KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.input += " "
	case tea.KeyRunes:
		m.input += string(msg.Runes)
	}
}

// submit completes the current input step.
func (m *tuiModel) submit() {
	switch m.mode {
	case modeAddText:
		if strings.TrimSpace(m.input) == "" {
			m.mode, m.input = modeList, ""
			return
		}
		m.newText, m.mode, m.input = m.input, modeAddReminder, ""
	case modeAddReminder:
		_, err := m.list.Add(m.newText, todolib.ParseReminder(m.input, m.loc))
		if err != nil {
			m.message = err.Error()
		}
		m.mode, m.input, m.newText = modeList, "", ""
	case modeEditReminder:
		m.report(m.list.SetReminder(m.editID, todolib.ParseReminder(m.input, m.loc)))
		m.mode, m.input, m.editID = modeList, "", ""
	}
}

func (m *tuiModel) report(_ todolib.Task, err error) {
	if err != nil {
		m.message = err.Error()
	}
}

func (m *tuiModel) setFilter(f todolib.Filter) {
	m.filter = f
	m.cursor = 0
	m.refresh()
}

func (m *tuiModel) selected() (todolib.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return todolib.Task{}, false
	}
	return m.visible[m.cursor], true
}

func (m *tuiModel) refresh() {
	m.visible = m.list.Filter(m.filter)
	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *tuiModel) View() string {
	var b strings.Builder
	writeTitle(&b)
	if m.banner != "" {
		b.WriteString("!! " + m.banner + "\n\n")
	}

	done, left := m.list.Counts()
	b.WriteString(fmt.Sprintf("%s    Filter: %s\n\n", todolib.Summary(done, left), m.filter.Label()))

	if len(m.visible) == 0 {
		b.WriteString("  " + todolib.EmptyMessage(done+left) + "\n")
	}
	now := m.now()
	for i, t := range m.visible {
		b.WriteString(formatTask(t, i == m.cursor, now, m.loc))
		b.WriteString("\n")
	}
	if msg := todolib.CompletedMessage(done); msg != "" {
		b.WriteString("\n" + msg + "\n")
	}
	b.WriteString("\n")

	switch m.mode {
	case modeAddText:
		b.WriteString("New task: " + m.input + "_\n")
	case modeAddReminder:
		b.WriteString("Reminder (YYYY-MM-DDTHH:MM, empty for none): " + m.input + "_\n")
	case modeEditReminder:
		b.WriteString("Reminder (empty to clear): " + m.input + "_\n")
	}
	if m.message != "" {
		b.WriteString(m.message + "\n")
	}
	writeFooter(&b, m.mode)
	return b.String()
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return changedMsg{}
	}
}

func waitForAlert(ch <-chan string) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return alertMsg(msg)
	}
}

func writeTitle(b *strings.Builder) {
	title := "todostudio"
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n\n")
}

func writeFooter(b *strings.Builder, mode inputMode) {
	if mode != modeList {
		b.WriteString("enter confirm | esc cancel\n")
		return
	}
	b.WriteString("a add | space toggle | r reminder | R clear reminder | d delete | c clear done | 0/1/2 filter | q quit\n")
}

func formatTask(t todolib.Task, selected bool, now time.Time, loc *time.Location) string {
	cursor := " "
	if selected {
		cursor = ">"
	}
	check := " "
	if t.Done {
		check = "x"
	}
	line := fmt.Sprintf("%s [%s] %s", cursor, check, t.Text)
	status := todolib.Status(t, now)
	if status == todolib.ReminderNotSet {
		return line
	}
	return fmt.Sprintf("%s  (%s: %s)", line, status, todolib.FormatReminder(t.Reminder, loc))
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
