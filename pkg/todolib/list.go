package todolib

import (
	"strings"
	"sync"
	"time"
)

// List is the single source of truth for tasks. It is safe for concurrent
// use; every successful mutation signals the subscribers registered through
// Subscribe.
type List struct {
	// tasks is ordered newest first
	tasks   []Task
	mu      *sync.RWMutex
	subs    map[int]chan struct{}
	nextSub int
}

// NewList creates a list holding copies of the given tasks in order.
func NewList(seed ...Task) *List {
	l := &List{
		tasks: make([]Task, 0, len(seed)),
		mu:    new(sync.RWMutex),
		subs:  make(map[int]chan struct{}),
	}
	for _, t := range seed {
		l.tasks = append(l.tasks, t.clone())
	}
	return l
}

// Subscribe registers for change signals. The returned channel has a buffer
// of one and signals are coalesced: a receiver that falls behind sees a
// single pending signal and should read a fresh snapshot with Tasks.
// The cancel func unregisters and closes the channel.
func (l *List) Subscribe() (<-chan struct{}, func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := l.nextSub
	l.nextSub++
	ch := make(chan struct{}, 1)
	l.subs[id] = ch
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.subs, id)
			l.mu.Unlock()
			close(ch)
		})
	}
}

// changed must be called with l.mu held.
func (l *List) changed() {
	for _, ch := range l.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Add trims text and prepends a new open task. A nil or zero reminder means
// no reminder.
func (l *List) Add(text string, reminder *time.Time) (Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Task{}, ErrEmptyText
	}
	t := NewTask(text, reminder)
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tasks = append([]Task{t}, l.tasks...)
	l.changed()
	return t.clone(), nil
}

func (l *List) index(id string) int {
	for i := range l.tasks {
		if l.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (l *List) update(id string, fn func(t *Task) bool) (Task, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.index(id)
	if i < 0 {
		return Task{}, ErrTaskNotFound
	}
	if fn(&l.tasks[i]) {
		l.changed()
	}
	return l.tasks[i].clone(), nil
}

// Toggle flips the completion flag. The stored reminder data is untouched.
func (l *List) Toggle(id string) (Task, error) {
	return l.update(id, func(t *Task) bool {
		t.Done = !t.Done
		return true
	})
}

// SetReminder replaces the reminder instant and resets ReminderSent. A nil
// or zero instant clears the reminder.
func (l *List) SetReminder(id string, at *time.Time) (Task, error) {
	return l.update(id, func(t *Task) bool {
		t.Reminder = copyTime(at)
		t.ReminderSent = false
		return true
	})
}

// ClearReminder removes the reminder and resets ReminderSent.
func (l *List) ClearReminder(id string) (Task, error) {
	return l.SetReminder(id, nil)
}

// MarkReminderSent records that the notification for the task's current
// reminder was delivered. Marking an already sent task is a no-op and does
// not signal subscribers.
func (l *List) MarkReminderSent(id string) error {
	_, err := l.update(id, func(t *Task) bool {
		if t.ReminderSent {
			return false
		}
		t.ReminderSent = true
		return true
	})
	return err
}

// Remove deletes the task with the given id.
func (l *List) Remove(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.index(id)
	if i < 0 {
		return ErrTaskNotFound
	}
	l.tasks = append(l.tasks[:i], l.tasks[i+1:]...)
	l.changed()
	return nil
}

// ClearCompleted deletes every done task and returns how many were removed.
func (l *List) ClearCompleted() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	kept := l.tasks[:0]
	for _, t := range l.tasks {
		if !t.Done {
			kept = append(kept, t)
		}
	}
	n := len(l.tasks) - len(kept)
	// zero the tail so removed reminders are not retained
	for i := len(kept); i < len(l.tasks); i++ {
		l.tasks[i] = Task{}
	}
	l.tasks = kept
	if n > 0 {
		l.changed()
	}
	return n
}

// Get returns a copy of the task with the given id.
func (l *List) Get(id string) (Task, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	i := l.index(id)
	if i < 0 {
		return Task{}, false
	}
	return l.tasks[i].clone(), true
}

// Resolve looks a task up by its full id or by a unique id prefix.
func (l *List) Resolve(ref string) (Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Task{}, ErrTaskNotFound
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	if i := l.index(ref); i >= 0 {
		return l.tasks[i].clone(), nil
	}
	match := -1
	for i := range l.tasks {
		if !strings.HasPrefix(l.tasks[i].ID, ref) {
			continue
		}
		if match >= 0 {
			return Task{}, ErrAmbiguousID
		}
		match = i
	}
	if match < 0 {
		return Task{}, ErrTaskNotFound
	}
	return l.tasks[match].clone(), nil
}

// Tasks returns a snapshot of every task, newest first.
func (l *List) Tasks() []Task {
	return l.Filter(FilterAll)
}

// Filter returns a snapshot of the tasks matching f.
func (l *List) Filter(f Filter) []Task {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Task, 0, len(l.tasks))
	for _, t := range l.tasks {
		if f.Match(t) {
			out = append(out, t.clone())
		}
	}
	return out
}

// Counts returns the number of done and remaining tasks.
func (l *List) Counts() (done, left int) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, t := range l.tasks {
		if t.Done {
			done++
		}
	}
	return done, len(l.tasks) - done
}

// Len returns the number of tasks.
func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.tasks)
}
