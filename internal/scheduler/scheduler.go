package scheduler

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/todostudio/todostudio/pkg/logger"
	"github.com/todostudio/todostudio/pkg/todolib"
)

// maxSleepCap bounds a single timer so wall-clock jumps are noticed.
const maxSleepCap = 60 * time.Second

// Options tunes a Scheduler. The zero value is usable.
type Options struct {
	// Clock defaults to SystemClock.
	Clock Clock
	// Logger defaults to a NopLogger.
	Logger logger.Logger
	// MaxSleep overrides maxSleepCap when positive.
	MaxSleep time.Duration
}

type pendingReminder struct {
	task  todolib.Task
	dueAt time.Time
	timer Timer
}

// Scheduler arms at most one callback per task and fires each reminder once.
// It is safe for concurrent use.
type Scheduler struct {
	ctx      context.Context
	cancel   context.CancelFunc
	notifier Notifier
	marker   Marker
	clock    Clock
	log      logger.Logger
	maxSleep time.Duration

	mu      sync.Mutex
	pending map[string]*pendingReminder
	stopped bool

	deliveries sync.WaitGroup
}

// New creates a Scheduler delivering through notifier and reporting to marker.
// Deliveries run with a context derived from ctx; canceling ctx or calling
// Stop aborts in-flight permission prompts.
func New(ctx context.Context, notifier Notifier, marker Marker, opts *Options) *Scheduler {
	if opts == nil {
		opts = &Options{}
	}
	ctx, cancel := context.WithCancel(ctx)
	s := &Scheduler{
		ctx:      ctx,
		cancel:   cancel,
		notifier: notifier,
		marker:   marker,
		clock:    opts.Clock,
		log:      opts.Logger,
		maxSleep: opts.MaxSleep,
		pending:  make(map[string]*pendingReminder),
	}
	if s.clock == nil {
		s.clock = SystemClock()
	}
	if s.log == nil {
		s.log = logger.NewNopLogger()
	}
	if s.maxSleep <= 0 {
		s.maxSleep = maxSleepCap
	}
	return s
}

// Reconcile cancels every pending callback and re-arms one per task that
// still needs its reminder. Reminders already due are fired, and so marked
// sent, before Reconcile returns, in snapshot order. Reconcile never waits
// for a delivery.
func (s *Scheduler) Reconcile(tasks []todolib.Task) {
	var due []todolib.Task

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.cancelAllLocked()
	now := s.clock.Now()
	for _, task := range tasks {
		if !task.NeedsReminder() {
			continue
		}
		if prev, ok := s.pending[task.ID]; ok {
			prev.timer.Stop()
			delete(s.pending, task.ID)
		}
		delay := task.Reminder.Sub(now)
		if delay <= 0 {
			due = append(due, task)
			continue
		}
		p := &pendingReminder{task: task, dueAt: *task.Reminder}
		p.timer = s.clock.AfterFunc(s.capped(delay), func() { s.mature(p) })
		s.pending[task.ID] = p
	}
	armed := len(s.pending)
	s.mu.Unlock()

	s.log.Debug("Reconciled %d tasks: %d armed, %d due", len(tasks), armed, len(due))
	for _, task := range due {
		s.Fire(task)
	}
}

// Fire marks the reminder for task sent and then delivers it on its own
// goroutine. A reconcile that runs while the delivery is still waiting on a
// permission prompt sees the task as sent. A task that has disappeared from
// the list in the meantime is logged and still delivered. Fire does nothing
// after Stop.
func (s *Scheduler) Fire(task todolib.Task) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.deliveries.Add(1)
	s.mu.Unlock()

	s.log.Info("Reminder due: %s (%s)", task.Text, task.ID)
	if err := s.marker.MarkReminderSent(task.ID); err != nil {
		s.log.Warning("Could not mark reminder of task %s as sent: %v", task.ID, err)
	}
	go func() {
		defer s.deliveries.Done()
		s.notifier.Notify(s.ctx, task)
	}()
}

// Wait blocks until every delivery started by Fire has returned.
func (s *Scheduler) Wait() {
	s.deliveries.Wait()
}

// Pending returns the armed callbacks ordered by due time.
func (s *Scheduler) Pending() []Pending {
	s.mu.Lock()
	out := make([]Pending, 0, len(s.pending))
	for id, p := range s.pending {
		out = append(out, Pending{TaskID: id, Text: p.task.Text, DueAt: p.dueAt})
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].DueAt.Equal(out[j].DueAt) {
			return out[i].TaskID < out[j].TaskID
		}
		return out[i].DueAt.Before(out[j].DueAt)
	})
	return out
}

// Len returns the number of armed callbacks.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Stop cancels every pending callback and aborts in-flight deliveries.
// Later Reconcile and Fire calls are ignored.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.cancelAllLocked()
	s.stopped = true
	s.mu.Unlock()
	s.cancel()
}

func (s *Scheduler) cancelAllLocked() {
	for id, p := range s.pending {
		p.timer.Stop()
		delete(s.pending, id)
	}
}

func (s *Scheduler) capped(d time.Duration) time.Duration {
	if d > s.maxSleep {
		return s.maxSleep
	}
	return d
}

// mature runs when a callback's timer expires. A callback that was replaced
// or canceled after its timer expired finds itself gone from the pending map
// and returns without firing.
func (s *Scheduler) mature(p *pendingReminder) {
	s.mu.Lock()
	if s.pending[p.task.ID] != p {
		s.mu.Unlock()
		return
	}
	if remaining := p.dueAt.Sub(s.clock.Now()); remaining > 0 {
		p.timer = s.clock.AfterFunc(s.capped(remaining), func() { s.mature(p) })
		s.mu.Unlock()
		return
	}
	delete(s.pending, p.task.ID)
	s.mu.Unlock()
	s.Fire(p.task)
}
