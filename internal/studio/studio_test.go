package studio

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/todostudio/todostudio/internal/scheduler"
	"github.com/todostudio/todostudio/pkg/todolib"
)

type countingNotifier struct {
	mu  sync.Mutex
	ids []string
}

func (c *countingNotifier) Notify(_ context.Context, task todolib.Task) {
	c.mu.Lock()
	c.ids = append(c.ids, task.ID)
	c.mu.Unlock()
}

func (c *countingNotifier) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.ids)
}

func (c *countingNotifier) delivered() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.ids...)
}

// blockingNotifier records each reminder and then holds the delivery open,
// like an unanswered permission prompt, until release is closed.
type blockingNotifier struct {
	countingNotifier
	release chan struct{}
}

func (b *blockingNotifier) Notify(ctx context.Context, task todolib.Task) {
	b.countingNotifier.Notify(ctx, task)
	select {
	case <-b.release:
	case <-ctx.Done():
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func startStudio(t *testing.T, list *todolib.List, clock scheduler.Clock) (*Studio, *countingNotifier) {
	t.Helper()
	n := &countingNotifier{}
	return runStudio(t, list, clock, n), n
}

func runStudio(t *testing.T, list *todolib.List, clock scheduler.Clock, n scheduler.Notifier) *Studio {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	s := New(ctx, list, n, &Options{Clock: clock})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return s
}

func TestRun_FiresOverdueOnStart(t *testing.T) {
	now := time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)
	past := now.Add(-5 * time.Second)
	list := todolib.NewList(todolib.Task{ID: "t1", Text: "t1", Reminder: &past})
	_, n := startStudio(t, list, scheduler.NewFakeClock(now))

	waitFor(t, "overdue reminder", func() bool {
		task, _ := list.Get("t1")
		return task.ReminderSent
	})
	waitFor(t, "delivery", func() bool { return n.count() > 0 })
	if n.count() != 1 {
		t.Errorf("expected one notification, got %d", n.count())
	}
}

func TestRun_ReconcilesOnChange(t *testing.T) {
	now := time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)
	clock := scheduler.NewFakeClock(now)
	list := todolib.NewList()
	s, n := startStudio(t, list, clock)

	in := now.Add(time.Minute)
	task, err := list.Add("stretch", &in)
	if err != nil {
		t.Fatal(err)
	}
	waitFor(t, "armed reminder", func() bool { return s.Scheduler.Len() == 1 })

	if _, err := list.Toggle(task.ID); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "canceled reminder", func() bool { return s.Scheduler.Len() == 0 })

	clock.Advance(2 * time.Minute)
	if n.count() != 0 {
		t.Errorf("completed task fired %d times", n.count())
	}
}

func TestRun_FiresWhenDue(t *testing.T) {
	now := time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)
	clock := scheduler.NewFakeClock(now)
	list := todolib.NewList()
	s, n := startStudio(t, list, clock)

	in := now.Add(time.Second)
	task, _ := list.Add("call", &in)
	waitFor(t, "armed reminder", func() bool { return s.Scheduler.Len() == 1 })

	clock.Advance(time.Second)
	s.Scheduler.Wait()
	got, _ := list.Get(task.ID)
	if !got.ReminderSent || n.count() != 1 {
		t.Fatalf("expected a single delivered reminder, sent=%v count=%d", got.ReminderSent, n.count())
	}
	// the mark-sent change reconciles again without re-arming
	time.Sleep(20 * time.Millisecond)
	if s.Scheduler.Len() != 0 || n.count() != 1 {
		t.Errorf("reminder re-armed after being sent")
	}
}

func TestRun_StopsSchedulerOnCancel(t *testing.T) {
	now := time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)
	clock := scheduler.NewFakeClock(now)
	in := now.Add(time.Hour)
	list := todolib.NewList(todolib.Task{ID: "a", Text: "a", Reminder: &in})

	ctx, cancel := context.WithCancel(context.Background())
	n := &countingNotifier{}
	s := New(ctx, list, n, &Options{Clock: clock})
	done := make(chan error)
	go func() { done <- s.Run(ctx) }()
	waitFor(t, "armed reminder", func() bool { return s.Scheduler.Len() == 1 })

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
	if clock.Armed() != 0 {
		t.Errorf("expected timers canceled, %d armed", clock.Armed())
	}
	clock.Advance(2 * time.Hour)
	if n.count() != 0 {
		t.Errorf("stopped studio fired %d reminders", n.count())
	}
	s.Close()
}

func TestRun_EditDuringDeliveryDeliversOnce(t *testing.T) {
	now := time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)
	clock := scheduler.NewFakeClock(now)
	due := now.Add(2 * time.Minute)
	list := todolib.NewList(todolib.Task{ID: "t1", Text: "t1", Reminder: &due})
	n := &blockingNotifier{release: make(chan struct{})}
	s := runStudio(t, list, clock, n)
	waitFor(t, "armed reminder", func() bool { return s.Scheduler.Len() == 1 })

	clock.Advance(2 * time.Minute)
	waitFor(t, "blocked delivery", func() bool { return n.count() == 1 })

	later := now.Add(time.Hour)
	if _, err := list.Add("unrelated", &later); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "reconcile during delivery", func() bool {
		p := s.Scheduler.Pending()
		return len(p) == 1 && p[0].Text == "unrelated"
	})
	close(n.release)
	s.Scheduler.Wait()

	if got := n.delivered(); len(got) != 1 || got[0] != "t1" {
		t.Errorf("expected t1 delivered once, got %v", got)
	}
}

func TestRun_DoneDuringDeliveryNeverFires(t *testing.T) {
	now := time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)
	clock := scheduler.NewFakeClock(now)
	first := now.Add(time.Minute)
	second := now.Add(2 * time.Minute)
	list := todolib.NewList(
		todolib.Task{ID: "t1", Text: "t1", Reminder: &first},
		todolib.Task{ID: "t2", Text: "t2", Reminder: &second},
	)
	n := &blockingNotifier{release: make(chan struct{})}
	s := runStudio(t, list, clock, n)
	waitFor(t, "armed reminders", func() bool { return s.Scheduler.Len() == 2 })

	clock.Advance(time.Minute)
	waitFor(t, "blocked delivery", func() bool { return n.count() == 1 })

	// An overdue task fires straight away without stalling the studio loop.
	past := now.Add(-time.Minute)
	late, err := list.Add("late", &past)
	if err != nil {
		t.Fatal(err)
	}
	waitFor(t, "overdue delivery", func() bool { return n.count() == 2 })

	if _, err := list.Toggle("t2"); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "canceled reminder", func() bool { return s.Scheduler.Len() == 0 })

	clock.Advance(2 * time.Minute)
	close(n.release)
	s.Scheduler.Wait()

	got := n.delivered()
	if len(got) != 2 || got[0] != "t1" || got[1] != late.ID {
		t.Errorf("expected t1 and %s delivered once each, got %v", late.ID, got)
	}
}
