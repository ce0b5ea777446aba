// Package studio wires the task list to the reminder scheduler.
package studio

import (
	"context"
	"sync"

	"github.com/todostudio/todostudio/internal/scheduler"
	"github.com/todostudio/todostudio/pkg/logger"
	"github.com/todostudio/todostudio/pkg/todolib"
)

// Options configures a Studio.
type Options struct {
	// Clock is handed to the scheduler; nil means the system clock.
	Clock scheduler.Clock
	// Logger defaults to a NopLogger.
	Logger logger.Logger
}

// Studio owns a task list and keeps its scheduler reconciled with it.
type Studio struct {
	List      *todolib.List
	Scheduler *scheduler.Scheduler

	log       logger.Logger
	closeOnce sync.Once
}

// New creates a Studio over list. Reminders are delivered through notifier
// with ctx, which should outlive Run.
func New(ctx context.Context, list *todolib.List, notifier scheduler.Notifier, opts *Options) *Studio {
	if opts == nil {
		opts = &Options{}
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Studio{
		List: list,
		Scheduler: scheduler.New(ctx, notifier, list, &scheduler.Options{
			Clock:  opts.Clock,
			Logger: log,
		}),
		log: log,
	}
}

// Run reconciles once with the current list and again after every change
// until ctx is done. It then closes the studio.
func (s *Studio) Run(ctx context.Context) error {
	changes, cancel := s.List.Subscribe()
	defer cancel()
	defer s.Close()

	s.Scheduler.Reconcile(s.List.Tasks())
	for {
		select {
		case <-ctx.Done():
			s.log.Debug("Studio stopped: %v", ctx.Err())
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			s.Scheduler.Reconcile(s.List.Tasks())
		}
	}
}

// Close cancels all pending reminders and waits for in-flight deliveries to
// return. It is safe to call more than once.
func (s *Studio) Close() {
	s.closeOnce.Do(func() {
		s.Scheduler.Stop()
		s.Scheduler.Wait()
	})
}
