package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli"
	"github.com/vbauerster/mpb/v8"

	cmdcommon "github.com/todostudio/todostudio/cmd/common"
	"github.com/todostudio/todostudio/common"
	"github.com/todostudio/todostudio/pkg/todocli"
)

const (
	watchTick    = time.Second
	watchRefresh = 10 * time.Second
)

type countdown struct {
	bar   *mpb.Bar
	start time.Time
	due   time.Time
	total int64
}

// watcher keeps one countdown bar per pending reminder.
type watcher struct {
	p    *mpb.Progress
	bars map[string]*countdown
}

func newWatcher(p *mpb.Progress) *watcher {
	return &watcher{p: p, bars: make(map[string]*countdown)}
}

// sync adds bars for new reminders and drops bars whose reminder is gone.
func (w *watcher) sync(pending []common.PendingReminder, now time.Time) {
	seen := make(map[string]bool, len(pending))
	for _, r := range pending {
		seen[r.ID] = true
		if c, ok := w.bars[r.ID]; ok && c.due.Equal(r.DueAt) {
			continue
		}
		w.drop(r.ID)
		total := int64(r.DueAt.Sub(now).Round(time.Second) / time.Second)
		w.bars[r.ID] = &countdown{
			bar:   cmdcommon.InitCountdownBar(w.p, r.Text, total),
			start: now,
			due:   r.DueAt,
			total: max(total, 1),
		}
	}
	for id := range w.bars {
		if !seen[id] {
			w.drop(id)
		}
	}
}

// tick advances every bar to now.
func (w *watcher) tick(now time.Time) {
	for _, c := range w.bars {
		elapsed := int64(now.Sub(c.start) / time.Second)
		c.bar.SetCurrent(min(elapsed, c.total))
	}
}

// fired completes the bar of a delivered reminder.
func (w *watcher) fired(id string) {
	if c, ok := w.bars[id]; ok {
		c.bar.SetCurrent(c.total)
		delete(w.bars, id)
	}
}

func (w *watcher) drop(id string) {
	if c, ok := w.bars[id]; ok {
		c.bar.Abort(true)
		delete(w.bars, id)
	}
}

func (w *watcher) close() {
	for id := range w.bars {
		w.drop(id)
	}
	w.p.Wait()
}

func watch(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	type push struct {
		method string
		ev     common.ReminderEvent
	}
	pushes := make(chan push, 16)
	client := newClient(ctx, "watch", &todocli.Options{
		OnReminder: func(method string, ev common.ReminderEvent) {
			select {
			case pushes <- push{method, ev}:
			default:
			}
		},
	})
	if client == nil {
		return nil
	}
	defer client.Close()

	sctx, cancel := setupShutdownHandler()
	defer cancel()

	p := mpb.NewWithContext(sctx, mpb.WithOutput(os.Stdout))
	w := newWatcher(p)
	defer w.close()

	refresh := func() bool {
		cctx, cancel := context.WithTimeout(sctx, callTimeout)
		defer cancel()
		res, err := client.Pending(cctx)
		if err != nil {
			if sctx.Err() == nil {
				cmdcommon.PrintRuntimeErr(ctx, "watch", "get_pending", err)
			}
			return false
		}
		w.sync(res.Pending, time.Now())
		return true
	}
	if !refresh() {
		return nil
	}
	fmt.Fprintln(p, "Watching reminders, press Ctrl+C to stop.")

	ticker := time.NewTicker(watchTick)
	defer ticker.Stop()
	lastRefresh := time.Now()
	for {
		select {
		case <-sctx.Done():
			return nil
		case <-client.Done():
			fmt.Fprintln(p, "Lost connection to the daemon.")
			return nil
		case m := <-pushes:
			switch m.method {
			case common.PushReminderFired:
				fmt.Fprintf(p, "[%s] Reminder: %s\n", m.ev.At.Local().Format(time.Kitchen), m.ev.Text)
				w.fired(m.ev.ID)
			case common.PushReminderAlert:
				fmt.Fprintf(p, "        (no desktop notification: %s)\n", m.ev.Message)
			}
		case now := <-ticker.C:
			w.tick(now)
			if now.Sub(lastRefresh) >= watchRefresh {
				lastRefresh = now
				if !refresh() {
					return nil
				}
			}
		}
	}
}
