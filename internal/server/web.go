package server

import (
	"net/http"
	"sync"

	"golang.org/x/net/websocket"

	"github.com/todostudio/todostudio/common"
	"github.com/todostudio/todostudio/internal/notify"
	"github.com/todostudio/todostudio/pkg/logger"
)

// EventsPath serves the plain JSON reminder feed.
const EventsPath = "/events"

// EventFeed streams every delivered reminder as one JSON message per event
// to WebSocket clients that do not speak JSON-RPC.
type EventFeed struct {
	log    logger.Logger
	mu     sync.Mutex
	subs   map[chan common.ReminderEvent]struct{}
	done   chan struct{}
	closed bool
}

// NewEventFeed creates an empty feed.
func NewEventFeed(l logger.Logger) *EventFeed {
	if l == nil {
		l = logger.NewNopLogger()
	}
	return &EventFeed{
		log:  l,
		subs: make(map[chan common.ReminderEvent]struct{}),
		done: make(chan struct{}),
	}
}

// Deliver publishes d to every connected client. Slow clients miss events
// rather than block delivery.
func (f *EventFeed) Deliver(d notify.Delivery) {
	ev := eventFor(d)
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subs {
		select {
		case ch <- ev:
		default:
			f.log.Warning("Event feed client lagging, dropped event for task %s", ev.ID)
		}
	}
}

func (f *EventFeed) subscribe() (chan common.ReminderEvent, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, false
	}
	ch := make(chan common.ReminderEvent, 16)
	f.subs[ch] = struct{}{}
	return ch, true
}

func (f *EventFeed) unsubscribe(ch chan common.ReminderEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.subs, ch)
}

// Clients returns the number of connected clients.
func (f *EventFeed) Clients() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

func (f *EventFeed) handleConnection(conn *websocket.Conn) {
	defer conn.Close()
	ch, ok := f.subscribe()
	if !ok {
		return
	}
	defer f.unsubscribe(ch)

	// The feed is write-only; reading only detects the peer going away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		var msg []byte
		for {
			if err := websocket.Message.Receive(conn, &msg); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case ev := <-ch:
			if err := websocket.JSON.Send(conn, ev); err != nil {
				f.log.Debug("Event feed send failed: %v", err)
				return
			}
		case <-gone:
			return
		case <-f.done:
			return
		}
	}
}

func (f *EventFeed) handler() http.Handler {
	// Accept clients without an Origin header; the bearer token gates access.
	return websocket.Server{
		Handshake: func(*websocket.Config, *http.Request) error { return nil },
		Handler:   f.handleConnection,
	}
}

// Close disconnects every client.
func (f *EventFeed) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.done)
	}
	return nil
}
