package server

import (
	"context"
	"sync"
	"time"

	"github.com/creachadair/jrpc2"

	"github.com/todostudio/todostudio/common"
	"github.com/todostudio/todostudio/internal/notify"
	"github.com/todostudio/todostudio/pkg/logger"
)

// RPCNotifier maintains a set of connected jrpc2 WebSocket servers
// and broadcasts push notifications to all of them.
type RPCNotifier struct {
	mu      sync.RWMutex
	servers map[*jrpc2.Server]struct{}
	log     logger.Logger
}

// NewRPCNotifier creates a new notifier. A nil logger discards messages.
func NewRPCNotifier(l logger.Logger) *RPCNotifier {
	if l == nil {
		l = logger.NewNopLogger()
	}
	return &RPCNotifier{
		servers: make(map[*jrpc2.Server]struct{}),
		log:     l,
	}
}

// Register adds a server to the broadcast set.
func (n *RPCNotifier) Register(srv *jrpc2.Server) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.servers[srv] = struct{}{}
}

// Unregister removes a server from the broadcast set.
func (n *RPCNotifier) Unregister(srv *jrpc2.Server) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.servers, srv)
}

// Broadcast sends a push notification to all registered servers.
// Servers that fail to receive (e.g., disconnected) are unregistered.
func (n *RPCNotifier) Broadcast(method string, params any) {
	n.mu.RLock()
	servers := make([]*jrpc2.Server, 0, len(n.servers))
	for srv := range n.servers {
		servers = append(servers, srv)
	}
	n.mu.RUnlock()

	var failed []*jrpc2.Server
	for _, srv := range servers {
		if err := srv.Notify(context.Background(), method, params); err != nil {
			n.log.Warning("RPC push failed: %v", err)
			failed = append(failed, srv)
		}
	}

	if len(failed) > 0 {
		n.mu.Lock()
		for _, srv := range failed {
			delete(n.servers, srv)
		}
		n.mu.Unlock()
	}
}

// Deliver pushes a delivered reminder: reminder.fired always, and
// reminder.alert as well when the alert fallback ran.
func (n *RPCNotifier) Deliver(d notify.Delivery) {
	ev := eventFor(d)
	n.Broadcast(common.PushReminderFired, ev)
	if d.Method == notify.MethodAlert {
		n.Broadcast(common.PushReminderAlert, ev)
	}
}

// Count returns the number of registered servers (for testing).
func (n *RPCNotifier) Count() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.servers)
}

// eventNow is swapped in tests.
var eventNow = time.Now

func eventFor(d notify.Delivery) common.ReminderEvent {
	return common.ReminderEvent{
		ID:      d.Task.ID,
		Text:    d.Task.Text,
		Method:  string(d.Method),
		Message: d.Message,
		At:      eventNow(),
	}
}
