package notify

import (
	"context"
	"sync"

	"github.com/todostudio/todostudio/pkg/logger"
	"github.com/todostudio/todostudio/pkg/todolib"
)

// Title is the title of every reminder notification.
const Title = "Task reminder"

// Body returns the notification body for task.
func Body(task todolib.Task) string {
	return task.Text + " is due now"
}

// AlertMessage returns the fallback alert text for task.
func AlertMessage(task todolib.Task) string {
	return "Reminder: " + task.Text
}

// Method is the channel a reminder was delivered through.
type Method string

const (
	MethodNotification Method = "notification"
	MethodAlert        Method = "alert"
)

// Delivery describes a delivered reminder.
type Delivery struct {
	Task    todolib.Task
	Method  Method
	Message string
}

// Notifier delivers reminders through a Sink with an Alerter fallback.
type Notifier struct {
	sink  Sink
	alert Alerter
	log   logger.Logger

	mu        sync.RWMutex
	observers []func(Delivery)
}

// NewNotifier creates a Notifier. A nil sink behaves like NopSink; a nil
// log discards messages.
func NewNotifier(sink Sink, alert Alerter, log logger.Logger) *Notifier {
	if sink == nil {
		sink = NopSink{}
	}
	if alert == nil {
		alert = AlerterFunc(func(string) {})
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Notifier{sink: sink, alert: alert, log: log}
}

// Observe registers fn to be called after every delivery.
func (n *Notifier) Observe(fn func(Delivery)) {
	n.mu.Lock()
	n.observers = append(n.observers, fn)
	n.mu.Unlock()
}

// Notify shows the reminder for task. Permission is requested only while it
// is still default; anything short of a displayed notification alerts.
func (n *Notifier) Notify(ctx context.Context, task todolib.Task) {
	if n.sink.IsSupported() {
		perm := n.sink.PermissionState()
		if perm == PermissionDefault {
			var err error
			perm, err = n.sink.RequestPermission(ctx)
			if err != nil {
				n.log.Warning("Notification permission request failed: %v", err)
			}
		}
		if perm == PermissionGranted {
			err := n.sink.Show(Title, Body(task), task.ID)
			if err == nil {
				n.log.Debug("Notified about task %s", task.ID)
				n.emit(Delivery{Task: task, Method: MethodNotification, Message: Body(task)})
				return
			}
			n.log.Warning("Showing notification for task %s failed: %v", task.ID, err)
		}
	}
	msg := AlertMessage(task)
	n.alert.Alert(msg)
	n.emit(Delivery{Task: task, Method: MethodAlert, Message: msg})
}

func (n *Notifier) emit(d Delivery) {
	n.mu.RLock()
	observers := append(([]func(Delivery))(nil), n.observers...)
	n.mu.RUnlock()
	for _, fn := range observers {
		fn(d)
	}
}
