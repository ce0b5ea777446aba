package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"golang.org/x/sync/singleflight"

	"github.com/todostudio/todostudio/pkg/logger"
)

const (
	notificationsName  = "org.freedesktop.Notifications"
	notificationsPath  = dbus.ObjectPath("/org/freedesktop/Notifications")
	notificationsIface = "org.freedesktop.Notifications"

	signalActionInvoked = notificationsIface + ".ActionInvoked"
	signalClosed        = notificationsIface + ".NotificationClosed"

	actionAllow = "allow"
	actionDeny  = "deny"

	promptKey = "permission"

	// DefaultPermissionTimeout bounds how long a permission prompt waits.
	DefaultPermissionTimeout = 2 * time.Minute
)

// connectSessionBus is swapped in tests.
var connectSessionBus = func() (*dbus.Conn, error) {
	return dbus.ConnectSessionBus()
}

// DBusSink shows freedesktop desktop notifications over the session bus.
// The bus is dialed on first use.
type DBusSink struct {
	appName string
	timeout time.Duration
	log     logger.Logger
	prompts singleflight.Group

	mu      sync.Mutex
	conn    *dbus.Conn
	connErr error
	dialed  bool
	perm    Permission
	ids     map[string]uint32
}

// NewDBusSink creates a sink starting from the initial permission. A zero
// timeout uses DefaultPermissionTimeout.
func NewDBusSink(appName string, initial Permission, timeout time.Duration, log logger.Logger) *DBusSink {
	if timeout <= 0 {
		timeout = DefaultPermissionTimeout
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	if initial == "" || initial == PermissionUnsupported {
		initial = PermissionDefault
	}
	return &DBusSink{
		appName: appName,
		timeout: timeout,
		log:     log,
		perm:    initial,
		ids:     make(map[string]uint32),
	}
}

func (s *DBusSink) connect() (*dbus.Conn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dialed {
		s.dialed = true
		s.conn, s.connErr = connectSessionBus()
		if s.connErr != nil {
			s.log.Debug("Session bus unavailable: %v", s.connErr)
		}
	}
	return s.conn, s.connErr
}

// IsSupported reports whether a notification server owns its bus name.
func (s *DBusSink) IsSupported() bool {
	conn, err := s.connect()
	if err != nil {
		return false
	}
	var owned bool
	err = conn.BusObject().Call("org.freedesktop.DBus.NameHasOwner", 0, notificationsName).Store(&owned)
	if err != nil {
		s.log.Debug("NameHasOwner(%s) failed: %v", notificationsName, err)
		return false
	}
	return owned
}

// PermissionState returns the remembered permission.
func (s *DBusSink) PermissionState() Permission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.perm
}

// RequestPermission shows a prompt with Allow and Deny actions and waits
// for the answer. Callers arriving while a prompt is open wait for that
// prompt and share its answer. Dismissing the prompt or letting it time out
// keeps the permission at default, so the next reminder asks again.
func (s *DBusSink) RequestPermission(ctx context.Context) (Permission, error) {
	conn, err := s.connect()
	if err != nil {
		return PermissionUnsupported, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	return s.askOnce(func() (Permission, error) {
		return s.prompt(ctx, conn)
	})
}

// askOnce runs ask unless a prompt is already open, in which case it
// returns that prompt's result.
func (s *DBusSink) askOnce(ask func() (Permission, error)) (Permission, error) {
	v, err, shared := s.prompts.Do(promptKey, func() (interface{}, error) {
		return ask()
	})
	if shared {
		s.log.Debug("Shared the open permission prompt")
	}
	return v.(Permission), err
}

func (s *DBusSink) prompt(ctx context.Context, conn *dbus.Conn) (Permission, error) {
	signals := make(chan *dbus.Signal, 16)
	conn.Signal(signals)
	defer conn.RemoveSignal(signals)
	match := []dbus.MatchOption{
		dbus.WithMatchInterface(notificationsIface),
		dbus.WithMatchObjectPath(notificationsPath),
	}
	if err := conn.AddMatchSignal(match...); err != nil {
		return s.PermissionState(), fmt.Errorf("subscribe to notification signals: %w", err)
	}
	defer conn.RemoveMatchSignal(match...)

	actions := []string{actionAllow, "Allow", actionDeny, "Deny"}
	id, err := s.notify(conn, 0, "Allow reminders?",
		"Show a desktop notification when a task reminder is due.", actions, 0)
	if err != nil {
		return s.PermissionState(), fmt.Errorf("show permission prompt: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	perm := awaitDecision(ctx, signals, id)
	if perm == PermissionDefault {
		conn.Object(notificationsName, notificationsPath).Call(notificationsIface+".CloseNotification", 0, id)
	}

	s.mu.Lock()
	if perm != PermissionDefault {
		s.perm = perm
	}
	perm = s.perm
	s.mu.Unlock()
	s.log.Info("Notification permission: %s", perm)
	return perm, nil
}

// awaitDecision waits for the answer to prompt id.
func awaitDecision(ctx context.Context, signals <-chan *dbus.Signal, id uint32) Permission {
	for {
		select {
		case <-ctx.Done():
			return PermissionDefault
		case sig, ok := <-signals:
			if !ok {
				return PermissionDefault
			}
			if sig == nil || len(sig.Body) < 2 {
				continue
			}
			if sigID, _ := sig.Body[0].(uint32); sigID != id {
				continue
			}
			switch sig.Name {
			case signalActionInvoked:
				switch key, _ := sig.Body[1].(string); key {
				case actionAllow:
					return PermissionGranted
				case actionDeny:
					return PermissionDenied
				}
			case signalClosed:
				return PermissionDefault
			}
		}
	}
}

// Show displays a notification, replacing the previous one with the same tag.
func (s *DBusSink) Show(title, body, tag string) error {
	conn, err := s.connect()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	if s.PermissionState() != PermissionGranted {
		return ErrNotPermitted
	}
	s.mu.Lock()
	replaces := s.ids[tag]
	s.mu.Unlock()

	id, err := s.notify(conn, replaces, title, body, nil, -1)
	if err != nil {
		return fmt.Errorf("show notification: %w", err)
	}
	if tag != "" {
		s.mu.Lock()
		s.ids[tag] = id
		s.mu.Unlock()
	}
	return nil
}

func (s *DBusSink) notify(conn *dbus.Conn, replaces uint32, summary, body string, actions []string, expire int32) (uint32, error) {
	if actions == nil {
		actions = []string{}
	}
	hints := map[string]dbus.Variant{
		"urgency": dbus.MakeVariant(byte(1)),
	}
	var id uint32
	err := conn.Object(notificationsName, notificationsPath).Call(
		notificationsIface+".Notify", 0,
		s.appName, replaces, "", summary, body, actions, hints, expire,
	).Store(&id)
	return id, err
}

// Close releases the bus connection.
func (s *DBusSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	s.connErr = ErrUnsupported
	return err
}
