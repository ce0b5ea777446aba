package notify

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/todostudio/todostudio/pkg/logger"
	"github.com/todostudio/todostudio/pkg/todolib"
)

type alertRecorder struct {
	msgs []string
}

func (a *alertRecorder) Alert(msg string) { a.msgs = append(a.msgs, msg) }

var task = todolib.Task{ID: "t1", Text: "Water plants"}

func TestNotifier_GrantedShowsNotification(t *testing.T) {
	sink := &FakeSink{Supported: true, Permission: PermissionGranted}
	alerts := &alertRecorder{}
	n := NewNotifier(sink, alerts, nil)

	var got []Delivery
	n.Observe(func(d Delivery) { got = append(got, d) })
	n.Notify(context.Background(), task)

	shown := sink.Shown()
	if len(shown) != 1 {
		t.Fatalf("expected one notification, got %d", len(shown))
	}
	want := Shown{Title: "Task reminder", Body: "Water plants is due now", Tag: "t1"}
	if shown[0] != want {
		t.Errorf("Show(%+v); want %+v", shown[0], want)
	}
	if sink.Requests() != 0 {
		t.Error("permission must not be requested once granted")
	}
	if len(alerts.msgs) != 0 {
		t.Errorf("unexpected alerts: %v", alerts.msgs)
	}
	if len(got) != 1 || got[0].Method != MethodNotification {
		t.Errorf("unexpected deliveries: %+v", got)
	}
}

func TestNotifier_DefaultRequestsPermission(t *testing.T) {
	tests := []struct {
		name      string
		decision  Permission
		wantShown int
		wantAlert bool
	}{
		{"granted", PermissionGranted, 1, false},
		{"denied", PermissionDenied, 0, true},
		{"dismissed", PermissionDefault, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &FakeSink{Supported: true, Permission: PermissionDefault, Decision: tt.decision}
			alerts := &alertRecorder{}
			NewNotifier(sink, alerts, nil).Notify(context.Background(), task)

			if sink.Requests() != 1 {
				t.Errorf("expected one permission request, got %d", sink.Requests())
			}
			if len(sink.Shown()) != tt.wantShown {
				t.Errorf("expected %d notifications, got %d", tt.wantShown, len(sink.Shown()))
			}
			if tt.wantAlert && (len(alerts.msgs) != 1 || alerts.msgs[0] != "Reminder: Water plants") {
				t.Errorf("expected fallback alert, got %v", alerts.msgs)
			}
			if !tt.wantAlert && len(alerts.msgs) != 0 {
				t.Errorf("unexpected alerts: %v", alerts.msgs)
			}
		})
	}
}

func TestNotifier_DeniedDoesNotAskAgain(t *testing.T) {
	sink := &FakeSink{Supported: true, Permission: PermissionDenied, Decision: PermissionGranted}
	alerts := &alertRecorder{}
	n := NewNotifier(sink, alerts, nil)
	n.Notify(context.Background(), task)
	n.Notify(context.Background(), task)

	if sink.Requests() != 0 {
		t.Errorf("denied permission must not be requested, got %d requests", sink.Requests())
	}
	if len(alerts.msgs) != 2 {
		t.Errorf("expected two alerts, got %v", alerts.msgs)
	}
}

func TestNotifier_UnsupportedAlerts(t *testing.T) {
	alerts := &alertRecorder{}
	n := NewNotifier(NopSink{}, alerts, nil)
	var got []Delivery
	n.Observe(func(d Delivery) { got = append(got, d) })
	n.Notify(context.Background(), task)

	if len(alerts.msgs) != 1 || alerts.msgs[0] != "Reminder: Water plants" {
		t.Fatalf("expected fallback alert, got %v", alerts.msgs)
	}
	if len(got) != 1 || got[0].Method != MethodAlert || got[0].Message != "Reminder: Water plants" {
		t.Errorf("unexpected deliveries: %+v", got)
	}
}

func TestNotifier_ShowFailureFallsBack(t *testing.T) {
	sink := &FakeSink{Supported: true, Permission: PermissionGranted, ShowErr: errors.New("server gone")}
	alerts := &alertRecorder{}
	log := logger.NewMockLogger()
	NewNotifier(sink, alerts, log).Notify(context.Background(), task)

	if len(alerts.msgs) != 1 {
		t.Fatalf("expected fallback alert, got %v", alerts.msgs)
	}
	if len(log.Warnings()) != 1 {
		t.Errorf("expected the failure to be logged, got %v", log.Warnings())
	}
}

func TestNotifier_RequestErrorFallsBack(t *testing.T) {
	sink := &FakeSink{Supported: true, Permission: PermissionDefault, RequestErr: errors.New("no bus")}
	alerts := &alertRecorder{}
	NewNotifier(sink, alerts, nil).Notify(context.Background(), task)
	if len(alerts.msgs) != 1 {
		t.Fatalf("expected fallback alert, got %v", alerts.msgs)
	}
}

func TestNotifier_NilSinkAlerts(t *testing.T) {
	var buf bytes.Buffer
	NewNotifier(nil, NewWriterAlerter(&buf), nil).Notify(context.Background(), task)
	if buf.String() != "Reminder: Water plants\n" {
		t.Errorf("unexpected alert output %q", buf.String())
	}
}

func TestMultiAlerter(t *testing.T) {
	a, b := &alertRecorder{}, &alertRecorder{}
	var fn []string
	MultiAlerter{a, b, AlerterFunc(func(msg string) { fn = append(fn, msg) })}.Alert("hi")
	if len(a.msgs) != 1 || len(b.msgs) != 1 || len(fn) != 1 {
		t.Errorf("expected every alerter to run: %v %v %v", a.msgs, b.msgs, fn)
	}
}

func TestParsePermission(t *testing.T) {
	tests := map[string]Permission{
		"":         PermissionDefault,
		"default":  PermissionDefault,
		"Granted":  PermissionGranted,
		" denied ": PermissionDenied,
	}
	for in, want := range tests {
		got, err := ParsePermission(in)
		if err != nil || got != want {
			t.Errorf("ParsePermission(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParsePermission("maybe"); !errors.Is(err, ErrInvalidPermission) {
		t.Errorf("expected ErrInvalidPermission, got %v", err)
	}
}
