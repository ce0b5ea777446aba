package notify

import (
	"context"
	"sync"
)

// Sink is a desktop notification facility.
type Sink interface {
	// IsSupported reports whether the environment can show notifications.
	IsSupported() bool
	// PermissionState returns the current permission.
	PermissionState() Permission
	// RequestPermission asks the user and returns the resulting permission.
	RequestPermission(ctx context.Context) (Permission, error)
	// Show displays a notification. Notifications with the same tag
	// replace each other.
	Show(title, body, tag string) error
}

// NopSink never supports notifications, so every reminder is alerted.
type NopSink struct{}

func (NopSink) IsSupported() bool { return false }

func (NopSink) PermissionState() Permission { return PermissionUnsupported }

func (NopSink) RequestPermission(context.Context) (Permission, error) {
	return PermissionUnsupported, nil
}

func (NopSink) Show(string, string, string) error { return ErrUnsupported }

// Shown records one FakeSink.Show call.
type Shown struct {
	Title string
	Body  string
	Tag   string
}

// FakeSink is a scriptable Sink for tests.
type FakeSink struct {
	mu sync.Mutex
	// Supported is returned by IsSupported.
	Supported bool
	// Permission is the current state; a successful request replaces it.
	Permission Permission
	// Decision is what RequestPermission resolves to.
	Decision Permission
	// RequestErr makes RequestPermission fail.
	RequestErr error
	// ShowErr makes Show fail.
	ShowErr error

	requests int
	shown    []Shown
}

func (f *FakeSink) IsSupported() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Supported
}

func (f *FakeSink) PermissionState() Permission {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Permission
}

func (f *FakeSink) RequestPermission(context.Context) (Permission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests++
	if f.RequestErr != nil {
		return f.Permission, f.RequestErr
	}
	f.Permission = f.Decision
	return f.Permission, nil
}

func (f *FakeSink) Show(title, body, tag string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ShowErr != nil {
		return f.ShowErr
	}
	f.shown = append(f.shown, Shown{Title: title, Body: body, Tag: tag})
	return nil
}

// Requests returns how often RequestPermission was called.
func (f *FakeSink) Requests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}

// Shown returns a copy of the displayed notifications.
func (f *FakeSink) Shown() []Shown {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Shown(nil), f.shown...)
}
