package notify

import "errors"

var (
	// ErrInvalidPermission is returned by ParsePermission for unknown names.
	ErrInvalidPermission = errors.New("invalid notification permission")
	// ErrUnsupported is returned by sinks that cannot display notifications.
	ErrUnsupported = errors.New("notifications are not supported")
	// ErrNotPermitted is returned by Show when permission is not granted.
	ErrNotPermitted = errors.New("notifications are not permitted")
)
