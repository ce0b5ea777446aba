package notify

import (
	"fmt"
	"strings"
)

// Permission is the user's decision about desktop notifications.
type Permission string

const (
	PermissionDefault     Permission = "default"
	PermissionGranted     Permission = "granted"
	PermissionDenied      Permission = "denied"
	PermissionUnsupported Permission = "unsupported"
)

// ParsePermission reads a permission name. An empty string means default.
func ParsePermission(s string) (Permission, error) {
	switch p := Permission(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PermissionDefault, nil
	case PermissionDefault, PermissionGranted, PermissionDenied, PermissionUnsupported:
		return p, nil
	default:
		return PermissionDefault, fmt.Errorf("%w: %q", ErrInvalidPermission, s)
	}
}

func (p Permission) String() string {
	return string(p)
}
