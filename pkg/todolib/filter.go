package todolib

import (
	"fmt"
	"strings"
)

// Filter selects a subset of tasks for display.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

// Filters lists every filter in display order.
var Filters = []Filter{FilterAll, FilterActive, FilterCompleted}

// ParseFilter maps a name to a Filter. "done" is accepted for completed.
// Unknown names fall back to FilterAll.
func ParseFilter(s string) Filter {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "active":
		return FilterActive
	case "completed", "done":
		return FilterCompleted
	default:
		return FilterAll
	}
}

// Label is the human readable name of the filter.
func (f Filter) Label() string {
	switch f {
	case FilterActive:
		return "Active"
	case FilterCompleted:
		return "Done"
	default:
		return "All"
	}
}

// Match reports whether t belongs to the filter.
func (f Filter) Match(t Task) bool {
	switch f {
	case FilterActive:
		return !t.Done
	case FilterCompleted:
		return t.Done
	default:
		return true
	}
}

// Summary renders the "N done | M left" counter.
func Summary(done, left int) string {
	return fmt.Sprintf("%d done | %d left", done, left)
}

// EmptyMessage is shown when a filtered view has nothing to display.
// total is the size of the unfiltered list.
func EmptyMessage(total int) string {
	if total == 0 {
		return "No tasks yet. Add your first one to get started."
	}
	return "Nothing to show for this filter."
}

// CompletedMessage congratulates on finished tasks; empty when none are done.
func CompletedMessage(done int) string {
	switch {
	case done <= 0:
		return ""
	case done == 1:
		return "Nice work - 1 task done."
	default:
		return fmt.Sprintf("Nice work - %d tasks done.", done)
	}
}
