package todolib

import "errors"

var (
	ErrTaskNotFound = errors.New("task you are trying to update is not found")
	ErrEmptyText    = errors.New("task text cannot be empty")
	ErrAmbiguousID  = errors.New("task id prefix matches more than one task")
)
