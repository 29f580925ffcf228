package taskflow

import "errors"

var (
	// ErrTaskNotFound is returned when the task id does not exist.
	ErrTaskNotFound = errors.New("task not found")

	// ErrBookingNotFound is returned when the task's linked booking is missing.
	// A transition never succeeds silently without its booking side effects.
	ErrBookingNotFound = errors.New("booking not found")

	// ErrUnauthorized is returned when the actor is not the task's assigned provider.
	ErrUnauthorized = errors.New("actor is not the assigned provider")

	// ErrIllegalTransition is returned when the requested status is not
	// reachable from the task's current status, including any request
	// against a terminal task.
	ErrIllegalTransition = errors.New("illegal status transition")

	// ErrConflict is returned when a concurrent transition committed between
	// the read and the guarded write. The caller should retry against the
	// fresh state or give up cleanly.
	ErrConflict = errors.New("task status changed concurrently")

	// ErrTaskExists is returned when a booking already has a provider task.
	ErrTaskExists = errors.New("booking already has a task")
)
