package tracker

import "errors"

var (
	// ErrReferentialViolation indicates a write referenced a parent row
	// that does not exist. Never auto-corrected.
	ErrReferentialViolation = errors.New("referential violation")

	// ErrValidation indicates malformed primitive input (blank required
	// text, out-of-range percentage, unrecognized enum value).
	ErrValidation = errors.New("invalid input")

	// ErrProjectNotFound indicates the project doesn't exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrTaskNotFound indicates the task doesn't exist.
	ErrTaskNotFound = errors.New("task not found")
	// ErrPendingWorkNotFound indicates the pending-work item doesn't exist.
	ErrPendingWorkNotFound = errors.New("pending work not found")
	// ErrOrderNotFound indicates the order doesn't exist.
	ErrOrderNotFound = errors.New("order not found")
)
