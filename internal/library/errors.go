package library

import "errors"

// Sentinel errors returned by the Service. Callers match them with errors.Is;
// the HTTP layer maps them to status codes.
var (
	// ErrValidation marks malformed or missing input. The caller can correct
	// the input and retry.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a reference to a book, member or open transaction
	// that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks an operation that would violate a state invariant,
	// such as issuing an already-issued book or deleting a member with
	// active loans.
	ErrConflict = errors.New("conflict")

	// ErrCorruptState marks an invariant that is already broken in the
	// persisted data. The operation is aborted without a partial write.
	ErrCorruptState = errors.New("corrupt state")
)
