package ats

import "errors"

// Error kinds surfaced by the service. Callers match them with errors.Is;
// the wrapped chain carries the detail.
var (
	// ErrValidation is returned before any store access when input is rejected.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound means a referenced candidate, interview or interviewer is missing.
	ErrNotFound = errors.New("not found")

	// ErrPersistence wraps document store read/write failures.
	ErrPersistence = errors.New("persistence failed")

	// ErrConflict means a candidate changed between read and write.
	// It is always reported together with ErrPersistence.
	ErrConflict = errors.New("concurrent modification")

	// ErrObjectStore wraps object store failures other than not-found.
	ErrObjectStore = errors.New("object store failed")

	// ErrObjectNotFound is returned by object stores for a missing locator.
	ErrObjectNotFound = errors.New("object not found")

	// ErrOperationAborted wraps failures of external collaborators such as
	// the insight generator.
	ErrOperationAborted = errors.New("operation aborted")
)
