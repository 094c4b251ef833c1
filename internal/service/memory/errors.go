package memory

import "errors"

// Sentinel errors for the memory service layer.
var (
	// ErrNotFound is returned when a memory id doesn't resolve to learned
	// state owned by the requesting user.
	ErrNotFound = errors.New("memory not found")

	// ErrValidation is returned for malformed memory updates, such as a
	// weight outside its allowed range.
	ErrValidation = errors.New("invalid memory input")

	// ErrInternal wraps storage failures.
	ErrInternal = errors.New("internal memory store error")
)
