package decision

import "errors"

// Sentinel errors for the decision service layer.
var (
	// ErrNotFound covers both a missing decision and a decision owned by a
	// different user: callers can't distinguish the two, so existence is
	// never leaked across users.
	ErrNotFound = errors.New("decision not found")

	// ErrAlreadyReviewed is returned on a second review attempt. Reviews are
	// one-time transitions.
	ErrAlreadyReviewed = errors.New("decision already reviewed")

	// ErrValidation is returned for malformed review or record input, such
	// as a rejection without a correction payload.
	ErrValidation = errors.New("invalid decision input")

	// ErrInternal wraps storage failures. No partial decision rows persist
	// when it is returned.
	ErrInternal = errors.New("internal decision store error")
)
