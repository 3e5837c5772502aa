package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for validation.
var (
	ErrMissingType     = errors.New("type is required")
	ErrMissingLabel    = errors.New("label is required")
	ErrMissingTarget   = errors.New("target is required")
	ErrMissingRelation = errors.New("relation is required")
	ErrInvalidArgument = errors.New("invalid argument")
)

// Sentinel errors for entity lookups.
var (
	ErrNodeNotFound = errors.New("node not found")
	ErrEdgeNotFound = errors.New("edge not found")
)

// ErrDuplicateKey indicates a unique constraint violation (maps to HTTP 409 Conflict).
var ErrDuplicateKey = errors.New("duplicate key")

// Sentinel errors for traversals.
var (
	// ErrCursorDone is returned by a cursor once every element has been read.
	ErrCursorDone = errors.New("cursor done")

	ErrStoreUnavailable = errors.New("store unavailable")
	ErrTraversalFailed  = errors.New("traversal failed")
)

// ErrFieldTooLong returns an error indicating a field exceeds its maximum length.
func ErrFieldTooLong(field string, maxLen int) error {
	return fmt.Errorf("%s exceeds maximum length of %d", field, maxLen)
}

// InvalidArgument returns an error matching ErrInvalidArgument with detail.
func InvalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
