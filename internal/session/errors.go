package session

import "errors"

var (
	// ErrInvalidInput indicates a malformed request, e.g. an upload
	// with zero documents.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound indicates an unknown student or problem number.
	ErrNotFound = errors.New("not found")
)
