package domain

import "errors"

// Sentinel errors shared across entities. Services return these unwrapped so
// the delivery layer can map them to HTTP status codes with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
)
