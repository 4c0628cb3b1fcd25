package model

import "errors"

var (
	// ErrNotFound is returned when an event ID has no matching live event.
	ErrNotFound = errors.New("model: event not found")
	// ErrAlreadyExists is returned by Add when the given ID is already live.
	ErrAlreadyExists = errors.New("model: event already exists")
	// ErrInvalidEvent is returned when an event fails basic validation
	// (empty ID, negative duration, or zero time).
	ErrInvalidEvent = errors.New("model: invalid event")
	// ErrNotDeleted is returned by Restore when the ID is not in the
	// soft-delete mirror.
	ErrNotDeleted = errors.New("model: event is not soft-deleted")
)
