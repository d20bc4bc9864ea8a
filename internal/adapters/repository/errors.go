package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("already exists")
	ErrInvalidEntity     = errors.New("invalid entity")
	ErrAlreadyRegistered = errors.New("already registered for this hackathon")
	ErrHackathonFull     = errors.New("hackathon is full")
	ErrImmutableField    = errors.New("immutable team field changed")
)
