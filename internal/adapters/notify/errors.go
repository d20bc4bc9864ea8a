package notify

import "errors"

// Inbox errors.
var (
	ErrNotFound      = errors.New("notification not found")
	ErrNotAuthorized = errors.New("notification belongs to another recipient")
)
