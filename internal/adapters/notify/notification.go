// Package notify stores and dispatches participant notifications: the
// inbox backends, the delivery sinks run by the worker pool and the
// dispatcher that feeds the queue.
package notify

import (
	"time"

	"github.com/okian/hackmatch/internal/domain/model"
)

// DefaultListLimit is how many notifications List returns when no limit is given.
const DefaultListLimit = 50

// Notification is a delivered intent as it sits in a recipient's inbox.
type Notification struct {
	ID                string                 `json:"id"`
	RecipientID       string                 `json:"recipient_id"`
	Kind              model.NotificationKind `json:"kind"`
	Title             string                 `json:"title"`
	Message           string                 `json:"message"`
	RelatedEntityID   string                 `json:"related_entity_id,omitempty"`
	RelatedEntityKind model.EntityKind       `json:"related_entity_kind,omitempty"`
	Read              bool                   `json:"read"`
	CreatedAt         time.Time              `json:"created_at"`
}

// FromIntent builds an unread notification for intent.
func FromIntent(id string, intent model.NotificationIntent, at time.Time) Notification {
	return Notification{
		ID:                id,
		RecipientID:       intent.RecipientID,
		Kind:              intent.Kind,
		Title:             intent.Title,
		Message:           intent.Message,
		RelatedEntityID:   intent.RelatedEntityID,
		RelatedEntityKind: intent.RelatedEntityKind,
		CreatedAt:         at,
	}
}

func limitOrDefault(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
