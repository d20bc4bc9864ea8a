package model

// NotificationKind groups notifications for the inbox.
type NotificationKind string

// Notification kinds.
const (
	KindTeam      NotificationKind = "team"
	KindHackathon NotificationKind = "hackathon"
	KindDeadline  NotificationKind = "deadline"
)

// EntityKind names the record a notification links to.
type EntityKind string

// Linked entity kinds.
const (
	EntityTeam      EntityKind = "Team"
	EntityHackathon EntityKind = "Hackathon"
)

// NotificationIntent is what the core asks the delivery layer to send.
// It is never stored by the core.
type NotificationIntent struct {
	RecipientID       string           `json:"recipient_id"`
	Kind              NotificationKind `json:"kind"`
	Title             string           `json:"title"`
	Message           string           `json:"message"`
	RelatedEntityID   string           `json:"related_entity_id"`
	RelatedEntityKind EntityKind       `json:"related_entity_kind"`
}
