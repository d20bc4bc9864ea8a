package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/okian/hackmatch/internal/domain/model"
)

// SubjectNotify is the relay subject prefix; the recipient id is appended.
const SubjectNotify = "notify"

// InboxSink turns intents into stored notifications.
type InboxSink struct {
	inbox Inbox
	clock clockwork.Clock
}

// NewInboxSink writes to inbox, stamping notifications with clock.
func NewInboxSink(inbox Inbox, clock clockwork.Clock) *InboxSink {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &InboxSink{inbox: inbox, clock: clock}
}

func (s *InboxSink) Name() string { return "inbox" }

func (s *InboxSink) Deliver(ctx context.Context, intent model.NotificationIntent) error {
	return s.inbox.Store(ctx, FromIntent(uuid.NewString(), intent, s.clock.Now()))
}

// Publisher sends raw payloads to a subject.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// RelaySink forwards intents to a pub/sub subject per recipient so online
// clients can be pushed to.
type RelaySink struct {
	pub Publisher
}

// NewRelaySink publishes through pub.
func NewRelaySink(pub Publisher) *RelaySink {
	return &RelaySink{pub: pub}
}

func (s *RelaySink) Name() string { return "relay" }

func (s *RelaySink) Deliver(_ context.Context, intent model.NotificationIntent) error {
	data, err := json.Marshal(intent)
	if err != nil {
		return fmt.Errorf("marshal intent: %w", err)
	}
	return s.pub.Publish(RelaySubject(intent.RecipientID), data)
}

// RelaySubject is the subject notifications for recipientID are published on.
func RelaySubject(recipientID string) string {
	return SubjectNotify + "." + recipientID
}
