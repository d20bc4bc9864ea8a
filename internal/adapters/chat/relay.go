// Package chat validates team chat messages and relays them to the team's
// pub/sub subject. Delivery to connected clients happens elsewhere.
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/okian/hackmatch/internal/domain/model"
	"github.com/okian/hackmatch/internal/domain/roster"
)

// SubjectTeamChat is the subject prefix; the team id is appended.
const SubjectTeamChat = "team.chat"

// Message is one chat line as published.
type Message struct {
	ID       string    `json:"id"`
	TeamID   string    `json:"team_id"`
	SenderID string    `json:"sender_id"`
	Text     string    `json:"text"`
	SentAt   time.Time `json:"sent_at"`
}

// Publisher sends raw payloads to a subject.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Relay publishes validated messages from team members.
type Relay struct {
	pub   Publisher
	clock clockwork.Clock
}

// NewRelay publishes through pub. A nil pub makes Send validate only.
func NewRelay(pub Publisher, clock clockwork.Clock) *Relay {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Relay{pub: pub, clock: clock}
}

// Subject is where messages for teamID are published.
func Subject(teamID string) string {
	return SubjectTeamChat + "." + teamID
}

// Send checks that senderID belongs to team, validates text and publishes it.
func (r *Relay) Send(_ context.Context, team model.Team, senderID, text string) (Message, error) {
	if !team.Contains(senderID) {
		return Message{}, roster.ErrNotAuthorized
	}
	if err := ValidateMessage(text); err != nil {
		return Message{}, err
	}

	msg := Message{
		ID:       uuid.NewString(),
		TeamID:   team.ID,
		SenderID: senderID,
		Text:     text,
		SentAt:   r.clock.Now(),
	}
	if r.pub == nil {
		return msg, nil
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return Message{}, fmt.Errorf("marshal chat message: %w", err)
	}
	if err := r.pub.Publish(Subject(team.ID), data); err != nil {
		return Message{}, fmt.Errorf("publish chat message: %w", err)
	}
	return msg, nil
}
