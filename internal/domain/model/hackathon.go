package model

import (
	"slices"
	"time"
)

// Status is derived from a hackathon's dates.
type Status string

// Hackathon statuses.
const (
	StatusUpcoming  Status = "upcoming"
	StatusOngoing   Status = "ongoing"
	StatusCompleted Status = "completed"
)

// Hackathon is an event participants register for.
type Hackathon struct {
	ID                   string    `json:"id"`
	Title                string    `json:"title"`
	Participants         []string  `json:"participants"`
	MaxParticipants      *int      `json:"max_participants,omitempty"`
	MinTeamSize          int       `json:"min_team_size"`
	MaxTeamSize          int       `json:"max_team_size"`
	StartDate            time.Time `json:"start_date"`
	EndDate              time.Time `json:"end_date"`
	RegistrationDeadline time.Time `json:"registration_deadline"`
}

// IsRegistered reports whether participantID is on the registration list.
func (h Hackathon) IsRegistered(participantID string) bool {
	return slices.Contains(h.Participants, participantID)
}

// IsFull reports whether a bounded hackathon has reached MaxParticipants.
func (h Hackathon) IsFull() bool {
	return h.MaxParticipants != nil && len(h.Participants) >= *h.MaxParticipants
}

// StatusAt derives the lifecycle status at now. Zero dates count as unset.
func (h Hackathon) StatusAt(now time.Time) Status {
	switch {
	case !h.StartDate.IsZero() && now.Before(h.StartDate):
		return StatusUpcoming
	case !h.EndDate.IsZero() && now.After(h.EndDate):
		return StatusCompleted
	default:
		return StatusOngoing
	}
}

// WithDefaults fills unset team size bounds.
func (h Hackathon) WithDefaults(minTeamSize, maxTeamSize int) Hackathon {
	if h.MinTeamSize <= 0 {
		h.MinTeamSize = minTeamSize
	}
	if h.MaxTeamSize <= 0 {
		h.MaxTeamSize = maxTeamSize
	}
	return h
}

// Clone returns a deep copy.
func (h Hackathon) Clone() Hackathon {
	c := h
	c.Participants = append([]string(nil), h.Participants...)
	if h.MaxParticipants != nil {
		v := *h.MaxParticipants
		c.MaxParticipants = &v
	}
	return c
}

// HackathonView is a hackathon with its status derived at read time.
type HackathonView struct {
	Hackathon
	Status Status `json:"status"`
}

// ViewAt pairs h with its status at now.
func (h Hackathon) ViewAt(now time.Time) HackathonView {
	return HackathonView{Hackathon: h, Status: h.StatusAt(now)}
}
