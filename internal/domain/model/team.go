package model

import "time"

// Member is one seat on a team.
type Member struct {
	ParticipantID string    `json:"participant_id"`
	Role          Role      `json:"role"`
	JoinedAt      time.Time `json:"joined_at"`
}

// Team belongs to exactly one hackathon. The leader occupies one of the
// member seats and never appears twice.
type Team struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	HackathonID string   `json:"hackathon_id"`
	Leader      string   `json:"leader"`
	Members     []Member `json:"members"`
	MaxSize     int      `json:"max_size"`
	LookingFor  []string `json:"looking_for"`
	Version     uint64   `json:"version"`
}

// IndexOf returns the position of participantID in Members, or -1.
func (t Team) IndexOf(participantID string) int {
	for i, m := range t.Members {
		if m.ParticipantID == participantID {
			return i
		}
	}
	return -1
}

// HasMember reports whether participantID holds a seat.
func (t Team) HasMember(participantID string) bool {
	return t.IndexOf(participantID) >= 0
}

// Contains reports whether participantID is the leader or a member.
func (t Team) Contains(participantID string) bool {
	return t.Leader == participantID || t.HasMember(participantID)
}

// IsFull reports whether no seat is left.
func (t Team) IsFull() bool {
	return len(t.Members) >= t.MaxSize
}

// MemberIDs returns member participant ids in seat order.
func (t Team) MemberIDs() []string {
	out := make([]string, len(t.Members))
	for i, m := range t.Members {
		out[i] = m.ParticipantID
	}
	return out
}

// Clone returns a deep copy.
func (t Team) Clone() Team {
	c := t
	c.Members = append([]Member(nil), t.Members...)
	c.LookingFor = append([]string(nil), t.LookingFor...)
	return c
}
