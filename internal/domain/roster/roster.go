// Package roster is the team membership state machine. Every operation is a
// pure function from the current team to the next one plus the
// notifications the change should produce. Callers serialize operations
// per team and persist the returned team.
package roster

import (
	"fmt"
	"strings"
	"time"

	"github.com/okian/hackmatch/internal/domain/model"
)

// Notification titles emitted by roster operations.
const (
	TitleNewMember  = "New Team Member"
	TitleRemoved    = "Removed from Team"
	TitleInvitation = "Team Invitation"
)

// Outcome is the result of a successful roster operation.
type Outcome struct {
	Team    model.Team
	Intents []model.NotificationIntent
}

// NewTeam describes a team to be created.
type NewTeam struct {
	ID         string
	Name       string
	LookingFor []string
	// MaxSize overrides the hackathon default when positive.
	MaxSize int
}

// Create founds a team in h with creatorID as leader and first member.
func Create(h model.Hackathon, spec NewTeam, creatorID string, now time.Time) (Outcome, error) {
	if !h.IsRegistered(creatorID) {
		return Outcome{}, ErrNotRegistered
	}
	maxSize := h.MaxTeamSize
	if spec.MaxSize > 0 {
		maxSize = spec.MaxSize
	}
	team := model.Team{
		ID:          spec.ID,
		Name:        strings.TrimSpace(spec.Name),
		HackathonID: h.ID,
		Leader:      creatorID,
		Members:     []model.Member{{ParticipantID: creatorID, Role: model.RoleOther, JoinedAt: now}},
		MaxSize:     maxSize,
		LookingFor:  append([]string(nil), spec.LookingFor...),
	}
	if err := Validate(team); err != nil {
		return Outcome{}, err
	}
	return Outcome{Team: team}, nil
}

// Join seats the participant with role (RoleOther when empty) and tells the leader.
func Join(team model.Team, joiner model.Participant, role model.Role, now time.Time) (Outcome, error) {
	if team.Contains(joiner.ID) {
		return Outcome{}, ErrAlreadyMember
	}
	if team.IsFull() {
		return Outcome{}, ErrTeamFull
	}
	if role == "" {
		role = model.RoleOther
	}
	next := team.Clone()
	next.Members = append(next.Members, model.Member{ParticipantID: joiner.ID, Role: role, JoinedAt: now})
	return Outcome{
		Team: next,
		Intents: []model.NotificationIntent{{
			RecipientID:       team.Leader,
			Kind:              model.KindTeam,
			Title:             TitleNewMember,
			Message:           fmt.Sprintf("%s joined your team %s", displayName(joiner), team.Name),
			RelatedEntityID:   team.ID,
			RelatedEntityKind: model.EntityTeam,
		}},
	}, nil
}

// Leave removes a non-leader member.
func Leave(team model.Team, participantID string) (Outcome, error) {
	if team.Leader == participantID {
		return Outcome{}, ErrLeaderCannotLeave
	}
	i := team.IndexOf(participantID)
	if i < 0 {
		return Outcome{}, ErrMemberNotFound
	}
	return Outcome{Team: without(team, i)}, nil
}

// RemoveMember lets the leader drop a member, who is notified.
func RemoveMember(team model.Team, actorID, targetID string) (Outcome, error) {
	if team.Leader != actorID {
		return Outcome{}, ErrNotAuthorized
	}
	if targetID == team.Leader {
		return Outcome{}, ErrCannotRemoveLeader
	}
	i := team.IndexOf(targetID)
	if i < 0 {
		return Outcome{}, ErrMemberNotFound
	}
	return Outcome{
		Team: without(team, i),
		Intents: []model.NotificationIntent{{
			RecipientID:       targetID,
			Kind:              model.KindTeam,
			Title:             TitleRemoved,
			Message:           fmt.Sprintf("You have been removed from team %s.", team.Name),
			RelatedEntityID:   team.ID,
			RelatedEntityKind: model.EntityTeam,
		}},
	}, nil
}

// AssignRole lets the leader change a member's role.
func AssignRole(team model.Team, actorID, targetID string, role model.Role) (Outcome, error) {
	if team.Leader != actorID {
		return Outcome{}, ErrNotAuthorized
	}
	i := team.IndexOf(targetID)
	if i < 0 {
		return Outcome{}, ErrMemberNotFound
	}
	if role == "" {
		role = model.RoleOther
	}
	next := team.Clone()
	next.Members[i].Role = role
	return Outcome{Team: next}, nil
}

// Invite lets the leader invite a registered participant. Membership is unchanged.
func Invite(team model.Team, h model.Hackathon, actor model.Participant, targetID string) (Outcome, error) {
	if team.Leader != actor.ID {
		return Outcome{}, ErrNotAuthorized
	}
	if team.Contains(targetID) {
		return Outcome{}, ErrAlreadyInTeam
	}
	if !h.IsRegistered(targetID) {
		return Outcome{}, ErrNotRegistered
	}
	return Outcome{
		Team: team.Clone(),
		Intents: []model.NotificationIntent{{
			RecipientID:       targetID,
			Kind:              model.KindTeam,
			Title:             TitleInvitation,
			Message:           fmt.Sprintf("%s has invited you to join team %s.", displayName(actor), team.Name),
			RelatedEntityID:   team.ID,
			RelatedEntityKind: model.EntityTeam,
		}},
	}, nil
}

// Validate checks the team invariants: a positive capacity that is not
// exceeded, the leader seated exactly once, and no duplicate members.
func Validate(team model.Team) error {
	if team.MaxSize < 1 {
		return fmt.Errorf("%w: max size %d", ErrInvalidTeam, team.MaxSize)
	}
	if len(team.Members) > team.MaxSize {
		return fmt.Errorf("%w: %d members exceed max size %d", ErrInvalidTeam, len(team.Members), team.MaxSize)
	}
	if team.Leader == "" {
		return fmt.Errorf("%w: missing leader", ErrInvalidTeam)
	}
	seen := make(map[string]struct{}, len(team.Members))
	for _, m := range team.Members {
		if _, dup := seen[m.ParticipantID]; dup {
			return fmt.Errorf("%w: duplicate member %s", ErrInvalidTeam, m.ParticipantID)
		}
		seen[m.ParticipantID] = struct{}{}
	}
	if _, ok := seen[team.Leader]; !ok {
		return fmt.Errorf("%w: leader %s holds no seat", ErrInvalidTeam, team.Leader)
	}
	return nil
}

func without(team model.Team, i int) model.Team {
	next := team.Clone()
	next.Members = append(next.Members[:i], next.Members[i+1:]...)
	return next
}

func displayName(p model.Participant) string {
	if n := strings.TrimSpace(p.Name); n != "" {
		return n
	}
	return p.ID
}
