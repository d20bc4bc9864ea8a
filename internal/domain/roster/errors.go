package roster

import "errors"

// Roster failures. Each is a local validation failure; retrying against the
// same state reproduces it.
var (
	ErrNotRegistered      = errors.New("participant is not registered for the hackathon")
	ErrTeamFull           = errors.New("team is full")
	ErrAlreadyMember      = errors.New("already a member of this team")
	ErrLeaderCannotLeave  = errors.New("leader cannot leave the team")
	ErrNotAuthorized      = errors.New("not authorized")
	ErrCannotRemoveLeader = errors.New("cannot remove team leader")
	ErrMemberNotFound     = errors.New("member not found in team")
	ErrAlreadyInTeam      = errors.New("participant is already in the team")

	// ErrInvalidTeam is returned by Validate; it wraps the broken invariant.
	ErrInvalidTeam = errors.New("invalid team")
)
