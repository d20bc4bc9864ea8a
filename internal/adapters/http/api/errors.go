package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/hackmatch/internal/adapters/chat"
	"github.com/okian/hackmatch/internal/adapters/notify"
	"github.com/okian/hackmatch/internal/adapters/repository"
	"github.com/okian/hackmatch/internal/domain/roster"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrMissingActor = errors.New("missing " + HeaderParticipantID + " header")
)

// OpError records the handler operation that failed and the error kind
// used to pick the HTTP status.
type OpError struct {
	Op   string
	Kind error
	Err  error
}

func (e *OpError) Error() string {
	switch {
	case e.Err == nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	case e.Kind == nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
	}
}

// Unwrap exposes both the kind and the cause to errors.Is.
func (e *OpError) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// Wrap attaches op to err.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, Err: err}
}

// NewKind builds an error of kind for op.
func NewKind(op string, kind error) error {
	return &OpError{Op: op, Kind: kind}
}

// WrapKind classifies err as kind for op.
func WrapKind(op string, kind, err error) error {
	return &OpError{Op: op, Kind: kind, Err: err}
}

// errorClass maps domain errors onto HTTP statuses and stable codes.
type errorClass struct {
	target error
	status int
	code   string
}

//nolint:gochecknoglobals // immutable lookup
var errorClasses = []errorClass{
	{ErrMissingActor, http.StatusUnauthorized, "missing_participant"},
	{ErrBadRequest, http.StatusBadRequest, "bad_request"},

	{repository.ErrNotFound, http.StatusNotFound, "not_found"},
	{notify.ErrNotFound, http.StatusNotFound, "not_found"},
	{roster.ErrMemberNotFound, http.StatusNotFound, "member_not_found"},

	{roster.ErrNotAuthorized, http.StatusForbidden, "not_authorized"},
	{notify.ErrNotAuthorized, http.StatusForbidden, "not_authorized"},

	{roster.ErrTeamFull, http.StatusConflict, "team_full"},
	{roster.ErrAlreadyMember, http.StatusConflict, "already_member"},
	{roster.ErrAlreadyInTeam, http.StatusConflict, "already_in_team"},
	{repository.ErrAlreadyRegistered, http.StatusConflict, "already_registered"},
	{repository.ErrHackathonFull, http.StatusConflict, "hackathon_full"},
	{repository.ErrConflict, http.StatusConflict, "conflict"},

	{roster.ErrNotRegistered, http.StatusBadRequest, "not_registered"},
	{roster.ErrLeaderCannotLeave, http.StatusBadRequest, "leader_cannot_leave"},
	{roster.ErrCannotRemoveLeader, http.StatusBadRequest, "cannot_remove_leader"},
	{roster.ErrInvalidTeam, http.StatusBadRequest, "invalid_team"},
	{repository.ErrInvalidEntity, http.StatusBadRequest, "invalid_entity"},
	{repository.ErrImmutableField, http.StatusBadRequest, "immutable_field"},
	{chat.ErrInvalidMessage, http.StatusBadRequest, "invalid_message"},
}

// classify returns the status and code for err; unknown errors are 500.
func classify(err error) (int, string) {
	for _, c := range errorClasses {
		if errors.Is(err, c.target) {
			return c.status, c.code
		}
	}
	return http.StatusInternalServerError, "internal"
}
