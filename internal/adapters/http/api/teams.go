package api

import (
	"net/http"

	"github.com/okian/hackmatch/internal/domain/model"
	"github.com/okian/hackmatch/internal/domain/roster"
)

// TeamHandler handles roster, chat and member suggestion requests.
type TeamHandler struct {
	deps TeamDependencies
}

// NewTeamHandler creates a new team handler.
func NewTeamHandler(deps TeamDependencies) *TeamHandler {
	return &TeamHandler{deps: deps}
}

type createTeamRequest struct {
	HackathonID string   `json:"hackathon_id"`
	Name        string   `json:"name"`
	LookingFor  []string `json:"looking_for"`
	MaxSize     int      `json:"max_size"`
}

type joinRequest struct {
	Role string `json:"role"`
}

type targetRequest struct {
	ParticipantID string `json:"participant_id"`
}

type assignRoleRequest struct {
	ParticipantID string `json:"participant_id"`
	Role          string `json:"role"`
}

type chatRequest struct {
	Text string `json:"text"`
}

type ackResponse struct {
	Status string `json:"status"`
}

// HandleCreate handles POST /teams.
func (h *TeamHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_team"
	pid, err := actor(op, r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req createTeamRequest
	if err := decode(op, r, &req, false); err != nil {
		writeError(w, err)
		return
	}
	if err := required(op, "hackathon_id", req.HackathonID); err != nil {
		writeError(w, err)
		return
	}
	if err := required(op, "name", req.Name); err != nil {
		writeError(w, err)
		return
	}
	team, err := h.deps.CreateTeam(r.Context(), req.HackathonID, pid, roster.NewTeam{
		Name:       req.Name,
		LookingFor: req.LookingFor,
		MaxSize:    req.MaxSize,
	})
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, team)
}

// HandleGet handles GET /teams/{id}.
func (h *TeamHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	team, err := h.deps.GetTeam(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, Wrap("api.get_team", err))
		return
	}
	writeJSON(w, http.StatusOK, team)
}

// HandleJoin handles POST /teams/{id}/join. The role body is optional.
func (h *TeamHandler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	const op = "api.join_team"
	pid, err := actor(op, r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req joinRequest
	if err := decode(op, r, &req, true); err != nil {
		writeError(w, err)
		return
	}
	team, err := h.deps.JoinTeam(r.Context(), r.PathValue("id"), pid, model.ParseRole(req.Role))
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, team)
}

// HandleLeave handles POST /teams/{id}/leave.
func (h *TeamHandler) HandleLeave(w http.ResponseWriter, r *http.Request) {
	const op = "api.leave_team"
	pid, err := actor(op, r)
	if err != nil {
		writeError(w, err)
		return
	}
	team, err := h.deps.LeaveTeam(r.Context(), r.PathValue("id"), pid)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, team)
}

// HandleInvite handles POST /teams/{id}/invite.
func (h *TeamHandler) HandleInvite(w http.ResponseWriter, r *http.Request) {
	const op = "api.invite"
	pid, err := actor(op, r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req targetRequest
	if err := decode(op, r, &req, false); err != nil {
		writeError(w, err)
		return
	}
	if err := required(op, "participant_id", req.ParticipantID); err != nil {
		writeError(w, err)
		return
	}
	if err := h.deps.Invite(r.Context(), r.PathValue("id"), pid, req.ParticipantID); err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "invited"})
}

// HandleChat handles POST /teams/{id}/chat.
func (h *TeamHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	const op = "api.team_chat"
	pid, err := actor(op, r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req chatRequest
	if err := decode(op, r, &req, false); err != nil {
		writeError(w, err)
		return
	}
	msg, err := h.deps.SendChat(r.Context(), r.PathValue("id"), pid, req.Text)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusAccepted, msg)
}

// HandleRemoveMember handles DELETE /teams/{id}/members/{userId}.
func (h *TeamHandler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	const op = "api.remove_member"
	pid, err := actor(op, r)
	if err != nil {
		writeError(w, err)
		return
	}
	team, err := h.deps.RemoveMember(r.Context(), r.PathValue("id"), pid, r.PathValue("userId"))
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, team)
}

// HandleAssignRole handles PUT /teams/{id}/role.
func (h *TeamHandler) HandleAssignRole(w http.ResponseWriter, r *http.Request) {
	const op = "api.assign_role"
	pid, err := actor(op, r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req assignRoleRequest
	if err := decode(op, r, &req, false); err != nil {
		writeError(w, err)
		return
	}
	if err := required(op, "participant_id", req.ParticipantID); err != nil {
		writeError(w, err)
		return
	}
	team, err := h.deps.AssignRole(r.Context(), r.PathValue("id"), pid, req.ParticipantID, model.ParseRole(req.Role))
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, team)
}

// HandleMemberSuggestions handles GET /teams/{id}/member-suggestions.
func (h *TeamHandler) HandleMemberSuggestions(w http.ResponseWriter, r *http.Request) {
	const op = "api.member_suggestions"
	pid, err := actor(op, r)
	if err != nil {
		writeError(w, err)
		return
	}
	people, err := h.deps.SuggestMembers(r.Context(), r.PathValue("id"), pid)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, people)
}
