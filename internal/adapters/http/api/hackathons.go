package api

import (
	"context"
	"net/http"

	"github.com/okian/hackmatch/internal/domain/model"
)

// HackathonHandler handles hackathon, registration and suggestion requests.
type HackathonHandler struct {
	deps HackathonDependencies
}

// NewHackathonHandler creates a new hackathon handler.
func NewHackathonHandler(deps HackathonDependencies) *HackathonHandler {
	return &HackathonHandler{deps: deps}
}

// HandleUpsert handles PUT /hackathons/{id}.
func (h *HackathonHandler) HandleUpsert(w http.ResponseWriter, r *http.Request) {
	const op = "api.upsert_hackathon"
	var in model.Hackathon
	if err := decode(op, r, &in, false); err != nil {
		writeError(w, err)
		return
	}
	in.ID = r.PathValue("id")
	out, err := h.deps.UpsertHackathon(r.Context(), in)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleGet handles GET /hackathons/{id}.
func (h *HackathonHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	out, err := h.deps.GetHackathon(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, Wrap("api.get_hackathon", err))
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleRegister handles POST /hackathons/{id}/register.
func (h *HackathonHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	h.registration(w, r, "api.register", h.deps.Register)
}

// HandleUnregister handles DELETE /hackathons/{id}/register.
func (h *HackathonHandler) HandleUnregister(w http.ResponseWriter, r *http.Request) {
	h.registration(w, r, "api.unregister", h.deps.Unregister)
}

func (h *HackathonHandler) registration(w http.ResponseWriter, r *http.Request, op string,
	fn func(ctx context.Context, hackathonID, participantID string) (model.HackathonView, error),
) {
	pid, err := actor(op, r)
	if err != nil {
		writeError(w, err)
		return
	}
	out, err := fn(r.Context(), r.PathValue("id"), pid)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleListTeams handles GET /hackathons/{id}/teams.
func (h *HackathonHandler) HandleListTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.deps.ListTeams(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, Wrap("api.list_teams", err))
		return
	}
	writeJSON(w, http.StatusOK, teams)
}

// HandleTeamSuggestions handles GET /hackathons/{id}/team-suggestions.
func (h *HackathonHandler) HandleTeamSuggestions(w http.ResponseWriter, r *http.Request) {
	const op = "api.team_suggestions"
	pid, err := actor(op, r)
	if err != nil {
		writeError(w, err)
		return
	}
	teams, err := h.deps.SuggestTeams(r.Context(), r.PathValue("id"), pid)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, teams)
}

// HandleTeammateSuggestions handles GET /hackathons/{id}/teammate-suggestions.
func (h *HackathonHandler) HandleTeammateSuggestions(w http.ResponseWriter, r *http.Request) {
	const op = "api.teammate_suggestions"
	pid, err := actor(op, r)
	if err != nil {
		writeError(w, err)
		return
	}
	people, err := h.deps.SuggestTeammates(r.Context(), r.PathValue("id"), pid)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, people)
}
