package api

import (
	"net/http"

	"github.com/okian/hackmatch/internal/domain/model"
)

// ParticipantHandler handles participant profile requests.
type ParticipantHandler struct {
	deps ParticipantDependencies
}

// NewParticipantHandler creates a new participant handler.
func NewParticipantHandler(deps ParticipantDependencies) *ParticipantHandler {
	return &ParticipantHandler{deps: deps}
}

// HandleUpsert handles PUT /participants/{id}.
func (h *ParticipantHandler) HandleUpsert(w http.ResponseWriter, r *http.Request) {
	const op = "api.upsert_participant"
	var p model.Participant
	if err := decode(op, r, &p, false); err != nil {
		writeError(w, err)
		return
	}
	p.ID = r.PathValue("id")
	stored, err := h.deps.UpsertParticipant(r.Context(), p)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, stored)
}
