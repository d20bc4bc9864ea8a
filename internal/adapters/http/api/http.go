// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/cors"

	"github.com/okian/hackmatch/internal/adapters/chat"
	"github.com/okian/hackmatch/internal/adapters/notify"
	"github.com/okian/hackmatch/internal/domain/model"
	"github.com/okian/hackmatch/internal/domain/roster"
)

// HeaderParticipantID carries the acting participant. Authentication
// happens in front of this service.
const HeaderParticipantID = "X-Participant-ID"

const maxBodyBytes = 1 << 20

// ParticipantDependencies is what participant handlers need.
type ParticipantDependencies interface {
	UpsertParticipant(ctx context.Context, p model.Participant) (model.Participant, error)
}

// HackathonDependencies is what hackathon handlers need.
type HackathonDependencies interface {
	UpsertHackathon(ctx context.Context, h model.Hackathon) (model.HackathonView, error)
	GetHackathon(ctx context.Context, id string) (model.HackathonView, error)
	Register(ctx context.Context, hackathonID, participantID string) (model.HackathonView, error)
	Unregister(ctx context.Context, hackathonID, participantID string) (model.HackathonView, error)
	ListTeams(ctx context.Context, hackathonID string) ([]model.Team, error)
	SuggestTeams(ctx context.Context, hackathonID, participantID string) ([]model.Team, error)
	SuggestTeammates(ctx context.Context, hackathonID, participantID string) ([]model.Participant, error)
}

// TeamDependencies is what team handlers need.
type TeamDependencies interface {
	CreateTeam(ctx context.Context, hackathonID, creatorID string, spec roster.NewTeam) (model.Team, error)
	GetTeam(ctx context.Context, teamID string) (model.Team, error)
	JoinTeam(ctx context.Context, teamID, participantID string, role model.Role) (model.Team, error)
	LeaveTeam(ctx context.Context, teamID, participantID string) (model.Team, error)
	RemoveMember(ctx context.Context, teamID, actorID, targetID string) (model.Team, error)
	AssignRole(ctx context.Context, teamID, actorID, targetID string, role model.Role) (model.Team, error)
	Invite(ctx context.Context, teamID, actorID, targetID string) error
	SuggestMembers(ctx context.Context, teamID, actorID string) ([]model.Participant, error)
	SendChat(ctx context.Context, teamID, senderID, text string) (chat.Message, error)
}

// NotificationDependencies is what inbox and reminder handlers need.
type NotificationDependencies interface {
	Notifications(ctx context.Context, recipientID string, limit int) ([]notify.Notification, error)
	MarkNotificationRead(ctx context.Context, recipientID, id string) (notify.Notification, error)
	MarkAllNotificationsRead(ctx context.Context, recipientID string) (int, error)
	DeleteNotification(ctx context.Context, recipientID, id string) error
	SendDeadlineReminders(ctx context.Context) (int, error)
}

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	ParticipantDependencies
	HackathonDependencies
	TeamDependencies
	NotificationDependencies
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler       *HealthHandler
	statsHandler        *StatsHandler
	participantHandler  *ParticipantHandler
	hackathonHandler    *HackathonHandler
	teamHandler         *TeamHandler
	notificationHandler *NotificationHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:       NewHealthHandler(),
		statsHandler:        NewStatsHandler(deps),
		participantHandler:  NewParticipantHandler(deps),
		hackathonHandler:    NewHackathonHandler(deps),
		teamHandler:         NewTeamHandler(deps),
		notificationHandler: NewNotificationHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	route := func(pattern, endpoint string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, MetricsMiddleware(h, endpoint))
	}

	route("GET /healthz", "healthz", s.healthHandler.HandleHealth)
	route("GET /stats", "stats", s.statsHandler.HandleStats)
	mux.Handle("GET /metrics", MetricsHandler())

	route("PUT /participants/{id}", "participant_upsert", s.participantHandler.HandleUpsert)

	hh := s.hackathonHandler
	route("PUT /hackathons/{id}", "hackathon_upsert", hh.HandleUpsert)
	route("GET /hackathons/{id}", "hackathon_get", hh.HandleGet)
	route("POST /hackathons/{id}/register", "hackathon_register", hh.HandleRegister)
	route("DELETE /hackathons/{id}/register", "hackathon_unregister", hh.HandleUnregister)
	route("GET /hackathons/{id}/teams", "hackathon_teams", hh.HandleListTeams)
	route("GET /hackathons/{id}/team-suggestions", "team_suggestions", hh.HandleTeamSuggestions)
	route("GET /hackathons/{id}/teammate-suggestions", "teammate_suggestions", hh.HandleTeammateSuggestions)

	th := s.teamHandler
	route("POST /teams", "team_create", th.HandleCreate)
	route("GET /teams/{id}", "team_get", th.HandleGet)
	route("POST /teams/{id}/join", "team_join", th.HandleJoin)
	route("POST /teams/{id}/leave", "team_leave", th.HandleLeave)
	route("POST /teams/{id}/invite", "team_invite", th.HandleInvite)
	route("POST /teams/{id}/chat", "team_chat", th.HandleChat)
	route("DELETE /teams/{id}/members/{userId}", "team_remove_member", th.HandleRemoveMember)
	route("PUT /teams/{id}/role", "team_assign_role", th.HandleAssignRole)
	route("GET /teams/{id}/member-suggestions", "member_suggestions", th.HandleMemberSuggestions)

	nh := s.notificationHandler
	route("GET /notifications", "notifications_list", nh.HandleList)
	route("PUT /notifications/read-all", "notifications_read_all", nh.HandleMarkAllRead)
	route("PUT /notifications/{id}/read", "notification_read", nh.HandleMarkRead)
	route("DELETE /notifications/{id}", "notification_delete", nh.HandleDelete)
	route("POST /reminders/deadlines", "deadline_reminders", nh.HandleDeadlineReminders)
}

// Handler wraps h with CORS for allowedOrigins.
func Handler(h http.Handler, allowedOrigins []string) http.Handler {
	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
		},
		AllowedOrigins: allowedOrigins,
		AllowedHeaders: []string{"Content-Type", HeaderParticipantID},
	})
	return c.Handler(h)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError classifies err and writes it as {code, message}.
func writeError(w http.ResponseWriter, err error) {
	status, code := classify(err)
	msg := http.StatusText(status)
	if err != nil && status != http.StatusInternalServerError {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// actor returns the acting participant id from the request header.
func actor(op string, r *http.Request) (string, error) {
	id := strings.TrimSpace(r.Header.Get(HeaderParticipantID))
	if id == "" {
		return "", NewKind(op, ErrMissingActor)
	}
	return id, nil
}

// decode reads a JSON body into v. An empty body leaves v untouched when
// optional is set.
func decode(op string, r *http.Request, v any, optional bool) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return nil
		}
		return WrapKind(op, ErrBadRequest, err)
	}
	return nil
}

func required(op, field, value string) error {
	if strings.TrimSpace(value) == "" {
		return WrapKind(op, ErrBadRequest, fmt.Errorf("missing %s", field))
	}
	return nil
}

func queryInt(op string, r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, WrapKind(op, ErrBadRequest, fmt.Errorf("invalid %s %q", key, raw))
	}
	return n, nil
}
