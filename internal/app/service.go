// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/okian/hackmatch/internal/adapters/chat"
	eventqueue "github.com/okian/hackmatch/internal/adapters/mq/queue"
	workerpool "github.com/okian/hackmatch/internal/adapters/mq/worker"
	"github.com/okian/hackmatch/internal/adapters/notify"
	"github.com/okian/hackmatch/internal/adapters/repository"
	"github.com/okian/hackmatch/internal/domain/dedupe"
	"github.com/okian/hackmatch/internal/domain/matching"
	"github.com/okian/hackmatch/internal/domain/model"
	"github.com/okian/hackmatch/internal/domain/roster"
	"github.com/okian/hackmatch/pkg/logger"
	"github.com/okian/hackmatch/pkg/metrics"
)

// Titles of notifications the service emits itself.
const (
	TitleRegistered       = "Registration Successful"
	TitleDeadlineReminder = "Registration Deadline Approaching"
)

const stopTimeout = 30 * time.Second

// Service implements the API dependencies for team matching.
type Service struct {
	mu sync.RWMutex

	// Configuration
	workerCount     int
	queueSize       int
	dedupeSize      int
	suggestionLimit int
	inboxLimit      int
	minTeamSize     int
	maxTeamSize     int
	reminderWindow  time.Duration
	clock           clockwork.Clock
	inbox           notify.Inbox
	extraSinks      []workerpool.Deliverer
	chatPub         chat.Publisher

	// State; nil while stopped.
	c *components

	logger logger.Logger
}

// components live between Start and Stop.
type components struct {
	store      *repository.MemoryStore
	deduper    dedupe.Deduper
	queue      *eventqueue.InMemoryQueue
	dispatcher *notify.Dispatcher
	pool       *workerpool.Pool
	matcher    *matching.Service
	chat       *chat.Relay
	cancel     context.CancelFunc
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:     runtime.NumCPU(),
		queueSize:       10_000,
		dedupeSize:      100_000,
		suggestionLimit: 10,
		inboxLimit:      notify.DefaultListLimit,
		minTeamSize:     1,
		maxTeamSize:     4,
		reminderWindow:  24 * time.Hour,
		clock:           clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.inbox == nil {
		s.inbox = notify.NewMemoryInbox()
	}
	return s
}

// Start initializes and starts the service components. Background work is
// detached from ctx cancellation and ends with Stop.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.c != nil {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting hackmatch service...")

	bg, cancel := context.WithCancel(context.WithoutCancel(ctx))
	store := repository.NewMemoryStore(bg,
		repository.WithTeamSizeDefaults(s.minTeamSize, s.maxTeamSize),
	)
	q := eventqueue.NewInMemoryQueue(
		eventqueue.WithCapacity(s.queueSize),
		eventqueue.WithClock(s.clock),
	)
	sinks := append([]workerpool.Deliverer{notify.NewInboxSink(s.inbox, s.clock)}, s.extraSinks...)
	pool := workerpool.NewPool(s.workerCount, q, sinks)
	pool.Start(bg)

	s.c = &components{
		store:      store,
		deduper:    dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize)),
		queue:      q,
		dispatcher: notify.NewDispatcher(q, s.logger.Named("dispatcher")),
		pool:       pool,
		matcher: matching.New(store,
			matching.WithLimit(s.suggestionLimit),
			matching.WithLogger(s.logger.Named("matching")),
		),
		chat:   chat.NewRelay(s.chatPub, s.clock),
		cancel: cancel,
	}

	s.logger.Info(ctx, "hackmatch service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("sinks", len(sinks)),
	)
	return nil
}

// Stop drains pending notifications and shuts the service down.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.c == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	s.logger.Info(ctx, "stopping hackmatch service...")

	if err := s.c.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool did not drain", logger.Error(err))
	}
	s.c.cancel()
	_ = s.c.store.Close()

	s.c = nil
	s.logger.Info(ctx, "hackmatch service stopped")
}

func (s *Service) parts() (*components, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.c == nil {
		return nil, ErrNotStarted
	}
	return s.c, nil
}

// UpsertParticipant creates or replaces a participant profile.
func (s *Service) UpsertParticipant(ctx context.Context, p model.Participant) (model.Participant, error) {
	c, err := s.parts()
	if err != nil {
		return model.Participant{}, err
	}
	return c.store.UpsertParticipant(ctx, p)
}

// UpsertHackathon creates or replaces a hackathon definition.
func (s *Service) UpsertHackathon(ctx context.Context, h model.Hackathon) (model.HackathonView, error) {
	c, err := s.parts()
	if err != nil {
		return model.HackathonView{}, err
	}
	stored, err := c.store.UpsertHackathon(ctx, h)
	if err != nil {
		return model.HackathonView{}, err
	}
	return s.view(stored), nil
}

// GetHackathon returns the hackathon with its current status.
func (s *Service) GetHackathon(ctx context.Context, id string) (model.HackathonView, error) {
	c, err := s.parts()
	if err != nil {
		return model.HackathonView{}, err
	}
	h, err := c.store.GetHackathon(ctx, id)
	if err != nil {
		return model.HackathonView{}, err
	}
	return s.view(h), nil
}

func (s *Service) view(h model.Hackathon) model.HackathonView {
	return h.ViewAt(s.clock.Now())
}

// Register signs participantID up for the hackathon, confirms it to the
// participant and tells leaders of matching teams. A matching failure is
// logged and does not undo the registration.
func (s *Service) Register(ctx context.Context, hackathonID, participantID string) (model.HackathonView, error) {
	c, err := s.parts()
	if err != nil {
		return model.HackathonView{}, err
	}
	h, err := c.store.Register(ctx, hackathonID, participantID)
	metrics.RecordRegistration(resultLabel(err))
	if err != nil {
		return model.HackathonView{}, err
	}

	s.emit(ctx, c, model.NotificationIntent{
		RecipientID:       participantID,
		Kind:              model.KindHackathon,
		Title:             TitleRegistered,
		Message:           fmt.Sprintf("You have successfully registered for %s", h.Title),
		RelatedEntityID:   h.ID,
		RelatedEntityKind: model.EntityHackathon,
	})

	intents, err := c.matcher.OnParticipantRegistered(ctx, hackathonID, participantID)
	if err != nil {
		s.logger.Warn(ctx, "match notifications failed",
			logger.String("hackathon_id", hackathonID),
			logger.String("participant_id", participantID),
			logger.Error(err))
	} else {
		s.emit(ctx, c, intents...)
	}
	return s.view(h), nil
}

// Unregister removes participantID from the hackathon.
func (s *Service) Unregister(ctx context.Context, hackathonID, participantID string) (model.HackathonView, error) {
	c, err := s.parts()
	if err != nil {
		return model.HackathonView{}, err
	}
	h, err := c.store.Unregister(ctx, hackathonID, participantID)
	if err != nil {
		return model.HackathonView{}, err
	}
	return s.view(h), nil
}

// ListTeams returns the hackathon's teams in creation order.
func (s *Service) ListTeams(ctx context.Context, hackathonID string) ([]model.Team, error) {
	c, err := s.parts()
	if err != nil {
		return nil, err
	}
	return c.store.ListTeamsForHackathon(ctx, hackathonID)
}

// GetTeam returns one team.
func (s *Service) GetTeam(ctx context.Context, teamID string) (model.Team, error) {
	c, err := s.parts()
	if err != nil {
		return model.Team{}, err
	}
	return c.store.GetTeam(ctx, teamID)
}

// CreateTeam founds a team led by creatorID under a fresh id.
func (s *Service) CreateTeam(ctx context.Context, hackathonID, creatorID string, spec roster.NewTeam) (model.Team, error) {
	c, err := s.parts()
	if err != nil {
		return model.Team{}, err
	}
	h, err := c.store.GetHackathon(ctx, hackathonID)
	if err != nil {
		return model.Team{}, err
	}
	spec.ID = uuid.NewString()
	out, err := roster.Create(h, spec, creatorID, s.clock.Now())
	if err != nil {
		metrics.RecordRosterOperation("create", resultLabel(err))
		return model.Team{}, err
	}
	team, err := c.store.CreateTeam(ctx, out.Team)
	metrics.RecordRosterOperation("create", resultLabel(err))
	return team, err
}

// JoinTeam seats participantID with role and notifies the leader.
func (s *Service) JoinTeam(ctx context.Context, teamID, participantID string, role model.Role) (model.Team, error) {
	c, err := s.parts()
	if err != nil {
		return model.Team{}, err
	}
	joiner, err := c.store.GetParticipant(ctx, participantID)
	if err != nil {
		return model.Team{}, err
	}
	now := s.clock.Now()
	return s.mutate(ctx, c, "join", teamID, func(cur model.Team) (roster.Outcome, error) {
		return roster.Join(cur, joiner, role, now)
	})
}

// LeaveTeam removes participantID, who must not be the leader.
func (s *Service) LeaveTeam(ctx context.Context, teamID, participantID string) (model.Team, error) {
	c, err := s.parts()
	if err != nil {
		return model.Team{}, err
	}
	return s.mutate(ctx, c, "leave", teamID, func(cur model.Team) (roster.Outcome, error) {
		return roster.Leave(cur, participantID)
	})
}

// RemoveMember lets the leader drop targetID.
func (s *Service) RemoveMember(ctx context.Context, teamID, actorID, targetID string) (model.Team, error) {
	c, err := s.parts()
	if err != nil {
		return model.Team{}, err
	}
	return s.mutate(ctx, c, "remove", teamID, func(cur model.Team) (roster.Outcome, error) {
		return roster.RemoveMember(cur, actorID, targetID)
	})
}

// AssignRole lets the leader change targetID's role.
func (s *Service) AssignRole(ctx context.Context, teamID, actorID, targetID string, role model.Role) (model.Team, error) {
	c, err := s.parts()
	if err != nil {
		return model.Team{}, err
	}
	return s.mutate(ctx, c, "assign_role", teamID, func(cur model.Team) (roster.Outcome, error) {
		return roster.AssignRole(cur, actorID, targetID, role)
	})
}

// Invite lets the leader invite a registered participant. The team is not
// changed, so no write happens.
func (s *Service) Invite(ctx context.Context, teamID, actorID, targetID string) error {
	c, err := s.parts()
	if err != nil {
		return err
	}
	team, err := c.store.GetTeam(ctx, teamID)
	if err != nil {
		return err
	}
	h, err := c.store.GetHackathon(ctx, team.HackathonID)
	if err != nil {
		return err
	}
	actor, err := c.store.GetParticipant(ctx, actorID)
	if err != nil {
		return err
	}
	out, err := roster.Invite(team, h, actor, targetID)
	metrics.RecordRosterOperation("invite", resultLabel(err))
	if err != nil {
		return err
	}
	s.emit(ctx, c, out.Intents...)
	return nil
}

// mutate applies step under the team's lock and emits the outcome's intents
// once the new state is stored.
func (s *Service) mutate(ctx context.Context, c *components, op, teamID string, step func(model.Team) (roster.Outcome, error)) (model.Team, error) {
	var intents []model.NotificationIntent
	team, err := c.store.MutateTeam(ctx, teamID, func(cur model.Team) (model.Team, error) {
		out, err := step(cur)
		if err != nil {
			return model.Team{}, err
		}
		intents = out.Intents
		return out.Team, nil
	})
	metrics.RecordRosterOperation(op, resultLabel(err))
	if err != nil {
		return model.Team{}, err
	}
	s.emit(ctx, c, intents...)
	return team, nil
}

// SuggestTeams lists teams in the hackathon looking for the participant's skills.
func (s *Service) SuggestTeams(ctx context.Context, hackathonID, participantID string) ([]model.Team, error) {
	c, err := s.parts()
	if err != nil {
		return nil, err
	}
	return c.matcher.SuggestTeamsForParticipant(ctx, hackathonID, participantID)
}

// SuggestTeammates lists the best complementary teammates for the participant.
func (s *Service) SuggestTeammates(ctx context.Context, hackathonID, participantID string) ([]model.Participant, error) {
	c, err := s.parts()
	if err != nil {
		return nil, err
	}
	return c.matcher.SuggestTeammates(ctx, hackathonID, participantID)
}

// SuggestMembers lists candidates for the team. Only its leader may ask.
func (s *Service) SuggestMembers(ctx context.Context, teamID, actorID string) ([]model.Participant, error) {
	c, err := s.parts()
	if err != nil {
		return nil, err
	}
	team, err := c.store.GetTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if team.Leader != actorID {
		return nil, roster.ErrNotAuthorized
	}
	return c.matcher.SuggestMembersForTeam(ctx, teamID)
}

// SendChat relays text from senderID to the team's chat subject.
func (s *Service) SendChat(ctx context.Context, teamID, senderID, text string) (chat.Message, error) {
	c, err := s.parts()
	if err != nil {
		return chat.Message{}, err
	}
	team, err := c.store.GetTeam(ctx, teamID)
	if err != nil {
		return chat.Message{}, err
	}
	return c.chat.Send(ctx, team, senderID, text)
}

// Notifications lists recipientID's inbox, newest first. A non-positive
// limit uses the configured default.
func (s *Service) Notifications(ctx context.Context, recipientID string, limit int) ([]notify.Notification, error) {
	if limit <= 0 {
		limit = s.inboxLimit
	}
	return s.inbox.List(ctx, recipientID, limit)
}

// MarkNotificationRead flags one of recipientID's notifications as read.
func (s *Service) MarkNotificationRead(ctx context.Context, recipientID, id string) (notify.Notification, error) {
	return s.inbox.MarkRead(ctx, recipientID, id)
}

// MarkAllNotificationsRead flags every notification of recipientID as read.
func (s *Service) MarkAllNotificationsRead(ctx context.Context, recipientID string) (int, error) {
	return s.inbox.MarkAllRead(ctx, recipientID)
}

// DeleteNotification removes one of recipientID's notifications.
func (s *Service) DeleteNotification(ctx context.Context, recipientID, id string) error {
	return s.inbox.Delete(ctx, recipientID, id)
}

// SendDeadlineReminders notifies every participant of hackathons whose
// registration deadline falls within the reminder window. Each
// participant is reminded at most once per hackathon; reminders dropped
// by backpressure are retried on the next call. It returns how many
// reminders were queued.
func (s *Service) SendDeadlineReminders(ctx context.Context) (int, error) {
	c, err := s.parts()
	if err != nil {
		return 0, err
	}
	hackathons, err := c.store.ListHackathons(ctx)
	if err != nil {
		return 0, err
	}

	now := s.clock.Now()
	horizon := now.Add(s.reminderWindow)
	sent := 0
	for _, h := range hackathons {
		deadline := h.RegistrationDeadline
		if deadline.IsZero() || deadline.Before(now) || deadline.After(horizon) {
			continue
		}
		for _, pid := range h.Participants {
			key := dedupe.Key(h.ID, pid)
			if c.deduper.SeenAndRecord(ctx, key) {
				metrics.RecordReminder(true)
				continue
			}
			err := c.dispatcher.Emit(ctx, model.NotificationIntent{
				RecipientID:       pid,
				Kind:              model.KindDeadline,
				Title:             TitleDeadlineReminder,
				Message:           fmt.Sprintf("The registration deadline for %s is approaching!", h.Title),
				RelatedEntityID:   h.ID,
				RelatedEntityKind: model.EntityHackathon,
			})
			if err != nil {
				c.deduper.Unrecord(ctx, key)
				continue
			}
			metrics.RecordReminder(false)
			sent++
		}
	}
	s.logger.Info(ctx, "deadline reminders sent", logger.Int("count", sent))
	return sent, nil
}

func (s *Service) emit(ctx context.Context, c *components, intents ...model.NotificationIntent) {
	for _, in := range intents {
		_ = c.dispatcher.Emit(ctx, in)
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.c != nil,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	goroutines := runtime.NumGoroutine()
	metrics.UpdateSystemMemoryUsage(mem.Alloc)
	metrics.UpdateSystemGoroutineCount(goroutines)
	stats["goroutines"] = goroutines

	if s.c != nil {
		hackathons, teams, participants := s.c.store.Counts(ctx)
		queueLen := s.c.queue.Len(ctx)

		stats["queueLength"] = queueLen
		stats["hackathons"] = hackathons
		stats["teams"] = teams
		stats["participants"] = participants
		stats["reminderKeys"] = s.c.deduper.Size()

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateTeamsTotal(teams)
		metrics.UpdateParticipantsTotal(participants)
	}
	return stats
}

// resultLabel buckets an operation error for metrics.
func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, roster.ErrMemberNotFound):
		return "not_found"
	case errors.Is(err, roster.ErrNotAuthorized):
		return "not_authorized"
	case errors.Is(err, roster.ErrTeamFull), errors.Is(err, repository.ErrHackathonFull):
		return "full"
	case errors.Is(err, roster.ErrAlreadyMember), errors.Is(err, roster.ErrAlreadyInTeam),
		errors.Is(err, repository.ErrAlreadyRegistered):
		return "duplicate"
	case errors.Is(err, roster.ErrNotRegistered):
		return "not_registered"
	case errors.Is(err, roster.ErrLeaderCannotLeave), errors.Is(err, roster.ErrCannotRemoveLeader):
		return "leader_protected"
	default:
		return "error"
	}
}
