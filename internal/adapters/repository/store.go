// Package repository holds hackathon, participant and team state and
// serializes roster mutations per team.
package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/okian/hackmatch/internal/domain/model"
	"github.com/okian/hackmatch/internal/domain/roster"
	"github.com/okian/hackmatch/pkg/metrics"
)

const (
	defaultMetricsUpdateInterval = 5 * time.Second
	defaultMinTeamSize           = 1
	defaultMaxTeamSize           = 4
)

// MutateFunc derives the next team state from the current one.
type MutateFunc func(current model.Team) (model.Team, error)

// Store is the persistence contract used by the service. Reads return
// copies; writes validate before they land.
type Store interface {
	UpsertParticipant(ctx context.Context, p model.Participant) (model.Participant, error)
	UpsertHackathon(ctx context.Context, h model.Hackathon) (model.Hackathon, error)
	GetHackathon(ctx context.Context, id string) (model.Hackathon, error)
	ListHackathons(ctx context.Context) ([]model.Hackathon, error)
	GetParticipant(ctx context.Context, id string) (model.Participant, error)
	ListParticipantsForHackathon(ctx context.Context, hackathonID string) ([]model.Participant, error)
	GetTeam(ctx context.Context, id string) (model.Team, error)
	ListTeamsForHackathon(ctx context.Context, hackathonID string) ([]model.Team, error)

	// Register adds participantID to the hackathon's registration list.
	Register(ctx context.Context, hackathonID, participantID string) (model.Hackathon, error)
	// Unregister removes participantID from the registration list.
	Unregister(ctx context.Context, hackathonID, participantID string) (model.Hackathon, error)

	// CreateTeam stores a new team at version 1.
	CreateTeam(ctx context.Context, team model.Team) (model.Team, error)
	// MutateTeam runs fn under the team's lock, validates the result and
	// stores it with Version incremented.
	MutateTeam(ctx context.Context, teamID string, fn MutateFunc) (model.Team, error)

	Counts(ctx context.Context) (hackathons, teams, participants int)
}

// MemoryStore implements Store in memory. A store-wide RWMutex guards the
// maps; a per-team mutex serializes read-validate-write cycles on one team.
type MemoryStore struct {
	mu             sync.RWMutex
	hackathons     map[string]model.Hackathon
	hackathonOrder []string
	participants   map[string]model.Participant
	teams          map[string]model.Team
	teamOrder      []string
	teamLocks      map[string]*sync.Mutex

	defaultMinTeamSize    int
	defaultMaxTeamSize    int
	metricsUpdateInterval time.Duration

	wg       sync.WaitGroup
	stopChan chan struct{}
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore constructs a store and starts its metrics updater, which
// stops when ctx is done or Close is called.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		hackathons:            make(map[string]model.Hackathon),
		participants:          make(map[string]model.Participant),
		teams:                 make(map[string]model.Team),
		teamLocks:             make(map[string]*sync.Mutex),
		defaultMinTeamSize:    defaultMinTeamSize,
		defaultMaxTeamSize:    defaultMaxTeamSize,
		metricsUpdateInterval: defaultMetricsUpdateInterval,
		stopChan:              make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.startMetricsUpdater(ctx)
	return s
}

// Close stops the metrics updater.
func (s *MemoryStore) Close() error {
	select {
	case <-s.stopChan:
	default:
		close(s.stopChan)
	}
	s.wg.Wait()
	return nil
}

func (s *MemoryStore) UpsertParticipant(_ context.Context, p model.Participant) (model.Participant, error) {
	if strings.TrimSpace(p.ID) == "" {
		return model.Participant{}, fmt.Errorf("%w: participant id is required", ErrInvalidEntity)
	}
	p = p.Clone()
	for i := range p.Skills {
		p.Skills[i].Level = model.ParseLevel(string(p.Skills[i].Level))
	}

	s.mu.Lock()
	s.participants[p.ID] = p
	s.mu.Unlock()
	return p.Clone(), nil
}

// UpsertHackathon stores the hackathon definition. The registration list of
// an existing hackathon is kept; for a new one the given list is deduplicated.
func (s *MemoryStore) UpsertHackathon(_ context.Context, h model.Hackathon) (model.Hackathon, error) {
	if strings.TrimSpace(h.ID) == "" {
		return model.Hackathon{}, fmt.Errorf("%w: hackathon id is required", ErrInvalidEntity)
	}
	h = h.Clone().WithDefaults(s.defaultMinTeamSize, s.defaultMaxTeamSize)
	if h.MaxTeamSize < h.MinTeamSize {
		return model.Hackathon{}, fmt.Errorf("%w: max team size %d below min %d", ErrInvalidEntity, h.MaxTeamSize, h.MinTeamSize)
	}
	if h.MaxParticipants != nil && *h.MaxParticipants < 0 {
		return model.Hackathon{}, fmt.Errorf("%w: negative max participants", ErrInvalidEntity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.hackathons[h.ID]; ok {
		h.Participants = existing.Participants
	} else {
		h.Participants = uniq(h.Participants)
		s.hackathonOrder = append(s.hackathonOrder, h.ID)
	}
	s.hackathons[h.ID] = h
	return h.Clone(), nil
}

func (s *MemoryStore) GetHackathon(_ context.Context, id string) (model.Hackathon, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.hackathons[id]
	if !ok {
		return model.Hackathon{}, fmt.Errorf("hackathon %s: %w", id, ErrNotFound)
	}
	return h.Clone(), nil
}

// ListHackathons returns hackathons in creation order.
func (s *MemoryStore) ListHackathons(_ context.Context) ([]model.Hackathon, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Hackathon, 0, len(s.hackathonOrder))
	for _, id := range s.hackathonOrder {
		out = append(out, s.hackathons[id].Clone())
	}
	return out, nil
}

func (s *MemoryStore) GetParticipant(_ context.Context, id string) (model.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.participants[id]
	if !ok {
		return model.Participant{}, fmt.Errorf("participant %s: %w", id, ErrNotFound)
	}
	return p.Clone(), nil
}

// ListParticipantsForHackathon returns registered participants in
// registration order. Ids without a stored profile are skipped.
func (s *MemoryStore) ListParticipantsForHackathon(_ context.Context, hackathonID string) ([]model.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.hackathons[hackathonID]
	if !ok {
		return nil, fmt.Errorf("hackathon %s: %w", hackathonID, ErrNotFound)
	}
	out := make([]model.Participant, 0, len(h.Participants))
	for _, id := range h.Participants {
		if p, ok := s.participants[id]; ok {
			out = append(out, p.Clone())
		}
	}
	return out, nil
}

func (s *MemoryStore) GetTeam(_ context.Context, id string) (model.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.teams[id]
	if !ok {
		return model.Team{}, fmt.Errorf("team %s: %w", id, ErrNotFound)
	}
	return t.Clone(), nil
}

// ListTeamsForHackathon returns the hackathon's teams in creation order.
func (s *MemoryStore) ListTeamsForHackathon(_ context.Context, hackathonID string) ([]model.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.hackathons[hackathonID]; !ok {
		return nil, fmt.Errorf("hackathon %s: %w", hackathonID, ErrNotFound)
	}
	out := []model.Team{}
	for _, id := range s.teamOrder {
		if t := s.teams[id]; t.HackathonID == hackathonID {
			out = append(out, t.Clone())
		}
	}
	return out, nil
}

func (s *MemoryStore) Register(_ context.Context, hackathonID, participantID string) (model.Hackathon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.hackathons[hackathonID]
	if !ok {
		return model.Hackathon{}, fmt.Errorf("hackathon %s: %w", hackathonID, ErrNotFound)
	}
	if _, ok := s.participants[participantID]; !ok {
		return model.Hackathon{}, fmt.Errorf("participant %s: %w", participantID, ErrNotFound)
	}
	if h.IsRegistered(participantID) {
		return model.Hackathon{}, ErrAlreadyRegistered
	}
	if h.IsFull() {
		return model.Hackathon{}, ErrHackathonFull
	}
	h = h.Clone()
	h.Participants = append(h.Participants, participantID)
	s.hackathons[hackathonID] = h
	return h.Clone(), nil
}

func (s *MemoryStore) Unregister(_ context.Context, hackathonID, participantID string) (model.Hackathon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.hackathons[hackathonID]
	if !ok {
		return model.Hackathon{}, fmt.Errorf("hackathon %s: %w", hackathonID, ErrNotFound)
	}
	if !h.IsRegistered(participantID) {
		return model.Hackathon{}, roster.ErrNotRegistered
	}
	h = h.Clone()
	kept := h.Participants[:0]
	for _, id := range h.Participants {
		if id != participantID {
			kept = append(kept, id)
		}
	}
	h.Participants = kept
	s.hackathons[hackathonID] = h
	return h.Clone(), nil
}

func (s *MemoryStore) CreateTeam(_ context.Context, team model.Team) (model.Team, error) {
	if strings.TrimSpace(team.ID) == "" {
		return model.Team{}, fmt.Errorf("%w: team id is required", ErrInvalidEntity)
	}
	if err := roster.Validate(team); err != nil {
		return model.Team{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.hackathons[team.HackathonID]; !ok {
		return model.Team{}, fmt.Errorf("hackathon %s: %w", team.HackathonID, ErrNotFound)
	}
	if _, ok := s.teams[team.ID]; ok {
		return model.Team{}, fmt.Errorf("team %s: %w", team.ID, ErrConflict)
	}
	team = team.Clone()
	team.Version = 1
	s.teams[team.ID] = team
	s.teamOrder = append(s.teamOrder, team.ID)
	s.teamLocks[team.ID] = &sync.Mutex{}
	return team.Clone(), nil
}

func (s *MemoryStore) MutateTeam(ctx context.Context, teamID string, fn MutateFunc) (model.Team, error) {
	s.mu.RLock()
	lock, ok := s.teamLocks[teamID]
	s.mu.RUnlock()
	if !ok {
		return model.Team{}, fmt.Errorf("team %s: %w", teamID, ErrNotFound)
	}

	lock.Lock()
	defer lock.Unlock()

	if err := ctx.Err(); err != nil {
		return model.Team{}, err
	}

	current, err := s.GetTeam(ctx, teamID)
	if err != nil {
		return model.Team{}, err
	}
	next, err := fn(current.Clone())
	if err != nil {
		return model.Team{}, err
	}
	if next.ID != current.ID || next.HackathonID != current.HackathonID || next.Leader != current.Leader {
		return model.Team{}, ErrImmutableField
	}
	if err := roster.Validate(next); err != nil {
		return model.Team{}, err
	}
	next = next.Clone()
	next.Version = current.Version + 1

	s.mu.Lock()
	s.teams[teamID] = next
	s.mu.Unlock()
	return next.Clone(), nil
}

func (s *MemoryStore) Counts(_ context.Context) (hackathons, teams, participants int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.hackathons), len(s.teams), len(s.participants)
}

func (s *MemoryStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.updateMetrics(ctx)
			}
		}
	}()
}

func (s *MemoryStore) updateMetrics(ctx context.Context) {
	_, teams, participants := s.Counts(ctx)
	metrics.UpdateTeamsTotal(teams)
	metrics.UpdateParticipantsTotal(participants)
}

func uniq(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
