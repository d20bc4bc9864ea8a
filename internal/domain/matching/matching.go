// Package matching orchestrates the four read-only matching use cases over
// a snapshot supplied by an Accessor.
package matching

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/hackmatch/internal/domain/model"
	"github.com/okian/hackmatch/internal/domain/scoring"
	"github.com/okian/hackmatch/internal/domain/skills"
	"github.com/okian/hackmatch/pkg/logger"
	"github.com/okian/hackmatch/pkg/metrics"
)

// TitlePotentialMatch is the title of the intent sent to team leaders on registration.
const TitlePotentialMatch = "Potential Team Member Match"

// Accessor supplies snapshots of hackathon state. Implementations return
// copies the service may read freely; missing entities yield an error
// wrapping the implementation's not-found sentinel.
type Accessor interface {
	GetHackathon(ctx context.Context, id string) (model.Hackathon, error)
	ListTeamsForHackathon(ctx context.Context, hackathonID string) ([]model.Team, error)
	ListParticipantsForHackathon(ctx context.Context, hackathonID string) ([]model.Participant, error)
	GetParticipant(ctx context.Context, id string) (model.Participant, error)
	GetTeam(ctx context.Context, id string) (model.Team, error)
}

// Sink takes notification intents for best-effort delivery.
type Sink interface {
	Emit(ctx context.Context, intent model.NotificationIntent) error
}

// Service implements the matching use cases.
type Service struct {
	data  Accessor
	limit int
	log   logger.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLimit caps teammate suggestions. Non-positive values keep the default.
func WithLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.limit = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// New builds a Service over data.
func New(data Accessor, opts ...Option) *Service {
	s := &Service{data: data, limit: scoring.DefaultLimit}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Get().Named("matching")
	}
	return s
}

// OnParticipantRegistered returns one intent per eligible team in the
// hackathon whose looking-for set overlaps the participant's skills,
// addressed to that team's leader, in team enumeration order.
func (s *Service) OnParticipantRegistered(ctx context.Context, hackathonID, participantID string) ([]model.NotificationIntent, error) {
	h, p, teams, err := s.teamsView(ctx, hackathonID, participantID)
	if err != nil {
		return nil, err
	}
	mine := skills.FromParticipantSkills(p)

	var intents []model.NotificationIntent
	for _, t := range teams {
		if !scoring.TeamEligible(t, p.ID) {
			continue
		}
		if _, ok := scoring.SubstringAffinity(p.ID, t.ID, mine, skills.Normalize(t.LookingFor)); !ok {
			continue
		}
		intents = append(intents, model.NotificationIntent{
			RecipientID: t.Leader,
			Kind:        model.KindTeam,
			Title:       TitlePotentialMatch,
			Message: fmt.Sprintf("%s has registered for %s and matches your required skills for team %s.",
				nameOf(p), h.Title, t.Name),
			RelatedEntityID:   t.ID,
			RelatedEntityKind: model.EntityTeam,
		})
	}
	metrics.RecordMatchNotifications(len(intents))
	s.log.Debug(ctx, "registration matched teams",
		logger.String("hackathon_id", hackathonID),
		logger.String("participant_id", participantID),
		logger.Int("matches", len(intents)))
	return intents, nil
}

// SuggestTeamsForParticipant returns eligible teams whose looking-for set
// overlaps the participant's skills, in team enumeration order.
func (s *Service) SuggestTeamsForParticipant(ctx context.Context, hackathonID, participantID string) ([]model.Team, error) {
	start := time.Now()
	_, p, teams, err := s.teamsView(ctx, hackathonID, participantID)
	if err != nil {
		return nil, err
	}
	mine := skills.FromParticipantSkills(p)

	out := []model.Team{}
	for _, t := range teams {
		if !scoring.TeamEligible(t, p.ID) {
			continue
		}
		if scoring.HasSubstringOverlap(mine, skills.Normalize(t.LookingFor)) {
			out = append(out, t)
		}
	}
	metrics.RecordSuggestions("teams", len(out), sinceMs(start))
	return out, nil
}

// SuggestMembersForTeam returns hackathon participants not on the team
// whose skills overlap the team's looking-for set, in participant
// enumeration order. Team capacity is not consulted.
func (s *Service) SuggestMembersForTeam(ctx context.Context, teamID string) ([]model.Participant, error) {
	start := time.Now()
	t, err := s.data.GetTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	people, err := s.data.ListParticipantsForHackathon(ctx, t.HackathonID)
	if err != nil {
		return nil, err
	}
	wanted := skills.Normalize(t.LookingFor)

	out := []model.Participant{}
	for _, p := range people {
		if t.Contains(p.ID) {
			continue
		}
		if scoring.HasSubstringOverlap(skills.FromParticipantSkills(p), wanted) {
			out = append(out, p)
		}
	}
	metrics.RecordSuggestions("members", len(out), sinceMs(start))
	return out, nil
}

// RankTeammates scores every other hackathon participant by complementary
// score and returns the top results, best first.
func (s *Service) RankTeammates(ctx context.Context, hackathonID, participantID string) ([]scoring.MatchResult, error) {
	if _, err := s.data.GetHackathon(ctx, hackathonID); err != nil {
		return nil, err
	}
	p, err := s.data.GetParticipant(ctx, participantID)
	if err != nil {
		return nil, err
	}
	people, err := s.data.ListParticipantsForHackathon(ctx, hackathonID)
	if err != nil {
		return nil, err
	}
	candidates := make([]scoring.Profile, len(people))
	for i, c := range people {
		candidates[i] = scoring.ProfileOf(c)
	}
	return scoring.RankComplementary(scoring.ProfileOf(p), candidates, s.limit), nil
}

// SuggestTeammates resolves RankTeammates into participants.
func (s *Service) SuggestTeammates(ctx context.Context, hackathonID, participantID string) ([]model.Participant, error) {
	start := time.Now()
	ranked, err := s.RankTeammates(ctx, hackathonID, participantID)
	if err != nil {
		return nil, err
	}
	out := make([]model.Participant, 0, len(ranked))
	for _, r := range ranked {
		p, err := s.data.GetParticipant(ctx, r.TargetID)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	metrics.RecordSuggestions("teammates", len(out), sinceMs(start))
	return out, nil
}

func (s *Service) teamsView(ctx context.Context, hackathonID, participantID string) (model.Hackathon, model.Participant, []model.Team, error) {
	h, err := s.data.GetHackathon(ctx, hackathonID)
	if err != nil {
		return model.Hackathon{}, model.Participant{}, nil, err
	}
	p, err := s.data.GetParticipant(ctx, participantID)
	if err != nil {
		return model.Hackathon{}, model.Participant{}, nil, err
	}
	teams, err := s.data.ListTeamsForHackathon(ctx, hackathonID)
	if err != nil {
		return model.Hackathon{}, model.Participant{}, nil, err
	}
	return h, p, teams, nil
}

func nameOf(p model.Participant) string {
	if p.Name != "" {
		return p.Name
	}
	return p.ID
}

func sinceMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
