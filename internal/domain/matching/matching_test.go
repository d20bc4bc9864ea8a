package matching_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/okian/hackmatch/internal/domain/matching"
	"github.com/okian/hackmatch/internal/domain/model"
	"github.com/okian/hackmatch/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

var errNotFound = errors.New("not found")

// snapshot is an Accessor over fixed data.
type snapshot struct {
	hackathons   map[string]model.Hackathon
	participants map[string]model.Participant
	teams        []model.Team
}

func newSnapshot() *snapshot {
	return &snapshot{
		hackathons:   map[string]model.Hackathon{},
		participants: map[string]model.Participant{},
	}
}

func (s *snapshot) addParticipant(h *model.Hackathon, id, name string, skillNames []string, interests ...string) {
	p := model.Participant{ID: id, Name: name, Interests: interests}
	for _, n := range skillNames {
		p.Skills = append(p.Skills, model.Skill{Name: n, Level: model.LevelIntermediate})
	}
	s.participants[id] = p
	h.Participants = append(h.Participants, id)
	s.hackathons[h.ID] = *h
}

func (s *snapshot) GetHackathon(_ context.Context, id string) (model.Hackathon, error) {
	h, ok := s.hackathons[id]
	if !ok {
		return model.Hackathon{}, fmt.Errorf("hackathon %s: %w", id, errNotFound)
	}
	return h.Clone(), nil
}

func (s *snapshot) ListTeamsForHackathon(_ context.Context, hackathonID string) ([]model.Team, error) {
	var out []model.Team
	for _, t := range s.teams {
		if t.HackathonID == hackathonID {
			out = append(out, t.Clone())
		}
	}
	return out, nil
}

func (s *snapshot) ListParticipantsForHackathon(ctx context.Context, hackathonID string) ([]model.Participant, error) {
	h, err := s.GetHackathon(ctx, hackathonID)
	if err != nil {
		return nil, err
	}
	out := make([]model.Participant, 0, len(h.Participants))
	for _, id := range h.Participants {
		out = append(out, s.participants[id].Clone())
	}
	return out, nil
}

func (s *snapshot) GetParticipant(_ context.Context, id string) (model.Participant, error) {
	p, ok := s.participants[id]
	if !ok {
		return model.Participant{}, fmt.Errorf("participant %s: %w", id, errNotFound)
	}
	return p.Clone(), nil
}

func (s *snapshot) GetTeam(_ context.Context, id string) (model.Team, error) {
	for _, t := range s.teams {
		if t.ID == id {
			return t.Clone(), nil
		}
	}
	return model.Team{}, fmt.Errorf("team %s: %w", id, errNotFound)
}

func team(id, hackathonID, leader string, maxSize int, lookingFor []string, members ...string) model.Team {
	t := model.Team{ID: id, Name: "Team " + id, HackathonID: hackathonID, Leader: leader, MaxSize: maxSize, LookingFor: lookingFor}
	for _, m := range append([]string{leader}, members...) {
		t.Members = append(t.Members, model.Member{ParticipantID: m, Role: model.RoleOther})
	}
	return t
}

func newService(s *snapshot) *matching.Service {
	return matching.New(s, matching.WithLogger(logger.Get().Named("matching_test")))
}

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	m.Run()
}

func TestOnParticipantRegistered(t *testing.T) {
	Convey("Given hackathon H with team T needing python and room for two", t, func() {
		ctx := context.Background()
		s := newSnapshot()
		h := model.Hackathon{ID: "H", Title: "Spring Hack"}
		s.addParticipant(&h, "L", "Lin", []string{"Go"})
		s.teams = []model.Team{team("T", "H", "L", 2, []string{"python"})}
		s.addParticipant(&h, "P", "Pat", []string{"Python", "SQL"})

		svc := newService(s)

		Convey("When P registers", func() {
			intents, err := svc.OnParticipantRegistered(ctx, "H", "P")

			Convey("Then exactly one intent goes to the leader of T", func() {
				So(err, ShouldBeNil)
				So(intents, ShouldHaveLength, 1)
				So(intents[0].RecipientID, ShouldEqual, "L")
				So(intents[0].Title, ShouldEqual, matching.TitlePotentialMatch)
				So(intents[0].Kind, ShouldEqual, model.KindTeam)
				So(intents[0].RelatedEntityID, ShouldEqual, "T")
				So(intents[0].Message, ShouldEqual,
					"Pat has registered for Spring Hack and matches your required skills for team Team T.")
			})
		})

		Convey("When T is already full", func() {
			s.teams[0] = team("T", "H", "L", 1, []string{"python"})
			intents, err := svc.OnParticipantRegistered(ctx, "H", "P")
			So(err, ShouldBeNil)
			So(intents, ShouldBeEmpty)
		})

		Convey("When P is already on T", func() {
			s.teams[0] = team("T", "H", "L", 3, []string{"python"}, "P")
			intents, err := svc.OnParticipantRegistered(ctx, "H", "P")
			So(err, ShouldBeNil)
			So(intents, ShouldBeEmpty)
		})

		Convey("When T is looking for nothing", func() {
			s.teams[0] = team("T", "H", "L", 2, nil)
			intents, err := svc.OnParticipantRegistered(ctx, "H", "P")
			So(err, ShouldBeNil)
			So(intents, ShouldBeEmpty)
		})

		Convey("When the hackathon is unknown", func() {
			_, err := svc.OnParticipantRegistered(ctx, "nope", "P")
			So(errors.Is(err, errNotFound), ShouldBeTrue)
		})

		Convey("When the participant is unknown", func() {
			_, err := svc.OnParticipantRegistered(ctx, "H", "ghost")
			So(errors.Is(err, errNotFound), ShouldBeTrue)
		})
	})
}

func TestSuggestTeamsForParticipant(t *testing.T) {
	Convey("Given several teams in a hackathon", t, func() {
		ctx := context.Background()
		s := newSnapshot()
		h := model.Hackathon{ID: "H", Title: "Hack"}
		for _, id := range []string{"l1", "l2", "l3", "l4"} {
			s.addParticipant(&h, id, id, nil)
		}
		s.addParticipant(&h, "me", "Me", []string{"Go", "React"})
		s.teams = []model.Team{
			team("django-team", "H", "l1", 4, []string{"django"}),
			team("full", "H", "l2", 1, []string{"react"}),
			team("design", "H", "l3", 4, []string{"figma"}),
			team("web", "H", "l4", 4, []string{"ReactJS"}),
			team("elsewhere", "H2", "x", 4, []string{"go"}),
		}

		teams, err := newService(s).SuggestTeamsForParticipant(ctx, "H", "me")

		Convey("Then eligible overlapping teams come back in enumeration order", func() {
			So(err, ShouldBeNil)
			ids := make([]string, len(teams))
			for i, t := range teams {
				ids[i] = t.ID
			}
			So(ids, ShouldResemble, []string{"django-team", "web"})
		})

		Convey("When the participant has no skills", func() {
			s.addParticipant(&h, "blank", "Blank", nil)
			teams, err := newService(s).SuggestTeamsForParticipant(ctx, "H", "blank")
			So(err, ShouldBeNil)
			So(teams, ShouldNotBeNil)
			So(teams, ShouldBeEmpty)
		})
	})
}

func TestSuggestMembersForTeam(t *testing.T) {
	Convey("Given a full team looking for python", t, func() {
		ctx := context.Background()
		s := newSnapshot()
		h := model.Hackathon{ID: "H"}
		s.addParticipant(&h, "lead", "Lead", []string{"python"})
		s.addParticipant(&h, "m1", "M1", []string{"python"})
		s.addParticipant(&h, "a", "A", []string{"Python3"})
		s.addParticipant(&h, "b", "B", []string{"rust"})
		s.addParticipant(&h, "c", "C", []string{"py"})
		s.teams = []model.Team{team("T", "H", "lead", 2, []string{"python"}, "m1")}

		got, err := newService(s).SuggestMembersForTeam(ctx, "T")

		Convey("Then outsiders with overlapping skills are suggested despite capacity", func() {
			So(err, ShouldBeNil)
			ids := make([]string, len(got))
			for i, p := range got {
				ids[i] = p.ID
			}
			So(ids, ShouldResemble, []string{"a", "c"})
		})

		Convey("When the team does not exist", func() {
			_, err := newService(s).SuggestMembersForTeam(ctx, "missing")
			So(errors.Is(err, errNotFound), ShouldBeTrue)
		})
	})

	Convey("Given random teams and participants", t, func() {
		ctx := context.Background()
		rng := rand.New(rand.NewSource(7))
		vocab := []string{"go", "python", "react", "sql", "figma", "rust", "django", "ai"}

		for run := 0; run < 50; run++ {
			s := newSnapshot()
			h := model.Hackathon{ID: "H"}
			for i := 0; i < 12; i++ {
				var sk []string
				for j := 0; j < rng.Intn(4); j++ {
					sk = append(sk, vocab[rng.Intn(len(vocab))])
				}
				s.addParticipant(&h, fmt.Sprintf("p%d", i), "", sk)
			}
			var members []string
			for i := 1; i < 1+rng.Intn(4); i++ {
				members = append(members, fmt.Sprintf("p%d", i))
			}
			s.teams = []model.Team{team("T", "H", "p0", 6, []string{vocab[rng.Intn(len(vocab))], vocab[rng.Intn(len(vocab))]}, members...)}

			got, err := newService(s).SuggestMembersForTeam(ctx, "T")
			So(err, ShouldBeNil)
			for _, p := range got {
				So(s.teams[0].Contains(p.ID), ShouldBeFalse)
			}
		}
	})
}

func TestSuggestTeammates(t *testing.T) {
	Convey("Given participants with varied skills and interests", t, func() {
		ctx := context.Background()
		s := newSnapshot()
		h := model.Hackathon{ID: "H"}
		s.addParticipant(&h, "me", "Me", []string{"A"}, "I")
		s.addParticipant(&h, "twin", "Twin", []string{"a"})
		s.addParticipant(&h, "c1", "C1", []string{"A", "B"}, "I")
		s.addParticipant(&h, "c2", "C2", []string{"B", "C"}, "i")
		for i := 0; i < 12; i++ {
			s.addParticipant(&h, fmt.Sprintf("x%02d", i), "", []string{fmt.Sprintf("skill-%d", i)})
		}

		Convey("When ranking with the default limit", func() {
			svc := newService(s)
			ranked, err := svc.RankTeammates(ctx, "H", "me")
			So(err, ShouldBeNil)

			Convey("Then scores descend, ties keep enumeration order, and ten are kept", func() {
				So(ranked, ShouldHaveLength, 10)
				So(ranked[0].TargetID, ShouldEqual, "c2")
				So(ranked[0].Score, ShouldEqual, 5)
				So(ranked[1].TargetID, ShouldEqual, "c1")
				So(ranked[1].Score, ShouldEqual, 3)
				So(ranked[2].TargetID, ShouldEqual, "x00")
				for _, r := range ranked {
					So(r.TargetID, ShouldNotEqual, "me")
					So(r.TargetID, ShouldNotEqual, "twin")
				}
			})

			Convey("And SuggestTeammates resolves the same order into participants", func() {
				people, err := svc.SuggestTeammates(ctx, "H", "me")
				So(err, ShouldBeNil)
				So(people, ShouldHaveLength, 10)
				So(people[0].ID, ShouldEqual, "c2")
				So(people[1].Name, ShouldEqual, "C1")
			})
		})

		Convey("When a smaller limit is configured", func() {
			svc := matching.New(s, matching.WithLimit(3), matching.WithLogger(logger.Get()))
			people, err := svc.SuggestTeammates(ctx, "H", "me")
			So(err, ShouldBeNil)
			So(people, ShouldHaveLength, 3)
		})

		Convey("When the subject is unknown", func() {
			_, err := newService(s).SuggestTeammates(ctx, "H", "ghost")
			So(errors.Is(err, errNotFound), ShouldBeTrue)
		})
	})
}
