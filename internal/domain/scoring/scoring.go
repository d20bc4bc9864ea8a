// Package scoring holds the pure matching policies: substring affinity,
// complementary teammate score and the team eligibility filter.
package scoring

import (
	"slices"
	"strings"

	"github.com/okian/hackmatch/internal/domain/model"
	"github.com/okian/hackmatch/internal/domain/skills"
)

// DefaultLimit caps ranked teammate suggestions.
const DefaultLimit = 10

// Weights of the complementary score.
const (
	skillGainWeight       = 2
	interestOverlapWeight = 1
)

// MatchResult is a transient scoring outcome. Never persisted.
type MatchResult struct {
	SubjectID     string
	TargetID      string
	Score         int
	MatchedTokens []skills.Token
}

// Profile is the normalized view of a participant used by the scorers.
type Profile struct {
	ID        string
	Skills    skills.Set
	Interests skills.Set
}

// ProfileOf normalizes a participant once for repeated scoring.
func ProfileOf(p model.Participant) Profile {
	return Profile{
		ID:        p.ID,
		Skills:    skills.FromParticipantSkills(p),
		Interests: skills.FromInterests(p),
	}
}

func overlaps(t skills.Token, b skills.Set) bool {
	for _, u := range b.Tokens() {
		if strings.Contains(string(u), string(t)) || strings.Contains(string(t), string(u)) {
			return true
		}
	}
	return false
}

// HasSubstringOverlap reports whether any token of a is contained in any
// token of b or the other way round. Either set empty means no match.
// Short tokens match inside unrelated ones ("go" in "django").
func HasSubstringOverlap(a, b skills.Set) bool {
	if a.Len() == 0 || b.Len() == 0 {
		return false
	}
	for _, t := range a.Tokens() {
		if overlaps(t, b) {
			return true
		}
	}
	return false
}

// SubstringAffinity scores a against b under the substring policy. The
// matched tokens are those of a that overlap b; Score is their count.
// ok is false when nothing overlaps.
func SubstringAffinity(subjectID, targetID string, a, b skills.Set) (MatchResult, bool) {
	if a.Len() == 0 || b.Len() == 0 {
		return MatchResult{}, false
	}
	var matched []skills.Token
	for _, t := range a.Tokens() {
		if overlaps(t, b) {
			matched = append(matched, t)
		}
	}
	if len(matched) == 0 {
		return MatchResult{}, false
	}
	return MatchResult{
		SubjectID:     subjectID,
		TargetID:      targetID,
		Score:         len(matched),
		MatchedTokens: matched,
	}, true
}

// ComplementaryScore is 2 x (candidate skills the subject lacks) plus the
// number of shared interests. Not symmetric.
func ComplementaryScore(subject, candidate Profile) int {
	gain := candidate.Skills.Difference(subject.Skills).Len()
	shared := candidate.Interests.Intersect(subject.Interests).Len()
	return skillGainWeight*gain + interestOverlapWeight*shared
}

// RankComplementary scores every candidate against subject, drops the
// subject itself and non-positive scores, and returns the top limit results
// by descending score. Ties keep candidate order. limit <= 0 means DefaultLimit.
func RankComplementary(subject Profile, candidates []Profile, limit int) []MatchResult {
	if limit <= 0 {
		limit = DefaultLimit
	}
	out := make([]MatchResult, 0, len(candidates))
	for _, c := range candidates {
		if c.ID == subject.ID {
			continue
		}
		score := ComplementaryScore(subject, c)
		if score <= 0 {
			continue
		}
		matched := c.Skills.Difference(subject.Skills).Tokens()
		matched = append(matched, c.Interests.Intersect(subject.Interests).Tokens()...)
		out = append(out, MatchResult{
			SubjectID:     subject.ID,
			TargetID:      c.ID,
			Score:         score,
			MatchedTokens: matched,
		})
	}
	slices.SortStableFunc(out, func(a, b MatchResult) int {
		return b.Score - a.Score
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// TeamEligible is the capacity and membership filter applied before any
// scoring: full teams and teams already containing subjectID are out.
func TeamEligible(team model.Team, subjectID string) bool {
	if team.IsFull() {
		return false
	}
	return !team.Contains(subjectID)
}
