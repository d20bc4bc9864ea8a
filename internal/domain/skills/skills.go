// Package skills normalizes free-text skills and interests into comparable token sets.
package skills

import (
	"strings"

	"github.com/okian/hackmatch/internal/domain/model"
)

// Token is a trimmed, lower-cased skill or interest.
type Token string

// Set is an insertion-ordered set of tokens. The zero value is empty and usable.
type Set struct {
	order []Token
	index map[Token]struct{}
}

// Normalize trims and lower-cases each entry, drops empties and collapses
// duplicates, keeping first-seen order.
func Normalize(raw []string) Set {
	s := Set{index: make(map[Token]struct{}, len(raw))}
	for _, r := range raw {
		t := Token(strings.ToLower(strings.TrimSpace(r)))
		if t == "" {
			continue
		}
		if _, dup := s.index[t]; dup {
			continue
		}
		s.index[t] = struct{}{}
		s.order = append(s.order, t)
	}
	return s
}

// FromParticipantSkills normalizes a participant's skill names. Levels are ignored.
func FromParticipantSkills(p model.Participant) Set {
	return Normalize(p.SkillNames())
}

// FromInterests normalizes a participant's interests.
func FromInterests(p model.Participant) Set {
	return Normalize(p.Interests)
}

// Len returns the number of tokens.
func (s Set) Len() int { return len(s.order) }

// Contains reports exact membership.
func (s Set) Contains(t Token) bool {
	_, ok := s.index[t]
	return ok
}

// Tokens returns the tokens in first-seen order. The slice is a copy.
func (s Set) Tokens() []Token {
	return append([]Token(nil), s.order...)
}

// Strings returns the tokens as plain strings.
func (s Set) Strings() []string {
	out := make([]string, len(s.order))
	for i, t := range s.order {
		out[i] = string(t)
	}
	return out
}

// Difference returns tokens of s absent from other, in s order.
func (s Set) Difference(other Set) Set {
	out := Set{index: make(map[Token]struct{})}
	for _, t := range s.order {
		if !other.Contains(t) {
			out.index[t] = struct{}{}
			out.order = append(out.order, t)
		}
	}
	return out
}

// Intersect returns tokens present in both sets, in s order.
func (s Set) Intersect(other Set) Set {
	out := Set{index: make(map[Token]struct{})}
	for _, t := range s.order {
		if other.Contains(t) {
			out.index[t] = struct{}{}
			out.order = append(out.order, t)
		}
	}
	return out
}
