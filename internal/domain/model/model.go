// Package model contains domain models passed between layers.
package model

import "strings"

// Role is the function a member fills inside a team.
type Role string

// Roles a team member can hold.
const (
	RoleFrontend  Role = "frontend"
	RoleBackend   Role = "backend"
	RoleFullstack Role = "fullstack"
	RoleDesigner  Role = "designer"
	RoleDevops    Role = "devops"
	RoleOther     Role = "other"
)

// ParseRole maps free text onto a Role. Unknown and empty values become RoleOther.
func ParseRole(s string) Role {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleFrontend, RoleBackend, RoleFullstack, RoleDesigner, RoleDevops:
		return r
	default:
		return RoleOther
	}
}

// Level is a self-reported proficiency. Scoring never reads it.
type Level string

// Proficiency levels, lowest first.
const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
	LevelExpert       Level = "expert"
)

var levelRank = map[Level]int{ //nolint:gochecknoglobals // immutable lookup
	LevelBeginner:     1,
	LevelIntermediate: 2,
	LevelAdvanced:     3,
	LevelExpert:       4,
}

// ParseLevel maps free text onto a Level. Unknown and empty values become LevelBeginner.
func ParseLevel(s string) Level {
	l := Level(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := levelRank[l]; ok {
		return l
	}
	return LevelBeginner
}

// Rank orders levels from 1 (beginner) to 4 (expert); unknown levels rank 0.
func (l Level) Rank() int {
	return levelRank[l]
}
