package model

// Skill is one self-declared skill with its proficiency.
type Skill struct {
	Name  string `json:"name"`
	Level Level  `json:"level,omitempty"`
}

// Participant is a student account that registers for hackathons and joins teams.
type Participant struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Skills    []Skill  `json:"skills"`
	Interests []string `json:"interests"`
}

// SkillNames returns the raw skill names in declaration order.
func (p Participant) SkillNames() []string {
	out := make([]string, len(p.Skills))
	for i, s := range p.Skills {
		out[i] = s.Name
	}
	return out
}

// Clone returns a deep copy.
func (p Participant) Clone() Participant {
	c := p
	c.Skills = append([]Skill(nil), p.Skills...)
	c.Interests = append([]string(nil), p.Interests...)
	return c
}
