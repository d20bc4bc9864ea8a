package loadtest

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

var skillPool = []string{
	"Go", "React", "ReactNative", "Python", "Figma", "Kubernetes",
	"Rust", "TypeScript", "PostgreSQL", "MachineLearning", "Swift", "UX",
}

var interestPool = []string{"AI", "Climate", "Health", "Fintech", "Education", "Games"}

var levels = []string{"beginner", "intermediate", "advanced", "expert"}

// pick returns a uniformly random index below n using crypto/rand.
func pick(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

// sample returns k distinct entries of pool in random order.
func sample(pool []string, k int) []string {
	if k > len(pool) {
		k = len(pool)
	}
	idx := make([]int, len(pool))
	for i := range idx {
		idx[i] = i
	}
	out := make([]string, 0, k)
	for i := 0; i < k; i++ {
		j := i + pick(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]
		out = append(out, pool[idx[i]])
	}
	return out
}

// generateParticipants creates n profiles with ids p0000..p(n-1).
func generateParticipants(n int) []Participant {
	out := make([]Participant, n)
	for i := range out {
		names := sample(skillPool, 1+pick(3))
		skills := make([]Skill, len(names))
		for j, name := range names {
			skills[j] = Skill{Name: name, Level: levels[pick(len(levels))]}
		}
		out[i] = Participant{
			ID:        fmt.Sprintf("p%04d", i),
			Name:      fmt.Sprintf("Participant %d", i),
			Skills:    skills,
			Interests: sample(interestPool, pick(3)),
		}
	}
	return out
}

// lookingFor lists up to two skills the team still needs.
func lookingFor() []string {
	return sample(skillPool, 1+pick(2))
}

// assignTeams maps each non-leader participant index to a team index
// round robin. Leaders are the first teams participants.
func assignTeams(participants, teams int) map[int]int {
	out := make(map[int]int, participants)
	if teams <= 0 {
		return out
	}
	for i := teams; i < participants; i++ {
		out[i] = (i - teams) % teams
	}
	return out
}

// expectedSeats returns how many members each team should end up with.
func expectedSeats(assign map[int]int, teams, teamSize int) []int {
	want := make([]int, teams)
	for _, t := range assign {
		want[t]++
	}
	for t := range want {
		want[t] = 1 + min(want[t], teamSize-1)
	}
	return want
}
