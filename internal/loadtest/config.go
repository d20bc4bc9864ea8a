package loadtest

import "time"

// Config holds configuration for a load run.
type Config struct {
	BaseURL      string        // Base URL of the service
	HackathonID  string        // Hackathon to create and fill
	Participants int           // Number of participants to register
	Teams        int           // Number of teams; the first Teams participants lead them
	TeamSize     int           // Seats per team, leader included
	Workers      int           // Number of concurrent workers
	Timeout      time.Duration // HTTP request timeout
	Settle       time.Duration // How long to wait for notifications to land
	Verbose      bool          // Enable verbose logging
}

// Participant is the profile submitted for each generated participant.
type Participant struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Skills    []Skill  `json:"skills"`
	Interests []string `json:"interests"`
}

// Skill is one named skill with an optional level.
type Skill struct {
	Name  string `json:"name"`
	Level string `json:"level,omitempty"`
}

// Hackathon is the subset of the hackathon resource the run reads and writes.
type Hackathon struct {
	ID                   string    `json:"id"`
	Title                string    `json:"title"`
	Participants         []string  `json:"participants,omitempty"`
	MinTeamSize          int       `json:"min_team_size"`
	MaxTeamSize          int       `json:"max_team_size"`
	StartDate            time.Time `json:"start_date"`
	EndDate              time.Time `json:"end_date"`
	RegistrationDeadline time.Time `json:"registration_deadline"`
}

// Team is the subset of the team resource the run reads.
type Team struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Leader     string   `json:"leader"`
	Members    []Member `json:"members"`
	MaxSize    int      `json:"max_size"`
	LookingFor []string `json:"looking_for"`
}

// Member is one seat of a team.
type Member struct {
	ParticipantID string `json:"participant_id"`
	Role          string `json:"role"`
}

// Notification is the subset of an inbox entry the run reads.
type Notification struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Stats holds run statistics.
type Stats struct {
	ProfilesStored   int
	Registered       int
	RegisterFailed   int
	TeamsCreated     int
	Joined           int
	JoinRejectedFull int
	JoinFailed       int
	LeadersNotified  int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}
