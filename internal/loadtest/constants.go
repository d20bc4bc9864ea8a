package loadtest

import "time"

// HeaderParticipantID carries the acting participant on every request.
const HeaderParticipantID = "X-Participant-ID"

// Runner defaults applied when a Config field is zero.
const (
	DefaultTeamSize   = 4
	DefaultSettle     = 5 * time.Second
	DefaultTimeout    = 10 * time.Second
	settlePoll        = 50 * time.Millisecond
	registrationAhead = 24 * time.Hour
	hackathonLength   = 48 * time.Hour
)

// PercentageMultiplier converts a ratio to a percentage.
const PercentageMultiplier = 100
