package loadtest

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// verifyResults checks registrations, roster sizes and leader inboxes
// against what the run submitted.
func verifyResults(ctx context.Context, client *HTTPClient, cfg Config, hackathonID string, created []Team, want []int, stats *Stats) error {
	var h Hackathon
	if err := client.do(ctx, http.MethodGet, "/hackathons/"+hackathonID, "", nil, &h); err != nil {
		return fmt.Errorf("fetch hackathon: %w", err)
	}
	if len(h.Participants) != stats.Registered {
		return fmt.Errorf("hackathon lists %d participants, %d registrations succeeded", len(h.Participants), stats.Registered)
	}

	var listed []Team
	if err := client.do(ctx, http.MethodGet, "/hackathons/"+hackathonID+"/teams", "", nil, &listed); err != nil {
		return fmt.Errorf("list teams: %w", err)
	}
	if len(listed) != len(created) {
		return fmt.Errorf("hackathon lists %d teams, %d were created", len(listed), len(created))
	}
	byID := make(map[string]Team, len(listed))
	for _, t := range listed {
		byID[t.ID] = t
	}
	if err := verifyRosters(created, byID, want); err != nil {
		return err
	}

	notified, err := awaitLeaderInboxes(ctx, client, created, cfg.Settle)
	stats.LeadersNotified = notified
	return err
}

// verifyRosters checks every team against its expected seat count and that
// nobody holds two seats.
func verifyRosters(created []Team, byID map[string]Team, want []int) error {
	seated := make(map[string]string)
	for i, c := range created {
		t, ok := byID[c.ID]
		if !ok {
			return fmt.Errorf("team %s missing from listing", c.ID)
		}
		if len(t.Members) > t.MaxSize {
			return fmt.Errorf("team %s has %d members over max %d", t.ID, len(t.Members), t.MaxSize)
		}
		if len(t.Members) != want[i] {
			return fmt.Errorf("team %s has %d members, want %d", t.ID, len(t.Members), want[i])
		}
		for _, m := range t.Members {
			if other, dup := seated[m.ParticipantID]; dup {
				return fmt.Errorf("participant %s seated in %s and %s", m.ParticipantID, other, t.ID)
			}
			seated[m.ParticipantID] = t.ID
		}
	}
	return nil
}

// awaitLeaderInboxes polls until every leader has at least one notification,
// or settle elapses.
func awaitLeaderInboxes(ctx context.Context, client *HTTPClient, teams []Team, settle time.Duration) (int, error) {
	deadline := time.Now().Add(settle)
	pending := make(map[string]bool)
	for _, t := range teams {
		pending[t.Leader] = true
	}
	notified := 0
	for {
		for leader := range pending {
			var inbox []Notification
			if err := client.do(ctx, http.MethodGet, "/notifications", leader, nil, &inbox); err != nil {
				return notified, fmt.Errorf("inbox of %s: %w", leader, err)
			}
			if len(inbox) > 0 {
				delete(pending, leader)
				notified++
			}
		}
		if len(pending) == 0 {
			return notified, nil
		}
		if time.Now().After(deadline) {
			return notified, fmt.Errorf("%d leaders still have empty inboxes after %s", len(pending), settle)
		}
		select {
		case <-ctx.Done():
			return notified, ctx.Err()
		case <-time.After(settlePoll):
		}
	}
}
