// Package loadtest drives a running hackmatch service with concurrent
// registrations and team joins, then checks the resulting rosters.
package loadtest

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/hackmatch/pkg/logger"
)

// Run executes the complete load run and returns its statistics.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	cfg := withDefaults(*config)
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get().Named("loadtest")
	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)

	log.Info(ctx, "starting hackmatch load run",
		logger.String("baseURL", cfg.BaseURL),
		logger.String("hackathon", cfg.HackathonID),
		logger.Int("participants", cfg.Participants),
		logger.Int("teams", cfg.Teams),
		logger.Int("teamSize", cfg.TeamSize),
		logger.Int("workers", cfg.Workers))

	// Step 1: Check service health
	if err := client.do(ctx, http.MethodGet, "/healthz", "", nil, nil); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Create the hackathon
	now := time.Now().UTC()
	h := Hackathon{
		ID:                   cfg.HackathonID,
		Title:                "Load Run " + cfg.HackathonID,
		MinTeamSize:          1,
		MaxTeamSize:          cfg.TeamSize,
		RegistrationDeadline: now.Add(registrationAhead),
		StartDate:            now.Add(registrationAhead),
		EndDate:              now.Add(registrationAhead + hackathonLength),
	}
	if err := client.do(ctx, http.MethodPut, "/hackathons/"+h.ID, "", h, nil); err != nil {
		return nil, fmt.Errorf("hackathon upsert failed: %w", err)
	}

	// Step 3: Store profiles and register concurrently
	people := generateParticipants(cfg.Participants)
	var stored, registered, regFailed atomic.Int64
	err := fanOut(ctx, cfg.Workers, len(people), func(ctx context.Context, i int) error {
		p := people[i]
		if err := client.do(ctx, http.MethodPut, "/participants/"+p.ID, "", p, nil); err != nil {
			return fmt.Errorf("participant %s: %w", p.ID, err)
		}
		stored.Add(1)
		if err := client.do(ctx, http.MethodPost, "/hackathons/"+h.ID+"/register", p.ID, nil, nil); err != nil {
			regFailed.Add(1)
			if cfg.Verbose {
				log.Warn(ctx, "registration failed", logger.String("participant", p.ID), logger.Error(err))
			}
			return nil
		}
		registered.Add(1)
		return nil
	})
	stats.ProfilesStored = int(stored.Load())
	stats.Registered = int(registered.Load())
	stats.RegisterFailed = int(regFailed.Load())
	if err != nil {
		return stats, fmt.Errorf("registration failed: %w", err)
	}

	// Step 4: Leaders create teams
	teams := make([]Team, cfg.Teams)
	err = fanOut(ctx, cfg.Workers, cfg.Teams, func(ctx context.Context, i int) error {
		body := map[string]any{
			"hackathon_id": h.ID,
			"name":         fmt.Sprintf("Team %d", i),
			"looking_for":  lookingFor(),
			"max_size":     cfg.TeamSize,
		}
		if err := client.do(ctx, http.MethodPost, "/teams", people[i].ID, body, &teams[i]); err != nil {
			return fmt.Errorf("team %d: %w", i, err)
		}
		return nil
	})
	if err != nil {
		return stats, fmt.Errorf("team creation failed: %w", err)
	}
	stats.TeamsCreated = len(teams)

	// Step 5: Everyone else joins concurrently
	assign := assignTeams(cfg.Participants, cfg.Teams)
	joiners := 0
	if cfg.Teams > 0 {
		joiners = cfg.Participants - cfg.Teams
	}
	var joined, full, joinFailed atomic.Int64
	err = fanOut(ctx, cfg.Workers, joiners, func(ctx context.Context, k int) error {
		i := cfg.Teams + k
		team := teams[assign[i]]
		err := client.do(ctx, http.MethodPost, "/teams/"+team.ID+"/join", people[i].ID, nil, nil)
		switch {
		case err == nil:
			joined.Add(1)
		case code(err) == "team_full":
			full.Add(1)
		default:
			joinFailed.Add(1)
			if cfg.Verbose {
				log.Warn(ctx, "join failed", logger.String("participant", people[i].ID), logger.Error(err))
			}
		}
		return nil
	})
	stats.Joined = int(joined.Load())
	stats.JoinRejectedFull = int(full.Load())
	stats.JoinFailed = int(joinFailed.Load())
	if err != nil {
		return stats, fmt.Errorf("joining failed: %w", err)
	}

	// Step 6: Verify results
	if err := verifyResults(ctx, client, cfg, h.ID, teams, expectedSeats(assign, cfg.Teams, cfg.TeamSize), stats); err != nil {
		return stats, fmt.Errorf("result verification failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats)
	return stats, nil
}

func withDefaults(cfg Config) Config {
	if cfg.HackathonID == "" {
		cfg.HackathonID = "load-" + time.Now().UTC().Format("20060102-150405")
	}
	if cfg.TeamSize <= 0 {
		cfg.TeamSize = DefaultTeamSize
	}
	if cfg.Teams > cfg.Participants {
		cfg.Teams = cfg.Participants
	}
	if cfg.Teams < 0 {
		cfg.Teams = 0
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Settle <= 0 {
		cfg.Settle = DefaultSettle
	}
	return cfg
}

// fanOut runs fn for 0..n-1 on at most workers goroutines and returns the
// first error, cancelling the rest.
func fanOut(ctx context.Context, workers, n int, fn func(ctx context.Context, i int) error) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error { return fn(ctx, i) })
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var registrationRate, requestsPerSecond float64
	if total := stats.Registered + stats.RegisterFailed; total > 0 {
		registrationRate = float64(stats.Registered) / float64(total) * PercentageMultiplier
	}
	requests := stats.ProfilesStored + stats.Registered + stats.RegisterFailed + stats.TeamsCreated +
		stats.Joined + stats.JoinRejectedFull + stats.JoinFailed
	if stats.Duration > 0 {
		requestsPerSecond = float64(requests) / stats.Duration.Seconds()
	}

	log.Info(ctx, "final statistics",
		logger.Int("profilesStored", stats.ProfilesStored),
		logger.Int("registered", stats.Registered),
		logger.Int("registerFailed", stats.RegisterFailed),
		logger.Int("teamsCreated", stats.TeamsCreated),
		logger.Int("joined", stats.Joined),
		logger.Int("joinRejectedFull", stats.JoinRejectedFull),
		logger.Int("joinFailed", stats.JoinFailed),
		logger.Int("leadersNotified", stats.LeadersNotified),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("registrationRate", registrationRate),
		logger.Float64("requestsPerSecond", requestsPerSecond))
}
